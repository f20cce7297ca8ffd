// Package x11 wraps the X server primitives used by the sensor backend:
// monitor enumeration, override-redirect sensor windows, the XDND handshake,
// and pixel capture.
package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
	Atoms DndAtoms
}

// NewConnection establishes a connection to the X11 server and interns the
// atoms the drag-and-drop handshake needs.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	atoms, err := internDndAtoms(xu)
	if err != nil {
		xu.Conn().Close()
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		Atoms: atoms,
	}, nil
}

// Flush pushes any buffered requests to the server.
func (c *Connection) Flush() {
	c.XUtil.Sync()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
