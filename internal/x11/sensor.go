package x11

import (
	"github.com/BurntSushi/xgb/xproto"
)

// xdndVersion is the protocol version advertised via the XdndAware property.
const xdndVersion = 5

// CreateSensorWindow creates a mapped override-redirect window at the given
// physical-pixel geometry and advertises it as a drag-and-drop target.
// Override-redirect keeps the window manager out of the way: no decoration,
// no focus stealing, no reparenting.
func (c *Connection) CreateSensorWindow(x, y, width, height int) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	scrn := c.XUtil.Screen()

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		scrn.RootDepth,
		wid,
		c.Root,
		int16(x), int16(y),
		uint16(width), uint16(height),
		0, // border_width
		xproto.WindowClassInputOutput,
		scrn.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Value list order follows the bit positions of the mask (low to high).
		// CwBackPixel comes before CwOverrideRedirect, so it must be first.
		[]uint32{0, 1}, // back_pixel=black, override_redirect=true
	).Check()
	if err != nil {
		return 0, err
	}

	// Advertise XDND support; sources check this before starting the
	// handshake.
	err = xproto.ChangePropertyChecked(
		conn, xproto.PropModeReplace, wid,
		c.Atoms.Aware, xproto.AtomAtom, 32, 1,
		[]byte{xdndVersion, 0, 0, 0},
	).Check()
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return 0, err
	}

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		xproto.DestroyWindow(conn, wid)
		return 0, err
	}
	c.raise(wid)
	return wid, nil
}

// MoveSensorWindow repositions a sensor window and keeps it on top.
func (c *Connection) MoveSensorWindow(wid xproto.Window, x, y int) {
	xproto.ConfigureWindow(
		c.XUtil.Conn(),
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowStackMode,
		[]uint32{uint32(x), uint32(y), xproto.StackModeAbove},
	)
}

// DestroySensorWindow destroys a sensor window. Safe on already-destroyed IDs.
func (c *Connection) DestroySensorWindow(wid xproto.Window) {
	if wid != 0 {
		xproto.DestroyWindow(c.XUtil.Conn(), wid)
	}
}

func (c *Connection) raise(wid xproto.Window) {
	xproto.ConfigureWindow(
		c.XUtil.Conn(),
		wid,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	)
}
