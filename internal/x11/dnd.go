package x11

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
)

// DndAtoms holds the interned atoms of the XDND protocol plus the ones used
// for the actual data transfer.
type DndAtoms struct {
	Aware      xproto.Atom
	Enter      xproto.Atom
	Position   xproto.Atom
	Status     xproto.Atom
	Leave      xproto.Atom
	Drop       xproto.Atom
	Finished   xproto.Atom
	Selection  xproto.Atom
	ActionCopy xproto.Atom

	URIList  xproto.Atom // text/uri-list, the only transfer target we request
	Transfer xproto.Atom // property the selection data lands on
}

func internDndAtoms(xu *xgbutil.XUtil) (DndAtoms, error) {
	var a DndAtoms
	for _, entry := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"XdndAware", &a.Aware},
		{"XdndEnter", &a.Enter},
		{"XdndPosition", &a.Position},
		{"XdndStatus", &a.Status},
		{"XdndLeave", &a.Leave},
		{"XdndDrop", &a.Drop},
		{"XdndFinished", &a.Finished},
		{"XdndSelection", &a.Selection},
		{"XdndActionCopy", &a.ActionCopy},
		{"text/uri-list", &a.URIList},
		{"DRAGSENSE_TRANSFER", &a.Transfer},
	} {
		atom, err := xprop.Atm(xu, entry.name)
		if err != nil {
			return DndAtoms{}, fmt.Errorf("failed to intern %s: %w", entry.name, err)
		}
		*entry.dst = atom
	}
	return a, nil
}

// DndHandler runs the target side of the XDND handshake across all sensor
// windows on one connection. Callbacks fire on the connection's event-loop
// goroutine; coordinates are root-window physical pixels.
type DndHandler struct {
	conn *Connection

	OnHover func(win xproto.Window, x, y int)
	OnLeave func(win xproto.Window)
	OnDrop  func(win xproto.Window, paths []string, x, y int)

	source   xproto.Window // drag source, 0 while no drag is over a sensor
	target   xproto.Window // sensor window currently hovered
	lastX    int
	lastY    int
	dropping bool
}

// NewDndHandler returns a handler bound to conn's atoms.
func NewDndHandler(conn *Connection) *DndHandler {
	return &DndHandler{conn: conn}
}

// HandleClientMessage processes one XDND client message. Non-XDND messages
// are ignored.
func (h *DndHandler) HandleClientMessage(ev xproto.ClientMessageEvent) {
	if ev.Format != 32 {
		return
	}
	data := ev.Data.Data32

	switch ev.Type {
	case h.conn.Atoms.Enter:
		h.source = xproto.Window(data[0])
		h.target = 0
		h.dropping = false

	case h.conn.Atoms.Position:
		if h.source == 0 {
			return
		}
		h.lastX = int(data[2] >> 16)
		h.lastY = int(data[2] & 0xffff)
		h.target = ev.Window
		h.sendStatus(ev.Window, true)
		if h.OnHover != nil {
			h.OnHover(ev.Window, h.lastX, h.lastY)
		}

	case h.conn.Atoms.Leave:
		if h.source == 0 {
			return
		}
		if h.OnLeave != nil && h.target != 0 {
			h.OnLeave(h.target)
		}
		h.reset()

	case h.conn.Atoms.Drop:
		if h.source == 0 {
			return
		}
		h.dropping = true
		// Ask the source to deliver the file list; the reply arrives as a
		// SelectionNotify on this window.
		xproto.ConvertSelection(
			h.conn.XUtil.Conn(),
			ev.Window,
			h.conn.Atoms.Selection,
			h.conn.Atoms.URIList,
			h.conn.Atoms.Transfer,
			xproto.Timestamp(data[2]),
		)
		h.conn.Flush()
	}
}

// HandleSelectionNotify completes a drop: it reads the transferred URI list,
// acknowledges the source, and fires OnDrop once per path.
func (h *DndHandler) HandleSelectionNotify(ev xproto.SelectionNotifyEvent) {
	if !h.dropping || ev.Selection != h.conn.Atoms.Selection {
		return
	}

	var paths []string
	if ev.Property == h.conn.Atoms.Transfer {
		if reply, err := xproto.GetProperty(
			h.conn.XUtil.Conn(), true, ev.Requestor,
			h.conn.Atoms.Transfer, xproto.GetPropertyTypeAny,
			0, 1<<20,
		).Reply(); err == nil && reply != nil {
			paths = ParseURIList(reply.Value)
		}
	}

	h.sendFinished(len(paths) > 0)
	if h.OnDrop != nil && len(paths) > 0 {
		h.OnDrop(ev.Requestor, paths, h.lastX, h.lastY)
	}
	h.reset()
}

// Dragging reports whether a drag is currently over one of our windows.
func (h *DndHandler) Dragging() bool {
	return h.source != 0
}

func (h *DndHandler) reset() {
	h.source = 0
	h.target = 0
	h.dropping = false
}

// sendStatus tells the source whether we accept the drop at the current
// position. An empty rectangle forces a Position message on every motion.
func (h *DndHandler) sendStatus(target xproto.Window, accept bool) {
	var flags uint32
	if accept {
		flags = 1
	}
	h.sendClientMessage(h.source, h.conn.Atoms.Status, [5]uint32{
		uint32(target),
		flags,
		0, 0,
		uint32(h.conn.Atoms.ActionCopy),
	})
}

func (h *DndHandler) sendFinished(accepted bool) {
	var flags uint32
	action := uint32(0)
	if accepted {
		flags = 1
		action = uint32(h.conn.Atoms.ActionCopy)
	}
	h.sendClientMessage(h.source, h.conn.Atoms.Finished, [5]uint32{
		uint32(h.target),
		flags,
		action,
		0, 0,
	})
}

func (h *DndHandler) sendClientMessage(to xproto.Window, typ xproto.Atom, data [5]uint32) {
	if to == 0 {
		return
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: to,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	xproto.SendEvent(h.conn.XUtil.Conn(), false, to, xproto.EventMaskNoEvent, string(ev.Bytes()))
	h.conn.Flush()
}

// ParseURIList decodes a text/uri-list payload into local filesystem paths.
// Non-file URIs and comment lines are skipped; percent-encoding is decoded.
func ParseURIList(data []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || u.Scheme != "file" {
			continue
		}
		if u.Host != "" && u.Host != "localhost" {
			continue
		}
		if u.Path != "" {
			paths = append(paths, u.Path)
		}
	}
	return paths
}
