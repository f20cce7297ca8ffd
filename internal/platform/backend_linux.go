//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/dragsense/internal/grid"
	"github.com/1broseidon/dragsense/internal/screen"
	"github.com/1broseidon/dragsense/internal/x11"
)

// X11Backend implements Backend on top of one X11 connection. The connection
// owns every sensor window it creates; window-handle methods must stay on
// the goroutine that drives the sensor lifecycle.
type X11Backend struct {
	conn *x11.Connection
	dnd  *x11.DndHandler

	mu       sync.Mutex
	cb       func(DragCallback)
	windows  map[WindowID]struct{}
	hovering WindowID // sensor window currently reported as hovered, 0 if none
	closed   bool
}

var _ Backend = (*X11Backend)(nil)

// NewX11Backend connects to the X server and starts the event loop that
// feeds drag callbacks.
func NewX11Backend() (*X11Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	b := &X11Backend{
		conn:    conn,
		windows: make(map[WindowID]struct{}),
	}

	b.dnd = x11.NewDndHandler(conn)
	b.dnd.OnHover = b.onHover
	b.dnd.OnLeave = b.onLeave
	b.dnd.OnDrop = b.onDrop

	go b.eventLoop()
	return b, nil
}

// Displays returns the current monitor snapshot.
func (b *X11Backend) Displays() ([]screen.Monitor, error) {
	return b.conn.Monitors()
}

// CreateSensorWindow maps a drop-target window at r.
func (b *X11Backend) CreateSensorWindow(r grid.Rect) (WindowID, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, ErrBackendClosed
	}
	b.mu.Unlock()

	wid, err := b.conn.CreateSensorWindow(r.X, r.Y, r.Width, r.Height)
	if err != nil {
		return 0, err
	}
	b.conn.Flush()

	id := WindowID(wid)
	b.mu.Lock()
	b.windows[id] = struct{}{}
	b.mu.Unlock()
	return id, nil
}

// MoveSensorWindow repositions a sensor window.
func (b *X11Backend) MoveSensorWindow(id WindowID, x, y int) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBackendClosed
	}
	_, known := b.windows[id]
	b.mu.Unlock()
	if !known {
		return fmt.Errorf("unknown sensor window %d", id)
	}

	b.conn.MoveSensorWindow(xproto.Window(id), x, y)
	b.conn.Flush()
	return nil
}

// DestroySensorWindow tears a sensor window down.
func (b *X11Backend) DestroySensorWindow(id WindowID) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBackendClosed
	}
	delete(b.windows, id)
	if b.hovering == id {
		b.hovering = 0
	}
	b.mu.Unlock()

	b.conn.DestroySensorWindow(xproto.Window(id))
	b.conn.Flush()
	return nil
}

// SetDragCallback installs the drag-notification sink.
func (b *X11Backend) SetDragCallback(fn func(DragCallback)) {
	b.mu.Lock()
	b.cb = fn
	b.mu.Unlock()
}

// SamplePixel reads the screen pixel at physical coordinates.
func (b *X11Backend) SamplePixel(x, y int) (r, g, bl, a uint8, err error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, 0, 0, 0, ErrBackendClosed
	}
	b.mu.Unlock()
	return b.conn.CapturePixel(x, y)
}

// Close destroys remaining sensor windows and disconnects, stopping the
// event loop.
func (b *X11Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	windows := make([]WindowID, 0, len(b.windows))
	for id := range b.windows {
		windows = append(windows, id)
	}
	b.windows = make(map[WindowID]struct{})
	b.mu.Unlock()

	for _, id := range windows {
		b.conn.DestroySensorWindow(xproto.Window(id))
	}
	b.conn.Close()
	return nil
}

// eventLoop dispatches X events into the drag handshake until the
// connection closes.
func (b *X11Backend) eventLoop() {
	conn := b.conn.XUtil.Conn()
	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return // connection closed
		}
		if xerr != nil {
			slog.Debug("x11 error event", "error", xerr.Error())
			continue
		}
		switch e := ev.(type) {
		case xproto.ClientMessageEvent:
			b.dnd.HandleClientMessage(e)
		case xproto.SelectionNotifyEvent:
			b.dnd.HandleSelectionNotify(e)
		}
	}
}

// onHover dedupes the per-motion position messages into one Hovered
// callback per window entry.
func (b *X11Backend) onHover(win xproto.Window, x, y int) {
	id := WindowID(win)
	b.mu.Lock()
	if b.hovering == id {
		b.mu.Unlock()
		return
	}
	prev := b.hovering
	b.hovering = id
	cb := b.cb
	b.mu.Unlock()

	if cb == nil {
		return
	}
	// Moving directly between adjacent sensor windows: close out the old
	// one first so every crossing is reported per window.
	if prev != 0 {
		cb(DragCallback{Kind: Cancelled, X: x, Y: y, Time: time.Now(), Window: prev})
	}
	cb(DragCallback{Kind: Hovered, X: x, Y: y, Time: time.Now(), Window: id})
}

func (b *X11Backend) onLeave(win xproto.Window) {
	id := WindowID(win)
	b.mu.Lock()
	if b.hovering != id {
		b.mu.Unlock()
		return
	}
	b.hovering = 0
	cb := b.cb
	b.mu.Unlock()

	if cb != nil {
		cb(DragCallback{Kind: Cancelled, Time: time.Now(), Window: id})
	}
}

func (b *X11Backend) onDrop(win xproto.Window, paths []string, x, y int) {
	id := WindowID(win)
	b.mu.Lock()
	b.hovering = 0
	cb := b.cb
	b.mu.Unlock()

	if cb == nil {
		return
	}
	for _, path := range paths {
		cb(DragCallback{Kind: Dropped, FilePath: path, X: x, Y: y, Time: time.Now(), Window: id})
	}
}
