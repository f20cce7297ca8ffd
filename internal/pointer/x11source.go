//go:build linux

package pointer

import (
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/dragsense/internal/screen"
)

// pollInterval is how often the pointer state is sampled. 10ms keeps motion
// smooth while staying far below the server's event cost.
const pollInterval = 10 * time.Millisecond

// X11Source feeds pointer samples by polling the server's global pointer
// state. QueryPointer reports the root position and the held buttons no
// matter which client has focus, so diffing successive replies yields moves
// and button transitions without any extension support. Wheel turns never
// show up as held state, so buttons 4-7 are caught with passive synchronous
// grabs on the root window and immediately replayed to the client under the
// pointer. It runs on its own X connection so a busy windowing connection
// can never stall the hook.
type X11Source struct {
	monitors func() []screen.Monitor

	mu      sync.Mutex
	conn    *xgb.Conn
	root    xproto.Window
	subs    map[int]func(Sample)
	nextID  int
	started bool
	closed  bool
	quit    chan struct{}

	lastX, lastY int
	lastMask     uint16
}

var _ Source = (*X11Source)(nil)

// NewX11Source returns an idle source. monitors supplies the current monitor
// snapshot for resolving the sample's MonitorID; it may be nil.
func NewX11Source(monitors func() []screen.Monitor) *X11Source {
	return &X11Source{
		monitors: monitors,
		subs:     make(map[int]func(Sample)),
		nextID:   1,
	}
}

// Subscribe registers fn and starts the hook on first use.
func (s *X11Source) Subscribe(fn func(Sample)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("pointer: source closed")
	}
	if !s.started {
		if err := s.start(); err != nil {
			return 0, err
		}
		s.started = true
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return id, nil
}

// Unsubscribe removes a subscription. The hook keeps running; stopping it is
// Close's job.
func (s *X11Source) Unsubscribe(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; !ok {
		return false
	}
	delete(s.subs, id)
	return true
}

// Close releases the wheel grabs and shuts the connection down, which
// unblocks both loops.
func (s *X11Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.quit != nil {
		close(s.quit)
		s.quit = nil
	}
	if s.conn != nil {
		for button := byte(4); button <= 7; button++ {
			xproto.UngrabButton(s.conn, button, s.root, xproto.ModMaskAny)
		}
		s.conn.Close()
		s.conn = nil
	}
	return nil
}

// start opens the input connection, primes the pointer state, and installs
// the wheel grabs. Called with s.mu held.
func (s *X11Source) start() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("%w: connect failed: %v", ErrPermissionDenied, err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root

	reply, err := xproto.QueryPointer(conn, root).Reply()
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: pointer query refused: %v", ErrPermissionDenied, err)
	}

	// Synchronous grabs freeze the pointer stream on press until the event
	// is replayed, so the owning application still receives the scroll. A
	// button another client already grabbed is skipped; polling keeps
	// working without it.
	for button := byte(4); button <= 7; button++ {
		xproto.GrabButtonChecked(conn, false, root,
			uint16(xproto.EventMaskButtonPress),
			xproto.GrabModeSync, xproto.GrabModeAsync,
			xproto.WindowNone, xproto.CursorNone,
			button, xproto.ModMaskAny).Check()
	}

	s.conn = conn
	s.root = root
	s.quit = make(chan struct{})
	s.lastX, s.lastY = int(reply.RootX), int(reply.RootY)
	s.lastMask = reply.Mask

	go s.pollLoop(conn, root, s.quit)
	go s.wheelLoop(conn)
	return nil
}

// pollLoop diffs successive QueryPointer replies into move and button
// samples.
func (s *X11Source) pollLoop(conn *xgb.Conn, root xproto.Window, quit chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}

		reply, err := xproto.QueryPointer(conn, root).Reply()
		if err != nil {
			select {
			case <-quit:
				return
			default:
				continue
			}
		}

		x, y := int(reply.RootX), int(reply.RootY)
		s.mu.Lock()
		moved := x != s.lastX || y != s.lastY
		prevMask := s.lastMask
		s.lastX, s.lastY = x, y
		s.lastMask = reply.Mask
		s.mu.Unlock()

		if moved {
			s.emit(s.sample(x, y, Move, ButtonNone))
		}
		for _, t := range buttonTransitions(prevMask, reply.Mask) {
			kind := Up
			if t.down {
				kind = Down
			}
			s.emit(s.sample(x, y, kind, t.button))
		}
	}
}

// wheelLoop services the synchronous wheel grabs: each press is replayed to
// the real recipient first, then reported as one wheel sample. Releases of
// grabbed buttons are noise and never arrive with a press-only event mask.
func (s *X11Source) wheelLoop(conn *xgb.Conn) {
	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			return // connection closed
		}
		if err != nil {
			continue
		}
		press, ok := ev.(xproto.ButtonPressEvent)
		if !ok {
			continue
		}
		// Unfreeze the pointer stream before anything else; a stalled
		// replay blocks every client's scrolling.
		xproto.AllowEvents(conn, xproto.AllowReplayPointer, press.Time)
		if press.Detail < 4 || press.Detail > 7 {
			continue
		}
		s.emit(s.sample(int(press.RootX), int(press.RootY), Wheel, ButtonNone))
	}
}

func (s *X11Source) sample(x, y int, kind Kind, button int) Sample {
	monitorID := -1
	if s.monitors != nil {
		monitorID = screen.Locate(x, y, s.monitors())
	}
	return Sample{
		X:         x,
		Y:         y,
		Button:    button,
		Kind:      kind,
		Time:      time.Now(),
		MonitorID: monitorID,
	}
}

func (s *X11Source) emit(sample Sample) {
	s.mu.Lock()
	fns := make([]func(Sample), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(sample)
	}
}

// transition is one button changing state between two pointer polls.
type transition struct {
	button int
	down   bool
}

// buttonTransitions reports, in button order, the presses and releases
// implied by two successive pointer state masks. Only buttons 1-3 are
// considered; the wheel bits flicker too fast for polling and are handled
// by the grabs instead.
func buttonTransitions(prev, cur uint16) []transition {
	var out []transition
	for button := 1; button <= 3; button++ {
		bit := uint16(xproto.KeyButMaskButton1) << (button - 1)
		was, is := prev&bit != 0, cur&bit != 0
		if was == is {
			continue
		}
		out = append(out, transition{button: button, down: is})
	}
	return out
}
