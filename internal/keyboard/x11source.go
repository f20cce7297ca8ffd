//go:build linux

package keyboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// pollInterval is how often the key bitmap is sampled. Matches the
// pointer hook's cadence; taps shorter than one interval are rare at
// human typing speed.
const pollInterval = 10 * time.Millisecond

// X11Source feeds key samples by polling the server's global key bitmap.
// QueryKeymap reports the up/down state of every keycode no matter which
// client has focus, so diffing successive bitmaps yields presses and
// releases without grabbing anything. Keycodes resolve to keysyms through
// the mapping fetched once at start. Runs on its own X connection.
type X11Source struct {
	mu       sync.Mutex
	conn     *xgb.Conn
	subs     map[int]func(Sample)
	nextID   int
	started  bool
	closed   bool
	quit     chan struct{}
	lastKeys [32]byte

	minKeycode xproto.Keycode
	perKeycode int
	keysyms    []xproto.Keysym
	modKeys    map[int]string // keycode -> modifier class
}

var _ Source = (*X11Source)(nil)

// NewX11Source returns an idle source.
func NewX11Source() *X11Source {
	return &X11Source{
		subs:   make(map[int]func(Sample)),
		nextID: 1,
	}
}

// Subscribe registers fn and starts the hook on first use.
func (s *X11Source) Subscribe(fn func(Sample)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("keyboard: source closed")
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

// Unsubscribe removes a subscription. The hook keeps running; stopping it
// is Close's job.
func (s *X11Source) Unsubscribe(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; !ok {
		return false
	}
	delete(s.subs, id)
	return true
}

// Close shuts the connection down, which stops the poll loop.
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
		s.conn.Close()
		s.conn = nil
	}
	return nil
}

// start opens the connection, fetches the keycode-to-keysym mapping, and
// primes the key bitmap. Called with s.mu held.
func (s *X11Source) start() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("%w: connect failed: %v", ErrPermissionDenied, err)
	}

	setup := xproto.Setup(conn)
	min, max := setup.MinKeycode, setup.MaxKeycode
	mapping, err := xproto.GetKeyboardMapping(conn, min, byte(max-min+1)).Reply()
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: keyboard mapping refused: %v", ErrPermissionDenied, err)
	}

	state, err := xproto.QueryKeymap(conn).Reply()
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: keymap query refused: %v", ErrPermissionDenied, err)
	}

	s.conn = conn
	s.minKeycode = min
	s.perKeycode = int(mapping.KeysymsPerKeycode)
	s.keysyms = mapping.Keysyms
	copy(s.lastKeys[:], state.Keys)

	s.modKeys = make(map[int]string)
	for kc := int(min); kc <= int(max); kc++ {
		if class := modifierClass(s.keysymFor(kc)); class != "" {
			s.modKeys[kc] = class
		}
	}

	s.quit = make(chan struct{})
	go s.pollLoop(conn, s.quit)
	return nil
}

// keysymFor returns the unshifted keysym bound to a keycode.
func (s *X11Source) keysymFor(keycode int) uint32 {
	idx := (keycode - int(s.minKeycode)) * s.perKeycode
	if idx < 0 || idx >= len(s.keysyms) {
		return 0
	}
	return uint32(s.keysyms[idx])
}

// pollLoop diffs successive key bitmaps into samples.
func (s *X11Source) pollLoop(conn *xgb.Conn, quit chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}

		state, err := xproto.QueryKeymap(conn).Reply()
		if err != nil {
			select {
			case <-quit:
				return
			default:
				continue
			}
		}

		var cur [32]byte
		copy(cur[:], state.Keys)

		s.mu.Lock()
		prev := s.lastKeys
		s.lastKeys = cur
		s.mu.Unlock()

		transitions := keyTransitions(prev[:], cur[:])
		if len(transitions) == 0 {
			continue
		}
		held := s.heldModifiers(cur[:])
		now := time.Now()
		for _, tr := range transitions {
			code, name := lookupKeysym(s.keysymFor(tr.keycode))
			s.emit(Sample{
				Code:      code,
				Name:      name,
				Modifiers: held,
				Down:      tr.down,
				Time:      now,
			})
		}
	}
}

// heldModifiers lists the modifier classes currently down, deduplicated
// and in a stable order.
func (s *X11Source) heldModifiers(keys []byte) []string {
	seen := make(map[string]bool)
	for kc, class := range s.modKeys {
		if keys[kc/8]&(1<<(kc%8)) != 0 {
			seen[class] = true
		}
	}
	held := make([]string, 0, len(seen))
	for _, class := range []string{"shift", "control", "alt", "meta"} {
		if seen[class] {
			held = append(held, class)
		}
	}
	return held
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

// keyTransition is one keycode changing state between two polls.
type keyTransition struct {
	keycode int
	down    bool
}

// keyTransitions reports, in keycode order, the presses and releases
// implied by two successive 256-bit key bitmaps.
func keyTransitions(prev, cur []byte) []keyTransition {
	var out []keyTransition
	for i := 0; i < len(cur) && i < len(prev); i++ {
		changed := prev[i] ^ cur[i]
		if changed == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			mask := byte(1 << bit)
			if changed&mask == 0 {
				continue
			}
			out = append(out, keyTransition{
				keycode: i*8 + bit,
				down:    cur[i]&mask != 0,
			})
		}
	}
	return out
}
