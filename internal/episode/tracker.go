// Package episode correlates native drag callbacks with the drag episode
// that owns them. An episode spans one continuous button-down-to-button-up
// window during which sensors are armed; episode IDs are monotonic so
// callbacks from an already-torn-down sensor set can never masquerade as
// current.
package episode

import (
	"strconv"
	"sync"

	"github.com/1broseidon/dragsense/internal/event"
	"github.com/1broseidon/dragsense/internal/grid"
	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/pointer"
)

// State of a drag episode.
type State int

const (
	// Armed: sensor windows are up, no drag has crossed one yet.
	Armed State = iota
	// Active: at least one native drag callback has arrived.
	Active
	// Closing: teardown has begun; late callbacks still translate.
	Closing
)

// Episode is one armed sensor constellation. Read-only after Open except
// for State, which only the Tracker mutates.
type Episode struct {
	ID      uint64
	Origin  pointer.Sample
	Windows []grid.WindowSpec
	State   State
}

// Tracker enforces the single-episode invariant: at most one episode is
// open at any time.
type Tracker struct {
	mu      sync.Mutex
	next    uint64
	current *Episode
}

// NewTracker returns a Tracker ready to open episode 1.
func NewTracker() *Tracker {
	return &Tracker{next: 1}
}

// Open starts a new episode around the button-down sample. An episode
// already open is superseded.
func (t *Tracker) Open(origin pointer.Sample, specs []grid.WindowSpec) *Episode {
	t.mu.Lock()
	defer t.mu.Unlock()
	ep := &Episode{
		ID:      t.next,
		Origin:  origin,
		Windows: specs,
		State:   Armed,
	}
	t.next++
	t.current = ep
	return ep
}

// BeginClose flips the open episode to Closing. Late callbacks keep
// translating until Close.
func (t *Tracker) BeginClose() {
	t.mu.Lock()
	if t.current != nil {
		t.current.State = Closing
	}
	t.mu.Unlock()
}

// Close ends the open episode. Returns false when already idle.
func (t *Tracker) Close() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return false
	}
	t.current = nil
	return true
}

// Opened returns how many episodes have ever been opened. IDs are
// monotonic from 1, so the count is the last ID handed out.
func (t *Tracker) Opened() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next - 1
}

// Current returns the open episode, or nil when idle.
func (t *Tracker) Current() *Episode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Translate re-tags a native drag callback with the open episode and
// converts it to the wire schema. It returns false when no episode is open;
// the caller logs and drops such callbacks, they must never reach
// listeners. No deduplication happens across sensor windows: each physical
// crossing is reported once per window.
func (t *Tracker) Translate(cb platform.DragCallback) (event.DragEvent, bool) {
	t.mu.Lock()
	ep := t.current
	if ep != nil && ep.State == Armed && cb.Kind != platform.Cancelled {
		ep.State = Active
	}
	t.mu.Unlock()

	if ep == nil {
		return event.DragEvent{}, false
	}

	var eventType string
	switch cb.Kind {
	case platform.Hovered:
		eventType = event.DragHovered
	case platform.Dropped:
		eventType = event.DragDropped
	case platform.Cancelled:
		eventType = event.DragHoverCancelled
	default:
		return event.DragEvent{}, false
	}

	return event.DragEvent{
		EventType: eventType,
		FilePath:  cb.FilePath,
		X:         float64(cb.X),
		Y:         float64(cb.Y),
		Timestamp: event.Timestamp(cb.Time),
		Platform:  event.Platform(),
		WindowID:  windowID(ep.ID, cb.Window),
	}, true
}

// windowID is the stable "<episode>.<window>" identifier delivered to
// listeners.
func windowID(ep uint64, win platform.WindowID) string {
	return strconv.FormatUint(ep, 10) + "." + strconv.FormatUint(uint64(win), 10)
}
