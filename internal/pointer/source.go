// Package pointer delivers global pointer state changes: every move, button
// transition, and wheel turn, regardless of which application is focused.
package pointer

import (
	"errors"
	"time"
)

// ErrPermissionDenied is returned when the display server refuses the global
// input hook, typically because the input extension is missing or access
// control forbids raw event selection.
var ErrPermissionDenied = errors.New("pointer: global input hook denied")

// Kind classifies a pointer sample.
type Kind int

const (
	Move Kind = iota
	Down
	Up
	Wheel
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Down:
		return "down"
	case Up:
		return "up"
	case Wheel:
		return "wheel"
	default:
		return "unknown"
	}
}

// Button numbering shared with the wire schema.
const (
	ButtonNone   = 0
	ButtonLeft   = 1
	ButtonMiddle = 2
	ButtonRight  = 3
)

// Sample is one immutable pointer observation. X and Y are physical pixels
// in the global desktop coordinate space; MonitorID is the monitor owning
// the position, -1 when no monitor list was available.
type Sample struct {
	X         int
	Y         int
	Button    int
	Kind      Kind
	Time      time.Time
	MonitorID int
}

// Source is a running global pointer hook. Callbacks fire on the source's
// reader goroutine and must return quickly; anything slow belongs behind a
// queue.
type Source interface {
	// Subscribe registers a callback and returns its subscription ID.
	// The hook starts lazily on the first subscription; a platform refusal
	// surfaces here as ErrPermissionDenied.
	Subscribe(fn func(Sample)) (int, error)

	// Unsubscribe removes a subscription. Unknown IDs return false.
	Unsubscribe(id int) bool

	// Close stops the hook and releases the input connection.
	Close() error
}
