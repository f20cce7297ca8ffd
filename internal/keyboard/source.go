// Package keyboard delivers global key state changes: every press and
// release, regardless of which application is focused.
package keyboard

import (
	"errors"
	"time"
)

// ErrPermissionDenied is returned when the display server refuses the
// global keyboard hook.
var ErrPermissionDenied = errors.New("keyboard: global input hook denied")

// Sample is one immutable key observation. Code and Name follow the
// browser virtual-key numbering; Modifiers lists the modifier classes
// held at the instant of the event.
type Sample struct {
	Code      int
	Name      string
	Modifiers []string
	Down      bool
	Time      time.Time
}

// Source is a running global keyboard hook. Callbacks fire on the
// source's reader goroutine and must return quickly.
type Source interface {
	// Subscribe registers a callback and returns its subscription ID.
	// The hook starts lazily on the first subscription; a platform
	// refusal surfaces here as ErrPermissionDenied.
	Subscribe(fn func(Sample)) (int, error)

	// Unsubscribe removes a subscription. Unknown IDs return false.
	Unsubscribe(id int) bool

	// Close stops the hook and releases the input connection.
	Close() error
}
