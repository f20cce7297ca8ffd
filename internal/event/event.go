// Package event defines the wire-stable payloads delivered to host
// listeners, and the tagged union used to carry them through a single
// dispatch channel.
package event

import (
	"runtime"
	"time"
)

// Pointer event types.
const (
	PointerMove  = "mousemove"
	PointerDown  = "mousedown"
	PointerUp    = "mouseup"
	PointerWheel = "wheel"
)

// Keyboard event types.
const (
	KeyDown = "keydown"
	KeyUp   = "keyup"
)

// Drag event types.
const (
	DragHovered        = "hovered_file"
	DragDropped        = "dropped_file"
	DragHoverCancelled = "hovered_file_cancelled"

	// MonitorTerminated is reported when the windowing helper dies
	// underneath us; monitoring flips to stopped and the host may restart.
	MonitorTerminated = "monitor_terminated"
)

// PointerEvent is the stable pointer payload delivered to listeners.
type PointerEvent struct {
	EventType string  `json:"event_type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Button    int     `json:"button"`
	Timestamp float64 `json:"timestamp"`
	Platform  string  `json:"platform"`
}

// KeyboardEvent is the stable keyboard payload delivered to listeners.
// KeyCode uses the browser virtual-key numbering so hosts can reuse DOM
// key tables; Modifiers lists the modifier classes held when the event
// fired ("shift", "control", "alt", "meta").
type KeyboardEvent struct {
	EventType string   `json:"event_type"`
	KeyCode   int      `json:"key_code"`
	KeyName   string   `json:"key_name"`
	Modifiers []string `json:"modifiers"`
	Timestamp float64  `json:"timestamp"`
	Platform  string   `json:"platform"`
}

// DragEvent is the stable drag payload delivered to listeners. WindowID
// identifies the originating sensor window, prefixed with the drag episode
// that owned it ("<episode>.<window>").
type DragEvent struct {
	EventType string  `json:"event_type"`
	FilePath  string  `json:"file_path,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp float64 `json:"timestamp"`
	Platform  string  `json:"platform"`
	WindowID  string  `json:"window_id"`
}

// Kind discriminates the payload carried by an Event.
type Kind int

const (
	KindPointer Kind = iota
	KindDrag
	KindKeyboard
)

// Event is the tagged union dispatched through the bus. Exactly one of
// Pointer/Drag/Keyboard is non-nil, matching Kind.
type Event struct {
	Kind     Kind
	Pointer  *PointerEvent
	Drag     *DragEvent
	Keyboard *KeyboardEvent
}

// NewPointer wraps a pointer payload.
func NewPointer(e PointerEvent) Event {
	return Event{Kind: KindPointer, Pointer: &e}
}

// NewDrag wraps a drag payload.
func NewDrag(e DragEvent) Event {
	return Event{Kind: KindDrag, Drag: &e}
}

// NewKeyboard wraps a keyboard payload.
func NewKeyboard(e KeyboardEvent) Event {
	return Event{Kind: KindKeyboard, Keyboard: &e}
}

// Platform returns the platform tag carried on every payload.
func Platform() string {
	switch runtime.GOOS {
	case "darwin":
		return "macos"
	case "windows", "linux":
		return runtime.GOOS
	default:
		return "unknown"
	}
}

// Now returns the payload timestamp for the current instant, in seconds
// since the Unix epoch.
func Now() float64 {
	return Timestamp(time.Now())
}

// Timestamp converts t to the wire timestamp format.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
