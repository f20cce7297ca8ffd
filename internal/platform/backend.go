package platform

import (
	"errors"
	"time"

	"github.com/1broseidon/dragsense/internal/grid"
	"github.com/1broseidon/dragsense/internal/screen"
)

// WindowID is a platform-neutral sensor-window identifier.
type WindowID uint32

// CallbackKind classifies a native drag callback.
type CallbackKind int

const (
	// Hovered: an external drag entered a sensor window's bounds.
	Hovered CallbackKind = iota
	// Dropped: the drag was released over a sensor window.
	Dropped
	// Cancelled: the drag left the window's bounds or the source aborted.
	Cancelled
)

func (k CallbackKind) String() string {
	switch k {
	case Hovered:
		return "hovered"
	case Dropped:
		return "dropped"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DragCallback is one native drag notification from a sensor window.
// FilePath is set on Dropped; the windowing system does not reveal file
// names before release. X and Y are physical pixels.
type DragCallback struct {
	Kind     CallbackKind
	FilePath string
	X        int
	Y        int
	Time     time.Time
	Window   WindowID
}

// ErrBackendClosed is returned from operations on a closed backend.
var ErrBackendClosed = errors.New("platform: backend closed")

// Backend abstracts the windowing system behind the sensor lifecycle. All
// window-handle methods must be called from a single goroutine; implementations
// bind handles to the connection that created them.
type Backend interface {
	// Displays returns the current monitor snapshot.
	Displays() ([]screen.Monitor, error)

	// CreateSensorWindow maps a borderless always-on-top drop target
	// covering r (physical pixels).
	CreateSensorWindow(r grid.Rect) (WindowID, error)

	// MoveSensorWindow repositions an existing sensor window.
	MoveSensorWindow(id WindowID, x, y int) error

	// DestroySensorWindow tears a sensor window down. Unknown IDs are a
	// no-op.
	DestroySensorWindow(id WindowID) error

	// SetDragCallback installs the native drag-notification sink. Must be
	// set before the first CreateSensorWindow; callbacks fire on the
	// backend's event-loop goroutine.
	SetDragCallback(fn func(DragCallback))

	// SamplePixel reads the screen pixel at physical coordinates.
	SamplePixel(x, y int) (r, g, b, a uint8, err error)

	// Close destroys remaining windows and disconnects.
	Close() error
}
