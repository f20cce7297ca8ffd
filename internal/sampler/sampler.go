// Package sampler reads single screen pixels, used by hosts to probe the
// color under a prospective drop position.
package sampler

import (
	"errors"
	"fmt"

	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/screen"
)

// ErrCaptureFailed is returned when the platform refuses the capture.
// Capture is best-effort; callers surface the error and never retry.
var ErrCaptureFailed = errors.New("sampler: screen capture failed")

// Color is one sampled pixel.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Sampler resolves logical coordinates against the live monitor layout and
// captures through the windowing backend.
type Sampler struct {
	backend platform.Backend
}

// New returns a sampler reading through backend.
func New(backend platform.Backend) *Sampler {
	return &Sampler{backend: backend}
}

// SampleAt captures the pixel at the given logical coordinates. Off-screen
// positions clamp to the nearest monitor the same way pointer coordinates
// do.
func (s *Sampler) SampleAt(x, y float64) (Color, error) {
	monitors, err := s.backend.Displays()
	if err != nil {
		return Color{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	px, py, _ := screen.Normalize(x, y, monitors)
	r, g, b, a, err := s.backend.SamplePixel(px, py)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	return Color{R: r, G: g, B: b, A: a}, nil
}
