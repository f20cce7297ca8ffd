package sampler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/1broseidon/dragsense/internal/grid"
	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/screen"
)

type stubBackend struct {
	monitors []screen.Monitor
	pixel    [4]uint8
	lastX    int
	lastY    int
	fail     bool
}

func (s *stubBackend) Displays() ([]screen.Monitor, error) { return s.monitors, nil }
func (s *stubBackend) CreateSensorWindow(grid.Rect) (platform.WindowID, error) {
	return 0, fmt.Errorf("not implemented")
}
func (s *stubBackend) MoveSensorWindow(platform.WindowID, int, int) error { return nil }
func (s *stubBackend) DestroySensorWindow(platform.WindowID) error        { return nil }
func (s *stubBackend) SetDragCallback(func(platform.DragCallback))        {}
func (s *stubBackend) Close() error                                       { return nil }

func (s *stubBackend) SamplePixel(x, y int) (r, g, b, a uint8, err error) {
	if s.fail {
		return 0, 0, 0, 0, fmt.Errorf("refused")
	}
	s.lastX, s.lastY = x, y
	return s.pixel[0], s.pixel[1], s.pixel[2], s.pixel[3], nil
}

func TestSampleAt(t *testing.T) {
	stub := &stubBackend{
		monitors: []screen.Monitor{{ID: 0, Width: 1920, Height: 1080, Scale: 1.0}},
		pixel:    [4]uint8{0x33, 0x66, 0x99, 0xff},
	}
	c, err := New(stub).SampleAt(100, 200)
	if err != nil {
		t.Fatal(err)
	}
	if c != (Color{R: 0x33, G: 0x66, B: 0x99, A: 0xff}) {
		t.Fatalf("unexpected color %+v", c)
	}
	if stub.lastX != 100 || stub.lastY != 200 {
		t.Fatalf("sampled at (%d,%d)", stub.lastX, stub.lastY)
	}
}

func TestSampleAtAppliesScale(t *testing.T) {
	stub := &stubBackend{
		monitors: []screen.Monitor{{ID: 0, Width: 3840, Height: 2160, Scale: 2.0}},
	}
	if _, err := New(stub).SampleAt(100, 200); err != nil {
		t.Fatal(err)
	}
	if stub.lastX != 200 || stub.lastY != 400 {
		t.Fatalf("expected physical (200,400), sampled (%d,%d)", stub.lastX, stub.lastY)
	}
}

func TestSampleAtCaptureRefused(t *testing.T) {
	stub := &stubBackend{
		monitors: []screen.Monitor{{ID: 0, Width: 800, Height: 600, Scale: 1.0}},
		fail:     true,
	}
	_, err := New(stub).SampleAt(10, 10)
	if !errors.Is(err, ErrCaptureFailed) {
		t.Fatalf("expected ErrCaptureFailed, got %v", err)
	}
}

func TestHex(t *testing.T) {
	c := Color{R: 0x0a, G: 0xff, B: 0x00, A: 0xff}
	if got := c.Hex(); got != "#0aff00" {
		t.Fatalf("expected #0aff00, got %s", got)
	}
}
