// Package daemon exposes the host-facing service: start/stop of the global
// pointer monitor and the drag monitor, listener registration, and drag
// simulation. All methods are safe for concurrent use and none of them
// block on event delivery.
package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/dragsense/internal/bus"
	"github.com/1broseidon/dragsense/internal/episode"
	"github.com/1broseidon/dragsense/internal/event"
	"github.com/1broseidon/dragsense/internal/grid"
	"github.com/1broseidon/dragsense/internal/helper"
	"github.com/1broseidon/dragsense/internal/keyboard"
	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/pointer"
	"github.com/1broseidon/dragsense/internal/screen"
	"github.com/1broseidon/dragsense/internal/sensor"
)

// ErrInvalidArgument is returned for caller mistakes detected synchronously,
// before any side effect: empty simulation input, nonexistent helper path.
var ErrInvalidArgument = errors.New("daemon: invalid argument")

// Options injects the platform constructors, primarily for tests.
type Options struct {
	// NewBackend opens the windowing backend for in-process drag
	// monitoring. Defaults to the platform backend.
	NewBackend func() (platform.Backend, error)
	// NewSource opens the global pointer hook. Defaults to the platform
	// source.
	NewSource func(monitors func() []screen.Monitor) pointer.Source
	// NewKeySource opens the global keyboard hook. Defaults to the
	// platform source.
	NewKeySource func() keyboard.Source
	// Layout of the sensor constellation. Defaults to frame4.
	Layout grid.Layout
	// Buttons that arm the sensors. Empty means any button.
	Buttons []int
	// QueueSize bounds the sensor manager's command queue. Zero means
	// the default.
	QueueSize int
}

// Status is a point-in-time snapshot for control surfaces.
type Status struct {
	PointerMonitoring  bool    `json:"pointer_monitoring"`
	KeyboardMonitoring bool    `json:"keyboard_monitoring"`
	DragMonitoring     bool    `json:"drag_monitoring"`
	HelperPath         string  `json:"helper_path,omitempty"`
	UptimeSeconds      int64   `json:"uptime_seconds"`
	EpisodesOpened     uint64  `json:"episodes_opened"`
	LayoutName         string  `json:"layout"`
	ScaleFactor        float64 `json:"scale_factor,omitempty"`
}

// Service owns the monitors and the two event buses.
type Service struct {
	opts Options

	pointerBus  *bus.Bus
	keyboardBus *bus.Bus
	dragBus     *bus.Bus
	tracker     *episode.Tracker
	started     time.Time

	mu           sync.Mutex
	source       pointer.Source
	sourceSub    int
	keySource    keyboard.Source
	keySourceSub int
	backend      platform.Backend
	manager      *sensor.Manager
	runner       *helper.Runner
	helperPath   string
	pointerOn    bool
	keyboardOn   bool
	dragOn       bool
	dragging     bool // helper mode: a button is currently held
	monitors     []screen.Monitor
	closed       bool
}

// NewService builds an idle service.
func NewService(opts Options) *Service {
	if opts.Layout.Count() == 0 {
		opts.Layout = grid.Frame4()
	}
	if opts.NewBackend == nil {
		opts.NewBackend = newPlatformBackend
	}
	s := &Service{
		opts:        opts,
		pointerBus:  bus.New(),
		keyboardBus: bus.New(),
		dragBus:     bus.New(),
		tracker:     episode.NewTracker(),
		started:     time.Now(),
	}
	if s.opts.NewSource == nil {
		s.opts.NewSource = newPlatformSource
	}
	if s.opts.NewKeySource == nil {
		s.opts.NewKeySource = newPlatformKeySource
	}
	s.runner = helper.NewRunner(s.dragBus.Publish, s.onHelperDeath)
	return s
}

// StartPointerMonitor begins global pointer monitoring. Starting twice is a
// success no-op.
func (s *Service) StartPointerMonitor() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("daemon: service closed")
	}
	if s.pointerOn {
		return nil
	}
	if err := s.ensureSourceLocked(); err != nil {
		return err
	}
	s.pointerOn = true
	return nil
}

// StopPointerMonitor stops pointer monitoring. Stopping an idle monitor is
// a no-op.
func (s *Service) StopPointerMonitor() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pointerOn {
		return nil
	}
	s.pointerOn = false
	s.releaseSourceLocked()
	return nil
}

// IsPointerMonitoring reports whether pointer events are flowing.
func (s *Service) IsPointerMonitoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointerOn
}

// OnPointerEvent registers a pointer listener.
func (s *Service) OnPointerEvent(fn func(event.PointerEvent)) bus.Handle {
	return s.pointerBus.Register(func(ev event.Event) {
		if ev.Kind == event.KindPointer {
			fn(*ev.Pointer)
		}
	})
}

// RemovePointerEventListener drops a pointer listener. Unknown handles
// return false.
func (s *Service) RemovePointerEventListener(h bus.Handle) bool {
	return s.pointerBus.Unregister(h)
}

// StartKeyboardMonitor begins global keyboard monitoring. Starting twice
// is a success no-op. The keyboard hook is independent of the pointer
// hook: neither monitor keeps the other alive.
func (s *Service) StartKeyboardMonitor() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("daemon: service closed")
	}
	if s.keyboardOn {
		return nil
	}
	if s.keySource == nil {
		source := s.opts.NewKeySource()
		id, err := source.Subscribe(s.dispatchKeySample)
		if err != nil {
			source.Close()
			return err
		}
		s.keySource = source
		s.keySourceSub = id
	}
	s.keyboardOn = true
	return nil
}

// StopKeyboardMonitor stops keyboard monitoring. Stopping an idle monitor
// is a no-op.
func (s *Service) StopKeyboardMonitor() error {
	s.mu.Lock()
	if !s.keyboardOn {
		s.mu.Unlock()
		return nil
	}
	s.keyboardOn = false
	source := s.keySource
	sub := s.keySourceSub
	s.keySource = nil
	s.mu.Unlock()

	if source != nil {
		source.Unsubscribe(sub)
		source.Close()
	}
	return nil
}

// IsKeyboardMonitoring reports whether keyboard events are flowing.
func (s *Service) IsKeyboardMonitoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyboardOn
}

// OnKeyboardEvent registers a keyboard listener.
func (s *Service) OnKeyboardEvent(fn func(event.KeyboardEvent)) bus.Handle {
	return s.keyboardBus.Register(func(ev event.Event) {
		if ev.Kind == event.KindKeyboard {
			fn(*ev.Keyboard)
		}
	})
}

// RemoveKeyboardEventListener drops a keyboard listener. Unknown handles
// return false.
func (s *Service) RemoveKeyboardEventListener(h bus.Handle) bool {
	return s.keyboardBus.Unregister(h)
}

// dispatchKeySample forwards one key sample to keyboard listeners. Runs
// on the hook's reader goroutine; listeners are behind the bus queue.
func (s *Service) dispatchKeySample(sample keyboard.Sample) {
	s.mu.Lock()
	on := s.keyboardOn
	s.mu.Unlock()
	if !on {
		return
	}
	s.keyboardBus.Publish(event.NewKeyboard(keyboardEventFrom(sample)))
}

// keyboardEventFrom converts a hook sample to the wire schema.
func keyboardEventFrom(sample keyboard.Sample) event.KeyboardEvent {
	eventType := event.KeyUp
	if sample.Down {
		eventType = event.KeyDown
	}
	mods := sample.Modifiers
	if mods == nil {
		mods = []string{}
	}
	return event.KeyboardEvent{
		EventType: eventType,
		KeyCode:   sample.Code,
		KeyName:   sample.Name,
		Modifiers: mods,
		Timestamp: event.Timestamp(sample.Time),
		Platform:  event.Platform(),
	}
}

// ConfigureDragMonitor selects how sensor windows are hosted: an empty path
// keeps them in-process, a path delegates to the helper executable. The
// path is validated here, synchronously.
func (s *Service) ConfigureDragMonitor(helperPath string) error {
	if helperPath != "" {
		info, err := os.Stat(helperPath)
		if err != nil {
			return fmt.Errorf("%w: helper %q: %v", ErrInvalidArgument, helperPath, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: helper %q is a directory", ErrInvalidArgument, helperPath)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dragOn {
		return fmt.Errorf("%w: cannot reconfigure while drag monitoring is running", ErrInvalidArgument)
	}
	s.helperPath = helperPath
	return nil
}

// StartDragMonitor arms drag detection. Double start is a success no-op.
func (s *Service) StartDragMonitor() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("daemon: service closed")
	}
	if s.dragOn {
		return nil
	}

	if s.helperPath == "" {
		backend, err := s.opts.NewBackend()
		if err != nil {
			return fmt.Errorf("failed to open windowing backend: %w", err)
		}
		s.backend = backend
		s.manager = sensor.NewManager(backend, s.tracker, s.dragBus.Publish, sensor.Config{
			Layout:    s.opts.Layout,
			Buttons:   s.opts.Buttons,
			QueueSize: s.opts.QueueSize,
		})
	}

	if err := s.ensureSourceLocked(); err != nil {
		if s.manager != nil {
			s.manager.Close()
			s.manager = nil
		}
		if s.backend != nil {
			s.backend.Close()
			s.backend = nil
		}
		return err
	}
	s.dragOn = true
	return nil
}

// StopDragMonitor tears drag detection down, aborting any armed episode
// through the normal closing path. Stopping twice is a no-op.
func (s *Service) StopDragMonitor() error {
	s.mu.Lock()
	if !s.dragOn {
		s.mu.Unlock()
		return nil
	}
	s.dragOn = false
	s.dragging = false
	manager := s.manager
	backend := s.backend
	runner := s.runner
	s.manager = nil
	s.backend = nil
	s.releaseSourceLocked()
	s.mu.Unlock()

	if manager != nil {
		manager.Close()
	}
	if backend != nil {
		backend.Close()
	}
	if runner != nil && runner.Running() {
		runner.Stop()
	}
	return nil
}

// IsDragMonitoring reports whether drag detection is armed.
func (s *Service) IsDragMonitoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragOn
}

// OnDragEvent registers a drag listener.
func (s *Service) OnDragEvent(fn func(event.DragEvent)) bus.Handle {
	return s.dragBus.Register(func(ev event.Event) {
		if ev.Kind == event.KindDrag {
			fn(*ev.Drag)
		}
	})
}

// RemoveDragEventListener drops a drag listener. Unknown handles return
// false.
func (s *Service) RemoveDragEventListener(h bus.Handle) bool {
	return s.dragBus.Unregister(h)
}

// SimulateDragEvent synthesizes one hovered+dropped sequence per path, in
// order, through the real bus. Input is validated before any event is
// published: an empty list, a blank path, or a path that is not an
// existing file rejects the whole call.
func (s *Service) SimulateDragEvent(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: no file paths given", ErrInvalidArgument)
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: blank file path", ErrInvalidArgument)
		}
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidArgument, p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %q is a directory", ErrInvalidArgument, p)
		}
	}

	platformName := event.Platform()
	for _, p := range paths {
		s.dragBus.Publish(event.NewDrag(event.DragEvent{
			EventType: event.DragHovered,
			FilePath:  p,
			Timestamp: event.Now(),
			Platform:  platformName,
			WindowID:  "0.0",
		}))
		s.dragBus.Publish(event.NewDrag(event.DragEvent{
			EventType: event.DragDropped,
			FilePath:  p,
			Timestamp: event.Now(),
			Platform:  platformName,
			WindowID:  "0.0",
		}))
	}
	return nil
}

// Monitors returns the current monitor snapshot, opening a short-lived
// backend when none is running.
func (s *Service) Monitors() ([]screen.Monitor, error) {
	s.mu.Lock()
	backend := s.backend
	s.mu.Unlock()
	if backend != nil {
		return backend.Displays()
	}

	b, err := s.opts.NewBackend()
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.Displays()
}

// SampleColor reads the screen pixel at logical coordinates through a
// backend, reusing the running one when available.
func (s *Service) SampleColor(x, y float64) (r, g, b, a uint8, err error) {
	s.mu.Lock()
	backend := s.backend
	s.mu.Unlock()
	if backend == nil {
		nb, err := s.opts.NewBackend()
		if err != nil {
			return 0, 0, 0, 0, err
		}
		defer nb.Close()
		backend = nb
	}

	monitors, err := backend.Displays()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	px, py, _ := screen.Normalize(x, y, monitors)
	return backend.SamplePixel(px, py)
}

// Status snapshots the service for control surfaces.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		PointerMonitoring:  s.pointerOn,
		KeyboardMonitoring: s.keyboardOn,
		DragMonitoring:     s.dragOn,
		HelperPath:         s.helperPath,
		UptimeSeconds:      int64(time.Since(s.started).Seconds()),
		LayoutName:         s.opts.Layout.Name,
	}
	st.EpisodesOpened = s.tracker.Opened()
	return st
}

// Close stops everything and drains both buses.
func (s *Service) Close() {
	s.StopDragMonitor()
	s.StopPointerMonitor()
	s.StopKeyboardMonitor()

	s.mu.Lock()
	s.closed = true
	source := s.source
	s.source = nil
	s.mu.Unlock()
	if source != nil {
		source.Close()
	}

	s.pointerBus.Close()
	s.keyboardBus.Close()
	s.dragBus.Close()
}

// ensureSourceLocked opens the pointer hook and subscribes the dispatcher.
// One subscription serves both monitors.
func (s *Service) ensureSourceLocked() error {
	if s.source != nil {
		return nil
	}
	source := s.opts.NewSource(s.monitorSnapshot)
	id, err := source.Subscribe(s.dispatchSample)
	if err != nil {
		source.Close()
		return err
	}
	s.source = source
	s.sourceSub = id
	return nil
}

// releaseSourceLocked closes the hook when neither monitor needs it.
func (s *Service) releaseSourceLocked() {
	if s.source == nil || s.pointerOn || s.dragOn {
		return
	}
	s.source.Unsubscribe(s.sourceSub)
	s.source.Close()
	s.source = nil
}

// dispatchSample fans one pointer sample out: to pointer listeners, to the
// in-process sensor manager, and to the helper driver. Runs on the hook's
// reader goroutine; everything downstream is queued.
func (s *Service) dispatchSample(sample pointer.Sample) {
	s.mu.Lock()
	pointerOn := s.pointerOn
	dragOn := s.dragOn
	manager := s.manager
	helperMode := s.helperPath != ""
	s.mu.Unlock()

	if pointerOn {
		s.pointerBus.Publish(event.NewPointer(pointerEventFrom(sample)))
	}
	if !dragOn {
		return
	}
	if manager != nil {
		manager.HandleSample(sample)
	}
	if helperMode {
		s.driveHelper(sample)
	}
}

// driveHelper spawns the helper on a qualifying button-down and shuts it
// down on release, mirroring the in-process lifecycle across the process
// boundary.
func (s *Service) driveHelper(sample pointer.Sample) {
	switch sample.Kind {
	case pointer.Down:
		if !s.buttonQualifies(sample.Button) {
			return
		}
		s.mu.Lock()
		if s.dragging || !s.dragOn {
			s.mu.Unlock()
			return
		}
		s.dragging = true
		path := s.helperPath
		s.mu.Unlock()

		x, y := s.toLogical(sample)
		if err := s.runner.Start(path, x, y); err != nil {
			slog.Warn("failed to start drag helper", "error", err)
			s.mu.Lock()
			s.dragging = false
			s.mu.Unlock()
		}
	case pointer.Up:
		s.mu.Lock()
		wasDragging := s.dragging
		s.dragging = false
		s.mu.Unlock()
		if wasDragging {
			go s.runner.Stop()
		}
	}
}

func (s *Service) onHelperDeath() {
	s.mu.Lock()
	s.dragOn = false
	s.dragging = false
	s.releaseSourceLocked()
	s.mu.Unlock()
}

func (s *Service) buttonQualifies(button int) bool {
	if len(s.opts.Buttons) == 0 {
		return true
	}
	for _, b := range s.opts.Buttons {
		if b == button {
			return true
		}
	}
	return false
}

// monitorSnapshot serves the pointer source's monitor lookups from the last
// known snapshot, refreshing through the backend when one is running.
func (s *Service) monitorSnapshot() []screen.Monitor {
	s.mu.Lock()
	backend := s.backend
	cached := s.monitors
	s.mu.Unlock()

	if backend != nil {
		if monitors, err := backend.Displays(); err == nil {
			s.mu.Lock()
			s.monitors = monitors
			s.mu.Unlock()
			return monitors
		}
	}
	return cached
}

// toLogical converts a physical sample position into the logical units of
// the monitor owning it, the coordinate space of the helper contract.
func (s *Service) toLogical(sample pointer.Sample) (float64, float64) {
	for _, m := range s.monitorSnapshot() {
		if m.ID == sample.MonitorID && m.Scale > 0 {
			return float64(sample.X) / m.Scale, float64(sample.Y) / m.Scale
		}
	}
	return float64(sample.X), float64(sample.Y)
}

func pointerEventFrom(s pointer.Sample) event.PointerEvent {
	var eventType string
	switch s.Kind {
	case pointer.Down:
		eventType = event.PointerDown
	case pointer.Up:
		eventType = event.PointerUp
	case pointer.Wheel:
		eventType = event.PointerWheel
	default:
		eventType = event.PointerMove
	}
	return event.PointerEvent{
		EventType: eventType,
		X:         float64(s.X),
		Y:         float64(s.Y),
		Button:    s.Button,
		Timestamp: event.Timestamp(s.Time),
		Platform:  event.Platform(),
	}
}
