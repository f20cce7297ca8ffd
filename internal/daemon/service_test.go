package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/dragsense/internal/event"
	"github.com/1broseidon/dragsense/internal/grid"
	"github.com/1broseidon/dragsense/internal/keyboard"
	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/pointer"
	"github.com/1broseidon/dragsense/internal/screen"
)

type fakeSource struct {
	mu     sync.Mutex
	subs   map[int]func(pointer.Sample)
	nextID int
	fail   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{subs: make(map[int]func(pointer.Sample)), nextID: 1}
}

func (f *fakeSource) Subscribe(fn func(pointer.Sample)) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return id, nil
}

func (f *fakeSource) Unsubscribe(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[id]; !ok {
		return false
	}
	delete(f.subs, id)
	return true
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) emit(s pointer.Sample) {
	f.mu.Lock()
	fns := make([]func(pointer.Sample), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

type fakeKeySource struct {
	mu     sync.Mutex
	subs   map[int]func(keyboard.Sample)
	nextID int
	fail   error
	closed bool
}

func newFakeKeySource() *fakeKeySource {
	return &fakeKeySource{subs: make(map[int]func(keyboard.Sample)), nextID: 1}
}

func (f *fakeKeySource) Subscribe(fn func(keyboard.Sample)) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return id, nil
}

func (f *fakeKeySource) Unsubscribe(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[id]; !ok {
		return false
	}
	delete(f.subs, id)
	return true
}

func (f *fakeKeySource) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeKeySource) emit(s keyboard.Sample) {
	f.mu.Lock()
	fns := make([]func(keyboard.Sample), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (f *fakeKeySource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeBackend struct {
	mu   sync.Mutex
	next platform.WindowID
	live map[platform.WindowID]grid.Rect
	cb   func(platform.DragCallback)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{next: 1, live: make(map[platform.WindowID]grid.Rect)}
}

func (f *fakeBackend) Displays() ([]screen.Monitor, error) {
	return []screen.Monitor{{ID: 0, Width: 1920, Height: 1080, Scale: 1.0}}, nil
}

func (f *fakeBackend) CreateSensorWindow(r grid.Rect) (platform.WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.live[id] = r
	return id, nil
}

func (f *fakeBackend) MoveSensorWindow(id platform.WindowID, x, y int) error { return nil }

func (f *fakeBackend) DestroySensorWindow(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, id)
	return nil
}

func (f *fakeBackend) SetDragCallback(fn func(platform.DragCallback)) {
	f.mu.Lock()
	f.cb = fn
	f.mu.Unlock()
}

func (f *fakeBackend) SamplePixel(x, y int) (r, g, b, a uint8, err error) {
	return 0x10, 0x20, 0x30, 0xff, nil
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *fakeBackend) fire(cb platform.DragCallback) {
	f.mu.Lock()
	fn := f.cb
	f.mu.Unlock()
	if fn != nil {
		fn(cb)
	}
}

func newTestService(t *testing.T) (*Service, *fakeSource, *fakeBackend) {
	t.Helper()
	s, fs, _, fb := newTestServiceWithKeys(t)
	return s, fs, fb
}

func newTestServiceWithKeys(t *testing.T) (*Service, *fakeSource, *fakeKeySource, *fakeBackend) {
	t.Helper()
	fs := newFakeSource()
	fk := newFakeKeySource()
	fb := newFakeBackend()
	s := NewService(Options{
		NewBackend:   func() (platform.Backend, error) { return fb, nil },
		NewSource:    func(func() []screen.Monitor) pointer.Source { return fs },
		NewKeySource: func() keyboard.Source { return fk },
	})
	t.Cleanup(s.Close)
	return s, fs, fk, fb
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPointerMonitorLifecycle(t *testing.T) {
	s, fs, _ := newTestService(t)

	if s.IsPointerMonitoring() {
		t.Fatal("fresh service should not be monitoring")
	}
	if err := s.StartPointerMonitor(); err != nil {
		t.Fatal(err)
	}
	if err := s.StartPointerMonitor(); err != nil {
		t.Fatalf("double start should be a no-op, got %v", err)
	}
	if !s.IsPointerMonitoring() {
		t.Fatal("monitor should be on")
	}

	var mu sync.Mutex
	var got []event.PointerEvent
	s.OnPointerEvent(func(ev event.PointerEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	fs.emit(pointer.Sample{X: 10, Y: 20, Kind: pointer.Move, Time: time.Now()})
	fs.emit(pointer.Sample{X: 10, Y: 20, Button: 1, Kind: pointer.Down, Time: time.Now()})

	waitFor(t, "pointer events", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})
	mu.Lock()
	if got[0].EventType != event.PointerMove || got[1].EventType != event.PointerDown {
		t.Fatalf("unexpected events: %+v", got)
	}
	if got[1].Button != 1 {
		t.Fatalf("button lost: %+v", got[1])
	}
	mu.Unlock()

	if err := s.StopPointerMonitor(); err != nil {
		t.Fatal(err)
	}
	if err := s.StopPointerMonitor(); err != nil {
		t.Fatalf("double stop should be a no-op, got %v", err)
	}
}

func TestKeyboardMonitorLifecycle(t *testing.T) {
	s, _, fk, _ := newTestServiceWithKeys(t)

	if s.IsKeyboardMonitoring() {
		t.Fatal("fresh service should not be monitoring")
	}
	if err := s.StartKeyboardMonitor(); err != nil {
		t.Fatal(err)
	}
	if err := s.StartKeyboardMonitor(); err != nil {
		t.Fatalf("double start should be a no-op, got %v", err)
	}
	if !s.IsKeyboardMonitoring() {
		t.Fatal("monitor should be on")
	}

	var mu sync.Mutex
	var got []event.KeyboardEvent
	s.OnKeyboardEvent(func(ev event.KeyboardEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	fk.emit(keyboard.Sample{Code: 65, Name: "A", Modifiers: []string{"shift"}, Down: true, Time: time.Now()})
	fk.emit(keyboard.Sample{Code: 65, Name: "A", Down: false, Time: time.Now()})

	waitFor(t, "keyboard events", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})
	mu.Lock()
	if got[0].EventType != event.KeyDown || got[1].EventType != event.KeyUp {
		t.Fatalf("unexpected events: %+v", got)
	}
	if got[0].KeyName != "A" || len(got[0].Modifiers) != 1 || got[0].Modifiers[0] != "shift" {
		t.Fatalf("payload lost: %+v", got[0])
	}
	if got[1].Modifiers == nil {
		t.Fatalf("modifiers must never be null on the wire: %+v", got[1])
	}
	mu.Unlock()

	if st := s.Status(); !st.KeyboardMonitoring {
		t.Fatal("status should reflect keyboard monitoring")
	}

	if err := s.StopKeyboardMonitor(); err != nil {
		t.Fatal(err)
	}
	if !fk.isClosed() {
		t.Fatal("stop should release the keyboard hook")
	}
	if err := s.StopKeyboardMonitor(); err != nil {
		t.Fatalf("double stop should be a no-op, got %v", err)
	}
}

func TestKeyboardMonitorPermissionDenied(t *testing.T) {
	fk := newFakeKeySource()
	fk.fail = keyboard.ErrPermissionDenied
	s := NewService(Options{
		NewBackend:   func() (platform.Backend, error) { return newFakeBackend(), nil },
		NewSource:    func(func() []screen.Monitor) pointer.Source { return newFakeSource() },
		NewKeySource: func() keyboard.Source { return fk },
	})
	defer s.Close()

	err := s.StartKeyboardMonitor()
	if !errors.Is(err, keyboard.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if s.IsKeyboardMonitoring() {
		t.Fatal("failed start must leave monitoring off")
	}
}

func TestPointerMonitorPermissionDenied(t *testing.T) {
	fs := newFakeSource()
	fs.fail = pointer.ErrPermissionDenied
	s := NewService(Options{
		NewBackend: func() (platform.Backend, error) { return newFakeBackend(), nil },
		NewSource:  func(func() []screen.Monitor) pointer.Source { return fs },
	})
	defer s.Close()

	err := s.StartPointerMonitor()
	if !errors.Is(err, pointer.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if s.IsPointerMonitoring() {
		t.Fatal("failed start must leave monitoring off")
	}
}

func TestRemoveListener(t *testing.T) {
	s, _, _ := newTestService(t)
	h := s.OnPointerEvent(func(event.PointerEvent) {})
	if !s.RemovePointerEventListener(h) {
		t.Fatal("expected true removing a live listener")
	}
	if s.RemovePointerEventListener(h) {
		t.Fatal("expected false removing it twice")
	}
	if s.RemoveDragEventListener(12345) {
		t.Fatal("expected false for unknown drag handle")
	}
}

func TestSimulateDragEventValidation(t *testing.T) {
	s, _, _ := newTestService(t)

	real := filepath.Join(t.TempDir(), "dropped.txt")
	if err := os.WriteFile(real, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.SimulateDragEvent(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty input: expected ErrInvalidArgument, got %v", err)
	}
	if err := s.SimulateDragEvent([]string{real, "  "}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("blank path: expected ErrInvalidArgument, got %v", err)
	}
	if err := s.SimulateDragEvent([]string{real, filepath.Join(t.TempDir(), "missing.txt")}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing file: expected ErrInvalidArgument, got %v", err)
	}
	if err := s.SimulateDragEvent([]string{t.TempDir()}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("directory: expected ErrInvalidArgument, got %v", err)
	}

	var mu sync.Mutex
	var got []event.DragEvent
	s.OnDragEvent(func(ev event.DragEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	// Validation must reject before side effects: the failed calls above
	// published nothing.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	if len(got) != 0 {
		t.Fatalf("rejected simulate published events: %+v", got)
	}
	mu.Unlock()
}

func TestSimulateDragEventSequence(t *testing.T) {
	s, _, _ := newTestService(t)

	var mu sync.Mutex
	var got []event.DragEvent
	s.OnDragEvent(func(ev event.DragEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	for _, p := range []string{pathA, pathB} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.SimulateDragEvent([]string{pathA, pathB}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "simulated events", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 4
	})

	mu.Lock()
	defer mu.Unlock()
	want := []struct{ typ, path string }{
		{event.DragHovered, pathA},
		{event.DragDropped, pathA},
		{event.DragHovered, pathB},
		{event.DragDropped, pathB},
	}
	for i, w := range want {
		if got[i].EventType != w.typ || got[i].FilePath != w.path {
			t.Fatalf("event %d: expected %s %s, got %+v", i, w.typ, w.path, got[i])
		}
	}
}

func TestConfigureDragMonitorValidatesPath(t *testing.T) {
	s, _, _ := newTestService(t)

	if err := s.ConfigureDragMonitor("/no/such/helper"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := s.ConfigureDragMonitor(""); err != nil {
		t.Fatalf("empty path selects in-process mode, got %v", err)
	}

	helperBin := filepath.Join(t.TempDir(), "helper")
	if err := os.WriteFile(helperBin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := s.ConfigureDragMonitor(helperBin); err != nil {
		t.Fatal(err)
	}
}

func TestDragMonitorEndToEnd(t *testing.T) {
	s, fs, fb := newTestService(t)

	if err := s.StartDragMonitor(); err != nil {
		t.Fatal(err)
	}
	if err := s.StartDragMonitor(); err != nil {
		t.Fatalf("double start should be a no-op, got %v", err)
	}
	if !s.IsDragMonitoring() {
		t.Fatal("drag monitor should be on")
	}

	var mu sync.Mutex
	var got []event.DragEvent
	s.OnDragEvent(func(ev event.DragEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	fs.emit(pointer.Sample{X: 500, Y: 500, Button: 1, Kind: pointer.Down, Time: time.Now()})
	waitFor(t, "sensors armed", func() bool { return fb.liveCount() == 4 })

	fb.fire(platform.DragCallback{
		Kind: platform.Dropped, FilePath: "/tmp/dropped.txt", X: 512, Y: 440,
		Time: time.Now(), Window: 2,
	})
	waitFor(t, "drop delivered", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})
	mu.Lock()
	if got[0].EventType != event.DragDropped || got[0].WindowID != "1.2" {
		t.Fatalf("unexpected drop event: %+v", got[0])
	}
	mu.Unlock()

	fs.emit(pointer.Sample{X: 500, Y: 500, Button: 1, Kind: pointer.Up, Time: time.Now()})
	waitFor(t, "sensors torn down", func() bool { return fb.liveCount() == 0 })

	// The episode count sticks around after the drag finishes.
	if st := s.Status(); st.EpisodesOpened != 1 {
		t.Fatalf("expected 1 episode opened, got %d", st.EpisodesOpened)
	}

	if err := s.StopDragMonitor(); err != nil {
		t.Fatal(err)
	}
	if s.IsDragMonitoring() {
		t.Fatal("drag monitor should be off")
	}
	if err := s.StopDragMonitor(); err != nil {
		t.Fatalf("double stop should be a no-op, got %v", err)
	}
}

func TestSampleColor(t *testing.T) {
	s, _, _ := newTestService(t)
	r, g, b, a, err := s.SampleColor(10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if r != 0x10 || g != 0x20 || b != 0x30 || a != 0xff {
		t.Fatalf("unexpected color %02x%02x%02x%02x", r, g, b, a)
	}
}

func TestMonitorsWithoutRunningBackend(t *testing.T) {
	s, _, _ := newTestService(t)
	monitors, err := s.Monitors()
	if err != nil {
		t.Fatal(err)
	}
	if len(monitors) != 1 || monitors[0].Width != 1920 {
		t.Fatalf("unexpected monitors %+v", monitors)
	}
}

func TestStatusSnapshot(t *testing.T) {
	s, _, _ := newTestService(t)
	st := s.Status()
	if st.PointerMonitoring || st.DragMonitoring {
		t.Fatalf("fresh service status should be idle: %+v", st)
	}
	if st.LayoutName != "frame4" {
		t.Fatalf("expected default layout frame4, got %q", st.LayoutName)
	}

	if err := s.StartPointerMonitor(); err != nil {
		t.Fatal(err)
	}
	if st := s.Status(); !st.PointerMonitoring {
		t.Fatal("status should reflect pointer monitoring")
	}
}
