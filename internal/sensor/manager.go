// Package sensor drives the sensor-window lifecycle: a constellation of
// tiny drop-target windows that appears on button-down, shadows the pointer
// while the button is held, and vanishes on release.
package sensor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/dragsense/internal/episode"
	"github.com/1broseidon/dragsense/internal/event"
	"github.com/1broseidon/dragsense/internal/grid"
	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/pointer"
	"github.com/1broseidon/dragsense/internal/screen"
)

// ErrWindowCreationFailed is reported through the error callback when the
// windowing system refuses a sensor window. The episode is aborted and
// already-created windows torn down; the manager stays usable.
var ErrWindowCreationFailed = errors.New("sensor: window creation failed")

type state int

const (
	stateIdle state = iota
	stateArmed
	stateClosing
)

type cmdKind int

const (
	cmdSample cmdKind = iota
	cmdStop
)

type command struct {
	kind   cmdKind
	sample pointer.Sample
}

// Config tunes the manager.
type Config struct {
	// Layout of the sensor constellation.
	Layout grid.Layout
	// Buttons that arm the sensors. Empty means any button.
	Buttons []int
	// QueueSize bounds the command queue. Zero means the default.
	QueueSize int
	// OnError receives recoverable failures. May be nil.
	OnError func(error)
}

const defaultQueueSize = 1024

// Manager owns every sensor window handle for its entire lifetime. All
// window operations happen on the manager's actor goroutine, fed by one
// ordered command channel; window handles never cross goroutines.
type Manager struct {
	backend platform.Backend
	tracker *episode.Tracker
	publish func(event.Event)
	cfg     Config

	cmds chan command
	quit chan struct{}
	done chan struct{}

	// actor-goroutine state, never touched elsewhere
	st       state
	windows  []platform.WindowID
	monitor  screen.Monitor
	monitors []screen.Monitor
}

// NewManager wires a manager to its backend and starts the actor. publish
// receives translated drag events; it must not block.
func NewManager(backend platform.Backend, tracker *episode.Tracker, publish func(event.Event), cfg Config) *Manager {
	if cfg.Layout.Count() == 0 {
		cfg.Layout = grid.Frame4()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	m := &Manager{
		backend: backend,
		tracker: tracker,
		publish: publish,
		cfg:     cfg,
		cmds:    make(chan command, cfg.QueueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	backend.SetDragCallback(m.handleDragCallback)
	go m.run()
	return m
}

// HandleSample feeds one pointer sample into the actor. It never blocks the
// pointer hook: when the queue is full, move samples are dropped (the next
// one supersedes them anyway) and button transitions overwrite the
// oldest queued move.
func (m *Manager) HandleSample(s pointer.Sample) {
	cmd := command{kind: cmdSample, sample: s}
	select {
	case m.cmds <- cmd:
		return
	default:
	}
	if s.Kind == pointer.Move || s.Kind == pointer.Wheel {
		return
	}
	// A full queue must not swallow a button transition; make room.
	select {
	case <-m.cmds:
	default:
	}
	select {
	case m.cmds <- cmd:
	default:
		slog.Warn("sensor: command queue wedged, dropping button transition", "kind", s.Kind.String())
	}
}

// Stop force-closes an armed episode out of band, without waiting for
// button-up.
func (m *Manager) Stop() {
	select {
	case m.cmds <- command{kind: cmdStop}:
	case <-m.done:
	}
}

// Close tears down any armed episode and stops the actor. Idempotent.
func (m *Manager) Close() {
	select {
	case <-m.done:
		return
	default:
	}
	select {
	case m.quit <- struct{}{}:
		<-m.done
	case <-m.done:
	}
}

func (m *Manager) run() {
	defer close(m.done)
	for {
		select {
		case cmd := <-m.cmds:
			switch cmd.kind {
			case cmdSample:
				m.handleSample(cmd.sample)
			case cmdStop:
				m.teardown()
			}
		case <-m.quit:
			m.teardown()
			return
		}
	}
}

func (m *Manager) handleSample(s pointer.Sample) {
	switch s.Kind {
	case pointer.Down:
		if m.st == stateIdle && m.buttonQualifies(s.Button) {
			m.arm(s)
		}
	case pointer.Move:
		if m.st == stateArmed {
			m.follow(s)
		}
	case pointer.Up:
		if m.st == stateArmed {
			m.teardown()
		}
	}
}

func (m *Manager) buttonQualifies(button int) bool {
	if len(m.cfg.Buttons) == 0 {
		return true
	}
	for _, b := range m.cfg.Buttons {
		if b == button {
			return true
		}
	}
	return false
}

// arm re-queries monitors, plans the constellation around the button-down
// position, and creates the windows. Any creation failure rolls back the
// windows already created and aborts the episode; the pointer hook never
// sees the error.
func (m *Manager) arm(s pointer.Sample) {
	monitors, err := m.backend.Displays()
	if err != nil || len(monitors) == 0 {
		m.reportError(fmt.Errorf("%w: no monitors: %v", ErrWindowCreationFailed, err))
		return
	}
	m.monitors = monitors
	m.monitor = monitorFor(s.X, s.Y, monitors)

	specs := grid.Plan(s.X, s.Y, m.monitor, m.cfg.Layout)
	windows := make([]platform.WindowID, 0, len(specs))
	for _, spec := range specs {
		id, err := m.backend.CreateSensorWindow(spec.Rect)
		if err != nil {
			for _, created := range windows {
				if derr := m.backend.DestroySensorWindow(created); derr != nil {
					slog.Debug("sensor: rollback destroy failed", "window", created, "error", derr)
				}
			}
			m.reportError(fmt.Errorf("%w: slot (%d,%d): %v",
				ErrWindowCreationFailed, spec.Slot.Row, spec.Slot.Col, err))
			return
		}
		windows = append(windows, id)
	}

	m.windows = windows
	m.st = stateArmed
	m.tracker.Open(s, specs)
}

// follow re-plans around the new pointer position and moves the existing
// windows. Windows are never recreated mid-episode; rect sizes are fixed
// per layout, so a move fully reconciles the plan.
func (m *Manager) follow(s pointer.Sample) {
	mon := m.monitor
	if !mon.ContainsPhysical(s.X, s.Y) {
		mon = monitorFor(s.X, s.Y, m.monitors)
		m.monitor = mon
	}

	specs := grid.Plan(s.X, s.Y, mon, m.cfg.Layout)
	for i, spec := range specs {
		if i >= len(m.windows) {
			break
		}
		if err := m.backend.MoveSensorWindow(m.windows[i], spec.Rect.X, spec.Rect.Y); err != nil {
			slog.Debug("sensor: move failed", "window", m.windows[i], "error", err)
		}
	}
}

// teardown runs the Armed -> Closing -> Idle path: mark the episode closing
// so in-flight callbacks still translate, destroy every window, then close
// the episode.
func (m *Manager) teardown() {
	if m.st == stateIdle {
		return
	}
	m.st = stateClosing
	m.tracker.BeginClose()

	for _, id := range m.windows {
		if err := m.backend.DestroySensorWindow(id); err != nil {
			slog.Debug("sensor: destroy failed", "window", id, "error", err)
		}
	}
	m.windows = nil
	m.tracker.Close()
	m.st = stateIdle
}

// handleDragCallback runs on the backend's event-loop goroutine. Callbacks
// with no open episode are a race between button-up and delivery; they are
// logged and dropped, never delivered.
func (m *Manager) handleDragCallback(cb platform.DragCallback) {
	ev, ok := m.tracker.Translate(cb)
	if !ok {
		slog.Debug("sensor: drag callback with no open episode dropped",
			"kind", cb.Kind.String(), "window", cb.Window)
		return
	}
	m.publish(event.NewDrag(ev))
}

func (m *Manager) reportError(err error) {
	slog.Warn("sensor: episode aborted", "error", err)
	if m.cfg.OnError != nil {
		m.cfg.OnError(err)
	}
}

func monitorFor(x, y int, monitors []screen.Monitor) screen.Monitor {
	id := screen.Locate(x, y, monitors)
	for _, mon := range monitors {
		if mon.ID == id {
			return mon
		}
	}
	return monitors[0]
}
