package helper

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/1broseidon/dragsense/internal/event"
)

// stopTimeout bounds how long Stop waits after the shutdown handshake
// before killing the process.
const stopTimeout = 2 * time.Second

// Runner spawns and supervises one helper process. Drag events decoded from
// the helper's stdout go to publish; if the helper dies without being asked
// to, onDeath fires once so the owner can flip monitoring off.
type Runner struct {
	publish func(event.Event)
	onDeath func()

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stopping bool
	exited   chan struct{}
}

// NewRunner returns an idle runner. Both callbacks may be nil.
func NewRunner(publish func(event.Event), onDeath func()) *Runner {
	return &Runner{publish: publish, onDeath: onDeath}
}

// Start launches the helper at path with the logical pointer position as
// argv and begins decoding its event stream.
func (r *Runner) Start(path string, x, y float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return fmt.Errorf("helper already running")
	}

	cmd := exec.Command(path,
		strconv.FormatFloat(x, 'f', -1, 64),
		strconv.FormatFloat(y, 'f', -1, 64),
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open helper stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open helper stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch helper %s: %w", path, err)
	}

	r.cmd = cmd
	r.stdin = stdin
	r.stopping = false
	r.exited = make(chan struct{})

	go r.readLoop(stdout)
	go r.waitLoop(cmd)
	return nil
}

// Running reports whether a helper process is alive.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Stop performs the shutdown handshake and waits for exit, killing the
// process if it overstays.
func (r *Runner) Stop() {
	r.mu.Lock()
	cmd := r.cmd
	stdin := r.stdin
	exited := r.exited
	r.stopping = true
	r.mu.Unlock()
	if cmd == nil {
		return
	}

	if stdin != nil {
		fmt.Fprintln(stdin, ShutdownCommand)
		stdin.Close()
	}

	select {
	case <-exited:
	case <-time.After(stopTimeout):
		slog.Warn("helper ignored shutdown handshake, killing", "pid", cmd.Process.Pid)
		cmd.Process.Kill()
		<-exited
	}
}

func (r *Runner) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		ev, err := ParseEvent(line)
		if err != nil {
			slog.Warn("helper produced malformed event", "error", err)
			continue
		}
		if r.publish != nil {
			r.publish(event.NewDrag(ev))
		}
	}
}

// waitLoop reaps the process. An exit nobody asked for is reported as
// monitor_terminated before the owner is told.
func (r *Runner) waitLoop(cmd *exec.Cmd) {
	err := cmd.Wait()

	r.mu.Lock()
	expected := r.stopping
	exited := r.exited
	r.cmd = nil
	r.stdin = nil
	r.mu.Unlock()
	close(exited)

	if expected {
		return
	}

	slog.Warn("helper exited unexpectedly", "error", err)
	if r.publish != nil {
		r.publish(event.NewDrag(event.DragEvent{
			EventType: event.MonitorTerminated,
			Timestamp: event.Now(),
			Platform:  event.Platform(),
		}))
	}
	if r.onDeath != nil {
		r.onDeath()
	}
}
