package helper

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/dragsense/internal/event"
)

// The test binary doubles as the helper process: when re-executed with
// HELPER_TEST_MODE set, it speaks the wire contract instead of running
// tests.
func TestMain(m *testing.M) {
	switch os.Getenv("HELPER_TEST_MODE") {
	case "":
		os.Exit(m.Run())
	case "stream":
		fmt.Println(`{"event_type":"hovered_file","x":10,"y":20,"timestamp":1,"platform":"linux","window_id":"1.2"}`)
		fmt.Println(`{"event_type":"dropped_file","file_path":"/tmp/f.txt","x":10,"y":20,"timestamp":2,"platform":"linux","window_id":"1.2"}`)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if IsShutdown(scanner.Text()) {
				os.Exit(0)
			}
		}
		os.Exit(0)
	case "crash":
		os.Exit(3)
	}
}

type capture struct {
	mu     sync.Mutex
	events []event.DragEvent
	deaths int
}

func (c *capture) publish(ev event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Kind == event.KindDrag {
		c.events = append(c.events, *ev.Drag)
	}
}

func (c *capture) died() {
	c.mu.Lock()
	c.deaths++
	c.mu.Unlock()
}

func (c *capture) snapshot() ([]event.DragEvent, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.DragEvent(nil), c.events...), c.deaths
}

func startTestHelper(t *testing.T, mode string, c *capture) *Runner {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("HELPER_TEST_MODE", mode)
	r := NewRunner(c.publish, c.died)
	if err := r.Start(exe, 100, 200); err != nil {
		t.Fatal(err)
	}
	return r
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunnerForwardsDecodedEvents(t *testing.T) {
	c := &capture{}
	r := startTestHelper(t, "stream", c)
	defer r.Stop()

	waitUntil(t, "two events", func() bool {
		evs, _ := c.snapshot()
		return len(evs) == 2
	})

	evs, _ := c.snapshot()
	if evs[0].EventType != event.DragHovered || evs[1].EventType != event.DragDropped {
		t.Fatalf("unexpected sequence: %+v", evs)
	}
	if evs[1].FilePath != "/tmp/f.txt" {
		t.Fatalf("file path lost: %+v", evs[1])
	}
}

func TestRunnerStopHandshake(t *testing.T) {
	c := &capture{}
	r := startTestHelper(t, "stream", c)

	r.Stop()
	if r.Running() {
		t.Fatal("runner still reports running after stop")
	}

	// A handshake exit is not a death.
	_, deaths := c.snapshot()
	if deaths != 0 {
		t.Fatalf("clean stop reported as death %d times", deaths)
	}
}

func TestRunnerReportsUnexpectedDeath(t *testing.T) {
	c := &capture{}
	startTestHelper(t, "crash", c)

	waitUntil(t, "death report", func() bool {
		_, deaths := c.snapshot()
		return deaths == 1
	})

	evs, _ := c.snapshot()
	if len(evs) != 1 || evs[0].EventType != event.MonitorTerminated {
		t.Fatalf("expected one monitor_terminated event, got %+v", evs)
	}
}

func TestRunnerRejectsDoubleStart(t *testing.T) {
	c := &capture{}
	r := startTestHelper(t, "stream", c)
	defer r.Stop()

	exe, _ := os.Executable()
	if err := r.Start(exe, 0, 0); err == nil {
		t.Fatal("expected error starting a second helper")
	}
}
