//go:build linux

package helper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/1broseidon/dragsense/internal/episode"
	"github.com/1broseidon/dragsense/internal/event"
	"github.com/1broseidon/dragsense/internal/grid"
	"github.com/1broseidon/dragsense/internal/platform"
	"github.com/1broseidon/dragsense/internal/pointer"
	"github.com/1broseidon/dragsense/internal/screen"
)

// dropDrain is how long Serve keeps reading after the first drop so a
// multi-file drop streams every path before exit.
const dropDrain = 150 * time.Millisecond

// Serve runs the helper side of the wire contract: arm a sensor
// constellation around the logical position (x, y), stream drag events to
// out, and exit on drop, on the stdin shutdown handshake, or on ctx
// cancellation.
func Serve(ctx context.Context, x, y float64, layout grid.Layout, out io.Writer, in io.Reader) error {
	backend, err := platform.NewX11Backend()
	if err != nil {
		return fmt.Errorf("failed to open windowing backend: %w", err)
	}
	defer backend.Close()

	monitors, err := backend.Displays()
	if err != nil {
		return fmt.Errorf("failed to enumerate monitors: %w", err)
	}
	if len(monitors) == 0 {
		return fmt.Errorf("no monitors available")
	}

	px, py, monitorID := screen.Normalize(x, y, monitors)
	mon := monitors[0]
	for _, m := range monitors {
		if m.ID == monitorID {
			mon = m
			break
		}
	}

	events := make(chan event.DragEvent, 64)
	tracker := episode.NewTracker()
	backend.SetDragCallback(func(cb platform.DragCallback) {
		if ev, ok := tracker.Translate(cb); ok {
			select {
			case events <- ev:
			default:
			}
		}
	})

	origin := pointer.Sample{X: px, Y: py, Kind: pointer.Down, Time: time.Now(), MonitorID: mon.ID}
	specs := grid.Plan(px, py, mon, layout)
	created := make([]platform.WindowID, 0, len(specs))
	defer func() {
		for _, id := range created {
			backend.DestroySensorWindow(id)
		}
	}()
	tracker.Open(origin, specs)
	for _, spec := range specs {
		id, err := backend.CreateSensorWindow(spec.Rect)
		if err != nil {
			return fmt.Errorf("failed to create sensor window: %w", err)
		}
		created = append(created, id)
	}

	shutdown := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if IsShutdown(scanner.Text()) {
				close(shutdown)
				return
			}
		}
	}()

	var deadline <-chan time.Time
	for {
		select {
		case ev := <-events:
			if err := WriteEvent(out, ev); err != nil {
				return err
			}
			if ev.EventType == event.DragDropped && deadline == nil {
				deadline = time.After(dropDrain)
			}
		case <-deadline:
			return nil
		case <-shutdown:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
