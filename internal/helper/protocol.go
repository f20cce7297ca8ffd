// Package helper implements the sensor-window helper process boundary: a
// child process that hosts the windowing context and streams drag events
// back over its stdout, one JSON object per line.
package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/1broseidon/dragsense/internal/event"
)

// ShutdownCommand is the stdin line that asks the helper to exit cleanly.
const ShutdownCommand = "shutdown"

// WriteEvent emits one drag event as a JSON line.
func WriteEvent(w io.Writer, ev event.DragEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode drag event: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write drag event: %w", err)
	}
	return nil
}

// ParseEvent decodes one stdout line into a drag event.
func ParseEvent(line []byte) (event.DragEvent, error) {
	var ev event.DragEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return event.DragEvent{}, fmt.Errorf("malformed helper event: %w", err)
	}
	if ev.EventType == "" {
		return event.DragEvent{}, fmt.Errorf("helper event missing event_type")
	}
	return ev, nil
}

// IsShutdown reports whether a stdin line is the shutdown handshake.
func IsShutdown(line string) bool {
	return strings.TrimSpace(line) == ShutdownCommand
}
