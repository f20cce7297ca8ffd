package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandGetMonitors   CommandType = "GET_MONITORS"
	CommandSimulateDrag  CommandType = "SIMULATE_DRAG"
	CommandSampleColor   CommandType = "SAMPLE_COLOR"
	CommandStartPointer  CommandType = "START_POINTER"
	CommandStopPointer   CommandType = "STOP_POINTER"
	CommandStartKeyboard CommandType = "START_KEYBOARD"
	CommandStopKeyboard  CommandType = "STOP_KEYBOARD"
	CommandStartDrag     CommandType = "START_DRAG"
	CommandStopDrag      CommandType = "STOP_DRAG"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PointerMonitoring  bool   `json:"pointer_monitoring"`
	KeyboardMonitoring bool   `json:"keyboard_monitoring"`
	DragMonitoring     bool   `json:"drag_monitoring"`
	HelperPath         string `json:"helper_path,omitempty"`
	Layout             string `json:"layout"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
	DaemonRunning      bool   `json:"daemon_running"`
	EpisodesOpened     uint64 `json:"episodes_opened"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// SimulateDragPayload represents the payload for SIMULATE_DRAG
type SimulateDragPayload struct {
	FilePaths []string `json:"file_paths"`
}

// SampleColorPayload represents the payload for SAMPLE_COLOR
type SampleColorPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SampleColorData represents the data returned by SAMPLE_COLOR
type SampleColorData struct {
	R   uint8  `json:"r"`
	G   uint8  `json:"g"`
	B   uint8  `json:"b"`
	A   uint8  `json:"a"`
	Hex string `json:"hex"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
