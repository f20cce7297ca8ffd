package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	DaemonRunning      bool   `json:"daemon_running"`
	PointerMonitoring  bool   `json:"pointer_monitoring"`
	KeyboardMonitoring bool   `json:"keyboard_monitoring"`
	DragMonitoring     bool   `json:"drag_monitoring"`
	HelperPath         string `json:"helper_path,omitempty"`
	Layout             string `json:"layout"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// MonitorEntry describes one attached display.
type MonitorEntry struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []MonitorEntry `json:"monitors"`
}

// SimulateDragInput is the input for the simulate_drag tool.
type SimulateDragInput struct {
	FilePaths []string `json:"file_paths" jsonschema:"required,Absolute paths of existing files to inject as a synthetic hover+drop sequence"`
}

// SimulateDragOutput is the output for the simulate_drag tool.
type SimulateDragOutput struct {
	EventCount int `json:"event_count"`
}

// SampleColorInput is the input for the sample_color tool.
type SampleColorInput struct {
	X float64 `json:"x" jsonschema:"required,Logical X coordinate in the virtual desktop"`
	Y float64 `json:"y" jsonschema:"required,Logical Y coordinate in the virtual desktop"`
}

// SampleColorOutput is the output for the sample_color tool.
type SampleColorOutput struct {
	R   uint8  `json:"r"`
	G   uint8  `json:"g"`
	B   uint8  `json:"b"`
	A   uint8  `json:"a"`
	Hex string `json:"hex"`
}
