package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("failed to get status: %w", err)
	}

	return nil, GetStatusOutput{
		DaemonRunning:      status.DaemonRunning,
		PointerMonitoring:  status.PointerMonitoring,
		KeyboardMonitoring: status.KeyboardMonitoring,
		DragMonitoring:     status.DragMonitoring,
		HelperPath:         status.HelperPath,
		Layout:             status.Layout,
		UptimeSeconds:      status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.client.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("failed to list monitors: %w", err)
	}

	entries := make([]MonitorEntry, len(data.Monitors))
	for i, m := range data.Monitors {
		entries[i] = MonitorEntry{
			ID:     m.ID,
			Name:   m.Name,
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
			Scale:  m.Scale,
		}
	}

	return nil, ListMonitorsOutput{Monitors: entries}, nil
}

func (s *Server) handleSimulateDrag(_ context.Context, _ *mcpsdk.CallToolRequest, args SimulateDragInput) (*mcpsdk.CallToolResult, SimulateDragOutput, error) {
	if len(args.FilePaths) == 0 {
		return nil, SimulateDragOutput{}, fmt.Errorf("file_paths must not be empty")
	}

	if err := s.client.SimulateDrag(args.FilePaths); err != nil {
		return nil, SimulateDragOutput{}, fmt.Errorf("failed to simulate drag: %w", err)
	}

	// Each path produces one hovered and one dropped event.
	return nil, SimulateDragOutput{EventCount: len(args.FilePaths) * 2}, nil
}

func (s *Server) handleSampleColor(_ context.Context, _ *mcpsdk.CallToolRequest, args SampleColorInput) (*mcpsdk.CallToolResult, SampleColorOutput, error) {
	data, err := s.client.SampleColor(args.X, args.Y)
	if err != nil {
		return nil, SampleColorOutput{}, fmt.Errorf("failed to sample color: %w", err)
	}

	return nil, SampleColorOutput{
		R:   data.R,
		G:   data.G,
		B:   data.B,
		A:   data.A,
		Hex: data.Hex,
	}, nil
}
