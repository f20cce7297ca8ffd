package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/dragsense/internal/ipc"
)

const (
	ServerName    = "dragsense"
	ServerVersion = "0.1.0"
)

// Server is the MCP server exposing drag detection controls over stdio.
// All tools proxy to the running daemon through the IPC client.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates a new MCP server backed by the daemon's IPC socket.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server over stdio (blocks until context cancellation).
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get the drag detection daemon status: whether pointer and drag monitoring are active, the configured helper path and sensor layout, and daemon uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List all attached displays with their position, size and scale factor in the virtual desktop.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "simulate_drag",
		Description: "Inject a synthetic file drag: for each path, emit a hovered event followed by a dropped event to all drag listeners. Paths must name existing files.",
	}, s.handleSimulateDrag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "sample_color",
		Description: "Sample the screen pixel color at logical desktop coordinates. Returns RGBA components and a hex string.",
	}, s.handleSampleColor)
}
