package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"

	"github.com/1broseidon/dragsense/internal/daemon"
	"github.com/1broseidon/dragsense/internal/runtimepath"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	svc          *daemon.Service
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server in front of the service
func NewServer(svc *daemon.Service) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		svc:        svc,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandSimulateDrag:
		return s.handleSimulateDrag(req.Payload)
	case CommandSampleColor:
		return s.handleSampleColor(req.Payload)
	case CommandStartPointer:
		return errToResponse(s.svc.StartPointerMonitor())
	case CommandStopPointer:
		return errToResponse(s.svc.StopPointerMonitor())
	case CommandStartKeyboard:
		return errToResponse(s.svc.StartKeyboardMonitor())
	case CommandStopKeyboard:
		return errToResponse(s.svc.StopKeyboardMonitor())
	case CommandStartDrag:
		return errToResponse(s.svc.StartDragMonitor())
	case CommandStopDrag:
		return errToResponse(s.svc.StopDragMonitor())
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	st := s.svc.Status()
	resp, _ := NewOKResponse(StatusData{
		PointerMonitoring:  st.PointerMonitoring,
		KeyboardMonitoring: st.KeyboardMonitoring,
		DragMonitoring:     st.DragMonitoring,
		HelperPath:         st.HelperPath,
		Layout:             st.LayoutName,
		UptimeSeconds:      st.UptimeSeconds,
		DaemonRunning:      true,
		EpisodesOpened:     st.EpisodesOpened,
	})
	return resp
}

func (s *Server) handleGetMonitors() *Response {
	monitors, err := s.svc.Monitors()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	infos := make([]MonitorInfo, len(monitors))
	for i, m := range monitors {
		infos[i] = MonitorInfo{
			ID:     m.ID,
			Name:   m.Name,
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
			Scale:  m.Scale,
		}
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: infos})
	return resp
}

func (s *Server) handleSimulateDrag(payload json.RawMessage) *Response {
	var p SimulateDragPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid simulate payload: %v", err))
	}
	if err := s.svc.SimulateDragEvent(p.FilePaths); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to simulate drag: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSampleColor(payload json.RawMessage) *Response {
	var p SampleColorPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid sample payload: %v", err))
	}
	r, g, b, a, err := s.svc.SampleColor(p.X, p.Y)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to sample color: %v", err))
	}
	resp, _ := NewOKResponse(SampleColorData{
		R: r, G: g, B: b, A: a,
		Hex: fmt.Sprintf("#%02x%02x%02x", r, g, b),
	})
	return resp
}

func errToResponse(err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
