package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/dragsense/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	req := &Request{
		Command: CommandGetMonitors,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var monitors MonitorsData
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}

	return &monitors, nil
}

// SimulateDrag injects a synthetic hover+drop sequence for the given paths
func (c *Client) SimulateDrag(filePaths []string) error {
	payload, err := json.Marshal(SimulateDragPayload{
		FilePaths: filePaths,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal simulate payload: %w", err)
	}

	req := &Request{
		Command: CommandSimulateDrag,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// SampleColor reads the screen pixel at the given logical coordinates
func (c *Client) SampleColor(x, y float64) (*SampleColorData, error) {
	payload, err := json.Marshal(SampleColorPayload{X: x, Y: y})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sample payload: %w", err)
	}

	req := &Request{
		Command: CommandSampleColor,
		Payload: payload,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var data SampleColorData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse color data: %w", err)
	}

	return &data, nil
}

// StartPointerMonitor starts the global pointer stream
func (c *Client) StartPointerMonitor() error {
	_, err := c.sendRequest(&Request{Command: CommandStartPointer})
	return err
}

// StopPointerMonitor stops the global pointer stream
func (c *Client) StopPointerMonitor() error {
	_, err := c.sendRequest(&Request{Command: CommandStopPointer})
	return err
}

// StartKeyboardMonitor starts the global keyboard stream
func (c *Client) StartKeyboardMonitor() error {
	_, err := c.sendRequest(&Request{Command: CommandStartKeyboard})
	return err
}

// StopKeyboardMonitor stops the global keyboard stream
func (c *Client) StopKeyboardMonitor() error {
	_, err := c.sendRequest(&Request{Command: CommandStopKeyboard})
	return err
}

// StartDragMonitor enables drag detection
func (c *Client) StartDragMonitor() error {
	_, err := c.sendRequest(&Request{Command: CommandStartDrag})
	return err
}

// StopDragMonitor disables drag detection
func (c *Client) StopDragMonitor() error {
	_, err := c.sendRequest(&Request{Command: CommandStopDrag})
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
