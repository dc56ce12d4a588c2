package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/wsbar/internal/runtimepath"
	"github.com/1broseidon/wsbar/internal/workspaces"
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
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, req *Request) error {
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, req); err != nil {
		return nil, err
	}
	return readResponse(bufio.NewReader(conn))
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetWorkspaces retrieves the current workspace list
func (c *Client) GetWorkspaces() ([]workspaces.Workspace, error) {
	var data WorkspacesData
	if err := c.call(CommandGetWorkspaces, nil, &data); err != nil {
		return nil, err
	}
	return data.Workspaces, nil
}

// ChangeWorkspace asks the daemon to switch to workspace id
func (c *Client) ChangeWorkspace(id int) error {
	return c.call(CommandChangeWorkspace, WorkspacePayload{ID: id}, nil)
}

// ToggleSpecialWorkspace asks the daemon to toggle special workspace id
func (c *Client) ToggleSpecialWorkspace(id int) error {
	return c.call(CommandToggleSpecialWorkspace, WorkspacePayload{ID: id}, nil)
}

// Scroll moves to the next (direction > 0) or previous workspace
func (c *Client) Scroll(direction int) error {
	return c.call(CommandScroll, ScrollPayload{Direction: direction}, nil)
}

// GetTitle retrieves the focused window title
func (c *Client) GetTitle() (string, error) {
	var data TitleData
	if err := c.call(CommandGetTitle, nil, &data); err != nil {
		return "", err
	}
	return data.Title, nil
}

// Watch calls fn with every state the daemon publishes until ctx is
// cancelled, the daemon disconnects or fn returns an error.
func (c *Client) Watch(ctx context.Context, fn func(StateData) error) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, &Request{Command: CommandWatch}); err != nil {
		return err
	}

	reader := bufio.NewReader(conn)
	for {
		resp, err := readResponse(reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var state StateData
		if err := json.Unmarshal(resp.Data, &state); err != nil {
			return fmt.Errorf("failed to parse state: %w", err)
		}
		if err := fn(state); err != nil {
			return err
		}
	}
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
