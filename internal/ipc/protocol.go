package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/wsbar/internal/workspaces"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload                 CommandType = "RELOAD"
	CommandGetStatus              CommandType = "GET_STATUS"
	CommandGetWorkspaces          CommandType = "GET_WORKSPACES"
	CommandChangeWorkspace        CommandType = "CHANGE_WORKSPACE"
	CommandToggleSpecialWorkspace CommandType = "TOGGLE_SPECIAL_WORKSPACE"
	CommandScroll                 CommandType = "SCROLL"
	CommandGetTitle               CommandType = "GET_TITLE"
	// CommandWatch keeps the connection open and streams a StateData
	// response line after every change.
	CommandWatch CommandType = "WATCH"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
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

// MonitorInfo describes one connected output
type MonitorInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Backend       string        `json:"backend"`
	ConfigFile    string        `json:"config_file,omitempty"`
	Subscriptions []string      `json:"subscriptions"`
	Monitors      []MonitorInfo `json:"monitors"`
	Workspaces    int           `json:"workspaces"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	DaemonRunning bool          `json:"daemon_running"`
}

// WorkspacesData represents the data returned by GET_WORKSPACES
type WorkspacesData struct {
	Workspaces []workspaces.Workspace `json:"workspaces"`
}

// TitleData represents the data returned by GET_TITLE
type TitleData struct {
	Title string `json:"title"`
}

// StateData is streamed by WATCH.
type StateData struct {
	Workspaces []workspaces.Workspace `json:"workspaces"`
	Title      string                 `json:"title"`
}

// WorkspacePayload is the payload of CHANGE_WORKSPACE and TOGGLE_SPECIAL_WORKSPACE
type WorkspacePayload struct {
	ID int `json:"id"`
}

// ScrollPayload is the payload of SCROLL
type ScrollPayload struct {
	Direction int `json:"direction"`
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
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
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

// DecodePayload unmarshals the request payload into out.
func (r *Request) DecodePayload(out any) error {
	if len(r.Payload) == 0 {
		return fmt.Errorf("%s requires a payload", r.Command)
	}
	if err := json.Unmarshal(r.Payload, out); err != nil {
		return fmt.Errorf("invalid %s payload: %w", r.Command, err)
	}
	return nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
