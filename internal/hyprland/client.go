// Package hyprland talks to a running Hyprland instance over its request
// and event sockets.
package hyprland

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/wsbar/internal/runtimepath"
)

const (
	requestSocket = ".socket.sock"
	eventSocket   = ".socket2.sock"
)

// Client issues one request per connection on the request socket.
type Client struct {
	dir     string
	timeout time.Duration
}

// NewClient locates the instance from HYPRLAND_INSTANCE_SIGNATURE.
func NewClient() (*Client, error) {
	dir, err := runtimepath.HyprlandDir(os.Getenv("HYPRLAND_INSTANCE_SIGNATURE"))
	if err != nil {
		return nil, err
	}
	return NewClientWithDir(dir), nil
}

// NewClientWithDir uses the sockets found in dir.
func NewClientWithDir(dir string) *Client {
	return &Client{dir: dir, timeout: time.Second}
}

// Dir returns the instance socket directory.
func (c *Client) Dir() string { return c.dir }

// EventSocketPath returns the path of the event socket.
func (c *Client) EventSocketPath() string {
	return filepath.Join(c.dir, eventSocket)
}

func (c *Client) request(cmd string) ([]byte, error) {
	conn, err := net.DialTimeout("unix", filepath.Join(c.dir, requestSocket), c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hyprland: %w", err)
	}
	defer conn.Close()
	return exchange(conn, cmd, c.timeout)
}

// exchange writes cmd and reads the reply until the server closes conn.
func exchange(conn net.Conn, cmd string, timeout time.Duration) ([]byte, error) {
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("failed to set deadline for %q: %w", cmd, err)
	}

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return nil, fmt.Errorf("failed to send %q: %w", cmd, err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply to %q: %w", cmd, err)
	}
	return data, nil
}

func (c *Client) query(name string, out any) error {
	data, err := c.request("j/" + name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// Workspaces lists every workspace, special ones included.
func (c *Client) Workspaces() ([]Workspace, error) {
	var out []Workspace
	if err := c.query("workspaces", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Monitors lists the connected monitors.
func (c *Client) Monitors() ([]Monitor, error) {
	var out []Monitor
	if err := c.query("monitors", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveWorkspace returns the globally focused workspace.
func (c *Client) ActiveWorkspace() (*Workspace, error) {
	var out Workspace
	if err := c.query("activeworkspace", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveWindow returns the focused window, or nil when nothing is focused.
func (c *Client) ActiveWindow() (*Window, error) {
	var out Window
	if err := c.query("activewindow", &out); err != nil {
		return nil, err
	}
	if out.Address == "" {
		return nil, nil
	}
	return &out, nil
}

// Dispatch is a `dispatch <name> <arg>` command.
type Dispatch struct {
	Name string
	Arg  string
}

func (d Dispatch) String() string {
	if d.Arg == "" {
		return d.Name
	}
	return d.Name + " " + d.Arg
}

// WorkspaceByID switches to a workspace by numeric id.
func WorkspaceByID(id int) Dispatch {
	return Dispatch{Name: "workspace", Arg: strconv.Itoa(id)}
}

// Custom is a plugin or otherwise unmodelled dispatcher.
func Custom(name, arg string) Dispatch {
	return Dispatch{Name: name, Arg: arg}
}

// FocusMonitorByID focuses a monitor by numeric id.
func FocusMonitorByID(id int) Dispatch {
	return Dispatch{Name: "focusmonitor", Arg: strconv.Itoa(id)}
}

// ToggleSpecialWorkspace shows or hides a special workspace by name.
func ToggleSpecialWorkspace(name string) Dispatch {
	return Dispatch{Name: "togglespecialworkspace", Arg: name}
}

// Dispatch sends d. Any reply other than "ok" is returned as an error.
func (c *Client) Dispatch(d Dispatch) error {
	data, err := c.request("dispatch " + d.String())
	if err != nil {
		return err
	}
	reply := strings.TrimSpace(string(data))
	if reply != "ok" {
		return fmt.Errorf("dispatch %s: %s", d, reply)
	}
	return nil
}
