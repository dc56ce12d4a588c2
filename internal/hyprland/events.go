package hyprland

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
)

// MaxEventLineSize bounds a single event line. Window titles are the only
// unbounded field and are far smaller in practice.
const MaxEventLineSize = 64 * 1024

// ErrEventStreamClosed is returned by Listen when Hyprland closes the socket.
var ErrEventStreamClosed = errors.New("hyprland event stream closed")

// EventKind is the category an event line belongs to.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventWorkspaceAdded
	EventWorkspaceChanged
	EventWorkspaceDeleted
	EventWorkspaceMoved
	EventSpecialChanged
	EventSpecialRemoved
	EventWindowOpened
	EventWindowClosed
	EventWindowMoved
	EventActiveMonitorChanged
	EventActiveWindowChanged
)

var eventKindNames = map[EventKind]string{
	EventUnknown:              "unknown",
	EventWorkspaceAdded:       "workspace_added",
	EventWorkspaceChanged:     "workspace_changed",
	EventWorkspaceDeleted:     "workspace_deleted",
	EventWorkspaceMoved:       "workspace_moved",
	EventSpecialChanged:       "special_changed",
	EventSpecialRemoved:       "special_removed",
	EventWindowOpened:         "window_opened",
	EventWindowClosed:         "window_closed",
	EventWindowMoved:          "window_moved",
	EventActiveMonitorChanged: "active_monitor_changed",
	EventActiveWindowChanged:  "active_window_changed",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// WorkspaceEvents are the categories that can change workspace membership,
// visibility or window counts.
var WorkspaceEvents = []EventKind{
	EventWorkspaceAdded,
	EventWorkspaceChanged,
	EventWorkspaceDeleted,
	EventWorkspaceMoved,
	EventSpecialChanged,
	EventSpecialRemoved,
	EventWindowOpened,
	EventWindowClosed,
	EventWindowMoved,
	EventActiveMonitorChanged,
}

// Event is one parsed `name>>data` line.
type Event struct {
	Kind EventKind
	Name string
	Data string
}

// ParseEvent parses and classifies a raw event line.
func ParseEvent(line string) (Event, bool) {
	name, data, ok := strings.Cut(strings.TrimRight(line, "\r\n"), ">>")
	if !ok || name == "" {
		return Event{}, false
	}
	return Event{Kind: classify(name, data), Name: name, Data: data}, true
}

func classify(name, data string) EventKind {
	switch name {
	case "createworkspace", "createworkspacev2":
		return EventWorkspaceAdded
	case "workspace", "workspacev2", "renameworkspace":
		return EventWorkspaceChanged
	case "destroyworkspace", "destroyworkspacev2":
		return EventWorkspaceDeleted
	case "moveworkspace", "moveworkspacev2":
		return EventWorkspaceMoved
	case "activespecial", "activespecialv2":
		if specialName(name, data) == "" {
			return EventSpecialRemoved
		}
		return EventSpecialChanged
	case "openwindow":
		return EventWindowOpened
	case "closewindow":
		return EventWindowClosed
	case "movewindow", "movewindowv2":
		return EventWindowMoved
	case "focusedmon", "focusedmonv2":
		return EventActiveMonitorChanged
	case "activewindow", "activewindowv2":
		return EventActiveWindowChanged
	default:
		return EventUnknown
	}
}

// specialName extracts the workspace name from activespecial payloads:
// "NAME,MONITOR" and "ID,NAME,MONITOR" for v2.
func specialName(name, data string) string {
	fields := strings.Split(data, ",")
	if name == "activespecialv2" {
		if len(fields) < 3 {
			return ""
		}
		return fields[1]
	}
	return fields[0]
}

// EventListener is one session on the event socket. Handlers run on the
// listening goroutine in registration order.
type EventListener struct {
	path string

	mu       sync.Mutex
	handlers map[EventKind][]func(Event)
}

// NewEventListener returns a listener for c's event socket.
func (c *Client) NewEventListener() *EventListener {
	return &EventListener{path: c.EventSocketPath(), handlers: make(map[EventKind][]func(Event))}
}

// Handle registers fn for events of kind.
func (l *EventListener) Handle(kind EventKind, fn func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[kind] = append(l.handlers[kind], fn)
}

// Listen reads events until ctx is cancelled or the stream fails. It always
// returns a non-nil error.
func (l *EventListener) Listen(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", l.path)
	if err != nil {
		return fmt.Errorf("failed to connect to hyprland events: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), MaxEventLineSize)
	for scanner.Scan() {
		ev, ok := ParseEvent(scanner.Text())
		if !ok || ev.Kind == EventUnknown {
			continue
		}
		l.dispatch(ev)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("hyprland event stream: %w", err)
	}
	return ErrEventStreamClosed
}

func (l *EventListener) dispatch(ev Event) {
	l.mu.Lock()
	handlers := l.handlers[ev.Kind]
	l.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

// Subscribe runs one fresh listener session calling fn for every event of
// the given kinds. It returns when Listen does.
func (c *Client) Subscribe(ctx context.Context, kinds []EventKind, fn func(Event)) error {
	l := c.NewEventListener()
	for _, kind := range kinds {
		l.Handle(kind, fn)
	}
	return l.Listen(ctx)
}
