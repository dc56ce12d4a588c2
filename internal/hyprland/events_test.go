package hyprland

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func TestParseEvent(t *testing.T) {
	cases := map[string]EventKind{
		"createworkspacev2>>4,4":              EventWorkspaceAdded,
		"workspace>>2":                        EventWorkspaceChanged,
		"renameworkspace>>2,code":             EventWorkspaceChanged,
		"destroyworkspace>>4":                 EventWorkspaceDeleted,
		"moveworkspacev2>>3,3,DP-2":           EventWorkspaceMoved,
		"activespecial>>special:scratch,DP-1": EventSpecialChanged,
		"activespecial>>,DP-1":                EventSpecialRemoved,
		"activespecialv2>>-98,special:x,DP-1": EventSpecialChanged,
		"activespecialv2>>,,DP-1":             EventSpecialRemoved,
		"openwindow>>abc,1,kitty,kitty":       EventWindowOpened,
		"closewindow>>abc":                    EventWindowClosed,
		"movewindowv2>>abc,2,2":               EventWindowMoved,
		"focusedmon>>DP-2,3":                  EventActiveMonitorChanged,
		"activewindow>>kitty,~/src":           EventActiveWindowChanged,
		"fullscreen>>1":                       EventUnknown,
	}
	for line, want := range cases {
		ev, ok := ParseEvent(line)
		if !ok {
			t.Fatalf("%q: expected parse", line)
		}
		if ev.Kind != want {
			t.Fatalf("%q: kind = %v, want %v", line, ev.Kind, want)
		}
	}
	if _, ok := ParseEvent("garbage"); ok {
		t.Fatalf("expected malformed line to be rejected")
	}
	ev, _ := ParseEvent("activewindow>>kitty,a>>b\n")
	if ev.Data != "kitty,a>>b" {
		t.Fatalf("data = %q", ev.Data)
	}
}

func startEventSocket(t *testing.T) (*Client, <-chan net.Conn) {
	t.Helper()
	dir := t.TempDir()
	ln, err := net.Listen("unix", filepath.Join(dir, eventSocket))
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	conns := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conns <- conn
		}
	}()
	return NewClientWithDir(dir), conns
}

func TestEventListener_DispatchesAndReportsClose(t *testing.T) {
	c, conns := startEventSocket(t)
	l := c.NewEventListener()

	got := make(chan Event, 10)
	for _, kind := range WorkspaceEvents {
		l.Handle(kind, func(ev Event) { got <- ev })
	}

	errc := make(chan error, 1)
	go func() { errc <- l.Listen(context.Background()) }()

	conn := <-conns
	conn.Write([]byte("activewindow>>kitty,title\nworkspace>>3\nopenwindow>>a,3,kitty,t\n"))
	conn.Close()

	err := <-errc
	if !errors.Is(err, ErrEventStreamClosed) {
		t.Fatalf("expected ErrEventStreamClosed, got %v", err)
	}
	close(got)
	var kinds []EventKind
	for ev := range got {
		kinds = append(kinds, ev.Kind)
	}
	if len(kinds) != 2 || kinds[0] != EventWorkspaceChanged || kinds[1] != EventWindowOpened {
		t.Fatalf("unexpected events %v", kinds)
	}
}

func TestEventListener_StopsOnCancel(t *testing.T) {
	c, conns := startEventSocket(t)
	l := c.NewEventListener()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Listen(ctx) }()
	conn := <-conns
	defer conn.Close()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("listener did not stop on cancel")
	}
}

func TestEventListener_DialError(t *testing.T) {
	l := NewClientWithDir(t.TempDir()).NewEventListener()
	if err := l.Listen(context.Background()); err == nil || errors.Is(err, ErrEventStreamClosed) {
		t.Fatalf("expected dial error, got %v", err)
	}
}
