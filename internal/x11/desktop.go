package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// stickyDesktop is the _NET_WM_DESKTOP value of windows shown on all desktops.
const stickyDesktop = 0xFFFFFFFF

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// GetDesktopCount returns the number of virtual desktops.
func (c *Connection) GetDesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// GetDesktopNames returns _NET_DESKTOP_NAMES. Window managers may publish
// fewer names than desktops.
func (c *Connection) GetDesktopNames() ([]string, error) {
	names, err := ewmh.DesktopNamesGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get desktop names: %w", err)
	}
	return names, nil
}

// DesktopWindowCounts counts normal client windows per desktop index.
// Sticky windows are skipped.
func (c *Connection) DesktopWindowCounts() (map[int]uint, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	counts := make(map[int]uint)
	for _, win := range clients {
		if !c.IsNormalWindow(win) {
			continue
		}
		desktop, err := ewmh.WmDesktopGet(c.XUtil, win)
		if err != nil || desktop == stickyDesktop {
			continue
		}
		counts[int(desktop)]++
	}
	return counts, nil
}

// SetCurrentDesktop asks the window manager to switch desktops.
// Sends a _NET_CURRENT_DESKTOP client message to the root window as EWMH pagers do.
// We build the message manually because the xgbutil ewmh request helpers
// panic on this library version (uint vs int type assertion).
func (c *Connection) SetCurrentDesktop(desktop int) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_CURRENT_DESKTOP")), "_NET_CURRENT_DESKTOP").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_CURRENT_DESKTOP: %w", err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.Root,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(desktop), uint32(xproto.TimeCurrentTime), 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
