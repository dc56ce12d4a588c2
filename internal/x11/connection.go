package x11

import (
	"context"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to the X11 server
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// WatchRootProperties calls fn with the atom name whenever one of the named
// root window properties changes. Events are delivered by Run.
func (c *Connection) WatchRootProperties(names []string, fn func(name string)) error {
	watched := make(map[string]struct{}, len(names))
	for _, name := range names {
		watched[name] = struct{}{}
	}

	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to select root property events: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		if _, ok := watched[name]; ok {
			fn(name)
		}
	}).Connect(c.XUtil, c.Root)
	return nil
}

// Run processes events until ctx is cancelled or the server connection
// drops. The connection is closed when Run returns.
func (c *Connection) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		xevent.Main(c.XUtil)
	}()

	select {
	case <-ctx.Done():
		xevent.Quit(c.XUtil)
		c.Close()
		<-done
		return ctx.Err()
	case <-done:
		c.Close()
		return fmt.Errorf("x11 event loop exited")
	}
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
