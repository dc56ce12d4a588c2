package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/wsbar/internal/runtimepath"
)

// callTimeout bounds how long a connection waits for the daemon loop.
const callTimeout = 5 * time.Second

// ErrServerStopped is returned to clients whose request arrives during shutdown.
var ErrServerStopped = errors.New("ipc server stopped")

// Call is one request awaiting a reply from the daemon loop.
type Call struct {
	Request *Request
	reply   chan *Response
}

// Reply delivers resp to the waiting connection. It never blocks.
func (c *Call) Reply(resp *Response) {
	select {
	case c.reply <- resp:
	default:
	}
}

// Server accepts IPC connections and hands requests to a single consumer
// via Calls. WATCH connections are served from Publish.
type Server struct {
	socketPath string
	listener   net.Listener
	logger     *slog.Logger
	calls      chan *Call
	stopped    chan struct{}

	watchersMu sync.Mutex
	watchers   map[chan StateData]struct{}
	last       *StateData

	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server. An empty socketPath uses the default
// runtime socket.
func NewServer(socketPath string, logger *slog.Logger) (*Server, error) {
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		logger:     logger,
		calls:      make(chan *Call),
		stopped:    make(chan struct{}),
		watchers:   make(map[chan StateData]struct{}),
	}, nil
}

// SocketPath returns the listening socket path.
func (s *Server) SocketPath() string { return s.socketPath }

// Calls yields requests for the daemon loop. Each must be answered with Reply.
func (s *Server) Calls() <-chan *Call { return s.calls }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if req.Command == CommandWatch {
		s.serveWatch(conn, reader)
		return
	}

	s.writeResponse(conn, s.dispatch(req))
}

// dispatch forwards req to the daemon loop and waits for its reply.
func (s *Server) dispatch(req *Request) *Response {
	call := &Call{Request: req, reply: make(chan *Response, 1)}
	timer := time.NewTimer(callTimeout)
	defer timer.Stop()

	select {
	case s.calls <- call:
	case <-s.stopped:
		return NewErrorResponse(ErrServerStopped.Error())
	case <-timer.C:
		return NewErrorResponse("daemon busy")
	}

	select {
	case resp := <-call.reply:
		if resp == nil {
			return NewErrorResponse("empty response")
		}
		return resp
	case <-s.stopped:
		return NewErrorResponse(ErrServerStopped.Error())
	case <-timer.C:
		return NewErrorResponse("daemon did not respond")
	}
}

// serveWatch streams state snapshots until the client disconnects.
func (s *Server) serveWatch(conn net.Conn, reader *bufio.Reader) {
	updates, cancel := s.subscribe()
	defer cancel()

	// Any read result means the client went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		io.Copy(io.Discard, reader)
	}()

	for {
		select {
		case state := <-updates:
			resp, err := NewOKResponse(state)
			if err != nil {
				s.logger.Error("failed to marshal state", "error", err)
				return
			}
			if !s.writeResponse(conn, resp) {
				return
			}
		case <-gone:
			return
		case <-s.stopped:
			return
		}
	}
}

// subscribe registers a watcher, primed with the last published state.
func (s *Server) subscribe() (<-chan StateData, func()) {
	ch := make(chan StateData, 1)
	s.watchersMu.Lock()
	s.watchers[ch] = struct{}{}
	if s.last != nil {
		ch <- *s.last
	}
	s.watchersMu.Unlock()

	return ch, func() {
		s.watchersMu.Lock()
		delete(s.watchers, ch)
		s.watchersMu.Unlock()
	}
}

// Publish sends state to every watcher. Slow watchers only see the latest
// state.
func (s *Server) Publish(state StateData) {
	s.watchersMu.Lock()
	defer s.watchersMu.Unlock()
	s.last = &state
	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}

// Watchers returns the number of connected WATCH clients.
func (s *Server) Watchers() int {
	s.watchersMu.Lock()
	defer s.watchersMu.Unlock()
	return len(s.watchers)
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) bool {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return false
	}
	data = append(data, '\n')
	conn.SetWriteDeadline(time.Now().Add(callTimeout))
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send response", "error", err)
		return false
	}
	return true
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	close(s.stopped)
	if s.listener == nil {
		return
	}
	s.listener.Close()
	s.conns.Wait()
	os.Remove(s.socketPath)
}
