// Package ipc serves the status of a running bridge on a local unix socket
package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/wandmouse/internal/logger"
	"github.com/bnema/wandmouse/internal/wire"
)

const (
	requestTimeout = 5 * time.Second
	dialTimeout    = 500 * time.Millisecond
)

// ErrAlreadyRunning is returned by Start when another instance answers on
// the socket
var ErrAlreadyRunning = errors.New("another wandmouse instance is serving the socket")

// StatusFunc returns the current status. It is called from connection
// goroutines and must be safe for concurrent use.
type StatusFunc func() wire.Status

// SocketServer handles incoming IPC connections
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	status     StatusFunc
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// NewSocketServer creates a new socket server. An empty socketPath selects
// the per-user default.
func NewSocketServer(socketPath string, status StatusFunc) (*SocketServer, error) {
	if socketPath == "" {
		var err error
		socketPath, err = GetSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get socket path: %w", err)
		}
	}

	return &SocketServer{
		socketPath: socketPath,
		status:     status,
	}, nil
}

// SocketPath returns where the server listens
func (s *SocketServer) SocketPath() string {
	return s.socketPath
}

// Start starts the socket server
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// Only a stale socket file may be replaced
	if conn, err := net.DialTimeout("unix", s.socketPath, dialTimeout); err == nil {
		conn.Close()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, s.socketPath)
	}
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	// Set socket permissions (user only)
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("IPC socket server started at %s", s.socketPath)
	return nil
}

// Stop stops the socket server
func (s *SocketServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()
	os.RemoveAll(s.socketPath)

	logger.Info("IPC socket server stopped")
}

func (s *SocketServer) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Errorf("Failed to accept connection: %v", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection answers a single request
func (s *SocketServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(requestTimeout)); err != nil {
		logger.Debugf("Failed to set IPC deadline: %v", err)
	}

	request, err := wire.ReadFrame(conn)
	if err != nil {
		logger.Debugf("Connection closed or read error: %v", err)
		return
	}

	if err := wire.WriteFrame(conn, s.handleMessage(request)); err != nil {
		logger.Errorf("Failed to send response: %v", err)
	}
}

func (s *SocketServer) handleMessage(request []byte) []byte {
	if !wire.IsStatusQuery(request) {
		return wire.MarshalError("unknown request")
	}
	return wire.MarshalStatus(s.status())
}

// GetSocketPath returns the per-user socket path /tmp/wandmouse-<user>.sock
func GetSocketPath() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return filepath.Join("/tmp", fmt.Sprintf("wandmouse-%s.sock", currentUser.Username)), nil
}
