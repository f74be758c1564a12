package ipc

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bnema/wandmouse/internal/logger"
	"github.com/bnema/wandmouse/internal/wire"
)

// ErrNotRunning is returned when no bridge listens on the socket
var ErrNotRunning = errors.New("wandmouse is not running")

// Client queries a running wandmouse instance
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client. An empty socketPath selects the
// per-user default.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		var err error
		socketPath, err = GetSocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get socket path: %w", err)
		}
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}, nil
}

// WithTimeout sets the per request timeout
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// GetStatus asks the running instance for its status
func (c *Client) GetStatus() (wire.Status, error) {
	response, err := c.sendMessage(wire.MarshalStatusQuery())
	if err != nil {
		return wire.Status{}, err
	}
	return wire.UnmarshalStatus(response)
}

// IsRunning reports whether an instance answers on the socket
func (c *Client) IsRunning() bool {
	_, err := c.GetStatus()
	return err == nil
}

func (c *Client) sendMessage(msg []byte) ([]byte, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		if isConnectionRefused(err) {
			return nil, ErrNotRunning
		}
		return nil, fmt.Errorf("failed to connect to wandmouse: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close IPC connection: %v", err)
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		logger.Warnf("Failed to set connection deadline: %v", err)
	}

	if err := wire.WriteFrame(conn, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	response, err := wire.ReadFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return response, nil
}

// isConnectionRefused checks if the error comes from dialing a socket
// nobody listens on
func isConnectionRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr) && netErr.Op == "dial"
}
