package input

import (
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/bnema/wandmouse/internal/event"
)

// toolPointer drives a long running dotool process through its stdin.
// dotool takes absolute positions as fractions of the screen.
type toolPointer struct {
	w      io.WriteCloser
	cmd    *exec.Cmd
	width  int
	height int
	mu     sync.Mutex
	closed bool
}

func newToolPointer(width, height int) (*toolPointer, error) {
	path, err := exec.LookPath("dotool")
	if err != nil {
		return nil, fmt.Errorf("no input tool found: %w", err)
	}

	// #nosec G204 - path comes from LookPath for a fixed name
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open dotool stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start dotool: %w", err)
	}

	p := newToolPointerWriter(stdin, width, height)
	p.cmd = cmd
	return p, nil
}

func newToolPointerWriter(w io.WriteCloser, width, height int) *toolPointer {
	return &toolPointer{w: w, width: width, height: height}
}

func (h *toolPointer) MoveTo(x, y int) error {
	fx := float64(x) / float64(h.width)
	fy := float64(y) / float64(h.height)
	return h.send(fmt.Sprintf("mouseto %.5f %.5f", fx, fy))
}

func (h *toolPointer) Button(b event.PointerButton, pressed bool) error {
	switch b {
	case event.PointerLeft, event.PointerMiddle, event.PointerRight:
	default:
		return fmt.Errorf("%w: button %v", ErrNotImplemented, b)
	}

	action := "buttonup"
	if pressed {
		action = "buttondown"
	}
	return h.send(fmt.Sprintf("%s %s", action, b))
}

func (h *toolPointer) send(command string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandlerClosed
	}
	if _, err := fmt.Fprintln(h.w, command); err != nil {
		return fmt.Errorf("failed to write to dotool: %w", err)
	}
	return nil
}

func (h *toolPointer) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	err := h.w.Close()
	if h.cmd != nil {
		if werr := h.cmd.Wait(); werr != nil && err == nil {
			err = fmt.Errorf("dotool exited: %w", werr)
		}
	}
	return err
}
