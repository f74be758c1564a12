// Package input injects the synthesized pointer into the system via uinput,
// the X11 XTest extension or the dotool helper.
package input

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/logger"
)

var (
	// ErrHandlerClosed is returned when operating on a closed pointer
	ErrHandlerClosed = errors.New("handler is closed")
	// ErrNotImplemented is returned for buttons a backend cannot emit
	ErrNotImplemented = errors.New("not implemented")
	// ErrUnknownBackend is returned by NewPointer for unknown backend names
	ErrUnknownBackend = errors.New("unknown pointer backend")
)

// Pointer moves an absolute pointer and presses its buttons
type Pointer interface {
	MoveTo(x, y int) error
	Button(b event.PointerButton, pressed bool) error
	Close() error
}

// NewPointer creates the named backend for a screen of width x height
// pixels. "auto" tries uinput first, then X11 when DISPLAY is set, then
// dotool.
func NewPointer(backend string, width, height int) (Pointer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid screen size %dx%d", width, height)
	}

	switch backend {
	case "uinput":
		return newUInputPointer(width, height)
	case "x11":
		return newX11Pointer(os.Getenv("DISPLAY"))
	case "dotool":
		return newToolPointer(width, height)
	case "auto", "":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	p, err := newUInputPointer(width, height)
	if err == nil {
		logger.Debug("Using uinput pointer backend")
		return p, nil
	}
	errs := []error{fmt.Errorf("uinput: %w", err)}

	if display := os.Getenv("DISPLAY"); display != "" {
		x, xerr := newX11Pointer(display)
		if xerr == nil {
			logger.Debug("Using X11 pointer backend")
			return x, nil
		}
		errs = append(errs, fmt.Errorf("x11: %w", xerr))
	}

	tool, toolErr := newToolPointer(width, height)
	if toolErr == nil {
		logger.Debug("Using dotool pointer backend")
		return tool, nil
	}
	errs = append(errs, fmt.Errorf("dotool: %w", toolErr))

	return nil, fmt.Errorf("failed to create pointer: %w", errors.Join(errs...))
}

// Coordinator tracks what was sent to a pointer so buttons still held
// down can be released on shutdown
type Coordinator struct {
	mu      sync.Mutex
	pointer Pointer
	lastX   int
	lastY   int
	moved   bool
	held    map[event.PointerButton]bool
}

// NewCoordinator wraps pointer
func NewCoordinator(pointer Pointer) *Coordinator {
	return &Coordinator{
		pointer: pointer,
		held:    make(map[event.PointerButton]bool),
	}
}

// MoveTo moves the pointer and records the position
func (c *Coordinator) MoveTo(x, y int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.pointer.MoveTo(x, y); err != nil {
		return err
	}
	c.lastX, c.lastY, c.moved = x, y, true
	return nil
}

// Button presses or releases b and records its state
func (c *Coordinator) Button(b event.PointerButton, pressed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.pointer.Button(b, pressed); err != nil {
		return err
	}
	if pressed {
		c.held[b] = true
	} else {
		delete(c.held, b)
	}
	return nil
}

// Position returns the last position sent to the pointer
func (c *Coordinator) Position() (x, y int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastX, c.lastY, c.moved
}

// Close releases held buttons and closes the underlying pointer
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range []event.PointerButton{event.PointerLeft, event.PointerMiddle, event.PointerRight} {
		if !c.held[b] {
			continue
		}
		if err := c.pointer.Button(b, false); err != nil {
			logger.Warnf("Failed to release %s button: %v", b, err)
		}
		delete(c.held, b)
	}
	return c.pointer.Close()
}
