package input

import (
	"fmt"
	"sync"

	"github.com/ThomasT75/uinput"

	"github.com/bnema/wandmouse/internal/event"
)

// uInputPointer emits absolute motion through a virtual touchpad sized to
// the screen, and buttons through a virtual mouse
type uInputPointer struct {
	pad    uinput.TouchPad
	mouse  uinput.Mouse
	mu     sync.Mutex
	closed bool
}

func newUInputPointer(width, height int) (*uInputPointer, error) {
	pad, err := uinput.CreateTouchPad("/dev/uinput", []byte("Wandmouse Virtual Pointer"),
		0, int32(width-1), 0, int32(height-1)) //nolint:gosec // screen sizes fit in int32
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual pointer: %w", err)
	}

	mouse, err := uinput.CreateMouse("/dev/uinput", []byte("Wandmouse Virtual Buttons"))
	if err != nil {
		_ = pad.Close()
		return nil, fmt.Errorf("failed to create virtual mouse: %w", err)
	}

	return &uInputPointer{
		pad:   pad,
		mouse: mouse,
	}, nil
}

func (h *uInputPointer) MoveTo(x, y int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandlerClosed
	}
	return h.pad.MoveTo(int32(x), int32(y)) //nolint:gosec // clamped to the screen
}

func (h *uInputPointer) Button(b event.PointerButton, pressed bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandlerClosed
	}

	switch b {
	case event.PointerLeft:
		if pressed {
			return h.mouse.LeftPress()
		}
		return h.mouse.LeftRelease()
	case event.PointerMiddle:
		if pressed {
			return h.mouse.MiddlePress()
		}
		return h.mouse.MiddleRelease()
	case event.PointerRight:
		if pressed {
			return h.mouse.RightPress()
		}
		return h.mouse.RightRelease()
	default:
		return fmt.Errorf("%w: button %v", ErrNotImplemented, b)
	}
}

func (h *uInputPointer) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	err := h.pad.Close()
	if e := h.mouse.Close(); e != nil && err == nil {
		err = e
	}
	return err
}
