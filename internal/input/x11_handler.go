package input

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"

	"github.com/bnema/wandmouse/internal/event"
)

// x11Pointer fakes core pointer input through the XTEST extension
type x11Pointer struct {
	conn   *xgb.Conn
	root   xproto.Window
	mu     sync.Mutex
	closed bool
}

func newX11Pointer(display string) (*x11Pointer, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X display %q: %w", display, err)
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("XTEST extension unavailable: %w", err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	return &x11Pointer{conn: conn, root: screen.Root}, nil
}

func x11Button(b event.PointerButton) (byte, error) {
	switch b {
	case event.PointerLeft:
		return 1, nil
	case event.PointerMiddle:
		return 2, nil
	case event.PointerRight:
		return 3, nil
	default:
		return 0, fmt.Errorf("%w: button %v", ErrNotImplemented, b)
	}
}

func (h *x11Pointer) MoveTo(x, y int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandlerClosed
	}
	err := xtest.FakeInputChecked(h.conn, xproto.MotionNotify, 0, 0, h.root,
		int16(x), int16(y), 0).Check() //nolint:gosec // clamped to the screen
	if err != nil {
		return fmt.Errorf("XTEST motion failed: %w", err)
	}
	return nil
}

func (h *x11Pointer) Button(b event.PointerButton, pressed bool) error {
	detail, err := x11Button(b)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandlerClosed
	}
	typ := byte(xproto.ButtonRelease)
	if pressed {
		typ = xproto.ButtonPress
	}
	if err := xtest.FakeInputChecked(h.conn, typ, detail, 0, h.root, 0, 0, 0).Check(); err != nil {
		return fmt.Errorf("XTEST button failed: %w", err)
	}
	return nil
}

func (h *x11Pointer) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.closed {
		h.closed = true
		h.conn.Close()
	}
	return nil
}
