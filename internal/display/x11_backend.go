package display

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Backend reports the default screen of an X server as one monitor
type x11Backend struct {
	conn *xgb.Conn
}

func newX11Backend(display string) (Backend, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X display %q: %w", display, err)
	}
	return &x11Backend{conn: conn}, nil
}

func (x *x11Backend) Name() string { return "x11" }

func (x *x11Backend) GetMonitors() ([]*Monitor, error) {
	screen := xproto.Setup(x.conn).DefaultScreen(x.conn)
	if screen == nil {
		return nil, fmt.Errorf("X server has no default screen")
	}
	return []*Monitor{{
		ID:      "0",
		Name:    fmt.Sprintf("screen-%d", x.conn.DefaultScreen),
		Width:   int32(screen.WidthInPixels),
		Height:  int32(screen.HeightInPixels),
		Primary: true,
		Scale:   1,
	}}, nil
}

func (x *x11Backend) Close() error {
	x.conn.Close()
	return nil
}
