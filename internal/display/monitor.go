// Package display finds the pixel size of the desktop the pointer moves on
package display

import (
	"errors"
	"fmt"
	"os"

	"github.com/bnema/wandmouse/internal/logger"
)

// ErrNoBackend is returned when no display backend could be used
var ErrNoBackend = errors.New("no display backend available")

// Monitor represents a physical display
type Monitor struct {
	ID      string
	Name    string
	X       int32 // Position in global coordinate space
	Y       int32
	Width   int32
	Height  int32
	Primary bool
	Scale   float64
}

// Bounds returns the monitor's boundaries
func (m *Monitor) Bounds() (x1, y1, x2, y2 int32) {
	return m.X, m.Y, m.X + m.Width, m.Y + m.Height
}

// Size is a screen resolution in pixels
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Backend interface for different display detection methods
type Backend interface {
	Name() string
	GetMonitors() ([]*Monitor, error)
	Close() error
}

// Open returns the named backend. "auto" prefers wlr-randr on Wayland and
// the X server otherwise. width and height are only used by "static".
func Open(name string, width, height int) (Backend, error) {
	switch name {
	case "static":
		return newStaticBackend(width, height)
	case "x11":
		return newX11Backend(os.Getenv("DISPLAY"))
	case "wlr-randr":
		return newWlrRandrBackend()
	case "auto", "":
	default:
		return nil, fmt.Errorf("unknown display backend %q", name)
	}

	type candidate struct {
		name   string
		create func() (Backend, error)
	}
	var candidates []candidate
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		candidates = append(candidates, candidate{"wlr-randr", newWlrRandrBackend})
	}
	if display := os.Getenv("DISPLAY"); display != "" {
		candidates = append(candidates, candidate{"x11", func() (Backend, error) { return newX11Backend(display) }})
	}

	for _, c := range candidates {
		backend, err := c.create()
		if err == nil {
			logger.Debugf("Display: using backend %s", c.name)
			return backend, nil
		}
		logger.Debugf("Display: backend %s failed: %v", c.name, err)
	}
	return nil, ErrNoBackend
}

// Query opens the named backend and returns the desktop size together
// with the monitors it is made of
func Query(name string, width, height int) (Size, []*Monitor, error) {
	backend, err := Open(name, width, height)
	if err != nil {
		return Size{}, nil, err
	}
	defer backend.Close()

	monitors, err := backend.GetMonitors()
	if err != nil {
		return Size{}, nil, fmt.Errorf("%s: %w", backend.Name(), err)
	}
	size, err := DesktopSize(monitors)
	if err != nil {
		return Size{}, nil, fmt.Errorf("%s: %w", backend.Name(), err)
	}
	return size, monitors, nil
}

// DesktopSize is the extent of the bounding box of all monitors, measured
// from the global origin
func DesktopSize(monitors []*Monitor) (Size, error) {
	var maxX, maxY int32
	for _, m := range monitors {
		_, _, x2, y2 := m.Bounds()
		maxX = max(maxX, x2)
		maxY = max(maxY, y2)
	}
	if maxX <= 0 || maxY <= 0 {
		return Size{}, errors.New("no monitor with a usable size")
	}
	return Size{Width: int(maxX), Height: int(maxY)}, nil
}

// determinePrimaryMonitor sets the primary monitor based on position
// The monitor at position (0,0) is considered primary, with fallback to first monitor
func determinePrimaryMonitor(monitors []*Monitor) {
	for _, m := range monitors {
		if m.Primary {
			return
		}
	}

	for _, m := range monitors {
		if m.X == 0 && m.Y == 0 {
			m.Primary = true
			return
		}
	}

	if len(monitors) > 0 {
		monitors[0].Primary = true
	}
}

type staticBackend struct {
	size Size
}

func newStaticBackend(width, height int) (Backend, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("static display needs a positive size, got %dx%d", width, height)
	}
	return &staticBackend{size: Size{Width: width, Height: height}}, nil
}

func (s *staticBackend) Name() string { return "static" }

func (s *staticBackend) GetMonitors() ([]*Monitor, error) {
	return []*Monitor{{
		ID:      "0",
		Name:    "static",
		Width:   int32(s.size.Width),  //nolint:gosec // configured size
		Height:  int32(s.size.Height), //nolint:gosec // configured size
		Primary: true,
		Scale:   1,
	}}, nil
}

func (s *staticBackend) Close() error { return nil }
