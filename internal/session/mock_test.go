package session

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/geometry"
)

type buttonCall struct {
	Button  event.PointerButton
	Pressed bool
}

// mockPointer records every command it receives
type mockPointer struct {
	moves   []geometry.Pixel
	buttons []buttonCall
	err     error
}

func (m *mockPointer) MoveTo(x, y int) error {
	if m.err != nil {
		return m.err
	}
	m.moves = append(m.moves, geometry.Pixel{X: x, Y: y})
	return nil
}

func (m *mockPointer) Button(b event.PointerButton, pressed bool) error {
	if m.err != nil {
		return m.err
	}
	m.buttons = append(m.buttons, buttonCall{Button: b, Pressed: pressed})
	return nil
}

var errPointerGone = errors.New("pointer gone")

// testPlane is 4 x 3 units, one unit in front of a wand at z=0
var testPlane = geometry.ScreenPlane{Z: -1, XMin: -2, XMax: 2, YMin: 0, YMax: 3}

func testOptions() Options {
	return Options{
		Plane:        testPlane,
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		Sensor:       0,
		Logger:       log.New(io.Discard),
		Report:       io.Discard,
	}
}
