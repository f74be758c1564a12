package bridge

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bnema/wandmouse/internal/device"
	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/geometry"
	"github.com/bnema/wandmouse/internal/session"
)

// scriptSource replays a fixed list of events. When ends is false it stays
// open and idle afterwards.
type scriptSource struct {
	mu     sync.Mutex
	name   string
	events []event.Event
	errs   map[int]error
	ends   bool
	polled int
}

func (s *scriptSource) Poll() (event.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.errs[s.polled]; ok {
		delete(s.errs, s.polled)
		return event.Event{}, false, err
	}
	if s.polled < len(s.events) {
		ev := s.events[s.polled]
		s.polled++
		return ev, true, nil
	}
	if s.ends {
		return event.Event{}, false, device.ErrSourceClosed
	}
	return event.Event{}, false, nil
}

func (s *scriptSource) Name() string { return s.name }
func (s *scriptSource) Close() error { return nil }

type recordingPointer struct {
	mu      sync.Mutex
	moves   []geometry.Pixel
	buttons []event.PointerButton
}

func (p *recordingPointer) MoveTo(x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, geometry.Pixel{X: x, Y: y})
	return nil
}

func (p *recordingPointer) Button(b event.PointerButton, pressed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pressed {
		p.buttons = append(p.buttons, b)
	}
	return nil
}

var plane = geometry.ScreenPlane{Z: -1, XMin: -2, XMax: 2, YMin: 0, YMax: 3}

func newSession(t *testing.T, pointer session.Pointer, actions map[int]session.Action) *session.Session {
	t.Helper()
	table := session.NewActionTable()
	for i, a := range actions {
		require.NoError(t, table.Set(i, a))
	}
	s, err := session.New(session.Options{
		Plane:        plane,
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		Actions:      table,
		Calibration:  geometry.Identity,
		Logger:       log.New(io.Discard),
		Report:       io.Discard,
	}, pointer)
	require.NoError(t, err)
	return s
}

func pose(y float64) event.Event {
	return event.PoseEvent(event.Pose{Position: r3.Vec{Y: y}, Orientation: geometry.Identity})
}

func press(i int) event.Event {
	return event.ButtonEvent(event.Button{Index: i, Pressed: true})
}

func newLoop(t *testing.T, s *session.Session, tracker, buttons device.Source) *Loop {
	t.Helper()
	opts := Options{
		Session:      s,
		Tracker:      tracker,
		Buttons:      buttons,
		PollInterval: time.Millisecond,
		BatchSize:    4,
		Logger:       log.New(io.Discard),
	}
	l, err := New(opts)
	require.NoError(t, err)
	return l
}

func runWithTimeout(t *testing.T, l *Loop) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := l.Run(ctx)
	require.NoError(t, ctx.Err(), "loop did not stop on its own")
	return err
}

func TestRunStopsWhenTrackerEnds(t *testing.T) {
	pointer := &recordingPointer{}
	s := newSession(t, pointer, nil)
	tracker := &scriptSource{
		name:   "file://recording.txt",
		events: []event.Event{pose(1.5), pose(1.5), pose(1.5), pose(1.5), pose(1.5), pose(1.5)},
		errs:   map[int]error{2: device.ErrMalformed},
		ends:   true,
	}

	require.NoError(t, runWithTimeout(t, newLoop(t, s, tracker, nil)))
	assert.Len(t, pointer.moves, 6)
	assert.Equal(t, geometry.Pixel{X: 960, Y: 540}, pointer.moves[0])
}

func TestRunStopsOnQuit(t *testing.T) {
	pointer := &recordingPointer{}
	s := newSession(t, pointer, map[int]session.Action{5: session.ActionQuit, 0: session.ActionLeft})
	tracker := &scriptSource{name: "udp://test"}
	buttons := &scriptSource{
		name:   "evdev://test",
		events: []event.Event{press(6), press(0), press(5), press(0)},
	}

	l := newLoop(t, s, tracker, buttons)
	require.NoError(t, runWithTimeout(t, l))

	assert.True(t, l.Snapshot().Quit)
	assert.Equal(t, []event.PointerButton{event.PointerLeft}, pointer.buttons, "events after quit are not dispatched")
}

func TestRunInvalidIndexIsNotFatal(t *testing.T) {
	pointer := &recordingPointer{}
	s := newSession(t, pointer, map[int]session.Action{1: session.ActionRight})
	tracker := &scriptSource{
		name:   "file://recording.txt",
		events: []event.Event{press(session.MaxButtons), press(1)},
		ends:   true,
	}

	l := newLoop(t, s, tracker, nil)
	require.NoError(t, runWithTimeout(t, l))
	assert.Equal(t, []event.PointerButton{event.PointerRight}, pointer.buttons)
	assert.Equal(t, uint64(1), l.Snapshot().Stats.Dropped)
}

func TestRunContinuesWithoutButtons(t *testing.T) {
	pointer := &recordingPointer{}
	s := newSession(t, pointer, map[int]session.Action{0: session.ActionLeft})
	buttons := &scriptSource{name: "evdev://gone", events: []event.Event{press(0)}, ends: true}
	tracker := &scriptSource{name: "udp://test"}

	l := newLoop(t, s, tracker, buttons)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return l.Snapshot().Stats.Clicks == 1
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestNewRequiresSessionAndTracker(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
