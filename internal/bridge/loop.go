// Package bridge runs the single threaded dispatch loop between the
// device sources and the session.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/wandmouse/internal/device"
	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/session"
)

const (
	DefaultPollInterval = time.Millisecond
	DefaultBatchSize    = 64
)

// Options configures a Loop
type Options struct {
	Session *session.Session
	Tracker device.Source
	// Buttons is nil when the tracker source also delivers the buttons
	Buttons      device.Source
	PollInterval time.Duration
	BatchSize    int
	Logger       *log.Logger
}

// Loop feeds events from its sources into the session
type Loop struct {
	session  *session.Session
	tracker  device.Source
	buttons  device.Source
	interval time.Duration
	batch    int
	log      *log.Logger

	snapshot atomic.Pointer[session.Snapshot]
}

// New creates a loop. The caller keeps ownership of the sources.
func New(opts Options) (*Loop, error) {
	if opts.Session == nil || opts.Tracker == nil {
		return nil, errors.New("loop needs a session and a tracker source")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	l := &Loop{
		session:  opts.Session,
		tracker:  opts.Tracker,
		buttons:  opts.Buttons,
		interval: opts.PollInterval,
		batch:    opts.BatchSize,
		log:      opts.Logger,
	}
	l.publish()
	return l, nil
}

// Snapshot returns the most recently published session state. It is safe
// to call from any goroutine.
func (l *Loop) Snapshot() session.Snapshot {
	return *l.snapshot.Load()
}

func (l *Loop) publish() {
	snap := l.session.Snapshot()
	l.snapshot.Store(&snap)
}

// Run dispatches events until the session requests quit, the tracker
// source ends or ctx is cancelled. None of these is an error.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		if l.session.Quit() {
			l.log.Info("Quit requested")
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		n, err := l.drain(l.tracker)
		if errors.Is(err, device.ErrSourceClosed) {
			l.publish()
			l.log.Info("Tracker source ended", "source", l.tracker.Name())
			return nil
		}

		if l.buttons != nil {
			m, err := l.drain(l.buttons)
			n += m
			if errors.Is(err, device.ErrSourceClosed) {
				l.log.Warn("Button source ended, continuing without buttons", "source", l.buttons.Name())
				l.buttons = nil
			}
		}

		if n > 0 {
			l.publish()
			continue
		}

		timer.Reset(l.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// drain dispatches up to one batch from src. It returns the number of
// events dispatched and ErrSourceClosed once src has ended.
func (l *Loop) drain(src device.Source) (int, error) {
	n := 0
	for n < l.batch {
		ev, ok, err := src.Poll()
		if err != nil {
			if errors.Is(err, device.ErrSourceClosed) {
				return n, err
			}
			l.sourceError(src, err)
			continue
		}
		if !ok {
			break
		}

		n++
		l.dispatch(ev)
		if l.session.Quit() {
			break
		}
	}
	return n, nil
}

func (l *Loop) dispatch(ev event.Event) {
	var err error
	switch ev.Kind {
	case event.KindPose:
		err = l.session.HandlePose(ev.Pose)
	case event.KindButton:
		err = l.session.HandleButton(ev.Button)
	default:
		err = fmt.Errorf("unknown event kind %d", ev.Kind)
	}

	switch {
	case err == nil:
	case errors.Is(err, session.ErrInvalidButtonIndex):
		l.log.Warn("Ignoring button", "err", err)
	default:
		l.log.Error("Dispatch failed", "err", err)
	}
}

func (l *Loop) sourceError(src device.Source, err error) {
	if errors.Is(err, device.ErrMalformed) {
		l.log.Warn("Dropping malformed sample", "source", src.Name(), "err", err)
		return
	}
	l.log.Error("Source error", "source", src.Name(), "err", err)
}
