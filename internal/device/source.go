// Package device turns tracker and button transports into event sources
// that the run loop can poll without blocking.
package device

import (
	"errors"
	"io"
	"sync"

	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/logger"
)

var (
	// ErrMalformed marks a sample that could not be decoded. The source
	// keeps running.
	ErrMalformed = errors.New("malformed sample")
	// ErrSourceClosed is returned by Poll once the source has ended
	ErrSourceClosed = errors.New("source closed")
	// ErrUnsupportedURI is returned by Open for unknown schemes
	ErrUnsupportedURI = errors.New("unsupported source URI")
)

// DefaultBuffer is the channel depth between a reader and the run loop
const DefaultBuffer = 256

// Source yields events from one transport
type Source interface {
	// Poll returns the next queued event without blocking. ok is false
	// when nothing is queued.
	Poll() (ev event.Event, ok bool, err error)
	// Name identifies the source in logs
	Name() string
	Close() error
}

type item struct {
	ev  event.Event
	err error
}

// pump moves events from a reader goroutine to Poll over a bounded channel
type pump struct {
	name   string
	items  chan item
	done   chan struct{}
	closer io.Closer

	closeOnce sync.Once
	ended     bool
}

func newPump(name string, buffer int, closer io.Closer) *pump {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &pump{
		name:   name,
		items:  make(chan item, buffer),
		done:   make(chan struct{}),
		closer: closer,
	}
}

// push blocks while the channel is full. It returns false once the
// source is closed.
func (p *pump) push(ev event.Event) bool {
	return p.send(item{ev: ev})
}

func (p *pump) fail(err error) bool {
	return p.send(item{err: err})
}

func (p *pump) send(it item) bool {
	select {
	case p.items <- it:
		return true
	case <-p.done:
		return false
	}
}

// finish is called by the reader goroutine when it returns
func (p *pump) finish(err error) {
	if err != nil && !p.closed() {
		logger.Debugf("%s: reader stopped: %v", p.name, err)
		p.fail(err)
	}
	close(p.items)
}

func (p *pump) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *pump) Poll() (event.Event, bool, error) {
	if p.ended {
		return event.Event{}, false, ErrSourceClosed
	}

	select {
	case it, ok := <-p.items:
		if !ok {
			p.ended = true
			return event.Event{}, false, ErrSourceClosed
		}
		if it.err != nil {
			return event.Event{}, false, it.err
		}
		return it.ev, true, nil
	default:
		return event.Event{}, false, nil
	}
}

func (p *pump) Name() string {
	return p.name
}

func (p *pump) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		if p.closer != nil {
			err = p.closer.Close()
		}
	})
	return err
}
