package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"net"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bnema/wandmouse/internal/device"
	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/wire"
)

// Motion describes the figure eight the simulated wand sweeps
type Motion struct {
	Sensor   int
	Origin   r3.Vec
	Yaw      float64 // Peak yaw in radians
	Pitch    float64 // Peak pitch in radians
	Period   time.Duration
	Interval time.Duration // Time between samples, 0 emits without pausing
	Count    int           // Samples to send, 0 runs until cancelled

	// Button is pressed for one sample every ClickEvery samples
	Button     int
	ClickEvery int
}

// PoseAt returns the sample at time t since the start
func (m Motion) PoseAt(t time.Duration) event.Pose {
	phase := 2 * math.Pi * t.Seconds() / m.Period.Seconds()
	yaw := m.Yaw * math.Sin(phase)
	pitch := m.Pitch * math.Sin(2*phase)

	return event.Pose{
		Sensor:      m.Sensor,
		Position:    m.Origin,
		Orientation: quat.Mul(axisAngle(r3.Vec{Y: 1}, yaw), axisAngle(r3.Vec{X: 1}, pitch)),
	}
}

func axisAngle(axis r3.Vec, angle float64) quat.Number {
	s := math.Sin(angle / 2)
	return quat.Number{Real: math.Cos(angle / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// Emitter delivers simulated events
type Emitter interface {
	Emit(ev event.Event) error
	Close() error
}

type udpEmitter struct {
	conn net.Conn
}

func newUDPEmitter(addr string) (*udpEmitter, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &udpEmitter{conn: conn}, nil
}

func (e *udpEmitter) Emit(ev event.Event) error {
	data, err := wire.MarshalEvent(ev)
	if err != nil {
		return err
	}
	_, err = e.conn.Write(data)
	return err
}

func (e *udpEmitter) Close() error {
	return e.conn.Close()
}

// lineEmitter writes the text line protocol, e.g. for file:// recordings
type lineEmitter struct {
	w io.Writer
}

func (e *lineEmitter) Emit(ev event.Event) error {
	_, err := fmt.Fprintln(e.w, device.FormatLine(ev))
	return err
}

func (e *lineEmitter) Close() error { return nil }

// Run emits samples until Count is reached or ctx is cancelled
func (m Motion) Run(ctx context.Context, out Emitter) (int, error) {
	var tick <-chan time.Time
	if m.Interval > 0 {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	sent := 0
	held := false
	for i := 0; m.Count == 0 || i < m.Count; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return sent, nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return sent, nil
		}

		if held {
			if err := out.Emit(event.ButtonEvent(event.Button{Index: m.Button})); err != nil {
				return sent, err
			}
			held = false
			sent++
		}

		step := m.Interval
		if step == 0 {
			step = m.Period / 120
		}
		if err := out.Emit(event.PoseEvent(m.PoseAt(time.Duration(i) * step))); err != nil {
			return sent, err
		}
		sent++

		if m.ClickEvery > 0 && i > 0 && i%m.ClickEvery == 0 {
			if err := out.Emit(event.ButtonEvent(event.Button{Index: m.Button, Pressed: true})); err != nil {
				return sent, err
			}
			held = true
			sent++
		}
	}
	if held {
		if err := out.Emit(event.ButtonEvent(event.Button{Index: m.Button})); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
