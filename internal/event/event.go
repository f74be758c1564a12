// Package event defines the values exchanged between device transports,
// the session and the pointer injection backends.
package event

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is one tracker sample for a single sensor
type Pose struct {
	Sensor      int
	Position    r3.Vec
	Orientation quat.Number
}

func (p Pose) String() string {
	return fmt.Sprintf("sensor %d [%g, %g, %g], [(%g, %g, %g), %g]",
		p.Sensor,
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.Imag, p.Orientation.Jmag, p.Orientation.Kmag, p.Orientation.Real)
}

// Button is a state change of one button on the auxiliary input device
type Button struct {
	Index   int
	Pressed bool
}

func (b Button) String() string {
	if b.Pressed {
		return fmt.Sprintf("Button %d pressed", b.Index)
	}
	return fmt.Sprintf("Button %d released", b.Index)
}

// Kind tells which field of an Event is set
type Kind int

const (
	KindPose Kind = iota + 1
	KindButton
)

// Event is what a device source yields
type Event struct {
	Kind   Kind
	Pose   Pose
	Button Button
}

// PoseEvent wraps a pose sample
func PoseEvent(p Pose) Event {
	return Event{Kind: KindPose, Pose: p}
}

// ButtonEvent wraps a button state change
func ButtonEvent(b Button) Event {
	return Event{Kind: KindButton, Button: b}
}

// PointerButton is a synthesized pointer button
type PointerButton int

const (
	PointerLeft PointerButton = iota + 1
	PointerMiddle
	PointerRight
)

func (b PointerButton) String() string {
	switch b {
	case PointerLeft:
		return "left"
	case PointerMiddle:
		return "middle"
	case PointerRight:
		return "right"
	default:
		return "unknown"
	}
}
