package wire

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bnema/wandmouse/internal/event"
)

// ErrMalformed is returned for payloads that do not decode into a sample
var ErrMalformed = errors.New("malformed message")

// Message kinds, field 1 of every top level message
const (
	KindPose           = 1
	KindButton         = 2
	KindStatusQuery    = 3
	KindStatusResponse = 4
	KindError          = 5
)

// Top level fields
const (
	fieldKind   protowire.Number = 1
	fieldPose   protowire.Number = 2
	fieldButton protowire.Number = 3
	fieldStatus protowire.Number = 4
	fieldError  protowire.Number = 5
)

// Pose fields
const (
	poseSensor protowire.Number = iota + 1
	poseX
	poseY
	poseZ
	poseQX
	poseQY
	poseQZ
	poseQW
)

// Button fields
const (
	buttonIndex   protowire.Number = 1
	buttonPressed protowire.Number = 2
)

// MarshalEvent encodes a tracker event as a datagram payload
func MarshalEvent(ev event.Event) ([]byte, error) {
	var b []byte
	switch ev.Kind {
	case event.KindPose:
		b = appendVarint(b, fieldKind, KindPose)
		b = protowire.AppendTag(b, fieldPose, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalPose(ev.Pose))
	case event.KindButton:
		b = appendVarint(b, fieldKind, KindButton)
		b = protowire.AppendTag(b, fieldButton, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalButton(ev.Button))
	default:
		return nil, fmt.Errorf("unknown event kind %d", ev.Kind)
	}
	return b, nil
}

func marshalPose(p event.Pose) []byte {
	var b []byte
	b = appendVarint(b, poseSensor, uint64(p.Sensor)) //nolint:gosec // sensor ids are non-negative
	b = appendDouble(b, poseX, p.Position.X)
	b = appendDouble(b, poseY, p.Position.Y)
	b = appendDouble(b, poseZ, p.Position.Z)
	b = appendDouble(b, poseQX, p.Orientation.Imag)
	b = appendDouble(b, poseQY, p.Orientation.Jmag)
	b = appendDouble(b, poseQZ, p.Orientation.Kmag)
	b = appendDouble(b, poseQW, p.Orientation.Real)
	return b
}

func marshalButton(btn event.Button) []byte {
	var b []byte
	b = appendVarint(b, buttonIndex, uint64(btn.Index)) //nolint:gosec // indices are non-negative
	b = appendVarint(b, buttonPressed, protowire.EncodeBool(btn.Pressed))
	return b
}

// UnmarshalEvent decodes a datagram payload. Unknown fields are skipped.
func UnmarshalEvent(data []byte) (event.Event, error) {
	var (
		kind    uint64
		payload []byte
	)
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			kind = v
			return n, nil
		case (num == fieldPose || num == fieldButton) && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			payload = v
			return n, nil
		}
		return skip(num, typ, b), nil
	})
	if err != nil {
		return event.Event{}, err
	}

	switch kind {
	case KindPose:
		pose, err := unmarshalPose(payload)
		if err != nil {
			return event.Event{}, err
		}
		return event.PoseEvent(pose), nil
	case KindButton:
		btn, err := unmarshalButton(payload)
		if err != nil {
			return event.Event{}, err
		}
		return event.ButtonEvent(btn), nil
	default:
		return event.Event{}, fmt.Errorf("%w: unexpected kind %d", ErrMalformed, kind)
	}
}

func unmarshalPose(data []byte) (event.Pose, error) {
	var (
		p      event.Pose
		values [7]float64
		seen   int
	)
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == poseSensor && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if v > math.MaxInt32 {
				return n, fmt.Errorf("%w: sensor %d out of range", ErrMalformed, v)
			}
			p.Sensor = int(v)
			return n, nil
		case num >= poseX && num <= poseQW && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			values[num-poseX] = math.Float64frombits(v)
			seen |= 1 << (num - poseX)
			return n, nil
		}
		return skip(num, typ, b), nil
	})
	if err != nil {
		return event.Pose{}, err
	}
	if seen != 1<<len(values)-1 {
		return event.Pose{}, fmt.Errorf("%w: incomplete pose", ErrMalformed)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return event.Pose{}, fmt.Errorf("%w: non-finite pose component", ErrMalformed)
		}
	}

	p.Position = r3.Vec{X: values[0], Y: values[1], Z: values[2]}
	p.Orientation = quat.Number{Imag: values[3], Jmag: values[4], Kmag: values[5], Real: values[6]}
	return p, nil
}

func unmarshalButton(data []byte) (event.Button, error) {
	var (
		btn      event.Button
		hasIndex bool
	)
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return skip(num, typ, b), nil
		}
		switch num {
		case buttonIndex:
			v, n := protowire.ConsumeVarint(b)
			if v > math.MaxInt32 {
				return n, fmt.Errorf("%w: button %d out of range", ErrMalformed, v)
			}
			btn.Index = int(v)
			hasIndex = true
			return n, nil
		case buttonPressed:
			v, n := protowire.ConsumeVarint(b)
			btn.Pressed = protowire.DecodeBool(v)
			return n, nil
		}
		return skip(num, typ, b), nil
	})
	if err != nil {
		return event.Button{}, err
	}
	if !hasIndex {
		return event.Button{}, fmt.Errorf("%w: button without index", ErrMalformed)
	}
	return btn, nil
}

// walk calls fn for each field in b. fn consumes the field value and
// returns its length, or a negative protowire error code.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func skip(num protowire.Number, typ protowire.Type, b []byte) int {
	return protowire.ConsumeFieldValue(num, typ, b)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}
