package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/bnema/wandmouse/internal/session"
)

// Status is what a running bridge reports over the status socket
type Status struct {
	Tracker  string
	Buttons  string
	Snapshot session.Snapshot
}

const (
	statusState protowire.Number = iota + 1
	statusMoveEnabled
	statusQuit
	statusCorrX
	statusCorrY
	statusCorrZ
	statusCorrW
	statusPointerX
	statusPointerY
	statusHasPointer
	statusSensor
	statusPoses
	statusMoves
	statusClicks
	statusDropped
	statusDegenerate
	statusTracker
	statusButtons
)

// MarshalStatusQuery encodes an empty status request
func MarshalStatusQuery() []byte {
	return appendVarint(nil, fieldKind, KindStatusQuery)
}

// IsStatusQuery reports whether data is a status request
func IsStatusQuery(data []byte) bool {
	kind, err := messageKind(data)
	return err == nil && kind == KindStatusQuery
}

// MarshalStatus encodes a status response
func MarshalStatus(s Status) []byte {
	snap := s.Snapshot

	var p []byte
	p = appendVarint(p, statusState, uint64(snap.State)) //nolint:gosec // small enum
	p = appendVarint(p, statusMoveEnabled, protowire.EncodeBool(snap.MoveEnabled))
	p = appendVarint(p, statusQuit, protowire.EncodeBool(snap.Quit))
	p = appendDouble(p, statusCorrX, snap.Correction.Imag)
	p = appendDouble(p, statusCorrY, snap.Correction.Jmag)
	p = appendDouble(p, statusCorrZ, snap.Correction.Kmag)
	p = appendDouble(p, statusCorrW, snap.Correction.Real)
	p = appendVarint(p, statusPointerX, protowire.EncodeZigZag(int64(snap.Pointer.X)))
	p = appendVarint(p, statusPointerY, protowire.EncodeZigZag(int64(snap.Pointer.Y)))
	p = appendVarint(p, statusHasPointer, protowire.EncodeBool(snap.HasPointer))
	p = appendVarint(p, statusSensor, uint64(snap.Sensor)) //nolint:gosec // sensor ids are non-negative
	p = appendVarint(p, statusPoses, snap.Stats.Poses)
	p = appendVarint(p, statusMoves, snap.Stats.Moves)
	p = appendVarint(p, statusClicks, snap.Stats.Clicks)
	p = appendVarint(p, statusDropped, snap.Stats.Dropped)
	p = appendVarint(p, statusDegenerate, snap.Stats.Degenerate)
	p = appendString(p, statusTracker, s.Tracker)
	p = appendString(p, statusButtons, s.Buttons)

	b := appendVarint(nil, fieldKind, KindStatusResponse)
	b = protowire.AppendTag(b, fieldStatus, protowire.BytesType)
	return protowire.AppendBytes(b, p)
}

// MarshalError encodes an error reply
func MarshalError(msg string) []byte {
	b := appendVarint(nil, fieldKind, KindError)
	b = protowire.AppendTag(b, fieldError, protowire.BytesType)
	return protowire.AppendString(b, msg)
}

// RemoteError is an error reported by the other end of the socket
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "server error: " + e.Message
}

// UnmarshalStatus decodes a status response. An error reply is returned
// as a *RemoteError.
func UnmarshalStatus(data []byte) (Status, error) {
	var (
		kind     uint64
		payload  []byte
		found    bool
		errorMsg string
	)
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			kind = v
			return n, nil
		case num == fieldStatus && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			payload = v
			found = true
			return n, nil
		case num == fieldError && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			errorMsg = v
			return n, nil
		}
		return skip(num, typ, b), nil
	})
	if err != nil {
		return Status{}, err
	}
	if kind == KindError {
		return Status{}, &RemoteError{Message: errorMsg}
	}
	if kind != KindStatusResponse || !found {
		return Status{}, fmt.Errorf("%w: not a status response", ErrMalformed)
	}

	var s Status
	snap := &s.Snapshot
	err = walk(payload, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			switch num {
			case statusState:
				snap.State = session.State(v) //nolint:gosec // small enum
			case statusMoveEnabled:
				snap.MoveEnabled = protowire.DecodeBool(v)
			case statusQuit:
				snap.Quit = protowire.DecodeBool(v)
			case statusPointerX:
				snap.Pointer.X = int(protowire.DecodeZigZag(v))
			case statusPointerY:
				snap.Pointer.Y = int(protowire.DecodeZigZag(v))
			case statusHasPointer:
				snap.HasPointer = protowire.DecodeBool(v)
			case statusSensor:
				if v > math.MaxInt32 {
					return n, fmt.Errorf("%w: sensor %d out of range", ErrMalformed, v)
				}
				snap.Sensor = int(v)
			case statusPoses:
				snap.Stats.Poses = v
			case statusMoves:
				snap.Stats.Moves = v
			case statusClicks:
				snap.Stats.Clicks = v
			case statusDropped:
				snap.Stats.Dropped = v
			case statusDegenerate:
				snap.Stats.Degenerate = v
			}
			return n, nil
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			f := math.Float64frombits(v)
			switch num {
			case statusCorrX:
				snap.Correction.Imag = f
			case statusCorrY:
				snap.Correction.Jmag = f
			case statusCorrZ:
				snap.Correction.Kmag = f
			case statusCorrW:
				snap.Correction.Real = f
			}
			return n, nil
		case protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			switch num {
			case statusTracker:
				s.Tracker = v
			case statusButtons:
				s.Buttons = v
			}
			return n, nil
		}
		return skip(num, typ, b), nil
	})
	if err != nil {
		return Status{}, err
	}
	return s, nil
}

func messageKind(data []byte) (uint64, error) {
	var kind uint64
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == fieldKind && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			kind = v
			return n, nil
		}
		return skip(num, typ, b), nil
	})
	return kind, err
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}
