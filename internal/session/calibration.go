package session

import (
	"gonum.org/v1/gonum/num/quat"

	"github.com/bnema/wandmouse/internal/geometry"
)

// CalibrationState holds the orientation correction applied before every
// live orientation. While capturing, the correction tracks the raw latest
// orientation; Finalize inverts it once and ends the capture for good.
type CalibrationState struct {
	correction quat.Number
	capturing  bool
	captured   bool
}

// NewCalibrationState starts from the given correction. With capture set the
// state begins collecting orientation samples.
func NewCalibrationState(initial quat.Number, capture bool) CalibrationState {
	return CalibrationState{correction: initial, capturing: capture}
}

// Capturing reports whether a calibration capture is in progress
func (c *CalibrationState) Capturing() bool {
	return c.capturing
}

// Correction returns the current correction quaternion. While capturing this
// is the raw, not yet inverted, latest orientation.
func (c *CalibrationState) Correction() quat.Number {
	return c.correction
}

// Capture records a raw orientation sample. It is ignored outside a capture
// and for zero quaternions, which cannot be inverted later.
func (c *CalibrationState) Capture(orientation quat.Number) bool {
	if !c.capturing || geometry.IsZero(orientation) {
		return false
	}
	c.correction = orientation
	c.captured = true
	return true
}

// Finalize inverts the captured orientation and ends the capture. ok is false
// when no capture was running; sampled tells whether any tracker sample
// arrived during the capture.
func (c *CalibrationState) Finalize() (correction quat.Number, sampled bool, ok bool) {
	if !c.capturing {
		return c.correction, c.captured, false
	}
	c.capturing = false
	c.correction = geometry.Invert(c.correction)
	return c.correction, c.captured, true
}
