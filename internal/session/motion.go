package session

import (
	"errors"
	"fmt"

	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/geometry"
)

// HandlePose processes one tracker sample.
//
// Samples from other sensors are ignored. During calibration the raw
// orientation is recorded and the pointer stays put. Otherwise, when
// movement is enabled, the pose is projected and the pointer moved.
func (s *Session) HandlePose(p event.Pose) error {
	if p.Sensor != s.sensor {
		return nil
	}
	s.stats.Poses++

	if s.calib.Capturing() {
		s.calib.Capture(p.Orientation)
		return nil
	}

	if !s.moveEnabled {
		if s.wasMoving && s.verbose(2) {
			s.log.Info("Mouse move end.")
		}
		s.wasMoving = false
		return nil
	}

	if !s.wasMoving && s.verbose(2) {
		s.log.Info("Mouse move start.")
	}
	s.wasMoving = true

	proj, err := geometry.Project(p.Position, p.Orientation, s.plane, s.calib.Correction(), s.width, s.height)
	if err != nil {
		if !errors.Is(err, geometry.ErrProjectionDegenerate) {
			return err
		}
		// keep the previous pointer position
		s.stats.Degenerate++
		if s.verbose(1) {
			s.log.Warn("Dropping tracker sample", "reason", err, "pose", p)
		}
		return nil
	}

	if proj.OffPlane && s.verbose(3) {
		s.log.Debug("Projection onto z plane seems off",
			"x", proj.Hit.X, "y", proj.Hit.Y, "z", proj.Hit.Z, "plane", s.plane.Z)
	}
	if s.verbose(4) {
		s.log.Debug("Tracker sample", "pose", p, "pixel", proj.Pixel)
	} else if s.verbose(2) {
		s.log.Info("Pointer", "x", proj.Pixel.X, "y", proj.Pixel.Y)
	}

	if err := s.pointer.MoveTo(proj.Pixel.X, proj.Pixel.Y); err != nil {
		return fmt.Errorf("failed to move pointer: %w", err)
	}
	s.last = proj.Pixel
	s.hasLast = true
	s.stats.Moves++
	return nil
}
