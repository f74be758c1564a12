package session

import (
	"fmt"

	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/geometry"
)

// HandleButton processes one button state change.
//
// While calibrating, any valid button event finishes the calibration and
// nothing else happens for that event. Otherwise the button's action from
// the table is carried out.
func (s *Session) HandleButton(b event.Button) error {
	if s.verbose(3) {
		s.log.Debug(b.String())
	}

	if !ValidIndex(b.Index) {
		s.stats.Dropped++
		return fmt.Errorf("%w: %d is not < %d", ErrInvalidButtonIndex, b.Index, MaxButtons)
	}

	if s.calib.Capturing() {
		s.finishCalibration()
		return nil
	}

	action := s.actions.Lookup(b.Index)
	switch action {
	case ActionNone:
		return nil
	case ActionQuit:
		s.logAction(action, b)
		s.quit = true
		return nil
	case ActionMove:
		s.logAction(action, b)
		s.moveEnabled = b.Pressed
		return nil
	case ActionLeft:
		return s.click(action, event.PointerLeft, b)
	case ActionMiddle:
		return s.click(action, event.PointerMiddle, b)
	case ActionRight:
		return s.click(action, event.PointerRight, b)
	default:
		return fmt.Errorf("unhandled button action %d", action)
	}
}

func (s *Session) click(action Action, button event.PointerButton, b event.Button) error {
	s.logAction(action, b)
	if err := s.pointer.Button(button, b.Pressed); err != nil {
		return fmt.Errorf("failed to send %s button event: %w", button, err)
	}
	s.stats.Clicks++
	return nil
}

func (s *Session) finishCalibration() {
	correction, sampled, ok := s.calib.Finalize()
	if !ok {
		return
	}
	if !sampled {
		s.log.Warn("Calibration finished without a tracker sample", "sensor", s.sensor)
	}

	formatted := geometry.FormatQuat(correction)
	fmt.Fprintf(s.report, "Calibration data: %s\n", formatted)
	s.log.Info("Calibration finished", "quaternion", formatted)
}

func (s *Session) logAction(action Action, b event.Button) {
	if s.verbose(1) {
		s.log.Info("Button action", "action", action, "button", b.Index, "pressed", b.Pressed)
	}
}
