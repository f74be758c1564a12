// Package session turns tracker poses and button events into pointer commands.
//
// A Session owns the button action table, the calibration state and the
// runtime flags. It is driven from a single goroutine: HandlePose and
// HandleButton must not be called concurrently.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/num/quat"

	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/geometry"
)

// ErrInvalidOptions is returned by New for unusable options
var ErrInvalidOptions = errors.New("invalid session options")

// Pointer receives the synthesized pointer commands
type Pointer interface {
	MoveTo(x, y int) error
	Button(b event.PointerButton, pressed bool) error
}

// State is the dispatcher state
type State int

const (
	StateIdle State = iota
	StateCalibrating
)

func (s State) String() string {
	if s == StateCalibrating {
		return "calibrating"
	}
	return "idle"
}

// Options configures a Session
type Options struct {
	Plane        geometry.ScreenPlane
	ScreenWidth  int
	ScreenHeight int
	// Sensor is the tracker sensor id whose samples drive the pointer
	Sensor  int
	Actions *ActionTable
	// Calibration is the initial orientation correction
	Calibration quat.Number
	// Calibrate starts the session in the calibrating state
	Calibrate bool
	// Verbosity gates diagnostic output only:
	// 1 actions, 2 pointer movement, 3 mapping and debug info, 4 raw poses
	Verbosity int
	Logger    *log.Logger
	// Report receives the calibration result, stdout when nil
	Report io.Writer
}

// Stats counts what the session has processed
type Stats struct {
	Poses      uint64
	Moves      uint64
	Clicks     uint64
	Dropped    uint64
	Degenerate uint64
}

// Snapshot is a copy of the session state, safe to hand to other goroutines
type Snapshot struct {
	State       State
	MoveEnabled bool
	Quit        bool
	Correction  quat.Number
	Pointer     geometry.Pixel
	HasPointer  bool
	Sensor      int
	Stats       Stats
}

// Session is the event dispatcher for one run of the bridge
type Session struct {
	plane   geometry.ScreenPlane
	width   int
	height  int
	sensor  int
	actions *ActionTable
	calib   CalibrationState
	pointer Pointer

	moveEnabled bool
	quit        bool
	wasMoving   bool

	last    geometry.Pixel
	hasLast bool
	stats   Stats

	verbosity int
	log       *log.Logger
	report    io.Writer
}

// New creates a session. Pointer movement starts enabled unless a button is
// bound to ActionMove, in which case it follows that button.
func New(opts Options, pointer Pointer) (*Session, error) {
	if pointer == nil {
		return nil, fmt.Errorf("%w: no pointer", ErrInvalidOptions)
	}
	if err := opts.Plane.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if opts.ScreenWidth <= 0 || opts.ScreenHeight <= 0 {
		return nil, fmt.Errorf("%w: screen size %dx%d", ErrInvalidOptions, opts.ScreenWidth, opts.ScreenHeight)
	}

	calibration := opts.Calibration
	if calibration == (quat.Number{}) {
		calibration = geometry.Identity
	}

	actions := opts.Actions
	if actions == nil {
		actions = NewActionTable()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	report := opts.Report
	if report == nil {
		report = os.Stdout
	}

	return &Session{
		plane:       opts.Plane,
		width:       opts.ScreenWidth,
		height:      opts.ScreenHeight,
		sensor:      opts.Sensor,
		actions:     actions,
		calib:       NewCalibrationState(calibration, opts.Calibrate),
		pointer:     pointer,
		moveEnabled: !actions.Has(ActionMove),
		verbosity:   opts.Verbosity,
		log:         logger,
		report:      report,
	}, nil
}

// State returns the current dispatcher state
func (s *Session) State() State {
	if s.calib.Capturing() {
		return StateCalibrating
	}
	return StateIdle
}

// Quit reports whether a quit action was triggered
func (s *Session) Quit() bool {
	return s.quit
}

// MoveEnabled reports whether tracker samples currently move the pointer
func (s *Session) MoveEnabled() bool {
	return s.moveEnabled
}

// Correction returns the current orientation correction
func (s *Session) Correction() quat.Number {
	return s.calib.Correction()
}

// Snapshot copies the session state
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:       s.State(),
		MoveEnabled: s.moveEnabled,
		Quit:        s.quit,
		Correction:  s.calib.Correction(),
		Pointer:     s.last,
		HasPointer:  s.hasLast,
		Sensor:      s.sensor,
		Stats:       s.stats,
	}
}

func (s *Session) verbose(level int) bool {
	return s.verbosity >= level
}
