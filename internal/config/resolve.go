package config

import (
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/bnema/wandmouse/internal/geometry"
	"github.com/bnema/wandmouse/internal/session"
)

// Resolved is the validated, typed form of Config
type Resolved struct {
	TrackerURI string
	Sensor     int
	// ButtonURI is empty when buttons come from the tracker source
	ButtonURI string

	Plane       geometry.ScreenPlane
	Calibration quat.Number
	Calibrate   bool
	Actions     *session.ActionTable

	PointerBackend string
	DisplayBackend string
	DisplayWidth   int
	DisplayHeight  int

	PollInterval time.Duration
	BatchSize    int
	Verbosity    int
}

// NeedsButtons reports whether the run depends on a button source
func (r *Resolved) NeedsButtons() bool {
	return r.Calibrate || !r.Actions.Empty()
}

// Resolve validates c and converts it into typed values. Every failure
// wraps ErrConfig.
func (c *Config) Resolve() (*Resolved, error) {
	if c.Tracker.URI == "" {
		return nil, fmt.Errorf("%w: no tracker URI supplied", ErrConfig)
	}
	if c.Tracker.Sensor < 0 {
		return nil, fmt.Errorf("%w: tracker sensor %d must not be negative", ErrConfig, c.Tracker.Sensor)
	}

	plane, err := geometry.ParseScreenPlane(c.Screen.Plane)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing of screen definition failed: %w", ErrConfig, err)
	}

	calibration, err := geometry.ParseQuat(c.Calibration.Quaternion)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing of calibration data failed: %w", ErrConfig, err)
	}

	actions, err := c.Buttons.actionTable()
	if err != nil {
		return nil, err
	}

	if !slices.Contains(PointerBackends, c.Pointer.Backend) {
		return nil, fmt.Errorf("%w: unknown pointer backend %q (want one of %v)", ErrConfig, c.Pointer.Backend, PointerBackends)
	}
	if !slices.Contains(DisplayBackends, c.Display.Backend) {
		return nil, fmt.Errorf("%w: unknown display backend %q (want one of %v)", ErrConfig, c.Display.Backend, DisplayBackends)
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return nil, fmt.Errorf("%w: display size %dx%d", ErrConfig, c.Display.Width, c.Display.Height)
	}
	displayBackend := c.Display.Backend
	if c.Display.Width > 0 && c.Display.Height > 0 && displayBackend == "auto" {
		displayBackend = "static"
	}
	if displayBackend == "static" && (c.Display.Width == 0 || c.Display.Height == 0) {
		return nil, fmt.Errorf("%w: static display backend needs display.width and display.height", ErrConfig)
	}

	pollInterval := c.Loop.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultConfig.Loop.PollInterval
	}
	batchSize := c.Loop.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig.Loop.BatchSize
	}

	return &Resolved{
		TrackerURI:     c.Tracker.URI,
		Sensor:         c.Tracker.Sensor,
		ButtonURI:      c.Buttons.URI,
		Plane:          plane,
		Calibration:    calibration,
		Calibrate:      c.Calibration.OnStart,
		Actions:        actions,
		PointerBackend: c.Pointer.Backend,
		DisplayBackend: displayBackend,
		DisplayWidth:   c.Display.Width,
		DisplayHeight:  c.Display.Height,
		PollInterval:   pollInterval,
		BatchSize:      batchSize,
		Verbosity:      c.Logging.Verbosity,
	}, nil
}

// actionTable applies the assignments in a fixed order; when two actions
// share an index the later one in this order wins.
func (b ButtonsConfig) actionTable() (*session.ActionTable, error) {
	table := session.NewActionTable()
	assignments := []struct {
		name   string
		index  int
		action session.Action
	}{
		{"quit", b.Quit, session.ActionQuit},
		{"move", b.Move, session.ActionMove},
		{"left", b.Left, session.ActionLeft},
		{"middle", b.Middle, session.ActionMiddle},
		{"right", b.Right, session.ActionRight},
	}

	for _, a := range assignments {
		if a.index == Unassigned {
			continue
		}
		if err := table.Set(a.index, a.action); err != nil {
			return nil, fmt.Errorf("%w: invalid %s button index: %w", ErrConfig, a.name, err)
		}
	}
	return table, nil
}
