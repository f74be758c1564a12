// Package setup runs the interactive configuration wizard
package setup

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/device"
	"github.com/bnema/wandmouse/internal/geometry"
	"github.com/bnema/wandmouse/internal/logger"
	"github.com/bnema/wandmouse/internal/session"
)

// sameAsTracker is the select value for "buttons come from the tracker"
const sameAsTracker = ""

// DeviceLister returns the input devices that can act as button sources
type DeviceLister func() ([]device.ButtonDevice, error)

// Wizard asks for the settings a first run needs
type Wizard struct {
	listDevices DeviceLister
}

// NewWizard creates a wizard that offers the local evdev devices
func NewWizard() *Wizard {
	return &Wizard{listDevices: device.ListButtonDevices}
}

// buttonSourceOptions builds the choices for the button source select
func (w *Wizard) buttonSourceOptions() []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption("Same as tracker", sameAsTracker)}

	devices, err := w.listDevices()
	if err != nil {
		logger.Warnf("Cannot list input devices: %v", err)
		return options
	}
	for _, dev := range devices {
		label := fmt.Sprintf("%s (%s, %d buttons)", dev.Name, dev.Path, len(dev.Keys))
		options = append(options, huh.NewOption(label, "evdev://"+dev.Stable))
	}
	return options
}

// Run edits cfg in place
func (w *Wizard) Run(cfg *config.Config) error {
	sensor := strconv.Itoa(cfg.Tracker.Sensor)
	quit := buttonString(cfg.Buttons.Quit)
	move := buttonString(cfg.Buttons.Move)
	left := buttonString(cfg.Buttons.Left)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tracker source").
				Description("udp://host:port, serial:///dev/ttyACM0 or file:///path").
				Value(&cfg.Tracker.URI).
				Validate(ValidateTrackerURI),
			huh.NewInput().
				Title("Sensor").
				Description("Sensor id of the wand").
				Value(&sensor).
				Validate(validateSensor),
			huh.NewSelect[string]().
				Title("Button source").
				Options(w.buttonSourceOptions()...).
				Value(&cfg.Buttons.URI),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Screen plane").
				Description("[z,xmin,xmax,ymin,ymax] in tracker units").
				Value(&cfg.Screen.Plane).
				Validate(func(s string) error {
					_, err := geometry.ParseScreenPlane(s)
					return err
				}),
			huh.NewInput().
				Title("Quit button").
				Description("Button index, empty for none").
				Value(&quit).
				Validate(validateButton),
			huh.NewInput().
				Title("Move button").
				Description("Movement only while held, empty to always move").
				Value(&move).
				Validate(validateButton),
			huh.NewInput().
				Title("Left button").
				Value(&left).
				Validate(validateButton),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pointer backend").
				Options(huh.NewOptions(config.PointerBackends...)...).
				Value(&cfg.Pointer.Backend),
			huh.NewConfirm().
				Title("Calibrate on start?").
				Value(&cfg.Calibration.OnStart),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	return applyAnswers(cfg, sensor, quit, move, left)
}

func applyAnswers(cfg *config.Config, sensor, quit, move, left string) error {
	var err error
	if cfg.Tracker.Sensor, err = strconv.Atoi(sensor); err != nil {
		return fmt.Errorf("invalid sensor: %w", err)
	}
	if cfg.Buttons.Quit, err = parseButton(quit); err != nil {
		return err
	}
	if cfg.Buttons.Move, err = parseButton(move); err != nil {
		return err
	}
	if cfg.Buttons.Left, err = parseButton(left); err != nil {
		return err
	}
	return nil
}

// ValidateTrackerURI accepts URIs whose transport can deliver poses
func ValidateTrackerURI(uri string) error {
	if uri == "" {
		return errors.New("a tracker source is required")
	}
	if !device.CarriesPoses(uri) {
		return fmt.Errorf("%q cannot deliver poses", uri)
	}
	return nil
}

func validateSensor(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return errors.New("sensor must be a non-negative number")
	}
	return nil
}

func validateButton(s string) error {
	_, err := parseButton(s)
	return err
}

func parseButton(s string) (int, error) {
	if s == "" {
		return config.Unassigned, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !session.ValidIndex(n) {
		return 0, fmt.Errorf("button must be between 0 and %d", session.MaxButtons-1)
	}
	return n, nil
}

func buttonString(i int) string {
	if i == config.Unassigned {
		return ""
	}
	return strconv.Itoa(i)
}
