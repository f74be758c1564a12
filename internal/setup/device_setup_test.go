package setup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/device"
)

func TestValidateTrackerURI(t *testing.T) {
	assert.NoError(t, ValidateTrackerURI("udp://0.0.0.0:7400"))
	assert.NoError(t, ValidateTrackerURI("file:///tmp/recording.txt"))
	assert.Error(t, ValidateTrackerURI(""))
	assert.Error(t, ValidateTrackerURI("evdev:///dev/input/event3"))
	assert.Error(t, ValidateTrackerURI("vrpn://Wand@localhost"))
}

func TestParseButton(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", config.Unassigned, false},
		{"0", 0, false},
		{"15", 15, false},
		{"16", 0, true},
		{"-1", 0, true},
		{"five", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseButton(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "", buttonString(config.Unassigned))
	assert.Equal(t, "5", buttonString(5))
}

func TestApplyAnswers(t *testing.T) {
	cfg := config.DefaultConfig
	require.NoError(t, applyAnswers(&cfg, "2", "5", "", "0"))
	assert.Equal(t, 2, cfg.Tracker.Sensor)
	assert.Equal(t, 5, cfg.Buttons.Quit)
	assert.Equal(t, config.Unassigned, cfg.Buttons.Move)
	assert.Equal(t, 0, cfg.Buttons.Left)

	assert.Error(t, applyAnswers(&cfg, "x", "", "", ""))
}

func TestButtonSourceOptions(t *testing.T) {
	w := &Wizard{listDevices: func() ([]device.ButtonDevice, error) {
		return []device.ButtonDevice{{
			Path:   "/dev/input/event7",
			Stable: "/dev/input/by-id/usb-Wand_Buttons-event-joystick",
			Name:   "Wand Buttons",
			Keys:   []int{0x120, 0x121},
		}}, nil
	}}
	options := w.buttonSourceOptions()
	require.Len(t, options, 2)
	assert.Equal(t, sameAsTracker, options[0].Value)
	assert.Equal(t, "evdev:///dev/input/by-id/usb-Wand_Buttons-event-joystick", options[1].Value)
	assert.Contains(t, options[1].Key, "2 buttons")

	w.listDevices = func() ([]device.ButtonDevice, error) { return nil, errors.New("no permission") }
	assert.Len(t, w.buttonSourceOptions(), 1)
}
