package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wandmouse/internal/geometry"
	"github.com/bnema/wandmouse/internal/session"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wandmouse.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func initFrom(t *testing.T, path string) error {
	t.Helper()
	viper.Reset()
	SetConfigPath(path)
	t.Cleanup(func() {
		SetConfigPath("")
		viper.Reset()
		Set(nil)
	})
	return Init()
}

func TestInit(t *testing.T) {
	t.Run("initializes with defaults when the file is missing", func(t *testing.T) {
		err := initFrom(t, filepath.Join(t.TempDir(), "missing.toml"))
		require.NoError(t, err)

		c := Get()
		assert.Equal(t, geometry.DefaultScreenPlane.String(), c.Screen.Plane)
		assert.Equal(t, "[0,0,0,1]", c.Calibration.Quaternion)
		assert.Equal(t, Unassigned, c.Buttons.Quit)
		assert.Equal(t, "auto", c.Pointer.Backend)
		assert.Equal(t, time.Millisecond, c.Loop.PollInterval)
		assert.True(t, c.IPC.Enabled)
	})

	t.Run("merges a partial file over the defaults", func(t *testing.T) {
		path := writeConfig(t, `
[tracker]
uri = "udp://0.0.0.0:7400"
sensor = 2

[buttons]
quit = 5
move = 2

[loop]
poll_interval = "5ms"
`)
		require.NoError(t, initFrom(t, path))

		c := Get()
		assert.Equal(t, "udp://0.0.0.0:7400", c.Tracker.URI)
		assert.Equal(t, 2, c.Tracker.Sensor)
		assert.Equal(t, 5, c.Buttons.Quit)
		assert.Equal(t, 2, c.Buttons.Move)
		assert.Equal(t, Unassigned, c.Buttons.Left)
		assert.Equal(t, 5*time.Millisecond, c.Loop.PollInterval)
		assert.Equal(t, geometry.DefaultScreenPlane.String(), c.Screen.Plane)
	})

	t.Run("rejects invalid TOML", func(t *testing.T) {
		path := writeConfig(t, "[tracker\nuri = 1")
		assert.Error(t, initFrom(t, path))
	})
}

func TestGetConfigPath(t *testing.T) {
	SetConfigPath("/tmp/custom.toml")
	defer SetConfigPath("")
	assert.Equal(t, "/tmp/custom.toml", GetConfigPath())
}

func validConfig() *Config {
	c := DefaultConfig
	c.Tracker.URI = "udp://127.0.0.1:7400"
	return &c
}

func TestResolve(t *testing.T) {
	t.Run("defaults resolve once a tracker is set", func(t *testing.T) {
		r, err := validConfig().Resolve()
		require.NoError(t, err)
		assert.Equal(t, geometry.DefaultScreenPlane, r.Plane)
		assert.Equal(t, geometry.Identity, r.Calibration)
		assert.True(t, r.Actions.Empty())
		assert.False(t, r.NeedsButtons())
		assert.Equal(t, "auto", r.DisplayBackend)
	})

	t.Run("button assignments", func(t *testing.T) {
		c := validConfig()
		c.Buttons.Quit = 5
		c.Buttons.Move = 2
		c.Buttons.Left = 0
		r, err := c.Resolve()
		require.NoError(t, err)
		assert.Equal(t, session.ActionQuit, r.Actions.Lookup(5))
		assert.Equal(t, session.ActionMove, r.Actions.Lookup(2))
		assert.Equal(t, session.ActionLeft, r.Actions.Lookup(0))
		assert.Equal(t, session.ActionNone, r.Actions.Lookup(6))
		assert.True(t, r.NeedsButtons())
	})

	t.Run("size switches auto display to static", func(t *testing.T) {
		c := validConfig()
		c.Display.Width = 1280
		c.Display.Height = 800
		r, err := c.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "static", r.DisplayBackend)
	})

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing tracker", func(c *Config) { c.Tracker.URI = "" }},
		{"negative sensor", func(c *Config) { c.Tracker.Sensor = -2 }},
		{"short plane", func(c *Config) { c.Screen.Plane = "[1,2,3,4]" }},
		{"reversed plane", func(c *Config) { c.Screen.Plane = "[0,1,-1,0,1]" }},
		{"bad quaternion", func(c *Config) { c.Calibration.Quaternion = "[1,2,3]" }},
		{"zero quaternion", func(c *Config) { c.Calibration.Quaternion = "[0,0,0,0]" }},
		{"button out of range", func(c *Config) { c.Buttons.Right = session.MaxButtons }},
		{"unknown pointer backend", func(c *Config) { c.Pointer.Backend = "xdotool" }},
		{"unknown display backend", func(c *Config) { c.Display.Backend = "drm" }},
		{"static without size", func(c *Config) { c.Display.Backend = "static" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			_, err := c.Resolve()
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}
