package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/display"
	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/session"
	"github.com/bnema/wandmouse/internal/ui"
)

// Helper function to execute cobra commands in tests
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func tempConfig(t *testing.T, content string) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		config.SetConfigPath("")
		config.Set(nil)
	})

	path := filepath.Join(t.TempDir(), "wandmouse.toml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return path
}

func TestConfigInit(t *testing.T) {
	path := tempConfig(t, "")

	t.Run("writes defaults", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "--config", path, "config", "init", "--defaults", "--force=false")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "[screen]")
		assert.Regexp(t, `backend = ['"]auto['"]`, string(content))
	})

	t.Run("keeps existing file without force", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("[tracker]\nsensor = 3\n"), 0o644))
		viper.Reset()

		_, err := executeCommand(rootCmd, "--config", path, "config", "init", "--defaults", "--force=false")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[tracker]\nsensor = 3\n", string(content))
	})

	t.Run("overwrites with force", func(t *testing.T) {
		viper.Reset()

		_, err := executeCommand(rootCmd, "--config", path, "config", "init", "--defaults", "--force")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "[pointer]")
		assert.Contains(t, string(content), "sensor = 3")
	})
}

func TestConfigShow(t *testing.T) {
	path := tempConfig(t, "[tracker]\nuri = \"udp://0.0.0.0:7400\"\n[buttons]\nquit = 5\n")

	out, err := executeCommand(rootCmd, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "udp://0.0.0.0:7400")
	assert.Regexp(t, `quit\s+5`, out)
	assert.Regexp(t, `left\s+-`, out)
}

func TestConfigPath(t *testing.T) {
	path := tempConfig(t, "")

	out, err := executeCommand(rootCmd, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestInvalidConfigFile(t *testing.T) {
	path := tempConfig(t, "[tracker\nsensor = 1\n")

	_, err := executeCommand(rootCmd, "--config", path, "config", "show")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	path := tempConfig(t, "")

	out, err := executeCommand(rootCmd, "--config", path, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wandmouse "+Version)
}

func TestStatusNotRunning(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "none.sock")
	path := tempConfig(t, "[ipc]\nsocket_path = \""+socket+"\"\n")

	out, err := executeCommand(rootCmd, "--config", path, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}

func TestRunArgs(t *testing.T) {
	assert.NoError(t, runArgs(runCmd, nil))
	assert.NoError(t, runArgs(runCmd, []string{"udp://:7400", "0"}))
	assert.NoError(t, runArgs(runCmd, []string{"udp://:7400", "0", "evdev:///dev/input/event3"}))
	assert.ErrorIs(t, runArgs(runCmd, []string{"udp://:7400"}), config.ErrConfig)
	assert.Error(t, runArgs(runCmd, []string{"a", "0", "b", "c"}))
}

func TestApplyArgs(t *testing.T) {
	c := config.DefaultConfig
	c.Tracker.URI = "file:///from/config"
	require.NoError(t, applyArgs(&c, nil))
	assert.Equal(t, "file:///from/config", c.Tracker.URI)

	require.NoError(t, applyArgs(&c, []string{"udp://:7400", "2", "evdev:///dev/input/event3"}))
	assert.Equal(t, "udp://:7400", c.Tracker.URI)
	assert.Equal(t, 2, c.Tracker.Sensor)
	assert.Equal(t, "evdev:///dev/input/event3", c.Buttons.URI)

	assert.ErrorIs(t, applyArgs(&c, []string{"udp://:7400", "two"}), config.ErrConfig)
}

func TestButtonSource(t *testing.T) {
	quitOn := func(i int) *session.ActionTable {
		table := session.NewActionTable()
		require.NoError(t, table.Set(i, session.ActionQuit))
		return table
	}

	tests := []struct {
		name     string
		resolved config.Resolved
		want     string
		wantErr  bool
	}{
		{
			name:     "separate button device",
			resolved: config.Resolved{TrackerURI: "udp://:7400", ButtonURI: "evdev:///dev/input/event3", Actions: quitOn(0)},
			want:     "evdev:///dev/input/event3",
		},
		{
			name:     "same uri is shared",
			resolved: config.Resolved{TrackerURI: "udp://:7400", ButtonURI: "udp://:7400", Actions: quitOn(0)},
		},
		{
			name:     "tracker carries buttons",
			resolved: config.Resolved{TrackerURI: "file:///tmp/rec.txt", Actions: quitOn(0)},
		},
		{
			name:     "nothing needs buttons",
			resolved: config.Resolved{TrackerURI: "file:///tmp/rec.txt", Actions: session.NewActionTable()},
		},
		{
			name:     "buttons only tracker",
			resolved: config.Resolved{TrackerURI: "evdev:///dev/input/event3", Actions: session.NewActionTable(), Calibrate: true},
			wantErr:  true,
		},
		{
			name:     "buttons only tracker without actions",
			resolved: config.Resolved{TrackerURI: "evdev:///dev/input/event3", Actions: session.NewActionTable()},
			wantErr:  true,
		},
		{
			name:     "unknown tracker scheme",
			resolved: config.Resolved{TrackerURI: "vrpn://Wand@localhost", Actions: session.NewActionTable()},
			wantErr:  true,
		},
		{
			name:     "button source without buttons",
			resolved: config.Resolved{TrackerURI: "udp://:7400", ButtonURI: "vrpn://Buttons@localhost", Actions: quitOn(0)},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buttonSource(&tt.resolved)
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type pointerCall struct {
	x, y    int
	button  event.PointerButton
	pressed bool
	click   bool
}

type recordingPointer struct {
	calls []pointerCall
}

func (p *recordingPointer) MoveTo(x, y int) error {
	p.calls = append(p.calls, pointerCall{x: x, y: y})
	return nil
}

func (p *recordingPointer) Button(b event.PointerButton, pressed bool) error {
	p.calls = append(p.calls, pointerCall{button: b, pressed: pressed, click: true})
	return nil
}

func (p *recordingPointer) Close() error { return nil }

func TestTracePointer(t *testing.T) {
	p := &recordingPointer{}
	var out bytes.Buffer

	err := tracePointer(context.Background(), p, display.Size{Width: 1920, Height: 1080}, 0, true, &out)
	require.NoError(t, err)

	assert.Equal(t, []pointerCall{
		{x: 0, y: 0},
		{x: 1919, y: 0},
		{x: 1919, y: 1079},
		{x: 0, y: 1079},
		{x: 960, y: 540},
		{button: event.PointerLeft, pressed: true, click: true},
		{button: event.PointerLeft, pressed: false, click: true},
	}, p.calls)
	assert.Contains(t, out.String(), "bottom right")
}

func TestTracePointerCancelled(t *testing.T) {
	p := &recordingPointer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracePointer(ctx, p, display.Size{Width: 800, Height: 600}, time.Hour, true, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, p.calls, 1)
}

func TestHeldReport(t *testing.T) {
	logs := ui.NewLogBuffer(4)
	held := &heldReport{logs: logs}

	_, err := fmt.Fprintf(held, "Calibration data: %s\n", "[0,0,0.7071,0.7071]")
	require.NoError(t, err)
	assert.Equal(t, []string{"Calibration data: [0,0,0.7071,0.7071]"}, logs.Lines())

	var out bytes.Buffer
	require.NoError(t, held.flush(&out))
	assert.Equal(t, "Calibration data: [0,0,0.7071,0.7071]\n", out.String())

	out.Reset()
	require.NoError(t, held.flush(&out))
	assert.Empty(t, out.String(), "a report is printed once")
}
