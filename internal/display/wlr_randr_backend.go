package display

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bnema/wandmouse/internal/logger"
)

// wlrRandrBackend uses wlr-randr for display detection
type wlrRandrBackend struct{}

func newWlrRandrBackend() (Backend, error) {
	if _, err := exec.LookPath("wlr-randr"); err != nil {
		return nil, fmt.Errorf("wlr-randr not found. Please install wlr-randr: https://gitlab.freedesktop.org/emersion/wlr-randr")
	}
	return &wlrRandrBackend{}, nil
}

func (w *wlrRandrBackend) Name() string { return "wlr-randr" }

func (w *wlrRandrBackend) GetMonitors() ([]*Monitor, error) {
	output, err := wlrRandrCommand("--json").CombinedOutput()
	if err == nil {
		monitors, perr := parseWlrRandrJSON(output)
		if perr == nil {
			return monitors, nil
		}
		logger.Debugf("wlr-randr --json output not usable: %v", perr)
	} else if len(output) > 0 {
		logger.Debugf("wlr-randr --json error: %s", string(output))
	}

	// Older wlr-randr releases have no JSON mode
	output, err = wlrRandrCommand().CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			logger.Errorf("wlr-randr error: %s", string(output))
		}
		return nil, fmt.Errorf("failed to run wlr-randr: %w", err)
	}
	return parseWlrRandrText(string(output))
}

func (w *wlrRandrBackend) Close() error {
	return nil
}

// wlrRandrCommand builds the wlr-randr invocation. Under sudo the Wayland
// socket of the invoking user has to be found explicitly.
func wlrRandrCommand(args ...string) *exec.Cmd {
	cmd := exec.Command("wlr-randr", args...)

	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" || os.Geteuid() != 0 {
		return cmd
	}
	logger.Debugf("Running wlr-randr with sudo, SUDO_USER=%s", sudoUser)

	sudoUID := os.Getenv("SUDO_UID")
	if sudoUID == "" {
		if out, err := exec.Command("id", "-u", sudoUser).Output(); err == nil {
			sudoUID = strings.TrimSpace(string(out))
		}
	}

	runtimeDir := fmt.Sprintf("/run/user/%s", sudoUID)
	cmd.Env = append(os.Environ(), "XDG_RUNTIME_DIR="+runtimeDir)

	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	if files, err := os.ReadDir(runtimeDir); err == nil {
		for _, file := range files {
			if strings.HasPrefix(file.Name(), "wayland-") && !strings.HasSuffix(file.Name(), ".lock") {
				waylandDisplay = file.Name()
				break
			}
		}
	} else {
		logger.Warnf("Could not read socket directory %s: %v", runtimeDir, err)
	}

	if waylandDisplay == "" {
		logger.Warn("Could not detect WAYLAND_DISPLAY for sudo session")
		return cmd
	}
	cmd.Env = append(cmd.Env, "WAYLAND_DISPLAY="+waylandDisplay)
	return cmd
}

type wlrRandrOutput struct {
	Name     string  `json:"name"`
	Enabled  bool    `json:"enabled"`
	Scale    float64 `json:"scale"`
	Position struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"position"`
	Modes []struct {
		Width   int     `json:"width"`
		Height  int     `json:"height"`
		Refresh float64 `json:"refresh"`
		Current bool    `json:"current"`
	} `json:"modes"`
}

func parseWlrRandrJSON(data []byte) ([]*Monitor, error) {
	var outputs []wlrRandrOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, fmt.Errorf("failed to parse wlr-randr output: %w", err)
	}

	var monitors []*Monitor
	for i, output := range outputs {
		if !output.Enabled {
			continue
		}

		var width, height int
		for _, mode := range output.Modes {
			if mode.Current {
				width, height = mode.Width, mode.Height
				break
			}
		}
		if width == 0 || height == 0 {
			logger.Warnf("Skipping monitor %s without a current mode", output.Name)
			continue
		}

		scale := output.Scale
		if scale == 0 {
			scale = 1.0
		}

		monitors = append(monitors, &Monitor{
			ID:     strconv.Itoa(i),
			Name:   output.Name,
			X:      int32(output.Position.X), //nolint:gosec // screen coordinates
			Y:      int32(output.Position.Y), //nolint:gosec // screen coordinates
			Width:  int32(width),             //nolint:gosec // screen sizes
			Height: int32(height),            //nolint:gosec // screen sizes
			Scale:  scale,
		})
	}

	if len(monitors) == 0 {
		return nil, fmt.Errorf("no active monitors found")
	}
	determinePrimaryMonitor(monitors)
	return monitors, nil
}

// parseWlrRandrText reads the human readable wlr-randr listing:
//
//	DP-1 "Dell Inc. DELL U2720Q"
//	  Enabled: yes
//	  Modes:
//	    3840x2160 px, 59.997002 Hz (preferred, current)
//	  Position: 0,0
//	  Scale: 1.500000
func parseWlrRandrText(output string) ([]*Monitor, error) {
	var (
		monitors []*Monitor
		current  *Monitor
		enabled  bool
	)
	flush := func() {
		if current != nil && enabled && current.Width > 0 && current.Height > 0 {
			current.ID = strconv.Itoa(len(monitors))
			monitors = append(monitors, current)
		}
		current = nil
	}

	for _, raw := range strings.Split(output, "\n") {
		if raw == "" {
			continue
		}
		if raw[0] != ' ' && raw[0] != '\t' {
			flush()
			current = &Monitor{Name: strings.Fields(raw)[0], Scale: 1.0}
			enabled = true
			continue
		}
		if current == nil {
			continue
		}

		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "Enabled:"):
			enabled = strings.Contains(line, "yes")
		case strings.HasPrefix(line, "Position:"):
			coords := strings.Split(strings.TrimSpace(strings.TrimPrefix(line, "Position:")), ",")
			if len(coords) == 2 {
				x, _ := strconv.Atoi(coords[0])
				y, _ := strconv.Atoi(coords[1])
				current.X, current.Y = int32(x), int32(y) //nolint:gosec // screen coordinates
			}
		case strings.HasPrefix(line, "Scale:"):
			if s, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "Scale:")), 64); err == nil {
				current.Scale = s
			}
		case strings.Contains(line, "current"):
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			dims := strings.Split(fields[0], "x")
			if len(dims) == 2 {
				w, _ := strconv.Atoi(dims[0])
				h, _ := strconv.Atoi(dims[1])
				current.Width, current.Height = int32(w), int32(h) //nolint:gosec // screen sizes
			}
		}
	}
	flush()

	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors detected from wlr-randr output")
	}
	determinePrimaryMonitor(monitors)
	return monitors, nil
}
