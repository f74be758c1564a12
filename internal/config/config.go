// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/wandmouse/internal/geometry"
)

// ErrConfig marks every configuration problem. It is fatal at startup.
var ErrConfig = errors.New("configuration error")

// Unassigned marks a button action without a button index
const Unassigned = -1

// Config represents the application configuration
type Config struct {
	Tracker     TrackerConfig     `mapstructure:"tracker"`
	Buttons     ButtonsConfig     `mapstructure:"buttons"`
	Screen      ScreenConfig      `mapstructure:"screen"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Pointer     PointerConfig     `mapstructure:"pointer"`
	Display     DisplayConfig     `mapstructure:"display"`
	Loop        LoopConfig        `mapstructure:"loop"`
	IPC         IPCConfig         `mapstructure:"ipc"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// TrackerConfig selects the pose source
type TrackerConfig struct {
	URI    string `mapstructure:"uri"`    // udp://, serial://, file://
	Sensor int    `mapstructure:"sensor"` // Sensor id that drives the pointer
}

// ButtonsConfig selects the button source and the button index per action
type ButtonsConfig struct {
	URI    string `mapstructure:"uri"` // evdev://, udp://, serial://, file://; empty reuses the tracker source
	Quit   int    `mapstructure:"quit"`
	Move   int    `mapstructure:"move"`
	Left   int    `mapstructure:"left"`
	Middle int    `mapstructure:"middle"`
	Right  int    `mapstructure:"right"`
}

// ScreenConfig describes the projection surface in tracker units
type ScreenConfig struct {
	Plane string `mapstructure:"plane"` // [z,xmin,xmax,ymin,ymax]
}

// CalibrationConfig holds the initial orientation correction
type CalibrationConfig struct {
	Quaternion string `mapstructure:"quaternion"` // [x,y,z,w]
	OnStart    bool   `mapstructure:"on_start"`
}

// PointerConfig selects the pointer injection backend
type PointerConfig struct {
	Backend string `mapstructure:"backend"` // auto, uinput, x11, dotool
}

// DisplayConfig selects how the screen resolution is found
type DisplayConfig struct {
	Backend string `mapstructure:"backend"` // auto, x11, wlr-randr, static
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
}

// LoopConfig tunes the event loop
type LoopConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// IPCConfig controls the status socket
type IPCConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	SocketPath string `mapstructure:"socket_path"` // Empty means /tmp/wandmouse-<user>.sock
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Verbosity int    `mapstructure:"verbosity"`
	LogLevel  string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// PointerBackends lists the accepted pointer.backend values
	PointerBackends = []string{"auto", "uinput", "x11", "dotool"}
	// DisplayBackends lists the accepted display.backend values
	DisplayBackends = []string{"auto", "x11", "wlr-randr", "static"}

	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Tracker: TrackerConfig{
			URI:    "",
			Sensor: 0,
		},
		Buttons: ButtonsConfig{
			URI:    "",
			Quit:   Unassigned,
			Move:   Unassigned,
			Left:   Unassigned,
			Middle: Unassigned,
			Right:  Unassigned,
		},
		Screen: ScreenConfig{
			Plane: geometry.DefaultScreenPlane.String(),
		},
		Calibration: CalibrationConfig{
			Quaternion: geometry.FormatQuat(geometry.Identity),
			OnStart:    false,
		},
		Pointer: PointerConfig{
			Backend: "auto",
		},
		Display: DisplayConfig{
			Backend: "auto",
		},
		Loop: LoopConfig{
			PollInterval: time.Millisecond,
			BatchSize:    64,
		},
		IPC: IPCConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Verbosity: 0,
			LogLevel:  "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("wandmouse")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath("/etc/wandmouse")

		// If running with sudo, try the real user's config
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			viper.AddConfigPath(fmt.Sprintf("/home/%s/.config/wandmouse", sudoUser))
		} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
			viper.AddConfigPath(filepath.Join(home, ".config", "wandmouse"))
		}

		viper.AddConfigPath(".")
	}

	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPathOverride != "" && os.IsNotExist(err)) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// setDefaults registers individual fields so that partial files merge properly
func setDefaults() {
	viper.SetDefault("tracker.uri", DefaultConfig.Tracker.URI)
	viper.SetDefault("tracker.sensor", DefaultConfig.Tracker.Sensor)

	viper.SetDefault("buttons.uri", DefaultConfig.Buttons.URI)
	viper.SetDefault("buttons.quit", DefaultConfig.Buttons.Quit)
	viper.SetDefault("buttons.move", DefaultConfig.Buttons.Move)
	viper.SetDefault("buttons.left", DefaultConfig.Buttons.Left)
	viper.SetDefault("buttons.middle", DefaultConfig.Buttons.Middle)
	viper.SetDefault("buttons.right", DefaultConfig.Buttons.Right)

	viper.SetDefault("screen.plane", DefaultConfig.Screen.Plane)

	viper.SetDefault("calibration.quaternion", DefaultConfig.Calibration.Quaternion)
	viper.SetDefault("calibration.on_start", DefaultConfig.Calibration.OnStart)

	viper.SetDefault("pointer.backend", DefaultConfig.Pointer.Backend)

	viper.SetDefault("display.backend", DefaultConfig.Display.Backend)
	viper.SetDefault("display.width", DefaultConfig.Display.Width)
	viper.SetDefault("display.height", DefaultConfig.Display.Height)

	viper.SetDefault("loop.poll_interval", DefaultConfig.Loop.PollInterval)
	viper.SetDefault("loop.batch_size", DefaultConfig.Loop.BatchSize)

	viper.SetDefault("ipc.enabled", DefaultConfig.IPC.Enabled)
	viper.SetDefault("ipc.socket_path", DefaultConfig.IPC.SocketPath)

	viper.SetDefault("logging.verbosity", DefaultConfig.Logging.Verbosity)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		c := DefaultConfig
		return &c
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save writes the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		if os.IsPermission(err) && strings.Contains(configPath, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Update stores c in viper and writes it to the config file
func Update(c *Config) error {
	viper.Set("tracker.uri", c.Tracker.URI)
	viper.Set("tracker.sensor", c.Tracker.Sensor)
	viper.Set("buttons.uri", c.Buttons.URI)
	viper.Set("buttons.quit", c.Buttons.Quit)
	viper.Set("buttons.move", c.Buttons.Move)
	viper.Set("buttons.left", c.Buttons.Left)
	viper.Set("buttons.middle", c.Buttons.Middle)
	viper.Set("buttons.right", c.Buttons.Right)
	viper.Set("screen.plane", c.Screen.Plane)
	viper.Set("calibration.quaternion", c.Calibration.Quaternion)
	viper.Set("calibration.on_start", c.Calibration.OnStart)
	viper.Set("pointer.backend", c.Pointer.Backend)
	viper.Set("display.backend", c.Display.Backend)
	viper.Set("display.width", c.Display.Width)
	viper.Set("display.height", c.Display.Height)
	cfg = c
	return Save()
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	// For root/sudo, prefer system config
	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return "/etc/wandmouse/wandmouse.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/wandmouse/wandmouse.toml"
	}

	return filepath.Join(home, ".config", "wandmouse", "wandmouse.toml")
}
