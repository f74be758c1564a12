package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/wandmouse/internal/bridge"
	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/device"
	"github.com/bnema/wandmouse/internal/display"
	"github.com/bnema/wandmouse/internal/input"
	"github.com/bnema/wandmouse/internal/ipc"
	"github.com/bnema/wandmouse/internal/logger"
	"github.com/bnema/wandmouse/internal/session"
	"github.com/bnema/wandmouse/internal/ui"
	"github.com/bnema/wandmouse/internal/wire"
)

const calibrationPrompt = "Point the wand towards the screen and press a button..."

var runTUI bool

var runCmd = &cobra.Command{
	Use:   "run [TRACKER_URI SENSOR [BUTTON_URI]]",
	Short: "Drive the pointer from the tracker",
	Long: `Read wand poses from TRACKER_URI and move the pointer to where the wand
points on the screen plane. Buttons come from BUTTON_URI, or from the tracker
source when it carries them.

Sources:
  udp://host:port                  protobuf datagrams (poses and buttons)
  serial:///dev/ttyACM0?baud=N     text lines (poses and buttons)
  file:///path/recording.txt       text lines, replayed once
  evdev:///dev/input/eventN        buttons only

Arguments override tracker.uri, tracker.sensor and buttons.uri from the
config file.`,
	Args: runArgs,
	RunE: runBridge,
}

func init() {
	f := runCmd.Flags()
	f.Bool("calibrate", false, "Capture the orientation correction from the first button press")
	f.StringP("calibration-data", "c", "", "Orientation correction [x,y,z,w]")
	f.String("screen", "", "Screen plane [z,xmin,xmax,ymin,ymax] in tracker units")
	f.Int("lmb", config.Unassigned, "Button index for the left mouse button")
	f.Int("mmb", config.Unassigned, "Button index for the middle mouse button")
	f.Int("rmb", config.Unassigned, "Button index for the right mouse button")
	f.Int("movebutton", config.Unassigned, "Button index that must be held for the pointer to move")
	f.Int("quitbutton", config.Unassigned, "Button index that quits")
	f.CountP("verbose", "v", "Increase diagnostic output (repeat up to 4 times)")
	f.String("pointer", "", "Pointer backend: auto, uinput, x11, dotool")
	f.String("display", "", "Display backend: auto, x11, wlr-randr, static")
	f.BoolVar(&runTUI, "tui", false, "Show a live status view")

	for name, key := range runFlagKeys {
		viper.BindPFlag(key, f.Lookup(name))
	}

	rootCmd.AddCommand(runCmd)
}

// runFlagKeys maps run flags to config keys
var runFlagKeys = map[string]string{
	"calibrate":        "calibration.on_start",
	"calibration-data": "calibration.quaternion",
	"screen":           "screen.plane",
	"lmb":              "buttons.left",
	"mmb":              "buttons.middle",
	"rmb":              "buttons.right",
	"movebutton":       "buttons.move",
	"quitbutton":       "buttons.quit",
	"verbose":          "logging.verbosity",
	"pointer":          "pointer.backend",
	"display":          "display.backend",
}

func runArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return fmt.Errorf("%w: SENSOR must follow TRACKER_URI", config.ErrConfig)
	}
	return cobra.MaximumNArgs(3)(cmd, args)
}

// applyArgs copies the positional arguments into c
func applyArgs(c *config.Config, args []string) error {
	if len(args) == 0 {
		return nil
	}
	c.Tracker.URI = args[0]
	sensor, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: sensor %q is not a number", config.ErrConfig, args[1])
	}
	c.Tracker.Sensor = sensor
	if len(args) == 3 {
		c.Buttons.URI = args[2]
	}
	return nil
}

// buttonSource checks that the tracker URI can deliver poses and returns
// the URI to open for buttons, empty when the tracker source delivers them
// or none are needed
func buttonSource(r *config.Resolved) (string, error) {
	if !device.CarriesPoses(r.TrackerURI) {
		return "", fmt.Errorf("%w: tracker %q delivers no poses (want udp://, serial:// or file://)",
			config.ErrConfig, r.TrackerURI)
	}
	if r.ButtonURI != "" && r.ButtonURI != r.TrackerURI {
		if !device.CarriesButtons(r.ButtonURI) {
			return "", fmt.Errorf("%w: button source %q delivers no buttons", config.ErrConfig, r.ButtonURI)
		}
		return r.ButtonURI, nil
	}
	if !r.NeedsButtons() {
		return "", nil
	}
	if device.CarriesButtons(r.TrackerURI) {
		return "", nil
	}
	return "", fmt.Errorf("%w: button actions or calibration requested but %q delivers no buttons and no BUTTON_URI is set",
		config.ErrConfig, r.TrackerURI)
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg := *config.Get()
	if err := applyArgs(&cfg, args); err != nil {
		return err
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return err
	}
	logger.SetVerbosity(resolved.Verbosity)

	buttonURI, err := buttonSource(resolved)
	if err != nil {
		return err
	}

	size, _, err := display.Query(resolved.DisplayBackend, resolved.DisplayWidth, resolved.DisplayHeight)
	if err != nil {
		return fmt.Errorf("failed to get screen size: %w", err)
	}
	logger.Infof("Screen size %s", size)

	pointer, err := input.NewPointer(resolved.PointerBackend, size.Width, size.Height)
	if err != nil {
		return err
	}
	coordinator := input.NewCoordinator(pointer)
	defer func() {
		if err := coordinator.Close(); err != nil {
			logger.Warnf("Failed to close pointer: %v", err)
		}
	}()

	out := cmd.OutOrStdout()
	var (
		logs   *ui.LogBuffer
		held   *heldReport
		report io.Writer = out
	)
	if runTUI {
		logs = ui.NewLogBuffer(8)
		held = &heldReport{logs: logs}
		report = held
	}

	sess, err := session.New(session.Options{
		Plane:        resolved.Plane,
		ScreenWidth:  size.Width,
		ScreenHeight: size.Height,
		Sensor:       resolved.Sensor,
		Actions:      resolved.Actions,
		Calibration:  resolved.Calibration,
		Calibrate:    resolved.Calibrate,
		Verbosity:    resolved.Verbosity,
		Logger:       logger.Logger,
		Report:       report,
	}, coordinator)
	if err != nil {
		return err
	}

	if resolved.Verbosity >= 3 {
		fmt.Fprintln(out, resolved.Actions.String())
	}

	tracker, err := device.Open(resolved.TrackerURI, device.DefaultBuffer)
	if err != nil {
		return fmt.Errorf("failed to open tracker: %w", err)
	}
	defer tracker.Close()

	var buttons device.Source
	if buttonURI != "" {
		buttons, err = device.Open(buttonURI, device.DefaultBuffer)
		if err != nil {
			return fmt.Errorf("failed to open button source: %w", err)
		}
		defer buttons.Close()
	}

	loop, err := bridge.New(bridge.Options{
		Session:      sess,
		Tracker:      tracker,
		Buttons:      buttons,
		PollInterval: resolved.PollInterval,
		BatchSize:    resolved.BatchSize,
		Logger:       logger.Logger,
	})
	if err != nil {
		return err
	}

	status := func() wire.Status {
		s := wire.Status{Tracker: tracker.Name(), Snapshot: loop.Snapshot()}
		if buttons != nil {
			s.Buttons = buttons.Name()
		}
		return s
	}

	if cfg.IPC.Enabled {
		stopIPC := startStatusServer(cfg.IPC.SocketPath, status)
		defer stopIPC()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if resolved.Calibrate {
		fmt.Fprintln(out, calibrationPrompt)
	}
	logger.Infof("Tracking sensor %d from %s", resolved.Sensor, tracker.Name())

	if runTUI {
		err = runLive(ctx, logs, status, loop.Run)
		if ferr := held.flush(out); ferr != nil {
			logger.Warnf("Failed to print calibration report: %v", ferr)
		}
	} else {
		err = loop.Run(ctx)
	}
	if err != nil {
		return err
	}

	st := loop.Snapshot().Stats
	logger.Infof("Stopped after %d poses, %d moves, %d clicks", st.Poses, st.Moves, st.Clicks)
	return nil
}

// startStatusServer serves status on the IPC socket. A failure only costs
// the status command, so it is logged and the bridge keeps running.
func startStatusServer(socketPath string, status ipc.StatusFunc) func() {
	if socketPath == "" {
		var err error
		socketPath, err = ipc.GetSocketPath()
		if err != nil {
			logger.Warnf("Status socket disabled: %v", err)
			return func() {}
		}
	}

	server, err := ipc.NewSocketServer(socketPath, status)
	if err == nil {
		err = server.Start()
	}
	if errors.Is(err, ipc.ErrAlreadyRunning) {
		logger.Warnf("Status socket disabled, %v", err)
		return func() {}
	}
	if err != nil {
		logger.Warnf("Status socket disabled: %v", err)
		return func() {}
	}
	logger.Debugf("Status socket listening on %s", server.SocketPath())
	return server.Stop
}

// runLive hands the terminal to the live view; log lines go to logs while
// it runs
func runLive(ctx context.Context, logs *ui.LogBuffer, status func() wire.Status, run func(context.Context) error) error {
	logger.Logger.SetOutput(logs)
	defer logger.Logger.SetOutput(os.Stderr)

	return ui.RunLive(ctx, status, logs, run)
}

// heldReport stands in for stdout while the live view owns the terminal.
// Report lines show up in the view's log and are printed for good once
// the view has closed.
type heldReport struct {
	mu      sync.Mutex
	pending bytes.Buffer
	logs    *ui.LogBuffer
}

func (r *heldReport) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.Write(p)
	return r.logs.Write(p)
}

func (r *heldReport) flush(out io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.pending.WriteTo(out)
	return err
}
