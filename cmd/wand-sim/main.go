// wand-sim sends the poses of a wand sweeping a figure eight, for running
// wandmouse without tracking hardware.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bnema/wandmouse/internal/logger"
)

func main() {
	var (
		motion Motion
		target string
		rate   float64
		origin string
	)

	cmd := &cobra.Command{
		Use:   "wand-sim",
		Short: "Send simulated wand poses and buttons",
		Long: `Send the poses of a wand sweeping a figure eight over the screen.
With --target udp://host:port the samples go out as datagrams, with --target -
they are written as text lines that a file:// source can replay.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseOrigin(origin)
			if err != nil {
				return err
			}
			motion.Origin = pos
			if rate > 0 {
				motion.Interval = time.Duration(float64(time.Second) / rate)
			}

			var out Emitter
			if target == "-" {
				motion.Interval = 0
				out = &lineEmitter{w: cmd.OutOrStdout()}
			} else {
				addr, ok := strings.CutPrefix(target, "udp://")
				if !ok {
					return fmt.Errorf("unsupported target %q", target)
				}
				udp, err := newUDPEmitter(addr)
				if err != nil {
					return err
				}
				out = udp
			}
			defer out.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Infof("Sending sensor %d to %s", motion.Sensor, target)
			sent, err := motion.Run(ctx, out)
			logger.Infof("Sent %d events", sent)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&target, "target", "t", "udp://127.0.0.1:7400", "Where to send samples: udp://host:port or - for stdout")
	f.IntVarP(&motion.Sensor, "sensor", "s", 0, "Sensor id")
	f.StringVar(&origin, "origin", "[0,1.375,0]", "Wand position [x,y,z]")
	f.Float64Var(&motion.Yaw, "yaw", 0.5, "Peak yaw in radians")
	f.Float64Var(&motion.Pitch, "pitch", 0.35, "Peak pitch in radians")
	f.DurationVar(&motion.Period, "period", 6*time.Second, "Duration of one figure eight")
	f.Float64Var(&rate, "rate", 60, "Samples per second")
	f.IntVarP(&motion.Count, "count", "n", 0, "Number of samples, 0 for no limit")
	f.IntVar(&motion.Button, "button", 0, "Button index to click")
	f.IntVar(&motion.ClickEvery, "click-every", 0, "Click every N samples, 0 never clicks")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseOrigin(s string) (r3.Vec, error) {
	fields := strings.Split(strings.Trim(strings.TrimSpace(s), "[]"), ",")
	if len(fields) != 3 {
		return r3.Vec{}, fmt.Errorf("invalid origin %q: want [x,y,z]", s)
	}
	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("invalid origin %q: %w", s, err)
		}
		v[i] = n
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}
