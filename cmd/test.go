package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/display"
	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/input"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run test utilities",
	Long:  `Run test utilities to verify wandmouse components are working correctly.`,
}

var (
	testPointerBackend string
	testPointerDelay   time.Duration
	testPointerClick   bool
)

var testPointerCmd = &cobra.Command{
	Use:   "pointer",
	Short: "Move the pointer to the screen corners",
	Long: `Move the pointer through the four screen corners and back to the centre
using the configured pointer and display backends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		backend := testPointerBackend
		if backend == "" {
			backend = cfg.Pointer.Backend
		}

		displayBackend := cfg.Display.Backend
		if displayBackend == "auto" && cfg.Display.Width > 0 && cfg.Display.Height > 0 {
			displayBackend = "static"
		}
		size, _, err := display.Query(displayBackend, cfg.Display.Width, cfg.Display.Height)
		if err != nil {
			return fmt.Errorf("failed to get screen size: %w", err)
		}

		pointer, err := input.NewPointer(backend, size.Width, size.Height)
		if err != nil {
			return err
		}
		coordinator := input.NewCoordinator(pointer)
		defer coordinator.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Moving the pointer on a %s screen (Ctrl+C to stop)\n", size)
		return tracePointer(ctx, coordinator, size, testPointerDelay, testPointerClick, cmd.OutOrStdout())
	},
}

// tracePointer visits the corners clockwise from the top left, then the
// centre, where it optionally clicks the left button
func tracePointer(ctx context.Context, p input.Pointer, size display.Size, delay time.Duration, click bool, out io.Writer) error {
	right, bottom := size.Width-1, size.Height-1
	stops := []struct {
		name string
		x, y int
	}{
		{"top left", 0, 0},
		{"top right", right, 0},
		{"bottom right", right, bottom},
		{"bottom left", 0, bottom},
		{"centre", size.Width / 2, size.Height / 2},
	}

	for _, s := range stops {
		fmt.Fprintf(out, "  %-12s %d, %d\n", s.name, s.x, s.y)
		if err := p.MoveTo(s.x, s.y); err != nil {
			return fmt.Errorf("move to %s: %w", s.name, err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}

	if click {
		fmt.Fprintln(out, "  left click")
		if err := p.Button(event.PointerLeft, true); err != nil {
			return err
		}
		return p.Button(event.PointerLeft, false)
	}
	return nil
}

func init() {
	testPointerCmd.Flags().StringVar(&testPointerBackend, "pointer", "", "Pointer backend: auto, uinput, x11, dotool")
	testPointerCmd.Flags().DurationVar(&testPointerDelay, "delay", time.Second, "Pause at each stop")
	testPointerCmd.Flags().BoolVar(&testPointerClick, "click", false, "Left click at the centre")

	testCmd.AddCommand(testPointerCmd)
	rootCmd.AddCommand(testCmd)
}
