package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/display"
)

// DisplayInfo represents the display information output
type DisplayInfo struct {
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Monitors []MonitorInfo `json:"monitors"`
	Error    string        `json:"error,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	X       int32   `json:"x"`
	Y       int32   `json:"y"`
	Width   int32   `json:"width"`
	Height  int32   `json:"height"`
	Primary bool    `json:"primary"`
	Scale   float64 `json:"scale"`
}

var jsonOutput bool

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "Show monitor configuration",
	Long: `Show the monitors the display backend reports and the desktop size the
pointer is mapped onto.`,
	RunE: runMonitors,
}

func init() {
	monitorsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.AddCommand(monitorsCmd)
}

func runMonitors(cmd *cobra.Command, args []string) error {
	cfg := config.Get().Display
	backend := cfg.Backend
	if backend == "auto" && cfg.Width > 0 && cfg.Height > 0 {
		backend = "static"
	}

	out := cmd.OutOrStdout()
	size, monitors, err := display.Query(backend, cfg.Width, cfg.Height)

	if jsonOutput {
		info := DisplayInfo{Monitors: make([]MonitorInfo, 0, len(monitors))}
		if err != nil {
			info.Error = err.Error()
		} else {
			info.Width, info.Height = size.Width, size.Height
		}
		for _, mon := range monitors {
			info.Monitors = append(info.Monitors, MonitorInfo{
				ID:      mon.ID,
				Name:    mon.Name,
				X:       mon.X,
				Y:       mon.Y,
				Width:   mon.Width,
				Height:  mon.Height,
				Primary: mon.Primary,
				Scale:   mon.Scale,
			})
		}
		return json.NewEncoder(out).Encode(info)
	}

	if err != nil {
		return fmt.Errorf("failed to detect monitors: %w", err)
	}

	fmt.Fprintf(out, "Detected %d monitor(s):\n\n", len(monitors))
	for i, mon := range monitors {
		fmt.Fprintf(out, "Monitor %d:\n", i+1)
		fmt.Fprintf(out, "  Name:       %s\n", mon.Name)
		if mon.ID != "" && mon.ID != mon.Name {
			fmt.Fprintf(out, "  ID:         %s\n", mon.ID)
		}
		fmt.Fprintf(out, "  Resolution: %dx%d\n", mon.Width, mon.Height)
		fmt.Fprintf(out, "  Position:   (%d, %d)\n", mon.X, mon.Y)
		if mon.Primary {
			fmt.Fprintf(out, "  Primary:    Yes\n")
		}
		if mon.Scale != 0 && mon.Scale != 1.0 {
			fmt.Fprintf(out, "  Scale:      %.1fx\n", mon.Scale)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Pointer area: %s\n", size)
	return nil
}
