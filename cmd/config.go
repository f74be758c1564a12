package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/logger"
	"github.com/bnema/wandmouse/internal/setup"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage wandmouse configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Config file: %s\n\n", config.GetConfigPath())

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "[tracker]")
		fmt.Fprintf(w, "  uri\t%s\n", orNone(cfg.Tracker.URI))
		fmt.Fprintf(w, "  sensor\t%d\n", cfg.Tracker.Sensor)
		fmt.Fprintln(w, "[buttons]")
		fmt.Fprintf(w, "  uri\t%s\n", orNone(cfg.Buttons.URI))
		fmt.Fprintf(w, "  quit\t%s\n", buttonIndex(cfg.Buttons.Quit))
		fmt.Fprintf(w, "  move\t%s\n", buttonIndex(cfg.Buttons.Move))
		fmt.Fprintf(w, "  left\t%s\n", buttonIndex(cfg.Buttons.Left))
		fmt.Fprintf(w, "  middle\t%s\n", buttonIndex(cfg.Buttons.Middle))
		fmt.Fprintf(w, "  right\t%s\n", buttonIndex(cfg.Buttons.Right))
		fmt.Fprintln(w, "[screen]")
		fmt.Fprintf(w, "  plane\t%s\n", cfg.Screen.Plane)
		fmt.Fprintln(w, "[calibration]")
		fmt.Fprintf(w, "  quaternion\t%s\n", cfg.Calibration.Quaternion)
		fmt.Fprintf(w, "  on_start\t%v\n", cfg.Calibration.OnStart)
		fmt.Fprintln(w, "[pointer]")
		fmt.Fprintf(w, "  backend\t%s\n", cfg.Pointer.Backend)
		fmt.Fprintln(w, "[display]")
		fmt.Fprintf(w, "  backend\t%s\n", cfg.Display.Backend)
		if cfg.Display.Width > 0 || cfg.Display.Height > 0 {
			fmt.Fprintf(w, "  size\t%dx%d\n", cfg.Display.Width, cfg.Display.Height)
		}
		fmt.Fprintln(w, "[loop]")
		fmt.Fprintf(w, "  poll_interval\t%s\n", cfg.Loop.PollInterval)
		fmt.Fprintf(w, "  batch_size\t%d\n", cfg.Loop.BatchSize)
		fmt.Fprintln(w, "[ipc]")
		fmt.Fprintf(w, "  enabled\t%v\n", cfg.IPC.Enabled)
		if cfg.IPC.SocketPath != "" {
			fmt.Fprintf(w, "  socket_path\t%s\n", cfg.IPC.SocketPath)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if _, err := cfg.Resolve(); err != nil {
			logger.Warnf("Configuration is not usable yet: %v", err)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file",
	Long: `Create the configuration file. Without --defaults an interactive form asks
for the tracker source, the sensor, the button source and the button layout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.GetConfigPath()
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(configPath); err == nil && !force {
			logger.Infof("Configuration file already exists at: %s", configPath)
			logger.Info("Use --force to overwrite")
			return nil
		}

		cfg := *config.Get()
		if defaults, _ := cmd.Flags().GetBool("defaults"); !defaults {
			if err := setup.NewWizard().Run(&cfg); err != nil {
				return err
			}
		}

		if err := config.Update(&cfg); err != nil {
			return err
		}
		logger.Infof("Configuration saved to: %s", configPath)
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func buttonIndex(i int) string {
	if i == config.Unassigned {
		return "-"
	}
	return fmt.Sprint(i)
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
	configInitCmd.Flags().Bool("defaults", false, "Write the defaults without asking")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
