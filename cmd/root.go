package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/logger"
)

var (
	configFile string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "wandmouse",
		Short: "wandmouse - drive the desktop pointer with a tracked wand",
		Long: `wandmouse turns the pose stream of a motion-tracked wand into absolute
pointer positions on a flat screen. Wand buttons can quit, gate movement or
click the left, middle and right mouse buttons.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default searches /etc/wandmouse, ~/.config/wandmouse, .)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func initConfig(cmd *cobra.Command, args []string) error {
	config.SetConfigPath(configFile)
	if err := config.Init(); err != nil {
		return err
	}

	level := logLevel
	if level == "" {
		level = config.Get().Logging.LogLevel
	}
	if level != "" && !logger.SetLevel(level) {
		logger.Warnf("Unknown log level %q", level)
	}
	return nil
}
