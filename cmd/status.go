package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/wandmouse/internal/config"
	"github.com/bnema/wandmouse/internal/ipc"
	"github.com/bnema/wandmouse/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of the running bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ipc.NewClient(config.Get().IPC.SocketPath)
		if err != nil {
			return fmt.Errorf("failed to create IPC client: %w", err)
		}

		out := cmd.OutOrStdout()
		status, err := client.GetStatus()
		if errors.Is(err, ipc.ErrNotRunning) {
			fmt.Fprintln(out, ui.FormatStatus(false, "wandmouse is not running"))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		fmt.Fprintln(out, ui.FormatHeader("WANDMOUSE"))
		fmt.Fprintln(out, ui.BoxStyle.Render(ui.RenderStatus(status)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
