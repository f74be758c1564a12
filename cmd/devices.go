package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/wandmouse/internal/device"
	"github.com/bnema/wandmouse/internal/logger"
	"github.com/bnema/wandmouse/internal/ui"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List input devices and serial ports usable as sources",
	Long: `List evdev devices with buttons and the serial ports found on this machine.
Button indices of an evdev source follow the order of the key codes shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, ui.FormatHeader("Button devices"))
		devices, err := device.ListButtonDevices()
		if err != nil {
			logger.Warnf("Cannot list input devices: %v", err)
		}
		if len(devices) == 0 {
			fmt.Fprintln(out, ui.MutedStyle.Render("  none readable (try sudo or the input group)"))
		}
		for _, dev := range devices {
			fmt.Fprintln(out, ui.FormatListItem(fmt.Sprintf("%s  evdev://%s", dev.Name, dev.Stable), true))
			fmt.Fprintf(out, "      %s\n", formatKeys(dev.Keys))
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.FormatHeader("Serial ports"))
		ports, err := device.ListSerialPorts()
		if err != nil {
			logger.Warnf("Cannot list serial ports: %v", err)
		}
		if len(ports) == 0 {
			fmt.Fprintln(out, ui.MutedStyle.Render("  none"))
		}
		for _, port := range ports {
			fmt.Fprintln(out, ui.FormatListItem("serial://"+port, false))
		}
		return nil
	},
}

// formatKeys lists key codes with their button index, 0=0x120 1=0x121 ...
func formatKeys(keys []int) string {
	parts := make([]string, 0, len(keys))
	for i, code := range keys {
		parts = append(parts, fmt.Sprintf("%d=0x%x", i, code))
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
