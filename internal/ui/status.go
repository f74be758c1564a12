package ui

import (
	"fmt"
	"strings"

	"github.com/bnema/wandmouse/internal/geometry"
	"github.com/bnema/wandmouse/internal/session"
	"github.com/bnema/wandmouse/internal/wire"
)

// RenderStatus formats the status of a running bridge
func RenderStatus(s wire.Status) string {
	snap := s.Snapshot
	var b strings.Builder

	state := FormatStatus(true, "tracking")
	switch {
	case snap.Quit:
		state = FormatStatus(false, WarningStyle.Render("quitting"))
	case snap.State == session.StateCalibrating:
		state = FormatStatus(true, InfoStyle.Render("calibrating - press any button"))
	}
	fmt.Fprintln(&b, FormatField("State", state))

	movement := FormatStatus(false, "disabled")
	if snap.MoveEnabled {
		movement = FormatStatus(true, "enabled")
	}
	fmt.Fprintln(&b, FormatField("Movement", movement))

	if s.Tracker != "" {
		fmt.Fprintln(&b, FormatField("Tracker", fmt.Sprintf("%s (sensor %d)", s.Tracker, snap.Sensor)))
	}
	if s.Buttons != "" {
		fmt.Fprintln(&b, FormatField("Buttons", s.Buttons))
	}

	pointer := MutedStyle.Render("not moved yet")
	if snap.HasPointer {
		pointer = fmt.Sprintf("%d, %d", snap.Pointer.X, snap.Pointer.Y)
	}
	fmt.Fprintln(&b, FormatField("Pointer", pointer))
	fmt.Fprintln(&b, FormatField("Calibration", geometry.FormatQuat(snap.Correction)))

	st := snap.Stats
	fmt.Fprintln(&b, FormatField("Samples", fmt.Sprintf("%d poses, %d moves, %d clicks", st.Poses, st.Moves, st.Clicks)))
	if st.Dropped > 0 || st.Degenerate > 0 {
		fmt.Fprintln(&b, FormatField("Dropped", WarningStyle.Render(
			fmt.Sprintf("%d buttons, %d degenerate poses", st.Dropped, st.Degenerate))))
	}

	return strings.TrimRight(b.String(), "\n")
}
