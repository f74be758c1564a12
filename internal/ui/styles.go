// Package ui provides consistent styling and components for the wandmouse CLI
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - consistent across the application
var (
	ColorPrimary   = lipgloss.Color("39")  // Bright blue
	ColorSecondary = lipgloss.Color("205") // Pink/magenta
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorInfo      = lipgloss.Color("86")  // Cyan

	ColorText   = lipgloss.Color("252") // Light gray
	ColorSubtle = lipgloss.Color("241") // Medium gray
	ColorMuted  = lipgloss.Color("238") // Dark gray

	ColorActive   = ColorPrimary
	ColorInactive = ColorSubtle
)

var (
	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorMuted).
			Padding(0, 1)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(1, 2)

	ListItemStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Width(14)

	ControlKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	ControlDescStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	ActiveIndicator = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Render("●")

	InactiveIndicator = lipgloss.NewStyle().
				Foreground(ColorInactive).
				Render("○")
)

// IconError marks error lines
var IconError = "✗"

// FormatControl renders a key binding hint
func FormatControl(key, desc string) string {
	return ControlKeyStyle.Render(key) + " - " + ControlDescStyle.Render(desc)
}

// FormatStatus prefixes status with an on/off indicator
func FormatStatus(active bool, status string) string {
	indicator := InactiveIndicator
	if active {
		indicator = ActiveIndicator
	}
	return indicator + " " + status
}

func FormatListItem(item string, active bool) string {
	style := ListItemStyle
	if active {
		style = style.Foreground(ColorActive)
	}
	return "  • " + style.Render(item)
}

// FormatField renders an aligned "label value" line
func FormatField(label, value string) string {
	return LabelStyle.Render(label) + TextStyle.Render(value)
}

func FormatHeader(title string) string {
	return HeaderStyle.Render(title) + "\n" + CreateSeparator(50, "─")
}

// CreateSeparator creates a horizontal line separator
func CreateSeparator(width int, char string) string {
	if width <= 0 {
		width = 50
	}
	if char == "" {
		char = "─"
	}

	return lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Render(strings.Repeat(char, width))
}
