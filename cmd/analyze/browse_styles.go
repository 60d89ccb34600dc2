package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// StatusStyle for the loading line.
	StatusStyle = lipgloss.NewStyle().Italic(true)
)

// FormatPriceChange renders a price with an arrow against the price of the
// previous refresh. A zero previous price means there was no refresh yet.
func FormatPriceChange(current, previous float64) string {
	priceStr := fmt.Sprintf("%.4f", current)

	switch {
	case previous == 0:
		return priceStr
	case current > previous:
		return priceStr + " ▲"
	case current < previous:
		return priceStr + " ▼"
	default:
		return priceStr
	}
}
