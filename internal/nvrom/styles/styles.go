// Package styles defines the lipgloss styles shared by the summary renderer
// and the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

var (
	// Title bar of the TUI and the heading of the plain summary.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(charmtone.Zest.Hex())).
		Background(lipgloss.Color(charmtone.Charple.Hex())).
		Padding(0, 1)

	// Section header, one per firmware unit.
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(charmtone.Malibu.Hex()))

	// Field label in key/value listings.
	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color(charmtone.Squid.Hex())).
		Width(14)

	// Field value.
	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color(charmtone.Smoke.Hex()))

	// Muted renders placeholders such as absent tables.
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color(charmtone.Charcoal.Hex())).
		Italic(true)

	// Accent marks offsets and sizes.
	Accent = lipgloss.NewStyle().
		Foreground(lipgloss.Color(charmtone.Guac.Hex()))

	// ErrorText reports parse failures inside the TUI.
	ErrorText = lipgloss.NewStyle().
			Foreground(lipgloss.Color(charmtone.Cheeky.Hex())).
			Bold(true)

	// StatusBar is the bottom help line of the TUI.
	StatusBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color(charmtone.Squid.Hex()))
)
