package tui

import (
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/tui/colors"

	"github.com/charmbracelet/lipgloss"
)

// === Layout Styles ===
var (
	// Standard pane border
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Gray).
			Padding(0, 1)

	LogoStyle = lipgloss.NewStyle().
			Foreground(colors.NeonPurple).
			Bold(true)

	// === Text Styles ===

	HeaderStyle = lipgloss.NewStyle().
			Foreground(colors.NeonCyan).
			Bold(true)

	CursorRowStyle = lipgloss.NewStyle().
			Foreground(colors.NeonPink).
			Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(colors.White)

	RowStyle = lipgloss.NewStyle().
			Foreground(colors.LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(colors.Gray)

	MessageStyle = lipgloss.NewStyle().
			Foreground(colors.LightGray).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colors.StatusFailed).
			Bold(true)

	// Toolbar buttons
	ButtonStyle = lipgloss.NewStyle().
			Foreground(colors.NeonCyan).
			Padding(0, 1)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(colors.Gray).
				Padding(0, 1)
)

// StatusStyle colors a queue status.
func StatusStyle(s queue.Status) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch s {
	case queue.StatusDownloading:
		return style.Foreground(colors.StatusDownloading)
	case queue.StatusCompleted:
		return style.Foreground(colors.StatusCompleted)
	case queue.StatusFailed:
		return style.Foreground(colors.StatusFailed)
	default:
		return style.Foreground(colors.StatusPending)
	}
}
