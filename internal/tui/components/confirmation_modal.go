package components

import (
	"github.com/droneq/droneq/internal/tui/colors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmationModal renders a styled confirmation dialog box
type ConfirmationModal struct {
	Title       string
	Message     string
	Detail      string      // Optional additional detail line
	Keys        help.KeyMap // Key bindings to show in help
	Help        help.Model  // Help model for rendering keys
	BorderColor lipgloss.TerminalColor
	Width       int
}

// ConfirmationKeyMap defines keybindings for a confirmation modal
type ConfirmationKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
	Extra   key.Binding // Optional extra action (e.g. toggle blacklist)
}

// ShortHelp returns keybindings to show
func (k ConfirmationKeyMap) ShortHelp() []key.Binding {
	if k.Extra.Enabled() {
		return []key.Binding{k.Confirm, k.Extra, k.Cancel}
	}
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k ConfirmationKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// NewConfirmationModal creates a modal with default styling
func NewConfirmationModal(title, message, detail string, keys help.KeyMap, helpModel help.Model, borderColor lipgloss.TerminalColor) ConfirmationModal {
	return ConfirmationModal{
		Title:       title,
		Message:     message,
		Detail:      detail,
		Keys:        keys,
		Help:        helpModel,
		BorderColor: borderColor,
		Width:       60,
	}
}

// View renders the modal content without the box or help text
func (m ConfirmationModal) View() string {
	detailStyle := lipgloss.NewStyle().
		Foreground(colors.NeonPurple).
		Bold(true)

	content := m.Message
	if m.Detail != "" {
		content = lipgloss.JoinVertical(lipgloss.Center,
			content,
			"",
			detailStyle.Render(m.Detail),
		)
	}
	return content
}

// Box renders the modal with its title, border and help line.
func (m ConfirmationModal) Box() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(m.BorderColor).
		Padding(1, 4)

	innerWidth := m.Width - 10 // Account for borders and padding
	if innerWidth < 20 {
		innerWidth = 20
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(colors.NeonCyan).
		Bold(true)

	helpStyle := lipgloss.NewStyle().
		Foreground(colors.LightGray).
		Width(innerWidth).
		Align(lipgloss.Center)

	centered := lipgloss.NewStyle().Width(innerWidth).Align(lipgloss.Center)

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		centered.Render(titleStyle.Render(m.Title)),
		"",
		centered.Render(m.View()),
		"",
		helpStyle.Render(m.Help.View(m.Keys)),
	))
}

// Centered returns the modal centered in the given dimensions
func (m ConfirmationModal) Centered(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.Box())
}
