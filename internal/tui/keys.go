package tui

import (
	"github.com/droneq/droneq/internal/tui/components"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings for the queue view
type KeyMap struct {
	Queue  QueueKeyMap
	Remove components.ConfirmationKeyMap
}

// QueueKeyMap defines keybindings for the queue table
type QueueKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	RangeUp   key.Binding
	RangeDown key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Grab      key.Binding
	Remove    key.Binding
	Copy      key.Binding
	Refresh   key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// Keys contains all the keybindings for the application
var Keys = KeyMap{
	Queue: QueueKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		RangeUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("⇧↑", "select up"),
		),
		RangeDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("⇧↓", "select down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		Grab: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "grab"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy ids"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←", "prev page"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	},
	Remove: components.ConfirmationKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "remove"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Extra: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "blacklist"),
		),
	},
}

// ShortHelp returns keybindings to show in the mini help view
func (k QueueKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.ToggleAll, k.Grab, k.Remove, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k QueueKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.RangeUp, k.RangeDown},
		{k.Toggle, k.ToggleAll, k.Copy},
		{k.Grab, k.Remove, k.Refresh},
		{k.PrevPage, k.NextPage, k.Help, k.Quit},
	}
}
