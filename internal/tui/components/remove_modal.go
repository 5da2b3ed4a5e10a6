package components

import (
	"fmt"

	"github.com/droneq/droneq/internal/tui/colors"

	"github.com/charmbracelet/bubbles/help"
)

// NewRemoveModal builds the confirmation shown before removing the selected
// queue items. The Extra binding of keys toggles blacklisting.
func NewRemoveModal(selectedCount int, blacklist bool, keys ConfirmationKeyMap, helpModel help.Model) ConfirmationModal {
	noun := "items"
	if selectedCount == 1 {
		noun = "item"
	}
	message := fmt.Sprintf("Are you sure you want to remove %d selected %s from the queue?", selectedCount, noun)

	mark := " "
	if blacklist {
		mark = "x"
	}
	detail := fmt.Sprintf("[%s] Blacklist release", mark)

	return NewConfirmationModal("Remove Selected", message, detail, keys, helpModel, colors.StatusFailed)
}
