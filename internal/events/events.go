// Package events defines the messages broadcast by the queue service.
// They double as bubbletea messages in the queue view.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/droneq/droneq/internal/queue"
)

// ItemAddedMsg is sent when a release enters the queue.
type ItemAddedMsg struct {
	Item queue.Item `json:"item"`
}

// ItemsGrabbedMsg is sent after delayed items were pushed to their client.
type ItemsGrabbedMsg struct {
	IDs     []string `json:"ids"`
	Grabbed int      `json:"grabbed"`
}

// ItemsRemovedMsg is sent after items left the queue.
type ItemsRemovedMsg struct {
	IDs       []string `json:"ids"`
	Removed   int      `json:"removed"`
	Blacklist bool     `json:"blacklist"`
}

// StatusChangedMsg is sent when a single item changes status.
type StatusChangedMsg struct {
	ID     string       `json:"id"`
	Status queue.Status `json:"status"`
}

// Name returns the SSE event name for a message, or "" for unknown types.
func Name(msg any) string {
	switch msg.(type) {
	case ItemAddedMsg:
		return "added"
	case ItemsGrabbedMsg:
		return "grabbed"
	case ItemsRemovedMsg:
		return "removed"
	case StatusChangedMsg:
		return "status"
	default:
		return ""
	}
}

// Decode rebuilds a message from its SSE event name and JSON payload.
func Decode(name string, data []byte) (any, error) {
	var (
		msg any
		err error
	)
	switch name {
	case "added":
		var m ItemAddedMsg
		err = json.Unmarshal(data, &m)
		msg = m
	case "grabbed":
		var m ItemsGrabbedMsg
		err = json.Unmarshal(data, &m)
		msg = m
	case "removed":
		var m ItemsRemovedMsg
		err = json.Unmarshal(data, &m)
		msg = m
	case "status":
		var m StatusChangedMsg
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("unknown event %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", name, err)
	}
	return msg, nil
}
