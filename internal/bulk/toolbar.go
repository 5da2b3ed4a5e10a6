package bulk

import (
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/selection"
)

// Activity carries the spinner flags reported by the action layer.
type Activity struct {
	IsGrabbing bool
	IsRemoving bool
}

// Toolbar is the derived state of the queue toolbar controls.
type Toolbar struct {
	Refreshing     bool
	GrabDisabled   bool
	GrabSpinning   bool
	RemoveDisabled bool
	RemoveSpinning bool
	SelectedCount  int
}

// Toolbar derives control state for the current render. It is recomputed
// on every call since items and selection change independently.
func (c *Coordinator) Toolbar(src queue.Source, s selection.State, a Activity) Toolbar {
	count := s.Count()
	return Toolbar{
		Refreshing:     src.IsRefreshing(),
		GrabDisabled:   count == 0 || !selection.HasSelectedInStatus(src.Items, s, c.pendingStatus),
		GrabSpinning:   a.IsGrabbing,
		RemoveDisabled: count == 0,
		RemoveSpinning: a.IsRemoving,
		SelectedCount:  count,
	}
}
