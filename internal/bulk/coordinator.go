// Package bulk sequences the grab and remove actions applied to a queue
// selection.
package bulk

import (
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/selection"
	"github.com/droneq/droneq/internal/utils"
)

// Phase is the coordinator's position in the remove workflow.
type Phase int

const (
	Idle Phase = iota
	ConfirmPending
)

func (p Phase) String() string {
	if p == ConfirmPending {
		return "confirm-pending"
	}
	return "idle"
}

// Handlers are the action entry points. Both are fire-and-forget: outcome
// and spinner state are reported back outside the coordinator.
type Handlers struct {
	Grab   func(ids []string)
	Remove func(ids []string, blacklist bool)
}

// ModalProps is what the remove confirmation needs to render.
type ModalProps struct {
	IsOpen        bool
	SelectedCount int
}

// Coordinator owns the confirm-before-remove workflow. The zero value is
// not usable; create one with NewCoordinator.
type Coordinator struct {
	handlers      Handlers
	pendingStatus queue.Status
	phase         Phase
	count         int
}

// NewCoordinator creates a coordinator that grabs items in pendingStatus.
// An empty pendingStatus means queue.StatusDelay.
func NewCoordinator(h Handlers, pendingStatus queue.Status) *Coordinator {
	if pendingStatus == "" {
		pendingStatus = queue.StatusDelay
	}
	return &Coordinator{handlers: h, pendingStatus: pendingStatus}
}

// Phase returns the current phase.
func (c *Coordinator) Phase() Phase { return c.phase }

// PendingStatus returns the status eligible for grab.
func (c *Coordinator) PendingStatus() queue.Status { return c.pendingStatus }

// Modal returns the confirmation props for the current phase.
func (c *Coordinator) Modal() ModalProps {
	return ModalProps{IsOpen: c.phase == ConfirmPending, SelectedCount: c.count}
}

// CanGrab reports whether grab is meaningful for the selection.
func (c *Coordinator) CanGrab(items []queue.Item, s selection.State) bool {
	return s.Count() > 0 && selection.HasSelectedInStatus(items, s, c.pendingStatus)
}

// RequestGrab invokes the grab handler right away when the selection holds at
// least one pending item. It reports whether the handler was called.
func (c *Coordinator) RequestGrab(items []queue.Item, s selection.State) bool {
	if !c.CanGrab(items, s) {
		utils.Debug("bulk: grab ignored, no %s item selected", c.pendingStatus)
		return false
	}
	ids := s.SelectedIDs()
	utils.Debug("bulk: grab %d item(s)", len(ids))
	if c.handlers.Grab != nil {
		c.handlers.Grab(ids)
	}
	return true
}

// RequestRemove opens the confirmation step. An empty selection is a no-op.
func (c *Coordinator) RequestRemove(s selection.State) bool {
	n := s.Count()
	if n == 0 {
		return false
	}
	c.phase = ConfirmPending
	c.count = n
	return true
}

// Cancel abandons a pending remove without side effects.
func (c *Coordinator) Cancel() {
	c.phase = Idle
	c.count = 0
}

// Confirm forwards the current selection to the remove handler and returns
// to Idle. It reports whether the handler was called.
func (c *Coordinator) Confirm(s selection.State, blacklist bool) bool {
	if c.phase != ConfirmPending {
		return false
	}
	ids := s.SelectedIDs()
	c.Cancel()
	if len(ids) == 0 {
		return false
	}
	utils.Debug("bulk: remove %d item(s), blacklist=%t", len(ids), blacklist)
	if c.handlers.Remove != nil {
		c.handlers.Remove(ids, blacklist)
	}
	return true
}

// Sync keeps the modal count in line with a selection that changed while
// the confirmation was open.
func (c *Coordinator) Sync(s selection.State) {
	if c.phase == ConfirmPending {
		c.count = s.Count()
	}
}
