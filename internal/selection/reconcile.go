package selection

import "github.com/droneq/droneq/internal/queue"

// ShouldReset reports whether the id set of next differs from prev.
// Order and status changes do not count, so routine status polling keeps the
// user's selection.
func ShouldReset(prev, next []queue.Item) bool {
	before := idSet(prev)
	after := idSet(next)
	if len(before) != len(after) {
		return true
	}
	for id := range after {
		if _, ok := before[id]; !ok {
			return true
		}
	}
	return false
}

// Reconcile returns the state to use once next replaces prev.
func Reconcile(prev, next []queue.Item, s State) State {
	if ShouldReset(prev, next) {
		return Empty()
	}
	ids := queue.IDs(next)
	current := idSet(next)
	out := s.clone()
	for id := range out.selected {
		if _, ok := current[id]; !ok {
			delete(out.selected, id)
		}
	}
	if _, ok := current[out.lastToggled]; out.hasLast && !ok {
		out.lastToggled, out.hasLast = "", false
	}
	return out.recompute(ids)
}

// HasSelectedInStatus reports whether any selected item currently has status.
func HasSelectedInStatus(items []queue.Item, s State, status queue.Status) bool {
	for _, item := range items {
		if item.Status == status && s.IsSelected(item.ID) {
			return true
		}
	}
	return false
}

func idSet(items []queue.Item) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item.ID] = struct{}{}
	}
	return set
}
