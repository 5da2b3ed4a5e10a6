package selection

import "github.com/droneq/droneq/internal/queue"

// ApplyToggle toggles targetID to value. With rangeHeld and a valid anchor
// every item between the anchor and the target, both inclusive, is set to
// value; items outside the range keep whatever they had. The target always
// becomes the new anchor.
func ApplyToggle(items []queue.Item, s State, targetID string, value, rangeHeld bool) State {
	ids := queue.IDs(items)

	anchor, ok := s.LastToggled()
	if !rangeHeld || !ok || anchor == targetID {
		return s.ToggleOne(ids, targetID, value)
	}

	from := queue.IndexOf(items, anchor)
	to := queue.IndexOf(items, targetID)
	if from < 0 || to < 0 {
		return s.ToggleOne(ids, targetID, value)
	}
	if from > to {
		from, to = to, from
	}

	next := s.clone()
	for _, item := range items[from : to+1] {
		next.selected[item.ID] = value
	}
	next.lastToggled, next.hasLast = targetID, true
	return next.recompute(ids)
}
