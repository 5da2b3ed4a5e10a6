// Package selection tracks which queue items are selected.
//
// State is an immutable value: every operation returns a new State and never
// modifies the receiver, so the queue view can swap states on each event
// without locking.
package selection

import (
	"maps"
	"slices"
)

// State holds the selection of a queue view.
type State struct {
	selected    map[string]bool
	lastToggled string
	hasLast     bool

	allSelected   bool
	allUnselected bool
}

// Empty returns a state with nothing selected.
func Empty() State {
	return State{
		selected:      map[string]bool{},
		allUnselected: true,
	}
}

// ToggleAll sets every id in ids to value and clears the anchor.
func (s State) ToggleAll(ids []string, value bool) State {
	next := s.clone()
	for _, id := range ids {
		next.selected[id] = value
	}
	next.lastToggled, next.hasLast = "", false
	return next.recompute(ids)
}

// ToggleOne sets a single id and makes it the anchor. Ids outside ids are
// recorded anyway and drop out on the next reconciliation.
func (s State) ToggleOne(ids []string, id string, value bool) State {
	next := s.clone()
	next.selected[id] = value
	next.lastToggled, next.hasLast = id, true
	return next.recompute(ids)
}

// IsSelected reports whether id is selected.
func (s State) IsSelected(id string) bool {
	return s.selected[id]
}

// Touched reports whether id has an explicit entry, selected or not.
func (s State) Touched(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// LastToggled returns the anchor for range selection.
func (s State) LastToggled() (string, bool) {
	return s.lastToggled, s.hasLast
}

// AllSelected reports whether every current id is selected.
func (s State) AllSelected() bool { return s.allSelected }

// AllUnselected reports whether no current id is selected.
func (s State) AllUnselected() bool { return s.allUnselected }

// SelectedIDs returns the selected ids in lexical order.
func (s State) SelectedIDs() []string {
	ids := make([]string, 0, len(s.selected))
	for id, on := range s.selected {
		if on {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Count returns the number of selected ids.
func (s State) Count() int {
	n := 0
	for _, on := range s.selected {
		if on {
			n++
		}
	}
	return n
}

// Equal reports whether two states hold the same selection and anchor.
func (s State) Equal(o State) bool {
	if s.hasLast != o.hasLast || s.lastToggled != o.lastToggled {
		return false
	}
	if s.allSelected != o.allSelected || s.allUnselected != o.allUnselected {
		return false
	}
	return slices.Equal(s.SelectedIDs(), o.SelectedIDs())
}

func (s State) clone() State {
	next := s
	next.selected = make(map[string]bool, len(s.selected)+1)
	maps.Copy(next.selected, s.selected)
	return next
}

// recompute refreshes the derived flags against the current id set.
func (s State) recompute(ids []string) State {
	all, none := true, true
	for _, id := range ids {
		if s.selected[id] {
			none = false
		} else {
			all = false
		}
	}
	s.allSelected, s.allUnselected = all, none
	return s
}
