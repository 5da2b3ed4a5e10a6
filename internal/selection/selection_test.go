package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/droneq/droneq/internal/queue"
)

func items(ids ...string) []queue.Item {
	out := make([]queue.Item, len(ids))
	for i, id := range ids {
		out[i] = queue.Item{ID: id, Status: queue.StatusDownloading}
	}
	return out
}

func TestEmpty(t *testing.T) {
	s := Empty()
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.AllUnselected())
	assert.False(t, s.AllSelected())
	_, ok := s.LastToggled()
	assert.False(t, ok)
}

func TestToggleAll_Idempotent(t *testing.T) {
	ids := []string{"a", "b", "c"}

	once := Empty().ToggleAll(ids, true)
	twice := once.ToggleAll(ids, true)

	assert.True(t, once.AllSelected())
	assert.True(t, twice.AllSelected())
	assert.False(t, twice.AllUnselected())
	assert.True(t, once.Equal(twice))
	assert.Equal(t, []string{"a", "b", "c"}, twice.SelectedIDs())
}

func TestToggleAll_ClearsAnchor(t *testing.T) {
	ids := []string{"a", "b"}
	s := Empty().ToggleOne(ids, "a", true)
	_, ok := s.LastToggled()
	require.True(t, ok)

	s = s.ToggleAll(ids, false)
	_, ok = s.LastToggled()
	assert.False(t, ok)
	assert.True(t, s.AllUnselected())
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.Touched("a"))
}

func TestToggleOne_DerivedFlags(t *testing.T) {
	ids := []string{"a", "b"}

	s := Empty().ToggleOne(ids, "a", true)
	assert.False(t, s.AllSelected())
	assert.False(t, s.AllUnselected())

	s = s.ToggleOne(ids, "b", true)
	assert.True(t, s.AllSelected())

	s = s.ToggleOne(ids, "a", false).ToggleOne(ids, "b", false)
	assert.True(t, s.AllUnselected())
	anchor, ok := s.LastToggled()
	assert.True(t, ok)
	assert.Equal(t, "b", anchor)
}

func TestToggleOne_UnknownIDRecorded(t *testing.T) {
	s := Empty().ToggleOne([]string{"a"}, "ghost", true)
	assert.True(t, s.IsSelected("ghost"))
	assert.True(t, s.AllUnselected(), "unknown ids do not count against the current set")
}

func TestState_Immutable(t *testing.T) {
	ids := []string{"a", "b"}
	before := Empty().ToggleOne(ids, "a", true)
	after := before.ToggleOne(ids, "b", true)

	assert.False(t, before.IsSelected("b"))
	assert.True(t, after.IsSelected("b"))
	assert.Equal(t, 1, before.Count())
}

func TestApplyToggle_RangeSymmetry(t *testing.T) {
	list := items("a", "b", "c", "d", "e")
	ids := queue.IDs(list)

	forward := ApplyToggle(list, Empty().ToggleOne(ids, "b", true), "d", true, true)
	backward := ApplyToggle(list, Empty().ToggleOne(ids, "d", true), "b", true, true)

	assert.Equal(t, []string{"b", "c", "d"}, forward.SelectedIDs())
	assert.Equal(t, []string{"b", "c", "d"}, backward.SelectedIDs())

	anchor, _ := forward.LastToggled()
	assert.Equal(t, "d", anchor)
	anchor, _ = backward.LastToggled()
	assert.Equal(t, "b", anchor)
}

func TestApplyToggle_RangeExtendsWithoutClearing(t *testing.T) {
	list := items("a", "b", "c", "d", "e")
	ids := queue.IDs(list)

	s := Empty().ToggleOne(ids, "e", true).ToggleOne(ids, "a", true)
	s = ApplyToggle(list, s, "b", true, true)

	assert.Equal(t, []string{"a", "b", "e"}, s.SelectedIDs())
}

func TestApplyToggle_RangeDeselect(t *testing.T) {
	list := items("a", "b", "c", "d")
	ids := queue.IDs(list)

	s := Empty().ToggleAll(ids, true).ToggleOne(ids, "a", false)
	s = ApplyToggle(list, s, "c", false, true)

	assert.Equal(t, []string{"d"}, s.SelectedIDs())
	assert.False(t, s.AllSelected())
}

func TestApplyToggle_SingleToggleFallbacks(t *testing.T) {
	list := items("a", "b", "c", "d")
	ids := queue.IDs(list)

	tests := []struct {
		name      string
		state     State
		rangeHeld bool
	}{
		{"no modifier", Empty().ToggleOne(ids, "a", true), false},
		{"no anchor", Empty(), true},
		{"anchor cleared by select all", Empty().ToggleOne(ids, "a", true).ToggleAll(ids, false), true},
		{"anchor no longer listed", Empty().ToggleOne([]string{"gone"}, "gone", true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ApplyToggle(list, tt.state, "c", true, tt.rangeHeld)
			assert.True(t, s.IsSelected("c"))
			assert.False(t, s.IsSelected("b"))
			anchor, ok := s.LastToggled()
			assert.True(t, ok)
			assert.Equal(t, "c", anchor)
		})
	}
}

func TestApplyToggle_TargetEqualsAnchor(t *testing.T) {
	list := items("a", "b", "c")
	ids := queue.IDs(list)

	s := Empty().ToggleOne(ids, "b", true)
	s = ApplyToggle(list, s, "b", false, true)

	assert.Equal(t, 0, s.Count())
	assert.True(t, s.AllUnselected())
}

func TestShouldReset(t *testing.T) {
	tests := []struct {
		name string
		prev []queue.Item
		next []queue.Item
		want bool
	}{
		{
			name: "status only change",
			prev: []queue.Item{{ID: "1", Status: queue.StatusDelay}},
			next: []queue.Item{{ID: "1", Status: queue.StatusDownloading}},
			want: false,
		},
		{"removal", items("1", "2"), items("1"), true},
		{"addition", items("1"), items("1", "2"), true},
		{"replacement", items("1", "2"), items("1", "3"), true},
		{"reorder", items("1", "2", "3"), items("3", "1", "2"), false},
		{"both empty", nil, nil, false},
		{"first load", nil, items("1"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldReset(tt.prev, tt.next))
		})
	}
}

func TestReconcile_StatusChangeKeepsSelection(t *testing.T) {
	prev := []queue.Item{{ID: "1", Status: queue.StatusDelay}}
	next := []queue.Item{{ID: "1", Status: queue.StatusDownloading}}

	s := Empty().ToggleOne(queue.IDs(prev), "1", true)
	s = Reconcile(prev, next, s)

	assert.True(t, s.IsSelected("1"))
	assert.True(t, s.AllSelected())
}

func TestReconcile_DropsUnknownIDs(t *testing.T) {
	list := items("a", "b")
	ids := queue.IDs(list)

	s := Empty().ToggleOne(ids, "b", true).ToggleOne(ids, "z", true)
	require.Equal(t, 2, s.Count())

	s = Reconcile(list, list, s)
	assert.Equal(t, []string{"b"}, s.SelectedIDs())
	assert.Equal(t, 1, s.Count())
	assert.False(t, s.Touched("z"))
	assert.False(t, s.AllUnselected())
	_, ok := s.LastToggled()
	assert.False(t, ok, "anchor on a dropped id is cleared")

	ghost := Reconcile(list, list, Empty().ToggleOne(ids, "z", true))
	assert.Zero(t, ghost.Count())
	assert.Empty(t, ghost.SelectedIDs())
	assert.True(t, ghost.AllUnselected())
}

func TestReconcile_MembershipChangeResets(t *testing.T) {
	prev := items("1", "2")
	next := items("1")

	s := Empty().ToggleAll(queue.IDs(prev), true)
	s = Reconcile(prev, next, s)

	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.SelectedIDs())
	_, ok := s.LastToggled()
	assert.False(t, ok)
}

func TestHasSelectedInStatus(t *testing.T) {
	list := []queue.Item{
		{ID: "1", Status: queue.StatusDelay},
		{ID: "2", Status: queue.StatusDownloading},
		{ID: "3", Status: queue.StatusCompleted},
	}
	ids := queue.IDs(list)

	s := Empty().ToggleOne(ids, "3", true)
	assert.False(t, HasSelectedInStatus(list, s, queue.StatusDelay))
	assert.True(t, HasSelectedInStatus(list, s, queue.StatusCompleted))

	s = s.ToggleOne(ids, "1", true)
	assert.True(t, HasSelectedInStatus(list, s, queue.StatusDelay))

	assert.False(t, HasSelectedInStatus(nil, s, queue.StatusDelay))
}
