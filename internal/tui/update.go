package tui

import (
	"fmt"
	"strings"

	"github.com/droneq/droneq/internal/bulk"
	"github.com/droneq/droneq/internal/events"
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/selection"
	"github.com/droneq/droneq/internal/utils"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// tableRowOffset is the screen line of the first table row: title, toolbar
// and column header come before it.
const tableRowOffset = 3

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshTickMsg:
		var cmd tea.Cmd
		m, cmd = m.refresh()
		return m, tea.Batch(cmd, tickCmd(m.settings.RefreshInterval))

	case ItemsLoadedMsg:
		return m.applyLoaded(msg)

	case ActionDoneMsg:
		m = m.clearActivity(msg.Action)
		switch msg.Action {
		case ActionGrab:
			m.setStatus(fmt.Sprintf("Grabbed %d %s", msg.Count, plural(msg.Count, "release")), false)
		case ActionRemove:
			m.setStatus(fmt.Sprintf("Removed %d %s", msg.Count, plural(msg.Count, "item")), false)
		}
		return m.refresh()

	case ActionFailedMsg:
		m = m.clearActivity(msg.Action)
		utils.Debug("tui: %s failed: %v", msg.Action, msg.Err)
		m.setStatus(fmt.Sprintf("Failed to %s: %v", msg.Action, msg.Err), true)
		return m, nil

	case events.ItemAddedMsg, events.ItemsGrabbedMsg, events.ItemsRemovedMsg, events.StatusChangedMsg:
		return m.refresh()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.coord.Phase() == bulk.ConfirmPending {
			return m.handleModalKey(msg)
		}
		return m.handleQueueKey(msg)
	}

	return m, nil
}

// refresh fetches the current page. While a fetch is in flight it only marks
// the result stale, and applyLoaded fetches again once it lands.
func (m Model) refresh() (Model, tea.Cmd) {
	if m.source.IsFetching {
		m.refetch = true
		return m, nil
	}
	m.source.IsFetching = true
	m.refetch = false
	return m, fetchCmd(m.service, m.page, m.settings.PageSize)
}

func (m Model) applyLoaded(msg ItemsLoadedMsg) (tea.Model, tea.Cmd) {
	stalePage := msg.Requested != 0 && msg.Requested != m.page
	if m.refetch || stalePage {
		// The result predates an action or a page change; drop it.
		m.source.IsFetching = false
		return m.refresh()
	}

	if msg.Err != nil {
		utils.Debug("tui: queue fetch failed: %v", msg.Err)
		m.source = m.source.WithError(msg.Err)
		return m, nil
	}

	prev := m.source.Items
	m.source = m.source.WithPage(msg.Page)
	m.sel = selection.Reconcile(prev, m.source.Items, m.sel)
	m.coord.Sync(m.sel)
	m.clampCursor()

	// Removing the tail can leave the current page past the end.
	if pages := msg.Page.TotalPages(); pages > 0 && m.page > pages {
		m.page = pages
		return m.refresh()
	}
	return m, nil
}

func (m Model) clearActivity(a Action) Model {
	switch a {
	case ActionGrab:
		m.activity.IsGrabbing = false
	case ActionRemove:
		m.activity.IsRemoving = false
	}
	return m
}

// dispatch turns handler calls recorded by the coordinator into commands.
func (m Model) dispatch() (Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, a := range m.actions.drain() {
		switch a.action {
		case ActionGrab:
			m.activity.IsGrabbing = true
		case ActionRemove:
			m.activity.IsRemoving = true
		}
		cmds = append(cmds, actionCmd(m.service, a))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Remove.Extra):
		m.blacklist = !m.blacklist
		return m, nil
	case key.Matches(msg, m.keys.Remove.Confirm):
		m.coord.Confirm(m.sel, m.blacklist)
		m.blacklist = false
		return m.dispatch()
	case key.Matches(msg, m.keys.Remove.Cancel):
		m.coord.Cancel()
		m.blacklist = false
		return m, nil
	}
	return m, nil
}

func (m Model) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.Queue
	items := m.source.Items

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, keys.RangeUp):
		m.rangeMove(-1)

	case key.Matches(msg, keys.RangeDown):
		m.rangeMove(1)

	case key.Matches(msg, keys.Toggle):
		m.toggleRow(m.cursor, false)

	case key.Matches(msg, keys.ToggleAll):
		if m.source.Ready() {
			m.sel = m.sel.ToggleAll(queue.IDs(items), !m.sel.AllSelected())
		}

	case key.Matches(msg, keys.Grab):
		if !m.coord.RequestGrab(items, m.sel) {
			m.setStatus(fmt.Sprintf("Select a %s item to grab", m.coord.PendingStatus()), false)
			return m, nil
		}
		return m.dispatch()

	case key.Matches(msg, keys.Remove):
		if m.coord.RequestRemove(m.sel) {
			m.blacklist = false
		}
		return m, nil

	case key.Matches(msg, keys.Copy):
		m.copySelected()

	case key.Matches(msg, keys.Refresh):
		return m.refresh()

	case key.Matches(msg, keys.NextPage):
		if m.page < m.totalPages() {
			m.page++
			m.cursor = 0
			return m.refresh()
		}

	case key.Matches(msg, keys.PrevPage):
		if m.page > 1 {
			m.page--
			m.cursor = 0
			return m.refresh()
		}

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.coord.Sync(m.sel)
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.coord.Phase() == bulk.ConfirmPending || !m.source.Ready() {
		return m, nil
	}
	row := msg.Y - tableRowOffset
	if row < 0 || row >= len(m.source.Items) {
		return m, nil
	}
	m.cursor = row
	m.toggleRow(row, msg.Shift)
	m.coord.Sync(m.sel)
	return m, nil
}

// toggleRow flips the row's selection. With rangeHeld the rows between the
// anchor and this one take the same value.
func (m *Model) toggleRow(row int, rangeHeld bool) {
	items := m.source.Items
	if !m.source.Ready() || row < 0 || row >= len(items) {
		return
	}
	id := items[row].ID
	m.sel = selection.ApplyToggle(items, m.sel, id, !m.sel.IsSelected(id), rangeHeld)
}

// rangeMove moves the cursor and extends the selection from the anchor to
// the new row. Without an anchor the starting row becomes one.
func (m *Model) rangeMove(delta int) {
	items := m.source.Items
	if !m.source.Ready() || len(items) == 0 {
		return
	}
	anchor, ok := m.sel.LastToggled()
	if !ok || queue.IndexOf(items, anchor) < 0 {
		m.sel = selection.ApplyToggle(items, m.sel, items[m.cursor].ID, true, false)
		anchor = items[m.cursor].ID
	}
	m.moveCursor(delta)
	m.sel = selection.ApplyToggle(items, m.sel, items[m.cursor].ID, m.sel.IsSelected(anchor), true)
}

func (m Model) totalPages() int {
	p := queue.Page{TotalRecords: m.source.TotalRecords, PageSize: m.settings.PageSize}
	return p.TotalPages()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.source.Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) copySelected() {
	ids := m.sel.SelectedIDs()
	if len(ids) == 0 {
		m.setStatus("Nothing selected", false)
		return
	}
	if err := m.copyText(strings.Join(ids, "\n")); err != nil {
		utils.Debug("tui: clipboard write failed: %v", err)
		m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %d %s", len(ids), plural(len(ids), "id")), false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
