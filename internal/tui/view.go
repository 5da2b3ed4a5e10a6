package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/droneq/droneq/internal/bulk"
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/tui/components"
	"github.com/droneq/droneq/internal/utils"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	colCheck    = 3
	colStatus   = 12
	colProtocol = 8
	colSize     = 10
	colProgress = 10
	colTimeLeft = 9
)

// View renders the queue view
func (m Model) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	if modal := m.coord.Modal(); modal.IsOpen {
		return components.NewRemoveModal(modal.SelectedCount, m.blacklist, m.keys.Remove, m.help).
			Centered(width, height)
	}

	tb := m.Toolbar()

	var lines []string
	lines = append(lines, m.renderTitle(tb))
	lines = append(lines, m.renderToolbar(tb))

	switch m.source.Display() {
	case queue.DisplayLoading:
		lines = append(lines, MessageStyle.Render(m.spinner.View()+" Loading..."))
	case queue.DisplayFailed:
		lines = append(lines, ErrorStyle.Render("Failed to load Queue"))
	case queue.DisplayEmpty:
		lines = append(lines, MessageStyle.Render("Queue is empty"))
	case queue.DisplayTable:
		lines = append(lines, m.renderTable(width)...)
		lines = append(lines, "")
		lines = append(lines, components.RenderPager(m.source.Page, m.totalPages(), m.source.TotalRecords, DimStyle))
	}

	if m.status != "" {
		style := MessageStyle
		if m.statusErr {
			style = ErrorStyle
		}
		lines = append(lines, style.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys.Queue))

	return strings.Join(lines, "\n")
}

func (m Model) renderTitle(tb bulk.Toolbar) string {
	title := LogoStyle.Render("droneq") + " " + HeaderStyle.Render("Queue")
	if tb.Refreshing {
		title += " " + m.spinner.View()
	}
	return title
}

func (m Model) renderToolbar(tb bulk.Toolbar) string {
	button := func(label string, disabled, spinning bool) string {
		if spinning {
			label = m.spinner.View() + " " + label
		}
		if disabled {
			return DisabledButtonStyle.Render(label)
		}
		return ButtonStyle.Render(label)
	}

	parts := []string{
		button("[r] Refresh", tb.Refreshing, false),
		button("[g] Grab Selected", tb.GrabDisabled, tb.GrabSpinning),
		button("[d] Remove Selected", tb.RemoveDisabled, tb.RemoveSpinning),
	}
	if tb.SelectedCount > 0 {
		parts = append(parts, DimStyle.Render(fmt.Sprintf("%d selected", tb.SelectedCount)))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderTable(width int) []string {
	titleWidth := width - (colCheck + colStatus + colProtocol + colSize + colProgress + colTimeLeft + 6)
	if titleWidth < 10 {
		titleWidth = 10
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %*s %-*s %*s",
		colCheck, checkbox(m.sel.AllSelected() && len(m.source.Items) > 0),
		colStatus, "Status",
		titleWidth, "Title",
		colProtocol, "Protocol",
		colSize, "Size",
		colProgress, "Progress",
		colTimeLeft, "Left",
	)
	lines := []string{HeaderStyle.Render(header)}

	for i, item := range m.source.Items {
		selected := m.sel.IsSelected(item.ID)
		row := fmt.Sprintf("%-*s %s %-*s %-*s %*s %s %*s",
			colCheck, checkbox(selected),
			StatusStyle(item.Status).Render(fmt.Sprintf("%-*s", colStatus, item.Status)),
			titleWidth, xansi.Truncate(item.Title, titleWidth, "…"),
			colProtocol, item.Protocol,
			colSize, utils.ConvertBytesToHumanReadable(item.Size),
			m.progress.ViewAs(item.Progress()),
			colTimeLeft, formatTimeLeft(item.TimeLeft),
		)

		style := RowStyle
		switch {
		case i == m.cursor:
			style = CursorRowStyle
		case selected:
			style = SelectedRowStyle
		}
		lines = append(lines, style.Render(row))
	}
	return lines
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func formatTimeLeft(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}
