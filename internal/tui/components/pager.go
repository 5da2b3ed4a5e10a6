package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// RenderPager renders "Page x of y · n records". Pages are 1-based; a
// zero page count renders as a single page.
func RenderPager(page, totalPages, totalRecords int, style lipgloss.Style) string {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	noun := "records"
	if totalRecords == 1 {
		noun = "record"
	}
	return style.Render(fmt.Sprintf("Page %d of %d · %d %s", page, totalPages, totalRecords, noun))
}
