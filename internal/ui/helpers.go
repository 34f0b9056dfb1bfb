package ui

import (
	"github.com/charmbracelet/lipgloss"

	"postbox/internal/list"
	"postbox/internal/post"
)

type postRow = post.Post

// visibleRows returns the rows the list pane shows for the given state,
// optionally filtered down to unread posts. Ordering is whatever the store
// emitted (id descending).
func visibleRows(s list.State, unreadOnly bool) []postRow {
	if s.Phase != list.PhaseSuccess {
		return nil
	}
	if !unreadOnly {
		return s.Posts
	}
	var rows []postRow
	for _, p := range s.Posts {
		if !p.Read {
			rows = append(rows, p)
		}
	}
	return rows
}

// countUnread reports how many posts in the snapshot are unread.
func countUnread(posts []post.Post) int {
	n := 0
	for _, p := range posts {
		if !p.Read {
			n++
		}
	}
	return n
}

// truncate shortens s to at most width cells, appending an ellipsis when
// something was cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return "…"
	}
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// windowStart picks the first visible index so the cursor stays in view.
func windowStart(cursor, total, height int) int {
	if height <= 0 || total <= height {
		return 0
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start > total-height {
		start = total - height
	}
	return start
}
