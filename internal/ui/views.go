package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"postbox/internal/detail"
	"postbox/internal/list"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting postbox..."
	}
	st := m.theme.Styles()

	header := m.renderHeader(st)
	footer := m.renderFooter(st)

	var body string
	switch {
	case m.wide() && m.detailOpen:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderListPane(st, m.listWidth()),
			m.renderDetailPane(st, m.detailWidth()),
		)
	case m.detailOpen:
		body = m.renderDetailPane(st, m.width)
	default:
		body = m.renderListPane(st, m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) listWidth() int {
	if !m.wide() || !m.detailOpen {
		return m.width
	}
	w := m.width * 2 / 5
	if w < 36 {
		w = 36
	}
	return w
}

func (m Model) detailWidth() int {
	if !m.wide() {
		return m.width
	}
	return m.width - m.listWidth()
}

func (m Model) bodyHeight() int {
	h := m.height - 2 // header and footer lines
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) renderHeader(st Styles) string {
	left := st.Title.Render("postbox")

	var right string
	switch m.listState.Phase {
	case list.PhaseLoading:
		right = st.Muted.Render("syncing…")
	case list.PhaseFailed:
		right = st.Danger.Render("sync failed")
	case list.PhaseSuccess:
		unread := countUnread(m.listState.Posts)
		parts := []string{fmt.Sprintf("%d posts", len(m.listState.Posts))}
		if unread > 0 {
			parts = append(parts, fmt.Sprintf("%d unread", unread))
		}
		if selected := len(m.list.Selected()); selected > 0 {
			parts = append(parts, fmt.Sprintf("%d selected", selected))
		}
		if m.unreadOnly {
			parts = append(parts, "unread only")
		}
		right = st.Muted.Render(strings.Join(parts, " · "))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderFooter(st Styles) string {
	if m.status != "" {
		return st.Danger.Render(truncate(m.status, m.width))
	}
	if m.showHelp {
		var parts []string
		for _, b := range m.keys.ShortHelp() {
			parts = append(parts, b.Help().Key+" "+b.Help().Desc)
		}
		parts = append(parts, "u Unread only", "a Clear selection", "T Cycle theme")
		return st.Help.Render(truncate(strings.Join(parts, "  "), m.width))
	}
	return st.Help.Render(truncate("enter Open  Space Select  r Refresh  m Mark read  x Delete  h Help  q Quit", m.width))
}

func (m Model) renderListPane(st Styles, width int) string {
	innerWidth := width - 2
	innerHeight := m.bodyHeight() - 2
	pane := st.Pane.Width(innerWidth).Height(innerHeight)

	switch m.listState.Phase {
	case list.PhaseLoading:
		return pane.Render(st.Muted.Render("Loading posts…"))
	case list.PhaseFailed:
		msg := "Could not load posts"
		if m.listState.Err != nil {
			msg = truncate(m.listState.Err.Error(), innerWidth)
		}
		return pane.Render(st.Danger.Render(msg) + "\n\n" + st.Muted.Render("Press r to retry"))
	}

	rows := m.visible()
	if len(rows) == 0 {
		empty := "No posts"
		if m.unreadOnly {
			empty = "No unread posts"
		}
		return pane.Render(st.Muted.Render(empty))
	}

	start := windowStart(m.cursor, len(rows), innerHeight)
	end := start + innerHeight
	if end > len(rows) {
		end = len(rows)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderRow(st, rows[i], i == m.cursor, innerWidth))
	}
	return pane.Render(b.String())
}

func (m Model) renderRow(st Styles, p postRow, cursor bool, width int) string {
	marker := "  "
	if m.list.IsSelected(p.ID) {
		marker = st.Accent.Render("✓ ")
	}
	bullet := "  "
	if !p.Read {
		bullet = st.Accent.Render("● ")
	}

	title := truncate(p.Title, width-lipgloss.Width(marker)-lipgloss.Width(bullet)-1)
	line := marker + bullet
	switch {
	case cursor:
		line += st.Cursor.Render(" " + title + " ")
	case p.Read:
		line += st.Muted.Render(title)
	default:
		line += st.Unread.Render(title)
	}
	return line
}

func (m Model) renderDetailPane(st Styles, width int) string {
	innerWidth := width - 2
	innerHeight := m.bodyHeight() - 2
	pane := st.Pane.Width(innerWidth).Height(innerHeight)

	switch m.detState.Phase {
	case detail.PhaseFailed:
		msg := "Could not load post"
		if m.detState.Err != nil {
			msg = truncate(m.detState.Err.Error(), innerWidth)
		}
		return pane.Render(st.Danger.Render(msg))
	case detail.PhaseLoading:
		return pane.Render(st.Muted.Render("Loading post…"))
	}

	return pane.Render(m.viewport.View())
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.detailWidth() - 2
	m.viewport.Height = m.bodyHeight() - 2
	if m.detState.Phase != detail.PhaseSuccess {
		return
	}
	m.viewport.SetContent(detailContent(m.theme.Styles(), m.detState, m.viewport.Width))
}

func detailContent(st Styles, s detail.State, width int) string {
	p := s.Post
	title := st.Title.Width(width).Render(p.Title)
	meta := st.Muted.Render(fmt.Sprintf("#%d · user %d", p.ID, p.UserID))
	body := st.Text.Width(width).Render(p.Body)
	return title + "\n" + meta + "\n\n" + body
}
