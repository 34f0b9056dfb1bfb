// Package ui provides the Bubble Tea terminal interface for postbox.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"postbox/internal/detail"
	"postbox/internal/list"
	"postbox/internal/prefs"
)

// wideBreakpoint is the terminal width at which the list and detail panes
// render side by side instead of replacing each other.
const wideBreakpoint = 100

// Options configures the UI.
type Options struct {
	Context   context.Context
	List      *list.Coordinator
	Details   func(id int64) *detail.Coordinator
	Prefs     prefs.Prefs
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	list      *list.Coordinator
	details   func(id int64) *detail.Coordinator
	prefsPath string
	userPrefs prefs.Prefs

	keys  keyMap
	theme Theme

	width  int
	height int
	ready  bool

	listState  list.State
	cursor     int
	unreadOnly bool
	showHelp   bool
	status     string

	det        *detail.Coordinator
	detState   detail.State
	detailOpen bool
	viewport   viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	return Model{
		ctx:        ctx,
		list:       opts.List,
		details:    opts.Details,
		prefsPath:  prefsPath,
		userPrefs:  opts.Prefs,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(opts.Prefs.Theme),
		unreadOnly: opts.Prefs.UnreadOnly,
		listState:  opts.List.State(),
	}
}

// Run starts the UI and blocks until the user exits or ctx is cancelled.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(opts.Context))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForListState(m.list)
}

type listStateMsg list.State

type detailStateMsg struct {
	from  *detail.Coordinator
	state detail.State
}

type opDoneMsg struct{ err error }

func waitForListState(c *list.Coordinator) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-c.Updates()
		if !ok {
			return nil
		}
		return listStateMsg(s)
	}
}

func waitForDetailState(d *detail.Coordinator) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-d.Updates()
		if !ok {
			return nil
		}
		return detailStateMsg{from: d, state: s}
	}
}

func opCmd(ctx context.Context, f func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return opDoneMsg{err: f(opCtx)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.viewport = viewport.New(m.detailWidth(), m.bodyHeight())
		m.refreshViewport()
		return m, nil

	case listStateMsg:
		m.listState = list.State(msg)
		m.clampCursor()
		return m, waitForListState(m.list)

	case detailStateMsg:
		if msg.from != m.det {
			// Stale update from a coordinator that was already released.
			return m, nil
		}
		m.detState = msg.state
		m.refreshViewport()
		return m, waitForDetailState(m.det)

	case opDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.closeDetail()
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, k.CycleTheme):
		m.theme = NextTheme(m.theme.Name)
		m.userPrefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, k.Back):
		m.closeDetail()
		return m, nil

	case key.Matches(msg, k.Up):
		if m.detailOpen && !m.wide() {
			m.viewport.ScrollUp(1)
			return m, nil
		}
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, k.Down):
		if m.detailOpen && !m.wide() {
			m.viewport.ScrollDown(1)
			return m, nil
		}
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, k.Top):
		m.cursor = 0
		return m, nil

	case key.Matches(msg, k.Bottom):
		m.cursor = max(0, len(m.visible())-1)
		return m, nil

	case key.Matches(msg, k.Open):
		next, cmd := m.openDetail()
		return next, cmd

	case key.Matches(msg, k.ToggleSelect):
		if p, ok := m.cursorPost(); ok {
			m.list.Toggle(p.ID)
		}
		return m, nil

	case key.Matches(msg, k.ClearSelection):
		m.list.ClearSelection()
		return m, nil

	case key.Matches(msg, k.Refresh):
		m.list.Refresh(true)
		return m, nil

	case key.Matches(msg, k.MarkRead):
		return m, opCmd(m.ctx, m.list.MarkSelectedRead)

	case key.Matches(msg, k.Delete):
		if m.detailOpen && m.det != nil {
			m.det.Delete()
			m.closeDetail()
			return m, nil
		}
		return m, opCmd(m.ctx, m.list.DeleteSelected)

	case key.Matches(msg, k.UnreadOnly):
		m.unreadOnly = !m.unreadOnly
		m.userPrefs.UnreadOnly = m.unreadOnly
		m.savePrefs()
		m.clampCursor()
		return m, nil
	}
	return m, nil
}

func (m Model) openDetail() (Model, tea.Cmd) {
	p, ok := m.cursorPost()
	if !ok {
		return m, nil
	}
	m.closeDetail()
	d := m.details(p.ID)
	d.Watch()
	// Opening a post marks it read, mirroring the navigation side effect.
	d.MarkRead()
	m.det = d
	m.detState = d.State()
	m.detailOpen = true
	m.refreshViewport()
	return m, waitForDetailState(d)
}

func (m *Model) closeDetail() {
	if m.det != nil {
		m.det.Release()
	}
	m.det = nil
	m.detailOpen = false
	m.detState = detail.State{}
}

func (m *Model) savePrefs() {
	// Preferences are best-effort; a failed save never interrupts the UI.
	_ = prefs.Save(m.prefsPath, m.userPrefs)
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m Model) visible() []postRow {
	return visibleRows(m.listState, m.unreadOnly)
}

func (m Model) cursorPost() (postRow, bool) {
	rows := m.visible()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return postRow{}, false
	}
	return rows[m.cursor], true
}

func (m Model) wide() bool {
	return m.width >= wideBreakpoint
}
