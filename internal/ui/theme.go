package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the UI.
type Theme struct {
	Name string

	Text      string
	Muted     string
	Accent    string
	Success   string
	Danger    string
	Border    string
	CursorBg  string
	CursorTxt string
}

var themes = []Theme{
	{
		Name:      "Slate",
		Text:      "#c8d3f5",
		Muted:     "#636da6",
		Accent:    "#82aaff",
		Success:   "#c3e88d",
		Danger:    "#ff757f",
		Border:    "#2f334d",
		CursorBg:  "#2d3f76",
		CursorTxt: "#c8d3f5",
	},
	{
		Name:      "Paper",
		Text:      "#3760bf",
		Muted:     "#848cb5",
		Accent:    "#2e7de9",
		Success:   "#587539",
		Danger:    "#f52a65",
		Border:    "#a8aecb",
		CursorBg:  "#b7c1e3",
		CursorTxt: "#3760bf",
	},
}

// GetTheme returns the theme with the given name, defaulting to the first.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return themes[0]
}

// NextTheme cycles to the theme after the named one.
func NextTheme(name string) Theme {
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// Styles bundles the Lipgloss styles derived from a theme.
type Styles struct {
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Danger  lipgloss.Style
	Unread  lipgloss.Style
	Cursor  lipgloss.Style
	Title   lipgloss.Style
	Pane    lipgloss.Style
	Help    lipgloss.Style
}

// Styles returns the Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		Unread:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)).Bold(true),
		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color(t.CursorBg)).
			Foreground(lipgloss.Color(t.CursorTxt)),
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)),
		Help: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
	}
}
