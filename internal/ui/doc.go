// Package ui renders the postbox terminal interface with Bubble Tea.
//
// The UI is a thin consumer of the coordinators: it receives their
// conflated state streams as messages, renders the three-variant list and
// detail states exhaustively, and translates key presses into coordinator
// intents (refresh, selection, mark-read, delete, open/close detail).
//
// Layout adapts to the terminal: wide terminals show the list and detail
// panes side by side, narrow ones show a single pane with enter/esc
// navigation. Opening a post marks it read, matching the navigation side
// effect of the list screen.
//
// Theme and the unread-only filter persist through the prefs package.
package ui
