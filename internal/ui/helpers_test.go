package ui

import (
	"testing"

	"postbox/internal/list"
	"postbox/internal/post"
)

func TestVisibleRows_FiltersUnread(t *testing.T) {
	state := list.State{
		Phase: list.PhaseSuccess,
		Posts: []post.Post{
			{ID: 3, Read: true},
			{ID: 2},
			{ID: 1, Read: true},
		},
	}

	all := visibleRows(state, false)
	if len(all) != 3 {
		t.Fatalf("visibleRows(all) = %d rows, want 3", len(all))
	}

	unread := visibleRows(state, true)
	if len(unread) != 1 || unread[0].ID != 2 {
		t.Fatalf("visibleRows(unread) = %#v, want only id=2", unread)
	}

	if rows := visibleRows(list.State{Phase: list.PhaseLoading}, false); rows != nil {
		t.Fatalf("visibleRows(loading) = %#v, want nil", rows)
	}
}

func TestCountUnread(t *testing.T) {
	posts := []post.Post{{ID: 1}, {ID: 2, Read: true}, {ID: 3}}
	if got := countUnread(posts); got != 2 {
		t.Fatalf("countUnread = %d, want 2", got)
	}
	if got := countUnread(nil); got != 0 {
		t.Fatalf("countUnread(nil) = %d, want 0", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 7, "this i…"},
		{"x", 0, ""},
		{"wide", 1, "…"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestWindowStart_KeepsCursorInView(t *testing.T) {
	cases := []struct {
		cursor, total, height int
		want                  int
	}{
		{0, 5, 10, 0},   // everything fits
		{0, 100, 10, 0}, // top of a long list
		{50, 100, 10, 45},
		{99, 100, 10, 90}, // bottom clamps
	}
	for _, tc := range cases {
		if got := windowStart(tc.cursor, tc.total, tc.height); got != tc.want {
			t.Fatalf("windowStart(%d, %d, %d) = %d, want %d",
				tc.cursor, tc.total, tc.height, got, tc.want)
		}
	}
}
