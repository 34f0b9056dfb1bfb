package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postbox/internal/post"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("base url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	u, err = parseBaseURL("example.com")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
}

func TestClient_FetchesEndpoints(t *testing.T) {
	t.Parallel()

	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/posts":
			_ = json.NewEncoder(w).Encode([]post.Post{
				{ID: 2, UserID: 1, Title: "second", Body: "b"},
				{ID: 1, UserID: 1, Title: "first", Body: "a"},
			})
		case "/posts/7":
			_ = json.NewEncoder(w).Encode(post.Post{ID: 7, UserID: 3, Title: "seven", Body: "c"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	posts, err := c.FetchPosts(ctx)
	if err != nil {
		t.Fatalf("FetchPosts returned error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != 2 {
		t.Fatalf("FetchPosts payload = %#v, want 2 posts", posts)
	}
	if posts[0].Read {
		t.Fatalf("Read = true from wire payload, want false (local-only field)")
	}

	p, err := c.FetchPost(ctx, 7)
	if err != nil {
		t.Fatalf("FetchPost returned error: %v", err)
	}
	if p.ID != 7 || p.Title != "seven" {
		t.Fatalf("FetchPost payload = %#v, want id=7", p)
	}

	if gotUserAgent != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUserAgent, defaultUserAgent)
	}
}

func TestClient_StatusErrorIsTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	if _, err := c.FetchPosts(ctx); err == nil {
		t.Fatalf("FetchPosts succeeded on 500, want error")
	}
	if _, err := c.FetchPost(ctx, 1); err == nil {
		t.Fatalf("FetchPost succeeded on 500, want error")
	}
}
