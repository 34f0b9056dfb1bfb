// Package remote implements the HTTP client for the posts API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"postbox/internal/post"
)

// Fetcher defines the read operations the posts API offers. Implemented by
// *Client; fakes implement it in tests.
type Fetcher interface {
	FetchPosts(ctx context.Context) ([]post.Post, error)
	FetchPost(ctx context.Context, id int64) (post.Post, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the remote posts API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	// DefaultBaseURL is the posts API used when no base URL is configured.
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	defaultUserAgent = "postbox/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the given base URL. An empty value selects
// DefaultBaseURL.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchPosts retrieves every post the remote source knows about.
func (c *Client) FetchPosts(ctx context.Context) ([]post.Post, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []post.Post
	if err := c.do(ctx, "/posts", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchPost retrieves a single post by id.
func (c *Client) FetchPost(ctx context.Context, id int64) (post.Post, error) {
	if c == nil {
		return post.Post{}, fmt.Errorf("client is nil")
	}
	var payload post.Post
	if err := c.do(ctx, "/posts/"+strconv.FormatInt(id, 10), &payload); err != nil {
		return post.Post{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, path string, dest any) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
