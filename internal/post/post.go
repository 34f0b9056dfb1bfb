// Package post defines the domain model shared by the store, the remote
// client, and the coordinators.
package post

// Post is a single short text entry. IDs are assigned by the remote source;
// Read is a local-only annotation and never crosses the wire.
type Post struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Read   bool   `json:"-"`
}
