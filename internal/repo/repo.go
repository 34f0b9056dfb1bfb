// Package repo provides the single data façade combining the local store
// with the remote source.
package repo

import (
	"context"
	"fmt"

	"postbox/internal/remote"
	"postbox/internal/store"
)

// PostRepository is the contract the coordinators program against.
// Implemented by *Repository; fakes implement it in coordinator tests.
type PostRepository interface {
	ObservePosts(ctx context.Context) <-chan store.Snapshot
	ObservePost(ctx context.Context, id int64) <-chan store.RowSnapshot
	RefreshFromRemote(ctx context.Context) error
	MarkRead(ctx context.Context, ids ...int64) error
	Delete(ctx context.Context, ids ...int64) error
}

// Ensure Repository implements PostRepository at compile time.
var _ PostRepository = (*Repository)(nil)

// Repository unifies the record store and the remote source. Reads always
// come from the store; RefreshFromRemote is the only path that touches the
// network.
type Repository struct {
	fetcher remote.Fetcher
	store   *store.Store
}

// New builds a Repository over the given fetcher and store.
func New(fetcher remote.Fetcher, st *store.Store) *Repository {
	return &Repository{fetcher: fetcher, store: st}
}

// ObservePosts streams the full cached collection, id descending.
func (r *Repository) ObservePosts(ctx context.Context) <-chan store.Snapshot {
	return r.store.ObserveAll(ctx)
}

// ObservePost streams a single cached post by id.
func (r *Repository) ObservePost(ctx context.Context, id int64) <-chan store.RowSnapshot {
	return r.store.ObserveOne(ctx, id)
}

// RefreshFromRemote fetches every post from the remote source and writes the
// batch into the store. The fetch is all-or-nothing; the store write is not:
// a failure partway through the upsert leaves the earlier rows in place.
func (r *Repository) RefreshFromRemote(ctx context.Context) error {
	posts, err := r.fetcher.FetchPosts(ctx)
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}
	if _, err := r.store.UpsertMany(ctx, posts); err != nil {
		return fmt.Errorf("cache posts: %w", err)
	}
	return nil
}

// MarkRead marks the given posts read. Absent ids are silently ignored.
func (r *Repository) MarkRead(ctx context.Context, ids ...int64) error {
	return r.store.SetRead(ctx, ids...)
}

// Delete removes the given posts from the cache. Absent ids are silently
// ignored; the remote source is read-only and unaffected.
func (r *Repository) Delete(ctx context.Context, ids ...int64) error {
	return r.store.DeleteMany(ctx, ids...)
}

// Count reports the number of cached posts.
func (r *Repository) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}
