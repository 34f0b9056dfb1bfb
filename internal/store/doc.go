// Package store implements the durable local cache of posts on SQLite.
//
// # Overview
//
// The store owns a single table, post, and exposes CRUD plus two live
// subscriptions: ObserveAll (the full collection, id descending) and
// ObserveOne (a single row). Subscriptions follow the invalidation model:
// every committed mutation pokes a per-subscriber notify channel and the
// subscriber goroutine re-queries, pushing a complete fresh snapshot.
//
// # Ordering and conflation
//
// ObserveAll always emits the collection ordered by id descending; the UI
// relies on that ordering being stable. Subscriber channels have capacity
// one and are conflated: when the consumer lags, a newer snapshot displaces
// the pending one. Snapshots are full replacements, not deltas, so dropping
// intermediates loses nothing.
//
// # Upsert semantics
//
// UpsertMany uses INSERT OR REPLACE, which rewrites the whole row. Because
// the read column is not part of the insert, a replaced row falls back to
// the column default and a resync clears read markers on re-fetched posts.
// Rows are independent statements with no enclosing transaction; a failure
// partway through a batch leaves the earlier rows written.
//
// # Mutation semantics
//
// SetRead and DeleteMany accept ids that are no longer present and treat
// them as no-ops rather than errors. Mutations that touch zero rows do not
// notify subscribers.
//
// The schema is managed with embedded golang-migrate migrations applied at
// Open.
package store
