// Package list implements the coordinator behind the post list screen.
//
// # State machine
//
// The coordinator publishes one of three states: Loading, Success (with the
// cached collection, id descending) or Failed. Transitions are driven by
// three triggers: coordinator creation, explicit Refresh calls, and every
// emission from the cached collection.
//
// On each emission the loop decides whether a remote resync is warranted:
//
//   - empty cache on the initial load (and no sync attempted yet), or an
//     empty cache under a forced refresh: resync, exactly once. Success
//     republishes the stale snapshot and waits for the store to emit the
//     fresh rows; failure publishes Failed.
//   - non-empty cache under a forced refresh: resync, but a failure falls
//     back to Success with the stale rows. A transient network error during
//     a user refresh must not blank data that is already on screen.
//   - otherwise: publish Success as-is. A non-empty snapshot also marks the
//     sync flag so later emissions never refetch on their own.
//
// The two flags together prevent both fetch storms (refetching on every
// emission once data exists) and a permanent Loading screen when the first
// fetch fails against an empty cache.
//
// # Concurrency
//
// All load/sync state is confined to a single event loop goroutine; store
// emissions and refresh requests are processed strictly in arrival order
// and never interleaved. Published state is read through a mutex-guarded
// snapshot plus a conflated update channel for the UI. The selection set is
// guarded by the same mutex but is otherwise independent of load state.
package list
