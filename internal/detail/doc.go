// Package detail implements the coordinator behind the post detail screen.
//
// A Coordinator is bound to one post id at creation and maps the cached row
// stream to Loading, Success or Failed. An id absent from the cache never
// emits, so the state simply stays Loading until the row appears; a post
// deleted while on screen stops emitting and the last state sticks until
// the UI navigates away.
//
// Watch and Release refcount observers. The underlying store subscription
// starts on the first Watch and, once the last observer releases, survives
// a short grace window before being cancelled, so a transient UI detach and
// reattach does not restart the query.
package detail
