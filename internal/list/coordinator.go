package list

import (
	"context"
	"sort"
	"sync"

	"postbox/internal/post"
	"postbox/internal/repo"
	"postbox/internal/store"
)

// Coordinator owns the list screen state. A single event loop consumes
// store emissions and refresh requests in arrival order and decides when a
// remote resync is warranted; selection management is orthogonal to data
// loading and never gates it.
type Coordinator struct {
	repo repo.PostRepository

	mu       sync.RWMutex
	state    State
	selected map[int64]struct{}

	updates   chan State
	refreshCh chan bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Coordinator and starts its event loop. The loop subscribes
// to the cached collection immediately; the first state is always Loading.
func New(ctx context.Context, r repo.PostRepository) *Coordinator {
	loopCtx, cancel := context.WithCancel(ctx)
	c := &Coordinator{
		repo:      r,
		state:     loading(),
		selected:  make(map[int64]struct{}),
		updates:   make(chan State, 1),
		refreshCh: make(chan bool, 4),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	c.updates <- c.state
	go c.run(loopCtx)
	return c
}

// Close stops the event loop and its store subscription.
func (c *Coordinator) Close() {
	c.cancel()
	<-c.done
}

// State returns the latest published state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Updates exposes the conflated state stream for the UI. Receivers that lag
// see only the latest value.
func (c *Coordinator) Updates() <-chan State {
	return c.updates
}

// Refresh requests a reload. With force true a remote resync happens even
// when the cache already has data; a plain refresh only re-evaluates the
// cached snapshot. Requests are queued, never processed concurrently.
func (c *Coordinator) Refresh(force bool) {
	select {
	case c.refreshCh <- force:
	default:
		// queue is full; a pending refresh will run anyway
	}
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	emissions := c.repo.ObservePosts(ctx)

	// initialLoad holds until the first explicit refresh request; together
	// with syncAttempted it makes the empty-cache sync fire exactly once.
	initialLoad := true
	syncAttempted := false
	forcePending := false

	var lastPosts []post.Post
	haveSnapshot := false

	for {
		select {
		case <-ctx.Done():
			return

		case force := <-c.refreshCh:
			if force || initialLoad || c.State().Phase == PhaseLoading {
				c.publish(loading())
			}
			if force {
				forcePending = true
			}
			initialLoad = false
			// Re-evaluate against the last known snapshot right away; if
			// none has arrived yet the pending force applies to the first.
			if haveSnapshot {
				c.transition(ctx, lastPosts, initialLoad, &forcePending, &syncAttempted)
			}

		case snap, ok := <-emissions:
			if !ok {
				return
			}
			if snap.Err != nil {
				c.publish(failed(snap.Err))
				continue
			}
			lastPosts = snap.Posts
			haveSnapshot = true
			c.transition(ctx, snap.Posts, initialLoad, &forcePending, &syncAttempted)
		}
	}
}

// transition applies one step of the load/sync state machine to a cached
// snapshot.
func (c *Coordinator) transition(ctx context.Context, posts []post.Post, initialLoad bool, forcePending, syncAttempted *bool) {
	empty := len(posts) == 0

	switch {
	case (initialLoad && !*syncAttempted && empty) || (*forcePending && empty):
		// Cache is empty: a resync is the only way forward.
		*forcePending = false
		c.publish(loading())
		err := c.repo.RefreshFromRemote(ctx)
		*syncAttempted = true
		if err != nil {
			c.publish(failed(err))
			return
		}
		// The fresh rows arrive on the next store emission; meanwhile show
		// the (stale, empty) snapshot unless a failure already surfaced.
		if c.State().Phase != PhaseFailed {
			c.publish(success(posts))
		}

	case *forcePending:
		// Cache has data but the user asked for a resync.
		*forcePending = false
		c.publish(loading())
		err := c.repo.RefreshFromRemote(ctx)
		*syncAttempted = true
		if err != nil {
			// A failed refresh must not blank already-visible data.
			c.publish(success(posts))
			return
		}
		// Success: await the next store emission with fresh rows.

	default:
		c.publish(success(posts))
		if !empty {
			*syncAttempted = true
		}
	}
}

func (c *Coordinator) publish(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	store.SendLatest(c.updates, s)
}

// Toggle flips membership of id in the selection set.
func (c *Coordinator) Toggle(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
}

// ClearSelection empties the selection set.
func (c *Coordinator) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.selected)
}

// Selected returns the selected ids in ascending order.
func (c *Coordinator) Selected() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int64, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsSelected reports whether id is in the selection set.
func (c *Coordinator) IsSelected(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.selected[id]
	return ok
}

// MarkSelectedRead marks every selected post read, then clears the
// selection. A no-op when nothing is selected.
func (c *Coordinator) MarkSelectedRead(ctx context.Context) error {
	ids := c.Selected()
	if len(ids) == 0 {
		return nil
	}
	if err := c.repo.MarkRead(ctx, ids...); err != nil {
		return err
	}
	c.ClearSelection()
	return nil
}

// DeleteSelected deletes every selected post, then clears the selection.
// A no-op when nothing is selected.
func (c *Coordinator) DeleteSelected(ctx context.Context) error {
	ids := c.Selected()
	if len(ids) == 0 {
		return nil
	}
	if err := c.repo.Delete(ctx, ids...); err != nil {
		return err
	}
	c.ClearSelection()
	return nil
}
