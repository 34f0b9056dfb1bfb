package detail

import (
	"context"
	"log"
	"sync"
	"time"

	"postbox/internal/post"
	"postbox/internal/repo"
	"postbox/internal/store"
)

// Phase identifies which variant of the detail state is active.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseSuccess
	PhaseFailed
)

// State is the published detail screen state. The initial state is always
// Loading; an id that never appears in the cache simply stays there.
type State struct {
	Phase Phase
	Post  post.Post
	Err   error
}

const defaultGrace = 5 * time.Second

// Options tune a Coordinator.
type Options struct {
	// Grace is how long the store subscription survives after the last
	// watcher releases, so a transient detach/reattach does not restart the
	// underlying query. Zero selects the 5s default.
	Grace time.Duration
}

// Coordinator owns the state for a single post bound at creation time.
type Coordinator struct {
	repo  repo.PostRepository
	id    int64
	grace time.Duration

	baseCtx context.Context

	mu        sync.Mutex
	state     State
	watchers  int
	stopTimer *time.Timer
	stop      context.CancelFunc

	updates      chan State
	updatesSpent bool
	streamDone   chan struct{}
}

// New creates a Coordinator bound to the given post id. No subscription is
// started until the first Watch call.
func New(ctx context.Context, r repo.PostRepository, id int64, opts Options) *Coordinator {
	grace := opts.Grace
	if grace <= 0 {
		grace = defaultGrace
	}
	return &Coordinator{
		repo:    r,
		id:      id,
		grace:   grace,
		baseCtx: ctx,
		state:   State{Phase: PhaseLoading},
		updates: make(chan State, 1),
	}
}

// ID returns the bound post id.
func (c *Coordinator) ID() int64 {
	return c.id
}

// State returns the latest published state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Updates exposes the conflated state stream for the UI. The channel closes
// when the subscription is torn down; a later Watch re-arms it, so callers
// fetch it after Watch rather than holding it across a teardown.
func (c *Coordinator) Updates() <-chan State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

// Watch registers an observer, starting the store subscription if none is
// active and cancelling any pending grace-window teardown.
func (c *Coordinator) Watch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers++
	if c.stopTimer != nil {
		c.stopTimer.Stop()
		c.stopTimer = nil
	}
	if c.stop != nil {
		return
	}
	subCtx, cancel := context.WithCancel(c.baseCtx)
	c.stop = cancel
	if c.updatesSpent {
		c.updates = make(chan State, 1)
		c.updatesSpent = false
	}
	done := make(chan struct{})
	c.streamDone = done
	// Subscribing here rather than on the goroutine means the query is
	// already registered when Watch returns.
	rows := c.repo.ObservePost(subCtx, c.id)
	go c.stream(rows, c.updates, done)
}

// Release drops an observer. When the last one detaches the subscription is
// kept alive for the grace window, then cancelled.
func (c *Coordinator) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watchers == 0 {
		return
	}
	c.watchers--
	if c.watchers > 0 || c.stop == nil {
		return
	}
	c.stopTimer = time.AfterFunc(c.grace, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.stopTimer = nil
		if c.watchers > 0 || c.stop == nil {
			return
		}
		c.stop()
		c.stop = nil
		ch := c.updates
		done := c.streamDone
		c.updatesSpent = true
		c.streamDone = nil
		// Close the stream only once the loop goroutine has exited, so a
		// pending reader unblocks instead of waiting forever.
		go func() {
			<-done
			close(ch)
		}()
	})
}

func (c *Coordinator) stream(rows <-chan store.RowSnapshot, out chan State, done chan struct{}) {
	defer close(done)
	for row := range rows {
		if row.Err != nil {
			c.publish(out, State{Phase: PhaseFailed, Err: row.Err})
			continue
		}
		c.publish(out, State{Phase: PhaseSuccess, Post: row.Post})
	}
	// The stream ending without a row (deletion, shutdown) keeps the last
	// state; navigation away handles the absence.
}

func (c *Coordinator) publish(out chan State, s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	store.SendLatest(out, s)
}

// MarkRead marks the bound post read. Fire-and-forget: failures are logged,
// not surfaced as state.
func (c *Coordinator) MarkRead() {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.baseCtx), 10*time.Second)
		defer cancel()
		if err := c.repo.MarkRead(ctx, c.id); err != nil {
			log.Printf("mark post %d read failed: %v", c.id, err)
		}
	}()
}

// Delete removes the bound post from the cache. Fire-and-forget; the state
// is left as-is and the caller is expected to navigate away.
func (c *Coordinator) Delete() {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.baseCtx), 10*time.Second)
		defer cancel()
		if err := c.repo.Delete(ctx, c.id); err != nil {
			log.Printf("delete post %d failed: %v", c.id, err)
		}
	}()
}
