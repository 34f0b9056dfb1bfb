package detail

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postbox/internal/post"
	"postbox/internal/store"
)

// fakeRepo scripts single-row observation and records mutations. Tests push
// rows by hand and watch subscription churn.
type fakeRepo struct {
	mu      sync.Mutex
	rows    chan store.RowSnapshot
	started atomic.Int64
	active  atomic.Int64
	marked  []int64
	deleted []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(chan store.RowSnapshot, 8)}
}

func (f *fakeRepo) ObservePosts(ctx context.Context) <-chan store.Snapshot {
	ch := make(chan store.Snapshot)
	close(ch)
	return ch
}

func (f *fakeRepo) ObservePost(ctx context.Context, id int64) <-chan store.RowSnapshot {
	f.started.Add(1)
	f.active.Add(1)
	out := make(chan store.RowSnapshot, 1)
	go func() {
		defer close(out)
		defer f.active.Add(-1)
		for {
			select {
			case <-ctx.Done():
				return
			case row, ok := <-f.rows:
				if !ok {
					return
				}
				out <- row
			}
		}
	}()
	return out
}

func (f *fakeRepo) RefreshFromRemote(ctx context.Context) error { return nil }

func (f *fakeRepo) MarkRead(ctx context.Context, ids ...int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, ids...)
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, ids ...int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids...)
	return nil
}

func TestCoordinator_StaysLoadingUntilRowAppears(t *testing.T) {
	repo := newFakeRepo()
	c := New(context.Background(), repo, 5, Options{})
	c.Watch()
	defer c.Release()

	require.Equal(t, PhaseLoading, c.State().Phase)

	// Nothing in the cache for id 5: still Loading after a beat.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, PhaseLoading, c.State().Phase)

	repo.rows <- store.RowSnapshot{Post: post.Post{ID: 5, UserID: 2, Title: "T", Body: "B"}}

	require.Eventually(t, func() bool {
		s := c.State()
		return s.Phase == PhaseSuccess && s.Post.ID == 5
	}, 2*time.Second, 5*time.Millisecond, "row emission should map to Success")
}

func TestCoordinator_UpstreamErrorMapsToFailed(t *testing.T) {
	repo := newFakeRepo()
	c := New(context.Background(), repo, 5, Options{})
	c.Watch()
	defer c.Release()

	repo.rows <- store.RowSnapshot{Err: errors.New("disk gone")}

	require.Eventually(t, func() bool {
		return c.State().Phase == PhaseFailed
	}, 2*time.Second, 5*time.Millisecond, "row error should map to Failed")
	assert.ErrorContains(t, c.State().Err, "disk gone")
}

func TestCoordinator_GraceWindowKeepsSubscriptionAlive(t *testing.T) {
	repo := newFakeRepo()
	c := New(context.Background(), repo, 5, Options{Grace: 150 * time.Millisecond})

	c.Watch()
	require.EqualValues(t, 1, repo.started.Load())

	// Detach and reattach within the grace window: no restart.
	c.Release()
	time.Sleep(30 * time.Millisecond)
	c.Watch()
	time.Sleep(200 * time.Millisecond)
	assert.EqualValues(t, 1, repo.started.Load(), "reattach within grace must not restart the query")
	assert.EqualValues(t, 1, repo.active.Load())

	// Let the grace window expire: the subscription is torn down.
	c.Release()
	require.Eventually(t, func() bool {
		return repo.active.Load() == 0
	}, 2*time.Second, 5*time.Millisecond, "subscription should cancel after the grace window")

	// A later Watch starts a fresh subscription.
	c.Watch()
	defer c.Release()
	require.EqualValues(t, 2, repo.started.Load())
}

func TestCoordinator_ReaderUnblocksAfterTeardown(t *testing.T) {
	repo := newFakeRepo()
	c := New(context.Background(), repo, 5, Options{Grace: 50 * time.Millisecond})
	c.Watch()
	ch := c.Updates()

	repo.rows <- store.RowSnapshot{Post: post.Post{ID: 5, UserID: 1, Title: "T", Body: "B"}}
	require.Eventually(t, func() bool {
		return c.State().Phase == PhaseSuccess
	}, 2*time.Second, 5*time.Millisecond)

	c.Release()
	require.Eventually(t, func() bool {
		return repo.active.Load() == 0
	}, 2*time.Second, 5*time.Millisecond, "subscription should cancel after the grace window")

	// The channel drains and closes once the subscription is gone, so a
	// reader parked on it does not hang for the rest of the session.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel still open after teardown")
		}
	}
}

func TestCoordinator_RewatchAfterTeardownDeliversAgain(t *testing.T) {
	repo := newFakeRepo()
	c := New(context.Background(), repo, 5, Options{Grace: 20 * time.Millisecond})
	c.Watch()
	c.Release()
	require.Eventually(t, func() bool {
		return repo.active.Load() == 0
	}, 2*time.Second, 5*time.Millisecond)

	// The re-armed stream publishes on a fresh open channel.
	c.Watch()
	defer c.Release()
	repo.rows <- store.RowSnapshot{Post: post.Post{ID: 5, UserID: 1, Title: "back", Body: "B"}}
	select {
	case s, ok := <-c.Updates():
		require.True(t, ok, "re-armed updates channel must be open")
		assert.Equal(t, PhaseSuccess, s.Phase)
		assert.Equal(t, "back", s.Post.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("no state delivered after rewatch")
	}
}

func TestCoordinator_MutationsAreFireAndForget(t *testing.T) {
	repo := newFakeRepo()
	c := New(context.Background(), repo, 9, Options{})

	c.MarkRead()
	c.Delete()

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.marked) == 1 && len(repo.deleted) == 1
	}, 2*time.Second, 5*time.Millisecond, "mutations should reach the repository")

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []int64{9}, repo.marked)
	assert.Equal(t, []int64{9}, repo.deleted)
}

func TestCoordinator_DeletionKeepsLastState(t *testing.T) {
	repo := newFakeRepo()
	c := New(context.Background(), repo, 5, Options{})
	c.Watch()
	defer c.Release()

	repo.rows <- store.RowSnapshot{Post: post.Post{ID: 5, UserID: 1, Title: "T", Body: "B"}}
	require.Eventually(t, func() bool {
		return c.State().Phase == PhaseSuccess
	}, 2*time.Second, 5*time.Millisecond)

	// The row disappearing ends the stream; the stale Success sticks.
	close(repo.rows)
	time.Sleep(50 * time.Millisecond)
	s := c.State()
	assert.Equal(t, PhaseSuccess, s.Phase)
	assert.EqualValues(t, 5, s.Post.ID)
}
