package store

import (
	"context"

	"postbox/internal/post"
)

// Snapshot is one full-collection emission pushed to an ObserveAll
// subscriber. Err is set when the backing query failed.
type Snapshot struct {
	Posts []post.Post
	Err   error
}

// RowSnapshot is one single-row emission pushed to an ObserveOne subscriber.
type RowSnapshot struct {
	Post post.Post
	Err  error
}

// ObserveAll emits the current collection ordered by id descending, then a
// fresh snapshot after every committed mutation. The channel is conflated: a
// slow consumer always sees the latest snapshot and may miss intermediate
// ones. It closes when ctx is cancelled or the store is closed.
func (s *Store) ObserveAll(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	id, notify := s.subscribe()
	if notify == nil {
		close(out)
		return out
	}
	go func() {
		defer close(out)
		defer s.unsubscribe(id)
		for {
			posts, err := s.queryAll(ctx)
			if err != nil && ctx.Err() != nil {
				return
			}
			SendLatest(out, Snapshot{Posts: posts, Err: err})
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-notify:
			}
		}
	}()
	return out
}

// ObserveOne emits the row with the given id when present, and again on each
// subsequent change to it. While the id is absent nothing is emitted; a
// stream that never fires is the not-found signal. Consecutive identical
// values are suppressed.
func (s *Store) ObserveOne(ctx context.Context, postID int64) <-chan RowSnapshot {
	out := make(chan RowSnapshot, 1)
	id, notify := s.subscribe()
	if notify == nil {
		close(out)
		return out
	}
	go func() {
		defer close(out)
		defer s.unsubscribe(id)
		var last *post.Post
		for {
			p, ok, err := s.queryOne(ctx, postID)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return
				}
				SendLatest(out, RowSnapshot{Err: err})
			case ok && (last == nil || *last != p):
				row := p
				last = &row
				SendLatest(out, RowSnapshot{Post: p})
			}
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-notify:
			}
		}
	}()
	return out
}

func (s *Store) subscribe() (int, chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return id, ch
}

func (s *Store) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Store) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SendLatest delivers v on a capacity-1 channel, displacing a pending value
// the consumer has not picked up yet. Every conflated state stream in
// postbox publishes through it.
func SendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
