// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

import (
	"errors"
	"iter"
	"time"

	"github.com/jonboulle/clockwork"
)

// BlockingQueue is a Channel whose consumers can wait for items.
//
// Enqueue, Close, Closed, Count, the non-blocking Channel operations and the
// notifications are inherited from Channel. Dequeue and Peek take a timeout:
// negative waits indefinitely, zero polls, positive waits up to that long.
//
// Waiting is built on a binary wait/signal event and a waiter count. The
// event is only consulted while at most one item is buffered and the queue
// is open; with more items, or once closed, consumers take the head
// directly. Enqueue therefore signals only on the empty-to-one transition.
//
// Two locks are involved: the Channel state lock and the event's own guard.
// The state lock is always released before the guard is taken.
//
// The zero value is not ready for use; construct via NewBlockingQueue or
// BuildBlocking. All methods are safe for concurrent use.
type BlockingQueue[T any] struct {
	Channel[T]

	sig     *event
	waiters int // goroutines parked on sig; guarded by the state lock
	clock   clockwork.Clock
}

// wake implements channelHooks.
func (q *BlockingQueue[T]) wake() {
	q.sig.set()
}

// closeLocked implements channelHooks. Waiters present at close are woken
// one after another, each re-signaling for the next, and the last one out
// tears the event down. With no waiters the event is torn down at once.
func (q *BlockingQueue[T]) closeLocked() func() {
	if q.waiters == 0 {
		return q.sig.teardown
	}
	return q.sig.set
}

// Dequeue removes and returns the oldest item, waiting up to timeout for
// one to arrive.
//
// Returns timedOut=true and the zero value if the timeout elapsed; nothing
// is removed in that case. Returns ErrEmpty if the queue is closed and
// empty. A timeout is not an error.
//
// With one item buffered the wait event decides, and an enqueue signals it
// only after releasing the state lock, so a zero-timeout poll can briefly
// miss an item that was just enqueued. Select reports a queue only once its
// event is signaled, so a poll issued after Select does not miss.
func (q *BlockingQueue[T]) Dequeue(timeout time.Duration) (v T, timedOut bool, err error) {
	return q.await(timeout, true)
}

// Peek returns the oldest item without removing it, waiting up to timeout
// for one to arrive. Results are as for Dequeue.
func (q *BlockingQueue[T]) Peek(timeout time.Duration) (v T, timedOut bool, err error) {
	return q.await(timeout, false)
}

func (q *BlockingQueue[T]) await(timeout time.Duration, remove bool) (v T, timedOut bool, err error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = q.clock.Now().Add(timeout)
	}

	q.mu.Lock()
	for {
		if q.buf.len() > 1 || q.closed.LoadAcquire() {
			v, err = q.headLocked(remove)
			q.mu.Unlock()
			return v, false, err
		}

		q.waiters++
		q.mu.Unlock()

		timedOut = q.sig.wait(q.clock, timeout)

		q.mu.Lock()
		q.waiters--
		closed := q.closed.LoadAcquire()
		spurious := !timedOut && !closed && q.buf.len() == 0
		if !timedOut && !spurious {
			v, err = q.headLocked(remove)
		}
		teardown := closed && q.waiters == 0
		resignal := closed || q.buf.len() > 0
		q.mu.Unlock()

		q.sig.settle(teardown, resignal)

		if !spurious {
			return v, timedOut, err
		}

		// Woken by a stale signal: wait again for what is left of the timeout.
		if timeout > 0 {
			timeout = deadline.Sub(q.clock.Now())
			if timeout <= 0 {
				var zero T
				return zero, true, nil
			}
		}
		q.mu.Lock()
	}
}

// Drain returns an iterator that yields items via blocking Dequeue until
// the queue is closed and empty.
//
//	for v := range q.Drain() {
//	    handle(v)
//	}
func (q *BlockingQueue[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, _, err := q.Dequeue(-1)
			if errors.Is(err, ErrEmpty) {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}
