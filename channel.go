// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Channel is a closeable, non-blocking FIFO queue with notifications.
//
// Producers call Enqueue; consumers call Dequeue or Peek, which fail with
// ErrEmpty instead of waiting. Either side may call Close, after which
// Enqueue fails with ErrClosed while Dequeue keeps draining buffered items.
//
// A channel built with a positive quota N accepts exactly N enqueues and
// closes itself on the N-th.
//
// The zero value is not ready for use; construct via NewChannel or Build.
// All methods are safe for concurrent use.
type Channel[T any] struct {
	mu        sync.Mutex // state lock: buf, remaining, closed transitions
	buf       buffer[T]
	remaining int // enqueues left before auto-close; negative is unlimited

	// Mirrors written under mu, read without it.
	closed atomix.Bool
	length atomix.Int64

	enqueueSubs enqueueSubscribers
	closeSubs   closeNotifier

	hooks channelHooks // nil for a plain Channel
}

// channelHooks lets a wrapping queue extend Enqueue and Close without
// duplicating the state transitions.
type channelHooks interface {
	// wake runs without the state lock after an enqueue made the buffer
	// go from empty to one item.
	wake()
	// closeLocked runs under the state lock as the closed flag is set.
	// The returned action runs after the lock is released and the close
	// notification has fired.
	closeLocked() func()
}

func (c *Channel[T]) init(o Options) {
	c.remaining = o.quota
	if c.remaining < 0 {
		c.remaining = Unlimited
	}
	c.buf.init(o.segmentSize)
	c.closeSubs.init()
}

// Enqueue appends v to the tail and returns the buffer length measured at
// the instant of the append, so the producer that receives 1 knows it
// filled an empty channel.
//
// Returns ErrClosed if the channel is closed or its quota is exhausted.
// Enqueue subscribers are notified after the state lock is released. If this
// enqueue used the last of the quota, the channel is closed after the
// subscribers return.
func (c *Channel[T]) Enqueue(v T) (int, error) {
	c.mu.Lock()
	if c.closed.LoadAcquire() || c.remaining == 0 {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	n := c.buf.push(v)
	c.length.Store(int64(n))
	exhausted := false
	if c.remaining > 0 {
		c.remaining--
		exhausted = c.remaining == 0
	}
	c.mu.Unlock()

	if n == 1 && c.hooks != nil {
		c.hooks.wake()
	}
	c.enqueueSubs.notify(n)
	if exhausted {
		c.Close()
	}
	return n, nil
}

// Dequeue removes and returns the oldest item.
// Returns (zero-value, ErrEmpty) if nothing is buffered, whether or not the
// channel is closed.
func (c *Channel[T]) Dequeue() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headLocked(true)
}

// Peek returns the oldest item without removing it.
// Returns (zero-value, ErrEmpty) if nothing is buffered.
func (c *Channel[T]) Peek() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headLocked(false)
}

// headLocked takes or inspects the head. The caller must hold c.mu.
func (c *Channel[T]) headLocked(remove bool) (T, error) {
	var (
		v  T
		ok bool
	)
	if remove {
		v, ok = c.buf.pop()
		if ok {
			c.length.Store(int64(c.buf.len()))
		}
	} else {
		v, ok = c.buf.peek()
	}
	if !ok {
		return v, ErrEmpty
	}
	return v, nil
}

// Close marks the channel closed and fires the close notification.
//
// Close is idempotent and safe to call from any goroutine, including
// concurrently with Enqueue and Dequeue. Only the first call has any effect.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	if c.closed.LoadAcquire() {
		c.mu.Unlock()
		return
	}
	c.closed.StoreRelease(true)
	var after func()
	if c.hooks != nil {
		after = c.hooks.closeLocked()
	}
	c.mu.Unlock()

	c.closeSubs.fire()
	if after != nil {
		after()
	}
}

// CloseAfterEnqueue limits the channel to one more successful enqueue and
// reports whether no enqueue can succeed anymore: true if the channel is
// closed, or if its quota is exhausted and the auto-close is still running.
// Nothing changes when it returns true.
//
// Deprecated: Set the quota at construction with Quota(1) or NewChannel(1).
func (c *Channel[T]) CloseAfterEnqueue() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.LoadAcquire() || c.remaining == 0 {
		return true
	}
	c.remaining = 1
	return false
}

// Closed reports whether the channel has been closed.
func (c *Channel[T]) Closed() bool {
	return c.closed.LoadAcquire()
}

// Count returns the number of buffered items.
func (c *Channel[T]) Count() int {
	return int(c.length.Load())
}

// OnEnqueue registers fn to be called after every successful Enqueue with
// the count that Enqueue returned. Subscribers run in registration order on
// the enqueuing goroutine, outside the state lock; a subscriber may call
// back into the channel.
//
// The returned cancel function unregisters fn. It is safe to call more than
// once.
func (c *Channel[T]) OnEnqueue(fn func(count int)) (cancel func()) {
	return c.enqueueSubs.add(fn)
}

// OnClose registers fn to be called exactly once when the channel closes.
// Returns ErrAlreadyFired if the close notification has already been
// delivered; fn is not registered in that case.
func (c *Channel[T]) OnClose(fn func()) error {
	return c.closeSubs.add(fn)
}

// Done returns a channel that is closed when the close notification fires,
// before any OnClose subscriber runs.
func (c *Channel[T]) Done() <-chan struct{} {
	return c.closeSubs.done
}
