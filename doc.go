// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package chanq provides closeable FIFO message channels for handing items
// between goroutines.
//
// Two forms are offered:
//
//   - Channel: non-blocking. Dequeue and Peek fail with [ErrEmpty] when
//     nothing is buffered.
//   - BlockingQueue: a Channel whose Dequeue and Peek wait up to a timeout,
//     plus [Select] to wait on many queues at once.
//
// Both are unbounded and safe for any number of producers and consumers.
//
// # Quick Start
//
// Direct constructors:
//
//	ch, err := chanq.NewChannel[Event](chanq.Unlimited)
//	q, err := chanq.NewBlockingQueue[*Request](chanq.Unlimited)
//
// Builder API:
//
//	ch, err := chanq.Build[Event](chanq.New().Quota(3))
//	q, err := chanq.BuildBlocking[Event](chanq.New().SegmentSize(256))
//
// # Close Semantics
//
// Close is idempotent and irreversible. After Close, Enqueue fails with
// [ErrClosed] while consumers keep draining buffered items; once the buffer
// is empty, Dequeue fails with [ErrEmpty].
//
//	// Producer
//	for _, m := range batch {
//	    if _, err := q.Enqueue(m); err != nil {
//	        return err // ErrClosed
//	    }
//	}
//	q.Close()
//
//	// Consumer
//	for m := range q.Drain() {
//	    handle(m)
//	}
//
// # Enqueue Quota
//
// A positive quota N permits exactly N successful enqueues; the N-th closes
// the channel. A negative quota ([Unlimited]) never auto-closes. A zero quota
// is rejected with [ErrInvalidConfiguration]:
//
//	ch, _ := chanq.NewChannel[string](3)
//	ch.Enqueue("a") // 1
//	ch.Enqueue("b") // 2
//	ch.Enqueue("c") // 3, channel now closed
//	ch.Enqueue("d") // ErrClosed
//
// # Counts
//
// Enqueue returns the buffer length measured at the instant of its append.
// A producer that gets 1 knows it filled an empty channel, no matter what
// consumers do afterwards.
//
// # Notifications
//
// OnEnqueue subscribers run after every successful enqueue, in registration
// order, outside the channel's lock. OnClose subscribers run exactly once
// when the channel closes; registering after that fails with
// [ErrAlreadyFired] so an observer can never silently miss the event. Done
// exposes the same event as a channel for use in select statements.
//
// # Timeouts
//
// BlockingQueue.Dequeue, BlockingQueue.Peek and Select take a timeout:
//
//	timeout < 0   wait indefinitely
//	timeout == 0  poll without waiting
//	timeout > 0   wait at most that long
//
// A timeout is reported as a boolean result, never as an error. Timeouts are
// measured on the queue's clockwork.Clock, which tests can replace with a
// fake clock via [Builder.Clock].
//
// # Select
//
// Select waits on several BlockingQueues and returns the index of one that
// has data or is closed, or -1 on timeout. It does not dequeue:
//
//	qs := []chanq.Waiter{control, data}
//	switch i := chanq.Select(qs, time.Second); i {
//	case -1:
//	    // timed out
//	case 0:
//	    cmd, _, err := control.Dequeue(0)
//	case 1:
//	    msg, _, err := data.Dequeue(0)
//	}
//
// A queue passed to Select must not also have goroutines blocked in its
// Dequeue or Peek; the two waiting modes must not be mixed on one queue.
// At most [MaxSelect] queues may be passed.
//
// # Error Handling
//
// Errors are sentinels compared with errors.Is. [ErrEmpty] wraps
// [code.hybscloud.com/iox.ErrWouldBlock], so it classifies as a control flow
// signal:
//
//	chanq.IsWouldBlock(err)  // true for ErrEmpty
//
// No operation partially mutates a channel on failure.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for lock-free state reads,
// [code.hybscloud.com/spin] for CPU pause instructions while Select spins,
// and [github.com/jonboulle/clockwork] for timers.
package chanq
