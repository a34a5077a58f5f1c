// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

import "time"

// Producer is the interface for enqueueing into a closeable channel.
//
// Both *Channel[T] and *BlockingQueue[T] implement it, so producer code can
// be written once for either form.
type Producer[T any] interface {
	// Enqueue appends v and returns the buffer length at the instant of
	// the append. Returns ErrClosed once the channel is closed.
	Enqueue(v T) (int, error)

	// Close permanently stops production. Idempotent.
	Close()
}

// Consumer is the interface for non-blocking consumption.
//
// Implemented by *Channel[T]. A *BlockingQueue[T] exposes the same
// operations through its embedded Channel field.
type Consumer[T any] interface {
	// Dequeue removes and returns the oldest item.
	// Returns (zero-value, ErrEmpty) if nothing is buffered.
	Dequeue() (T, error)

	// Peek returns the oldest item without removing it.
	// Returns (zero-value, ErrEmpty) if nothing is buffered.
	Peek() (T, error)
}

// BlockingConsumer is the interface for consumption with bounded waits.
//
// Implemented by *BlockingQueue[T].
type BlockingConsumer[T any] interface {
	// Dequeue removes and returns the oldest item, waiting up to timeout.
	// timedOut is true if nothing arrived in time.
	Dequeue(timeout time.Duration) (v T, timedOut bool, err error)

	// Peek returns the oldest item without removing it, waiting up to
	// timeout.
	Peek(timeout time.Duration) (v T, timedOut bool, err error)
}

// Notifier is the observer surface shared by both channel forms.
type Notifier interface {
	// OnEnqueue registers a subscriber for every successful Enqueue.
	OnEnqueue(fn func(count int)) (cancel func())

	// OnClose registers a fire-once close subscriber.
	// Returns ErrAlreadyFired after the channel has closed.
	OnClose(fn func()) error

	// Done is closed when the close notification fires.
	Done() <-chan struct{}
}

var (
	_ Producer[int]         = (*Channel[int])(nil)
	_ Consumer[int]         = (*Channel[int])(nil)
	_ Notifier              = (*Channel[int])(nil)
	_ Producer[int]         = (*BlockingQueue[int])(nil)
	_ BlockingConsumer[int] = (*BlockingQueue[int])(nil)
	_ Notifier              = (*BlockingQueue[int])(nil)
	_ Waiter                = (*BlockingQueue[int])(nil)
)
