// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

import "github.com/jonboulle/clockwork"

// Unlimited is the quota value for a channel that never closes on its own.
const Unlimited = -1

// DefaultSegmentSize is the ring segment capacity used when the builder is
// not given one.
const DefaultSegmentSize = 64

// Options configures channel creation.
type Options struct {
	// Enqueue quota: negative is unlimited, positive N auto-closes after N
	// successful enqueues, zero is rejected.
	quota int

	// Buffer ring segment capacity (rounds up to next power of 2)
	segmentSize int

	// Time source for blocking timeouts
	clock clockwork.Clock
}

// Builder creates channels with fluent configuration.
//
// Example:
//
//	// Unlimited non-blocking channel
//	ch, err := chanq.Build[Event](chanq.New())
//
//	// Blocking queue that closes itself after 3 enqueues
//	q, err := chanq.BuildBlocking[*Request](chanq.New().Quota(3))
//
//	// Blocking queue driven by a fake clock in tests
//	q, err := chanq.BuildBlocking[int](chanq.New().Clock(clockwork.NewFakeClock()))
type Builder struct {
	opts Options
}

// New creates a channel builder with an unlimited quota, the default
// segment size and the real clock.
func New() *Builder {
	return &Builder{opts: Options{
		quota:       Unlimited,
		segmentSize: DefaultSegmentSize,
	}}
}

// Quota sets the number of successful enqueues permitted before the channel
// closes itself. Negative means unlimited. Zero is rejected at build time.
func (b *Builder) Quota(n int) *Builder {
	b.opts.quota = n
	return b
}

// SegmentSize sets the capacity of each ring segment backing the buffer.
// The buffer itself is unbounded; segments are chained as it grows.
// Rounds up to the next power of 2. Values below 2 are rejected at build time.
func (b *Builder) SegmentSize(n int) *Builder {
	b.opts.segmentSize = n
	return b
}

// Clock sets the time source used to measure blocking timeouts.
// A nil clock selects the real clock.
func (b *Builder) Clock(c clockwork.Clock) *Builder {
	b.opts.clock = c
	return b
}

func (o Options) validate() error {
	if o.quota == 0 {
		return configError("quota must not be zero")
	}
	if o.segmentSize < 2 {
		return configError("segment size must be >= 2, got %d", o.segmentSize)
	}
	return nil
}

func (o Options) clockOrReal() clockwork.Clock {
	if o.clock == nil {
		return clockwork.NewRealClock()
	}
	return o.clock
}

// Build creates a non-blocking Channel.
// Returns an error wrapping ErrInvalidConfiguration if the builder settings
// are invalid; no channel is produced in that case.
func Build[T any](b *Builder) (*Channel[T], error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}
	c := &Channel[T]{}
	c.init(b.opts)
	return c, nil
}

// BuildBlocking creates a BlockingQueue.
// Returns an error wrapping ErrInvalidConfiguration if the builder settings
// are invalid; no queue is produced in that case.
func BuildBlocking[T any](b *Builder) (*BlockingQueue[T], error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}
	q := &BlockingQueue[T]{
		sig:   newEvent(),
		clock: b.opts.clockOrReal(),
	}
	q.init(b.opts)
	q.hooks = q
	return q, nil
}

// NewChannel creates a non-blocking Channel with the given enqueue quota.
// Use Unlimited for a channel that only closes on an explicit Close.
func NewChannel[T any](quota int) (*Channel[T], error) {
	return Build[T](New().Quota(quota))
}

// NewBlockingQueue creates a BlockingQueue with the given enqueue quota.
// Use Unlimited for a queue that only closes on an explicit Close.
func NewBlockingQueue[T any](quota int) (*BlockingQueue[T], error) {
	return BuildBlocking[T](New().Quota(quota))
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
