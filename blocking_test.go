// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/chanq"
)

type takeResult struct {
	v        int
	timedOut bool
	err      error
}

func newFakeQueue(t *testing.T) (*chanq.BlockingQueue[int], clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	q, err := chanq.BuildBlocking[int](chanq.New().Clock(fc))
	require.NoError(t, err)
	return q, fc
}

func dequeueAsync(q *chanq.BlockingQueue[int], timeout time.Duration) <-chan takeResult {
	out := make(chan takeResult, 1)
	go func() {
		v, timedOut, err := q.Dequeue(timeout)
		out <- takeResult{v, timedOut, err}
	}()
	return out
}

func TestBlockingFastPath(t *testing.T) {
	q, err := chanq.NewBlockingQueue[int](chanq.Unlimited)
	require.NoError(t, err)

	for i := range 5 {
		q.Enqueue(i)
	}
	for i := range 5 {
		v, timedOut, err := q.Dequeue(0)
		require.NoError(t, err)
		require.False(t, timedOut)
		require.Equal(t, i, v)
	}
}

func TestBlockingPollEmpty(t *testing.T) {
	q, err := chanq.NewBlockingQueue[int](chanq.Unlimited)
	require.NoError(t, err)

	v, timedOut, err := q.Dequeue(0)
	require.NoError(t, err, "a timeout is not an error")
	require.True(t, timedOut)
	require.Zero(t, v)

	_, timedOut, err = q.Peek(0)
	require.NoError(t, err)
	require.True(t, timedOut)
}

func TestBlockingTimeoutFakeClock(t *testing.T) {
	q, fc := newFakeQueue(t)

	res := dequeueAsync(q, time.Second)
	fc.BlockUntil(1)
	fc.Advance(time.Second)

	r := <-res
	require.NoError(t, r.err)
	require.True(t, r.timedOut)
	require.Zero(t, r.v)
	require.Zero(t, q.Count())
}

// TestBlockingTimeoutWallClock checks a finite timeout returns within a
// bounded margin of the requested duration.
func TestBlockingTimeoutWallClock(t *testing.T) {
	q, err := chanq.NewBlockingQueue[int](chanq.Unlimited)
	require.NoError(t, err)

	const timeout = 50 * time.Millisecond
	start := time.Now()
	_, timedOut, err := q.Dequeue(timeout)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.True(t, timedOut)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+2*time.Second)
}

func TestBlockingWakeOnEnqueue(t *testing.T) {
	q, fc := newFakeQueue(t)

	res := dequeueAsync(q, time.Hour)
	fc.BlockUntil(1)

	count, err := q.Enqueue(42)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	r := <-res
	require.NoError(t, r.err)
	require.False(t, r.timedOut)
	require.Equal(t, 42, r.v)
	require.Zero(t, q.Count())
}

func TestBlockingIndefiniteWait(t *testing.T) {
	q, err := chanq.NewBlockingQueue[int](chanq.Unlimited)
	require.NoError(t, err)

	res := dequeueAsync(q, -1)
	time.Sleep(10 * time.Millisecond)
	q.Enqueue(7)

	select {
	case r := <-res:
		require.NoError(t, r.err)
		require.False(t, r.timedOut)
		require.Equal(t, 7, r.v)
	case <-time.After(5 * time.Second):
		t.Fatal("indefinite Dequeue was not woken by Enqueue")
	}
}

func TestBlockingPeekWaits(t *testing.T) {
	q, fc := newFakeQueue(t)

	out := make(chan takeResult, 1)
	go func() {
		v, timedOut, err := q.Peek(time.Hour)
		out <- takeResult{v, timedOut, err}
	}()
	fc.BlockUntil(1)
	q.Enqueue(9)

	r := <-out
	require.NoError(t, r.err)
	require.False(t, r.timedOut)
	require.Equal(t, 9, r.v)
	require.Equal(t, 1, q.Count(), "Peek does not remove")

	v, timedOut, err := q.Dequeue(0)
	require.NoError(t, err)
	require.False(t, timedOut)
	require.Equal(t, 9, v)
}

func TestBlockingCloseWakesWaiters(t *testing.T) {
	q, fc := newFakeQueue(t)

	const waiters = 4
	results := make([]<-chan takeResult, waiters)
	for i := range waiters {
		results[i] = dequeueAsync(q, time.Hour)
	}
	fc.BlockUntil(waiters)

	q.Close()
	for i := range waiters {
		r := <-results[i]
		require.ErrorIs(t, r.err, chanq.ErrEmpty, "waiter %d", i)
		require.False(t, r.timedOut, "waiter %d", i)
	}
}

func TestBlockingClosedDrains(t *testing.T) {
	q, err := chanq.NewBlockingQueue[int](chanq.Unlimited)
	require.NoError(t, err)

	q.Enqueue(1)
	q.Enqueue(2)
	q.Close()

	_, err = q.Enqueue(3)
	require.ErrorIs(t, err, chanq.ErrClosed)

	for _, want := range []int{1, 2} {
		v, timedOut, err := q.Dequeue(-1)
		require.NoError(t, err)
		require.False(t, timedOut)
		require.Equal(t, want, v)
	}

	_, timedOut, err := q.Dequeue(-1)
	require.ErrorIs(t, err, chanq.ErrEmpty, "closed and empty never blocks")
	require.False(t, timedOut)
}

// TestBlockingStaleSignal leaves the wait event signaled with an empty
// buffer by consuming through the non-blocking Channel API.
func TestBlockingStaleSignal(t *testing.T) {
	q, fc := newFakeQueue(t)

	q.Enqueue(1)
	v, err := q.Channel.Dequeue()
	require.NoError(t, err)
	require.Equal(t, 1, v)

	_, timedOut, err := q.Dequeue(0)
	require.NoError(t, err, "stale wake is not reported as ErrEmpty")
	require.True(t, timedOut)

	q.Enqueue(2)
	q.Channel.Dequeue()

	res := dequeueAsync(q, time.Hour)
	fc.BlockUntil(1)
	q.Enqueue(3)

	r := <-res
	require.NoError(t, r.err)
	require.False(t, r.timedOut)
	require.Equal(t, 3, r.v)
}

func TestBlockingDrain(t *testing.T) {
	q, err := chanq.NewBlockingQueue[int](chanq.Unlimited)
	require.NoError(t, err)

	go func() {
		for i := range 100 {
			q.Enqueue(i)
		}
		q.Close()
	}()

	var got []int
	for v := range q.Drain() {
		got = append(got, v)
	}
	require.Len(t, got, 100)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestBlockingDrainBreak(t *testing.T) {
	q, err := chanq.NewBlockingQueue[int](chanq.Unlimited)
	require.NoError(t, err)
	for i := range 5 {
		q.Enqueue(i)
	}

	for v := range q.Drain() {
		if v == 2 {
			break
		}
	}
	require.Equal(t, 2, q.Count())
}

func TestBlockingNotifications(t *testing.T) {
	q, err := chanq.NewBlockingQueue[int](2)
	require.NoError(t, err)

	var counts []int
	q.OnEnqueue(func(c int) { counts = append(counts, c) })
	closed := false
	require.NoError(t, q.OnClose(func() { closed = true }))

	q.Enqueue(1)
	q.Enqueue(2)
	assert.Equal(t, []int{1, 2}, counts)
	assert.True(t, closed)
	assert.ErrorIs(t, q.OnClose(func() {}), chanq.ErrAlreadyFired)
}
