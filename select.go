// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

import (
	"reflect"
	"time"

	"code.hybscloud.com/spin"
	"github.com/jonboulle/clockwork"
)

// MaxSelect is the largest number of queues Select accepts.
//
// Select parks on all wait events at once with reflect.Select, which is
// limited to 65536 cases; one case is reserved for the timeout.
const MaxSelect = 65535

// selectSpins is how many ready scans Select makes, pausing the CPU
// between them, before it parks.
const selectSpins = 16

// Waiter is a queue that Select can wait on.
// It is implemented by *BlockingQueue[T] for every T.
type Waiter interface {
	ready() bool
	poll() bool
	signal() *event
	timeSource() clockwork.Clock
}

func (q *BlockingQueue[T]) ready() bool {
	return q.Count() > 0 || q.Closed()
}

// poll reports whether a zero-timeout Dequeue issued now would find an item
// or a closed queue. With one item buffered that Dequeue consults the event,
// so the event must already be signaled: an item whose enqueue has not yet
// set the event is not reported.
func (q *BlockingQueue[T]) poll() bool {
	if q.Closed() || q.Count() > 1 {
		return true
	}
	select {
	case _, ok := <-q.sig.ch:
		if !ok {
			// Torn down: the queue is closed.
			return true
		}
		if q.ready() {
			q.sig.set()
			return true
		}
		// Stale token; dropped.
		return false
	default:
		return false
	}
}

func (q *BlockingQueue[T]) signal() *event {
	return q.sig
}

func (q *BlockingQueue[T]) timeSource() clockwork.Clock {
	return q.clock
}

// Select waits until one of queues has an item or is closed, or timeout
// elapses. It returns the index of a ready queue, or -1 on timeout.
// Negative timeout waits indefinitely; zero polls.
//
// Select does not remove anything: follow it with a zero-timeout Dequeue on
// the returned queue. A closed queue counts as ready, and that Dequeue may
// report ErrEmpty.
//
// Timeouts are measured on the clock of queues[0].
//
// No goroutine may be blocked in Dequeue or Peek on any of the queues while
// Select runs; mixing the two waiting modes on one queue is unsupported.
//
// Panics if len(queues) > MaxSelect.
func Select(queues []Waiter, timeout time.Duration) int {
	if len(queues) > MaxSelect {
		panic("chanq: too many queues for Select")
	}
	if i := scanReady(queues); i >= 0 || timeout == 0 {
		return i
	}

	sw := spin.Wait{}
	for range selectSpins {
		sw.Once()
		if i := scanReady(queues); i >= 0 {
			return i
		}
	}

	clk := clockwork.NewRealClock()
	if len(queues) > 0 {
		clk = queues[0].timeSource()
	}

	cases := make([]reflect.SelectCase, len(queues), len(queues)+1)
	for i, q := range queues {
		cases[i] = reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(q.signal().ch),
		}
	}
	if timeout > 0 {
		t := clk.NewTimer(timeout)
		defer t.Stop()
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(t.Chan()),
		})
	}
	if len(cases) == 0 {
		// Nothing to wait on and no timeout: nothing can ever become ready.
		select {}
	}

	for {
		chosen, _, recvOK := reflect.Select(cases)
		if chosen == len(queues) {
			return -1
		}
		q := queues[chosen]
		if !recvOK {
			// Torn down: the queue is closed.
			return chosen
		}
		if q.ready() {
			// The wait consumed the token; put it back for the Dequeue that follows.
			q.signal().set()
			return chosen
		}
		// Stale token left by a non-blocking consumer; it is dropped.
	}
}

func scanReady(queues []Waiter) int {
	for i, q := range queues {
		if q.poll() {
			return i
		}
	}
	return -1
}
