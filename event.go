// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// event is a binary, auto-resetting wait/signal primitive.
//
// The signaled state is a token in a channel of capacity 1: set deposits the
// token if absent, a successful wait consumes it. Teardown closes the
// channel, after which every wait returns immediately without timing out
// and set becomes a no-op.
//
// mu is the secondary guard: it serializes set against teardown so a set can
// never race a close of ch. Waiting does not take mu, and mu is never held
// while the queue's state lock is taken.
type event struct {
	mu   sync.Mutex
	ch   chan struct{}
	torn bool
}

func newEvent() *event {
	return &event{ch: make(chan struct{}, 1)}
}

// set signals the event. No-op once torn down.
func (e *event) set() {
	e.mu.Lock()
	if !e.torn {
		select {
		case e.ch <- struct{}{}:
		default:
		}
	}
	e.mu.Unlock()
}

// teardown permanently releases the event. Only the first call has effect.
func (e *event) teardown() {
	e.mu.Lock()
	if !e.torn {
		e.torn = true
		close(e.ch)
	}
	e.mu.Unlock()
}

// settle applies a waiter's exit decision atomically under the guard.
// teardown and set are mutually exclusive; teardown wins.
func (e *event) settle(teardown, set bool) {
	switch {
	case teardown:
		e.teardown()
	case set:
		e.set()
	}
}

// isTornDown reports whether teardown has happened.
func (e *event) isTornDown() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.torn
}

// wait blocks until the event is signaled or torn down, or timeout elapses
// on clk. Negative timeout waits indefinitely; zero polls.
// Returns true if the wait timed out.
func (e *event) wait(clk clockwork.Clock, timeout time.Duration) (timedOut bool) {
	switch {
	case timeout < 0:
		<-e.ch
		return false
	case timeout == 0:
		select {
		case <-e.ch:
			return false
		default:
			return true
		}
	}

	t := clk.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-e.ch:
		return false
	case <-t.Chan():
		return true
	}
}
