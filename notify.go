// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

import "sync"

type enqueueSubscriber struct {
	id uint64
	fn func(count int)
}

// enqueueSubscribers is a multi-subscriber registry for the "item added"
// notification. Subscribers are delivered in registration order from a
// copy-on-write snapshot, so notify never holds the registry lock while
// running subscriber code.
type enqueueSubscribers struct {
	mu     sync.Mutex
	nextID uint64
	subs   []enqueueSubscriber
}

func (r *enqueueSubscribers) add(fn func(count int)) (cancel func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	subs := make([]enqueueSubscriber, len(r.subs), len(r.subs)+1)
	copy(subs, r.subs)
	r.subs = append(subs, enqueueSubscriber{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *enqueueSubscribers) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.id == id {
			subs := make([]enqueueSubscriber, 0, len(r.subs)-1)
			subs = append(subs, r.subs[:i]...)
			r.subs = append(subs, r.subs[i+1:]...)
			return
		}
	}
}

func (r *enqueueSubscribers) notify(count int) {
	r.mu.Lock()
	subs := r.subs
	r.mu.Unlock()
	for _, s := range subs {
		s.fn(count)
	}
}

// closeNotifier is a fire-once callback registry.
//
// At most one firing ever occurs. Subscribers registered before the firing
// are invoked exactly once, in registration order; registering afterwards
// fails with ErrAlreadyFired.
type closeNotifier struct {
	mu    sync.Mutex
	fired bool
	subs  []func()
	done  chan struct{}
}

func (n *closeNotifier) init() {
	n.done = make(chan struct{})
}

func (n *closeNotifier) add(fn func()) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fired {
		return ErrAlreadyFired
	}
	n.subs = append(n.subs, fn)
	return nil
}

// fire delivers the notification. Returns false if it had already fired.
func (n *closeNotifier) fire() bool {
	n.mu.Lock()
	if n.fired {
		n.mu.Unlock()
		return false
	}
	n.fired = true
	subs := n.subs
	n.subs = nil
	close(n.done)
	n.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return true
}
