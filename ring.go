// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chanq

// segment is a fixed-capacity Lamport ring.
//
// The channel's state lock serializes every access, so head and tail are
// plain counters. Indices grow monotonically and are masked on access;
// tail-head is the number of buffered elements.
type segment[T any] struct {
	head   uint64
	tail   uint64
	buffer []T
	mask   uint64
	next   *segment[T]
}

func newSegment[T any](capacity int) *segment[T] {
	n := uint64(roundToPow2(capacity))
	return &segment[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// push appends elem. Returns false if the segment is full.
func (s *segment[T]) push(elem T) bool {
	if s.tail-s.head > s.mask {
		return false
	}
	s.buffer[s.tail&s.mask] = elem
	s.tail++
	return true
}

// pop removes the oldest element. Returns false if the segment is empty.
func (s *segment[T]) pop() (T, bool) {
	var zero T
	if s.head == s.tail {
		return zero, false
	}
	elem := s.buffer[s.head&s.mask]
	s.buffer[s.head&s.mask] = zero
	s.head++
	return elem, true
}

func (s *segment[T]) peek() (T, bool) {
	if s.head == s.tail {
		var zero T
		return zero, false
	}
	return s.buffer[s.head&s.mask], true
}

func (s *segment[T]) empty() bool {
	return s.head == s.tail
}

func (s *segment[T]) reset() {
	s.head, s.tail, s.next = 0, 0, nil
}

// buffer is an unbounded FIFO made of chained segments.
//
// Producers append to the tail segment, consumers drain the head segment.
// A drained head segment is unlinked and kept as a spare for the next
// growth, so a channel oscillating around one segment boundary does not
// allocate.
type buffer[T any] struct {
	head    *segment[T]
	tail    *segment[T]
	spare   *segment[T]
	length  int
	segSize int
}

func (b *buffer[T]) init(segSize int) {
	b.segSize = roundToPow2(segSize)
	b.head = newSegment[T](b.segSize)
	b.tail = b.head
}

// push appends elem and returns the buffer length including elem.
func (b *buffer[T]) push(elem T) int {
	if !b.tail.push(elem) {
		next := b.spare
		b.spare = nil
		if next == nil {
			next = newSegment[T](b.segSize)
		}
		next.push(elem)
		b.tail.next = next
		b.tail = next
	}
	b.length++
	return b.length
}

func (b *buffer[T]) pop() (T, bool) {
	elem, ok := b.head.pop()
	if !ok {
		return elem, false
	}
	b.length--
	if b.head.empty() && b.head.next != nil {
		drained := b.head
		b.head = drained.next
		drained.reset()
		b.spare = drained
	}
	return elem, true
}

func (b *buffer[T]) peek() (T, bool) {
	return b.head.peek()
}

func (b *buffer[T]) len() int {
	return b.length
}
