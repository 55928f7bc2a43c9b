// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package circular

// Deque is a double-ended queue backed by a power-of-2-sized circular buffer.
// It grows as needed and never shrinks, so a window that slides along a
// sorted stream settles at the size of its widest point.
//
// The zero value is an empty deque ready for use.
type Deque[T any] struct {
	buf []T
	// head is the buffer index of element 0.
	head int
	n    int
}

// Len returns the number of elements in the deque.
func (d *Deque[T]) Len() int { return d.n }

func (d *Deque[T]) grow() {
	newSize := 16
	if len(d.buf) > 0 {
		newSize = NextExp2(len(d.buf))
	}
	newBuf := make([]T, newSize)
	mask := len(d.buf) - 1
	for i := 0; i < d.n; i++ {
		newBuf[i] = d.buf[(d.head+i)&mask]
	}
	d.buf = newBuf
	d.head = 0
}

// PushBack appends v after the last element.
func (d *Deque[T]) PushBack(v T) {
	if d.n == len(d.buf) {
		d.grow()
	}
	d.buf[(d.head+d.n)&(len(d.buf)-1)] = v
	d.n++
}

// PushFront inserts v before the first element.
func (d *Deque[T]) PushFront(v T) {
	if d.n == len(d.buf) {
		d.grow()
	}
	d.head = (d.head - 1) & (len(d.buf) - 1)
	d.buf[d.head] = v
	d.n++
}

// Front returns the first element.  It panics if the deque is empty.
func (d *Deque[T]) Front() T {
	if d.n == 0 {
		panic("circular.Deque.Front: empty deque")
	}
	return d.buf[d.head]
}

// Back returns the last element.  It panics if the deque is empty.
func (d *Deque[T]) Back() T {
	if d.n == 0 {
		panic("circular.Deque.Back: empty deque")
	}
	return d.buf[(d.head+d.n-1)&(len(d.buf)-1)]
}

// At returns the i'th element, counting from the front.
func (d *Deque[T]) At(i int) T {
	if i < 0 || i >= d.n {
		panic("circular.Deque.At: index out of range")
	}
	return d.buf[(d.head+i)&(len(d.buf)-1)]
}

// PopFront removes and returns the first element.  It panics if the deque is
// empty.
func (d *Deque[T]) PopFront() T {
	v := d.Front()
	var zero T
	d.buf[d.head] = zero // don't pin the element for the GC
	d.head = (d.head + 1) & (len(d.buf) - 1)
	d.n--
	return v
}

// PopBack removes and returns the last element.  It panics if the deque is
// empty.
func (d *Deque[T]) PopBack() T {
	v := d.Back()
	var zero T
	d.buf[(d.head+d.n-1)&(len(d.buf)-1)] = zero
	d.n--
	return v
}

// Clear removes all elements while keeping the allocated buffer.
func (d *Deque[T]) Clear() {
	var zero T
	for i := 0; i < d.n; i++ {
		d.buf[(d.head+i)&(len(d.buf)-1)] = zero
	}
	d.head = 0
	d.n = 0
}
