package intervaltree

import (
	"github.com/grailbio/base/errors"
)

// handle names a node slot at a particular generation.
type handle struct {
	id  nodeID
	gen uint32
}

func (t *Tree[V]) handle(id nodeID) handle {
	if id == nilID {
		return handle{}
	}
	return handle{id: id, gen: t.nodes[id].gen}
}

// removed reports whether the entry h referred to is no longer in the tree.
func (t *Tree[V]) removed(h handle) bool {
	nd := &t.nodes[h.id]
	return nd.gen != h.gen || nd.size == 0
}

type iterKind uint8

const (
	forward iterKind = iota
	reverse
	overlapping
)

// Iterator walks tree entries.  Typical usage:
//
//   it := tree.Overlappers(start, end)
//   for it.Next() {
//     e := it.Entry()
//     ...
//   }
//   if err := it.Err(); err != nil {
//     ...
//   }
//
// An Iterator is single-use.  Forward and reverse iterators tolerate removal
// of entries (including the upcoming one, in which case they resume from its
// key); an overlap iterator whose upcoming entry is removed stops with an
// error.
type Iterator[V any] struct {
	t    *Tree[V]
	kind iterKind
	// query range, for overlapping iterators
	start, end int

	next handle
	// key of next, for resuming after it is removed
	nextStart, nextEnd int

	last handle
	cur  Entry[V]
	err  error
}

func (t *Tree[V]) newIterator(kind iterKind, first nodeID) *Iterator[V] {
	it := &Iterator[V]{t: t, kind: kind}
	it.setNext(first)
	return it
}

func (it *Iterator[V]) setNext(id nodeID) {
	it.next = it.t.handle(id)
	if id != nilID {
		it.nextStart, it.nextEnd = it.t.nodes[id].start, it.t.nodes[id].end
	}
}

// Iterator returns an iterator over all entries in ascending key order.
func (t *Tree[V]) Iterator() *Iterator[V] {
	return t.newIterator(forward, t.min())
}

// IteratorFrom returns an ascending iterator starting at the smallest key >=
// (start, end).
func (t *Tree[V]) IteratorFrom(start, end int) *Iterator[V] {
	return t.newIterator(forward, t.minAtLeast(start, end))
}

// ReverseIterator returns an iterator over all entries in descending key
// order.
func (t *Tree[V]) ReverseIterator() *Iterator[V] {
	return t.newIterator(reverse, t.max())
}

// ReverseIteratorFrom returns a descending iterator starting at the largest
// key <= (start, end).
func (t *Tree[V]) ReverseIteratorFrom(start, end int) *Iterator[V] {
	return t.newIterator(reverse, t.maxAtMost(start, end))
}

// Overlappers returns an iterator over the entries overlapping [start, end),
// in ascending key order.
func (t *Tree[V]) Overlappers(start, end int) *Iterator[V] {
	it := &Iterator[V]{t: t, kind: overlapping, start: start, end: end}
	it.setNext(t.minOverlapper(start, end))
	return it
}

// Next advances to the next entry.  It returns false when the iteration is
// done or failed; see Err.
func (it *Iterator[V]) Next() bool {
	if it.err != nil || it.next.id == nilID {
		return false
	}
	t := it.t
	if t.removed(it.next) {
		switch it.kind {
		case forward:
			it.setNext(t.minAtLeast(it.nextStart, it.nextEnd))
		case reverse:
			it.setNext(t.maxAtMost(it.nextStart, it.nextEnd))
		default:
			it.err = errors.E(errors.Precondition, "intervaltree: upcoming overlapper was removed during iteration")
			return false
		}
		if it.next.id == nilID {
			return false
		}
	}
	id := it.next.id
	it.last = it.next
	it.cur = t.entry(id)
	switch it.kind {
	case forward:
		it.setNext(t.successor(id))
	case reverse:
		it.setNext(t.predecessor(id))
	default:
		it.setNext(t.nextOverlapper(id, it.start, it.end))
	}
	return true
}

// Entry returns the entry Next moved to.
func (it *Iterator[V]) Entry() Entry[V] { return it.cur }

// Err returns the error, if any, that stopped the iteration.
func (it *Iterator[V]) Err() error { return it.err }

// Remove deletes the entry most recently returned by Next from the tree.
// Removing the same entry twice is an errors.Precondition error.
func (it *Iterator[V]) Remove() error {
	if it.last.id == nilID {
		return errors.E(errors.Invalid, "intervaltree: Remove called before Next")
	}
	if it.t.removed(it.last) {
		return errors.E(errors.Precondition, "intervaltree: entry was already removed")
	}
	return it.t.remove(it.last.id)
}

// ValueIterator yields only the values of an Iterator.
type ValueIterator[V any] struct {
	it *Iterator[V]
}

// Values returns an iterator over all values in ascending key order.
func (t *Tree[V]) Values() *ValueIterator[V] {
	return &ValueIterator[V]{it: t.Iterator()}
}

// OverlappingValues returns an iterator over the values of the entries
// overlapping [start, end).
func (t *Tree[V]) OverlappingValues(start, end int) *ValueIterator[V] {
	return &ValueIterator[V]{it: t.Overlappers(start, end)}
}

// Next advances to the next value.
func (vi *ValueIterator[V]) Next() bool { return vi.it.Next() }

// Value returns the current value.
func (vi *ValueIterator[V]) Value() V { return vi.it.cur.Value }

// Err returns the error, if any, that stopped the iteration.
func (vi *ValueIterator[V]) Err() error { return vi.it.err }
