package interval

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/biointerval/intervaltree"
)

// objectSet is an insertion-ordered set.
type objectSet[T comparable] struct {
	items []T
	seen  map[T]struct{}
}

func (s *objectSet[T]) add(obj T) {
	if _, ok := s.seen[obj]; ok {
		return
	}
	s.seen[obj] = struct{}{}
	s.items = append(s.items, obj)
}

// OverlapDetector indexes objects by genomic interval and answers "which
// objects overlap this interval" queries.
//
// Indexed intervals are trimmed by lhsBuffer bases at both ends, and query
// intervals by rhsBuffer; an interval that becomes empty after trimming is
// not indexed (or, as a query, matches nothing).  Several objects may share
// the same interval.
//
// An OverlapDetector is not safe for concurrent mutation.
type OverlapDetector[T comparable] struct {
	lhsBuffer, rhsBuffer int
	trees                map[string]*intervaltree.Tree[*objectSet[T]]
	// sequence names in order of first use, for deterministic All().
	seqs []string
}

// NewOverlapDetector creates an empty detector with the given trim amounts
// for indexed and query intervals.
func NewOverlapDetector[T comparable](lhsBuffer, rhsBuffer int) *OverlapDetector[T] {
	return &OverlapDetector[T]{
		lhsBuffer: lhsBuffer,
		rhsBuffer: rhsBuffer,
		trees:     map[string]*intervaltree.Tree[*objectSet[T]]{},
	}
}

// Add indexes obj under iv.
func (d *OverlapDetector[T]) Add(obj T, iv Interval) {
	start, end := iv.start+d.lhsBuffer, iv.end-d.lhsBuffer
	if start > end {
		return
	}
	tree, ok := d.trees[iv.seq]
	if !ok {
		tree = intervaltree.New[*objectSet[T]]()
		d.trees[iv.seq] = tree
		d.seqs = append(d.seqs, iv.seq)
	}
	// Tree keys are half-open.
	e, ok := tree.Find(start, end+1)
	if !ok {
		e.Value = &objectSet[T]{seen: map[T]struct{}{}}
		if _, err := tree.Put(start, end+1, e.Value); err != nil {
			log.Panicf("OverlapDetector.Add: %v", err)
		}
	}
	e.Value.add(obj)
}

// AddAll indexes objs[i] under ivs[i] for every i.  The slices must have the
// same length.
func (d *OverlapDetector[T]) AddAll(objs []T, ivs []Interval) error {
	if len(objs) != len(ivs) {
		return errors.E(errors.Invalid,
			fmt.Sprintf("OverlapDetector.AddAll: %d objects but %d intervals", len(objs), len(ivs)))
	}
	for i := range objs {
		d.Add(objs[i], ivs[i])
	}
	return nil
}

// Overlaps returns the distinct objects whose (trimmed) interval intersects
// the (trimmed) query, ordered by indexed interval and then by insertion.
func (d *OverlapDetector[T]) Overlaps(iv Interval) []T {
	var result []T
	d.visitOverlaps(iv, func(set *objectSet[T]) bool {
		result = append(result, set.items...)
		return true
	})
	if len(result) < 2 {
		return result
	}
	seen := make(map[T]struct{}, len(result))
	n := 0
	for _, obj := range result {
		if _, ok := seen[obj]; ok {
			continue
		}
		seen[obj] = struct{}{}
		result[n] = obj
		n++
	}
	return result[:n]
}

// OverlapsAny reports whether any object overlaps the query.
func (d *OverlapDetector[T]) OverlapsAny(iv Interval) bool {
	found := false
	d.visitOverlaps(iv, func(*objectSet[T]) bool {
		found = true
		return false
	})
	return found
}

func (d *OverlapDetector[T]) visitOverlaps(iv Interval, fn func(*objectSet[T]) bool) {
	tree, ok := d.trees[iv.seq]
	if !ok {
		return
	}
	start, end := iv.start+d.rhsBuffer, iv.end-d.rhsBuffer
	if start > end {
		return
	}
	it := tree.Overlappers(start, end+1)
	for it.Next() {
		if !fn(it.Entry().Value) {
			return
		}
	}
	if err := it.Err(); err != nil {
		log.Panicf("OverlapDetector: %v", err)
	}
}

// All returns every distinct indexed object, grouped by sequence in order of
// first use and then by interval.
func (d *OverlapDetector[T]) All() []T {
	var result []T
	seen := map[T]struct{}{}
	for _, seq := range d.seqs {
		vals := d.trees[seq].Values()
		for vals.Next() {
			for _, obj := range vals.Value().items {
				if _, ok := seen[obj]; !ok {
					seen[obj] = struct{}{}
					result = append(result, obj)
				}
			}
		}
	}
	return result
}
