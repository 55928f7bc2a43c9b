package interval

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// SetOps performs set algebra over interval lists.  Every operation that
// merges intervals names the merged intervals according to Names.
//
// All lists passed to one operation must share the same sequence
// dictionary; a mismatch is an errors.Precondition error.
type SetOps struct {
	Names NamePolicy
}

// Concatenate appends the intervals of lists, in order, without sorting or
// merging.  The result is marked unsorted and carries the first list's
// header.  An empty lists is an errors.Invalid error.
func (o SetOps) Concatenate(lists ...*List) (*List, error) {
	if len(lists) == 0 {
		return nil, errors.E(errors.Invalid, "interval.Concatenate: no lists")
	}
	if err := checkDictionaries("Concatenate", lists); err != nil {
		return nil, err
	}
	out := lists[0].withHeader(sam.Unsorted)
	for _, l := range lists {
		out.intervals = append(out.intervals, l.intervals...)
	}
	return out, nil
}

// Union returns the merged intervals covering every position covered by any
// of lists.
func (o SetOps) Union(lists ...*List) (*List, error) {
	cat, err := o.Concatenate(lists...)
	if err != nil {
		return nil, err
	}
	return cat.Uniqued(o.Names), nil
}

// Intersection returns the merged intervals covering the positions covered
// by both a and b.  Each piece is first named after the pair of intervals it
// came from ("<a> intersection <b>").
func (o SetOps) Intersection(a, b *List) (*List, error) {
	if err := checkDictionaries("Intersection", []*List{a, b}); err != nil {
		return nil, err
	}
	detector := NewOverlapDetector[Interval](0, 0)
	for _, iv := range a.intervals {
		detector.Add(iv, iv)
	}
	out := a.withHeader(sam.Unsorted)
	for _, j := range b.intervals {
		for _, i := range detector.Overlaps(j) {
			if x, ok := i.Intersect(j); ok {
				out.intervals = append(out.intervals, x)
			}
		}
	}
	return out.Uniqued(o.Names), nil
}

// IntersectAll folds Intersection over lists from left to right.
func (o SetOps) IntersectAll(lists ...*List) (*List, error) {
	if len(lists) == 0 {
		return nil, errors.E(errors.Invalid, "interval.IntersectAll: no lists")
	}
	if len(lists) == 1 {
		return lists[0].Uniqued(o.Names), nil
	}
	result := lists[0]
	for _, l := range lists[1:] {
		var err error
		if result, err = o.Intersection(result, l); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Invert returns the positions of the dictionary not covered by l, as one
// interval per gap.  Gaps are on the positive strand and are named
// "interval-1", "interval-2", ... in order.
func (o SetOps) Invert(l *List) *List {
	bySeq := map[string][]Interval{}
	for _, iv := range l.UniqueIntervals(o.Names) {
		bySeq[iv.seq] = append(bySeq[iv.seq], iv)
	}
	out := l.withHeader(sam.Coordinate)
	n := 0
	gap := func(seq string, start, end int) {
		n++
		out.intervals = append(out.intervals,
			Interval{seq: seq, start: start, end: end, strand: Positive, name: fmt.Sprintf("interval-%d", n)})
	}
	for _, ref := range l.header.Refs() {
		seq := ref.Name()
		lastCovered := 0
		for _, iv := range bySeq[seq] {
			if iv.start > lastCovered+1 {
				gap(seq, lastCovered+1, iv.start-1)
			}
			lastCovered = iv.end
		}
		if ref.Len() > lastCovered {
			gap(seq, lastCovered+1, ref.Len())
		}
	}
	return out
}

// Subtract returns the positions covered by a but not by b.
func (o SetOps) Subtract(a, b []*List) (*List, error) {
	ua, err := o.Union(a...)
	if err != nil {
		return nil, err
	}
	ub, err := o.Union(b...)
	if err != nil {
		return nil, err
	}
	return o.Intersection(ua, o.Invert(ub))
}

// Difference returns the positions covered by exactly one of a and b.
func (o SetOps) Difference(a, b []*List) (*List, error) {
	ab, err := o.Subtract(a, b)
	if err != nil {
		return nil, err
	}
	ba, err := o.Subtract(b, a)
	if err != nil {
		return nil, err
	}
	return o.Union(ab, ba)
}
