package locus

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/biointerval/circular"
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/hts/sam"
)

// RecordSource is a coordinate-sorted stream of alignments.
// bamprovider.Iterator satisfies it.
type RecordSource interface {
	Scan() bool
	Record() *sam.Record
	Err() error
	Close() error
}

// Opts controls a Walker.
type Opts struct {
	// Intervals, if non-nil, restricts the walk to the positions it covers.
	// It must share the walker's sequence dictionary.  Reads touching none of
	// those positions are dropped early.  If nil, every position is of
	// interest.
	Intervals *interval.List
	// EmitUncoveredLoci causes positions of interest without any
	// (filter-passing) coverage to be reported with an empty record list.
	EmitUncoveredLoci bool
	// MinBaseQuality is the smallest base quality counted at a locus.
	MinBaseQuality int
	// MinMapQ is the smallest mapping quality counted at a locus.
	MinMapQ int
	// Filters drop whole records before accumulation.  An empty list keeps
	// every record.
	Filters []RecordFilter
}

// DefaultOpts walks the whole genome, reports uncovered loci, counts every
// base, and drops secondary and duplicate alignments.
var DefaultOpts = Opts{
	EmitUncoveredLoci: true,
	MinBaseQuality:    math.MinInt32,
	MinMapQ:           math.MinInt32,
	Filters:           DefaultFilters,
}

// Walker owns a record source and hands it to exactly one Iterator.
type Walker struct {
	header  *sam.Header
	src     RecordSource
	mask    Mask
	filters []RecordFilter
	opts    Opts
	used    bool
}

// NewWalker creates a Walker over src, whose records must be sorted by
// coordinate and reference header.  A header declaring any sort order other
// than coordinate is rejected; an unsorted or unknown order is accepted with
// a warning.
func NewWalker(header *sam.Header, src RecordSource, opts Opts) (*Walker, error) {
	switch header.SortOrder {
	case sam.Coordinate:
	case sam.UnknownOrder, sam.Unsorted:
		log.Printf("locus.NewWalker: input sort order is %v, assuming coordinate order", header.SortOrder)
	default:
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("locus.NewWalker: input must be coordinate sorted, not %v", header.SortOrder))
	}
	w := &Walker{header: header, src: src, opts: opts}
	w.filters = append(w.filters, opts.Filters...)
	if opts.Intervals != nil {
		if !interval.SameDictionary(header, opts.Intervals.Header()) {
			return nil, errors.E(errors.Precondition,
				"locus.NewWalker: interval list and alignments have different sequence dictionaries")
		}
		w.mask = IntervalListMask(opts.Intervals)
		w.filters = append(w.filters, IntervalFilter(interval.NewUnion(opts.Intervals)))
	} else {
		w.mask = WholeGenomeMask(header)
	}
	return w, nil
}

// Iterator returns the iterator over the walker's loci.  It may be called
// only once; later calls return an errors.Invalid error.
func (w *Walker) Iterator() (*Iterator, error) {
	if w.used {
		return nil, errors.E(errors.Invalid, "locus.Walker: Iterator called more than once")
	}
	w.used = true
	return &Iterator{
		refs:    w.header.Refs(),
		src:     w.src,
		mask:    w.mask,
		filters: w.filters,
		opts:    w.opts,
		lastRef: 0,
		lastPos: 0,
	}, nil
}

// Iterator yields one Info per position of interest, in coordinate order.
// Thread compatible.
type Iterator struct {
	refs    []*sam.Reference
	src     RecordSource
	mask    Mask
	filters []RecordFilter
	opts    Opts

	// accumulator holds the loci touched by reads seen so far whose coverage
	// may still grow.  Its head is at the start of the most recent read.
	accumulator circular.Deque[*Info]
	// complete holds finished loci waiting to be returned.
	complete circular.Deque[*Info]

	// lastRef:lastPos is the last locus moved out of the accumulator or
	// emitted as uncovered.
	lastRef, lastPos int

	pending         *sam.Record
	srcDone         bool
	finishedAligned bool
	// alignment start of the last accepted record, for order checks.
	prevRef, prevPos int

	cur *Info
	err error
}

// Scan advances to the next locus.  It returns false at the end of the walk
// or on error; see Err.
func (it *Iterator) Scan() bool {
	if it.err != nil {
		return false
	}
	for it.complete.Len() == 0 && (it.accumulator.Len() > 0 || it.hasMoreRecords() || it.hasRemainingMaskBases()) {
		info := it.next()
		if it.err != nil {
			return false
		}
		if info != nil {
			it.complete.PushFront(info)
		}
	}
	if it.complete.Len() == 0 {
		return false
	}
	it.cur = it.complete.PopFront()
	return true
}

// Info returns the locus Scan moved to.
func (it *Iterator) Info() *Info { return it.cur }

// Err returns the error, if any, that stopped the walk.
func (it *Iterator) Err() error { return it.err }

// Close closes the record source and returns the first error of the walk.
func (it *Iterator) Close() error {
	err := it.src.Close()
	if it.err != nil {
		return it.err
	}
	return err
}

// peek returns the next record that passes the filters without consuming
// it, or nil at the end of the source.
func (it *Iterator) peek() *sam.Record {
	if it.pending != nil || it.srcDone {
		return it.pending
	}
outer:
	for it.src.Scan() {
		rec := it.src.Record()
		for _, f := range it.filters {
			if f(rec) {
				continue outer
			}
		}
		it.pending = rec
		return rec
	}
	it.srcDone = true
	if err := it.src.Err(); err != nil && it.err == nil {
		it.err = errors.E(err, "locus.Iterator: reading records")
	}
	return nil
}

func (it *Iterator) hasMoreRecords() bool {
	return !it.finishedAligned && it.peek() != nil
}

// hasRemainingMaskBases reports whether the mask selects any position after
// the last emitted locus.
func (it *Iterator) hasRemainingMaskBases() bool {
	if !it.opts.EmitUncoveredLoci {
		return false
	}
	maxSeq := it.mask.MaxSequenceIndex()
	if it.lastRef < maxSeq {
		return true
	}
	return it.lastRef == maxSeq && it.lastPos < it.mask.NextPosition(it.lastRef, it.lastPos+1)
}

// next produces at most one locus.  A nil result without an error means
// another call is needed.
func (it *Iterator) next() *Info {
	for it.complete.Len() == 0 && it.hasMoreRecords() {
		rec := it.pending
		refID := rec.Ref.ID()
		if refID < 0 {
			// Unplaced reads sort last; nothing aligned follows.
			it.finishedAligned = true
			continue
		}
		if rec.Flags&sam.Unmapped != 0 {
			it.pending = nil
			continue
		}
		if refID >= len(it.refs) {
			it.err = errors.E(errors.Invalid,
				fmt.Sprintf("locus.Iterator: record %s has reference index %d outside the dictionary", rec.Name, refID))
			return nil
		}
		start := rec.Pos + 1
		if refID < it.prevRef || (refID == it.prevRef && start < it.prevPos) {
			it.err = errors.E(errors.Invalid,
				fmt.Sprintf("locus.Iterator: record %s at %s:%d arrived after %d:%d; input is not coordinate sorted",
					rec.Name, rec.Ref.Name(), start, it.prevRef, it.prevPos))
			return nil
		}
		it.prevRef, it.prevPos = refID, start

		for it.accumulator.Len() > 0 && it.accumulator.Front().before(refID, start) {
			head := it.accumulator.Front()
			it.populateCompleteQueue(refID, start)
			if it.complete.Len() > 0 {
				// rec stays pending until the flushed loci have been returned.
				return it.complete.PopFront()
			}
			if it.accumulator.Len() > 0 && head == it.accumulator.Front() {
				it.err = errors.E(errors.Integrity,
					fmt.Sprintf("locus.Iterator: stuck in infinite loop at %s:%d", head.SequenceName(), head.Pos))
				return nil
			}
		}
		if it.accumulator.Len() > 0 {
			if head := it.accumulator.Front(); head.SequenceIndex() != refID || head.Pos != start {
				it.err = errors.E(errors.Integrity,
					fmt.Sprintf("locus.Iterator: accumulator head %s:%d is not aligned with record %s at %s:%d",
						head.SequenceName(), head.Pos, rec.Name, rec.Ref.Name(), start))
				return nil
			}
		}
		it.accumulate(rec, refID)
		it.pending = nil
	}

	if it.complete.Len() == 0 && !it.hasMoreRecords() {
		for it.accumulator.Len() > 0 {
			it.populateCompleteQueue(math.MaxInt32, math.MaxInt32)
			if it.complete.Len() > 0 {
				return it.complete.PopFront()
			}
		}
	}
	if it.complete.Len() > 0 {
		return it.complete.PopFront()
	}
	if it.opts.EmitUncoveredLoci {
		return it.nextUncovered(it.mask.MaxSequenceIndex(), it.mask.MaxPosition()+1)
	}
	return nil
}

// accumulate adds the aligned bases of rec to the accumulator.
func (it *Iterator) accumulate(rec *sam.Record, refID int) {
	ref := it.refs[refID]
	alignStart := rec.Pos + 1
	mapqOK := int(rec.MapQ) >= it.opts.MinMapQ
	for _, b := range AlignmentBlocks(rec) {
		for i := 0; i < b.Length; i++ {
			readOffset := b.ReadStart + i - 1
			refOffset := b.RefStart + i - alignStart
			for j := it.accumulator.Len(); j <= refOffset; j++ {
				it.accumulator.PushBack(&Info{Ref: ref, Pos: alignStart + j})
			}
			if mapqOK && int(baseQuality(rec, readOffset)) >= it.opts.MinBaseQuality {
				it.accumulator.At(refOffset).add(rec, readOffset)
			}
		}
	}
}

// populateCompleteQueue moves at most one locus before stopRef:stopPos into
// the complete queue.  With EmitUncoveredLoci, an uncovered position of
// interest preceding the accumulator head is emitted first.  Covered loci the
// mask excludes are dropped.
func (it *Iterator) populateCompleteQueue(stopRef, stopPos int) {
	for it.accumulator.Len() > 0 && len(it.accumulator.Front().Records) == 0 &&
		it.accumulator.Front().before(stopRef, stopPos) {
		it.accumulator.PopFront()
	}
	if it.accumulator.Len() == 0 {
		return
	}
	info := it.accumulator.Front()
	if !info.before(stopRef, stopPos) {
		return
	}
	seq, pos := info.SequenceIndex(), info.Pos
	if it.opts.EmitUncoveredLoci {
		if zero := it.nextUncovered(seq, pos); zero != nil {
			it.complete.PushBack(zero)
			return
		}
	}
	it.accumulator.PopFront()
	if it.mask.Get(seq, pos) {
		it.complete.PushBack(info)
	}
	it.lastRef, it.lastPos = seq, pos
}

// nextUncovered returns the next position of interest after the last
// emitted locus and before stopRef:stopPos, as an empty Info, and records it
// as emitted.  It returns nil if there is none.
func (it *Iterator) nextUncovered(stopRef, stopPos int) *Info {
	for it.lastRef <= stopRef && it.lastRef <= it.mask.MaxSequenceIndex() {
		if it.lastRef == stopRef && it.lastPos+1 >= stopPos {
			return nil
		}
		next := it.mask.NextPosition(it.lastRef, it.lastPos+1)
		switch {
		case next == -1:
			if it.lastRef == stopRef {
				it.lastPos = stopPos
				return nil
			}
			it.lastRef++
			it.lastPos = 0
		case it.lastRef < stopRef || next < stopPos:
			if it.lastRef >= len(it.refs) {
				return nil
			}
			it.lastPos = next
			return &Info{Ref: it.refs[it.lastRef], Pos: next}
		default:
			return nil
		}
	}
	return nil
}
