package interval

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/biointerval/circular"
)

// ScatterMode selects how Scatter divides a list.
type ScatterMode uint8

const (
	// IntervalSubdivision cuts intervals at exact base boundaries so that
	// every piece but the last covers floor(bases/n) bases.
	IntervalSubdivision ScatterMode = iota
	// BalancingWithoutIntervalSubdivision never cuts an interval.  The
	// target piece size is at least the widest interval, and an interval
	// that does not fit starts the next piece, so fewer than n pieces may be
	// produced.
	BalancingWithoutIntervalSubdivision
	// BalancingWithoutIntervalSubdivisionWithOverflow is like
	// BalancingWithoutIntervalSubdivision, but keeps growing a piece past the
	// target while the target is below the mean size of the pieces still to
	// be produced.
	BalancingWithoutIntervalSubdivisionWithOverflow
)

var scatterModeNames = []string{
	"INTERVAL_SUBDIVISION",
	"BALANCING_WITHOUT_INTERVAL_SUBDIVISION",
	"BALANCING_WITHOUT_INTERVAL_SUBDIVISION_WITH_OVERFLOW",
}

func (m ScatterMode) String() string {
	if int(m) < len(scatterModeNames) {
		return scatterModeNames[m]
	}
	return fmt.Sprintf("ScatterMode(%d)", m)
}

// ParseScatterMode parses the String form of a ScatterMode.
func ParseScatterMode(s string) (ScatterMode, error) {
	for i, name := range scatterModeNames {
		if s == name {
			return ScatterMode(i), nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("interval: unknown scatter mode %q", s))
}

func (m ScatterMode) idealSplitLength(unique []Interval, n int) int64 {
	split := CountBases(unique) / int64(n)
	if split < 1 {
		split = 1
	}
	if m == IntervalSubdivision {
		return split
	}
	for _, iv := range unique {
		if int64(iv.Length()) > split {
			split = int64(iv.Length())
		}
	}
	return split
}

// Scatter divides the unique positions of l, in order, into at most n
// lists of about equal base count.  Every list is uniqued.  The last list
// takes whatever remains, so it may be larger or smaller than the others; an
// empty last list is omitted.  n < 1 is an errors.Invalid error.
func (o SetOps) Scatter(l *List, n int, mode ScatterMode) ([]*List, error) {
	if n < 1 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("interval.Scatter: scatter count %d < 1", n))
	}
	uniqued := l.Uniqued(o.Names)
	ideal := mode.idealSplitLength(uniqued.intervals, n)
	log.Debug.Printf("interval.Scatter: %s into %d, ideal split length %d", mode, n, ideal)

	var (
		pieces     []*List
		queue      circular.Deque[Interval]
		running    = uniqued.withHeader(uniqued.header.SortOrder)
		runningLen int64
		basesLeft  = uniqued.BaseCount()
	)
	for _, iv := range uniqued.intervals {
		queue.PushBack(iv)
	}
	closePiece := func() {
		basesLeft -= runningLen
		pieces = append(pieces, running.Uniqued(o.Names))
		running = uniqued.withHeader(uniqued.header.SortOrder)
		runningLen = 0
	}
	add := func(iv Interval) {
		running.Add(iv)
		runningLen += int64(iv.Length())
	}
	for queue.Len() > 0 && len(pieces) < n-1 {
		iv := queue.PopFront()
		projected := runningLen + int64(iv.Length())
		// Mean size of the pieces still to come, counting the running one.
		remaining := float64(basesLeft-runningLen) / float64(n-len(pieces)-1)

		fits := projected <= ideal
		if mode == BalancingWithoutIntervalSubdivisionWithOverflow && float64(ideal) < remaining {
			fits = true
		}
		switch {
		case fits:
			add(iv)
		case mode == IntervalSubdivision:
			consume := int(ideal - runningLen)
			left, right := iv, iv
			left.end = iv.start + consume - 1
			right.start = iv.start + consume
			add(left)
			queue.PushFront(right)
		case running.Len() == 0:
			add(iv)
		default:
			queue.PushFront(iv)
			closePiece()
		}
		if runningLen >= ideal {
			closePiece()
		}
	}
	for queue.Len() > 0 {
		add(queue.PopFront())
	}
	if running.Len() > 0 {
		pieces = append(pieces, running.Uniqued(o.Names))
	}
	return pieces, nil
}
