package interval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// NamePolicy selects how the names of merged intervals are combined.
type NamePolicy uint8

const (
	// ConcatenateNames joins the distinct names of the merged intervals with
	// "|", in interval order.
	ConcatenateNames NamePolicy = iota
	// FirstName keeps only the name of the first named interval.
	FirstName
)

// List is an ordered collection of intervals together with the SAM header
// that carries their sequence dictionary, comments and program records.
//
// Operations that return a *List never modify their receiver or arguments.
type List struct {
	header    *sam.Header
	intervals []Interval
}

// NewList creates an empty list over the given header.  The list takes
// ownership of the header.
func NewList(header *sam.Header) *List {
	if header == nil {
		log.Panicf("interval.NewList: nil header")
	}
	return &List{header: header}
}

// Header returns the list's header.
func (l *List) Header() *sam.Header { return l.header }

// Intervals returns the list's intervals.  The caller must not modify the
// returned slice.
func (l *List) Intervals() []Interval { return l.intervals }

// Len returns the number of intervals.
func (l *List) Len() int { return len(l.intervals) }

// Add appends iv.
func (l *List) Add(iv Interval) { l.intervals = append(l.intervals, iv) }

// AddAll appends ivs.
func (l *List) AddAll(ivs []Interval) { l.intervals = append(l.intervals, ivs...) }

// Copy returns a deep copy of l.
func (l *List) Copy() *List {
	return &List{
		header:    l.header.Clone(),
		intervals: append([]Interval(nil), l.intervals...),
	}
}

// withHeader returns an empty list over a copy of l's header with the given
// sort order.
func (l *List) withHeader(order sam.SortOrder) *List {
	h := l.header.Clone()
	h.SortOrder = order
	return &List{header: h}
}

// sequenceIndex maps sequence names to their position in the dictionary.
func sequenceIndex(h *sam.Header) map[string]int {
	refs := h.Refs()
	m := make(map[string]int, len(refs))
	for i, ref := range refs {
		m[ref.Name()] = i
	}
	return m
}

// Sorted returns a copy of l whose intervals are ordered by dictionary
// index, start, end, strand (+ first) and name (unnamed last).  Intervals on
// sequences missing from the dictionary sort first.
func (l *List) Sorted() *List {
	out := l.withHeader(sam.Coordinate)
	out.intervals = append([]Interval(nil), l.intervals...)
	idx := sequenceIndex(l.header)
	seqIdx := func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return -1
	}
	sort.SliceStable(out.intervals, func(i, j int) bool {
		a, b := out.intervals[i], out.intervals[j]
		if a.seq != b.seq {
			return seqIdx(a.seq) < seqIdx(b.seq)
		}
		return compareWithinSequence(a, b) < 0
	})
	return out
}

// Uniqued returns a sorted copy of l in which overlapping and abutting
// intervals have been merged; see UniqueIntervals.
func (l *List) Uniqued(names NamePolicy) *List {
	out := l.withHeader(sam.Coordinate)
	out.intervals = l.UniqueIntervals(names)
	return out
}

// mergeItem orders the members of a merge group.
type mergeItem Interval

func (m mergeItem) Compare(c llrb.Comparable) int {
	return Interval(m).Compare(Interval(c.(mergeItem)))
}

// UniqueIntervals sorts l's intervals and merges every run of intervals that
// overlap or abut into one interval spanning the run.  A merged interval
// takes the sequence and strand of the smallest member and a name chosen by
// names.  l is not modified.
func (l *List) UniqueIntervals(names NamePolicy) []Interval {
	sorted := l.Sorted().intervals
	var (
		result  []Interval
		group   llrb.Tree
		current Interval
	)
	for i, next := range sorted {
		if i == 0 {
			group.Insert(mergeItem(next))
			current = next
			continue
		}
		if current.Intersects(next) || current.Abuts(next) {
			group.Insert(mergeItem(next))
			if next.end > current.end {
				current.end = next.end
			}
			continue
		}
		result = append(result, merge(&group, names))
		group = llrb.Tree{}
		group.Insert(mergeItem(next))
		current = next
	}
	if group.Len() > 0 {
		result = append(result, merge(&group, names))
	}
	return result
}

func merge(group *llrb.Tree, names NamePolicy) Interval {
	first := Interval(group.Min().(mergeItem))
	merged := Interval{seq: first.seq, start: first.start, end: first.end, strand: first.strand}
	var (
		memberNames []string
		seen        = map[string]bool{}
	)
	group.Do(func(c llrb.Comparable) bool {
		iv := Interval(c.(mergeItem))
		if iv.start < merged.start {
			merged.start = iv.start
		}
		if iv.end > merged.end {
			merged.end = iv.end
		}
		if iv.name != "" && !seen[iv.name] {
			seen[iv.name] = true
			memberNames = append(memberNames, iv.name)
		}
		return false
	})
	if len(memberNames) > 0 {
		if names == ConcatenateNames {
			merged.name = strings.Join(memberNames, "|")
		} else {
			merged.name = memberNames[0]
		}
	}
	return merged
}

// BaseCount returns the summed length of the intervals, counting overlapping
// bases once per interval.
func (l *List) BaseCount() int64 { return CountBases(l.intervals) }

// UniqueBaseCount returns the number of distinct positions covered.
func (l *List) UniqueBaseCount() int64 { return CountBases(l.UniqueIntervals(FirstName)) }

// Padded returns a copy of l with every interval widened by before bases at
// its start and after bases at its end, clamped to the sequence bounds.
// Intervals that become empty are dropped.
func (l *List) Padded(before, after int) *List {
	out := l.withHeader(l.header.SortOrder)
	lengths := map[string]int{}
	for _, ref := range l.header.Refs() {
		lengths[ref.Name()] = ref.Len()
	}
	for _, iv := range l.intervals {
		padded, ok := iv.Pad(before, after)
		if !ok {
			continue
		}
		if padded.start < 1 {
			padded.start = 1
		}
		if n, ok := lengths[padded.seq]; ok && padded.end > n {
			padded.end = n
		}
		if padded.start > padded.end {
			continue
		}
		out.intervals = append(out.intervals, padded)
	}
	return out
}

// AddProgram records a program invocation in the header.  The record's ID is
// the smallest positive integer not already used as a program ID.
func (l *List) AddProgram(name, commandLine string) error {
	used := map[string]bool{}
	for _, p := range l.header.Progs() {
		used[p.UID()] = true
	}
	id := 1
	for used[strconv.Itoa(id)] {
		id++
	}
	return l.header.AddProgram(sam.NewProgram(strconv.Itoa(id), name, commandLine, "", ""))
}

// AddComment appends a @CO line to the header.
func (l *List) AddComment(comment string) {
	l.header.Comments = append(l.header.Comments, comment)
}

// SameDictionary reports whether a and b list the same sequences, with the
// same lengths, in the same order.
func SameDictionary(a, b *sam.Header) bool {
	ra, rb := a.Refs(), b.Refs()
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if ra[i].Name() != rb[i].Name() || ra[i].Len() != rb[i].Len() {
			return false
		}
	}
	return true
}

// checkDictionaries returns an errors.Precondition error unless every list
// shares the first list's sequence dictionary.
func checkDictionaries(op string, lists []*List) error {
	for i := 1; i < len(lists); i++ {
		if !SameDictionary(lists[0].header, lists[i].header) {
			return errors.E(errors.Precondition,
				fmt.Sprintf("interval.%s: list %d has a different sequence dictionary than list 0", op, i))
		}
	}
	return nil
}
