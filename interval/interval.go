package interval

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// Strand is the strand an interval lies on.
type Strand uint8

const (
	// Positive is the forward strand, written "+".
	Positive Strand = iota
	// Negative is the reverse strand, written "-".
	Negative
)

func (s Strand) String() string {
	if s == Negative {
		return "-"
	}
	return "+"
}

// ParseStrand parses "+" or "-".
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return Positive, nil
	case "-":
		return Negative, nil
	}
	return Positive, errors.E(errors.Invalid, fmt.Sprintf("interval: invalid strand %q", s))
}

// Interval is an immutable closed range [Start, End] of 1-based positions on
// a named sequence.  An empty name means the interval is unnamed.
type Interval struct {
	seq    string
	start  int
	end    int
	strand Strand
	name   string
}

// New creates an interval.  start > end is an errors.Invalid error.
func New(seq string, start, end int, strand Strand, name string) (Interval, error) {
	if start > end {
		return Interval{}, errors.E(errors.Invalid,
			fmt.Sprintf("interval: start %d exceeds end %d on %s", start, end, seq))
	}
	return Interval{seq: seq, start: start, end: end, strand: strand, name: name}, nil
}

// MustNew is like New, but panics on error.
func MustNew(seq string, start, end int, strand Strand, name string) Interval {
	iv, err := New(seq, start, end, strand, name)
	if err != nil {
		panic(err)
	}
	return iv
}

// Sequence returns the name of the sequence the interval lies on.
func (iv Interval) Sequence() string { return iv.seq }

// Start returns the first position, 1-based.
func (iv Interval) Start() int { return iv.start }

// End returns the last position, 1-based inclusive.
func (iv Interval) End() int { return iv.end }

// Strand returns the interval's strand.
func (iv Interval) Strand() Strand { return iv.strand }

// IsNegativeStrand reports whether the interval is on the reverse strand.
func (iv Interval) IsNegativeStrand() bool { return iv.strand == Negative }

// Name returns the interval name, or "" if it has none.
func (iv Interval) Name() string { return iv.name }

// HasName reports whether the interval is named.
func (iv Interval) HasName() bool { return iv.name != "" }

// Length returns the number of bases covered.
func (iv Interval) Length() int { return iv.end - iv.start + 1 }

// WithName returns a copy of iv carrying the given name.
func (iv Interval) WithName(name string) Interval {
	iv.name = name
	return iv
}

// Intersects reports whether iv and o share at least one position.
func (iv Interval) Intersects(o Interval) bool {
	return iv.seq == o.seq && iv.start <= o.end && o.start <= iv.end
}

// Abuts reports whether iv and o are adjacent on the same sequence, with no
// gap and no overlap.
func (iv Interval) Abuts(o Interval) bool {
	return iv.seq == o.seq && (iv.start == o.end+1 || o.start == iv.end+1)
}

// Contains reports whether every position of o lies within iv.
func (iv Interval) Contains(o Interval) bool {
	return iv.seq == o.seq && iv.start <= o.start && o.end <= iv.end
}

// Intersect returns the positions shared by iv and o.  The result keeps iv's
// strand; it is named "<iv> intersection <o>" when both are named, else it
// takes whichever name is present.  ok is false if they do not intersect.
func (iv Interval) Intersect(o Interval) (result Interval, ok bool) {
	if !iv.Intersects(o) {
		return Interval{}, false
	}
	result = Interval{seq: iv.seq, start: iv.start, end: iv.end, strand: iv.strand}
	if o.start > result.start {
		result.start = o.start
	}
	if o.end < result.end {
		result.end = o.end
	}
	switch {
	case iv.name != "" && o.name != "":
		result.name = iv.name + " intersection " + o.name
	case iv.name != "":
		result.name = iv.name
	default:
		result.name = o.name
	}
	return result, true
}

// Pad widens iv by before bases at the start and after bases at the end.
// Negative amounts shrink it.  ok is false if the result would be empty.
func (iv Interval) Pad(before, after int) (result Interval, ok bool) {
	result = iv
	result.start -= before
	result.end += after
	return result, result.start <= result.end
}

// Compare orders intervals by sequence name, start, end, strand (+ first)
// and name, with unnamed intervals after named ones.  Lists use
// sequence-dictionary order instead of sequence name; see List.Sorted.
func (iv Interval) Compare(o Interval) int {
	if c := strings.Compare(iv.seq, o.seq); c != 0 {
		return c
	}
	return compareWithinSequence(iv, o)
}

func compareWithinSequence(a, b Interval) int {
	switch {
	case a.start != b.start:
		return cmpInt(a.start, b.start)
	case a.end != b.end:
		return cmpInt(a.end, b.end)
	case a.strand != b.strand:
		return cmpInt(int(a.strand), int(b.strand))
	}
	return compareNames(a.name, b.name)
}

func compareNames(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String formats iv as "seq:start-end<TAB>strand<TAB>name", with "." for an
// absent name.
func (iv Interval) String() string {
	name := iv.name
	if name == "" {
		name = "."
	}
	return fmt.Sprintf("%s:%d-%d\t%s\t%s", iv.seq, iv.start, iv.end, iv.strand, name)
}

// CountBases returns the summed length of ivs, counting overlapping bases
// once per interval.
func CountBases(ivs []Interval) int64 {
	var n int64
	for _, iv := range ivs {
		n += int64(iv.Length())
	}
	return n
}
