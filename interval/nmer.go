package interval

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/biointerval/circular"
	"github.com/grailbio/biointerval/encoding/fasta"
	"github.com/grailbio/hts/sam"
)

// Names given to the intervals produced by SplitByNs.
const (
	NmerName    = "Nmer"
	ACGTmerName = "ACGTmer"
)

// NmerKind selects which SplitByNs intervals to keep.
type NmerKind uint8

const (
	// Both keeps every interval.
	Both NmerKind = iota
	// N keeps only runs of no-call bases.
	N
	// ACGT keeps only runs of called bases.
	ACGT
)

// ParseNmerKind parses "N", "ACGT" or "BOTH".
func ParseNmerKind(s string) (NmerKind, error) {
	switch s {
	case "BOTH":
		return Both, nil
	case "N":
		return N, nil
	case "ACGT":
		return ACGT, nil
	}
	return Both, errors.E(errors.Invalid, fmt.Sprintf("interval: unknown output type %q", s))
}

// Accepts reports whether an interval named name passes the filter.
func (k NmerKind) Accepts(name string) bool {
	switch k {
	case N:
		return name == NmerName
	case ACGT:
		return name == ACGTmerName
	}
	return true
}

// Filter returns the intervals of l that k accepts.
func (k NmerKind) Filter(l *List) *List {
	out := l.withHeader(l.header.SortOrder)
	for _, iv := range l.intervals {
		if k.Accepts(iv.name) {
			out.Add(iv)
		}
	}
	return out
}

func isNoCall(b byte) bool {
	return b == 'N' || b == 'n' || b == '.'
}

// SplitByNs partitions every sequence of header's dictionary into
// alternating runs of no-call bases (named NmerName) and called bases
// (ACGTmerName), reading the bases from ref.  A no-call run of at most
// maxNmerToMerge bases between two called runs is absorbed into them.
func SplitByNs(ref fasta.Fasta, header *sam.Header, maxNmerToMerge int) (*List, error) {
	var pending circular.Deque[Interval]
	for _, r := range header.Refs() {
		n, err := ref.Len(r.Name())
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		bases, err := ref.Get(r.Name(), 0, n)
		if err != nil {
			return nil, err
		}
		block := func(start, end int, noCall bool) {
			name := ACGTmerName
			if noCall {
				name = NmerName
			}
			pending.PushBack(Interval{seq: r.Name(), start: start, end: end, strand: Positive, name: name})
		}
		inN := isNoCall(bases[0])
		start := 0
		for i := 0; i < len(bases); i++ {
			if isNoCall(bases[i]) != inN {
				block(start+1, i, inN)
				start = i
				inN = !inN
			}
		}
		block(start+1, len(bases), inN)
		log.Debug.Printf("interval.SplitByNs: %s: %d bases", r.Name(), len(bases))
	}

	h := header.Clone()
	h.SortOrder = sam.Coordinate
	out := NewList(h)
	for pending.Len() > 0 {
		if pending.Len() >= 3 {
			a, b, c := pending.At(0), pending.At(1), pending.At(2)
			if a.name == ACGTmerName && b.name == NmerName && c.name == ACGTmerName &&
				a.Abuts(b) && b.Abuts(c) && b.Length() <= maxNmerToMerge {
				pending.PopFront()
				pending.PopFront()
				pending.PopFront()
				pending.PushFront(Interval{seq: a.seq, start: a.start, end: c.end, strand: Positive, name: ACGTmerName})
				continue
			}
		}
		out.Add(pending.PopFront())
	}
	log.Printf("interval.SplitByNs: found %d intervals", out.Len())
	return out, nil
}
