package locus

import (
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/hts/sam"
)

// Mask selects a set of reference positions.  Sequences are identified by
// dictionary index and positions are 1-based.
type Mask interface {
	// Get reports whether position pos of sequence seq is selected.
	Get(seq, pos int) bool
	// NextPosition returns the smallest selected position >= pos on sequence
	// seq, or -1 if there is none.
	NextPosition(seq, pos int) int
	// MaxSequenceIndex returns the largest sequence index with a selected
	// position, or -1 if the mask is empty.
	MaxSequenceIndex() int
	// MaxPosition returns the largest selected position on sequence
	// MaxSequenceIndex().
	MaxPosition() int
}

type wholeGenomeMask struct {
	lens []int
}

// WholeGenomeMask returns a Mask selecting every base of every sequence in
// the header's dictionary.
func WholeGenomeMask(header *sam.Header) Mask {
	refs := header.Refs()
	m := wholeGenomeMask{lens: make([]int, len(refs))}
	for i, r := range refs {
		m.lens[i] = r.Len()
	}
	return m
}

func (m wholeGenomeMask) Get(seq, pos int) bool {
	return seq >= 0 && seq < len(m.lens) && pos >= 1 && pos <= m.lens[seq]
}

func (m wholeGenomeMask) NextPosition(seq, pos int) int {
	if seq < 0 || seq >= len(m.lens) || pos > m.lens[seq] {
		return -1
	}
	if pos < 1 {
		return 1
	}
	return pos
}

func (m wholeGenomeMask) MaxSequenceIndex() int { return len(m.lens) - 1 }

func (m wholeGenomeMask) MaxPosition() int {
	if len(m.lens) == 0 {
		return 0
	}
	return m.lens[len(m.lens)-1]
}

type intervalListMask struct {
	union   *interval.Union
	lastSeq int
	lastPos int
}

// IntervalListMask returns a Mask selecting the bases covered by l.
// Overlapping and abutting intervals are merged first.  The mask keeps
// search state, so it must not be shared between goroutines.
func IntervalListMask(l *interval.List) Mask {
	m := &intervalListMask{union: interval.NewUnion(l), lastSeq: -1}
	ids := map[string]int{}
	for i, r := range l.Header().Refs() {
		ids[r.Name()] = i
	}
	// UniqueIntervals is sorted in dictionary order, so the last one holds
	// the maximum.
	uniq := l.UniqueIntervals(interval.FirstName)
	for i := len(uniq) - 1; i >= 0; i-- {
		if id, ok := ids[uniq[i].Sequence()]; ok {
			m.lastSeq, m.lastPos = id, uniq[i].End()
			break
		}
	}
	return m
}

func (m *intervalListMask) Get(seq, pos int) bool {
	if pos < 1 || pos > int(interval.PosTypeMax) {
		return false
	}
	return m.union.ContainsByID(seq, interval.PosType(pos-1))
}

func (m *intervalListMask) NextPosition(seq, pos int) int {
	if seq > m.lastSeq {
		return -1
	}
	if pos < 1 {
		pos = 1
	}
	if pos > int(interval.PosTypeMax) {
		return -1
	}
	next, ok := m.union.NextByID(seq, interval.PosType(pos-1))
	if !ok {
		return -1
	}
	return int(next) + 1
}

func (m *intervalListMask) MaxSequenceIndex() int { return m.lastSeq }

func (m *intervalListMask) MaxPosition() int { return m.lastPos }
