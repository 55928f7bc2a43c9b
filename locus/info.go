package locus

import (
	"github.com/grailbio/hts/sam"
)

// Info describes the reads covering one reference position.
type Info struct {
	// Ref is the reference sequence, from the walker's header.
	Ref *sam.Reference
	// Pos is the 1-based position on Ref.
	Pos int
	// Records lists the aligned bases at Pos, in input order.
	Records []RecordAndOffset
}

// SequenceIndex returns the dictionary index of the reference.
func (i *Info) SequenceIndex() int { return i.Ref.ID() }

// SequenceName returns the name of the reference.
func (i *Info) SequenceName() string { return i.Ref.Name() }

// Depth returns the number of aligned bases at the position.
func (i *Info) Depth() int { return len(i.Records) }

func (i *Info) add(r *sam.Record, offset int) {
	i.Records = append(i.Records, RecordAndOffset{Record: r, Offset: offset})
}

// before reports whether i sorts before the 1-based locus seq:pos.
func (i *Info) before(seq, pos int) bool {
	if s := i.SequenceIndex(); s != seq {
		return s < seq
	}
	return i.Pos < pos
}

// RecordAndOffset is a read together with the 0-based offset, into the read,
// of the base aligned to a locus.
type RecordAndOffset struct {
	Record *sam.Record
	Offset int
}

const seqAlphabet = "=ACMGRSVTWYHKDBN"

// ReadBase returns the base at the offset, as an upper-case IUPAC letter.
func (r RecordAndOffset) ReadBase() byte {
	d := r.Record.Seq.Seq[r.Offset/2]
	if r.Offset%2 == 0 {
		return seqAlphabet[d>>4]
	}
	return seqAlphabet[d&0xf]
}

// BaseQuality returns the Phred quality of the base at the offset.  Reads
// without qualities report 0xff.
func (r RecordAndOffset) BaseQuality() byte {
	return baseQuality(r.Record, r.Offset)
}

func baseQuality(rec *sam.Record, offset int) byte {
	if offset >= len(rec.Qual) {
		return 0xff
	}
	return rec.Qual[offset]
}
