package locus

import (
	"github.com/grailbio/hts/sam"
)

// Block is a gapless stretch of a read aligned to the reference.
type Block struct {
	// ReadStart is the 1-based offset of the first base in the read.
	ReadStart int
	// RefStart is the 1-based reference position of the first base.
	RefStart int
	Length   int
}

// AlignmentBlocks splits the alignment of rec into gapless blocks.  Match,
// sequence-match and mismatch operators produce blocks; insertions and soft
// clips consume read bases only; deletions and skips consume reference bases
// only; hard clips and padding consume nothing.
func AlignmentBlocks(rec *sam.Record) []Block {
	var blocks []Block
	readBase, refBase := 1, rec.Pos+1
	for _, co := range rec.Cigar {
		n := co.Len()
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			blocks = append(blocks, Block{ReadStart: readBase, RefStart: refBase, Length: n})
			readBase += n
			refBase += n
		case sam.CigarInsertion, sam.CigarSoftClipped:
			readBase += n
		case sam.CigarDeletion, sam.CigarSkipped:
			refBase += n
		}
	}
	return blocks
}
