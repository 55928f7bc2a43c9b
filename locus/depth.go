package locus

import (
	"io"

	"github.com/grailbio/base/tsv"
)

// DepthOpts controls WriteDepth.
type DepthOpts struct {
	// MinDepth suppresses loci covered by fewer records.
	MinDepth int
	// Header writes a "chrom pos depth" line first.
	Header bool
}

// WriteDepth drains it, writing one "chrom<TAB>pos<TAB>depth" line per locus,
// and returns the number of lines written.  It does not close it.
func WriteDepth(w io.Writer, it *Iterator, opts DepthOpts) (int, error) {
	tw := tsv.NewWriter(w)
	if opts.Header {
		tw.WriteString("chrom")
		tw.WriteString("pos")
		tw.WriteString("depth")
		if err := tw.EndLine(); err != nil {
			return 0, err
		}
	}
	n := 0
	for it.Scan() {
		info := it.Info()
		if info.Depth() < opts.MinDepth {
			continue
		}
		tw.WriteString(info.SequenceName())
		tw.WriteInt64(int64(info.Pos))
		tw.WriteInt64(int64(info.Depth()))
		if err := tw.EndLine(); err != nil {
			return n, err
		}
		n++
	}
	if err := it.Err(); err != nil {
		return n, err
	}
	return n, tw.Flush()
}
