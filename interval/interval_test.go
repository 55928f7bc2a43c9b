package interval_test

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

type seqLen struct {
	name string
	len  int
}

// newHeader returns a header with a fresh set of references; a
// sam.Reference can belong to only one header.
func newHeader(t testing.TB, seqs ...seqLen) *sam.Header {
	var refs []*sam.Reference
	for _, s := range seqs {
		ref, err := sam.NewReference(s.name, "", "", s.len, nil, nil)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	h, err := sam.NewHeader(nil, refs)
	require.NoError(t, err)
	return h
}

func chr1Header(t testing.TB) *sam.Header {
	return newHeader(t, seqLen{"chr1", 1000})
}

func iv(seq string, start, end int, name string) interval.Interval {
	return interval.MustNew(seq, start, end, interval.Positive, name)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := interval.New("chr1", 10, 9, interval.Positive, "")
	expect.True(t, errors.Is(errors.Invalid, err))
	x, err := interval.New("chr1", 10, 10, interval.Negative, "x")
	assert.NoError(t, err)
	expect.EQ(t, x.Length(), 1)
	expect.True(t, x.IsNegativeStrand())
}

func TestPredicates(t *testing.T) {
	a := iv("chr1", 100, 200, "a")
	expect.True(t, a.Intersects(iv("chr1", 200, 300, "")))
	expect.False(t, a.Intersects(iv("chr1", 201, 300, "")))
	expect.False(t, a.Intersects(iv("chr2", 100, 200, "")))
	expect.True(t, a.Abuts(iv("chr1", 201, 300, "")))
	expect.True(t, a.Abuts(iv("chr1", 50, 99, "")))
	expect.False(t, a.Abuts(iv("chr1", 200, 300, "")))
	expect.False(t, a.Abuts(iv("chr1", 202, 300, "")))
	expect.True(t, a.Contains(iv("chr1", 100, 200, "")))
	expect.True(t, a.Contains(iv("chr1", 150, 160, "")))
	expect.False(t, a.Contains(iv("chr1", 150, 201, "")))
}

func TestIntersect(t *testing.T) {
	x, ok := iv("chr1", 100, 200, "a").Intersect(iv("chr1", 150, 300, "b"))
	assert.True(t, ok)
	expect.EQ(t, x.Start(), 150)
	expect.EQ(t, x.End(), 200)
	expect.EQ(t, x.Name(), "a intersection b")

	x, ok = iv("chr1", 100, 200, "").Intersect(iv("chr1", 50, 120, "b"))
	assert.True(t, ok)
	expect.EQ(t, x.Start(), 100)
	expect.EQ(t, x.End(), 120)
	expect.EQ(t, x.Name(), "b")

	_, ok = iv("chr1", 100, 200, "").Intersect(iv("chr1", 201, 300, ""))
	expect.False(t, ok)
}

func TestPad(t *testing.T) {
	x, ok := iv("chr1", 100, 200, "").Pad(10, 20)
	assert.True(t, ok)
	expect.EQ(t, x.Start(), 90)
	expect.EQ(t, x.End(), 220)
	_, ok = iv("chr1", 100, 110, "").Pad(-6, -6)
	expect.False(t, ok)
	x, ok = iv("chr1", 100, 110, "").Pad(-5, -5)
	expect.True(t, ok)
	expect.EQ(t, x.Length(), 1)
}

func TestCompareAndString(t *testing.T) {
	a := iv("chr1", 100, 200, "a")
	expect.EQ(t, a.Compare(a), 0)
	expect.EQ(t, a.Compare(iv("chr1", 100, 201, "a")), -1)
	expect.EQ(t, iv("chr1", 100, 200, "").Compare(a), 1)
	neg := interval.MustNew("chr1", 100, 200, interval.Negative, "a")
	expect.EQ(t, a.Compare(neg), -1)
	expect.EQ(t, a.String(), "chr1:100-200\t+\ta")
	expect.EQ(t, neg.WithName("").String(), "chr1:100-200\t-\t.")
	expect.EQ(t, interval.CountBases([]interval.Interval{a, a}), int64(202))

	s, err := interval.ParseStrand("-")
	assert.NoError(t, err)
	expect.EQ(t, s, interval.Negative)
	_, err = interval.ParseStrand("x")
	expect.True(t, errors.Is(errors.Invalid, err))
}
