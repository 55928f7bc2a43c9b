package main

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func newHeader(t *testing.T) *sam.Header {
	var refs []*sam.Reference
	for _, name := range []string{"chr1", "chr2"} {
		ref, err := sam.NewReference(name, "", "", 1000, nil, nil)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	h, err := sam.NewHeader(nil, refs)
	require.NoError(t, err)
	return h
}

func writeList(ctx context.Context, t *testing.T, path string, ivs ...interval.Interval) {
	l := interval.NewList(newHeader(t))
	l.AddAll(ivs)
	assert.NoError(t, interval.WriteFile(ctx, path, l))
}

func iv(seq string, start, end int, name string) interval.Interval {
	return interval.MustNew(seq, start, end, interval.Positive, name)
}

func coords(l *interval.List) []string {
	var out []string
	for _, i := range l.Intervals() {
		out = append(out, i.String())
	}
	return out
}

func TestToolsSubtractAndInvert(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	a := filepath.Join(tmp, "a.interval_list")
	b := filepath.Join(tmp, "b.interval_list")
	writeList(ctx, t, a, iv("chr1", 100, 200, "x"), iv("chr2", 1, 10, "y"))
	writeList(ctx, t, b, iv("chr1", 150, 160, "z"))

	out := filepath.Join(tmp, "out.interval_list")
	opts := toolsOpts{
		inputs:       []string{a},
		secondInputs: []string{b},
		action:       Subtract,
		sort:         true,
		scatterCount: 1,
		comments:     []string{"hello"},
		output:       out,
		commandLine:  "bio-intervals tools",
	}
	assert.NoError(t, runTools(ctx, opts))
	l, err := interval.ReadFile(ctx, out)
	assert.NoError(t, err)
	expect.EQ(t, coords(l), []string{
		"chr1:100-149\t+\tx intersection interval-1",
		"chr1:161-200\t+\tx intersection interval-2",
		"chr2:1-10\t+\ty intersection interval-3",
	})
	expect.EQ(t, l.Header().Comments, []string{"hello"})
	require.Equal(t, 1, len(l.Header().Progs()))

	opts.invert = true
	assert.NoError(t, runTools(ctx, opts))
	l, err = interval.ReadFile(ctx, out)
	assert.NoError(t, err)
	expect.EQ(t, l.Len(), 4)
	expect.EQ(t, l.Intervals()[0].Start(), 1)
	expect.EQ(t, l.Intervals()[0].End(), 99)
}

func TestToolsRejectsSecondInput(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	a := filepath.Join(tmp, "a.interval_list")
	writeList(ctx, t, a, iv("chr1", 1, 10, ""))
	err := runTools(ctx, toolsOpts{
		inputs:       []string{a},
		secondInputs: []string{a},
		action:       Union,
		scatterCount: 1,
		output:       filepath.Join(tmp, "out"),
	})
	expect.True(t, errors.Is(errors.Invalid, err))
}

func TestToolsScatter(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	a := filepath.Join(tmp, "a.interval_list")
	writeList(ctx, t, a, iv("chr1", 1, 100, "x"), iv("chr1", 201, 300, "y"))
	outDir := filepath.Join(tmp, "scatter")
	assert.NoError(t, runTools(ctx, toolsOpts{
		inputs:       []string{a},
		action:       Concat,
		scatterCount: 4,
		scatterMode:  interval.IntervalSubdivision,
		output:       outDir,
	}))
	var total int64
	for i := 0; i < 4; i++ {
		l, err := interval.ReadFile(ctx, scatterPath(outDir, i, 4))
		assert.NoError(t, err)
		expect.EQ(t, l.BaseCount(), int64(50))
		total += l.BaseCount()
	}
	expect.EQ(t, total, int64(200))
	expect.EQ(t, scatterPath("/x", 0, 4), "/x/temp_0001_of_4/scattered.intervals")
}

func TestBEDToIntervals(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	dict := filepath.Join(tmp, "dict.interval_list")
	writeList(ctx, t, dict)
	bed := filepath.Join(tmp, "in.bed")
	assert.NoError(t, ioutil.WriteFile(bed, []byte("track name=x\nchr2\t0\t10\tb\nchr1\t4\t8\ta\t0\t-\n"), 0644))
	out := filepath.Join(tmp, "out.interval_list")

	assert.NoError(t, bedToIntervals(ctx, dict, bed, out, interval.BEDOpts{Sort: true}))
	l, err := interval.ReadFile(ctx, out)
	assert.NoError(t, err)
	expect.EQ(t, coords(l), []string{"chr1:5-8\t-\ta", "chr2:1-10\t+\tb"})

	expect.NotNil(t, bedToIntervals(ctx, "", bed, out, interval.BEDOpts{}))
}

func TestScatterByNs(t *testing.T) {
	tmp, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	ref := filepath.Join(tmp, "ref.fa")
	assert.NoError(t, ioutil.WriteFile(ref, []byte(">s1\nACGTNNNNAC\nGTNAC\n"), 0644))
	out := filepath.Join(tmp, "out.interval_list")

	assert.NoError(t, scatterByNs(ctx, ref, out, 1, interval.Both, "test"))
	l, err := interval.ReadFile(ctx, out)
	assert.NoError(t, err)
	expect.EQ(t, coords(l), []string{
		"s1:1-4\t+\tACGTmer",
		"s1:5-8\t+\tNmer",
		"s1:9-15\t+\tACGTmer",
	})

	assert.NoError(t, scatterByNs(ctx, ref, out, 1, interval.N, "test"))
	l, err = interval.ReadFile(ctx, out)
	assert.NoError(t, err)
	expect.EQ(t, coords(l), []string{"s1:5-8\t+\tNmer"})
}
