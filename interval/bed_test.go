package interval_test

import (
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestReadBED(t *testing.T) {
	const bed = "track name=test\n" +
		"browser position chr1:1-100\n" +
		"# comment\n" +
		"chr1\t200\t300\tb\t0\t-\n" +
		"chr1\t0\t100\ta\n" +
		"\n" +
		"chr1\t250\t400\n" +
		"chr1\t500\t500\tempty\n"
	l, err := interval.ReadBED(strings.NewReader(bed), chr1Header(t), interval.BEDOpts{})
	assert.NoError(t, err)
	var got []string
	for _, x := range l.Intervals() {
		got = append(got, x.String())
	}
	expect.EQ(t, got, []string{
		"chr1:201-300\t-\tb",
		"chr1:1-100\t+\ta",
		"chr1:251-400\t+\t.",
	})

	sorted, err := interval.ReadBED(strings.NewReader(bed), chr1Header(t), interval.BEDOpts{Sort: true})
	assert.NoError(t, err)
	expect.EQ(t, coords(sorted), []string{"chr1:1-100\t+\t.", "chr1:201-300\t-\t.", "chr1:251-400\t+\t."})

	unique, err := interval.ReadBED(strings.NewReader(bed), chr1Header(t), interval.BEDOpts{Unique: true})
	assert.NoError(t, err)
	expect.EQ(t, coords(unique), []string{"chr1:1-100\t+\t.", "chr1:201-400\t-\t."})
	expect.EQ(t, names(unique), []string{"a", "b"})
}

func TestReadBEDErrors(t *testing.T) {
	for _, bed := range []string{
		"chr2\t0\t10\n",
		"chr1\t-1\t10\n",
		"chr1\t1000\t1001\n",
		"chr1\t10\t1001\n",
		"chr1\t10\t5\n",
		"chr1\t10\n",
		"chr1\tx\t10\n",
		"chr1\t1\ty\n",
	} {
		_, err := interval.ReadBED(strings.NewReader(bed), chr1Header(t), interval.BEDOpts{})
		expect.True(t, errors.Is(errors.Invalid, err), "%q: %v", bed, err)
	}
	// The last base of the sequence is fine.
	l, err := interval.ReadBED(strings.NewReader("chr1\t999\t1000\n"), chr1Header(t), interval.BEDOpts{})
	assert.NoError(t, err)
	expect.EQ(t, coords(l), []string{"chr1:1000-1000\t+\t."})
}
