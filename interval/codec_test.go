package interval_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

const listText = "@HD\tVN:1.5\tSO:coordinate\n" +
	"@SQ\tSN:chr1\tLN:1000\n" +
	"@SQ\tSN:chr2\tLN:500\n" +
	"@CO\tsome comment\n" +
	"chr1\t100\t200\t+\ta\n" +
	"\n" +
	"chrUn\t1\t2\t+\tx\n" +
	"chr2\t5\t10\t-\t.\n"

func records(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if !strings.HasPrefix(line, "@") {
			out = append(out, line)
		}
	}
	return out
}

func TestReadWrite(t *testing.T) {
	l, err := interval.Read(strings.NewReader(listText))
	assert.NoError(t, err)
	assert.EQ(t, l.Len(), 2)
	expect.EQ(t, l.Intervals()[0].String(), "chr1:100-200\t+\ta")
	expect.EQ(t, l.Intervals()[1].String(), "chr2:5-10\t-\t.")
	expect.False(t, l.Intervals()[1].HasName())
	expect.EQ(t, l.Header().SortOrder, sam.Coordinate)
	expect.EQ(t, len(l.Header().Refs()), 2)

	var buf bytes.Buffer
	assert.NoError(t, interval.Write(&buf, l))
	expect.EQ(t, records(buf.String()), []string{"chr1\t100\t200\t+\ta", "chr2\t5\t10\t-\t."})
	expect.True(t, strings.HasPrefix(buf.String(), "@HD"))

	again, err := interval.Read(&buf)
	assert.NoError(t, err)
	expect.EQ(t, again.Intervals(), l.Intervals())
	expect.EQ(t, again.Header().Comments, l.Header().Comments)
}

func TestWriteAddsVersion(t *testing.T) {
	l := newList(t, chr1Header(t), iv("chr1", 1, 2, ""))
	var buf bytes.Buffer
	assert.NoError(t, interval.Write(&buf, l))
	expect.True(t, strings.HasPrefix(buf.String(), "@HD\tVN:"), buf.String())
	// The list's own header is not modified.
	expect.EQ(t, l.Header().Version, "")
	again, err := interval.Read(&buf)
	assert.NoError(t, err)
	expect.EQ(t, again.Intervals(), l.Intervals())
}

func TestReadHeaderOnly(t *testing.T) {
	l, err := interval.Read(strings.NewReader("@SQ\tSN:chr1\tLN:1000\n"))
	assert.NoError(t, err)
	expect.EQ(t, l.Len(), 0)
	expect.EQ(t, len(l.Header().Refs()), 1)
}

func TestReadErrors(t *testing.T) {
	const header = "@SQ\tSN:chr1\tLN:1000\n"
	for _, text := range []string{
		"",
		"chr1\t1\t2\t+\ta\n",
		header + "chr1\t1\t2\t+\n",
		header + "chr1\t1\t2\t+\ta\tb\n",
		header + "chr1\tx\t2\t+\ta\n",
		header + "chr1\t1\ty\t+\ta\n",
		header + "chr1\t1\t2\t*\ta\n",
		header + "chr1\t3\t2\t+\ta\n",
	} {
		_, err := interval.Read(strings.NewReader(text))
		expect.True(t, errors.Is(errors.Invalid, err), "%q: %v", text, err)
	}
	_, err := interval.Read(strings.NewReader(header + "chr1\t1\t2\t+\ta\nchr1\t3\t2\t+\ta\n"))
	assert.True(t, err != nil)
	assert.HasSubstr(t, err.Error(), "line 3")
}

func TestReadWriteFile(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	l, err := interval.Read(strings.NewReader(listText))
	assert.NoError(t, err)
	path := filepath.Join(tmpdir, "x.interval_list")
	assert.NoError(t, interval.WriteFile(ctx, path, l))
	again, err := interval.ReadFile(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, again.Intervals(), l.Intervals())

	gzPath := filepath.Join(tmpdir, "x.interval_list.gz")
	out, err := file.Create(ctx, gzPath)
	assert.NoError(t, err)
	gz := gzip.NewWriter(out.Writer(ctx))
	_, err = gz.Write([]byte(listText))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	assert.NoError(t, out.Close(ctx))
	again, err = interval.ReadFile(ctx, gzPath)
	assert.NoError(t, err)
	expect.EQ(t, again.Intervals(), l.Intervals())

	bgzPath := filepath.Join(tmpdir, "y.interval_list.gz")
	assert.NoError(t, interval.WriteFile(ctx, bgzPath, l))
	again, err = interval.ReadFile(ctx, bgzPath)
	assert.NoError(t, err)
	expect.EQ(t, again.Intervals(), l.Intervals())

	_, err = interval.ReadFile(ctx, filepath.Join(tmpdir, "missing"))
	expect.NotNil(t, err)
}
