package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// BEDOpts controls ReadBED.
type BEDOpts struct {
	// Sort sorts the resulting list.
	Sort bool
	// Unique merges overlapping and abutting intervals, naming them by Names.
	// It implies Sort.
	Unique bool
	Names  NamePolicy
}

var (
	bedTrack   = []byte("track")
	bedBrowser = []byte("browser")
)

// ReadBED converts a BED file (0-based half-open coordinates) into an
// interval list over header.  Columns after the third are the optional name,
// score (ignored) and strand ("-" for the reverse strand).  Track, browser
// and comment lines are skipped.
//
// A record on a sequence missing from header, or lying outside its
// sequence, is an errors.Invalid error.  Zero-length records are logged and
// dropped.
func ReadBED(r io.Reader, header *sam.Header, opts BEDOpts) (*List, error) {
	lengths := map[string]int{}
	for _, ref := range header.Refs() {
		lengths[ref.Name()] = ref.Len()
	}
	var (
		l       = NewList(header)
		scanner = bufio.NewScanner(r)
		tokens  [6][]byte
		lineIdx int
	)
	fail := func(format string, args ...interface{}) (*List, error) {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("interval.ReadBED: line %d: %s", lineIdx, fmt.Sprintf(format, args...)))
	}
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || tokens[0][0] == '#' ||
			bytes.Equal(tokens[0], bedTrack) || bytes.Equal(tokens[0], bedBrowser) {
			continue
		}
		if nToken < 3 {
			return fail("expected at least 3 columns, found %d", nToken)
		}
		seq := string(tokens[0])
		start0, err := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
		if err != nil {
			return fail("bad start %q", tokens[1])
		}
		end, err := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
		if err != nil {
			return fail("bad end %q", tokens[2])
		}
		start := start0 + 1
		seqLen, ok := lengths[seq]
		switch {
		case !ok:
			return fail("sequence %s was not found in the sequence dictionary", seq)
		case start < 1:
			return fail("start %d on sequence %s was less than 1", start, seq)
		case seqLen < start:
			return fail("start %d on sequence %s was past the end (%d)", start, seq, seqLen)
		case (end == 0 && start != 1) || end < 0:
			return fail("end %d on sequence %s was less than 1", end, seq)
		case seqLen < end:
			return fail("end %d on sequence %s was past the end (%d)", end, seq, seqLen)
		case end < start-1:
			return fail("start %d on sequence %s is greater than end %d", start, seq, end)
		case end == start-1:
			log.Printf("interval.ReadBED: dropping zero-length record %s:%d-%d (line %d)", seq, start0, end, lineIdx)
			continue
		}
		var (
			name   string
			strand = Positive
		)
		if nToken >= 4 {
			name = string(tokens[3])
		}
		if nToken >= 6 && len(tokens[5]) == 1 && tokens[5][0] == '-' {
			strand = Negative
		}
		l.Add(Interval{seq: seq, start: start, end: end, strand: strand, name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "interval.ReadBED")
	}
	switch {
	case opts.Unique:
		return l.Uniqued(opts.Names), nil
	case opts.Sort:
		return l.Sorted(), nil
	}
	return l, nil
}

// ReadBEDFile is a wrapper for ReadBED that takes a path, optionally
// gzip-compressed, instead of an io.Reader.
func ReadBEDFile(ctx context.Context, path string, header *sam.Header, opts BEDOpts) (l *List, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return nil, err
		}
	}
	return ReadBED(reader, header, opts)
}
