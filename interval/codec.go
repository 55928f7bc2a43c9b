package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/biointerval/encoding/bgzf"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// headerVersion is the @HD version written for headers that lack one.
const headerVersion = "1.5"

// Read parses an interval list: a SAM text header (lines starting with '@')
// followed by tab-separated "sequence start end strand name" records, with
// "." standing for an absent name.  Records on sequences missing from the
// header are logged and dropped.
func Read(r io.Reader) (*List, error) {
	var (
		scanner = bufio.NewScanner(r)
		text    bytes.Buffer
		lineNum int
		l       *List
		seqs    map[string]int
	)
	scanner.Buffer(make([]byte, 64<<10), 16<<20)
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if l == nil {
			if len(line) > 0 && line[0] == '@' {
				text.Write(line)
				text.WriteByte('\n')
				continue
			}
			var err error
			if l, err = listFromHeader(text.Bytes()); err != nil {
				return nil, err
			}
			seqs = sequenceIndex(l.header)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		iv, err := parseRecord(string(line))
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("interval.Read: line %d", lineNum))
		}
		if _, ok := seqs[iv.seq]; !ok {
			log.Printf("interval.Read: ignoring interval on unknown sequence %s (line %d)", iv.seq, lineNum)
			continue
		}
		l.Add(iv)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "interval.Read")
	}
	if l == nil {
		return listFromHeader(text.Bytes())
	}
	return l, nil
}

func listFromHeader(text []byte) (*List, error) {
	if len(text) == 0 {
		return nil, errors.E(errors.Invalid, "interval.Read: interval list has no header")
	}
	header, err := sam.NewHeader(text, nil)
	if err != nil {
		return nil, errors.E(err, "interval.Read: parsing header")
	}
	return NewList(header), nil
}

func parseRecord(line string) (Interval, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		return Interval{}, errors.E(errors.Invalid, fmt.Sprintf("expected 5 fields, found %d", len(fields)))
	}
	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return Interval{}, errors.E(errors.Invalid, fmt.Sprintf("bad start %q", fields[1]))
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return Interval{}, errors.E(errors.Invalid, fmt.Sprintf("bad end %q", fields[2]))
	}
	strand, err := ParseStrand(fields[3])
	if err != nil {
		return Interval{}, err
	}
	name := fields[4]
	if name == "." {
		name = ""
	}
	return New(fields[0], start, end, strand, name)
}

// Write writes l in the format Read accepts.  A header without a version
// gets one, so that the output always starts with an @HD line.
func Write(w io.Writer, l *List) error {
	header := l.header
	if header.Version == "" {
		header = header.Clone()
		header.Version = headerVersion
	}
	text, err := header.MarshalText()
	if err != nil {
		return errors.E(err, "interval.Write: header")
	}
	if _, err := w.Write(text); err != nil {
		return errors.E(err, "interval.Write")
	}
	tw := tsv.NewWriter(w)
	for _, iv := range l.intervals {
		tw.WriteString(iv.seq)
		tw.WriteInt64(int64(iv.start))
		tw.WriteInt64(int64(iv.end))
		tw.WriteString(iv.strand.String())
		if iv.name == "" {
			tw.WriteByte('.')
		} else {
			tw.WriteString(iv.name)
		}
		if err := tw.EndLine(); err != nil {
			return errors.E(err, "interval.Write")
		}
	}
	return tw.Flush()
}

// ReadFile reads an interval list from path, which may be local or on S3,
// and may be gzip-compressed.
func ReadFile(ctx context.Context, path string) (l *List, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, errors.E(err, path)
		}
		defer gz.Close() // nolint: errcheck
		reader = gz
	}
	if l, err = Read(reader); err != nil {
		return nil, errors.E(err, path)
	}
	return l, nil
}

// WriteFile writes l to path.  A path ending in ".gz" is written
// block-gzipped.
func WriteFile(ctx context.Context, path string, l *List) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	if fileio.DetermineType(path) != fileio.Gzip {
		return Write(out.Writer(ctx), l)
	}
	bw, err := bgzf.NewWriter(out.Writer(ctx), flate.DefaultCompression)
	if err != nil {
		return err
	}
	if err := Write(bw, l); err != nil {
		return err
	}
	return bw.Close()
}
