package fasta

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// indexEntry is one line of a .fai index: "<sequence name>\t<length>\t<byte
// offset>\t<bases per line>\t<bytes per line>", for example
// "chr3\t12345\t9000\t80\t81".
type indexEntry struct {
	length    uint64
	offset    uint64
	lineBase  uint64
	lineWidth uint64
}

type indexedFasta struct {
	seqs     map[string]indexEntry
	seqNames []string
	reader   io.ReadSeeker

	mu sync.Mutex
	// bufOff is the file offset of buf[0].
	bufOff int64
	buf    []byte
}

func parseIndexLine(line string) (string, indexEntry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		return "", indexEntry{}, errors.Errorf("invalid index line: %s", line)
	}
	var vals [4]uint64
	for i := range vals {
		v, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return "", indexEntry{}, errors.Wrapf(err, "invalid index line: %s", line)
		}
		vals[i] = v
	}
	ent := indexEntry{length: vals[0], offset: vals[1], lineBase: vals[2], lineWidth: vals[3]}
	if ent.lineBase == 0 || ent.lineWidth < ent.lineBase {
		return "", indexEntry{}, errors.Errorf("invalid line geometry in index line: %s", line)
	}
	return fields[0], ent, nil
}

// NewIndexed creates a new Fasta that can perform efficient random lookups
// using the provided index, without reading the data into memory.
func NewIndexed(fasta io.ReadSeeker, index io.Reader) (Fasta, error) {
	f := &indexedFasta{seqs: make(map[string]indexEntry), reader: fasta}
	scanner := bufio.NewScanner(index)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		name, ent, err := parseIndexLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		f.seqs[name] = ent
		f.seqNames = append(f.seqNames, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA index")
	}
	sort.SliceStable(f.seqNames, func(i, j int) bool {
		return f.seqs[f.seqNames[i]].offset < f.seqs[f.seqNames[j]].offset
	})
	return f, nil
}

// Len implements Fasta.Len().
func (f *indexedFasta) Len(seqName string) (uint64, error) {
	ent, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found in index: %s", seqName)
	}
	return ent.length, nil
}

// read returns the file bytes [off, off+n), refilling buf if needed.
func (f *indexedFasta) read(off int64, n int) ([]byte, error) {
	limit := off + int64(n)
	if off >= f.bufOff && limit <= f.bufOff+int64(len(f.buf)) {
		return f.buf[off-f.bufOff : limit-f.bufOff], nil
	}
	if _, err := f.reader.Seek(off, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seek to %d", off)
	}
	size := 8192
	if size < n {
		size = n
	}
	if cap(f.buf) < size {
		f.buf = make([]byte, size)
	}
	f.buf = f.buf[:size]
	got, err := io.ReadAtLeast(f.reader, f.buf, n)
	if err != nil {
		f.buf = f.buf[:0]
		return nil, errors.Wrap(err, "unexpected end of FASTA data (bad index? file doesn't end in newline?)")
	}
	f.bufOff = off
	f.buf = f.buf[:got]
	return f.buf[:n], nil
}

// Get implements Fasta.Get().
func (f *indexedFasta) Get(seqName string, start uint64, end uint64) (string, error) {
	ent, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found in index: %s", seqName)
	}
	if err := checkRange(seqName, start, end, ent.length); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Lines hold lineBase bases followed by lineWidth-lineBase terminator
	// bytes.
	terminator := ent.lineWidth - ent.lineBase
	first := ent.offset + start + terminator*(start/ent.lineBase)
	last := ent.offset + (end - 1) + terminator*((end-1)/ent.lineBase)
	raw, err := f.read(int64(first), int(last-first+1))
	if err != nil {
		return "", err
	}
	var result strings.Builder
	result.Grow(int(end - start))
	col := start % ent.lineBase
	for i := 0; i < len(raw); {
		n := int(ent.lineBase - col)
		if n > len(raw)-i {
			n = len(raw) - i
		}
		result.Write(raw[i : i+n])
		i += n + int(terminator)
		col = 0
	}
	return result.String(), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *indexedFasta) SeqNames() []string {
	return f.seqNames
}
