package bamprovider

import (
	"io"
	"strings"
	"sync"

	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
	"v.io/x/lib/vlog"
)

// SAMProvider implements Provider for SAM text files.  Paths ending in ".gz"
// are decompressed.
type SAMProvider struct {
	// Path of the *.sam or *.sam.gz file. Must be nonempty.
	Path string
	err  errorreporter.T

	mu      sync.Mutex
	nActive int
	header  *sam.Header
}

// open returns a SAM reader over the file, plus a function that releases the
// decompressor, if any.
func (s *SAMProvider) open(in file.File) (*sam.Reader, func() error, error) {
	var (
		r      io.Reader = in.Reader(vcontext.Background())
		closer func() error
	)
	if strings.HasSuffix(s.Path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		r, closer = gz, gz.Close
	}
	sr, err := sam.NewReader(r)
	if err != nil {
		if closer != nil {
			closer() // nolint: errcheck
		}
		return nil, nil, err
	}
	return sr, closer, nil
}

// GetHeader implements the Provider interface.
func (s *SAMProvider) GetHeader() (*sam.Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.header != nil {
		return s.header, nil
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, s.Path)
	if err != nil {
		s.err.Set(err)
		return nil, err
	}
	defer in.Close(ctx)
	r, closer, err := s.open(in)
	if err != nil {
		s.err.Set(err)
		return nil, err
	}
	if closer != nil {
		defer closer() // nolint: errcheck
	}
	s.header = r.Header()
	return s.header, nil
}

// NewIterator implements the Provider interface.
func (s *SAMProvider) NewIterator() Iterator {
	s.mu.Lock()
	s.nActive++
	s.mu.Unlock()
	iter := &fileIterator{done: s.freeIterator}
	if iter.in, iter.err = file.Open(vcontext.Background(), s.Path); iter.err != nil {
		return iter
	}
	var r *sam.Reader
	if r, iter.closer, iter.err = s.open(iter.in); iter.err != nil {
		return iter
	}
	iter.reader = r
	return iter
}

func (s *SAMProvider) freeIterator(i *fileIterator) {
	s.err.Set(i.Err())
	s.mu.Lock()
	s.nActive--
	if s.nActive < 0 {
		vlog.Fatalf("Negative active count for %+v", s)
	}
	s.mu.Unlock()
}

// Close implements the Provider interface.
func (s *SAMProvider) Close() error {
	if s.nActive > 0 {
		vlog.Fatalf("%d iterators still active for %+v", s.nActive, s)
	}
	return s.err.Err()
}
