package main

/*
bio-locus-depth reports the number of reads covering each reference position
of a coordinate-sorted BAM or SAM file, optionally restricted to an interval
list.
*/

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/biointerval/encoding/bamprovider"
	"github.com/grailbio/biointerval/encoding/bgzf"
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/biointerval/locus"
	"github.com/klauspost/compress/flate"
)

var (
	bamPath        = flag.String("bam", "", "Input BAM or SAM path; required")
	intervalsPath  = flag.String("intervals", "", "Interval list restricting the report; default is the whole genome")
	minBaseQuality = flag.Int("min-base-quality", 0, "Bases below this quality are not counted")
	minMapQ        = flag.Int("min-mapq", 0, "Reads below this mapping quality are not counted")
	emitUncovered  = flag.Bool("emit-uncovered", locus.DefaultOpts.EmitUncoveredLoci, "Report positions without coverage")
	minDepth       = flag.Int("min-depth", 0, "Omit positions covered by fewer reads")
	keepDups       = flag.Bool("keep-duplicates", false, "Count reads flagged as duplicates")
	outPath        = flag.String("out", "", "Output TSV path, block-gzipped if it ends in .gz; default is stdout")
)

type depthOpts struct {
	bamPath, intervalsPath, outPath string
	walk                            locus.Opts
	depth                           locus.DepthOpts
}

func run(ctx context.Context, opts depthOpts) (err error) {
	p := bamprovider.NewProvider(opts.bamPath)
	defer func() {
		if e := p.Close(); e != nil && err == nil {
			err = e
		}
	}()
	header, err := p.GetHeader()
	if err != nil {
		return err
	}
	if opts.intervalsPath != "" {
		if opts.walk.Intervals, err = interval.ReadFile(ctx, opts.intervalsPath); err != nil {
			return err
		}
	}
	src := p.NewIterator()
	w, err := locus.NewWalker(header, src, opts.walk)
	if err != nil {
		src.Close() // nolint: errcheck
		return err
	}
	it, err := w.Iterator()
	if err != nil {
		src.Close() // nolint: errcheck
		return err
	}

	var out io.Writer = os.Stdout
	if opts.outPath != "" {
		var f file.File
		if f, err = file.Create(ctx, opts.outPath); err != nil {
			it.Close() // nolint: errcheck
			return err
		}
		defer file.CloseAndReport(ctx, f, &err)
		out = f.Writer(ctx)
	}
	var bw *bgzf.Writer
	if strings.HasSuffix(opts.outPath, ".gz") {
		if bw, err = bgzf.NewWriter(out, flate.DefaultCompression); err != nil {
			it.Close() // nolint: errcheck
			return err
		}
		out = bw
	}
	n, err := locus.WriteDepth(out, it, opts.depth)
	if e := it.Close(); e != nil && err == nil {
		err = e
	}
	if bw != nil && err == nil {
		err = bw.Close()
	}
	if err != nil {
		return err
	}
	log.Printf("bio-locus-depth: wrote %d loci", n)
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -bam path [OPTIONS]\n", os.Args[0])
		flag.PrintDefaults()
	}
	shutdown := grail.Init()
	defer shutdown()
	if *bamPath == "" {
		log.Fatalf("-bam is required")
	}
	walk := locus.DefaultOpts
	walk.MinBaseQuality = *minBaseQuality
	walk.MinMapQ = *minMapQ
	walk.EmitUncoveredLoci = *emitUncovered
	if *keepDups {
		walk.Filters = []locus.RecordFilter{locus.NotPrimaryAlignment}
	}
	opts := depthOpts{
		bamPath:       *bamPath,
		intervalsPath: *intervalsPath,
		outPath:       *outPath,
		walk:          walk,
		depth:         locus.DepthOpts{MinDepth: *minDepth, Header: true},
	}
	if err := run(vcontext.Background(), opts); err != nil {
		log.Fatalf("%v", err)
	}
}
