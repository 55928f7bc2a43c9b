package main

import (
	"context"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/biointerval/encoding/bamprovider"
	"github.com/grailbio/biointerval/interval"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
	"v.io/x/lib/cmdline"
)

func newCmdBEDToIntervals() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "bed-to-intervals",
		Short:    "Convert a BED file to an interval list",
		ArgsName: "bedpath outpath",
	}
	dict := cmd.Flags.String("dict", "", "Sequence dictionary: a SAM header text file, an interval list, or a BAM/SAM file")
	sort := cmd.Flags.Bool("sort", true, "Sort the output")
	unique := cmd.Flags.Bool("unique", false, "Merge overlapping and abutting intervals")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if err := checkArgs("bed-to-intervals", argv, 2, "bedpath outpath"); err != nil {
			return err
		}
		return bedToIntervals(vcontext.Background(), *dict, argv[0], argv[1], interval.BEDOpts{Sort: *sort, Unique: *unique})
	})
	return cmd
}

// loadDictionary reads the sequence dictionary stored at path.
func loadDictionary(ctx context.Context, path string) (*sam.Header, error) {
	switch bamprovider.GuessFileType(path) {
	case bamprovider.BAM, bamprovider.SAM:
		p := bamprovider.NewProvider(path)
		h, err := p.GetHeader()
		if e := p.Close(); e != nil && err == nil {
			err = e
		}
		return h, err
	}
	l, err := interval.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return l.Header(), nil
}

func bedToIntervals(ctx context.Context, dictPath, bedPath, outPath string, opts interval.BEDOpts) error {
	if dictPath == "" {
		return errors.New("bed-to-intervals: -dict is required")
	}
	header, err := loadDictionary(ctx, dictPath)
	if err != nil {
		return errors.Wrapf(err, "bed-to-intervals: reading dictionary %s", dictPath)
	}
	l, err := interval.ReadBEDFile(ctx, bedPath, header, opts)
	if err != nil {
		return err
	}
	if err := interval.WriteFile(ctx, outPath, l); err != nil {
		return err
	}
	log.Printf("bed-to-intervals: wrote %d intervals to %s", l.Len(), outPath)
	return nil
}
