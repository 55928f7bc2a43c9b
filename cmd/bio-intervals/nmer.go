package main

import (
	"context"
	"os"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/biointerval/encoding/fasta"
	"github.com/grailbio/biointerval/interval"
	"v.io/x/lib/cmdline"
)

func newCmdScatterByNs() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "scatter-by-ns",
		Short:    "Write the runs of called and uncalled (N) bases of a reference as an interval list",
		ArgsName: "fastapath outpath",
	}
	maxToMerge := cmd.Flags.Int("max-to-merge", 1, "N runs of at most this length between called bases are merged into them")
	outputType := cmd.Flags.String("output-type", "BOTH", "Intervals to write: N, ACGT or BOTH")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if err := checkArgs("scatter-by-ns", argv, 2, "fastapath outpath"); err != nil {
			return err
		}
		kind, err := interval.ParseNmerKind(strings.ToUpper(*outputType))
		if err != nil {
			return err
		}
		return scatterByNs(vcontext.Background(), argv[0], argv[1], *maxToMerge, kind, strings.Join(os.Args, " "))
	})
	return cmd
}

func scatterByNs(ctx context.Context, refPath, outPath string, maxToMerge int, kind interval.NmerKind, commandLine string) error {
	ref, err := fasta.Load(ctx, refPath)
	if err != nil {
		return err
	}
	header, err := fasta.Dictionary(ref)
	if err != nil {
		return err
	}
	l, err := interval.SplitByNs(ref, header, maxToMerge)
	if err != nil {
		return err
	}
	l = kind.Filter(l)
	if err := l.AddProgram("bio-intervals scatter-by-ns", commandLine); err != nil {
		return err
	}
	if err := interval.WriteFile(ctx, outPath, l); err != nil {
		return err
	}
	log.Printf("scatter-by-ns: wrote %d intervals to %s", l.Len(), outPath)
	return nil
}
