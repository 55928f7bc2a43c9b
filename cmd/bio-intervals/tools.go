package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/biointerval/interval"
	"v.io/x/lib/cmdline"
)

// Action combines the input lists.
type Action string

const (
	Concat    Action = "CONCAT"
	Union     Action = "UNION"
	Intersect Action = "INTERSECT"
	Subtract  Action = "SUBTRACT"
	SymDiff   Action = "SYMDIFF"
)

type toolsOpts struct {
	inputs       []string
	secondInputs []string
	action       Action
	padding      int
	sort         bool
	unique       bool
	invert       bool
	comments     []string
	scatterCount int
	scatterMode  interval.ScatterMode
	names        interval.NamePolicy
	output       string
	commandLine  string
}

func parseNamePolicy(s string) (interval.NamePolicy, error) {
	switch s {
	case "concatenate":
		return interval.ConcatenateNames, nil
	case "first":
		return interval.FirstName, nil
	}
	return 0, fmt.Errorf("unknown name policy %q; must be concatenate or first", s)
}

func newCmdTools() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "tools",
		Short: "Combine, pad, sort, unique, invert and scatter interval lists",
	}
	var (
		inputs, secondInputs, comments stringList
	)
	cmd.Flags.Var(&inputs, "input", "Input interval list; may be repeated")
	cmd.Flags.Var(&secondInputs, "second-input", "Second set of interval lists for SUBTRACT and SYMDIFF; may be repeated")
	cmd.Flags.Var(&comments, "comment", "Comment added to the output header; may be repeated")
	action := cmd.Flags.String("action", string(Concat), "One of CONCAT, UNION, INTERSECT, SUBTRACT, SYMDIFF")
	padding := cmd.Flags.Int("padding", 0, "Bases added to both ends of every input interval")
	sort := cmd.Flags.Bool("sort", true, "Sort the result")
	unique := cmd.Flags.Bool("unique", false, "Merge overlapping and abutting intervals in the result")
	invert := cmd.Flags.Bool("invert", false, "Output the gaps between the result's intervals")
	scatterCount := cmd.Flags.Int("scatter-count", 1, "Number of lists to scatter the result into")
	scatterMode := cmd.Flags.String("subdivision-mode", interval.IntervalSubdivision.String(), "Scatter mode")
	names := cmd.Flags.String("names", "concatenate", "Naming of merged intervals: concatenate or first")
	output := cmd.Flags.String("output", "", "Output interval list, or output directory when scattering")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if err := checkArgs("tools", argv, 0, "no positional arguments"); err != nil {
			return err
		}
		opts := toolsOpts{
			inputs:       inputs,
			secondInputs: secondInputs,
			action:       Action(strings.ToUpper(*action)),
			padding:      *padding,
			sort:         *sort,
			unique:       *unique,
			invert:       *invert,
			comments:     comments,
			scatterCount: *scatterCount,
			output:       *output,
			commandLine:  strings.Join(os.Args, " "),
		}
		var err error
		if opts.scatterMode, err = interval.ParseScatterMode(*scatterMode); err != nil {
			return err
		}
		if opts.names, err = parseNamePolicy(*names); err != nil {
			return err
		}
		return runTools(vcontext.Background(), opts)
	})
	return cmd
}

func readLists(ctx context.Context, paths []string, padding int) ([]*interval.List, error) {
	lists := make([]*interval.List, len(paths))
	for i, path := range paths {
		l, err := interval.ReadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		if padding != 0 {
			l = l.Padded(padding, padding)
		}
		lists[i] = l
	}
	return lists, nil
}

func act(ops interval.SetOps, action Action, lists, second []*interval.List) (*interval.List, error) {
	switch action {
	case Concat, Union, Intersect:
		if len(second) > 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("%s does not take a second input", action))
		}
	}
	switch action {
	case Concat:
		return ops.Concatenate(lists...)
	case Union:
		return ops.Union(lists...)
	case Intersect:
		return ops.IntersectAll(lists...)
	case Subtract:
		return ops.Subtract(lists, second)
	case SymDiff:
		return ops.Difference(lists, second)
	}
	return nil, errors.E(errors.Invalid, fmt.Sprintf("unknown action %q", action))
}

func runTools(ctx context.Context, opts toolsOpts) error {
	if len(opts.inputs) == 0 {
		return errors.E(errors.Invalid, "tools: at least one -input is required")
	}
	if opts.output == "" {
		return errors.E(errors.Invalid, "tools: -output is required")
	}
	if opts.scatterCount < 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("tools: -scatter-count must be positive, got %d", opts.scatterCount))
	}
	lists, err := readLists(ctx, opts.inputs, opts.padding)
	if err != nil {
		return err
	}
	second, err := readLists(ctx, opts.secondInputs, opts.padding)
	if err != nil {
		return err
	}
	ops := interval.SetOps{Names: opts.names}
	result, err := act(ops, opts.action, lists, second)
	if err != nil {
		return err
	}
	if opts.scatterCount > 1 {
		opts.sort = true
	}
	if opts.sort {
		result = result.Sorted()
	}
	if opts.invert {
		result = ops.Invert(result)
	}
	if opts.unique {
		result = result.Uniqued(opts.names)
	}
	if err := result.AddProgram("bio-intervals tools", opts.commandLine); err != nil {
		return err
	}
	for _, c := range opts.comments {
		result.AddComment(c)
	}

	if opts.scatterCount == 1 {
		if err := interval.WriteFile(ctx, opts.output, result); err != nil {
			return err
		}
	} else {
		if err := writeScattered(ctx, ops, result, opts); err != nil {
			return err
		}
	}
	log.Printf("tools: wrote %d intervals covering %d unique bases", result.Len(), result.UniqueBaseCount())
	return nil
}

// scatterPath returns the path of the i'th (0-based) list of a scatter into n.
func scatterPath(dir string, i, n int) string {
	return file.Join(dir, fmt.Sprintf("temp_%04d_of_%d", i+1, n), "scattered.intervals")
}

func writeScattered(ctx context.Context, ops interval.SetOps, l *interval.List, opts toolsOpts) error {
	pieces, err := ops.Scatter(l, opts.scatterCount, opts.scatterMode)
	if err != nil {
		return err
	}
	return traverse.Each(len(pieces), func(i int) error {
		path := scatterPath(opts.output, i, opts.scatterCount)
		if !strings.Contains(path, "://") {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
		}
		return interval.WriteFile(ctx, path, pieces[i])
	})
}
