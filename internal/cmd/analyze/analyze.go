// Package analyze provides the analyze command.
package analyze

import (
	"context"
	"fmt"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/spf13/cobra"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	IOStreams      *iostreams.IOStreams
	OpenRepository func() (*git.Repository, error)

	Revisions []string
	ExitCode  bool
	Format    *cmdutil.FormatFlags
}

// Result is the machine-readable form of an analysis.
type Result struct {
	Heads       []Head `json:"heads" yaml:"heads"`
	Analysis    string `json:"analysis" yaml:"analysis"`
	UpToDate    bool   `json:"up_to_date" yaml:"up_to_date"`
	FastForward bool   `json:"fast_forward" yaml:"fast_forward"`
	Normal      bool   `json:"normal" yaml:"normal"`
	Unborn      bool   `json:"unborn" yaml:"unborn"`
}

// Head describes one resolved merge head.
type Head struct {
	Revision string `json:"revision" yaml:"revision"`
	ID       string `json:"id" yaml:"id"`
	Ref      string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// NewCmdAnalyze creates the analyze command.
func NewCmdAnalyze(f *cmdutil.Factory, runF func(context.Context, *AnalyzeOptions) error) *cobra.Command {
	opts := &AnalyzeOptions{
		IOStreams:      f.IOStreams,
		OpenRepository: f.OpenRepository,
	}

	cmd := &cobra.Command{
		Use:   "analyze REVISION [REVISION...]",
		Short: "Report how the given revisions would merge into HEAD",
		Long: `Analyzes merging one or more revisions into the current HEAD without
touching the repository.

The analysis reports whether HEAD is already up to date, can be
fast-forwarded, needs a normal merge, or points at an unborn branch, along
with the merge.ff preference from the repository configuration.`,
		Example: `  # Can main be fast-forwarded to feature?
  gitmerge analyze feature

  # Machine-readable output
  gitmerge analyze --json origin/main

  # Exit 1 unless a fast-forward (or nothing) is needed
  gitmerge analyze --exit-code feature`,
		Args: cmdutil.RequiresMinArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Revisions = args
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return analyzeRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.ExitCode, "exit-code", false, "Exit with status 1 when a fast-forward is not possible")
	opts.Format = cmdutil.AddFormatFlags(cmd)

	return cmd
}

func analyzeRun(_ context.Context, opts *AnalyzeOptions) error {
	ios := opts.IOStreams

	repo, err := opts.OpenRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	heads, err := cmdutil.ResolveHeads(repo, opts.Revisions)
	if err != nil {
		return err
	}
	defer cmdutil.FreeHeads(heads)

	analysis, err := repo.MergeAnalysis(heads...)
	if err != nil {
		return err
	}

	result := Result{
		Analysis:    analysis.String(),
		UpToDate:    analysis.IsUpToDate(),
		FastForward: analysis.IsFastForward(),
		Normal:      analysis.IsNormal(),
		Unborn:      analysis.IsUnborn(),
	}
	for i, h := range heads {
		head, err := describe(opts.Revisions[i], h)
		if err != nil {
			return err
		}
		result.Heads = append(result.Heads, head)
	}

	logger.Debug().
		Strs("revisions", opts.Revisions).
		Str("analysis", result.Analysis).
		Msg("merge analysis complete")

	err = opts.Format.Write(ios.Out, result, func() error {
		cs := ios.ColorScheme()
		for _, h := range result.Heads {
			fmt.Fprintf(ios.Out, "%s %s\n", cs.Muted(h.ID[:7]), h.Revision)
		}
		fmt.Fprintf(ios.Out, "%s\n", cs.Bold(result.Analysis))
		return nil
	})
	if err != nil {
		return err
	}

	if opts.ExitCode && !analysis.IsUpToDate() && !analysis.IsFastForward() {
		return &cmdutil.ExitError{Code: 1}
	}
	return nil
}

func describe(rev string, c *git.AnnotatedCommit) (Head, error) {
	id, err := c.ID()
	if err != nil {
		return Head{}, err
	}
	ref, err := c.Ref()
	if err != nil {
		return Head{}, err
	}
	return Head{Revision: rev, ID: id.String(), Ref: ref}, nil
}
