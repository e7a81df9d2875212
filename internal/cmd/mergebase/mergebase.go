// Package mergebase provides the merge-base command.
package mergebase

import (
	"context"
	"fmt"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/spf13/cobra"
)

// MergeBaseOptions holds options for the merge-base command.
type MergeBaseOptions struct {
	IOStreams      *iostreams.IOStreams
	OpenRepository func() (*git.Repository, error)

	One, Two string
	Format   *cmdutil.FormatFlags
}

// Result is the machine-readable form of a merge base.
type Result struct {
	One  string `json:"one" yaml:"one"`
	Two  string `json:"two" yaml:"two"`
	Base string `json:"base" yaml:"base"`
}

// NewCmdMergeBase creates the merge-base command.
func NewCmdMergeBase(f *cmdutil.Factory, runF func(context.Context, *MergeBaseOptions) error) *cobra.Command {
	opts := &MergeBaseOptions{
		IOStreams:      f.IOStreams,
		OpenRepository: f.OpenRepository,
	}

	cmd := &cobra.Command{
		Use:   "merge-base REVISION REVISION",
		Short: "Print the best common ancestor of two revisions",
		Example: `  gitmerge merge-base main feature
  gitmerge merge-base --format '{{short .Base}}' HEAD origin/main`,
		Args: cmdutil.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.One, opts.Two = args[0], args[1]
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return mergeBaseRun(cmd.Context(), opts)
		},
	}

	opts.Format = cmdutil.AddFormatFlags(cmd)

	return cmd
}

func mergeBaseRun(_ context.Context, opts *MergeBaseOptions) error {
	repo, err := opts.OpenRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	heads, err := cmdutil.ResolveHeads(repo, []string{opts.One, opts.Two})
	if err != nil {
		return err
	}
	defer cmdutil.FreeHeads(heads)

	one, err := heads[0].ID()
	if err != nil {
		return err
	}
	two, err := heads[1].ID()
	if err != nil {
		return err
	}

	base, err := repo.MergeBase(one, two)
	if err != nil {
		return fmt.Errorf("no merge base between %s and %s: %w", opts.One, opts.Two, err)
	}

	result := Result{One: one.String(), Two: two.String(), Base: base.String()}
	return opts.Format.Write(opts.IOStreams.Out, result, func() error {
		_, err := fmt.Fprintln(opts.IOStreams.Out, result.Base)
		return err
	})
}
