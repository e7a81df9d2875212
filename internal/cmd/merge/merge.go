// Package merge provides the merge command.
package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/spf13/cobra"
)

// MergeOptions holds options for the merge command.
type MergeOptions struct {
	IOStreams      *iostreams.IOStreams
	Library        func() native.Library
	Config         func() (*config.Config, error)
	OpenRepository func() (*git.Repository, error)

	Revisions []string
	Flags     *cmdutil.MergeFlags
}

// NewCmdMerge creates the merge command.
func NewCmdMerge(f *cmdutil.Factory, runF func(context.Context, *MergeOptions) error) *cobra.Command {
	opts := &MergeOptions{
		IOStreams:      f.IOStreams,
		Library:        f.Library,
		Config:         f.Config,
		OpenRepository: f.OpenRepository,
	}

	cmd := &cobra.Command{
		Use:   "merge [OPTIONS] REVISION [REVISION...]",
		Short: "Merge revisions into the current branch",
		Long: `Merges one or more revisions into HEAD using the native merge library.

Merge options are layered: library defaults first, then the merge section
of gitmerge.yaml and GITMERGE_MERGE_* variables, then any flag given on the
command line. Run 'gitmerge options' with the same flags to see the
effective record without merging.

The repository is locked for the duration of the merge; a concurrent
gitmerge merge fails with "repository locked".`,
		Example: `  # Fast-forward main to feature
  gitmerge merge feature

  # Prefer their side of conflicting hunks and use diff3 markers
  gitmerge merge --favor theirs --conflict-style diff3 topic

  # Merge in another checkout
  gitmerge -C ../other merge origin/main`,
		Args: cmdutil.RequiresMinArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Revisions = args
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return mergeRun(cmd.Context(), opts)
		},
	}

	opts.Flags = cmdutil.AddMergeFlags(cmd)

	return cmd
}

func mergeRun(ctx context.Context, opts *MergeOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	mergeOpts, err := cmdutil.BuildMergeOptions(opts.Library(), cfg, opts.Flags.Overlay())
	if err != nil {
		return err
	}

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
	logger.Debug().
		Strs("revisions", opts.Revisions).
		Str("analysis", analysis.String()).
		Msg("merging")

	if analysis.IsUpToDate() {
		fmt.Fprintln(ios.ErrOut, "Already up to date.")
		return nil
	}

	// Last chance to stop before the working tree changes.
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}

	label := "Merging " + strings.Join(opts.Revisions, ", ")
	err = ios.RunWithProgress(label, func() error {
		return repo.Merge(heads, mergeOpts)
	})
	if err != nil {
		return explain(err)
	}

	id, err := heads[0].ID()
	if err != nil {
		return err
	}
	verb := "Merged"
	if analysis.IsFastForward() {
		verb = "Fast-forwarded to"
	}
	fmt.Fprintf(ios.ErrOut, "%s %s %s (%s)\n", cs.SuccessIcon(), verb, strings.Join(opts.Revisions, ", "), cs.Muted(id.Short()))
	logger.Info().Strs("revisions", opts.Revisions).Str("id", id.String()).Msg("merge complete")
	return nil
}

// explain adds a hint for the refusals a user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, git.ErrConflict):
		return fmt.Errorf("%w\nCommit or stash your local changes before merging", err)
	case errors.Is(err, git.ErrLocked):
		return fmt.Errorf("%w\nAnother gitmerge process is merging in this repository", err)
	case errors.Is(err, git.ErrNonFastForward):
		return fmt.Errorf("%w\nmerge.ff is set to only; rebase or merge the other way", err)
	}
	return err
}
