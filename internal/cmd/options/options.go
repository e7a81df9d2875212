// Package options provides the options command.
package options

import (
	"context"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/spf13/cobra"
)

// OptionsOptions holds options for the options command.
type OptionsOptions struct {
	IOStreams *iostreams.IOStreams
	Library   func() native.Library
	Config    func() (*config.Config, error)

	Flags  *cmdutil.MergeFlags
	Format *cmdutil.FormatFlags
}

// NewCmdOptions creates the options command.
func NewCmdOptions(f *cmdutil.Factory, runF func(context.Context, *OptionsOptions) error) *cobra.Command {
	opts := &OptionsOptions{
		IOStreams: f.IOStreams,
		Library:   f.Library,
		Config:    f.Config,
	}

	cmd := &cobra.Command{
		Use:   "options [OPTIONS]",
		Short: "Print the effective merge options",
		Long: `Prints the merge options record that 'gitmerge merge' would pass to the
native library, after layering gitmerge.yaml, GITMERGE_MERGE_* variables and
the given flags over the library defaults. Output is YAML unless --format or
--json is given.`,
		Example: `  gitmerge options
  gitmerge options --conflict-style zdiff3 --json
  GITMERGE_MERGE_RENAME_THRESHOLD=80 gitmerge options --format '{{.RenameThreshold}}'`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return optionsRun(cmd.Context(), opts)
		},
	}

	opts.Flags = cmdutil.AddMergeFlags(cmd)
	opts.Format = cmdutil.AddFormatFlags(cmd)

	return cmd
}

func optionsRun(_ context.Context, opts *OptionsOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	mergeOpts, err := cmdutil.BuildMergeOptions(opts.Library(), cfg, opts.Flags.Overlay())
	if err != nil {
		return err
	}

	summary := mergeOpts.Summary()
	out := opts.IOStreams.Out
	return opts.Format.Write(out, summary, func() error {
		return cmdutil.WriteYAML(out, summary)
	})
}
