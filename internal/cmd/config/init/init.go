// Package init provides the config init command.
package init

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/prompter"
	"github.com/spf13/cobra"
)

// InitOptions contains the options for the config init command.
type InitOptions struct {
	IOStreams *iostreams.IOStreams
	Prompter  func() *prompter.Prompter
	WorkDir   string

	Force bool
}

// NewCmdInit creates the config init command.
func NewCmdInit(f *cmdutil.Factory, runF func(context.Context, *InitOptions) error) *cobra.Command {
	opts := &InitOptions{
		IOStreams: f.IOStreams,
		Prompter:  f.Prompter,
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gitmerge.yaml with the default settings",
		Long: `Writes a commented gitmerge.yaml to the working directory (or the
directory given with --repo). Every merge key is left commented out so the
native library defaults apply until you change them.

If the file already exists you are asked before it is replaced; without a
terminal the command refuses unless --force is given.`,
		Example: `  gitmerge config init
  gitmerge config init --force`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.WorkDir = f.WorkDir
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return initRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing gitmerge.yaml")

	return cmd
}

func initRun(_ context.Context, opts *InitOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()
	path := filepath.Join(opts.WorkDir, config.ConfigFileName)

	force := opts.Force
	err := config.WriteDefault(path, force)
	if errors.Is(err, config.ErrConfigExists) {
		force, err = confirmOverwrite(opts, path)
		if err != nil {
			return err
		}
		if !force {
			fmt.Fprintf(ios.ErrOut, "%s %s already exists; use --force to overwrite it\n", cs.WarningIcon(), path)
			return cmdutil.SilentError
		}
		err = config.WriteDefault(path, true)
	}
	if err != nil {
		return err
	}

	logger.Info().Str("file", path).Bool("force", force).Msg("wrote default config")
	fmt.Fprintf(ios.ErrOut, "%s Created: %s\n", cs.SuccessIcon(), path)
	return nil
}

func confirmOverwrite(opts *InitOptions, path string) (bool, error) {
	if opts.Prompter == nil {
		return false, nil
	}
	return opts.Prompter().Confirm(fmt.Sprintf("%s already exists. Overwrite it?", path), false)
}
