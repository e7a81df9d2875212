package check

import (
	"context"
	"fmt"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	internalconfig "github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/spf13/cobra"
)

// CheckOptions holds options for the config check command.
type CheckOptions struct {
	IOStreams *iostreams.IOStreams
	WorkDir   string
}

// NewCmdCheck creates the config check command.
func NewCmdCheck(f *cmdutil.Factory, runF func(context.Context, *CheckOptions) error) *cobra.Command {
	opts := &CheckOptions{
		IOStreams: f.IOStreams,
	}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate gitmerge.yaml",
		Long: `Validates the gitmerge.yaml configuration file in the working directory,
including GITMERGE_* environment overrides.

Checks for:
  - YAML syntax
  - Known values for file_favor, conflict_style, whitespace and diff_algorithm`,
		Example: `  # Validate configuration in current directory
  gitmerge config check`,
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.WorkDir = f.WorkDir
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return checkRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func checkRun(_ context.Context, opts *CheckOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()
	logger.Debug().Str("workdir", opts.WorkDir).Msg("checking configuration")

	loader := internalconfig.NewLoader(opts.WorkDir)
	if !loader.Exists() {
		fmt.Fprintf(ios.ErrOut, "%s %s not found\n", cs.FailureIcon(), loader.ConfigPath())
		fmt.Fprintln(ios.ErrOut, "Run 'gitmerge config init' to create one")
		return cmdutil.SilentError
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(ios.ErrOut, "%s Configuration is invalid\n", cs.FailureIcon())
		fmt.Fprintf(ios.ErrOut, "  %s\n", err)
		return cmdutil.SilentError
	}

	m := cfg.Merge
	fmt.Fprintf(ios.ErrOut, "%s Configuration is valid\n\n", cs.SuccessIcon())
	fmt.Fprintf(ios.ErrOut, "  File:           %s\n", loader.ConfigPath())
	fmt.Fprintf(ios.ErrOut, "  File favor:     %s\n", orDefault(m.FileFavor))
	fmt.Fprintf(ios.ErrOut, "  Conflict style: %s\n", orDefault(m.ConflictStyle))
	fmt.Fprintf(ios.ErrOut, "  Whitespace:     %s\n", orDefault(m.Whitespace))
	fmt.Fprintf(ios.ErrOut, "  Diff algorithm: %s\n", orDefault(m.DiffAlgorithm))
	fmt.Fprintf(ios.ErrOut, "  File logging:   %t\n", cfg.Logging.Logger().IsFileEnabled())
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(library default)"
	}
	return s
}
