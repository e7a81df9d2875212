package root

import (
	"fmt"
	"path/filepath"

	"github.com/schmitthub/gitmerge/internal/cmd/analyze"
	"github.com/schmitthub/gitmerge/internal/cmd/config"
	"github.com/schmitthub/gitmerge/internal/cmd/merge"
	"github.com/schmitthub/gitmerge/internal/cmd/mergebase"
	"github.com/schmitthub/gitmerge/internal/cmd/options"
	versioncmd "github.com/schmitthub/gitmerge/internal/cmd/version"
	"github.com/schmitthub/gitmerge/internal/cmdutil"
	internalconfig "github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/docs"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/spf13/cobra"
)

// NewCmdRoot creates the root command for the gitmerge CLI.
func NewCmdRoot(f *cmdutil.Factory) *cobra.Command {
	var (
		debug   bool
		repoDir string
	)

	cmd := &cobra.Command{
		Use:   "gitmerge",
		Short: "Analyze and perform git merges through a native merge library",
		Long: `gitmerge drives a native git merge library through a safe binding layer.

Quick start:
  gitmerge analyze feature     # How would feature merge into HEAD?
  gitmerge merge feature       # Merge it
  gitmerge options             # Show the effective merge options
  gitmerge config init         # Write a gitmerge.yaml with the defaults`,
		Annotations: map[string]string{
			docs.EnvironmentAnnotation: `GITMERGE_HOME  Directory holding logs (default ~/.gitmerge)
GITMERGE_MERGE_*  Override a merge key of gitmerge.yaml, e.g. GITMERGE_MERGE_RENAME_THRESHOLD
GITMERGE_LOGGING_*  Override a logging key of gitmerge.yaml
GITMERGE_SPINNER_DISABLED  Print progress as plain text instead of a spinner
NO_COLOR  Disable colored output`,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f.Debug = debug
			if repoDir != "" {
				abs, err := filepath.Abs(repoDir)
				if err != nil {
					return cmdutil.FlagErrorf("invalid --repo %q: %v", repoDir, err)
				}
				f.WorkDir = abs
			}

			initializeLogger(f)

			logger.Debug().
				Str("version", f.Version).
				Str("workdir", f.WorkDir).
				Bool("debug", debug).
				Msg("gitmerge starting")

			return nil
		},
		Version: f.Version,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&repoDir, "repo", "C", "", "Run as if gitmerge was started in `path`")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cmdutil.FlagErrorWrap(err)
	})
	cmd.SetVersionTemplate(versioncmd.Format(f.Version, f.Commit))

	cmd.AddCommand(analyze.NewCmdAnalyze(f, nil))
	cmd.AddCommand(mergebase.NewCmdMergeBase(f, nil))
	cmd.AddCommand(merge.NewCmdMerge(f, nil))
	cmd.AddCommand(options.NewCmdOptions(f, nil))
	cmd.AddCommand(config.NewCmdConfig(f))
	cmd.AddCommand(versioncmd.NewCmdVersion(f))

	return cmd
}

// initializeLogger sets up console logging for --debug and rotated file
// logging otherwise. Any failure leaves the logger as a nop logger.
func initializeLogger(f *cmdutil.Factory) {
	if f.Debug {
		logger.InitConsole(true, f.IOStreams.ErrOut)
		return
	}

	logger.Init()
	if f.Config == nil {
		return
	}
	cfg, err := f.Config()
	if err != nil {
		// The command reports the config error itself.
		return
	}
	logsDir, err := internalconfig.LogsDir()
	if err != nil {
		return
	}
	if err := logger.InitWithFile(false, logsDir, cfg.Logging.Logger()); err != nil {
		logger.Init()
		fmt.Fprintf(f.IOStreams.ErrOut, "Warning: file logging unavailable: %v\n", err)
	}
}
