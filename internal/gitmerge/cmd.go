package gitmerge

import (
	"context"
	"errors"
	"fmt"

	"github.com/schmitthub/gitmerge/internal/cmd/factory"
	"github.com/schmitthub/gitmerge/internal/cmd/root"
	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/signals"
	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags
var (
	Version = "dev"
	Commit  = "none"
)

const (
	exitOk    = 0
	exitError = 1
	exitUsage = 2

	// exitInterrupted follows the shell convention of 128+SIGINT.
	exitInterrupted = 130
)

// Main is the entry point for the gitmerge CLI.
// It initializes the Factory, creates the root command, and executes it.
func Main() int {
	// Ensure logs are flushed on exit
	defer logger.CloseFileWriter()

	ctx, cancel := signals.SetupSignalContext(context.Background())
	defer cancel()

	f := factory.New(Version, Commit)
	rootCmd := root.NewCmdRoot(f)

	cmd, err := rootCmd.ExecuteContextC(ctx)
	return exitCode(f.IOStreams, cmd, err)
}

// exitCode renders err for the user and maps it to a process exit status.
func exitCode(ios *iostreams.IOStreams, cmd *cobra.Command, err error) int {
	if err == nil {
		return exitOk
	}

	var exitErr *cmdutil.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, cmdutil.SilentError) {
		return exitError
	}
	var interrupted *signals.InterruptedError
	if errors.As(err, &interrupted) {
		fmt.Fprintf(ios.ErrOut, "%s %s\n", ios.ColorScheme().WarningIcon(), interrupted)
		return exitInterrupted
	}

	cs := ios.ColorScheme()
	fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), err)

	var flagErr *cmdutil.FlagError
	if errors.As(err, &flagErr) {
		if cmd != nil {
			fmt.Fprintf(ios.ErrOut, "\nRun '%s --help' for more information.\n", cmd.CommandPath())
		}
		return exitUsage
	}
	return exitError
}
