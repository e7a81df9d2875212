package gitmerge

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/iostreams/iostreamstest"
	"github.com/schmitthub/gitmerge/internal/signals"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	root := &cobra.Command{Use: "gitmerge"}
	sub := &cobra.Command{Use: "merge"}
	root.AddCommand(sub)

	tests := []struct {
		name       string
		err        error
		want       int
		wantStderr string
	}{
		{name: "success", err: nil, want: exitOk},
		{name: "exit error", err: fmt.Errorf("analyze: %w", &cmdutil.ExitError{Code: 1}), want: 1},
		{name: "silent", err: cmdutil.SilentError, want: exitError},
		{name: "flag error", err: cmdutil.FlagErrorf("bad --favor"), want: exitUsage, wantStderr: "[error] bad --favor\n\nRun 'gitmerge merge --help' for more information.\n"},
		{name: "runtime error", err: fmt.Errorf("merge: %w", git.ErrLocked), want: exitError, wantStderr: "[error] merge: repository locked\n"},
		{name: "interrupted", err: fmt.Errorf("merge: %w", &signals.InterruptedError{Signal: syscall.SIGINT}), want: exitInterrupted, wantStderr: "[warn] interrupted by interrupt\n"},
		{name: "plain error", err: errors.New("boom"), want: exitError, wantStderr: "[error] boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := iostreamstest.New()
			assert.Equal(t, tt.want, exitCode(tio.IOStreams, sub, tt.err))
			assert.Equal(t, tt.wantStderr, tio.ErrBuf.String())
		})
	}
}
