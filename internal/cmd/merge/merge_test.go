package merge

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/shlex"
	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/git/gittest"
	"github.com/schmitthub/gitmerge/internal/iostreams/iostreamstest"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCmdMerge(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRevs  []string
		wantFavor string
		wantErr   bool
	}{
		{name: "single revision", input: "feature", wantRevs: []string{"feature"}},
		{name: "with favor", input: "--favor theirs feature", wantRevs: []string{"feature"}, wantFavor: "theirs"},
		{name: "unknown flag", input: "--squash feature", wantErr: true},
		{name: "no arguments", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &cmdutil.Factory{}

			var gotOpts *MergeOptions
			cmd := NewCmdMerge(f, func(_ context.Context, opts *MergeOptions) error {
				gotOpts = opts
				return nil
			})

			argv, err := shlex.Split(tt.input)
			require.NoError(t, err)
			cmd.SetArgs(argv)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			_, err = cmd.ExecuteC()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRevs, gotOpts.Revisions)
			assert.Equal(t, tt.wantFavor, gotOpts.Flags.Overlay().FileFavor)
		})
	}
}

func TestCmdMerge_Properties(t *testing.T) {
	cmd := NewCmdMerge(&cmdutil.Factory{}, nil)

	require.NotEmpty(t, cmd.Short)
	require.NotEmpty(t, cmd.Long)
	require.NotEmpty(t, cmd.Example)
	for _, name := range []string{"rename-threshold", "target-limit", "favor", "conflict-style", "whitespace", "diff-algorithm", "fail-on-conflict"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s", name)
	}
}

func runMerge(t *testing.T, repo *gittest.InMemoryRepo, cfg *config.Config, args ...string) (*iostreamstest.TestIOStreams, error) {
	t.Helper()
	tio := iostreamstest.New()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	f := &cmdutil.Factory{
		IOStreams:      tio.IOStreams,
		Library:        func() native.Library { return repo.Engine },
		Config:         func() (*config.Config, error) { return cfg, nil },
		OpenRepository: func() (*git.Repository, error) { return repo.Repository, nil },
	}
	cmd := NewCmdMerge(f, nil)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	_, err := cmd.ExecuteC()
	return tio, err
}

func TestMergeRun_FastForward(t *testing.T) {
	repo, ids := gittest.NewFeatureHistory(t)

	tio, err := runMerge(t, repo, nil, "feature")
	require.NoError(t, err)
	assert.Equal(t, ids[3], repo.BranchHead(t, "main"))
	assert.Contains(t, tio.ErrBuf.String(), "[ok] Fast-forwarded to feature ("+ids[3].Short()+")")

	repos, commits := repo.Engine.LiveObjects()
	assert.Zero(t, repos)
	assert.Zero(t, commits)
}

func TestMergeRun_AlreadyUpToDate(t *testing.T) {
	repo, ids := gittest.NewFeatureHistory(t)

	tio, err := runMerge(t, repo, nil, ids[0].String())
	require.NoError(t, err)
	assert.Equal(t, "Already up to date.\n", tio.ErrBuf.String())
	assert.Equal(t, ids[1], repo.BranchHead(t, "main"))
}

func TestMergeRun_LocalChanges(t *testing.T) {
	repo, ids := gittest.NewFeatureHistory(t)
	repo.WriteFile(t, "a.txt", "edited\n")

	_, err := runMerge(t, repo, nil, "feature")
	require.ErrorIs(t, err, git.ErrConflict)
	assert.Contains(t, err.Error(), "stash")
	assert.Equal(t, ids[1], repo.BranchHead(t, "main"))
}

func TestMergeRun_FastForwardOnly(t *testing.T) {
	repo, _ := gittest.NewFeatureHistory(t)
	repo.Commit(t, "E", map[string]string{"e.txt": "e\n"})
	repo.SetConfig(t, "merge", "ff", "only")

	_, err := runMerge(t, repo, nil, "feature")
	require.ErrorIs(t, err, git.ErrNonFastForward)
	assert.Contains(t, err.Error(), "merge.ff")
}

func TestMergeRun_InvalidFlagValue(t *testing.T) {
	repo, ids := gittest.NewFeatureHistory(t)

	_, err := runMerge(t, repo, nil, "--conflict-style", "fancy", "feature")
	var flagErr *cmdutil.FlagError
	require.ErrorAs(t, err, &flagErr)
	assert.Equal(t, ids[1], repo.BranchHead(t, "main"))
}

func TestMergeRun_ConfigApplied(t *testing.T) {
	repo, _ := gittest.NewFeatureHistory(t)
	cfg := config.DefaultConfig()
	cfg.Merge.DiffAlgorithm = "bogus"

	_, err := runMerge(t, repo, cfg, "feature")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge config")
}

func TestMergeRun_CanceledBeforeMerge(t *testing.T) {
	repo, ids := gittest.NewFeatureHistory(t)
	tio := iostreamstest.New()
	f := &cmdutil.Factory{
		IOStreams:      tio.IOStreams,
		Library:        func() native.Library { return repo.Engine },
		Config:         func() (*config.Config, error) { return config.DefaultConfig(), nil },
		OpenRepository: func() (*git.Repository, error) { return repo.Repository, nil },
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewCmdMerge(f, nil)
	cmd.SetArgs([]string{"feature"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	_, err := cmd.ExecuteContextC(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ids[1], repo.BranchHead(t, "main"))
}
