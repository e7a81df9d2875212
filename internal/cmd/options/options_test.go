package options

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/iostreams/iostreamstest"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/schmitthub/gitmerge/internal/native/gitengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runOptions(t *testing.T, cfg *config.Config, args ...string) (*iostreamstest.TestIOStreams, error) {
	t.Helper()
	tio := iostreamstest.New()
	lib := gitengine.New()
	f := &cmdutil.Factory{
		IOStreams: tio.IOStreams,
		Library:   func() native.Library { return lib },
		Config:    func() (*config.Config, error) { return cfg, nil },
	}
	cmd := NewCmdOptions(f, nil)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	_, err := cmd.ExecuteC()
	return tio, err
}

func TestOptionsRun_Defaults(t *testing.T) {
	tio, err := runOptions(t, config.DefaultConfig())
	require.NoError(t, err)

	var got git.Summary
	require.NoError(t, yaml.Unmarshal([]byte(tio.OutBuf.String()), &got))
	assert.Equal(t, uint32(gitengine.DefaultRenameThreshold), got.RenameThreshold)
	assert.Equal(t, uint32(gitengine.DefaultTargetLimit), got.TargetLimit)
	assert.True(t, got.FindRenames)
	assert.Equal(t, "normal", got.FileFavor)
	assert.Contains(t, tio.OutBuf.String(), "rename_threshold: 50\n")
}

func TestOptionsRun_Layering(t *testing.T) {
	cfg := config.DefaultConfig()
	threshold := uint(80)
	cfg.Merge.RenameThreshold = &threshold
	cfg.Merge.ConflictStyle = "diff3"

	tio, err := runOptions(t, cfg, "--json", "--conflict-style", "zdiff3", "--find-renames=false")
	require.NoError(t, err)

	var got git.Summary
	require.NoError(t, json.Unmarshal([]byte(tio.OutBuf.String()), &got))
	assert.Equal(t, uint32(80), got.RenameThreshold)
	assert.True(t, got.ZDiff3Style)
	assert.False(t, got.Diff3Style)
	assert.False(t, got.FindRenames)
}

func TestOptionsRun_Template(t *testing.T) {
	tio, err := runOptions(t, config.DefaultConfig(), "--favor", "union", "--format", "{{.FileFavor}}")
	require.NoError(t, err)
	assert.Equal(t, "union\n", tio.OutBuf.String())
}

func TestOptionsRun_RejectsArgs(t *testing.T) {
	_, err := runOptions(t, config.DefaultConfig(), "extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts no arguments")
}

func TestOptionsRun_BadFlag(t *testing.T) {
	_, err := runOptions(t, config.DefaultConfig(), "--favor", "mine")
	assert.ErrorIs(t, err, git.ErrInvalid)
}
