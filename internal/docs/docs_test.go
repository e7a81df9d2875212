package docs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree() *cobra.Command {
	root := &cobra.Command{
		Use:   "gitmerge",
		Short: "Merge analysis and merges",
		Long:  "gitmerge analyzes and performs merges.",
		Annotations: map[string]string{
			EnvironmentAnnotation: "GITMERGE_HOME  Configuration directory\nNO_COLOR  Disable color",
		},
	}
	root.PersistentFlags().BoolP("debug", "D", false, "Enable debug logging")

	merge := &cobra.Command{
		Use:     "merge REVISION",
		Short:   "Merge a revision into HEAD",
		Example: "  gitmerge merge feature",
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	merge.Flags().Uint("rename-threshold", 50, "Similarity threshold for renames")
	merge.Flags().Bool("fail-on-conflict", false, "Abort on the first conflict")

	hidden := &cobra.Command{
		Use:    "internal",
		Hidden: true,
		RunE:   func(*cobra.Command, []string) error { return nil },
	}

	root.AddCommand(merge, hidden)
	return root
}

func TestGenMarkdown(t *testing.T) {
	root := newTestTree()
	merge, _, err := root.Find([]string{"merge"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, GenMarkdown(merge, &buf))
	out := buf.String()

	assert.Contains(t, out, "## gitmerge merge")
	assert.Contains(t, out, "gitmerge merge REVISION")
	assert.Contains(t, out, "### Examples")
	assert.Contains(t, out, "--rename-threshold")
	assert.Contains(t, out, "### Options inherited from parent commands")
	assert.Contains(t, out, "[gitmerge](gitmerge.md)")
}

func TestGenMarkdown_RootListsVisibleSubcommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenMarkdown(newTestTree(), &buf))
	out := buf.String()

	assert.Contains(t, out, "[gitmerge merge](gitmerge_merge.md)")
	assert.NotContains(t, out, "internal")
	assert.Contains(t, out, "### Environment")
	assert.Contains(t, out, "GITMERGE_HOME")
}

func TestGenMarkdownTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenMarkdownTree(newTestTree(), dir))

	assert.FileExists(t, filepath.Join(dir, "gitmerge.md"))
	assert.FileExists(t, filepath.Join(dir, "gitmerge_merge.md"))
	assert.NoFileExists(t, filepath.Join(dir, "gitmerge_internal.md"))
}

func TestGenMan(t *testing.T) {
	root := newTestTree()
	merge, _, err := root.Find([]string{"merge"})
	require.NoError(t, err)

	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, GenMan(merge, &GenManHeader{Section: "1", Date: &date, Manual: "gitmerge Manual"}, &buf))
	out := buf.String()

	assert.Contains(t, out, ".TH")
	assert.Contains(t, out, "GITMERGE")
	assert.Contains(t, out, "Mar 2026")
	assert.Contains(t, out, "threshold")
	assert.Contains(t, out, "(default: 50)")
	assert.Contains(t, out, "SEE ALSO")
	assert.Contains(t, out, "gitmerge(1)")
}

func TestGenMan_Environment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenMan(newTestTree(), nil, &buf))
	assert.Contains(t, buf.String(), "ENVIRONMENT")
	assert.Contains(t, buf.String(), "Configuration directory")
}

func TestGenManTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenManTree(newTestTree(), dir, nil))

	assert.FileExists(t, filepath.Join(dir, "gitmerge.1"))
	assert.FileExists(t, filepath.Join(dir, "gitmerge-merge.1"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGenManTree_BadDir(t *testing.T) {
	err := GenManTree(newTestTree(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}
