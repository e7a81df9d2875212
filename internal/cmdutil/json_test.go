package cmdutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/schmitthub/gitmerge/internal/native/nativetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_MergeOptionsSummary(t *testing.T) {
	opts := git.NewMergeOptions(nativetest.New()).
		RenameThreshold(80).
		FileFavor(native.FavorTheirs).
		Diff3Style(true)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, opts.Summary()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "{\n  \"version\": 1,\n"), "want indented object, got %q", out)
	assert.Contains(t, out, `  "rename_threshold": 80,`)
	assert.Contains(t, out, `  "file_favor": "theirs",`)
	assert.Contains(t, out, `  "diff3_style": true,`)
	assert.Contains(t, out, `  "zdiff3_style": false,`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestWriteJSON_RevisionsNotEscaped(t *testing.T) {
	heads := []struct {
		Revision string `json:"revision"`
		Ref      string `json:"ref,omitempty"`
	}{
		{Revision: "topic&fix", Ref: "refs/heads/topic&fix"},
		{Revision: "HEAD~<1>"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, heads))
	out := buf.String()

	assert.Contains(t, out, `"revision": "topic&fix"`)
	assert.Contains(t, out, `"revision": "HEAD~<1>"`)
	assert.NotContains(t, out, `\u0026`)
	assert.NotContains(t, out, `\u003c`)
	assert.NotContains(t, out, `"ref": ""`)
}

func TestWriteJSON_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}
