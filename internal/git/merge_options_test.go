package git_test

import (
	"math"
	"testing"

	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/logger/loggertest"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/schmitthub/gitmerge/internal/native/nativetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMergeOptions_LibraryDefaults(t *testing.T) {
	lib := nativetest.New()
	opts := git.NewMergeOptions(lib)

	raw := opts.Raw()
	assert.Equal(t, native.MergeOptionsVersion, raw.Version)
	assert.NotZero(t, raw.RenameThreshold)
	assert.NotZero(t, raw.TargetLimit)
	assert.Equal(t, lib.Defaults, *raw)
}

func TestNewMergeOptions_InitFailurePanics(t *testing.T) {
	tl := loggertest.Install(t)
	lib := nativetest.New()
	lib.InitErr = native.Errorf(native.ErrInvalid, native.ClassInvalid, "invalid version 1 on git_merge_options")

	assert.Panics(t, func() { git.NewMergeOptions(lib) })
	assert.Contains(t, tl.Output(), "merge options initialization failed")
}

func TestMergeOptions_Thresholds(t *testing.T) {
	opts := git.NewMergeOptions(nativetest.New()).
		RenameThreshold(80).
		TargetLimit(1000).
		RecursionLimit(3)

	raw := opts.Raw()
	assert.Equal(t, uint32(80), raw.RenameThreshold)
	assert.Equal(t, uint32(1000), raw.TargetLimit)
	assert.Equal(t, uint32(3), raw.RecursionLimit)
}

func TestMergeOptions_ThresholdTruncates(t *testing.T) {
	if math.MaxUint == math.MaxUint32 {
		t.Skip("uint is 32 bits wide")
	}
	wide := uint(math.MaxUint32)
	wide += 43

	opts := git.NewMergeOptions(nativetest.New()).RenameThreshold(wide).TargetLimit(wide)
	assert.Equal(t, uint32(42), opts.Raw().RenameThreshold)
	assert.Equal(t, uint32(42), opts.Raw().TargetLimit)
}

func TestMergeOptions_FileFlags(t *testing.T) {
	tests := []struct {
		name string
		set  func(*git.MergeOptions, bool) *git.MergeOptions
		bit  native.FileFlag
	}{
		{"standard style", (*git.MergeOptions).StandardStyle, native.FileStyleMerge},
		{"diff3 style", (*git.MergeOptions).Diff3Style, native.FileStyleDiff3},
		{"zdiff3 style", (*git.MergeOptions).ZDiff3Style, native.FileStyleZDiff3},
		{"simplify alnum", (*git.MergeOptions).SimplifyAlnum, native.FileSimplifyAlnum},
		{"ignore whitespace", (*git.MergeOptions).IgnoreWhitespace, native.FileIgnoreWhitespace},
		{"ignore whitespace change", (*git.MergeOptions).IgnoreWhitespaceChange, native.FileIgnoreWhitespaceChange},
		{"ignore whitespace eol", (*git.MergeOptions).IgnoreWhitespaceEOL, native.FileIgnoreWhitespaceEOL},
		{"patience", (*git.MergeOptions).Patience, native.FileDiffPatience},
		{"minimal", (*git.MergeOptions).Minimal, native.FileDiffMinimal},
		{"accept conflicts", (*git.MergeOptions).AcceptConflicts, native.FileAcceptConflicts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := git.NewMergeOptions(nativetest.New())
			before := *opts.Raw()

			tt.set(opts, true)
			assert.Equal(t, before.FileFlags|tt.bit, opts.Raw().FileFlags)
			assert.Equal(t, before.Flags, opts.Raw().Flags)

			tt.set(opts, false)
			assert.Equal(t, before.FileFlags&^tt.bit, opts.Raw().FileFlags)
		})
	}
}

func TestMergeOptions_MergeFlags(t *testing.T) {
	tests := []struct {
		name string
		set  func(*git.MergeOptions, bool) *git.MergeOptions
		bit  native.MergeFlag
	}{
		{"find renames", (*git.MergeOptions).FindRenames, native.MergeFindRenames},
		{"fail on conflict", (*git.MergeOptions).FailOnConflict, native.MergeFailOnConflict},
		{"skip reuc", (*git.MergeOptions).SkipREUC, native.MergeSkipREUC},
		{"no recursive", (*git.MergeOptions).NoRecursive, native.MergeNoRecursive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := git.NewMergeOptions(nativetest.New())
			fileFlags := opts.Raw().FileFlags

			tt.set(opts, true)
			assert.NotZero(t, opts.Raw().Flags&tt.bit)
			tt.set(opts, false)
			assert.Zero(t, opts.Raw().Flags&tt.bit)
			assert.Equal(t, fileFlags, opts.Raw().FileFlags)
		})
	}
}

func TestMergeOptions_StylesAreNotExclusive(t *testing.T) {
	opts := git.NewMergeOptions(nativetest.New()).StandardStyle(true).Diff3Style(true)

	flags := opts.Raw().FileFlags
	assert.NotZero(t, flags&native.FileStyleMerge)
	assert.NotZero(t, flags&native.FileStyleDiff3)
}

func TestMergeOptions_FileFavor(t *testing.T) {
	opts := git.NewMergeOptions(nativetest.New()).FileFavor(native.FavorTheirs)
	assert.Equal(t, native.FavorTheirs, opts.Raw().FileFavor)
	assert.Equal(t, "theirs", opts.Summary().FileFavor)

	opts.FileFavor(9)
	assert.Equal(t, "favor(9)", opts.Summary().FileFavor)
}

func TestMergeOptions_Summary(t *testing.T) {
	opts := git.NewMergeOptions(nativetest.New()).
		Diff3Style(true).
		Patience(true).
		IgnoreWhitespaceEOL(true).
		FindRenames(false)

	s := opts.Summary()
	assert.Equal(t, native.MergeOptionsVersion, s.Version)
	assert.Equal(t, uint32(50), s.RenameThreshold)
	assert.Equal(t, uint32(200), s.TargetLimit)
	assert.Equal(t, "normal", s.FileFavor)
	assert.True(t, s.Diff3Style)
	assert.True(t, s.Patience)
	assert.True(t, s.IgnoreWhitespaceEOL)
	assert.False(t, s.FindRenames)
	assert.False(t, s.StandardStyle)
	assert.False(t, s.Minimal)
}

func TestParseFileFavor(t *testing.T) {
	for _, name := range []string{"normal", "ours", "theirs", "union"} {
		favor, err := git.ParseFileFavor(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, git.NewMergeOptions(nativetest.New()).FileFavor(favor).Summary().FileFavor)
	}

	_, err := git.ParseFileFavor("mine")
	assert.ErrorIs(t, err, git.ErrInvalid)
}
