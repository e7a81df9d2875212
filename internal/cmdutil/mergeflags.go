package cmdutil

import (
	"fmt"
	"strings"

	"github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// MergeFlags holds the merge option flags shared by merge and options.
// Only flags the user set explicitly take part in Overlay, so anything
// left alone falls through to gitmerge.yaml and then to library defaults.
type MergeFlags struct {
	flags *pflag.FlagSet

	RenameThreshold uint
	TargetLimit     uint
	RecursionLimit  uint
	FindRenames     bool
	FailOnConflict  bool
	SkipREUC        bool
	NoRecursive     bool
	SimplifyAlnum   bool
	AcceptConflicts bool
	FileFavor       string
	ConflictStyle   string
	Whitespace      string
	DiffAlgorithm   string
}

// AddMergeFlags registers the merge option flags on cmd.
func AddMergeFlags(cmd *cobra.Command) *MergeFlags {
	mf := &MergeFlags{flags: cmd.Flags()}
	fs := cmd.Flags()

	fs.UintVar(&mf.RenameThreshold, "rename-threshold", 0, "Similarity percentage for rename detection")
	fs.UintVar(&mf.TargetLimit, "target-limit", 0, "Maximum number of rename candidates")
	fs.UintVar(&mf.RecursionLimit, "recursion-limit", 0, "Maximum virtual merge base recursion depth")
	fs.BoolVar(&mf.FindRenames, "find-renames", false, "Detect renames")
	fs.BoolVar(&mf.FailOnConflict, "fail-on-conflict", false, "Stop at the first conflict")
	fs.BoolVar(&mf.SkipREUC, "skip-reuc", false, "Do not write resolve-undo entries")
	fs.BoolVar(&mf.NoRecursive, "no-recursive", false, "Use the first merge base instead of building a virtual one")
	fs.BoolVar(&mf.SimplifyAlnum, "simplify-alnum", false, "Condense non-alphanumeric conflict regions")
	fs.BoolVar(&mf.AcceptConflicts, "accept-conflicts", false, "Write conflict markers instead of failing")
	fs.StringVar(&mf.FileFavor, "favor", "", "Resolve content conflicts: normal, ours, theirs, or union")
	fs.StringVar(&mf.ConflictStyle, "conflict-style", "", "Conflict marker style: "+strings.Join(config.ConflictStyles, ", "))
	fs.StringVar(&mf.Whitespace, "whitespace", "", "Whitespace handling: "+strings.Join(config.WhitespaceModes, ", "))
	fs.StringVar(&mf.DiffAlgorithm, "diff-algorithm", "", "Diff algorithm: "+strings.Join(config.DiffAlgorithms, ", "))

	return mf
}

// Overlay returns the explicitly set flags as a merge config section.
func (mf *MergeFlags) Overlay() config.MergeConfig {
	var m config.MergeConfig
	if mf == nil || mf.flags == nil {
		return m
	}
	changed := mf.flags.Changed

	uintFlag := func(name string, v uint) *uint {
		if !changed(name) {
			return nil
		}
		return &v
	}
	boolFlag := func(name string, v bool) *bool {
		if !changed(name) {
			return nil
		}
		return &v
	}

	m.RenameThreshold = uintFlag("rename-threshold", mf.RenameThreshold)
	m.TargetLimit = uintFlag("target-limit", mf.TargetLimit)
	m.RecursionLimit = uintFlag("recursion-limit", mf.RecursionLimit)
	m.FindRenames = boolFlag("find-renames", mf.FindRenames)
	m.FailOnConflict = boolFlag("fail-on-conflict", mf.FailOnConflict)
	m.SkipREUC = boolFlag("skip-reuc", mf.SkipREUC)
	m.NoRecursive = boolFlag("no-recursive", mf.NoRecursive)
	m.SimplifyAlnum = boolFlag("simplify-alnum", mf.SimplifyAlnum)
	m.AcceptConflicts = boolFlag("accept-conflicts", mf.AcceptConflicts)
	m.FileFavor = mf.FileFavor
	m.ConflictStyle = mf.ConflictStyle
	m.Whitespace = mf.Whitespace
	m.DiffAlgorithm = mf.DiffAlgorithm
	return m
}

// BuildMergeOptions initializes a record from lib and layers the config
// section and then the flag overlay over the library defaults.
func BuildMergeOptions(lib native.Library, cfg *config.Config, overlay config.MergeConfig) (*git.MergeOptions, error) {
	opts := git.NewMergeOptions(lib)
	if cfg != nil {
		if err := cfg.Merge.Apply(opts); err != nil {
			return nil, fmt.Errorf("merge config: %w", err)
		}
	}
	if err := overlay.Apply(opts); err != nil {
		return nil, FlagErrorWrap(err)
	}
	return opts, nil
}
