package git

import (
	"fmt"

	"github.com/schmitthub/gitmerge/internal/binding"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/native"
)

// MergeOptions builds the native merge options record.
// It owns its record by value and is not safe for concurrent mutation.
type MergeOptions struct {
	raw native.MergeOptions
}

// NewMergeOptions creates a default set of merge options.
//
// The record is zeroed and then initialized by the library itself, so every
// field carries the library's defaults. An initialization failure means the
// record layout does not match the library and panics.
func NewMergeOptions(lib native.Library) *MergeOptions {
	opts := &MergeOptions{}
	if nerr := lib.InitMergeOptions(&opts.raw, native.MergeOptionsVersion); nerr != nil {
		logger.Error().
			Uint32("version", native.MergeOptionsVersion).
			Str("code", nerr.Code.String()).
			Msg("merge options initialization failed")
		panic(fmt.Sprintf("git: initializing merge options version %d: %v", native.MergeOptionsVersion, nerr))
	}
	return opts
}

// RenameThreshold sets the similarity to consider a file renamed (default 50).
// Values wider than the native field are truncated.
func (o *MergeOptions) RenameThreshold(thresh uint) *MergeOptions {
	o.raw.RenameThreshold = binding.Uint32(thresh)
	return o
}

// TargetLimit sets the maximum number of similarity sources to examine for
// renames (default 200). If the number of rename candidates (add / delete
// pairs) is greater than this value, inexact rename detection is aborted.
// This setting overrides the merge.renameLimit configuration value.
func (o *MergeOptions) TargetLimit(limit uint) *MergeOptions {
	o.raw.TargetLimit = binding.Uint32(limit)
	return o
}

// RecursionLimit caps how many times virtual merge bases are merged when
// there are several bases. Zero means unlimited.
func (o *MergeOptions) RecursionLimit(limit uint) *MergeOptions {
	o.raw.RecursionLimit = binding.Uint32(limit)
	return o
}

// FileFavor selects how conflicting hunks are resolved.
func (o *MergeOptions) FileFavor(favor native.FileFavor) *MergeOptions {
	o.raw.FileFavor = favor
	return o
}

func (o *MergeOptions) flag(bit native.MergeFlag, on bool) *MergeOptions {
	binding.SetBit(&o.raw.Flags, bit, on)
	return o
}

func (o *MergeOptions) fileFlag(bit native.FileFlag, on bool) *MergeOptions {
	binding.SetBit(&o.raw.FileFlags, bit, on)
	return o
}

// FindRenames detects renames that occurred between the common ancestor and
// each side of the merge (enabled by default).
func (o *MergeOptions) FindRenames(on bool) *MergeOptions {
	return o.flag(native.MergeFindRenames, on)
}

// FailOnConflict stops the merge at the first conflict instead of writing
// conflicts to the index.
func (o *MergeOptions) FailOnConflict(on bool) *MergeOptions {
	return o.flag(native.MergeFailOnConflict, on)
}

// SkipREUC does not write the resolve-undo data into the index.
func (o *MergeOptions) SkipREUC(on bool) *MergeOptions {
	return o.flag(native.MergeSkipREUC, on)
}

// NoRecursive uses the first merge base when there are several instead of
// merging the bases recursively.
func (o *MergeOptions) NoRecursive(on bool) *MergeOptions {
	return o.flag(native.MergeNoRecursive, on)
}

// StandardStyle creates standard conflicted merge files.
func (o *MergeOptions) StandardStyle(on bool) *MergeOptions {
	return o.fileFlag(native.FileStyleMerge, on)
}

// Diff3Style creates diff3-style files.
func (o *MergeOptions) Diff3Style(on bool) *MergeOptions {
	return o.fileFlag(native.FileStyleDiff3, on)
}

// ZDiff3Style creates zealous diff3-style files.
func (o *MergeOptions) ZDiff3Style(on bool) *MergeOptions {
	return o.fileFlag(native.FileStyleZDiff3, on)
}

// SimplifyAlnum condenses non-alphanumeric regions for simplified diff files.
func (o *MergeOptions) SimplifyAlnum(on bool) *MergeOptions {
	return o.fileFlag(native.FileSimplifyAlnum, on)
}

// IgnoreWhitespace ignores all whitespace.
func (o *MergeOptions) IgnoreWhitespace(on bool) *MergeOptions {
	return o.fileFlag(native.FileIgnoreWhitespace, on)
}

// IgnoreWhitespaceChange ignores changes in amount of whitespace.
func (o *MergeOptions) IgnoreWhitespaceChange(on bool) *MergeOptions {
	return o.fileFlag(native.FileIgnoreWhitespaceChange, on)
}

// IgnoreWhitespaceEOL ignores whitespace at end of line.
func (o *MergeOptions) IgnoreWhitespaceEOL(on bool) *MergeOptions {
	return o.fileFlag(native.FileIgnoreWhitespaceEOL, on)
}

// Patience uses the "patience diff" algorithm.
func (o *MergeOptions) Patience(on bool) *MergeOptions {
	return o.fileFlag(native.FileDiffPatience, on)
}

// Minimal takes extra time to find the minimal diff.
func (o *MergeOptions) Minimal(on bool) *MergeOptions {
	return o.fileFlag(native.FileDiffMinimal, on)
}

// AcceptConflicts writes conflicted files as if they merged cleanly.
func (o *MergeOptions) AcceptConflicts(on bool) *MergeOptions {
	return o.fileFlag(native.FileAcceptConflicts, on)
}

// Raw returns the underlying native record for passing into a native call.
//
// The pointer is only valid while o is neither mutated nor discarded. Do not
// retain it past the call it configures.
func (o *MergeOptions) Raw() *native.MergeOptions {
	return &o.raw
}

// Summary is a named, serializable view of a MergeOptions record.
type Summary struct {
	Version                uint32 `yaml:"version" json:"version"`
	RenameThreshold        uint32 `yaml:"rename_threshold" json:"rename_threshold"`
	TargetLimit            uint32 `yaml:"target_limit" json:"target_limit"`
	RecursionLimit         uint32 `yaml:"recursion_limit" json:"recursion_limit"`
	FileFavor              string `yaml:"file_favor" json:"file_favor"`
	FindRenames            bool   `yaml:"find_renames" json:"find_renames"`
	FailOnConflict         bool   `yaml:"fail_on_conflict" json:"fail_on_conflict"`
	SkipREUC               bool   `yaml:"skip_reuc" json:"skip_reuc"`
	NoRecursive            bool   `yaml:"no_recursive" json:"no_recursive"`
	StandardStyle          bool   `yaml:"standard_style" json:"standard_style"`
	Diff3Style             bool   `yaml:"diff3_style" json:"diff3_style"`
	ZDiff3Style            bool   `yaml:"zdiff3_style" json:"zdiff3_style"`
	SimplifyAlnum          bool   `yaml:"simplify_alnum" json:"simplify_alnum"`
	IgnoreWhitespace       bool   `yaml:"ignore_whitespace" json:"ignore_whitespace"`
	IgnoreWhitespaceChange bool   `yaml:"ignore_whitespace_change" json:"ignore_whitespace_change"`
	IgnoreWhitespaceEOL    bool   `yaml:"ignore_whitespace_eol" json:"ignore_whitespace_eol"`
	Patience               bool   `yaml:"patience" json:"patience"`
	Minimal                bool   `yaml:"minimal" json:"minimal"`
	AcceptConflicts        bool   `yaml:"accept_conflicts" json:"accept_conflicts"`
}

var favorNames = map[native.FileFavor]string{
	native.FavorNormal: "normal",
	native.FavorOurs:   "ours",
	native.FavorTheirs: "theirs",
	native.FavorUnion:  "union",
}

// ParseFileFavor maps a favor name onto its native value.
func ParseFileFavor(name string) (native.FileFavor, error) {
	for favor, n := range favorNames {
		if n == name {
			return favor, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown file favor %q (want normal, ours, theirs or union)", ErrInvalid, name)
}

// Summary reports every field and flag of the record by name.
func (o *MergeOptions) Summary() Summary {
	r := o.raw
	favor, ok := favorNames[r.FileFavor]
	if !ok {
		favor = fmt.Sprintf("favor(%d)", r.FileFavor)
	}
	return Summary{
		Version:                r.Version,
		RenameThreshold:        r.RenameThreshold,
		TargetLimit:            r.TargetLimit,
		RecursionLimit:         r.RecursionLimit,
		FileFavor:              favor,
		FindRenames:            binding.HasBit(r.Flags, native.MergeFindRenames),
		FailOnConflict:         binding.HasBit(r.Flags, native.MergeFailOnConflict),
		SkipREUC:               binding.HasBit(r.Flags, native.MergeSkipREUC),
		NoRecursive:            binding.HasBit(r.Flags, native.MergeNoRecursive),
		StandardStyle:          binding.HasBit(r.FileFlags, native.FileStyleMerge),
		Diff3Style:             binding.HasBit(r.FileFlags, native.FileStyleDiff3),
		ZDiff3Style:            binding.HasBit(r.FileFlags, native.FileStyleZDiff3),
		SimplifyAlnum:          binding.HasBit(r.FileFlags, native.FileSimplifyAlnum),
		IgnoreWhitespace:       binding.HasBit(r.FileFlags, native.FileIgnoreWhitespace),
		IgnoreWhitespaceChange: binding.HasBit(r.FileFlags, native.FileIgnoreWhitespaceChange),
		IgnoreWhitespaceEOL:    binding.HasBit(r.FileFlags, native.FileIgnoreWhitespaceEOL),
		Patience:               binding.HasBit(r.FileFlags, native.FileDiffPatience),
		Minimal:                binding.HasBit(r.FileFlags, native.FileDiffMinimal),
		AcceptConflicts:        binding.HasBit(r.FileFlags, native.FileAcceptConflicts),
	}
}
