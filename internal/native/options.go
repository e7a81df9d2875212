package native

// MergeOptionsVersion is the only MergeOptions layout this binding is built
// against. Engines must refuse any other version.
const MergeOptionsVersion uint32 = 1

// MergeOptions is the fixed-layout merge configuration record. It carries
// the scalar fields of libgit2's git_merge_options and omits metric and
// default_driver, so it is not binary-compatible with the C struct. Never
// assemble one by hand; run it through Library.InitMergeOptions first.
type MergeOptions struct {
	Version         uint32
	Flags           MergeFlag
	RenameThreshold uint32
	TargetLimit     uint32
	RecursionLimit  uint32
	FileFavor       FileFavor
	FileFlags       FileFlag
}

// MergeFlag bits live in MergeOptions.Flags.
type MergeFlag = uint32

const (
	MergeFindRenames    MergeFlag = 1 << 0
	MergeFailOnConflict MergeFlag = 1 << 1
	MergeSkipREUC       MergeFlag = 1 << 2
	MergeNoRecursive    MergeFlag = 1 << 3
)

// FileFavor selects how conflicting hunks are resolved.
type FileFavor = uint32

const (
	FavorNormal FileFavor = iota
	FavorOurs
	FavorTheirs
	FavorUnion
)

// FileFlag bits live in MergeOptions.FileFlags.
type FileFlag = uint32

const (
	FileDefault                FileFlag = 0
	FileStyleMerge             FileFlag = 1 << 0
	FileStyleDiff3             FileFlag = 1 << 1
	FileSimplifyAlnum          FileFlag = 1 << 2
	FileIgnoreWhitespace       FileFlag = 1 << 3
	FileIgnoreWhitespaceChange FileFlag = 1 << 4
	FileIgnoreWhitespaceEOL    FileFlag = 1 << 5
	FileDiffPatience           FileFlag = 1 << 6
	FileDiffMinimal            FileFlag = 1 << 7
	FileStyleZDiff3            FileFlag = 1 << 8
	FileAcceptConflicts        FileFlag = 1 << 9
)

// MergeAnalysis is the bitmask returned by Library.MergeAnalysis.
type MergeAnalysis uint32

const (
	AnalysisNone        MergeAnalysis = 0
	AnalysisNormal      MergeAnalysis = 1 << 0
	AnalysisUpToDate    MergeAnalysis = 1 << 1
	AnalysisFastForward MergeAnalysis = 1 << 2
	AnalysisUnborn      MergeAnalysis = 1 << 3
)

// MergePreference reflects the repository's merge.ff configuration.
type MergePreference uint32

const (
	PreferenceNone            MergePreference = 0
	PreferenceNoFastForward   MergePreference = 1 << 0
	PreferenceFastForwardOnly MergePreference = 1 << 1
)
