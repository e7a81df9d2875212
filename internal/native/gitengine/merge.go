package gitengine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/flock"
	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/schmitthub/gitmerge/internal/binding"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/native"
)

// lockTimeout bounds how long Merge waits for another process holding the
// repository lock.
const lockTimeout = 2 * time.Second

func (e *Engine) heads(heads []native.Pointer) ([]*annotatedCommit, *native.Error) {
	if len(heads) == 0 {
		return nil, native.Errorf(native.ErrInvalid, native.ClassMerge, "no merge heads given")
	}
	if len(heads) > 1 {
		return nil, native.Errorf(native.ErrUnsupported, native.ClassMerge, "octopus merges of %d heads are not supported", len(heads))
	}
	out := make([]*annotatedCommit, 0, len(heads))
	for _, p := range heads {
		c, ok := e.commits.Get(p)
		if !ok {
			return nil, native.Errorf(native.ErrInvalid, native.ClassMerge, "invalid annotated commit pointer %s", p)
		}
		out = append(out, c)
	}
	return out, nil
}

func (e *Engine) MergeAnalysis(repo native.Pointer, heads []native.Pointer) (native.MergeAnalysis, native.MergePreference, *native.Error) {
	entry, nerr := e.repo(repo)
	if nerr != nil {
		return native.AnalysisNone, native.PreferenceNone, nerr
	}
	theirs, nerr := e.heads(heads)
	if nerr != nil {
		return native.AnalysisNone, native.PreferenceNone, nerr
	}
	pref := preference(entry.repo)
	analysis, nerr := analyze(entry.repo, theirs[0].id)
	if nerr != nil {
		return native.AnalysisNone, native.PreferenceNone, nerr
	}
	return analysis, pref, nil
}

// analyze classifies merging theirs into HEAD.
func analyze(repo *gogit.Repository, theirs plumbing.Hash) (native.MergeAnalysis, *native.Error) {
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return native.AnalysisUnborn | native.AnalysisFastForward, nil
		}
		return native.AnalysisNone, native.Errorf(native.ErrGeneric, native.ClassRepository, "resolving HEAD: %v", err)
	}

	ours, nerr := lookupCommit(repo, head.Hash())
	if nerr != nil {
		return native.AnalysisNone, nerr
	}
	if ours.Hash == theirs {
		return native.AnalysisUpToDate, nil
	}
	their, nerr := lookupCommit(repo, theirs)
	if nerr != nil {
		return native.AnalysisNone, nerr
	}

	merged, err := their.IsAncestor(ours)
	if err != nil {
		return native.AnalysisNone, native.Errorf(native.ErrGeneric, native.ClassMerge, "checking ancestry: %v", err)
	}
	if merged {
		return native.AnalysisUpToDate, nil
	}

	behind, err := ours.IsAncestor(their)
	if err != nil {
		return native.AnalysisNone, native.Errorf(native.ErrGeneric, native.ClassMerge, "checking ancestry: %v", err)
	}
	if behind {
		return native.AnalysisFastForward | native.AnalysisNormal, nil
	}
	return native.AnalysisNormal, nil
}

// preference reads merge.ff from the repository configuration.
func preference(repo *gogit.Repository) native.MergePreference {
	cfg, err := repo.Config()
	if err != nil || cfg.Raw == nil {
		return native.PreferenceNone
	}
	switch strings.ToLower(cfg.Raw.Section("merge").Options.Get("ff")) {
	case "false":
		return native.PreferenceNoFastForward
	case "only":
		return native.PreferenceFastForwardOnly
	}
	return native.PreferenceNone
}

// ValidateMergeOptions rejects option records the engine cannot honor.
func ValidateMergeOptions(opts *native.MergeOptions) *native.Error {
	if opts.Version != native.MergeOptionsVersion {
		return native.Errorf(native.ErrInvalid, native.ClassInvalid, "invalid version %d on git_merge_options", opts.Version)
	}
	styles := 0
	for _, style := range []native.FileFlag{native.FileStyleMerge, native.FileStyleDiff3, native.FileStyleZDiff3} {
		if binding.HasBit(opts.FileFlags, style) {
			styles++
		}
	}
	if styles > 1 {
		return native.Errorf(native.ErrInvalid, native.ClassMerge, "conflicting conflict styles requested")
	}
	if binding.HasBit(opts.FileFlags, native.FileDiffPatience|native.FileDiffMinimal) {
		return native.Errorf(native.ErrInvalid, native.ClassMerge, "patience and minimal diff algorithms are exclusive")
	}
	if opts.FileFavor > native.FavorUnion {
		return native.Errorf(native.ErrInvalid, native.ClassMerge, "invalid file favor %d", opts.FileFavor)
	}
	if opts.RenameThreshold > 100 {
		return native.Errorf(native.ErrInvalid, native.ClassMerge, "rename threshold %d is not a percentage", opts.RenameThreshold)
	}
	return nil
}

func (e *Engine) Merge(repo native.Pointer, heads []native.Pointer, opts *native.MergeOptions) *native.Error {
	entry, nerr := e.repo(repo)
	if nerr != nil {
		return nerr
	}
	theirs, nerr := e.heads(heads)
	if nerr != nil {
		return nerr
	}

	if opts == nil {
		opts = &native.MergeOptions{}
		if nerr := e.InitMergeOptions(opts, native.MergeOptionsVersion); nerr != nil {
			return nerr
		}
	}
	if nerr := ValidateMergeOptions(opts); nerr != nil {
		return nerr
	}

	unlock, nerr := lockRepo(entry)
	if nerr != nil {
		return nerr
	}
	defer unlock()

	target := theirs[0].id
	analysis, nerr := analyze(entry.repo, target)
	if nerr != nil {
		return nerr
	}
	pref := preference(entry.repo)

	logger.Debug().
		Str("repo", entry.name).
		Str("theirs", target.String()).
		Uint32("analysis", uint32(analysis)).
		Uint32("preference", uint32(pref)).
		Uint32("file_flags", opts.FileFlags).
		Msg("merging")

	switch {
	case analysis&native.AnalysisUpToDate != 0:
		return nil
	case analysis&native.AnalysisFastForward != 0 && pref&native.PreferenceNoFastForward == 0:
		return fastForward(entry.repo, target)
	case pref&native.PreferenceFastForwardOnly != 0:
		return native.Errorf(native.ErrNonFastForward, native.ClassMerge, "not possible to fast-forward, merge.ff is 'only'")
	default:
		return native.Errorf(native.ErrUnsupported, native.ClassMerge, "three-way merges are not supported by the go-git engine")
	}
}

// fastForward moves the branch HEAD points at to target and, when the
// repository has a worktree, checks target out.
func fastForward(repo *gogit.Repository, target plumbing.Hash) *native.Error {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return native.Errorf(native.ErrGeneric, native.ClassReference, "reading HEAD: %v", err)
	}

	wt, wtErr := repo.Worktree()
	if wtErr == nil {
		if dirty, nerr := hasLocalChanges(wt); nerr != nil {
			return nerr
		} else if dirty {
			return native.Errorf(native.ErrConflict, native.ClassMerge, "local changes would be overwritten by merge")
		}
	} else if !errors.Is(wtErr, gogit.ErrIsBareRepository) {
		return native.Errorf(native.ErrGeneric, native.ClassRepository, "opening worktree: %v", wtErr)
	}

	name := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(name, target)); err != nil {
		return native.Errorf(native.ErrGeneric, native.ClassReference, "updating %s: %v", name, err)
	}

	if wtErr == nil {
		if err := wt.Reset(&gogit.ResetOptions{Commit: target, Mode: gogit.HardReset}); err != nil {
			return native.Errorf(native.ErrGeneric, native.ClassMerge, "checking out %s: %v", target, err)
		}
	}
	return nil
}

func hasLocalChanges(wt *gogit.Worktree) (bool, *native.Error) {
	status, err := wt.Status()
	if err != nil {
		return false, native.Errorf(native.ErrGeneric, native.ClassOS, "reading worktree status: %v", err)
	}
	for _, fs := range status {
		if fs.Worktree == gogit.Untracked {
			continue
		}
		if fs.Worktree != gogit.Unmodified || fs.Staging != gogit.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

func lockRepo(entry *repoEntry) (func(), *native.Error) {
	if entry.lockPath == "" {
		return func() {}, nil
	}
	fl := flock.New(entry.lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		return nil, native.Errorf(native.ErrLocked, native.ClassOS, "failed to lock '%s': another merge is in progress", entry.lockPath)
	}
	return func() { _ = fl.Unlock() }, nil
}
