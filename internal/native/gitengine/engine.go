// Package gitengine implements native.Library in-process on top of go-git.
//
// The engine owns every object behind the pointers it hands out. Pointers are
// minted by native.Table, so a double free panics just as it would corrupt a
// C heap. Only trivial merges (up-to-date and fast-forward) are performed;
// three-way merges report native.ErrUnsupported.
package gitengine

import (
	"errors"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/native"
)

// Default merge option values written by InitMergeOptions.
const (
	DefaultRenameThreshold = 50
	DefaultTargetLimit     = 200
)

// LockFileName is the advisory lock taken inside the git directory while a
// merge updates refs and the worktree.
const LockFileName = "gitmerge.lock"

type repoEntry struct {
	repo     *gogit.Repository
	name     string
	lockPath string
}

type annotatedCommit struct {
	id  plumbing.Hash
	ref string
}

// Engine is a go-git backed native.Library.
type Engine struct {
	repos   *native.Table[*repoEntry]
	commits *native.Table[*annotatedCommit]
}

var _ native.Library = (*Engine)(nil)

// New creates an engine with empty handle tables.
func New() *Engine {
	return &Engine{
		repos:   native.NewTable[*repoEntry](),
		commits: native.NewTable[*annotatedCommit](),
	}
}

// Register hands an already open go-git repository to the engine and returns
// its pointer. The caller owns the pointer and must free it with
// RepositoryFree. This is how in-memory repositories enter the engine.
func (e *Engine) Register(repo *gogit.Repository, name string) native.Pointer {
	return e.repos.Insert(&repoEntry{repo: repo, name: name})
}

// LiveObjects returns the number of repositories and annotated commits not
// yet freed.
func (e *Engine) LiveObjects() (repos, commits int) {
	return e.repos.Len(), e.commits.Len()
}

func (e *Engine) InitMergeOptions(opts *native.MergeOptions, version uint32) *native.Error {
	if opts == nil {
		return native.Errorf(native.ErrInvalid, native.ClassInvalid, "invalid argument: opts")
	}
	if version != native.MergeOptionsVersion {
		return native.Errorf(native.ErrInvalid, native.ClassInvalid, "invalid version %d on git_merge_options", version)
	}
	*opts = native.MergeOptions{
		Version:         native.MergeOptionsVersion,
		Flags:           native.MergeFindRenames,
		RenameThreshold: DefaultRenameThreshold,
		TargetLimit:     DefaultTargetLimit,
		FileFavor:       native.FavorNormal,
		FileFlags:       native.FileDefault,
	}
	return nil
}

func (e *Engine) RepositoryOpen(path string) (native.Pointer, *native.Error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return native.Null, native.Errorf(native.ErrNotFound, native.ClassRepository, "could not find repository at '%s'", path)
		}
		return native.Null, native.Errorf(native.ErrGeneric, native.ClassRepository, "opening repository at '%s': %v", path, err)
	}

	entry := &repoEntry{repo: repo, name: path}
	if wt, err := repo.Worktree(); err == nil {
		gitDir := filepath.Join(wt.Filesystem.Root(), ".git")
		if info, statErr := os.Stat(gitDir); statErr == nil && info.IsDir() {
			entry.lockPath = filepath.Join(gitDir, LockFileName)
		}
	}

	p := e.repos.Insert(entry)
	logger.Debug().Str("ptr", p.String()).Str("path", path).Msg("repository opened")
	return p, nil
}

func (e *Engine) RepositoryFree(repo native.Pointer) {
	entry := e.repos.Remove(repo)
	if entry != nil {
		logger.Debug().Str("ptr", repo.String()).Str("path", entry.name).Msg("repository freed")
	}
}

func (e *Engine) repo(p native.Pointer) (*repoEntry, *native.Error) {
	entry, ok := e.repos.Get(p)
	if !ok {
		return nil, native.Errorf(native.ErrInvalid, native.ClassRepository, "invalid repository pointer %s", p)
	}
	return entry, nil
}

func (e *Engine) newAnnotated(id plumbing.Hash, ref string) native.Pointer {
	p := e.commits.Insert(&annotatedCommit{id: id, ref: ref})
	logger.Debug().Str("ptr", p.String()).Str("id", id.String()).Str("ref", ref).Msg("annotated commit created")
	return p
}

func (e *Engine) AnnotatedCommitLookup(repo native.Pointer, id native.Oid) (native.Pointer, *native.Error) {
	entry, nerr := e.repo(repo)
	if nerr != nil {
		return native.Null, nerr
	}
	commit, nerr := lookupCommit(entry.repo, toHash(id))
	if nerr != nil {
		return native.Null, nerr
	}
	return e.newAnnotated(commit.Hash, ""), nil
}

func (e *Engine) AnnotatedCommitFromRef(repo native.Pointer, refname string) (native.Pointer, *native.Error) {
	entry, nerr := e.repo(repo)
	if nerr != nil {
		return native.Null, nerr
	}
	ref, err := entry.repo.Reference(plumbing.ReferenceName(refname), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return native.Null, native.Errorf(native.ErrNotFound, native.ClassReference, "reference '%s' not found", refname)
		}
		return native.Null, native.Errorf(native.ErrGeneric, native.ClassReference, "resolving '%s': %v", refname, err)
	}
	commit, nerr := peelToCommit(entry.repo, ref.Hash())
	if nerr != nil {
		return native.Null, nerr
	}
	return e.newAnnotated(commit.Hash, refname), nil
}

func (e *Engine) AnnotatedCommitFromRevspec(repo native.Pointer, revspec string) (native.Pointer, *native.Error) {
	entry, nerr := e.repo(repo)
	if nerr != nil {
		return native.Null, nerr
	}
	hash, err := entry.repo.ResolveRevision(plumbing.Revision(revspec))
	if err != nil {
		return native.Null, native.Errorf(native.ErrNotFound, native.ClassReference, "revspec '%s' not found: %v", revspec, err)
	}
	commit, nerr := peelToCommit(entry.repo, *hash)
	if nerr != nil {
		return native.Null, nerr
	}
	return e.newAnnotated(commit.Hash, ""), nil
}

func (e *Engine) AnnotatedCommitID(commit native.Pointer) native.Oid {
	c, ok := e.commits.Get(commit)
	if !ok {
		return native.ZeroOid
	}
	return toOid(c.id)
}

func (e *Engine) AnnotatedCommitRef(commit native.Pointer) string {
	c, ok := e.commits.Get(commit)
	if !ok {
		return ""
	}
	return c.ref
}

func (e *Engine) AnnotatedCommitFree(commit native.Pointer) {
	if c := e.commits.Remove(commit); c != nil {
		logger.Debug().Str("ptr", commit.String()).Str("id", c.id.String()).Msg("annotated commit freed")
	}
}

func (e *Engine) MergeBase(repo native.Pointer, one, two native.Oid) (native.Oid, *native.Error) {
	entry, nerr := e.repo(repo)
	if nerr != nil {
		return native.ZeroOid, nerr
	}
	a, nerr := lookupCommit(entry.repo, toHash(one))
	if nerr != nil {
		return native.ZeroOid, nerr
	}
	b, nerr := lookupCommit(entry.repo, toHash(two))
	if nerr != nil {
		return native.ZeroOid, nerr
	}
	bases, err := a.MergeBase(b)
	if err != nil {
		return native.ZeroOid, native.Errorf(native.ErrGeneric, native.ClassMerge, "computing merge base: %v", err)
	}
	if len(bases) == 0 {
		return native.ZeroOid, native.Errorf(native.ErrNotFound, native.ClassMerge, "no merge base found")
	}
	return toOid(bases[0].Hash), nil
}

func lookupCommit(repo *gogit.Repository, hash plumbing.Hash) (*object.Commit, *native.Error) {
	commit, err := repo.CommitObject(hash)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, native.Errorf(native.ErrNotFound, native.ClassObject, "object not found - no match for id (%s)", hash)
		}
		return nil, native.Errorf(native.ErrGeneric, native.ClassObject, "reading commit %s: %v", hash, err)
	}
	return commit, nil
}

// peelToCommit resolves hash to a commit, following annotated tags.
func peelToCommit(repo *gogit.Repository, hash plumbing.Hash) (*object.Commit, *native.Error) {
	if tag, err := repo.TagObject(hash); err == nil {
		commit, err := tag.Commit()
		if err != nil {
			return nil, native.Errorf(native.ErrInvalidSpec, native.ClassObject, "tag %s does not point at a commit", tag.Name)
		}
		return commit, nil
	}
	return lookupCommit(repo, hash)
}

func toOid(h plumbing.Hash) native.Oid {
	id, err := native.ParseOid(h.String())
	if err != nil {
		return native.ZeroOid
	}
	return id
}

func toHash(id native.Oid) plumbing.Hash {
	return plumbing.NewHash(id.String())
}
