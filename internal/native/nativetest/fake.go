// Package nativetest provides an instrumented fake of native.Library.
// Fake counts every free call per pointer so tests can assert that each
// native handle is released exactly once.
package nativetest

import (
	"crypto/sha1"
	"sync"

	"github.com/schmitthub/gitmerge/internal/native"
)

// Oid derives a stable object id from name.
func Oid(name string) native.Oid {
	return native.Oid(sha1.Sum([]byte(name)))
}

type fakeCommit struct {
	id  native.Oid
	ref string
}

// Fake is a scripted native.Library. The zero value is not usable; call New.
type Fake struct {
	mu sync.Mutex

	// Defaults is what InitMergeOptions writes into the record.
	Defaults native.MergeOptions
	// InitErr, when set, is returned by InitMergeOptions.
	InitErr *native.Error
	// OpenErr, when set, is returned by RepositoryOpen.
	OpenErr *native.Error
	// AnalysisResult and PreferenceResult are returned by MergeAnalysis.
	AnalysisResult   native.MergeAnalysis
	PreferenceResult native.MergePreference
	// MergeErr, when set, is returned by Merge.
	MergeErr *native.Error

	commits map[native.Oid]bool
	refs    map[string]native.Oid
	bases   map[[2]native.Oid]native.Oid

	repos     *native.Table[string]
	annotated *native.Table[fakeCommit]

	commitFrees map[native.Pointer]int
	repoFrees   map[native.Pointer]int

	mergeCalls  int
	lastOptions *native.MergeOptions
	lastHeads   []native.Pointer
}

var _ native.Library = (*Fake)(nil)

// New returns a Fake whose defaults match the go-git engine's.
func New() *Fake {
	return &Fake{
		Defaults: native.MergeOptions{
			Version:         native.MergeOptionsVersion,
			Flags:           native.MergeFindRenames,
			RenameThreshold: 50,
			TargetLimit:     200,
		},
		AnalysisResult: native.AnalysisNormal,
		commits:        make(map[native.Oid]bool),
		refs:           make(map[string]native.Oid),
		bases:          make(map[[2]native.Oid]native.Oid),
		repos:          native.NewTable[string](),
		annotated:      native.NewTable[fakeCommit](),
		commitFrees:    make(map[native.Pointer]int),
		repoFrees:      make(map[native.Pointer]int),
	}
}

// AddCommit registers a commit and returns its id.
func (f *Fake) AddCommit(name string) native.Oid {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := Oid(name)
	f.commits[id] = true
	return id
}

// AddRef points refname at id.
func (f *Fake) AddRef(refname string, id native.Oid) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[refname] = id
}

// SetMergeBase scripts the merge base of one and two (in either order).
func (f *Fake) SetMergeBase(one, two, base native.Oid) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bases[[2]native.Oid{one, two}] = base
	f.bases[[2]native.Oid{two, one}] = base
}

// AnnotatedCommitFrees returns how many times p was passed to AnnotatedCommitFree.
func (f *Fake) AnnotatedCommitFrees(p native.Pointer) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commitFrees[p]
}

// RepositoryFrees returns how many times p was passed to RepositoryFree.
func (f *Fake) RepositoryFrees(p native.Pointer) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repoFrees[p]
}

// LiveAnnotatedCommits returns the number of annotated commits not yet freed.
func (f *Fake) LiveAnnotatedCommits() int { return f.annotated.Len() }

// LiveRepositories returns the number of repositories not yet freed.
func (f *Fake) LiveRepositories() int { return f.repos.Len() }

// MergeCalls returns the number of Merge invocations.
func (f *Fake) MergeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mergeCalls
}

// LastMergeOptions returns a copy of the record passed to the last Merge,
// or nil when that call passed no record.
func (f *Fake) LastMergeOptions() *native.MergeOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOptions
}

// LastMergeHeads returns the pointers passed to the last Merge.
func (f *Fake) LastMergeHeads() []native.Pointer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHeads
}

func (f *Fake) InitMergeOptions(opts *native.MergeOptions, version uint32) *native.Error {
	if f.InitErr != nil {
		return f.InitErr
	}
	if version != native.MergeOptionsVersion {
		return native.Errorf(native.ErrInvalid, native.ClassInvalid, "invalid version %d on git_merge_options", version)
	}
	*opts = f.Defaults
	return nil
}

func (f *Fake) RepositoryOpen(path string) (native.Pointer, *native.Error) {
	if f.OpenErr != nil {
		return native.Null, f.OpenErr
	}
	return f.repos.Insert(path), nil
}

func (f *Fake) RepositoryFree(repo native.Pointer) {
	f.mu.Lock()
	f.repoFrees[repo]++
	n := f.repoFrees[repo]
	f.mu.Unlock()
	if n == 1 {
		f.repos.Remove(repo)
	}
}

func (f *Fake) checkRepo(repo native.Pointer) *native.Error {
	if _, ok := f.repos.Get(repo); !ok {
		return native.Errorf(native.ErrInvalid, native.ClassRepository, "invalid repository pointer %s", repo)
	}
	return nil
}

func (f *Fake) AnnotatedCommitLookup(repo native.Pointer, id native.Oid) (native.Pointer, *native.Error) {
	if err := f.checkRepo(repo); err != nil {
		return native.Null, err
	}
	f.mu.Lock()
	known := f.commits[id]
	f.mu.Unlock()
	if !known {
		return native.Null, native.Errorf(native.ErrNotFound, native.ClassObject, "object not found - no match for id (%s)", id)
	}
	return f.annotated.Insert(fakeCommit{id: id}), nil
}

func (f *Fake) AnnotatedCommitFromRef(repo native.Pointer, refname string) (native.Pointer, *native.Error) {
	if err := f.checkRepo(repo); err != nil {
		return native.Null, err
	}
	f.mu.Lock()
	id, ok := f.refs[refname]
	f.mu.Unlock()
	if !ok {
		return native.Null, native.Errorf(native.ErrNotFound, native.ClassReference, "reference '%s' not found", refname)
	}
	return f.annotated.Insert(fakeCommit{id: id, ref: refname}), nil
}

func (f *Fake) AnnotatedCommitFromRevspec(repo native.Pointer, revspec string) (native.Pointer, *native.Error) {
	if err := f.checkRepo(repo); err != nil {
		return native.Null, err
	}
	f.mu.Lock()
	id, ok := f.refs[revspec]
	if !ok {
		if parsed, err := native.ParseOid(revspec); err == nil && f.commits[parsed] {
			id, ok = parsed, true
		}
	}
	f.mu.Unlock()
	if !ok {
		return native.Null, native.Errorf(native.ErrNotFound, native.ClassReference, "revspec '%s' not found", revspec)
	}
	return f.annotated.Insert(fakeCommit{id: id}), nil
}

func (f *Fake) AnnotatedCommitID(commit native.Pointer) native.Oid {
	c, _ := f.annotated.Get(commit)
	return c.id
}

func (f *Fake) AnnotatedCommitRef(commit native.Pointer) string {
	c, _ := f.annotated.Get(commit)
	return c.ref
}

// AnnotatedCommitFree counts the call. Unlike a real library it tolerates
// double frees so tests can observe them.
func (f *Fake) AnnotatedCommitFree(commit native.Pointer) {
	f.mu.Lock()
	f.commitFrees[commit]++
	n := f.commitFrees[commit]
	f.mu.Unlock()
	if n == 1 {
		f.annotated.Remove(commit)
	}
}

func (f *Fake) MergeBase(repo native.Pointer, one, two native.Oid) (native.Oid, *native.Error) {
	if err := f.checkRepo(repo); err != nil {
		return native.ZeroOid, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	base, ok := f.bases[[2]native.Oid{one, two}]
	if !ok {
		return native.ZeroOid, native.Errorf(native.ErrNotFound, native.ClassMerge, "no merge base found")
	}
	return base, nil
}

func (f *Fake) checkHeads(heads []native.Pointer) *native.Error {
	if len(heads) == 0 {
		return native.Errorf(native.ErrInvalid, native.ClassMerge, "no heads given")
	}
	for _, h := range heads {
		if _, ok := f.annotated.Get(h); !ok {
			return native.Errorf(native.ErrInvalid, native.ClassMerge, "invalid annotated commit pointer %s", h)
		}
	}
	return nil
}

func (f *Fake) MergeAnalysis(repo native.Pointer, heads []native.Pointer) (native.MergeAnalysis, native.MergePreference, *native.Error) {
	if err := f.checkRepo(repo); err != nil {
		return native.AnalysisNone, native.PreferenceNone, err
	}
	if err := f.checkHeads(heads); err != nil {
		return native.AnalysisNone, native.PreferenceNone, err
	}
	return f.AnalysisResult, f.PreferenceResult, nil
}

func (f *Fake) Merge(repo native.Pointer, heads []native.Pointer, opts *native.MergeOptions) *native.Error {
	if err := f.checkRepo(repo); err != nil {
		return err
	}
	if err := f.checkHeads(heads); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	f.lastOptions = nil
	if opts != nil {
		copied := *opts
		f.lastOptions = &copied
	}
	f.lastHeads = append([]native.Pointer(nil), heads...)
	return f.MergeErr
}
