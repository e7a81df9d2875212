//go:build libgit2 && cgo

// Package libgit2 implements native.Library with cgo against the system
// libgit2. Build with -tags libgit2.
package libgit2

/*
#cgo pkg-config: libgit2
#include <git2.h>
#include <stdlib.h>
*/
import "C"

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/native"
)

// Library is the libgit2 backed native.Library. Native pointers are kept in
// handle tables so callers only ever see opaque native.Pointer values.
type Library struct {
	repos   *native.Table[*C.git_repository]
	commits *native.Table[*C.git_annotated_commit]
}

var _ native.Library = (*Library)(nil)

var initOnce sync.Once

// New initializes libgit2 once per process and returns a library.
func New() *Library {
	initOnce.Do(func() {
		C.git_libgit2_init()
	})
	return &Library{
		repos:   native.NewTable[*C.git_repository](),
		commits: native.NewTable[*C.git_annotated_commit](),
	}
}

var classes = map[C.int]native.Class{
	C.GIT_ERROR_NONE:       native.ClassNone,
	C.GIT_ERROR_OS:         native.ClassOS,
	C.GIT_ERROR_INVALID:    native.ClassInvalid,
	C.GIT_ERROR_REFERENCE:  native.ClassReference,
	C.GIT_ERROR_REPOSITORY: native.ClassRepository,
	C.GIT_ERROR_OBJECT:     native.ClassObject,
	C.GIT_ERROR_MERGE:      native.ClassMerge,
}

// lastError reads the thread-local libgit2 error. The caller must have
// locked the OS thread before the failing call.
func lastError(ret C.int) *native.Error {
	nerr := &native.Error{Code: native.Code(ret), Class: native.ClassNone, Message: "unknown libgit2 error"}
	if e := C.git_error_last(); e != nil {
		nerr.Class = classes[e.klass]
		nerr.Message = C.GoString(e.message)
	}
	return nerr
}

func fromC(c *C.git_oid) native.Oid {
	var id native.Oid
	for i := range id {
		id[i] = byte(c.id[i])
	}
	return id
}

func toC(id native.Oid) C.git_oid {
	var c C.git_oid
	for i := range id {
		c.id[i] = C.uchar(id[i])
	}
	return c
}

func (l *Library) InitMergeOptions(opts *native.MergeOptions, version uint32) *native.Error {
	if opts == nil {
		return native.Errorf(native.ErrInvalid, native.ClassInvalid, "invalid argument: opts")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var copts C.git_merge_options
	if ret := C.git_merge_options_init(&copts, C.uint(version)); ret < 0 {
		return lastError(ret)
	}
	*opts = native.MergeOptions{
		Version:         uint32(copts.version),
		Flags:           native.MergeFlag(copts.flags),
		RenameThreshold: uint32(copts.rename_threshold),
		TargetLimit:     uint32(copts.target_limit),
		RecursionLimit:  uint32(copts.recursion_limit),
		FileFavor:       native.FileFavor(copts.file_favor),
		FileFlags:       native.FileFlag(copts.file_flags),
	}
	return nil
}

func (l *Library) RepositoryOpen(path string) (native.Pointer, *native.Error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var repo *C.git_repository
	if ret := C.git_repository_open_ext(&repo, cpath, 0, nil); ret < 0 {
		return native.Null, lastError(ret)
	}
	p := l.repos.Insert(repo)
	logger.Debug().Str("ptr", p.String()).Str("path", path).Msg("repository opened")
	return p, nil
}

func (l *Library) RepositoryFree(repo native.Pointer) {
	if r := l.repos.Remove(repo); r != nil {
		C.git_repository_free(r)
	}
}

func (l *Library) repo(p native.Pointer) (*C.git_repository, *native.Error) {
	r, ok := l.repos.Get(p)
	if !ok {
		return nil, native.Errorf(native.ErrInvalid, native.ClassRepository, "invalid repository pointer %s", p)
	}
	return r, nil
}

func (l *Library) AnnotatedCommitLookup(repo native.Pointer, id native.Oid) (native.Pointer, *native.Error) {
	r, nerr := l.repo(repo)
	if nerr != nil {
		return native.Null, nerr
	}
	cid := toC(id)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var out *C.git_annotated_commit
	if ret := C.git_annotated_commit_lookup(&out, r, &cid); ret < 0 {
		return native.Null, lastError(ret)
	}
	return l.commits.Insert(out), nil
}

func (l *Library) AnnotatedCommitFromRef(repo native.Pointer, refname string) (native.Pointer, *native.Error) {
	r, nerr := l.repo(repo)
	if nerr != nil {
		return native.Null, nerr
	}
	cname := C.CString(refname)
	defer C.free(unsafe.Pointer(cname))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var ref *C.git_reference
	if ret := C.git_reference_lookup(&ref, r, cname); ret < 0 {
		return native.Null, lastError(ret)
	}
	defer C.git_reference_free(ref)

	var out *C.git_annotated_commit
	if ret := C.git_annotated_commit_from_ref(&out, r, ref); ret < 0 {
		return native.Null, lastError(ret)
	}
	return l.commits.Insert(out), nil
}

func (l *Library) AnnotatedCommitFromRevspec(repo native.Pointer, revspec string) (native.Pointer, *native.Error) {
	r, nerr := l.repo(repo)
	if nerr != nil {
		return native.Null, nerr
	}
	cspec := C.CString(revspec)
	defer C.free(unsafe.Pointer(cspec))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var out *C.git_annotated_commit
	if ret := C.git_annotated_commit_from_revspec(&out, r, cspec); ret < 0 {
		return native.Null, lastError(ret)
	}
	return l.commits.Insert(out), nil
}

func (l *Library) AnnotatedCommitID(commit native.Pointer) native.Oid {
	c, ok := l.commits.Get(commit)
	if !ok {
		return native.ZeroOid
	}
	return fromC(C.git_annotated_commit_id(c))
}

func (l *Library) AnnotatedCommitRef(commit native.Pointer) string {
	c, ok := l.commits.Get(commit)
	if !ok {
		return ""
	}
	ref := C.git_annotated_commit_ref(c)
	if ref == nil {
		return ""
	}
	return C.GoString(ref)
}

func (l *Library) AnnotatedCommitFree(commit native.Pointer) {
	if c := l.commits.Remove(commit); c != nil {
		C.git_annotated_commit_free(c)
	}
}

func (l *Library) MergeBase(repo native.Pointer, one, two native.Oid) (native.Oid, *native.Error) {
	r, nerr := l.repo(repo)
	if nerr != nil {
		return native.ZeroOid, nerr
	}
	cone, ctwo := toC(one), toC(two)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var out C.git_oid
	if ret := C.git_merge_base(&out, r, &cone, &ctwo); ret < 0 {
		return native.ZeroOid, lastError(ret)
	}
	return fromC(&out), nil
}

func (l *Library) heads(heads []native.Pointer) ([]*C.git_annotated_commit, *native.Error) {
	if len(heads) == 0 {
		return nil, native.Errorf(native.ErrInvalid, native.ClassMerge, "no merge heads given")
	}
	out := make([]*C.git_annotated_commit, len(heads))
	for i, p := range heads {
		c, ok := l.commits.Get(p)
		if !ok {
			return nil, native.Errorf(native.ErrInvalid, native.ClassMerge, "invalid annotated commit pointer %s", p)
		}
		out[i] = c
	}
	return out, nil
}

func (l *Library) MergeAnalysis(repo native.Pointer, heads []native.Pointer) (native.MergeAnalysis, native.MergePreference, *native.Error) {
	r, nerr := l.repo(repo)
	if nerr != nil {
		return native.AnalysisNone, native.PreferenceNone, nerr
	}
	chs, nerr := l.heads(heads)
	if nerr != nil {
		return native.AnalysisNone, native.PreferenceNone, nerr
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var analysis C.git_merge_analysis_t
	var pref C.git_merge_preference_t
	if ret := C.git_merge_analysis(&analysis, &pref, r, &chs[0], C.size_t(len(chs))); ret < 0 {
		return native.AnalysisNone, native.PreferenceNone, lastError(ret)
	}
	return native.MergeAnalysis(analysis), native.MergePreference(pref), nil
}

func (l *Library) Merge(repo native.Pointer, heads []native.Pointer, opts *native.MergeOptions) *native.Error {
	r, nerr := l.repo(repo)
	if nerr != nil {
		return nerr
	}
	chs, nerr := l.heads(heads)
	if nerr != nil {
		return nerr
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var copts *C.git_merge_options
	if opts != nil {
		var c C.git_merge_options
		if ret := C.git_merge_options_init(&c, C.uint(opts.Version)); ret < 0 {
			return lastError(ret)
		}
		c.flags = C.uint32_t(opts.Flags)
		c.rename_threshold = C.uint(opts.RenameThreshold)
		c.target_limit = C.uint(opts.TargetLimit)
		c.recursion_limit = C.uint(opts.RecursionLimit)
		c.file_favor = C.git_merge_file_favor_t(opts.FileFavor)
		c.file_flags = C.uint32_t(opts.FileFlags)
		copts = &c
	}

	if ret := C.git_merge(r, &chs[0], C.size_t(len(chs)), copts, nil); ret < 0 {
		return lastError(ret)
	}
	return nil
}
