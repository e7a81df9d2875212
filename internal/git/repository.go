// Package git is the safe binding facade over a native merge library.
//
// A Repository is the parent scope of every AnnotatedCommit created from it.
// Closing the repository frees all of its live annotated commits first and
// then the repository itself, so a commit handle can never outlive the
// repository it was looked up in.
package git

import (
	"fmt"
	"runtime"

	"github.com/schmitthub/gitmerge/internal/handle"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/native"
)

// Repository is an open native repository.
type Repository struct {
	lib   native.Library
	ptr   native.Pointer
	path  string
	scope *handle.Scope
}

// OpenRepository opens the repository containing path.
func OpenRepository(lib native.Library, path string) (*Repository, error) {
	ptr, nerr := lib.RepositoryOpen(path)
	if nerr != nil {
		if nerr.Code == native.ErrNotFound {
			return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
		}
		return nil, wrapError("open repository", nerr)
	}
	return WrapRepository(lib, ptr, path), nil
}

// WrapRepository takes ownership of a repository pointer produced by lib.
// The pointer is freed by Close.
func WrapRepository(lib native.Library, ptr native.Pointer, name string) *Repository {
	if ptr.IsNull() {
		panic("git: wrapping a null repository pointer")
	}
	r := &Repository{
		lib:   lib,
		ptr:   ptr,
		path:  name,
		scope: handle.NewScope("repository", func() { lib.RepositoryFree(ptr) }),
	}
	runtime.AddCleanup(r, func(s *handle.Scope) {
		if s.Close() == nil {
			logger.Warn().Str("scope", s.ID()).Msg("leaked repository closed by GC cleanup")
		}
	}, r.scope)
	return r
}

// Path returns the path or name the repository was opened with.
func (r *Repository) Path() string { return r.path }

// Scope returns the lifetime scope annotated commits are adopted into.
func (r *Repository) Scope() *handle.Scope { return r.scope }

// Close frees every live annotated commit of the repository and then the
// repository. Closing twice returns handle.ErrScopeClosed.
func (r *Repository) Close() error {
	return r.scope.Close()
}

func (r *Repository) raw() (native.Pointer, error) {
	if r.scope.Closed() {
		return native.Null, fmt.Errorf("repository %s: %w", r.path, handle.ErrScopeClosed)
	}
	return r.ptr, nil
}
