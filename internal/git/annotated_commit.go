package git

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/schmitthub/gitmerge/internal/binding"
	"github.com/schmitthub/gitmerge/internal/handle"
	"github.com/schmitthub/gitmerge/internal/native"
)

// AnnotatedCommit is a commit together with how it was looked up, as
// consumed by the merge entry points. It must not outlive its Repository;
// closing the repository frees it.
type AnnotatedCommit struct {
	repo  *Repository
	guard *handle.Guard[native.Pointer]
}

var _ binding.Binding[native.Pointer] = (*AnnotatedCommit)(nil)

func (r *Repository) adoptCommit(op string, ptr native.Pointer, nerr *native.Error) (*AnnotatedCommit, error) {
	if nerr != nil {
		return nil, wrapError(op, nerr)
	}
	g, err := handle.Adopt(r.scope, ptr, r.lib.AnnotatedCommitFree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AnnotatedCommit{repo: r, guard: g}, nil
}

// AnnotatedCommitLookup creates an annotated commit from a commit id.
func (r *Repository) AnnotatedCommitLookup(id native.Oid) (*AnnotatedCommit, error) {
	rp, err := r.raw()
	if err != nil {
		return nil, err
	}
	ptr, nerr := r.lib.AnnotatedCommitLookup(rp, id)
	runtime.KeepAlive(r)
	return r.adoptCommit("annotated commit lookup", ptr, nerr)
}

// AnnotatedCommitFromRef creates an annotated commit from a reference name
// such as refs/heads/main.
func (r *Repository) AnnotatedCommitFromRef(refname string) (*AnnotatedCommit, error) {
	rp, err := r.raw()
	if err != nil {
		return nil, err
	}
	ptr, nerr := r.lib.AnnotatedCommitFromRef(rp, refname)
	runtime.KeepAlive(r)
	return r.adoptCommit("annotated commit from ref", ptr, nerr)
}

// AnnotatedCommitFromRevspec creates an annotated commit from a revision
// string such as HEAD~2 or a full id.
func (r *Repository) AnnotatedCommitFromRevspec(revspec string) (*AnnotatedCommit, error) {
	rp, err := r.raw()
	if err != nil {
		return nil, err
	}
	ptr, nerr := r.lib.AnnotatedCommitFromRevspec(rp, revspec)
	runtime.KeepAlive(r)
	return r.adoptCommit("annotated commit from revspec", ptr, nerr)
}

// AnnotatedCommitFromRevision resolves name as a local branch first, so the
// commit remembers its ref, and falls back to a revspec.
func (r *Repository) AnnotatedCommitFromRevision(name string) (*AnnotatedCommit, error) {
	c, err := r.AnnotatedCommitFromRef("refs/heads/" + name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return r.AnnotatedCommitFromRevspec(name)
}

// Raw returns the native pointer for a further native call. The commit must
// stay reachable until that call returns.
func (c *AnnotatedCommit) Raw() (native.Pointer, error) {
	return c.guard.Raw()
}

// ID returns the commit id.
func (c *AnnotatedCommit) ID() (native.Oid, error) {
	p, err := c.guard.Raw()
	if err != nil {
		return native.ZeroOid, err
	}
	id := c.repo.lib.AnnotatedCommitID(p)
	runtime.KeepAlive(c)
	return id, nil
}

// Ref returns the reference name the commit was created from, or "" when it
// was not created from a reference.
func (c *AnnotatedCommit) Ref() (string, error) {
	p, err := c.guard.Raw()
	if err != nil {
		return "", err
	}
	ref := c.repo.lib.AnnotatedCommitRef(p)
	runtime.KeepAlive(c)
	return ref, nil
}

// Repository returns the repository the commit belongs to.
func (c *AnnotatedCommit) Repository() *Repository { return c.repo }

// Free releases the commit. Calling Free again, or after the repository was
// closed, does nothing.
func (c *AnnotatedCommit) Free() {
	c.guard.Free()
}
