// Package gittest provides in-memory repositories wired into the go-git
// engine for tests of the git package and the commands built on it.
package gittest

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/schmitthub/gitmerge/internal/native/gitengine"
	"github.com/stretchr/testify/require"
)

// InMemoryRepo is a go-git repository backed by memfs, registered with an
// engine and wrapped as a *git.Repository.
type InMemoryRepo struct {
	*git.Repository

	Engine   *gitengine.Engine
	Worktree billy.Filesystem

	repo  *gogit.Repository
	clock time.Time
}

// NewInMemoryRepo creates an empty repository on branch main. The wrapped
// repository is closed on test cleanup unless the test closed it already.
func NewInMemoryRepo(t *testing.T, name string) *InMemoryRepo {
	t.Helper()

	dotGitFS := memfs.New()
	worktreeFS := memfs.New()
	storer := filesystem.NewStorage(dotGitFS, cache.NewObjectLRUDefault())

	repo, err := gogit.Init(storer, gogit.WithWorkTree(worktreeFS))
	require.NoError(t, err, "failed to init in-memory repo")
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))
	require.NoError(t, repo.Storer.SetReference(head), "failed to point HEAD at main")

	engine := gitengine.New()
	ptr := engine.Register(repo, name)

	m := &InMemoryRepo{
		Repository: git.WrapRepository(engine, ptr, name),
		Engine:     engine,
		Worktree:   worktreeFS,
		repo:       repo,
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	t.Cleanup(func() {
		if !m.Scope().Closed() {
			_ = m.Close()
		}
	})
	return m
}

// GoGit returns the underlying go-git repository for assertions.
func (m *InMemoryRepo) GoGit() *gogit.Repository {
	return m.repo
}

// WriteFile writes content to path in the worktree without staging it.
func (m *InMemoryRepo) WriteFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := m.Worktree.Create(path)
	require.NoError(t, err, "failed to create %s", path)
	_, err = f.Write([]byte(content))
	require.NoError(t, err, "failed to write %s", path)
	require.NoError(t, f.Close(), "failed to close %s", path)
}

// Commit writes files, stages them and commits on the current branch.
func (m *InMemoryRepo) Commit(t *testing.T, msg string, files map[string]string) native.Oid {
	t.Helper()

	wt, err := m.repo.Worktree()
	require.NoError(t, err, "failed to get worktree")

	for path, content := range files {
		m.WriteFile(t, path, content)
		_, err = wt.Add(path)
		require.NoError(t, err, "failed to add %s", path)
	}

	// Distinct timestamps keep commit ids stable and ordered.
	m.clock = m.clock.Add(time.Minute)
	hash, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  m.clock,
		},
		AllowEmptyCommits: len(files) == 0,
	})
	require.NoError(t, err, "failed to commit %q", msg)

	id, err := native.ParseOid(hash.String())
	require.NoError(t, err)
	return id
}

// Branch creates refs/heads/name pointing at id.
func (m *InMemoryRepo) Branch(t *testing.T, name string, id native.Oid) {
	t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(id.String()))
	require.NoError(t, m.repo.Storer.SetReference(ref), "failed to create branch %s", name)
}

// Checkout switches the worktree to an existing branch.
func (m *InMemoryRepo) Checkout(t *testing.T, name string) {
	t.Helper()
	wt, err := m.repo.Worktree()
	require.NoError(t, err, "failed to get worktree")
	err = wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	})
	require.NoError(t, err, "failed to checkout %s", name)
}

// BranchHead returns the commit refs/heads/name points at.
func (m *InMemoryRepo) BranchHead(t *testing.T, name string) native.Oid {
	t.Helper()
	ref, err := m.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	require.NoError(t, err, "failed to resolve branch %s", name)
	id, err := native.ParseOid(ref.Hash().String())
	require.NoError(t, err)
	return id
}

// SetConfig sets section.key in the repository configuration.
func (m *InMemoryRepo) SetConfig(t *testing.T, section, key, value string) {
	t.Helper()
	cfg, err := m.repo.Config()
	require.NoError(t, err, "failed to read config")
	cfg.Raw.Section(section).SetOption(key, value)
	require.NoError(t, m.repo.SetConfig(cfg), "failed to write config")
}

// InitOnDisk initializes a repository with one commit in dir and returns the
// commit id. Use it for code paths that need a real .git directory, such as
// repository locking.
func InitOnDisk(t *testing.T, dir string) native.Oid {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err, "failed to init repo in %s", dir)
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))
	require.NoError(t, repo.Storer.SetReference(head), "failed to point HEAD at main")

	wt, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")
	f, err := wt.Filesystem.Create("README.md")
	require.NoError(t, err, "failed to create README")
	_, err = f.Write([]byte("# Test Repository\n"))
	require.NoError(t, err, "failed to write README")
	require.NoError(t, f.Close())
	_, err = wt.Add("README.md")
	require.NoError(t, err, "failed to add README")

	hash, err := wt.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err, "failed to create initial commit")

	id, err := native.ParseOid(hash.String())
	require.NoError(t, err)
	return id
}

// NewFeatureHistory creates main at A-B and feature at A-B-C-D, with main
// checked out. The returned ids are A, B, C and D in order.
func NewFeatureHistory(t *testing.T) (*InMemoryRepo, []native.Oid) {
	t.Helper()
	repo := NewInMemoryRepo(t, "mem")
	a := repo.Commit(t, "A", map[string]string{"README.md": "# Test Repository\n"})
	b := repo.Commit(t, "B", map[string]string{"a.txt": "a\n"})
	repo.Branch(t, "feature", b)
	repo.Checkout(t, "feature")
	c := repo.Commit(t, "C", map[string]string{"c.txt": "c\n"})
	d := repo.Commit(t, "D", map[string]string{"a.txt": "a\nd\n"})
	repo.Checkout(t, "main")
	return repo, []native.Oid{a, b, c, d}
}
