// Package acceptance runs gitmerge end to end against on-disk repositories
// using testscript.
//
// Run with: go test ./test/cli/...
package acceptance

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/rogpeppe/go-internal/testscript"
	"github.com/schmitthub/gitmerge/internal/gitmerge"
)

// envScript selects a single script to run, e.g. GITMERGE_ACCEPTANCE_SCRIPT=merge.
const envScript = "GITMERGE_ACCEPTANCE_SCRIPT"

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"gitmerge": func() { os.Exit(gitmerge.Main()) },
	})
}

func TestAcceptance(t *testing.T) {
	dir := "testdata"
	var files []string
	if name := os.Getenv(envScript); name != "" {
		files = []string{filepath.Join(dir, name+".txtar")}
	}

	testscript.Run(t, testscript.Params{
		Dir:   dir,
		Files: files,
		Setup: func(e *testscript.Env) error {
			e.Setenv("HOME", e.WorkDir)
			e.Setenv("GITMERGE_HOME", filepath.Join(e.WorkDir, ".gitmerge"))
			e.Setenv("GITMERGE_SPINNER_DISABLED", "1")
			e.Setenv("NO_COLOR", "1")
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"featurerepo": cmdFeatureRepo,
			"divergerepo": cmdDivergeRepo,
			"branchhead":  cmdBranchHead,
		},
	})
}

// repoBuilder writes commits to an on-disk repository with stable timestamps.
type repoBuilder struct {
	repo  *gogit.Repository
	dir   string
	clock time.Time
}

func initRepo(dir string) (*repoBuilder, error) {
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", dir, err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, fmt.Errorf("pointing HEAD at main: %w", err)
	}
	return &repoBuilder{repo: repo, dir: dir, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (b *repoBuilder) commit(msg, path, content string) (plumbing.Hash, error) {
	if err := os.WriteFile(filepath.Join(b.dir, path), []byte(content), 0o644); err != nil {
		return plumbing.ZeroHash, err
	}
	wt, err := b.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := wt.Add(path); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("adding %s: %w", path, err)
	}
	b.clock = b.clock.Add(time.Minute)
	return wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: b.clock},
	})
}

func (b *repoBuilder) branch(name string, at plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), at)
	return b.repo.Storer.SetReference(ref)
}

func (b *repoBuilder) checkout(name string) error {
	wt, err := b.repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&gogit.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(name)})
}

// buildFeature lays out main at A-B and feature at A-B-C-D, with main
// checked out.
func buildFeature(dir string) (*repoBuilder, error) {
	b, err := initRepo(dir)
	if err != nil {
		return nil, err
	}
	if _, err := b.commit("A", "README.md", "# Test Repository\n"); err != nil {
		return nil, err
	}
	base, err := b.commit("B", "a.txt", "a\n")
	if err != nil {
		return nil, err
	}
	if err := b.branch("feature", base); err != nil {
		return nil, err
	}
	if err := b.checkout("feature"); err != nil {
		return nil, err
	}
	if _, err := b.commit("C", "c.txt", "c\n"); err != nil {
		return nil, err
	}
	if _, err := b.commit("D", "a.txt", "a\nd\n"); err != nil {
		return nil, err
	}
	return b, b.checkout("main")
}

// featurerepo DIR
func cmdFeatureRepo(ts *testscript.TestScript, neg bool, args []string) {
	if neg || len(args) != 1 {
		ts.Fatalf("usage: featurerepo DIR")
	}
	if _, err := buildFeature(ts.MkAbs(args[0])); err != nil {
		ts.Fatalf("featurerepo: %v", err)
	}
}

// divergerepo DIR builds the feature layout plus a commit E on main, so
// that main and feature have diverged from B.
func cmdDivergeRepo(ts *testscript.TestScript, neg bool, args []string) {
	if neg || len(args) != 1 {
		ts.Fatalf("usage: divergerepo DIR")
	}
	b, err := buildFeature(ts.MkAbs(args[0]))
	if err == nil {
		_, err = b.commit("E", "e.txt", "e\n")
	}
	if err != nil {
		ts.Fatalf("divergerepo: %v", err)
	}
}

// branchhead DIR BRANCH VAR stores the commit id BRANCH points at in VAR.
func cmdBranchHead(ts *testscript.TestScript, neg bool, args []string) {
	if neg || len(args) != 3 {
		ts.Fatalf("usage: branchhead DIR BRANCH VAR")
	}
	repo, err := gogit.PlainOpen(ts.MkAbs(args[0]))
	if err != nil {
		ts.Fatalf("branchhead: %v", err)
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(args[1]), true)
	if err != nil {
		ts.Fatalf("branchhead: %v", err)
	}
	ts.Setenv(args[2], ref.Hash().String())
}
