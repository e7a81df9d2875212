package cmdutil

import (
	"fmt"

	"github.com/schmitthub/gitmerge/internal/git"
)

// ResolveHeads looks up one annotated commit per revision. On failure every
// commit resolved so far is freed before returning.
func ResolveHeads(repo *git.Repository, revs []string) ([]*git.AnnotatedCommit, error) {
	heads := make([]*git.AnnotatedCommit, 0, len(revs))
	for _, rev := range revs {
		c, err := repo.AnnotatedCommitFromRevision(rev)
		if err != nil {
			FreeHeads(heads)
			return nil, fmt.Errorf("resolving %q: %w", rev, err)
		}
		heads = append(heads, c)
	}
	return heads, nil
}

// FreeHeads releases every commit in heads.
func FreeHeads(heads []*git.AnnotatedCommit) {
	for _, h := range heads {
		h.Free()
	}
}
