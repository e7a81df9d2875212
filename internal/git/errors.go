package git

import (
	"errors"
	"fmt"

	"github.com/schmitthub/gitmerge/internal/native"
)

var (
	// ErrNotRepository is returned when the path is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrNotFound is returned when a commit, ref or revspec does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a short id or revspec matches several objects.
	ErrAmbiguous = errors.New("ambiguous reference")

	// ErrInvalid is returned when the native library rejects an argument,
	// including nonsensical merge option combinations.
	ErrInvalid = errors.New("invalid argument")

	// ErrConflict is returned when a merge would overwrite local changes or
	// produced conflicts the caller asked to fail on.
	ErrConflict = errors.New("merge conflict")

	// ErrUnmerged is returned when the index already has unmerged entries.
	ErrUnmerged = errors.New("unmerged entries present")

	// ErrNonFastForward is returned when only a fast-forward was allowed but
	// the histories have diverged.
	ErrNonFastForward = errors.New("not possible to fast-forward")

	// ErrBareRepo is returned for operations that need a worktree.
	ErrBareRepo = errors.New("bare repository")

	// ErrLocked is returned when another process holds the repository lock.
	ErrLocked = errors.New("repository locked")

	// ErrUnsupported is returned when the native library does not implement
	// the requested operation.
	ErrUnsupported = errors.New("operation not supported")

	// ErrForeignCommit is returned when an annotated commit from one
	// repository is passed to another repository.
	ErrForeignCommit = errors.New("annotated commit belongs to a different repository")
)

var codeSentinels = map[native.Code]error{
	native.ErrNotFound:       ErrNotFound,
	native.ErrAmbiguous:      ErrAmbiguous,
	native.ErrInvalid:        ErrInvalid,
	native.ErrInvalidSpec:    ErrInvalid,
	native.ErrConflict:       ErrConflict,
	native.ErrUnmerged:       ErrUnmerged,
	native.ErrNonFastForward: ErrNonFastForward,
	native.ErrBareRepo:       ErrBareRepo,
	native.ErrLocked:         ErrLocked,
	native.ErrUnsupported:    ErrUnsupported,
}

// GitError is a failed native call.
type GitError struct {
	Op      string
	Code    native.Code
	Class   native.Class
	Message string
}

func (e *GitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is maps the native status code onto the package sentinels.
func (e *GitError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && sentinel == target
}

func wrapError(op string, nerr *native.Error) error {
	return &GitError{
		Op:      op,
		Code:    nerr.Code,
		Class:   nerr.Class,
		Message: nerr.Message,
	}
}
