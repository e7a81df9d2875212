package native

import "fmt"

// Code is a native status code. Values follow libgit2's numbering.
type Code int32

const (
	OK                Code = 0
	ErrGeneric        Code = -1
	ErrNotFound       Code = -3
	ErrExists         Code = -4
	ErrAmbiguous      Code = -5
	ErrBareRepo       Code = -8
	ErrUnbornBranch   Code = -9
	ErrUnmerged       Code = -10
	ErrNonFastForward Code = -11
	ErrInvalidSpec    Code = -12
	ErrConflict       Code = -13
	ErrLocked         Code = -14
	ErrInvalid        Code = -35
	ErrUnsupported    Code = -100
)

var codeNames = map[Code]string{
	OK:                "ok",
	ErrGeneric:        "generic",
	ErrNotFound:       "not found",
	ErrExists:         "exists",
	ErrAmbiguous:      "ambiguous",
	ErrBareRepo:       "bare repository",
	ErrUnbornBranch:   "unborn branch",
	ErrUnmerged:       "unmerged",
	ErrNonFastForward: "non fast-forward",
	ErrInvalidSpec:    "invalid spec",
	ErrConflict:       "conflict",
	ErrLocked:         "locked",
	ErrInvalid:        "invalid",
	ErrUnsupported:    "unsupported",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int32(c))
}

// Class identifies the native subsystem that raised an error.
type Class int32

const (
	ClassNone Class = iota
	ClassInvalid
	ClassReference
	ClassObject
	ClassRepository
	ClassMerge
	ClassOS
)

var classNames = [...]string{"none", "invalid", "reference", "object", "repository", "merge", "os"}

func (c Class) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", int32(c))
}

// Error is the non-OK status of a native call. A nil *Error means success.
type Error struct {
	Code    Code
	Class   Class
	Message string
}

// Errorf builds a status for the given code and class.
func Errorf(code Code, class Class, format string, args ...any) *Error {
	return &Error{Code: code, Class: class, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s/%s)", e.Message, e.Class, e.Code)
}
