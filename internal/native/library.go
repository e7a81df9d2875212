package native

// Library is the fixed set of native entry points used by the binding.
//
// Every call returning a Pointer transfers ownership of that pointer to the
// caller on success; the caller must eventually pass it to the matching free
// function exactly once. Nothing returned from a failed call needs freeing.
type Library interface {
	// InitMergeOptions writes library defaults into a zeroed record. A
	// non-nil result means the record layout does not match the library.
	InitMergeOptions(opts *MergeOptions, version uint32) *Error

	RepositoryOpen(path string) (Pointer, *Error)
	RepositoryFree(repo Pointer)

	AnnotatedCommitLookup(repo Pointer, id Oid) (Pointer, *Error)
	AnnotatedCommitFromRef(repo Pointer, refname string) (Pointer, *Error)
	AnnotatedCommitFromRevspec(repo Pointer, revspec string) (Pointer, *Error)
	AnnotatedCommitID(commit Pointer) Oid
	// AnnotatedCommitRef returns the ref name the commit was looked up from,
	// or "" when it was not created from a ref.
	AnnotatedCommitRef(commit Pointer) string
	AnnotatedCommitFree(commit Pointer)

	MergeBase(repo Pointer, one, two Oid) (Oid, *Error)
	MergeAnalysis(repo Pointer, heads []Pointer) (MergeAnalysis, MergePreference, *Error)
	// Merge merges heads into HEAD, reading opts by reference for the
	// duration of the call only.
	Merge(repo Pointer, heads []Pointer, opts *MergeOptions) *Error
}
