package config

import (
	"errors"
	"fmt"

	"github.com/schmitthub/gitmerge/internal/git"
)

// Accepted values of the enumerated merge keys.
var (
	ConflictStyles  = []string{"merge", "diff3", "zdiff3"}
	WhitespaceModes = []string{"ignore-all", "ignore-change", "ignore-eol"}
	DiffAlgorithms  = []string{"myers", "patience", "minimal"}
)

func oneOf(key, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: %w: unknown value %q (want one of %v)", key, git.ErrInvalid, value, allowed)
}

// Validate checks the enumerated keys of the section.
func (m *MergeConfig) Validate() error {
	var errs []error
	if m.FileFavor != "" {
		if _, err := git.ParseFileFavor(m.FileFavor); err != nil {
			errs = append(errs, fmt.Errorf("file_favor: %w", err))
		}
	}
	errs = append(errs,
		oneOf("conflict_style", m.ConflictStyle, ConflictStyles),
		oneOf("whitespace", m.Whitespace, WhitespaceModes),
		oneOf("diff_algorithm", m.DiffAlgorithm, DiffAlgorithms),
	)
	return errors.Join(errs...)
}

// Apply drives the option setters for every key that is set. Keys left
// unset keep whatever opts already holds.
func (m *MergeConfig) Apply(opts *git.MergeOptions) error {
	if err := m.Validate(); err != nil {
		return err
	}

	if m.RenameThreshold != nil {
		opts.RenameThreshold(*m.RenameThreshold)
	}
	if m.TargetLimit != nil {
		opts.TargetLimit(*m.TargetLimit)
	}
	if m.RecursionLimit != nil {
		opts.RecursionLimit(*m.RecursionLimit)
	}

	setBool(m.FindRenames, opts.FindRenames)
	setBool(m.FailOnConflict, opts.FailOnConflict)
	setBool(m.SkipREUC, opts.SkipREUC)
	setBool(m.NoRecursive, opts.NoRecursive)
	setBool(m.SimplifyAlnum, opts.SimplifyAlnum)
	setBool(m.AcceptConflicts, opts.AcceptConflicts)

	if m.FileFavor != "" {
		favor, _ := git.ParseFileFavor(m.FileFavor)
		opts.FileFavor(favor)
	}

	// Enumerated keys select exactly one flag of their group.
	if m.ConflictStyle != "" {
		opts.StandardStyle(m.ConflictStyle == "merge").
			Diff3Style(m.ConflictStyle == "diff3").
			ZDiff3Style(m.ConflictStyle == "zdiff3")
	}
	if m.Whitespace != "" {
		opts.IgnoreWhitespace(m.Whitespace == "ignore-all").
			IgnoreWhitespaceChange(m.Whitespace == "ignore-change").
			IgnoreWhitespaceEOL(m.Whitespace == "ignore-eol")
	}
	if m.DiffAlgorithm != "" {
		opts.Patience(m.DiffAlgorithm == "patience").
			Minimal(m.DiffAlgorithm == "minimal")
	}
	return nil
}

func setBool(v *bool, set func(bool) *git.MergeOptions) {
	if v != nil {
		set(*v)
	}
}
