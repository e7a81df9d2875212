package git

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/schmitthub/gitmerge/internal/binding"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/native"
)

// Analysis is the result of analyzing a merge of heads into HEAD.
type Analysis struct {
	Analysis   native.MergeAnalysis
	Preference native.MergePreference
}

// IsUpToDate reports whether all heads are already reachable from HEAD.
func (a Analysis) IsUpToDate() bool { return a.Analysis&native.AnalysisUpToDate != 0 }

// IsFastForward reports whether HEAD can be moved to the head without a merge.
func (a Analysis) IsFastForward() bool { return a.Analysis&native.AnalysisFastForward != 0 }

// IsNormal reports whether a merge commit is possible.
func (a Analysis) IsNormal() bool { return a.Analysis&native.AnalysisNormal != 0 }

// IsUnborn reports whether HEAD points at a branch with no commits yet.
func (a Analysis) IsUnborn() bool { return a.Analysis&native.AnalysisUnborn != 0 }

// String renders the analysis and preference bits, e.g. "fastforward|normal (ff-only)".
func (a Analysis) String() string {
	var parts []string
	if a.IsNormal() {
		parts = append(parts, "normal")
	}
	if a.IsUpToDate() {
		parts = append(parts, "up-to-date")
	}
	if a.IsFastForward() {
		parts = append(parts, "fastforward")
	}
	if a.IsUnborn() {
		parts = append(parts, "unborn")
	}
	s := "none"
	if len(parts) > 0 {
		s = strings.Join(parts, "|")
	}
	switch {
	case a.Preference&native.PreferenceNoFastForward != 0:
		s += " (no-ff)"
	case a.Preference&native.PreferenceFastForwardOnly != 0:
		s += " (ff-only)"
	}
	return s
}

func (r *Repository) heads(heads []*AnnotatedCommit) ([]native.Pointer, error) {
	for i, h := range heads {
		if h == nil {
			return nil, fmt.Errorf("head %d: %w", i, ErrInvalid)
		}
		if h.repo != r {
			return nil, fmt.Errorf("head %d: %w", i, ErrForeignCommit)
		}
	}
	return binding.Raws[native.Pointer](heads)
}

// MergeAnalysis analyzes the given heads against HEAD.
func (r *Repository) MergeAnalysis(heads ...*AnnotatedCommit) (Analysis, error) {
	rp, err := r.raw()
	if err != nil {
		return Analysis{}, err
	}
	raws, err := r.heads(heads)
	if err != nil {
		return Analysis{}, err
	}
	analysis, pref, nerr := r.lib.MergeAnalysis(rp, raws)
	runtime.KeepAlive(heads)
	runtime.KeepAlive(r)
	if nerr != nil {
		return Analysis{}, wrapError("merge analysis", nerr)
	}
	return Analysis{Analysis: analysis, Preference: pref}, nil
}

// MergeBase finds a merge base between two commits.
func (r *Repository) MergeBase(one, two native.Oid) (native.Oid, error) {
	rp, err := r.raw()
	if err != nil {
		return native.ZeroOid, err
	}
	base, nerr := r.lib.MergeBase(rp, one, two)
	runtime.KeepAlive(r)
	if nerr != nil {
		return native.ZeroOid, wrapError("merge base", nerr)
	}
	return base, nil
}

// Merge merges heads into HEAD. A nil opts uses the library defaults.
// The options record is only read for the duration of the call.
func (r *Repository) Merge(heads []*AnnotatedCommit, opts *MergeOptions) error {
	rp, err := r.raw()
	if err != nil {
		return err
	}
	raws, err := r.heads(heads)
	if err != nil {
		return err
	}
	var raw *native.MergeOptions
	if opts != nil {
		raw = opts.Raw()
	}
	nerr := r.lib.Merge(rp, raws, raw)
	runtime.KeepAlive(opts)
	runtime.KeepAlive(heads)
	runtime.KeepAlive(r)
	if nerr != nil {
		logger.Debug().
			Str("repo", r.path).
			Str("code", nerr.Code.String()).
			Str("class", nerr.Class.String()).
			Msg("merge failed")
		return wrapError("merge", nerr)
	}
	return nil
}
