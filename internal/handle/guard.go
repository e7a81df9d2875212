package handle

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/schmitthub/gitmerge/internal/logger"
)

const (
	statusLive int32 = iota
	statusFreed
	statusMoved
)

// state is the ownership record of one native handle. It is shared between
// the Guard, its Scope, and the Guard's GC cleanup, and never references the
// Guard itself.
type state[R comparable] struct {
	scope  *Scope
	gen    uint64
	raw    R
	free   func(R)
	status atomic.Int32
}

func (st *state[R]) key() any { return st.raw }

// release moves Live to Freed and calls free. It reports false when the
// handle was already freed or moved.
func (st *state[R]) release() bool {
	if !st.status.CompareAndSwap(statusLive, statusFreed) {
		return false
	}
	st.scope.forget(st)
	st.free(st.raw)
	return true
}

func (st *state[R]) freeByScope() {
	if st.status.CompareAndSwap(statusLive, statusFreed) {
		st.free(st.raw)
	}
}

// Guard is the unique owner of one native handle of type R.
//
// The handle is freed exactly once: by Free, by closing the owning Scope, or,
// for guards that were dropped without either, by a GC cleanup. Callers
// should defer Free right after a successful constructor.
type Guard[R comparable] struct {
	st *state[R]
}

// Adopt takes ownership of raw, a handle produced by a successful native call
// against the parent represented by s. The caller must not use or free raw
// again.
//
// Adopting a zero (null) handle or a handle already owned in s is a contract
// violation and panics. Adopting into a closed scope frees raw immediately
// and returns ErrScopeClosed.
func Adopt[R comparable](s *Scope, raw R, free func(R)) (*Guard[R], error) {
	var zero R
	if raw == zero {
		panic(fmt.Sprintf("handle: adopting a null %s handle", s.kind))
	}
	if free == nil {
		panic("handle: adopting a handle without a free function")
	}

	st := &state[R]{scope: s, raw: raw, free: free}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		free(raw)
		return nil, fmt.Errorf("adopting handle %v into %s scope %s: %w", raw, s.kind, s.id, ErrScopeClosed)
	}
	if _, dup := s.owned[any(raw)]; dup {
		s.mu.Unlock()
		panic(fmt.Sprintf("handle: %v is already owned by %s scope %s", raw, s.kind, s.id))
	}
	st.gen = s.gen.Load()
	s.register(st)
	s.mu.Unlock()

	logger.Debug().Str("scope", s.id).Str("ptr", fmt.Sprint(raw)).Msg("handle adopted")
	return newGuard(st), nil
}

func newGuard[R comparable](st *state[R]) *Guard[R] {
	g := &Guard[R]{st: st}
	runtime.AddCleanup(g, func(st *state[R]) {
		if st.release() {
			logger.Warn().
				Str("scope", st.scope.id).
				Str("ptr", fmt.Sprint(st.raw)).
				Msg("leaked handle released by GC cleanup")
		}
	}, st)
	return g
}

// Raw returns the handle for a further native call without transferring
// ownership. Callers must keep the Guard reachable (runtime.KeepAlive) until
// that call returns.
func (g *Guard[R]) Raw() (R, error) {
	var zero R
	if g.st.scope.gen.Load() != g.st.gen {
		return zero, ErrScopeClosed
	}
	switch g.st.status.Load() {
	case statusFreed:
		return zero, ErrFreed
	case statusMoved:
		return zero, ErrMoved
	}
	return g.st.raw, nil
}

// Live reports whether the guard still owns a usable handle.
func (g *Guard[R]) Live() bool {
	_, err := g.Raw()
	return err == nil
}

// Scope returns the scope the guard was adopted into.
func (g *Guard[R]) Scope() *Scope { return g.st.scope }

// Free releases the handle. Only the first call frees; later calls, and calls
// after the owning scope closed, do nothing.
func (g *Guard[R]) Free() {
	if g.st.release() {
		logger.Debug().Str("scope", g.st.scope.id).Str("ptr", fmt.Sprint(g.st.raw)).Msg("handle freed")
	}
}

// Move transfers ownership to a new guard. g becomes terminal and reports
// ErrMoved; the returned guard is the sole owner and the only one that frees.
func (g *Guard[R]) Move() (*Guard[R], error) {
	if _, err := g.Raw(); err != nil {
		return nil, err
	}
	old := g.st
	if !old.status.CompareAndSwap(statusLive, statusMoved) {
		return nil, ErrFreed
	}

	st := &state[R]{scope: old.scope, gen: old.gen, raw: old.raw, free: old.free}
	if !old.scope.replace(old, st) {
		// The scope closed between the checks above and replace; the scope
		// skipped old because it was already marked moved.
		st.free(st.raw)
		return nil, ErrScopeClosed
	}
	return newGuard(st), nil
}
