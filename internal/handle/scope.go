// Package handle ties the lifetime of opaque native handles to managed Go
// values.
//
// A Scope stands for a parent native resource (a repository). Every Guard is
// adopted into exactly one Scope and owns exactly one native handle. Go cannot
// express "this guard must not outlive its parent" statically, so scopes are
// generation-checked: closing a scope frees its live guards, releases the
// parent, and advances the generation. Any guard captured under an older
// generation reports ErrScopeClosed instead of handing out a dangling handle.
package handle

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/schmitthub/gitmerge/internal/logger"
)

var (
	// ErrScopeClosed is returned when the parent scope of a handle has been released.
	ErrScopeClosed = errors.New("parent scope released")

	// ErrFreed is returned when a handle has already been freed.
	ErrFreed = errors.New("handle already freed")

	// ErrMoved is returned when a guard's ownership was moved to another guard.
	ErrMoved = errors.New("handle ownership moved")
)

// child is the type-erased view a Scope keeps of each live guard.
type child interface {
	key() any
	freeByScope()
}

// Scope is the lifetime marker for a parent native resource.
type Scope struct {
	id      string
	kind    string
	release func()
	gen     atomic.Uint64

	mu       sync.Mutex
	closed   bool
	children []child
	owned    map[any]child
}

// NewScope creates a live scope. release frees the parent resource and is
// invoked exactly once, by Close, after every child has been freed.
func NewScope(kind string, release func()) *Scope {
	if release == nil {
		release = func() {}
	}
	s := &Scope{
		id:      uuid.NewString(),
		kind:    kind,
		release: release,
		owned:   make(map[any]child),
	}
	logger.Debug().Str("scope", s.id).Str("kind", kind).Msg("scope opened")
	return s
}

// ID returns the unique identifier of the scope, used in log entries.
func (s *Scope) ID() string { return s.id }

// Kind returns the parent resource kind the scope was created for.
func (s *Scope) Kind() string { return s.kind }

// Generation returns the current generation. It advances when the scope closes.
func (s *Scope) Generation() uint64 { return s.gen.Load() }

// Closed reports whether Close has run.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Live returns the number of guards currently owned by the scope.
func (s *Scope) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.children)
}

// Close frees every live guard in reverse adoption order, then releases the
// parent. Closing twice returns ErrScopeClosed.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("closing %s scope %s: %w", s.kind, s.id, ErrScopeClosed)
	}
	s.closed = true
	s.gen.Add(1)
	children := s.children
	s.children = nil
	s.owned = nil
	s.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].freeByScope()
	}
	s.release()

	logger.Debug().
		Str("scope", s.id).
		Str("kind", s.kind).
		Int("children", len(children)).
		Msg("scope closed")
	return nil
}

// register records c as a live child. Caller must hold s.mu.
func (s *Scope) register(c child) {
	s.owned[c.key()] = c
	s.children = append(s.children, c)
}

// replace swaps old for c in place, keeping its adoption position.
func (s *Scope) replace(old, c child) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for i, existing := range s.children {
		if existing == old {
			s.children[i] = c
			s.owned[c.key()] = c
			return true
		}
	}
	return false
}

// forget drops c from the live set after it was freed by its guard.
func (s *Scope) forget(c child) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.owned[c.key()] == c {
		delete(s.owned, c.key())
	}
	for i, existing := range s.children {
		if existing == c {
			s.children = append(s.children[:i], s.children[i+1:]...)
			break
		}
	}
}
