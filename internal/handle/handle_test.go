package handle_test

import (
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/schmitthub/gitmerge/internal/handle"
	"github.com/schmitthub/gitmerge/internal/logger/loggertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freeCounter counts free calls per handle and records their order.
type freeCounter struct {
	mu    sync.Mutex
	calls map[uintptr]int
	order []uintptr
}

func newFreeCounter() *freeCounter {
	return &freeCounter{calls: make(map[uintptr]int)}
}

func (c *freeCounter) free(h uintptr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[h]++
	c.order = append(c.order, h)
}

func (c *freeCounter) count(h uintptr) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[h]
}

func adopt(t *testing.T, s *handle.Scope, raw uintptr, c *freeCounter) *handle.Guard[uintptr] {
	t.Helper()
	g, err := handle.Adopt(s, raw, c.free)
	require.NoError(t, err)
	return g
}

func TestGuard_FreeExactlyOnce(t *testing.T) {
	t.Run("explicit free then repeat", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		g := adopt(t, s, 0x10, c)

		raw, err := g.Raw()
		require.NoError(t, err)
		assert.Equal(t, uintptr(0x10), raw)

		g.Free()
		g.Free()
		assert.Equal(t, 1, c.count(0x10))
		assert.Equal(t, 0, s.Live())

		_, err = g.Raw()
		assert.ErrorIs(t, err, handle.ErrFreed)
		assert.False(t, g.Live())
	})

	t.Run("deferred free on early return", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		boom := errors.New("boom")

		op := func() error {
			g := adopt(t, s, 0x20, c)
			defer g.Free()
			if _, err := g.Raw(); err != nil {
				return err
			}
			return boom
		}

		assert.ErrorIs(t, op(), boom)
		assert.Equal(t, 1, c.count(0x20))
	})

	t.Run("deferred free on panic", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)

		assert.Panics(t, func() {
			g := adopt(t, s, 0x30, c)
			defer g.Free()
			panic("unwind")
		})
		assert.Equal(t, 1, c.count(0x30))
	})

	t.Run("free then scope close does not double free", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		g := adopt(t, s, 0x40, c)

		g.Free()
		require.NoError(t, s.Close())
		assert.Equal(t, 1, c.count(0x40))
	})
}

func TestScope_Close(t *testing.T) {
	t.Run("frees live children in reverse order then parent", func(t *testing.T) {
		c := newFreeCounter()
		parentFreed := 0
		var parentSawChildren int
		s := handle.NewScope("repository", func() {
			parentFreed++
			parentSawChildren = len(c.order)
		})

		a := adopt(t, s, 1, c)
		adopt(t, s, 2, c)
		adopt(t, s, 3, c)
		a.Free()
		assert.Equal(t, 2, s.Live())

		require.NoError(t, s.Close())

		assert.Equal(t, []uintptr{1, 3, 2}, c.order)
		assert.Equal(t, 1, parentFreed)
		assert.Equal(t, 3, parentSawChildren, "children must be freed before the parent")
		assert.True(t, s.Closed())
		assert.Equal(t, 0, s.Live())
	})

	t.Run("second close errors without releasing again", func(t *testing.T) {
		released := 0
		s := handle.NewScope("repository", func() { released++ })

		require.NoError(t, s.Close())
		err := s.Close()
		require.Error(t, err)
		assert.ErrorIs(t, err, handle.ErrScopeClosed)
		assert.Equal(t, 1, released)
	})

	t.Run("children report scope closed after parent release", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		g := adopt(t, s, 0x50, c)
		gen := s.Generation()

		require.NoError(t, s.Close())
		assert.Greater(t, s.Generation(), gen)

		_, err := g.Raw()
		assert.ErrorIs(t, err, handle.ErrScopeClosed)

		g.Free()
		assert.Equal(t, 1, c.count(0x50))
	})

	t.Run("adopting into closed scope frees immediately", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		require.NoError(t, s.Close())

		g, err := handle.Adopt(s, uintptr(0x60), c.free)
		require.Error(t, err)
		assert.ErrorIs(t, err, handle.ErrScopeClosed)
		assert.Nil(t, g)
		assert.Equal(t, 1, c.count(0x60))
	})
}

func TestAdopt_ContractViolations(t *testing.T) {
	t.Run("null handle panics", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		assert.Panics(t, func() { _, _ = handle.Adopt(s, uintptr(0), c.free) })
		assert.Equal(t, 0, c.count(0))
	})

	t.Run("aliasing a live handle panics", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		adopt(t, s, 0x70, c)
		assert.Panics(t, func() { _, _ = handle.Adopt(s, uintptr(0x70), c.free) })
	})

	t.Run("re-adopting after free is allowed", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		g := adopt(t, s, 0x80, c)
		g.Free()
		g2 := adopt(t, s, 0x80, c)
		g2.Free()
		assert.Equal(t, 2, c.count(0x80))
	})

	t.Run("missing free function panics", func(t *testing.T) {
		s := handle.NewScope("repository", nil)
		assert.Panics(t, func() { _, _ = handle.Adopt[uintptr](s, 0x90, nil) })
	})
}

func TestGuard_Move(t *testing.T) {
	t.Run("destination is sole owner", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		src := adopt(t, s, 0xa0, c)

		dst, err := src.Move()
		require.NoError(t, err)

		_, err = src.Raw()
		assert.ErrorIs(t, err, handle.ErrMoved)
		src.Free()
		assert.Equal(t, 0, c.count(0xa0), "moved-from guard must not free")

		raw, err := dst.Raw()
		require.NoError(t, err)
		assert.Equal(t, uintptr(0xa0), raw)
		assert.Equal(t, 1, s.Live())

		dst.Free()
		assert.Equal(t, 1, c.count(0xa0))
	})

	t.Run("scope close frees the destination", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		src := adopt(t, s, 0xb0, c)
		dst, err := src.Move()
		require.NoError(t, err)

		require.NoError(t, s.Close())
		assert.Equal(t, 1, c.count(0xb0))
		assert.False(t, dst.Live())
	})

	t.Run("cannot move a freed guard", func(t *testing.T) {
		c := newFreeCounter()
		s := handle.NewScope("repository", nil)
		g := adopt(t, s, 0xc0, c)
		g.Free()

		_, err := g.Move()
		assert.ErrorIs(t, err, handle.ErrFreed)
	})
}

func TestGuard_LeakedGuardReleasedByCleanup(t *testing.T) {
	tl := loggertest.Install(t)
	c := newFreeCounter()
	s := handle.NewScope("repository", nil)

	func() {
		_ = adopt(t, s, 0xd0, c)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for c.count(0xd0) == 0 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, 1, c.count(0xd0))
	assert.Eventually(t, func() bool {
		return strings.Contains(tl.Output(), "leaked handle released by GC cleanup")
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.Live())
}

func TestGuard_ConcurrentFree(t *testing.T) {
	c := newFreeCounter()
	s := handle.NewScope("repository", nil)
	g := adopt(t, s, 0xe0, c)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Free()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.count(0xe0))
}
