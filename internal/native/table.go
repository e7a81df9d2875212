package native

import (
	"fmt"
	"sync"
)

// Table mints pointers for objects held on the native side of the boundary.
// Pointers are never reused, so a stale pointer can never resolve to a newer
// object.
type Table[T any] struct {
	mu      sync.Mutex
	next    Pointer
	objects map[Pointer]T
}

// NewTable returns an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{objects: make(map[Pointer]T)}
}

// Insert stores obj and returns its non-null pointer.
func (t *Table[T]) Insert(obj T) Pointer {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	t.objects[t.next] = obj
	return t.next
}

// Get resolves p. ok is false for null, unknown, or already freed pointers.
func (t *Table[T]) Get(p Pointer) (obj T, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	obj, ok = t.objects[p]
	return obj, ok
}

// Remove frees p and returns the object it referenced. Freeing null is a
// no-op. Freeing an unknown pointer is a double free and panics.
func (t *Table[T]) Remove(p Pointer) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	if p.IsNull() {
		return zero
	}
	obj, ok := t.objects[p]
	if !ok {
		panic(fmt.Sprintf("native: free of unknown or already freed pointer %s", p))
	}
	delete(t.objects, p)
	return obj
}

// Len returns the number of live pointers.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.objects)
}
