// Package binding holds the low-level conversions shared by every managed
// wrapper: exposing raw native values, narrowing Go integers to native
// widths, and toggling single bits of packed flag fields.
package binding

import "fmt"

// Binding is implemented by managed wrappers around a native value of type R.
// Raw hands out the value for a further native call without transferring
// ownership; it fails once the wrapper or its parent has been released.
type Binding[R any] interface {
	Raw() (R, error)
}

// Raws collects the raw values of items, in order, for native calls taking an
// array of handles. It fails on the first item that is no longer usable.
func Raws[R any, B Binding[R]](items []B) ([]R, error) {
	out := make([]R, 0, len(items))
	for i, item := range items {
		raw, err := item.Raw()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

// Uint32 narrows v to the native unsigned width. Out-of-range values wrap
// modulo 2^32; they are never clamped or rejected.
func Uint32(v uint) uint32 {
	return uint32(v)
}

// SetBit sets bit in *field when on is true and clears it otherwise. No other
// bit of *field changes.
func SetBit(field *uint32, bit uint32, on bool) {
	if on {
		*field |= bit
	} else {
		*field &^= bit
	}
}

// HasBit reports whether every bit of mask is set in field.
func HasBit(field, mask uint32) bool {
	return field&mask == mask
}
