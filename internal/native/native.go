// Package native defines the ABI boundary between the binding and the native
// version-control engine: fixed-layout records, flag values, opaque pointers,
// status errors, and the set of native entry points the binding calls.
//
// Nothing in this package manages lifetimes. Pointers returned by a Library
// must be adopted by internal/handle immediately after the call that produced
// them.
package native

import (
	"encoding/hex"
	"fmt"
)

// Pointer is an opaque, address-only reference to an object owned by the
// native library. The binding never reads or writes through it.
type Pointer uintptr

// Null is never a valid handle.
const Null Pointer = 0

// IsNull reports whether p is the null handle.
func (p Pointer) IsNull() bool { return p == Null }

func (p Pointer) String() string { return fmt.Sprintf("0x%x", uintptr(p)) }

// OidSize is the raw length of a SHA-1 object id.
const OidSize = 20

// Oid is a raw object id.
type Oid [OidSize]byte

// ZeroOid is the all-zero id.
var ZeroOid Oid

// ParseOid decodes a full 40-character hex id.
func ParseOid(s string) (Oid, error) {
	var id Oid
	if len(s) != OidSize*2 {
		return id, fmt.Errorf("invalid object id %q: want %d hex characters", s, OidSize*2)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return id, nil
}

// IsZero reports whether id is the all-zero id.
func (id Oid) IsZero() bool { return id == ZeroOid }

func (id Oid) String() string { return hex.EncodeToString(id[:]) }

// Short returns the abbreviated 7-character form.
func (id Oid) Short() string { return id.String()[:7] }
