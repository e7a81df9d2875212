package binding_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/schmitthub/gitmerge/internal/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBinding struct {
	raw int
	err error
}

func (f fakeBinding) Raw() (int, error) { return f.raw, f.err }

func TestRaws(t *testing.T) {
	t.Run("collects in order", func(t *testing.T) {
		got, err := binding.Raws[int]([]fakeBinding{{raw: 3}, {raw: 1}, {raw: 2}})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := binding.Raws[int]([]fakeBinding{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("stops at first unusable item", func(t *testing.T) {
		boom := errors.New("released")
		_, err := binding.Raws[int]([]fakeBinding{{raw: 1}, {err: boom}, {raw: 3}})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "item 1")
	})
}

func TestUint32(t *testing.T) {
	tests := []struct {
		name string
		in   uint
		want uint32
	}{
		{name: "zero", in: 0, want: 0},
		{name: "in range", in: 50, want: 50},
		{name: "max native", in: math.MaxUint32, want: math.MaxUint32},
		{name: "wraps one past max", in: math.MaxUint32 + 1, want: 0},
		{name: "wraps modulo", in: math.MaxUint32 + 43, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, binding.Uint32(tt.in))
		})
	}
}

func TestSetBit(t *testing.T) {
	t.Run("set and clear touch only their bit", func(t *testing.T) {
		var field uint32 = 0b1010
		binding.SetBit(&field, 0b0001, true)
		assert.Equal(t, uint32(0b1011), field)

		binding.SetBit(&field, 0b1000, false)
		assert.Equal(t, uint32(0b0011), field)

		binding.SetBit(&field, 0b0100, false)
		assert.Equal(t, uint32(0b0011), field, "clearing an unset bit is a no-op")
	})

	t.Run("result is the OR of set bits regardless of order", func(t *testing.T) {
		bits := []uint32{1 << 0, 1 << 1, 1 << 2, 1 << 3, 1 << 4, 1 << 5, 1 << 6, 1 << 7}
		rng := rand.New(rand.NewSource(1))

		for round := 0; round < 200; round++ {
			var field uint32
			final := make(map[uint32]bool)
			for step := 0; step < 20; step++ {
				bit := bits[rng.Intn(len(bits))]
				on := rng.Intn(2) == 0
				binding.SetBit(&field, bit, on)
				final[bit] = on
			}

			var want uint32
			for bit, on := range final {
				if on {
					want |= bit
				}
			}
			require.Equal(t, want, field, "round %d", round)
		}
	})

	assert.True(t, binding.HasBit(0b0110, 0b0100))
	assert.False(t, binding.HasBit(0b0110, 0b1100))
}
