package idgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealhieu/wee/internal/idgen"
)

func TestEncode(t *testing.T) {
	t.Run("uses digits then upper then lower case", func(t *testing.T) {
		assert.Equal(t, "9", idgen.Encode(9))
		assert.Equal(t, "A", idgen.Encode(10))
		assert.Equal(t, "z", idgen.Encode(61))
		assert.Equal(t, "10", idgen.Encode(62))
	})

	t.Run("decodes digit-first codes", func(t *testing.T) {
		for code, want := range map[string]uint64{"9": 9, "A": 10, "z": 61, "10": 62, "1c": 100} {
			got, err := idgen.Decode(code)

			require.NoError(t, err)
			assert.Equal(t, want, got, code)
		}
	})

	t.Run("distinct ids give distinct codes", func(t *testing.T) {
		seen := make(map[string]bool)

		for id := uint64(1); id <= 5000; id++ {
			code := idgen.Encode(id)

			assert.False(t, seen[code], "duplicate code %s", code)
			seen[code] = true
		}
	})

	t.Run("decode inverts encode", func(t *testing.T) {
		for _, id := range []uint64{1, 62, 100, 3843, 1_000_000, 1 << 40} {
			got, err := idgen.Decode(idgen.Encode(id))

			require.NoError(t, err)
			assert.Equal(t, id, got)
		}
	})
}

func TestSnowflakeAllocator(t *testing.T) {
	t.Run("issues increasing ids", func(t *testing.T) {
		alloc, err := idgen.NewSnowflakeAllocator(1)
		require.NoError(t, err)

		first, err := alloc.NextID(t.Context())
		require.NoError(t, err)

		second, err := alloc.NextID(t.Context())
		require.NoError(t, err)

		assert.Greater(t, second, first)
	})

	t.Run("rejects out of range node", func(t *testing.T) {
		_, err := idgen.NewSnowflakeAllocator(5000)

		assert.Error(t, err)
	})
}
