package vec_test

import (
	"testing"

	"github.com/snucp/tfhe-wopbs/math/vec"
	"github.com/stretchr/testify/assert"
)

func TestRotate(t *testing.T) {
	v := []int{1, 2, 3, 4, 5}

	t.Run("Right", func(t *testing.T) {
		w := vec.Copy(v)
		vec.RotateInPlace(w, 2)
		assert.Equal(t, []int{4, 5, 1, 2, 3}, w)
	})

	t.Run("Left", func(t *testing.T) {
		w := vec.Copy(v)
		vec.RotateInPlace(w, -1)
		assert.Equal(t, []int{2, 3, 4, 5, 1}, w)
	})

	t.Run("Overflow", func(t *testing.T) {
		w := vec.Copy(v)
		vec.RotateInPlace(w, 7)
		assert.Equal(t, []int{4, 5, 1, 2, 3}, w)
	})
}

func TestChunk(t *testing.T) {
	v := []uint64{0, 1, 2, 3, 4, 5}
	c := vec.Chunk(v, 2)
	assert.Len(t, c, 3)
	c[1][0] = 42
	assert.Equal(t, uint64(42), v[2])
}

func TestArithmetic(t *testing.T) {
	v0 := []uint32{1, 2, 3}
	v1 := []uint32{4, 5, 6}

	assert.Equal(t, []uint32{5, 7, 9}, vec.Add(v0, v1))
	assert.Equal(t, []uint32{1<<32 - 3, 1<<32 - 3, 1<<32 - 3}, vec.Sub(v0, v1))
	assert.Equal(t, uint32(32), vec.Dot(v0, v1))

	out := vec.Copy(v1)
	vec.ScalarMulSubAssign(v0, 2, out)
	assert.Equal(t, []uint32{2, 1, 0}, out)
}
