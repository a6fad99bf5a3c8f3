// Package vec implements vector operations acting on slices.
//
// Operations with an "Assign" suffix write their result to the last argument,
// which may alias any of the inputs.
package vec

import (
	"github.com/snucp/tfhe-wopbs/math/num"
)

// Equals returns whether v0 and v1 are equal.
func Equals[T comparable](v0, v1 []T) bool {
	if len(v0) != len(v1) {
		return false
	}
	for i := range v0 {
		if v0[i] != v1[i] {
			return false
		}
	}
	return true
}

// Fill fills v with x.
func Fill[T any](v []T, x T) {
	for i := range v {
		v[i] = x
	}
}

// Copy returns a copy of v.
func Copy[T any](v []T) []T {
	if v == nil {
		return nil
	}
	return append(make([]T, 0, len(v)), v...)
}

// CopyAssign copies v0 to v1.
func CopyAssign[T any](v0, v1 []T) {
	copy(v1, v0)
}

// Chunk reshapes v into a slice of chunks with given size.
// The chunks share the backing array of v.
func Chunk[T any](v []T, chunkSize int) [][]T {
	chunks := make([][]T, len(v)/chunkSize)
	for i := range chunks {
		chunks[i] = v[i*chunkSize : (i+1)*chunkSize : (i+1)*chunkSize]
	}
	return chunks
}

// Reverse returns the reversed copy of v.
func Reverse[T any](v []T) []T {
	vOut := make([]T, len(v))
	ReverseAssign(v, vOut)
	return vOut
}

// ReverseAssign reverses v and writes it to vOut.
func ReverseAssign[T any](v, vOut []T) {
	for i, j := 0, len(v)-1; i <= j; i, j = i+1, j-1 {
		vOut[i], vOut[j] = v[j], v[i]
	}
}

// ReverseInPlace reverses v.
func ReverseInPlace[T any](v []T) {
	ReverseAssign(v, v)
}

// RotateInPlace rotates v l times to the right.
// If l < 0, then it rotates the vector l times to the left.
func RotateInPlace[T any](v []T, l int) {
	n := len(v)
	if n == 0 {
		return
	}
	l %= n
	if l < 0 {
		l += n
	}
	ReverseInPlace(v)
	ReverseInPlace(v[:l])
	ReverseInPlace(v[l:])
}

// Add returns v0 + v1.
func Add[T num.Integer](v0, v1 []T) []T {
	vOut := make([]T, len(v0))
	AddAssign(v0, v1, vOut)
	return vOut
}

// AddAssign computes vOut = v0 + v1.
func AddAssign[T num.Integer](v0, v1, vOut []T) {
	for i := range vOut {
		vOut[i] = v0[i] + v1[i]
	}
}

// Sub returns v0 - v1.
func Sub[T num.Integer](v0, v1 []T) []T {
	vOut := make([]T, len(v0))
	SubAssign(v0, v1, vOut)
	return vOut
}

// SubAssign computes vOut = v0 - v1.
func SubAssign[T num.Integer](v0, v1, vOut []T) {
	for i := range vOut {
		vOut[i] = v0[i] - v1[i]
	}
}

// NegAssign computes vOut = -v0.
func NegAssign[T num.Integer](v0, vOut []T) {
	for i := range vOut {
		vOut[i] = -v0[i]
	}
}

// ScalarMulAssign computes vOut = c * v0.
func ScalarMulAssign[T num.Integer](v0 []T, c T, vOut []T) {
	for i := range vOut {
		vOut[i] = c * v0[i]
	}
}

// ScalarMulAddAssign computes vOut += c * v0.
func ScalarMulAddAssign[T num.Integer](v0 []T, c T, vOut []T) {
	for i := range vOut {
		vOut[i] += c * v0[i]
	}
}

// ScalarMulSubAssign computes vOut -= c * v0.
func ScalarMulSubAssign[T num.Integer](v0 []T, c T, vOut []T) {
	for i := range vOut {
		vOut[i] -= c * v0[i]
	}
}

// ElementWiseMulAssign computes vOut = v0 * v1, element-wise.
func ElementWiseMulAssign[T num.Integer](v0, v1, vOut []T) {
	for i := range vOut {
		vOut[i] = v0[i] * v1[i]
	}
}

// Dot returns the dot product of v0 and v1.
func Dot[T num.Integer](v0, v1 []T) T {
	var res T
	for i := range v0 {
		res += v0[i] * v1[i]
	}
	return res
}
