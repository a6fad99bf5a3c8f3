// Package num implements various utility functions regarding numeric types.
package num

import (
	"math"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Integer represents the integer types.
type Integer = constraints.Integer

// Unsigned represents the unsigned integer types.
type Unsigned = constraints.Unsigned

// Torus represents the unsigned integer types used as a discretized torus.
type Torus interface {
	~uint32 | ~uint64
}

// Real represents the integer and floating point types.
type Real interface {
	Integer | constraints.Float
}

// SizeT returns the bit size of T.
func SizeT[T Integer]() int {
	var z T
	switch any(z).(type) {
	case int8, uint8:
		return 8
	case int16, uint16:
		return 16
	case int32, uint32:
		return 32
	case int64, uint64:
		return 64
	}
	return bits.UintSize
}

// MaxT returns the maximum value of the unsigned type T.
func MaxT[T Unsigned]() T {
	return ^T(0)
}

// IsPowerOfTwo returns whether x is a power of two.
func IsPowerOfTwo[T Integer](x T) bool {
	return x > 0 && (x&(x-1)) == 0
}

// Log2 returns floor(log2(x)).
// Panics if x <= 0.
func Log2[T Integer](x T) int {
	if x <= 0 {
		panic("Log2 of non-positive number")
	}
	return bits.Len64(uint64(x)) - 1
}

// DivRound returns round(x/y).
func DivRound[T Integer](x, y T) T {
	q := x / y
	r := x % y
	if r < 0 {
		r = -r
	}
	if 2*r >= abs(y) {
		if (x < 0) != (y < 0) {
			return q - 1
		}
		return q + 1
	}
	return q
}

// DivRoundBits returns round(x/2^bits).
func DivRoundBits[T Unsigned](x T, bits int) T {
	if bits == 0 {
		return x
	}
	return (x >> bits) + ((x >> (bits - 1)) & 1)
}

// Abs returns the absolute value of x.
func Abs[T Real](x T) T {
	return abs(x)
}

func abs[T Real](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of x and y.
func Min[T Real](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the larger of x and y.
func Max[T Real](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// ToSigned interprets x as a two's complement integer of the same width
// and returns it as float64.
func ToSigned[T Unsigned](x T) float64 {
	switch SizeT[T]() {
	case 8:
		return float64(int8(x))
	case 16:
		return float64(int16(x))
	case 32:
		return float64(int32(x))
	}
	return float64(int64(x))
}

// FromFloat64 rounds f to the nearest integer and reduces it modulo 2^SizeT[T].
// f may be arbitrarily large as long as it is finite.
func FromFloat64[T Unsigned](f float64) T {
	q := math.Exp2(float64(SizeT[T]()))
	f = math.Round(f)
	f -= math.Round(f/q) * q
	return T(int64(f))
}
