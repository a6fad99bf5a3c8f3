package csprng

import (
	"github.com/snucp/tfhe-wopbs/math/num"
)

// BinarySampler samples values from the uniform binary distribution.
type BinarySampler[T num.Integer] struct {
	baseSampler *UniformSampler[T]
}

// NewBinarySampler allocates an empty BinarySampler seeded from the operating system.
func NewBinarySampler[T num.Integer]() *BinarySampler[T] {
	return &BinarySampler[T]{
		baseSampler: NewUniformSampler[T](),
	}
}

// NewBinarySamplerWithSeed allocates an empty BinarySampler with user supplied seed.
func NewBinarySamplerWithSeed[T num.Integer](seed []byte) *BinarySampler[T] {
	return &BinarySampler[T]{
		baseSampler: NewUniformSamplerWithSeed[T](seed),
	}
}

// Sample uniformly samples a random binary integer.
func (s *BinarySampler[T]) Sample() T {
	return T(s.baseSampler.next(1) & 1)
}

// SampleSliceAssign samples uniform binary values to v.
func (s *BinarySampler[T]) SampleSliceAssign(v []T) {
	for i := 0; i < len(v); i += 8 {
		r := s.baseSampler.next(1)
		for j := i; j < i+8 && j < len(v); j++ {
			v[j] = T(r & 1)
			r >>= 1
		}
	}
}
