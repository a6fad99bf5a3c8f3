package csprng

import (
	"math"

	"github.com/snucp/tfhe-wopbs/math/num"
)

// GaussianSampler samples from the rounded Gaussian distribution
// centered around zero, reduced modulo 2^SizeT[T].
type GaussianSampler[T num.Unsigned] struct {
	baseSampler *UniformSampler[T]
}

// NewGaussianSampler allocates an empty GaussianSampler seeded from the operating system.
func NewGaussianSampler[T num.Unsigned]() *GaussianSampler[T] {
	return &GaussianSampler[T]{
		baseSampler: NewUniformSampler[T](),
	}
}

// NewGaussianSamplerWithSeed allocates an empty GaussianSampler with user supplied seed.
func NewGaussianSamplerWithSeed[T num.Unsigned](seed []byte) *GaussianSampler[T] {
	return &GaussianSampler[T]{
		baseSampler: NewUniformSamplerWithSeed[T](seed),
	}
}

// Fork returns a GaussianSampler on a stream derived from this one.
func (s *GaussianSampler[T]) Fork(index int) *GaussianSampler[T] {
	return &GaussianSampler[T]{baseSampler: s.baseSampler.Fork(index)}
}

// normFloat2 returns two independent standard normal samples using the Box-Muller transform.
func (s *GaussianSampler[T]) normFloat2() (float64, float64) {
	u := s.baseSampler.SampleFloat()
	for u == 0 {
		u = s.baseSampler.SampleFloat()
	}
	v := s.baseSampler.SampleFloat()

	r := math.Sqrt(-2 * math.Log(u))
	sin, cos := math.Sincos(2 * math.Pi * v)
	return r * cos, r * sin
}

// Sample returns a rounded Gaussian sample with standard deviation stdDev,
// given in absolute units of T.
func (s *GaussianSampler[T]) Sample(stdDev float64) T {
	x, _ := s.normFloat2()
	return num.FromFloat64[T](x * stdDev)
}

// SampleSliceAssign samples rounded Gaussian values and writes them to v, in index order.
func (s *GaussianSampler[T]) SampleSliceAssign(stdDev float64, v []T) {
	for i := 0; i < len(v); i += 2 {
		x, y := s.normFloat2()
		v[i] = num.FromFloat64[T](x * stdDev)
		if i+1 < len(v) {
			v[i+1] = num.FromFloat64[T](y * stdDev)
		}
	}
}

// SampleSliceAddAssign samples rounded Gaussian values and adds them to v.
func (s *GaussianSampler[T]) SampleSliceAddAssign(stdDev float64, v []T) {
	for i := 0; i < len(v); i += 2 {
		x, y := s.normFloat2()
		v[i] += num.FromFloat64[T](x * stdDev)
		if i+1 < len(v) {
			v[i+1] += num.FromFloat64[T](y * stdDev)
		}
	}
}
