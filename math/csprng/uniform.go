// Package csprng implements cryptographically secure samplers
// used for key generation and encryption.
package csprng

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// SeedSize is the size of the seed in bytes.
const SeedSize = 32

const bufSize = 8192

// UniformSampler samples values from uniform distribution.
// This uses blake2b XOF as a underlying prng.
//
// UniformSampler is a stateful stream with a position cursor,
// and is not safe for concurrent use.
// Use [*UniformSampler.Fork] to derive independent streams.
type UniformSampler[T num.Integer] struct {
	seed []byte
	prng blake2b.XOF

	buf [bufSize]byte
	ptr int
}

// NewUniformSampler allocates an empty UniformSampler,
// seeded from the operating system randomness.
//
// Panics when reading the seed fails.
func NewUniformSampler[T num.Integer]() *UniformSampler[T] {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		panic(err)
	}
	return NewUniformSamplerWithSeed[T](seed)
}

// NewUniformSamplerWithSeed allocates an empty UniformSampler with user supplied seed.
// Seeds longer than 64 bytes are compressed.
func NewUniformSamplerWithSeed[T num.Integer](seed []byte) *UniformSampler[T] {
	key := seed
	if len(key) > 64 {
		sum := blake2b.Sum256(seed)
		key = sum[:]
	}

	prng, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		panic(err)
	}

	return &UniformSampler[T]{
		seed: append([]byte(nil), seed...),
		prng: prng,
		ptr:  bufSize,
	}
}

// Seed returns a copy of the seed of this sampler.
// A sampler constructed with the same seed reproduces the same stream.
func (s *UniformSampler[T]) Seed() []byte {
	return append([]byte(nil), s.seed...)
}

// Fork returns a new sampler whose stream is derived from this sampler's seed
// and the given index, independent from this sampler and from other forks.
// Fork does not advance the stream of s.
func (s *UniformSampler[T]) Fork(index int) *UniformSampler[T] {
	h := blake3.New()
	h.Write([]byte("csprng/fork"))
	h.Write(s.seed)
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(index))
	h.Write(idx[:])
	return NewUniformSamplerWithSeed[T](h.Sum(nil)[:SeedSize])
}

// Read implements the [io.Reader] interface.
func (s *UniformSampler[T]) Read(b []byte) (int, error) {
	for i := range b {
		if s.ptr == bufSize {
			s.refill()
		}
		b[i] = s.buf[s.ptr]
		s.ptr++
	}
	return len(b), nil
}

func (s *UniformSampler[T]) refill() {
	if _, err := s.prng.Read(s.buf[:]); err != nil {
		panic(err)
	}
	s.ptr = 0
}

// Sample uniformly samples a random integer of type T.
func (s *UniformSampler[T]) Sample() T {
	var res T
	switch num.SizeT[T]() {
	case 8:
		res = T(s.next(1))
	case 16:
		res = T(s.next(2))
	case 32:
		res = T(s.next(4))
	default:
		res = T(s.next(8))
	}
	return res
}

// next returns the next n bytes of the stream as a little endian integer.
func (s *UniformSampler[T]) next(n int) uint64 {
	if s.ptr+n > bufSize {
		s.refill()
	}
	var res uint64
	for i := 0; i < n; i++ {
		res |= uint64(s.buf[s.ptr+i]) << (8 * i)
	}
	s.ptr += n
	return res
}

// SampleN uniformly samples a random integer of type T in [0, N).
func (s *UniformSampler[T]) SampleN(N T) T {
	bound := num.MaxT[uint64]() - (num.MaxT[uint64]() % uint64(N))
	for {
		x := s.next(8)
		if x < bound {
			return T(x % uint64(N))
		}
	}
}

// SampleFloat samples a float64 uniformly from [0, 1).
func (s *UniformSampler[T]) SampleFloat() float64 {
	return float64(s.next(8)>>11) / (1 << 53)
}

// SampleSliceAssign samples uniform values to v, in index order.
func (s *UniformSampler[T]) SampleSliceAssign(v []T) {
	for i := range v {
		v[i] = s.Sample()
	}
}
