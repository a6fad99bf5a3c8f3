package csprng_test

import (
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/snucp/tfhe-wopbs/math/csprng"
	"github.com/stretchr/testify/assert"
)

func TestUniformSampler(t *testing.T) {
	seed := []byte("deterministic seed")

	t.Run("Deterministic", func(t *testing.T) {
		s0 := csprng.NewUniformSamplerWithSeed[uint64](seed)
		s1 := csprng.NewUniformSamplerWithSeed[uint64](seed)
		for i := 0; i < 1000; i++ {
			assert.Equal(t, s0.Sample(), s1.Sample())
		}
	})

	t.Run("Fork", func(t *testing.T) {
		s := csprng.NewUniformSamplerWithSeed[uint64](seed)
		f0, f1 := s.Fork(0), s.Fork(1)
		assert.Equal(t, s.Fork(0).Sample(), f0.Sample())
		assert.NotEqual(t, f0.Sample(), f1.Sample())
		assert.Equal(t, csprng.NewUniformSamplerWithSeed[uint64](seed).Sample(), s.Sample())
	})

	t.Run("SampleN", func(t *testing.T) {
		s := csprng.NewUniformSampler[uint32]()
		for i := 0; i < 1000; i++ {
			assert.Less(t, s.SampleN(7), uint32(7))
		}
	})
}

func TestGaussianSampler(t *testing.T) {
	s := csprng.NewGaussianSamplerWithSeed[uint64]([]byte("gaussian"))
	stdDev := float64(1 << 20)

	v := make([]uint64, 1<<14)
	s.SampleSliceAssign(stdDev, v)

	samples := make(stats.Float64Data, len(v))
	for i := range v {
		samples[i] = float64(int64(v[i]))
	}

	mean, _ := samples.Mean()
	sd, _ := samples.StandardDeviation()
	assert.InDelta(t, 0, mean/stdDev, 0.05)
	assert.InDelta(t, 1, sd/stdDev, 0.05)
}

func TestBinarySampler(t *testing.T) {
	s := csprng.NewBinarySampler[uint64]()
	v := make([]uint64, 1024)
	s.SampleSliceAssign(v)

	ones := 0
	for _, x := range v {
		assert.LessOrEqual(t, x, uint64(1))
		ones += int(x)
	}
	assert.InDelta(t, 512, ones, 128)
}
