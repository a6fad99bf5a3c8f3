package noise_test

import (
	"math"
	"testing"

	"github.com/snucp/tfhe-wopbs/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = noise.BootstrapParameters{
	LWEDimension: 769,
	GLWERank:     2,
	PolyDegree:   1024,
	LogQ:         64,

	BootstrapBaseLog: 15,
	BootstrapLevel:   2,
	BootstrapKeyVar:  math.Pow(2.94e-16, 2),

	KeySwitchBaseLog: 6,
	KeySwitchLevel:   2,
	KeySwitchKeyVar:  math.Pow(4.31e-6, 2),
}

func TestMonotonicity(t *testing.T) {
	t.Run("Addition", func(t *testing.T) {
		assert.Greater(t, noise.AdditionVariance(1e-10, 1e-12), 1e-10)
	})

	t.Run("KeySwitchDimension", func(t *testing.T) {
		v0 := noise.KeySwitchVariance(0, 512, params.KeySwitchKeyVar, 6, 2, 64)
		v1 := noise.KeySwitchVariance(0, 1024, params.KeySwitchKeyVar, 6, 2, 64)
		assert.Greater(t, v1, v0)
	})

	t.Run("KeySwitchKeyVariance", func(t *testing.T) {
		v0 := noise.KeySwitchVariance(0, 512, 1e-12, 6, 2, 64)
		v1 := noise.KeySwitchVariance(0, 512, 1e-10, 6, 2, 64)
		assert.Greater(t, v1, v0)
	})

	t.Run("BootstrapKeyVariance", func(t *testing.T) {
		p := params
		prev := 0.0
		for _, keyVar := range []float64{0, 1e-40, 1e-35, 1e-32, 1e-30, 1e-25} {
			p.BootstrapKeyVar = keyVar
			v := noise.PBSVariance(p)
			assert.GreaterOrEqual(t, v, prev, "BootstrapKeyVar=%v", keyVar)
			prev = v
		}
		assert.Greater(t, prev, noise.PBSVariance(params))
	})

	// More levels shrink the rounding error, so only the decomposition term must grow.
	t.Run("ExternalProductLevel", func(t *testing.T) {
		g := params.BootstrapGGSW()
		g.Level = 3
		v0 := noise.ExternalProductVariance(0, params.BootstrapGGSW(), 0)
		v1 := noise.ExternalProductVariance(0, g, 0)
		assert.Greater(t, v1, v0)
	})

	t.Run("BlindRotateDimension", func(t *testing.T) {
		p := params
		p.LWEDimension *= 2
		assert.Greater(t, noise.PBSVariance(p), noise.PBSVariance(params))
	})

	t.Run("VerticalPackingDepth", func(t *testing.T) {
		g := params.BootstrapGGSW()
		assert.Greater(t, noise.VerticalPackingVariance(8, g), noise.VerticalPackingVariance(4, g))
	})

	t.Run("BitExtractionIndex", func(t *testing.T) {
		v0 := noise.BitExtractionVariance(0, 58, 0, params)
		v1 := noise.BitExtractionVariance(0, 58, 3, params)
		assert.Greater(t, v1, v0)
	})
}

func TestFailureProbability(t *testing.T) {
	t.Run("Decreasing", func(t *testing.T) {
		assert.Greater(t, noise.FailureProbability(1e-4, 1.0/16), noise.FailureProbability(1e-5, 1.0/16))
	})

	t.Run("ShallowTail", func(t *testing.T) {
		v := 1e-4
		bound := 0.02
		assert.InDelta(t, math.Log2(noise.FailureProbability(v, bound)), noise.Log2FailureProbability(v, bound), 1e-9)
	})

	t.Run("DeepTail", func(t *testing.T) {
		// x = 100, log2(erfc(100)) is about -14434.
		v := 1.0 / (2 * 100 * 100)
		lg := noise.Log2FailureProbability(v, 1)
		assert.Equal(t, 0.0, noise.FailureProbability(v, 1))
		assert.InDelta(t, -14434.0, lg, 5)
	})

	t.Run("Continuity", func(t *testing.T) {
		bound := 1.0
		v := bound * bound / (2 * 8 * 8)
		assert.InDelta(t, noise.Log2FailureProbability(v*(1+1e-9), bound), noise.Log2FailureProbability(v*(1-1e-9), bound), 1e-2)
	})

	t.Run("MaxVariance", func(t *testing.T) {
		v := noise.MaxVarianceForFailure(1.0/16, -40)
		assert.LessOrEqual(t, noise.Log2FailureProbability(v, 1.0/16), -40.0)
		assert.Greater(t, noise.Log2FailureProbability(v*1.01, 1.0/16), -40.0)
	})
}

func TestMeasure(t *testing.T) {
	stats, err := noise.Measure([]float64{-2, -1, 0, 1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0, stats.Mean, 1e-12)
	assert.InDelta(t, 2, stats.Variance, 1e-12)
	assert.InDelta(t, math.Sqrt(2), stats.StdDev, 1e-12)
	assert.Equal(t, 2.0, stats.Max)

	_, err = noise.Measure(nil)
	assert.Error(t, err)

	torus, err := noise.MeasureTorus([]uint32{1 << 28, 0xf0000000})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/16, torus.Max, 1e-12)
	assert.InDelta(t, 0, torus.Mean, 1e-12)
}
