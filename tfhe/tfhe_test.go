package tfhe_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/snucp/tfhe-wopbs/math/csprng"
	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/poly"
	"github.com/snucp/tfhe-wopbs/noise"
	"github.com/snucp/tfhe-wopbs/tfhe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testParams = tfhe.ParamsTestUint64.Compile()
	enc        = tfhe.NewEncryptorWithSeed(testParams, []byte("tfhe test seed"))
	eval       = tfhe.NewEvaluator(testParams, enc.GenEvaluationKeyParallel())

	paramsList = []tfhe.ParametersLiteral[uint64]{
		tfhe.ParamsMessage2,
		tfhe.ParamsWoPBS,
		tfhe.ParamsTestUint64,
	}

	// ParamsWoPBS is not listed, since its messages are bit extracted
	// rather than decoded with MessageModulus.
	failureParamsList = []tfhe.ParametersLiteral[uint64]{
		tfhe.ParamsMessage2,
		tfhe.ParamsTestUint64,
	}
)

func TestParams(t *testing.T) {
	for _, params := range paramsList {
		t.Run(fmt.Sprintf("Compile/N=%v", params.PolyDegree), func(t *testing.T) {
			assert.NotPanics(t, func() { params.Compile() })
		})
	}

	t.Run("Compile/Uint32", func(t *testing.T) {
		assert.NotPanics(t, func() { tfhe.ParamsUint32Message2.Compile() })
		assert.NotPanics(t, func() { tfhe.ParamsTestUint32.Compile() })
	})

	for _, params := range failureParamsList {
		t.Run(fmt.Sprintf("FailureProbability/N=%v", params.PolyDegree), func(t *testing.T) {
			p := params.Compile()
			lg := noise.Log2FailureProbability(p.EstimateBootstrapVariance(), 1/(4*float64(p.MessageModulus())))
			assert.LessOrEqual(t, lg, -40.0)
		})
	}

	t.Run("InvalidParameters", func(t *testing.T) {
		for _, params := range []tfhe.ParametersLiteral[uint64]{
			tfhe.ParamsTestUint64.WithPolyDegree(500),
			tfhe.ParamsTestUint64.WithLWEDimension(0),
			tfhe.ParamsTestUint64.WithLWEDimension(1024),
			tfhe.ParamsTestUint64.WithMessageModulus(3),
			tfhe.ParamsTestUint64.WithBootstrapOrder(7),
		} {
			_, err := params.CompileChecked()
			assert.ErrorIs(t, err, tfhe.ErrInvalidParameters)
		}
		assert.Panics(t, func() { tfhe.ParamsTestUint64.WithGLWERank(0).Compile() })
	})

	t.Run("InvalidGadget", func(t *testing.T) {
		for _, g := range []tfhe.GadgetParametersLiteral[uint64]{
			{Base: 3, Level: 2},
			{Base: 1 << 4, Level: 0},
			{Base: 1 << 16, Level: 4},
		} {
			_, err := g.CompileChecked()
			assert.ErrorIs(t, err, tfhe.ErrInvalidGadget)
		}

		params := tfhe.ParamsTestUint64
		params.KeySwitchParameters = params.KeySwitchParameters.WithBase(1)
		_, err := params.CompileChecked()
		assert.ErrorIs(t, err, tfhe.ErrInvalidGadget)
	})

	t.Run("Literal", func(t *testing.T) {
		assert.Equal(t, tfhe.ParamsTestUint64, testParams.Literal())
	})
}

func TestDecomposer(t *testing.T) {
	sampler := csprng.NewUniformSampler[uint64]()
	gadgets := []tfhe.GadgetParametersLiteral[uint64]{
		{Base: 1 << 4, Level: 4},
		{Base: 1 << 15, Level: 2},
		{Base: 1 << 10, Level: 6},
		{Base: 1 << 1, Level: 63},
	}

	for _, g := range gadgets {
		gadget := g.Compile()
		t.Run(fmt.Sprintf("Base=2^%v/Level=%v", gadget.BaseLog(), gadget.Level()), func(t *testing.T) {
			for i := 0; i < 1024; i++ {
				x := sampler.Sample()
				d := gadget.Decompose(x)

				for _, digit := range d {
					signed := num.ToSigned(digit)
					assert.GreaterOrEqual(t, signed, -float64(gadget.Base()/2))
					assert.Less(t, signed, float64(gadget.Base()/2))
				}

				closest := gadget.ClosestRepresentable(x)
				assert.Equal(t, closest, gadget.Recompose(d))
				assert.Equal(t, closest, gadget.ClosestRepresentable(closest))
				assert.Equal(t, closest, gadget.Recompose(gadget.Decompose(closest)))
			}
		})
	}

	t.Run("Edge", func(t *testing.T) {
		gadget := gadgets[0].Compile()
		for _, x := range []uint64{0, math.MaxUint64, 1 << 63, 1<<47 - 1, 1 << 47} {
			assert.Equal(t, gadget.ClosestRepresentable(x), gadget.Recompose(gadget.Decompose(x)))
		}
	})

	t.Run("Poly", func(t *testing.T) {
		gadget := gadgets[1].Compile()
		dec := tfhe.NewDecomposer[uint64](testParams.PolyDegree(), gadget.Level())
		p := enc.EncryptGLWE([]int{1, 2, 3}).Value[1]
		dp := dec.DecomposePoly(p, gadget)
		for j := range p.Coeffs {
			d := make([]uint64, gadget.Level())
			for l := range d {
				d[l] = dp[l].Coeffs[j]
			}
			assert.Equal(t, gadget.Decompose(p.Coeffs[j]), d)
		}
	})
}

func TestEncryptor(t *testing.T) {
	messages := []int{1, 2, 3}

	t.Run("LWE", func(t *testing.T) {
		for m := 0; m < int(testParams.MessageModulus()); m++ {
			assert.Equal(t, m, enc.DecryptLWE(enc.EncryptLWE(m)))
		}
		assert.Equal(t, 3, enc.DecryptLWE(enc.EncryptLWE(-1)))
	})

	t.Run("LWEPhaseMismatch", func(t *testing.T) {
		ct := tfhe.NewLWECiphertextCustom[uint64](10)
		_, err := enc.DecryptLWEPhase(ct, enc.SecretKey.LWEKey)

		var mismatch *tfhe.MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.ErrorIs(t, err, tfhe.ErrLWEDimensionMismatch)
		assert.Equal(t, testParams.LWEDimension(), mismatch.Want)
		assert.Equal(t, 10, mismatch.Got)
	})

	t.Run("GLWE", func(t *testing.T) {
		assert.Equal(t, messages, enc.DecryptGLWE(enc.EncryptGLWE(messages))[:len(messages)])
	})

	t.Run("GLWEList", func(t *testing.T) {
		pts := []tfhe.GLWEPlaintext[uint64]{enc.EncodeGLWE([]int{1}), enc.EncodeGLWE([]int{2})}
		decrypted := enc.DecryptGLWEList(enc.EncryptGLWEList(pts))
		assert.Equal(t, 1, enc.DecodeGLWE(decrypted[0])[0])
		assert.Equal(t, 2, enc.DecodeGLWE(decrypted[1])[0])
	})

	t.Run("GGSW", func(t *testing.T) {
		gadget := testParams.BlindRotateParameters()
		for _, m := range []int{0, 1, 5} {
			assert.Equal(t, m, enc.DecryptGGSW(enc.EncryptGGSW(m, gadget)))
		}
	})

	t.Run("Seed", func(t *testing.T) {
		enc0 := tfhe.NewEncryptorWithSeed(testParams, []byte("seed"))
		enc1 := tfhe.NewEncryptorWithSeed(testParams, []byte("seed"))
		assert.Equal(t, enc0.SecretKey.LWELargeKey.Value, enc1.SecretKey.LWELargeKey.Value)
		assert.True(t, enc0.EncryptLWE(1).Equals(enc1.EncryptLWE(1)))
	})

	t.Run("SeedParallel", func(t *testing.T) {
		enc0 := tfhe.NewEncryptorWithSeed(testParams, []byte("seed"))
		enc1 := tfhe.NewEncryptorWithSeed(testParams, []byte("seed"))
		evk0 := enc0.GenEvaluationKeyParallel()
		evk1 := enc1.GenEvaluationKeyParallel()
		assert.True(t, evk0.BlindRotateKey.Equals(evk1.BlindRotateKey))
		assert.True(t, evk0.Equals(evk1))

		// The stream advances, so a second key is fresh.
		assert.False(t, evk0.BlindRotateKey.Equals(enc0.GenFourierBootstrapKeyParallel()))

		copies0, copies1 := enc0.ForkedCopies(2), enc1.ForkedCopies(2)
		assert.True(t, copies0[1].EncryptLWE(1).Equals(copies1[1].EncryptLWE(1)))
		assert.False(t, copies0[0].EncryptLWE(1).Equals(copies0[1].EncryptLWE(1)))
	})

	t.Run("SecretKeyLayout", func(t *testing.T) {
		sk := enc.SecretKey
		assert.Equal(t, sk.LWELargeKey.Value[:testParams.LWEDimension()], sk.LWEKey.Value)
		assert.Equal(t, sk.LWELargeKey.Value[:testParams.PolyDegree()], sk.GLWEKey.Value[0].Coeffs)
	})
}

func TestEvaluator(t *testing.T) {
	messages := []int{1, 2, 3}

	t.Run("AddLWE", func(t *testing.T) {
		ct := eval.AddLWE(enc.EncryptLWE(1), enc.EncryptLWE(2))
		assert.Equal(t, 3, enc.DecryptLWE(ct))
		assert.Equal(t, 1, enc.DecryptLWE(eval.SubLWE(ct, enc.EncryptLWE(2))))
		assert.Equal(t, 2, enc.DecryptLWE(eval.ScalarMulLWE(enc.EncryptLWE(1), 2)))
		assert.Equal(t, 3, enc.DecryptLWE(eval.NegLWE(enc.EncryptLWE(1))))
	})

	t.Run("SampleExtract", func(t *testing.T) {
		ct := enc.EncryptGLWE(messages)
		for i, m := range messages {
			assert.Equal(t, m, enc.DecryptLWE(eval.SampleExtract(ct, i)))
		}
	})

	t.Run("MonomialMulGLWE", func(t *testing.T) {
		ct := enc.EncryptGLWE(messages)
		eval.MonomialMulGLWEInPlace(ct, 2)
		assert.Equal(t, []int{0, 0, 1, 2, 3}, enc.DecryptGLWE(ct)[:5])
	})

	t.Run("ExternalProduct", func(t *testing.T) {
		gadget := testParams.BlindRotateParameters()
		ct := enc.EncryptGLWE(messages)
		for _, m := range []int{0, 1} {
			ctGGSW := enc.EncryptFourierGGSW(m, gadget)
			ctOut := tfhe.NewGLWECiphertext(testParams)
			require.NoError(t, eval.ExternalProductAssign(ctGGSW, ct, ctOut))
			for i, msg := range messages {
				assert.Equal(t, m*msg, enc.DecryptGLWE(ctOut)[i])
			}
		}
	})

	t.Run("ExternalProductExact", func(t *testing.T) {
		gadget := testParams.BlindRotateParameters()
		ct := enc.EncryptGLWE(messages)
		ctGGSW := enc.EncryptGGSW(1, gadget)

		ctGGSWFourier := tfhe.NewFourierGGSWCiphertext(testParams, gadget)
		tfhe.ToFourierGGSWCiphertextAssign(enc.PolyEvaluator, ctGGSW, ctGGSWFourier)

		ctExact := tfhe.NewGLWECiphertext(testParams)
		require.NoError(t, eval.ExternalProductExactAssign(ctGGSW, ct, ctExact))
		ctFourier := eval.ExternalProduct(ctGGSWFourier, ct)

		assert.Equal(t, enc.DecryptGLWE(ctExact), enc.DecryptGLWE(ctFourier))
		assert.Equal(t, messages, enc.DecryptGLWE(ctExact)[:len(messages)])
	})

	t.Run("ExternalProductMismatch", func(t *testing.T) {
		gadget := testParams.BlindRotateParameters()
		ctGGSW := enc.EncryptFourierGGSW(1, gadget)
		ct := tfhe.NewGLWECiphertextCustom[uint64](testParams.GLWERank(), 2*testParams.PolyDegree())
		err := eval.ExternalProductAssign(ctGGSW, ct, tfhe.NewGLWECiphertext(testParams))
		assert.ErrorIs(t, err, tfhe.ErrPolyDegreeMismatch)

		ct = tfhe.NewGLWECiphertextCustom[uint64](testParams.GLWERank()+1, testParams.PolyDegree())
		err = eval.ExternalProductAssign(ctGGSW, ct, tfhe.NewGLWECiphertext(testParams))
		assert.ErrorIs(t, err, tfhe.ErrGLWERankMismatch)
	})

	t.Run("ExternalProductExactMismatch", func(t *testing.T) {
		gadget := testParams.BlindRotateParameters()
		ct := enc.EncryptGLWE(messages)
		ctOut := tfhe.NewGLWECiphertext(testParams)

		tests := []struct {
			name   string
			ctGGSW tfhe.GGSWCiphertext[uint64]
			err    error
		}{
			{"Rank", tfhe.NewGGSWCiphertextCustom(testParams.GLWERank()+1, testParams.PolyDegree(), gadget), tfhe.ErrGLWERankMismatch},
			{"Degree", tfhe.NewGGSWCiphertextCustom(testParams.GLWERank(), 2*testParams.PolyDegree(), gadget), tfhe.ErrPolyDegreeMismatch},
			{"Level", func() tfhe.GGSWCiphertext[uint64] {
				ctGGSW := enc.EncryptGGSW(1, gadget)
				ctGGSW.Value[1].Value = ctGGSW.Value[1].Value[:gadget.Level()-1]
				return ctGGSW
			}(), tfhe.ErrGadgetMismatch},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				assert.ErrorIs(t, eval.ExternalProductExactAssign(tc.ctGGSW, ct, ctOut), tc.err)
			})
		}
	})

	t.Run("CMux", func(t *testing.T) {
		gadget := testParams.BlindRotateParameters()
		ct0 := enc.EncryptGLWE([]int{1})
		ct1 := enc.EncryptGLWE([]int{2})
		for b, want := range []int{1, 2} {
			ctOut := tfhe.NewGLWECiphertext(testParams)
			require.NoError(t, eval.CMuxAssign(enc.EncryptFourierGGSW(b, gadget), ct0, ct1, ctOut))
			assert.Equal(t, want, enc.DecryptGLWE(ctOut)[0])
		}
	})

	t.Run("KeySwitchForBootstrap", func(t *testing.T) {
		for _, m := range messages {
			ct := eval.KeySwitchForBootstrap(enc.EncryptLWE(m))
			assert.Equal(t, testParams.LWEDimension(), ct.Dimension())
			pt := enc.DecryptLWEPhaseUnsafe(ct, enc.SecretKey.LWEKey)
			assert.Equal(t, m, enc.DecodeLWE(tfhe.LWEPlaintext[uint64]{Value: pt}))
		}
	})

	t.Run("KeySwitchLWE", func(t *testing.T) {
		ksk := enc.GenLWEKeySwitchKey(enc.SecretKey.LWELargeKey, enc.SecretKey.LWEKey, testParams.KeySwitchParameters())
		ctOut := tfhe.NewLWECiphertextCustom[uint64](testParams.LWEDimension())
		require.NoError(t, eval.KeySwitchLWEAssign(ksk, enc.EncryptLWE(2), ctOut))
		pt := enc.DecryptLWEPhaseUnsafe(ctOut, enc.SecretKey.LWEKey)
		assert.Equal(t, 2, enc.DecodeLWE(tfhe.LWEPlaintext[uint64]{Value: pt}))

		err := eval.KeySwitchLWEAssign(ksk, ctOut, ctOut)
		assert.ErrorIs(t, err, tfhe.ErrLWEDimensionMismatch)
	})

	t.Run("PackingKeySwitch", func(t *testing.T) {
		pksk := enc.GenGLWEPackingKeySwitchKey(enc.SecretKey.LWELargeKey, tfhe.GadgetParametersLiteral[uint64]{Base: 1 << 10, Level: 4}.Compile())
		cts := make([]tfhe.LWECiphertext[uint64], len(messages))
		for i, m := range messages {
			cts[i] = enc.EncryptLWE(m)
		}

		ctOut := tfhe.NewGLWECiphertext(testParams)
		require.NoError(t, eval.PackingKeySwitchAssign(pksk, cts, ctOut))
		assert.Equal(t, messages, enc.DecryptGLWE(ctOut)[:len(messages)])
	})

	t.Run("PrivateFunctionalKeySwitch", func(t *testing.T) {
		gadget := tfhe.GadgetParametersLiteral[uint64]{Base: 1 << 15, Level: 3}.Compile()

		one := tfhe.NewGLWEPlaintext(testParams).Value
		one.Coeffs[0] = 1
		identity := enc.GenPrivateFunctionalKeySwitchKey(enc.SecretKey.LWELargeKey, func(x uint64) uint64 { return x }, one, gadget)

		double := tfhe.NewGLWEPlaintext(testParams).Value
		double.Coeffs[1] = 2
		shifted := enc.GenPrivateFunctionalKeySwitchKey(enc.SecretKey.LWELargeKey, func(x uint64) uint64 { return -x }, double, gadget)

		ctOut := tfhe.NewGLWECiphertext(testParams)
		require.NoError(t, eval.PrivateFunctionalKeySwitchAssign(identity, enc.EncryptLWE(1), ctOut))
		assert.Equal(t, []int{1, 0}, enc.DecryptGLWE(ctOut)[:2])

		// -(1) * 2X = -2X, which is 2 modulo 4.
		require.NoError(t, eval.PrivateFunctionalKeySwitchAssign(shifted, enc.EncryptLWE(1), ctOut))
		assert.Equal(t, []int{0, 2}, enc.DecryptGLWE(ctOut)[:2])

		cts := []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(3), enc.EncryptLWE(1)}
		require.NoError(t, eval.PrivateFunctionalPackingKeySwitchAssign(identity, cts, ctOut))
		assert.Equal(t, []int{3, 1}, enc.DecryptGLWE(ctOut)[:2])
	})
}

func TestBootstrap(t *testing.T) {
	t.Run("Identity", func(t *testing.T) {
		for m := 0; m < int(testParams.MessageModulus()); m++ {
			ct := eval.BootstrapFunc(enc.EncryptLWE(m), func(x int) int { return x })
			assert.Equal(t, m, enc.DecryptLWE(ct))
		}
	})

	t.Run("Function", func(t *testing.T) {
		f := func(x int) int { return 2*x + 1 }
		lut := eval.GenLookUpTable(f)
		for m := 0; m < int(testParams.MessageModulus()); m++ {
			ct := eval.BootstrapLUT(enc.EncryptLWE(m), lut)
			assert.Equal(t, f(m)%int(testParams.MessageModulus()), enc.DecryptLWE(ct))
		}
	})

	t.Run("NoiseIndependence", func(t *testing.T) {
		const samples = 32
		lut := eval.GenLookUpTable(func(x int) int { return x })

		measure := func(noisy bool) float64 {
			errs := make([]uint64, samples)
			for i := range errs {
				m := i % int(testParams.MessageModulus())
				ct := enc.EncryptLWE(m)
				if noisy {
					for j := 0; j < 16; j++ {
						eval.AddLWEAssign(ct, enc.EncryptLWE(0), ct)
					}
				}
				ctOut := eval.BootstrapLUT(ct, lut)
				errs[i] = enc.DecryptLWEPlaintext(ctOut).Value - enc.EncodeLWE(m).Value
			}
			stats, err := noise.MeasureTorus(errs)
			require.NoError(t, err)
			return stats.Variance
		}

		ratio := measure(true) / measure(false)
		assert.GreaterOrEqual(t, ratio, 0.25)
		assert.LessOrEqual(t, ratio, 4.0)
	})

	t.Run("BatchEqualsLowLatency", func(t *testing.T) {
		lut := eval.GenLookUpTable(func(x int) int { return 3 - x })

		cts := make([]tfhe.LWECiphertext[uint64], 3)
		ctOut := make([]tfhe.GLWECiphertext[uint64], len(cts))
		for i := range cts {
			cts[i] = eval.KeySwitchForBootstrap(enc.EncryptLWE(i))
			ctOut[i] = tfhe.NewGLWECiphertext(testParams)
		}
		require.NoError(t, eval.BlindRotateBatchAssign(cts, lut, ctOut))

		for i := range cts {
			ctSingle := tfhe.NewGLWECiphertext(testParams)
			require.NoError(t, eval.BlindRotateAssign(cts[i], lut, ctSingle))
			assert.True(t, ctSingle.Equals(ctOut[i]))
			assert.Equal(t, 3-i, enc.DecryptLWE(ctOut[i].ToLWECiphertext(0)))
		}
	})

	t.Run("BlindRotateMismatch", func(t *testing.T) {
		lut := eval.GenLookUpTable(func(x int) int { return x })
		ctOut := tfhe.NewGLWECiphertext(testParams)

		err := eval.BlindRotateAssign(enc.EncryptLWE(0), lut, ctOut)
		assert.ErrorIs(t, err, tfhe.ErrLWEDimensionMismatch)

		ct := eval.KeySwitchForBootstrap(enc.EncryptLWE(0))
		err = eval.BlindRotateAssign(ct, tfhe.LookUpTable[uint64]{Value: poly.NewPoly[uint64](2 * testParams.PolyDegree())}, ctOut)
		assert.ErrorIs(t, err, tfhe.ErrPolyDegreeMismatch)

		err = eval.BlindRotateBatchAssign([]tfhe.LWECiphertext[uint64]{ct}, lut, nil)
		assert.True(t, errors.Is(err, tfhe.ErrBatchSizeMismatch))
	})

	t.Run("ModSwitch", func(t *testing.T) {
		N := testParams.PolyDegree()
		assert.Equal(t, 0, eval.ModSwitch(0))
		assert.Equal(t, N, eval.ModSwitch(1<<63))
		assert.Equal(t, 1, eval.ModSwitch(1<<(63-testParams.LogPolyDegree())))
		assert.Equal(t, 0, eval.ModSwitch(math.MaxUint64))
	})

	t.Run("ConstantLUT", func(t *testing.T) {
		lut := tfhe.NewLookUpTable(testParams)
		eval.GenLookUpTableConstantAssign(1<<60, lut)

		ctOut := tfhe.NewLWECiphertextCustom[uint64](testParams.GLWEDimension())
		eval.BootstrapLUTToLargeKeyAssign(eval.KeySwitchForBootstrap(enc.EncryptLWEPlaintext(tfhe.LWEPlaintext[uint64]{Value: 1 << 61})), lut, ctOut)
		assert.InDelta(t, float64(1<<60), num.ToSigned(enc.DecryptLWEPlaintext(ctOut).Value), 1<<50)

		eval.BootstrapLUTToLargeKeyAssign(eval.KeySwitchForBootstrap(enc.EncryptLWEPlaintext(tfhe.LWEPlaintext[uint64]{Value: 3 << 62})), lut, ctOut)
		assert.InDelta(t, -float64(1<<60), num.ToSigned(enc.DecryptLWEPlaintext(ctOut).Value), 1<<50)
	})
}

func TestUint32(t *testing.T) {
	params := tfhe.ParamsTestUint32.Compile()
	enc := tfhe.NewEncryptor(params)
	eval := tfhe.NewEvaluator(params, enc.GenEvaluationKeyParallel())

	for m := 0; m < int(params.MessageModulus()); m++ {
		ct := enc.EncryptLWE(m)
		assert.Equal(t, m, enc.DecryptLWE(ct))
		assert.Equal(t, (m+1)%int(params.MessageModulus()), enc.DecryptLWE(eval.BootstrapFunc(ct, func(x int) int { return x + 1 })))
	}
}
