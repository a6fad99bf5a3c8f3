package wopbs_test

import (
	"fmt"
	"testing"

	"github.com/snucp/tfhe-wopbs/tfhe"
	"github.com/snucp/tfhe-wopbs/wopbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testParams = wopbs.ParamsTestUint64.Compile()
	baseParams = testParams.BaseParameters()
	enc        = wopbs.NewEncryptorWithSeed(testParams, []byte("wopbs test seed"))
	eval       = wopbs.NewEvaluator(testParams, enc.GenEvaluationKeyParallel())
)

// encryptBit encrypts b at the most significant bit under the LWE key.
func encryptBit(b int) tfhe.LWECiphertext[uint64] {
	ct := tfhe.NewLWECiphertextCustom[uint64](baseParams.LWEDimension())
	ct.Value[0] = uint64(b) << 63
	enc.BaseEncryptor.EncryptLWEBodyAssign(ct, enc.BaseEncryptor.SecretKey.LWEKey, baseParams.LWEStdDevQ())
	return ct
}

// decryptBit decrypts a bit at the most significant bit under the LWE key.
func decryptBit(ct tfhe.LWECiphertext[uint64]) int {
	phase := enc.BaseEncryptor.DecryptLWEPhaseUnsafe(ct, enc.BaseEncryptor.SecretKey.LWEKey)
	return tfhe.DecodeLWECustom(tfhe.LWEPlaintext[uint64]{Value: phase}, 2, 1<<63)
}

// encryptSelectors encrypts the bits of x in GGSW ciphertexts, most significant bit first.
func encryptSelectors(x, r int) []tfhe.FourierGGSWCiphertext[uint64] {
	cts := make([]tfhe.FourierGGSWCiphertext[uint64], r)
	for i := range cts {
		cts[i] = enc.BaseEncryptor.EncryptFourierGGSW((x>>(r-1-i))&1, testParams.CircuitBootstrapParameters())
	}
	return cts
}

func TestParams(t *testing.T) {
	t.Run("Compile", func(t *testing.T) {
		for _, p := range []wopbs.ParametersLiteral[uint64]{wopbs.ParamsWoPBS, wopbs.ParamsTestUint64} {
			params, err := p.CompileChecked()
			require.NoError(t, err)
			assert.Equal(t, 4, params.MessageBits())
			assert.Equal(t, 64-4-1, params.DeltaLog())
			assert.Equal(t, p, params.Literal())
		}
	})

	t.Run("FailureProbability", func(t *testing.T) {
		for _, p := range []wopbs.ParametersLiteral[uint64]{wopbs.ParamsWoPBS, wopbs.ParamsTestUint64} {
			assert.LessOrEqual(t, p.Compile().EstimateLog2FailureProbability(), -40.0)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := wopbs.ParamsTestUint64.
			WithBaseParametersLiteral(wopbs.ParamsTestUint64.BaseParametersLiteral.WithBootstrapOrder(tfhe.OrderBlindRotateKeySwitch)).
			CompileChecked()
		assert.ErrorIs(t, err, tfhe.ErrInvalidParameters)

		_, err = wopbs.ParamsTestUint64.
			WithCircuitBootstrapParameters(tfhe.GadgetParametersLiteral[uint64]{Base: 1 << 16, Level: 4}).
			CompileChecked()
		assert.ErrorIs(t, err, tfhe.ErrInvalidGadget)

		_, err = wopbs.ParamsTestUint64.
			WithPrivateKeySwitchParameters(tfhe.GadgetParametersLiteral[uint64]{Base: 3, Level: 2}).
			CompileChecked()
		assert.ErrorIs(t, err, tfhe.ErrInvalidGadget)
	})
}

func TestExtractBits(t *testing.T) {
	deltaLog := 64 - 6 - 1

	tests := []struct {
		message int
		bits    []int
	}{
		{0b111101, []int{1, 0, 1, 1, 1, 1}},
		{0b000000, []int{0, 0, 0, 0, 0, 0}},
		{0b100010, []int{0, 1, 0, 0, 0, 1}},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("Message=%06b", tc.message), func(t *testing.T) {
			for trial := 0; trial < 3; trial++ {
				ct := enc.BaseEncryptor.EncryptLWEPlaintext(tfhe.LWEPlaintext[uint64]{Value: uint64(tc.message) << deltaLog})
				ctBits := eval.ExtractBits(ct, deltaLog, 6)

				bits := make([]int, len(ctBits))
				for i := range ctBits {
					bits[i] = decryptBit(ctBits[i])
				}
				assert.Equal(t, tc.bits, bits)
			}
		})
	}

	t.Run("Errors", func(t *testing.T) {
		ct := enc.EncryptLWE(1)
		ctOut := eval.ExtractBits(ct, testParams.DeltaLog(), 4)

		assert.ErrorIs(t, eval.ExtractBitsAssign(ct, 0, 4, ctOut), tfhe.ErrInvalidParameters)
		assert.ErrorIs(t, eval.ExtractBitsAssign(ct, 62, 4, ctOut), tfhe.ErrInvalidParameters)
		assert.ErrorIs(t, eval.ExtractBitsAssign(ct, testParams.DeltaLog(), 3, ctOut), tfhe.ErrBatchSizeMismatch)
		assert.ErrorIs(t, eval.ExtractBitsAssign(ctOut[0], testParams.DeltaLog(), 4, ctOut), tfhe.ErrLWEDimensionMismatch)

		var mismatch *tfhe.MismatchError
		require.ErrorAs(t, eval.ExtractBitsAssign(ct, testParams.DeltaLog(), 4, []tfhe.LWECiphertext[uint64]{ct, ct, ct, ct}), &mismatch)
		assert.Equal(t, baseParams.LWEDimension(), mismatch.Want)
		assert.Equal(t, baseParams.GLWEDimension(), mismatch.Got)
	})
}

func TestCircuitBootstrap(t *testing.T) {
	for _, b := range []int{0, 1} {
		ctGGSW := eval.CircuitBootstrap(encryptBit(b))

		t.Run(fmt.Sprintf("ExternalProduct/Bit=%v", b), func(t *testing.T) {
			ct := enc.BaseEncryptor.EncryptGLWE([]int{3})
			ctOut := eval.BaseEvaluator.ExternalProduct(ctGGSW, ct)
			assert.Equal(t, 3*b, enc.BaseEncryptor.DecryptGLWE(ctOut)[0])
		})

		t.Run(fmt.Sprintf("CMux/Bit=%v", b), func(t *testing.T) {
			ct0 := enc.BaseEncryptor.EncryptGLWE([]int{5})
			ct1 := enc.BaseEncryptor.EncryptGLWE([]int{12})
			ctOut := eval.BaseEvaluator.CMux(ctGGSW, ct0, ct1)
			assert.Equal(t, []int{5, 12}[b], enc.BaseEncryptor.DecryptGLWE(ctOut)[0])
		})

		t.Run(fmt.Sprintf("GGSW/Bit=%v", b), func(t *testing.T) {
			ctOut := tfhe.NewGGSWCiphertext(baseParams, testParams.CircuitBootstrapParameters())
			require.NoError(t, eval.CircuitBootstrapToGGSWAssign(encryptBit(b), ctOut))
			assert.Equal(t, b, enc.BaseEncryptor.DecryptGGSW(ctOut))
		})
	}

	t.Run("Errors", func(t *testing.T) {
		ctOut := tfhe.NewFourierGGSWCiphertext(baseParams, testParams.CircuitBootstrapParameters())
		assert.ErrorIs(t, eval.CircuitBootstrapAssign(enc.EncryptLWE(1), ctOut), tfhe.ErrLWEDimensionMismatch)

		ctWrongGadget := tfhe.NewFourierGGSWCiphertext(baseParams, baseParams.BlindRotateParameters())
		assert.ErrorIs(t, eval.CircuitBootstrapAssign(encryptBit(1), ctWrongGadget), tfhe.ErrGadgetMismatch)

		ctWrongRank := tfhe.NewFourierGGSWCiphertextCustom(baseParams.GLWERank()+1, baseParams.PolyDegree(), testParams.CircuitBootstrapParameters())
		assert.ErrorIs(t, eval.CircuitBootstrapAssign(encryptBit(1), ctWrongRank), tfhe.ErrGLWERankMismatch)
	})
}

func TestVerticalPacking(t *testing.T) {
	encode := func(x int) uint64 {
		return tfhe.EncodeLWECustom(x, baseParams.MessageModulus(), baseParams.Scale()).Value
	}

	t.Run("BlindRotation", func(t *testing.T) {
		r := 3
		lut := make([]uint64, 1<<r)
		for x := range lut {
			lut[x] = encode(7 - x)
		}

		for _, x := range []int{0, 2, 5, 7} {
			ctOut := eval.VerticalPacking(encryptSelectors(x, r), lut)
			assert.Equal(t, 7-x, enc.DecryptLWE(ctOut))
		}
	})

	t.Run("CMuxTree", func(t *testing.T) {
		r := baseParams.LogPolyDegree() + 2
		lut := make([]uint64, 1<<r)
		for x := range lut {
			lut[x] = encode(x / 128)
		}

		for _, x := range []int{0, 517, 1<<r - 1} {
			ctOut := eval.VerticalPacking(encryptSelectors(x, r), lut)
			assert.Equal(t, x/128, enc.DecryptLWE(ctOut))
		}
	})

	t.Run("MultiOutput", func(t *testing.T) {
		r := 2
		lut := make([]uint64, 3<<r)
		for x := 0; x < 1<<r; x++ {
			lut[x] = encode(x)
			lut[1<<r+x] = encode(3 - x)
			lut[2<<r+x] = encode(x * x)
		}

		x := 3
		ctOut := []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(0), enc.EncryptLWE(0), enc.EncryptLWE(0)}
		require.NoError(t, eval.VerticalPackingAssign(encryptSelectors(x, r), lut, ctOut))
		assert.Equal(t, x, enc.DecryptLWE(ctOut[0]))
		assert.Equal(t, 3-x, enc.DecryptLWE(ctOut[1]))
		assert.Equal(t, x*x, enc.DecryptLWE(ctOut[2]))
	})

	t.Run("Errors", func(t *testing.T) {
		ctOut := []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(0)}
		ctSelectors := encryptSelectors(1, 2)

		assert.ErrorIs(t, eval.VerticalPackingAssign(nil, make([]uint64, 1), ctOut), tfhe.ErrBatchSizeMismatch)
		assert.ErrorIs(t, eval.VerticalPackingAssign(ctSelectors, make([]uint64, 5), ctOut), tfhe.ErrLUTSizeMismatch)
		assert.ErrorIs(t, eval.VerticalPackingAssign(ctSelectors, make([]uint64, 4), []tfhe.LWECiphertext[uint64]{encryptBit(0)}), tfhe.ErrLWEDimensionMismatch)

		ctWrongDegree := tfhe.NewFourierGGSWCiphertextCustom(baseParams.GLWERank(), 2*baseParams.PolyDegree(), testParams.CircuitBootstrapParameters())
		assert.ErrorIs(t, eval.VerticalPackingAssign([]tfhe.FourierGGSWCiphertext[uint64]{ctWrongDegree}, make([]uint64, 2), ctOut), tfhe.ErrPolyDegreeMismatch)
	})
}

func TestWoPBS(t *testing.T) {
	t.Run("Identity", func(t *testing.T) {
		lut := eval.GenLookUpTable(func(x int) int { return x })
		for x := 0; x < testParams.LookUpTableSize(); x++ {
			ctOut := eval.WoPBS(enc.EncryptLWE(x), lut)
			assert.Equal(t, x, enc.DecryptLWE(ctOut), "x = %v", x)
		}
	})

	t.Run("NonNegacyclic", func(t *testing.T) {
		f := func(x int) int { return (x*x + 1) % 16 }
		for _, x := range []int{0, 7, 8, 15} {
			assert.Equal(t, f(x), enc.DecryptLWE(eval.WoPBSFunc(enc.EncryptLWE(x), f)))
		}
	})

	t.Run("Many", func(t *testing.T) {
		lut := eval.GenLookUpTableMany(
			func(x int) int { return x },
			func(x int) int { return 15 - x },
		)
		ctOut := []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(0), enc.EncryptLWE(0)}

		x := 9
		require.NoError(t, eval.WoPBSManyAssign(enc.EncryptLWE(x), lut, ctOut))
		assert.Equal(t, x, enc.DecryptLWE(ctOut[0]))
		assert.Equal(t, 15-x, enc.DecryptLWE(ctOut[1]))
	})

	t.Run("Composition", func(t *testing.T) {
		ct := enc.EncryptLWE(3)
		for i := 0; i < 3; i++ {
			ct = eval.WoPBSFunc(ct, func(x int) int { return x + 1 })
		}
		assert.Equal(t, 6, enc.DecryptLWE(ct))
	})

	t.Run("ShallowCopy", func(t *testing.T) {
		evalCopy := eval.ShallowCopy()
		assert.Equal(t, 12, enc.DecryptLWE(evalCopy.WoPBSFunc(enc.EncryptLWE(4), func(x int) int { return 3 * x })))
	})

	t.Run("Errors", func(t *testing.T) {
		ct := enc.EncryptLWE(1)
		assert.ErrorIs(t, eval.WoPBSAssign(ct, make([]uint64, 8), ct.Copy()), tfhe.ErrLUTSizeMismatch)
		assert.ErrorIs(t, eval.WoPBSAssign(encryptBit(1), make([]uint64, 16), ct.Copy()), tfhe.ErrLWEDimensionMismatch)

		evalNoKey := wopbs.NewEvaluator(testParams, wopbs.EvaluationKey[uint64]{BaseEvaluationKey: eval.EvaluationKey.BaseEvaluationKey})
		assert.ErrorIs(t, evalNoKey.WoPBSAssign(ct, make([]uint64, 16), ct.Copy()), tfhe.ErrGLWERankMismatch)
	})

	t.Run("MalformedKeySwitchKey", func(t *testing.T) {
		base := testParams.BaseParameters()
		ksk := eval.EvaluationKey.BaseEvaluationKey.KeySwitchKey

		for _, tc := range []struct {
			name string
			ksk  tfhe.LWEKeySwitchKey[uint64]
		}{
			{"Empty", tfhe.LWEKeySwitchKey[uint64]{}},
			{"InputDimension", tfhe.LWEKeySwitchKey[uint64]{GadgetParameters: ksk.GadgetParameters, Value: ksk.Value[:1]}},
			{"OutputDimension", tfhe.NewLWEKeySwitchKey(ksk.InputDimension(), 10, ksk.GadgetParameters)},
		} {
			t.Run(tc.name, func(t *testing.T) {
				evk := eval.EvaluationKey
				evk.BaseEvaluationKey.KeySwitchKey = tc.ksk
				evalBad := wopbs.NewEvaluator(testParams, evk)

				ct := enc.EncryptLWE(1)
				assert.ErrorIs(t, evalBad.WoPBSAssign(ct, make([]uint64, 16), ct.Copy()), tfhe.ErrLWEDimensionMismatch)

				ctBits := make([]tfhe.LWECiphertext[uint64], testParams.MessageBits())
				for i := range ctBits {
					ctBits[i] = tfhe.NewLWECiphertextCustom[uint64](base.LWEDimension())
				}
				assert.ErrorIs(t, evalBad.ExtractBitsAssign(ct, testParams.DeltaLog(), testParams.MessageBits(), ctBits), tfhe.ErrLWEDimensionMismatch)
			})
		}
	})
}
