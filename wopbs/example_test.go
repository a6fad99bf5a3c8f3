package wopbs_test

import (
	"fmt"
	"testing"

	"github.com/snucp/tfhe-wopbs/tfhe"
	"github.com/snucp/tfhe-wopbs/wopbs"
)

func Example() {
	params := wopbs.ParamsTestUint64.Compile()

	enc := wopbs.NewEncryptor(params)
	ct := enc.EncryptLWE(6)

	eval := wopbs.NewEvaluator(params, enc.GenEvaluationKeyParallel())
	ctOut := eval.WoPBSFunc(ct, func(x int) int { return x * x % 16 })

	fmt.Println(enc.DecryptLWE(ctOut))
	// Output:
	// 4
}

func BenchmarkWoPBS(b *testing.B) {
	lut := eval.GenLookUpTable(func(x int) int { return 15 - x })
	ct := enc.EncryptLWE(3)
	ctOut := ct.Copy()

	b.Run("ExtractBits", func(b *testing.B) {
		ctBits := eval.ExtractBits(ct, testParams.DeltaLog(), testParams.MessageBits())

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			eval.ExtractBitsAssignUnsafe(ct, testParams.DeltaLog(), testParams.MessageBits(), ctBits)
		}
	})

	b.Run("CircuitBootstrap", func(b *testing.B) {
		ctBit := encryptBit(1)
		ctGGSW := tfhe.NewFourierGGSWCiphertext(baseParams, testParams.CircuitBootstrapParameters())

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			eval.CircuitBootstrapAssignUnsafe(ctBit, ctGGSW)
		}
	})

	b.Run("VerticalPacking", func(b *testing.B) {
		ctSelectors := encryptSelectors(3, testParams.MessageBits())
		ctOuts := []tfhe.LWECiphertext[uint64]{ctOut}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			eval.VerticalPackingAssignUnsafe(ctSelectors, lut, ctOuts)
		}
	})

	b.Run("WoPBS", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := eval.WoPBSAssign(ct, lut, ctOut); err != nil {
				b.Fatal(err)
			}
		}
	})
}
