package tfhe_test

import (
	"fmt"
	"testing"

	"github.com/snucp/tfhe-wopbs/tfhe"
)

func Example() {
	params := tfhe.ParamsTestUint64.Compile()

	enc := tfhe.NewEncryptor(params)
	ct := enc.EncryptLWE(2)

	eval := tfhe.NewEvaluator(params, enc.GenEvaluationKeyParallel())
	ctOut := eval.BootstrapFunc(ct, func(x int) int { return 3 - x })

	fmt.Println(enc.DecryptLWE(ctOut))
	// Output:
	// 1
}

func Example_cmux() {
	params := tfhe.ParamsTestUint64.Compile()
	enc := tfhe.NewEncryptor(params)
	eval := tfhe.NewEvaluator(params, tfhe.EvaluationKey[uint64]{})

	ct0 := enc.EncryptGLWE([]int{1})
	ct1 := enc.EncryptGLWE([]int{3})
	ctFlag := enc.EncryptFourierGGSW(1, params.BlindRotateParameters())

	fmt.Println(enc.DecryptGLWE(eval.CMux(ctFlag, ct0, ct1))[0])
	// Output:
	// 3
}

func BenchmarkBootstrap(b *testing.B) {
	lut := eval.GenLookUpTable(func(x int) int { return x })
	ct := enc.EncryptLWE(1)
	ctOut := tfhe.NewLWECiphertext(testParams)

	b.Run("LowLatency", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			eval.BootstrapLUTAssign(ct, lut, ctOut)
		}
	})

	b.Run("Batch/8", func(b *testing.B) {
		cts := make([]tfhe.LWECiphertext[uint64], 8)
		ctRotated := make([]tfhe.GLWECiphertext[uint64], len(cts))
		for i := range cts {
			cts[i] = eval.KeySwitchForBootstrap(enc.EncryptLWE(i))
			ctRotated[i] = tfhe.NewGLWECiphertext(testParams)
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := eval.BlindRotateBatchAssign(cts, lut, ctRotated); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkExternalProduct(b *testing.B) {
	ctGGSW := enc.EncryptFourierGGSW(1, testParams.BlindRotateParameters())
	ct := enc.EncryptGLWE([]int{1})
	ctOut := tfhe.NewGLWECiphertext(testParams)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eval.ExternalProductAssignUnsafe(ctGGSW, ct, ctOut)
	}
}

func BenchmarkKeySwitchForBootstrap(b *testing.B) {
	ct := enc.EncryptLWE(1)
	ctOut := tfhe.NewLWECiphertextCustom[uint64](testParams.LWEDimension())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eval.KeySwitchForBootstrapAssign(ct, ctOut)
	}
}
