package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/poly"
)

// AddGLWE returns ct0 + ct1.
func (e *Evaluator[T]) AddGLWE(ct0, ct1 GLWECiphertext[T]) GLWECiphertext[T] {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.AddGLWEAssign(ct0, ct1, ctOut)
	return ctOut
}

// AddGLWEAssign computes ctOut = ct0 + ct1.
func (e *Evaluator[T]) AddGLWEAssign(ct0, ct1, ctOut GLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.AddPolyAssign(ct0.Value[i], ct1.Value[i], ctOut.Value[i])
	}
}

// SubGLWE returns ct0 - ct1.
func (e *Evaluator[T]) SubGLWE(ct0, ct1 GLWECiphertext[T]) GLWECiphertext[T] {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.SubGLWEAssign(ct0, ct1, ctOut)
	return ctOut
}

// SubGLWEAssign computes ctOut = ct0 - ct1.
func (e *Evaluator[T]) SubGLWEAssign(ct0, ct1, ctOut GLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.SubPolyAssign(ct0.Value[i], ct1.Value[i], ctOut.Value[i])
	}
}

// NegGLWEAssign computes ctOut = -ct0.
func (e *Evaluator[T]) NegGLWEAssign(ct0, ctOut GLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.NegPolyAssign(ct0.Value[i], ctOut.Value[i])
	}
}

// ScalarMulGLWEAssign computes ctOut = c * ct0.
func (e *Evaluator[T]) ScalarMulGLWEAssign(ct0 GLWECiphertext[T], c T, ctOut GLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.ScalarMulPolyAssign(ct0.Value[i], c, ctOut.Value[i])
	}
}

// ScalarMulSubGLWEAssign computes ctOut -= c * ct0.
func (e *Evaluator[T]) ScalarMulSubGLWEAssign(ct0 GLWECiphertext[T], c T, ctOut GLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.ScalarMulSubPolyAssign(ct0.Value[i], c, ctOut.Value[i])
	}
}

// PlaintextAddGLWEAssign computes ctOut = ct0 + pt.
func (e *Evaluator[T]) PlaintextAddGLWEAssign(ct0 GLWECiphertext[T], pt GLWEPlaintext[T], ctOut GLWECiphertext[T]) {
	ctOut.CopyFrom(ct0)
	e.PolyEvaluator.AddPolyAssign(ctOut.Value[0], pt.Value, ctOut.Value[0])
}

// MonomialMulGLWEAssign computes ctOut = X^d * ct0.
// ct0 and ctOut should not overlap. For inplace multiplication,
// use [*Evaluator.MonomialMulGLWEInPlace].
func (e *Evaluator[T]) MonomialMulGLWEAssign(ct0 GLWECiphertext[T], d int, ctOut GLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MonomialMulPolyAssign(ct0.Value[i], d, ctOut.Value[i])
	}
}

// MonomialMulGLWEInPlace computes ct0 = X^d * ct0.
func (e *Evaluator[T]) MonomialMulGLWEInPlace(ct0 GLWECiphertext[T], d int) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MonomialMulPolyInPlace(ct0.Value[i], d)
	}
}

// SampleExtract extracts the coefficient at index idx of ct as an LWE ciphertext
// under the large LWE key.
func (e *Evaluator[T]) SampleExtract(ct GLWECiphertext[T], idx int) LWECiphertext[T] {
	ctOut := NewLWECiphertextCustom[T](e.Parameters.glweDimension)
	e.SampleExtractAssign(ct, idx, ctOut)
	return ctOut
}

// SampleExtractAssign extracts the coefficient at index idx of ct as an LWE ciphertext
// under the large LWE key and writes it to ctOut.
func (e *Evaluator[T]) SampleExtractAssign(ct GLWECiphertext[T], idx int, ctOut LWECiphertext[T]) {
	ct.ToLWECiphertextAssign(idx, ctOut)
}

// ToFourierGLWECiphertextAssign transforms GLWE ciphertext to the Fourier domain and writes it to ctOut.
func (e *Evaluator[T]) ToFourierGLWECiphertextAssign(ct GLWECiphertext[T], ctOut FourierGLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.ToFourierPolyAssign(ct.Value[i], ctOut.Value[i])
	}
}

// ToGLWECiphertextAssign transforms Fourier GLWE ciphertext back to the coefficient domain and writes it to ctOut.
func (e *Evaluator[T]) ToGLWECiphertextAssign(ct FourierGLWECiphertext[T], ctOut GLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.ToPolyAssign(ct.Value[i], ctOut.Value[i])
	}
}

// SubFourierGLWEAssign computes ctOut = ct0 - ct1 in the Fourier domain.
func (e *Evaluator[T]) SubFourierGLWEAssign(ct0, ct1, ctOut FourierGLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.SubFourierPolyAssign(ct0.Value[i], ct1.Value[i], ctOut.Value[i])
	}
}

// FourierPolyMulFourierGLWEAssign computes ctOut = fp * ct0 in the Fourier domain.
func (e *Evaluator[T]) FourierPolyMulFourierGLWEAssign(ct0 FourierGLWECiphertext[T], fp poly.FourierPoly, ctOut FourierGLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MulFourierPolyAssign(ct0.Value[i], fp, ctOut.Value[i])
	}
}

// FourierPolyMulAddFourierGLWEAssign computes ctOut += fp * ct0 in the Fourier domain.
func (e *Evaluator[T]) FourierPolyMulAddFourierGLWEAssign(ct0 FourierGLWECiphertext[T], fp poly.FourierPoly, ctOut FourierGLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MulAddFourierPolyAssign(ct0.Value[i], fp, ctOut.Value[i])
	}
}
