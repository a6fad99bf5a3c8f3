package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// AddLWE returns ct0 + ct1.
func (e *Evaluator[T]) AddLWE(ct0, ct1 LWECiphertext[T]) LWECiphertext[T] {
	ctOut := NewLWECiphertextCustom[T](ct0.Dimension())
	e.AddLWEAssign(ct0, ct1, ctOut)
	return ctOut
}

// AddLWEAssign computes ctOut = ct0 + ct1.
func (e *Evaluator[T]) AddLWEAssign(ct0, ct1, ctOut LWECiphertext[T]) {
	vec.AddAssign(ct0.Value, ct1.Value, ctOut.Value)
}

// SubLWE returns ct0 - ct1.
func (e *Evaluator[T]) SubLWE(ct0, ct1 LWECiphertext[T]) LWECiphertext[T] {
	ctOut := NewLWECiphertextCustom[T](ct0.Dimension())
	e.SubLWEAssign(ct0, ct1, ctOut)
	return ctOut
}

// SubLWEAssign computes ctOut = ct0 - ct1.
func (e *Evaluator[T]) SubLWEAssign(ct0, ct1, ctOut LWECiphertext[T]) {
	vec.SubAssign(ct0.Value, ct1.Value, ctOut.Value)
}

// NegLWE returns -ct0.
func (e *Evaluator[T]) NegLWE(ct0 LWECiphertext[T]) LWECiphertext[T] {
	ctOut := NewLWECiphertextCustom[T](ct0.Dimension())
	e.NegLWEAssign(ct0, ctOut)
	return ctOut
}

// NegLWEAssign computes ctOut = -ct0.
func (e *Evaluator[T]) NegLWEAssign(ct0, ctOut LWECiphertext[T]) {
	vec.NegAssign(ct0.Value, ctOut.Value)
}

// PlaintextAddLWEAssign computes ctOut = ct0 + pt.
func (e *Evaluator[T]) PlaintextAddLWEAssign(ct0 LWECiphertext[T], pt T, ctOut LWECiphertext[T]) {
	ctOut.CopyFrom(ct0)
	ctOut.Value[0] += pt
}

// ScalarMulLWE returns c * ct0.
func (e *Evaluator[T]) ScalarMulLWE(ct0 LWECiphertext[T], c T) LWECiphertext[T] {
	ctOut := NewLWECiphertextCustom[T](ct0.Dimension())
	e.ScalarMulLWEAssign(ct0, c, ctOut)
	return ctOut
}

// ScalarMulLWEAssign computes ctOut = c * ct0.
func (e *Evaluator[T]) ScalarMulLWEAssign(ct0 LWECiphertext[T], c T, ctOut LWECiphertext[T]) {
	vec.ScalarMulAssign(ct0.Value, c, ctOut.Value)
}

// ScalarMulAddLWEAssign computes ctOut += c * ct0.
func (e *Evaluator[T]) ScalarMulAddLWEAssign(ct0 LWECiphertext[T], c T, ctOut LWECiphertext[T]) {
	vec.ScalarMulAddAssign(ct0.Value, c, ctOut.Value)
}

// ScalarMulSubLWEAssign computes ctOut -= c * ct0.
func (e *Evaluator[T]) ScalarMulSubLWEAssign(ct0 LWECiphertext[T], c T, ctOut LWECiphertext[T]) {
	vec.ScalarMulSubAssign(ct0.Value, c, ctOut.Value)
}

// AddLWEListAssign computes ctOut[i] = ct0[i] + ct1[i] in index order.
func (e *Evaluator[T]) AddLWEListAssign(ct0, ct1, ctOut []LWECiphertext[T]) {
	for i := range ctOut {
		e.AddLWEAssign(ct0[i], ct1[i], ctOut[i])
	}
}

// SubLWEListAssign computes ctOut[i] = ct0[i] - ct1[i] in index order.
func (e *Evaluator[T]) SubLWEListAssign(ct0, ct1, ctOut []LWECiphertext[T]) {
	for i := range ctOut {
		e.SubLWEAssign(ct0[i], ct1[i], ctOut[i])
	}
}
