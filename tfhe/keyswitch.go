package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// KeySwitchLWE switches the key of ct using ksk.
func (e *Evaluator[T]) KeySwitchLWE(ksk LWEKeySwitchKey[T], ct LWECiphertext[T]) LWECiphertext[T] {
	ctOut := NewLWECiphertextCustom[T](ksk.OutputDimension())
	e.KeySwitchLWEAssignUnsafe(ksk, ct, ctOut)
	return ctOut
}

// KeySwitchLWEAssign switches the key of ct using ksk and writes it to ctOut.
//
// It returns an error wrapping ErrLWEDimensionMismatch if ct or ctOut
// do not match the dimensions of ksk. ctOut is not touched in that case.
func (e *Evaluator[T]) KeySwitchLWEAssign(ksk LWEKeySwitchKey[T], ct, ctOut LWECiphertext[T]) error {
	if err := checkDimension(ErrLWEDimensionMismatch, ksk.InputDimension(), ct.Dimension()); err != nil {
		return err
	}
	if err := checkDimension(ErrLWEDimensionMismatch, ksk.OutputDimension(), ctOut.Dimension()); err != nil {
		return err
	}
	e.KeySwitchLWEAssignUnsafe(ksk, ct, ctOut)
	return nil
}

// KeySwitchLWEAssignUnsafe is the unchecked version of [*Evaluator.KeySwitchLWEAssign].
// ct and ctOut should not overlap.
//
// The accumulator starts from (body, 0, ..., 0),
// and every digit of the mask subtracts digit * ksk from it.
func (e *Evaluator[T]) KeySwitchLWEAssignUnsafe(ksk LWEKeySwitchKey[T], ct, ctOut LWECiphertext[T]) {
	scalarDecomposed := e.Decomposer.ScalarBuffer(ksk.GadgetParameters.level)

	ctOut.Clear()
	ctOut.Value[0] = ct.Value[0]
	for i := 0; i < ksk.InputDimension(); i++ {
		e.Decomposer.DecomposeScalarAssign(ct.Value[i+1], ksk.GadgetParameters, scalarDecomposed)
		for j := 0; j < ksk.GadgetParameters.level; j++ {
			e.ScalarMulSubLWEAssign(ksk.Value[i].Value[j], scalarDecomposed[j], ctOut)
		}
	}
}

// KeySwitchForBootstrap performs the keyswitching using evaluator's evaluation key.
// Input ciphertext should be of length GLWEDimension + 1.
// Output ciphertext will be of length LWEDimension + 1.
func (e *Evaluator[T]) KeySwitchForBootstrap(ct LWECiphertext[T]) LWECiphertext[T] {
	ctOut := NewLWECiphertextCustom[T](e.Parameters.lweDimension)
	e.KeySwitchForBootstrapAssign(ct, ctOut)
	return ctOut
}

// KeySwitchForBootstrapAssign performs the keyswitching using evaluator's evaluation key.
// Input ciphertext should be of length GLWEDimension + 1.
// Output ciphertext should be of length LWEDimension + 1.
//
// Since the LWE key is a prefix of the large LWE key,
// only the tail of the mask is switched.
func (e *Evaluator[T]) KeySwitchForBootstrapAssign(ct, ctOut LWECiphertext[T]) {
	ksk := e.EvaluationKey.KeySwitchKey
	scalarDecomposed := e.Decomposer.ScalarBuffer(ksk.GadgetParameters.level)

	vec.CopyAssign(ct.Value[:e.Parameters.lweDimension+1], ctOut.Value)
	for i, ii := e.Parameters.lweDimension, 0; i < e.Parameters.glweDimension; i, ii = i+1, ii+1 {
		e.Decomposer.DecomposeScalarAssign(ct.Value[i+1], ksk.GadgetParameters, scalarDecomposed)
		for j := 0; j < ksk.GadgetParameters.level; j++ {
			e.ScalarMulSubLWEAssign(ksk.Value[ii].Value[j], scalarDecomposed[j], ctOut)
		}
	}
}

// PackingKeySwitch packs cts into a single GLWE ciphertext using pksk.
func (e *Evaluator[T]) PackingKeySwitch(pksk GLWEPackingKeySwitchKey[T], cts []LWECiphertext[T]) GLWECiphertext[T] {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.PackingKeySwitchAssignUnsafe(pksk, cts, ctOut)
	return ctOut
}

// PackingKeySwitchAssign packs cts into a single GLWE ciphertext using pksk and writes it to ctOut.
// The phase of cts[j] lands at the coefficient of degree j.
//
// It returns an error wrapping ErrPolyDegreeMismatch if len(cts) > PolyDegree,
// and ErrLWEDimensionMismatch if an input does not match pksk.
func (e *Evaluator[T]) PackingKeySwitchAssign(pksk GLWEPackingKeySwitchKey[T], cts []LWECiphertext[T], ctOut GLWECiphertext[T]) error {
	if len(cts) > e.Parameters.polyDegree {
		return &MismatchError{Err: ErrPolyDegreeMismatch, Want: e.Parameters.polyDegree, Got: len(cts)}
	}
	for _, ct := range cts {
		if err := checkDimension(ErrLWEDimensionMismatch, pksk.InputDimension(), ct.Dimension()); err != nil {
			return err
		}
	}
	if err := e.checkGLWE(ctOut); err != nil {
		return err
	}
	e.PackingKeySwitchAssignUnsafe(pksk, cts, ctOut)
	return nil
}

// PackingKeySwitchAssignUnsafe is the unchecked version of [*Evaluator.PackingKeySwitchAssign].
func (e *Evaluator[T]) PackingKeySwitchAssignUnsafe(pksk GLWEPackingKeySwitchKey[T], cts []LWECiphertext[T], ctOut GLWECiphertext[T]) {
	scalarDecomposed := e.Decomposer.ScalarBuffer(pksk.GadgetParameters.level)

	ctOut.Clear()
	for j, ct := range cts {
		e.buffer.ctPack.Clear()
		e.buffer.ctPack.Value[0].Coeffs[0] = ct.Value[0]
		for i := 0; i < pksk.InputDimension(); i++ {
			e.Decomposer.DecomposeScalarAssign(ct.Value[i+1], pksk.GadgetParameters, scalarDecomposed)
			for l := 0; l < pksk.GadgetParameters.level; l++ {
				e.ScalarMulSubGLWEAssign(pksk.Value[i].Value[l], scalarDecomposed[l], e.buffer.ctPack)
			}
		}
		e.monomialMulAddGLWEAssign(e.buffer.ctPack, j, ctOut)
	}
}

// PrivateFunctionalKeySwitch applies the private linear function of pfksk to ct,
// and returns the result as a GLWE ciphertext.
func (e *Evaluator[T]) PrivateFunctionalKeySwitch(pfksk PrivateFunctionalKeySwitchKey[T], ct LWECiphertext[T]) GLWECiphertext[T] {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.PrivateFunctionalKeySwitchAssignUnsafe(pfksk, ct, ctOut)
	return ctOut
}

// PrivateFunctionalKeySwitchAssign applies the private linear function of pfksk to ct,
// and writes the result to ctOut. If ct has phase p, ctOut has phase f(p) * P(X),
// where f and P are the function and the polynomial pfksk was generated with.
//
// It returns an error wrapping ErrLWEDimensionMismatch if ct does not match pfksk.
func (e *Evaluator[T]) PrivateFunctionalKeySwitchAssign(pfksk PrivateFunctionalKeySwitchKey[T], ct LWECiphertext[T], ctOut GLWECiphertext[T]) error {
	if err := checkDimension(ErrLWEDimensionMismatch, pfksk.InputDimension(), ct.Dimension()); err != nil {
		return err
	}
	if err := e.checkGLWE(ctOut); err != nil {
		return err
	}
	e.PrivateFunctionalKeySwitchAssignUnsafe(pfksk, ct, ctOut)
	return nil
}

// PrivateFunctionalKeySwitchAssignUnsafe is the unchecked version of [*Evaluator.PrivateFunctionalKeySwitchAssign].
// The body is switched with the block of key element -1,
// so the output is -sum digit * pfksk over the whole ciphertext.
func (e *Evaluator[T]) PrivateFunctionalKeySwitchAssignUnsafe(pfksk PrivateFunctionalKeySwitchKey[T], ct LWECiphertext[T], ctOut GLWECiphertext[T]) {
	scalarDecomposed := e.Decomposer.ScalarBuffer(pfksk.GadgetParameters.level)

	ctOut.Clear()
	for t := range ct.Value {
		e.Decomposer.DecomposeScalarAssign(ct.Value[t], pfksk.GadgetParameters, scalarDecomposed)
		for l := 0; l < pfksk.GadgetParameters.level; l++ {
			e.ScalarMulSubGLWEAssign(pfksk.Value[t].Value[l], scalarDecomposed[l], ctOut)
		}
	}
}

// PrivateFunctionalPackingKeySwitchAssign applies pfksk to every ciphertext in cts,
// placing the j-th result at the coefficient of degree j, and writes the sum to ctOut.
func (e *Evaluator[T]) PrivateFunctionalPackingKeySwitchAssign(pfksk PrivateFunctionalKeySwitchKey[T], cts []LWECiphertext[T], ctOut GLWECiphertext[T]) error {
	if len(cts) > e.Parameters.polyDegree {
		return &MismatchError{Err: ErrPolyDegreeMismatch, Want: e.Parameters.polyDegree, Got: len(cts)}
	}
	for _, ct := range cts {
		if err := checkDimension(ErrLWEDimensionMismatch, pfksk.InputDimension(), ct.Dimension()); err != nil {
			return err
		}
	}
	if err := e.checkGLWE(ctOut); err != nil {
		return err
	}

	ctOut.Clear()
	for j, ct := range cts {
		e.PrivateFunctionalKeySwitchAssignUnsafe(pfksk, ct, e.buffer.ctPack)
		e.monomialMulAddGLWEAssign(e.buffer.ctPack, j, ctOut)
	}
	return nil
}

// monomialMulAddGLWEAssign computes ctOut += X^d * ct0.
func (e *Evaluator[T]) monomialMulAddGLWEAssign(ct0 GLWECiphertext[T], d int, ctOut GLWECiphertext[T]) {
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MonomialMulAddPolyAssign(ct0.Value[i], d, ctOut.Value[i])
	}
}
