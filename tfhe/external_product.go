package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/poly"
)

// DecomposeGLWEToFourierAssign decomposes every polynomial of ct with respect to gadgetParams,
// transforms the digits to the Fourier domain and writes them to ctDecomposedOut.
// ctDecomposedOut[i][l] holds the l-th digit of ct.Value[i].
func (e *Evaluator[T]) DecomposeGLWEToFourierAssign(ct GLWECiphertext[T], gadgetParams GadgetParameters[T], ctDecomposedOut [][]poly.FourierPoly) {
	polyDecomposed := e.Decomposer.PolyBuffer(gadgetParams.level)
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.Decomposer.DecomposePolyAssign(ct.Value[i], gadgetParams, polyDecomposed)
		for l := 0; l < gadgetParams.level; l++ {
			e.PolyEvaluator.ToFourierPolyAssign(polyDecomposed[l], ctDecomposedOut[i][l])
		}
	}
}

// GadgetProductFourierDecomposedFourierGLWEAssign computes the gadget product
// sum_l ctDecomposed[l] * ctGLev.Value[l] and writes it to ctOut.
func (e *Evaluator[T]) GadgetProductFourierDecomposedFourierGLWEAssign(ctGLev FourierGLevCiphertext[T], ctDecomposed []poly.FourierPoly, ctOut FourierGLWECiphertext[T]) {
	e.FourierPolyMulFourierGLWEAssign(ctGLev.Value[0], ctDecomposed[0], ctOut)
	for l := 1; l < ctGLev.GadgetParameters.level; l++ {
		e.FourierPolyMulAddFourierGLWEAssign(ctGLev.Value[l], ctDecomposed[l], ctOut)
	}
}

// ExternalProductFourierDecomposedFourierGLWEAssign computes the external product
// sum_i sum_l ctDecomposed[i][l] * ctGGSW.Value[i].Value[l] and writes it to ctOut.
func (e *Evaluator[T]) ExternalProductFourierDecomposedFourierGLWEAssign(ctGGSW FourierGGSWCiphertext[T], ctDecomposed [][]poly.FourierPoly, ctOut FourierGLWECiphertext[T]) {
	e.GadgetProductFourierDecomposedFourierGLWEAssign(ctGGSW.Value[0], ctDecomposed[0], ctOut)
	for i := 1; i < e.Parameters.glweRank+1; i++ {
		for l := 0; l < ctGGSW.GadgetParameters.level; l++ {
			e.FourierPolyMulAddFourierGLWEAssign(ctGGSW.Value[i].Value[l], ctDecomposed[i][l], ctOut)
		}
	}
}

// ExternalProduct returns the external product between ctGGSW and ct.
func (e *Evaluator[T]) ExternalProduct(ctGGSW FourierGGSWCiphertext[T], ct GLWECiphertext[T]) GLWECiphertext[T] {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.ExternalProductAssignUnsafe(ctGGSW, ct, ctOut)
	return ctOut
}

// ExternalProductAssign computes the external product between ctGGSW and ct and writes it to ctOut.
// If ctGGSW encrypts m and ct encrypts phase p, ctOut encrypts m * p.
//
// It returns an error wrapping ErrGLWERankMismatch, ErrPolyDegreeMismatch or ErrGadgetMismatch
// if the shapes do not match the parameters. ctOut is not touched in that case.
func (e *Evaluator[T]) ExternalProductAssign(ctGGSW FourierGGSWCiphertext[T], ct, ctOut GLWECiphertext[T]) error {
	if err := e.checkFourierGGSW(ctGGSW); err != nil {
		return err
	}
	if err := e.checkGLWE(ct); err != nil {
		return err
	}
	if err := e.checkGLWE(ctOut); err != nil {
		return err
	}
	e.ExternalProductAssignUnsafe(ctGGSW, ct, ctOut)
	return nil
}

// ExternalProductAssignUnsafe is the unchecked version of [*Evaluator.ExternalProductAssign].
// ct and ctOut may overlap.
func (e *Evaluator[T]) ExternalProductAssignUnsafe(ctGGSW FourierGGSWCiphertext[T], ct, ctOut GLWECiphertext[T]) {
	ctDecomposed := e.fourierDecomposedBuffer(ctGGSW.GadgetParameters.level)
	e.DecomposeGLWEToFourierAssign(ct, ctGGSW.GadgetParameters, ctDecomposed)
	e.ExternalProductFourierDecomposedFourierGLWEAssign(ctGGSW, ctDecomposed, e.buffer.ctFourierProd)
	e.ToGLWECiphertextAssign(e.buffer.ctFourierProd, ctOut)
}

// ExternalProductAddAssignUnsafe computes ctOut += ExternalProduct(ctGGSW, ct).
// ct and ctOut may overlap.
func (e *Evaluator[T]) ExternalProductAddAssignUnsafe(ctGGSW FourierGGSWCiphertext[T], ct, ctOut GLWECiphertext[T]) {
	ctDecomposed := e.fourierDecomposedBuffer(ctGGSW.GadgetParameters.level)
	e.DecomposeGLWEToFourierAssign(ct, ctGGSW.GadgetParameters, ctDecomposed)
	e.ExternalProductFourierDecomposedFourierGLWEAssign(ctGGSW, ctDecomposed, e.buffer.ctFourierProd)
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.ToPolyAddAssign(e.buffer.ctFourierProd.Value[i], ctOut.Value[i])
	}
}

// ExternalProductExactAssign computes the external product between a coefficient domain
// ctGGSW and ct using exact schoolbook polynomial products, and writes it to ctOut.
// This is slower than [*Evaluator.ExternalProductAssign] by a factor of N / log N,
// but has no floating point error.
func (e *Evaluator[T]) ExternalProductExactAssign(ctGGSW GGSWCiphertext[T], ct, ctOut GLWECiphertext[T]) error {
	if err := e.checkGLWE(ct); err != nil {
		return err
	}
	if err := e.checkGLWE(ctOut); err != nil {
		return err
	}
	if err := e.checkGGSW(ctGGSW); err != nil {
		return err
	}

	gadgetParams := ctGGSW.GadgetParameters
	polyDecomposed := e.Decomposer.PolyBuffer(gadgetParams.level)

	ctProd := e.buffer.ctPack
	ctProd.Clear()
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.Decomposer.DecomposePolyAssign(ct.Value[i], gadgetParams, polyDecomposed)
		for l := 0; l < gadgetParams.level; l++ {
			for j := 0; j < e.Parameters.glweRank+1; j++ {
				e.PolyEvaluator.MulAddPolyNaiveAssign(polyDecomposed[l], ctGGSW.Value[i].Value[l].Value[j], ctProd.Value[j])
			}
		}
	}
	ctOut.CopyFrom(ctProd)
	return nil
}

// CMux returns ct0 if ctGGSW encrypts 0, and ct1 if ctGGSW encrypts 1.
func (e *Evaluator[T]) CMux(ctGGSW FourierGGSWCiphertext[T], ct0, ct1 GLWECiphertext[T]) GLWECiphertext[T] {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.CMuxAssignUnsafe(ctGGSW, ct0, ct1, ctOut)
	return ctOut
}

// CMuxAssign computes ctOut = ct0 + ExternalProduct(ctGGSW, ct1 - ct0).
// If ctGGSW encrypts a bit b, ctOut encrypts the phase of ct0 if b = 0 and of ct1 if b = 1.
func (e *Evaluator[T]) CMuxAssign(ctGGSW FourierGGSWCiphertext[T], ct0, ct1, ctOut GLWECiphertext[T]) error {
	if err := e.checkFourierGGSW(ctGGSW); err != nil {
		return err
	}
	for _, ct := range []GLWECiphertext[T]{ct0, ct1, ctOut} {
		if err := e.checkGLWE(ct); err != nil {
			return err
		}
	}
	e.CMuxAssignUnsafe(ctGGSW, ct0, ct1, ctOut)
	return nil
}

// CMuxAssignUnsafe is the unchecked version of [*Evaluator.CMuxAssign].
// ctOut may overlap with ct0 or ct1.
func (e *Evaluator[T]) CMuxAssignUnsafe(ctGGSW FourierGGSWCiphertext[T], ct0, ct1, ctOut GLWECiphertext[T]) {
	e.SubGLWEAssign(ct1, ct0, e.buffer.ctCMux)
	ctOut.CopyFrom(ct0)
	e.ExternalProductAddAssignUnsafe(ctGGSW, e.buffer.ctCMux, ctOut)
}
