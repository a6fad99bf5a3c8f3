package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/num"
)

// BootstrapFunc returns a bootstrapped LWE ciphertext with respect to given function.
func (e *Evaluator[T]) BootstrapFunc(ct LWECiphertext[T], f func(int) int) LWECiphertext[T] {
	e.GenLookUpTableAssign(f, e.buffer.lut)
	return e.BootstrapLUT(ct, e.buffer.lut)
}

// BootstrapFuncAssign bootstraps LWE ciphertext with respect to given function and writes it to ctOut.
func (e *Evaluator[T]) BootstrapFuncAssign(ct LWECiphertext[T], f func(int) int, ctOut LWECiphertext[T]) {
	e.GenLookUpTableAssign(f, e.buffer.lut)
	e.BootstrapLUTAssign(ct, e.buffer.lut, ctOut)
}

// BootstrapLUT returns a bootstrapped LWE ciphertext with respect to given LUT.
func (e *Evaluator[T]) BootstrapLUT(ct LWECiphertext[T], lut LookUpTable[T]) LWECiphertext[T] {
	ctOut := NewLWECiphertext(e.Parameters)
	e.BootstrapLUTAssign(ct, lut, ctOut)
	return ctOut
}

// BootstrapLUTAssign bootstraps LWE ciphertext with respect to given LUT and writes it to ctOut.
func (e *Evaluator[T]) BootstrapLUTAssign(ct LWECiphertext[T], lut LookUpTable[T], ctOut LWECiphertext[T]) {
	switch e.Parameters.bootstrapOrder {
	case OrderKeySwitchBlindRotate:
		e.KeySwitchForBootstrapAssign(ct, e.buffer.ctKeySwitchForBootstrap)
		e.BlindRotateAssignUnsafe(e.buffer.ctKeySwitchForBootstrap, lut, e.buffer.ctRotate)
		e.buffer.ctRotate.ToLWECiphertextAssign(0, ctOut)
	case OrderBlindRotateKeySwitch:
		e.BlindRotateAssignUnsafe(ct, lut, e.buffer.ctRotate)
		e.buffer.ctRotate.ToLWECiphertextAssign(0, e.buffer.ctExtract)
		e.KeySwitchForBootstrapAssign(e.buffer.ctExtract, ctOut)
	}
}

// BootstrapLUTToLargeKeyAssign bootstraps an LWE ciphertext under the LWE key
// and writes the sample extracted result, under the large LWE key, to ctOut.
// No keyswitching is performed.
func (e *Evaluator[T]) BootstrapLUTToLargeKeyAssign(ct LWECiphertext[T], lut LookUpTable[T], ctOut LWECiphertext[T]) {
	e.BlindRotateAssignUnsafe(ct, lut, e.buffer.ctRotate)
	e.buffer.ctRotate.ToLWECiphertextAssign(0, ctOut)
}

// ModSwitch switches the modulus of x from Q to 2 * PolyDegree,
// rounding to the nearest integer.
func (e *Evaluator[T]) ModSwitch(x T) int {
	s := num.SizeT[T]() - e.Parameters.logPolyDegree - 1
	return int(num.DivRoundBits(x, s)) & (2*e.Parameters.polyDegree - 1)
}

// BlindRotate returns the blind rotation of LWE ciphertext with respect to LUT.
func (e *Evaluator[T]) BlindRotate(ct LWECiphertext[T], lut LookUpTable[T]) GLWECiphertext[T] {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.BlindRotateAssignUnsafe(ct, lut, ctOut)
	return ctOut
}

// BlindRotateAssign computes the blind rotation of LWE ciphertext with respect to LUT, and writes it to ctOut.
// If ct has phase p, the constant term of ctOut encrypts LUT[ModSwitch(p)],
// with LUT[x + N] = -LUT[x].
//
// It returns an error wrapping ErrLWEDimensionMismatch, ErrPolyDegreeMismatch or ErrGLWERankMismatch
// if the shapes do not match the parameters. ctOut is not touched in that case.
func (e *Evaluator[T]) BlindRotateAssign(ct LWECiphertext[T], lut LookUpTable[T], ctOut GLWECiphertext[T]) error {
	if err := e.checkBlindRotate(ct, lut); err != nil {
		return err
	}
	if err := e.checkGLWE(ctOut); err != nil {
		return err
	}
	e.BlindRotateAssignUnsafe(ct, lut, ctOut)
	return nil
}

// BlindRotateAssignUnsafe is the unchecked version of [*Evaluator.BlindRotateAssign].
//
// This is the low latency strategy, keeping a single accumulator.
func (e *Evaluator[T]) BlindRotateAssignUnsafe(ct LWECiphertext[T], lut LookUpTable[T], ctOut GLWECiphertext[T]) {
	e.blindRotateInitAssign(ct.Value[0], lut, ctOut)
	for i := 0; i < e.Parameters.lweDimension; i++ {
		e.blindRotateStepAssign(e.EvaluationKey.BlindRotateKey.Value[i], ct.Value[i+1], ctOut)
	}
}

// BlindRotateBatchAssign computes the blind rotation of every ciphertext in cts
// with respect to the same LUT, and writes them to ctOut.
//
// This is the amortized strategy: the loop runs over the bootstrapping key first,
// so each GGSW ciphertext is read once per batch.
// The result is numerically identical to calling [*Evaluator.BlindRotateAssign] on each ciphertext.
func (e *Evaluator[T]) BlindRotateBatchAssign(cts []LWECiphertext[T], lut LookUpTable[T], ctOut []GLWECiphertext[T]) error {
	if len(cts) != len(ctOut) {
		return &MismatchError{Err: ErrBatchSizeMismatch, Want: len(cts), Got: len(ctOut)}
	}
	for i := range cts {
		if err := e.checkBlindRotate(cts[i], lut); err != nil {
			return err
		}
		if err := e.checkGLWE(ctOut[i]); err != nil {
			return err
		}
	}

	for j := range cts {
		e.blindRotateInitAssign(cts[j].Value[0], lut, ctOut[j])
	}
	for i := 0; i < e.Parameters.lweDimension; i++ {
		bsk := e.EvaluationKey.BlindRotateKey.Value[i]
		for j := range cts {
			e.blindRotateStepAssign(bsk, cts[j].Value[i+1], ctOut[j])
		}
	}
	return nil
}

// blindRotateInitAssign sets ctAcc to the trivial encryption of X^(-b) * LUT.
func (e *Evaluator[T]) blindRotateInitAssign(b T, lut LookUpTable[T], ctAcc GLWECiphertext[T]) {
	e.PolyEvaluator.MonomialMulPolyAssign(lut.Value, -e.ModSwitch(b), ctAcc.Value[0])
	for i := 1; i < e.Parameters.glweRank+1; i++ {
		ctAcc.Value[i].Clear()
	}
}

// blindRotateStepAssign computes ctAcc += ExternalProduct(bsk, ctAcc) * (X^a - 1).
func (e *Evaluator[T]) blindRotateStepAssign(bsk FourierGGSWCiphertext[T], a T, ctAcc GLWECiphertext[T]) {
	a2N := e.ModSwitch(a)
	if a2N == 0 {
		return
	}

	ctDecomposed := e.fourierDecomposedBuffer(bsk.GadgetParameters.level)
	e.DecomposeGLWEToFourierAssign(ctAcc, bsk.GadgetParameters, ctDecomposed)
	e.ExternalProductFourierDecomposedFourierGLWEAssign(bsk, ctDecomposed, e.buffer.ctFourierProd)

	e.PolyEvaluator.MonomialSubOneToFourierPolyAssign(a2N, e.buffer.fMono)
	e.FourierPolyMulFourierGLWEAssign(e.buffer.ctFourierProd, e.buffer.fMono, e.buffer.ctFourierProd)

	for j := 0; j < e.Parameters.glweRank+1; j++ {
		e.PolyEvaluator.ToPolyAddAssign(e.buffer.ctFourierProd.Value[j], ctAcc.Value[j])
	}
}

// checkBlindRotate checks that ct and lut can be blind rotated with the evaluation key.
func (e *Evaluator[T]) checkBlindRotate(ct LWECiphertext[T], lut LookUpTable[T]) error {
	if err := checkDimension(ErrLWEDimensionMismatch, e.Parameters.lweDimension, ct.Dimension()); err != nil {
		return err
	}
	if err := checkDimension(ErrLWEDimensionMismatch, e.Parameters.lweDimension, len(e.EvaluationKey.BlindRotateKey.Value)); err != nil {
		return err
	}
	return checkDimension(ErrPolyDegreeMismatch, e.Parameters.polyDegree, lut.Value.Degree())
}
