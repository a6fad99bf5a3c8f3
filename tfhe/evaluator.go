package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/poly"
)

// Evaluator evaluates homomorphic operations on ciphertexts.
// All fields except Parameters and EvaluationKey are buffers.
//
// Evaluator is not safe for concurrent use.
// Use [*Evaluator.ShallowCopy] to get a safe copy.
type Evaluator[T TorusInt] struct {
	// Parameters is the parameters for this Evaluator.
	Parameters Parameters[T]

	// Decomposer is a Decomposer for this Evaluator.
	Decomposer *Decomposer[T]
	// PolyEvaluator is a PolyEvaluator for this Evaluator.
	PolyEvaluator *poly.Evaluator[T]

	// EvaluationKey is the evaluation key for this Evaluator.
	// This is shared with ShallowCopy.
	EvaluationKey EvaluationKey[T]

	buffer evaluationBuffer[T]
}

// evaluationBuffer contains buffer values for Evaluator.
type evaluationBuffer[T TorusInt] struct {
	// ctFourierDecomposed holds the decomposed GLWE ciphertext in the Fourier domain.
	// It has length GLWERank + 1, and each entry has length at least the gadget level in use.
	ctFourierDecomposed [][]poly.FourierPoly
	// ctFourierProd holds the result of an external product in the Fourier domain.
	ctFourierProd FourierGLWECiphertext[T]
	// fMono holds the fourier transformed monomial X^d - 1.
	fMono poly.FourierPoly

	// ctCMux holds ct1 - ct0 in CMux.
	ctCMux GLWECiphertext[T]
	// ctRotate holds the blind rotated GLWE ciphertext for bootstrapping.
	ctRotate GLWECiphertext[T]
	// ctExtract holds the extracted LWE ciphertext after Blind Rotation.
	ctExtract LWECiphertext[T]
	// ctKeySwitchForBootstrap holds the key switched LWE ciphertext for bootstrapping.
	ctKeySwitchForBootstrap LWECiphertext[T]

	// ctPack holds an intermediate GLWE ciphertext for packing keyswitching.
	ctPack GLWECiphertext[T]
	// pMul holds an intermediate polynomial product.
	pMul poly.Poly[T]

	// lut holds an empty lookup table.
	lut LookUpTable[T]
}

// NewEvaluator allocates an empty Evaluator based on parameters.
// This does not copy evaluation keys, since they are large.
func NewEvaluator[T TorusInt](params Parameters[T], evk EvaluationKey[T]) *Evaluator[T] {
	maxLevel := num.Max(params.blindRotateParameters.level, params.keySwitchParameters.level)

	return &Evaluator[T]{
		Parameters: params,

		Decomposer:    NewDecomposer[T](params.polyDegree, maxLevel),
		PolyEvaluator: poly.NewEvaluator[T](params.polyDegree),

		EvaluationKey: evk,

		buffer: newEvaluationBuffer(params, maxLevel),
	}
}

// newEvaluationBuffer allocates an empty evaluationBuffer.
func newEvaluationBuffer[T TorusInt](params Parameters[T], maxLevel int) evaluationBuffer[T] {
	ctFourierDecomposed := make([][]poly.FourierPoly, params.glweRank+1)
	for i := range ctFourierDecomposed {
		ctFourierDecomposed[i] = make([]poly.FourierPoly, maxLevel)
		for j := range ctFourierDecomposed[i] {
			ctFourierDecomposed[i][j] = poly.NewFourierPoly(params.polyDegree)
		}
	}

	return evaluationBuffer[T]{
		ctFourierDecomposed: ctFourierDecomposed,
		ctFourierProd:       NewFourierGLWECiphertext(params),
		fMono:               poly.NewFourierPoly(params.polyDegree),

		ctCMux:                  NewGLWECiphertext(params),
		ctRotate:                NewGLWECiphertext(params),
		ctExtract:               NewLWECiphertextCustom[T](params.glweDimension),
		ctKeySwitchForBootstrap: NewLWECiphertextCustom[T](params.lweDimension),

		ctPack: NewGLWECiphertext(params),
		pMul:   poly.NewPoly[T](params.polyDegree),

		lut: NewLookUpTable(params),
	}
}

// ShallowCopy returns a shallow copy of this Evaluator.
// Returned Evaluator is safe for concurrent use.
func (e *Evaluator[T]) ShallowCopy() *Evaluator[T] {
	return &Evaluator[T]{
		Parameters: e.Parameters,

		Decomposer:    e.Decomposer.ShallowCopy(),
		PolyEvaluator: e.PolyEvaluator.ShallowCopy(),

		EvaluationKey: e.EvaluationKey,

		buffer: newEvaluationBuffer(e.Parameters, len(e.buffer.ctFourierDecomposed[0])),
	}
}

// fourierDecomposedBuffer returns the decomposition buffer with at least level entries per row.
func (e *Evaluator[T]) fourierDecomposedBuffer(level int) [][]poly.FourierPoly {
	for i := range e.buffer.ctFourierDecomposed {
		for len(e.buffer.ctFourierDecomposed[i]) < level {
			e.buffer.ctFourierDecomposed[i] = append(e.buffer.ctFourierDecomposed[i], poly.NewFourierPoly(e.Parameters.polyDegree))
		}
	}
	return e.buffer.ctFourierDecomposed
}

// checkGLWE checks that ct matches the rank and degree of the parameters.
func (e *Evaluator[T]) checkGLWE(ct GLWECiphertext[T]) error {
	if err := checkDimension(ErrGLWERankMismatch, e.Parameters.glweRank, ct.Rank()); err != nil {
		return err
	}
	return checkDimension(ErrPolyDegreeMismatch, e.Parameters.polyDegree, ct.Degree())
}

// checkGGSW checks that every row of ct matches the rank, degree and gadget level of the parameters.
func (e *Evaluator[T]) checkGGSW(ct GGSWCiphertext[T]) error {
	if err := checkDimension(ErrGLWERankMismatch, e.Parameters.glweRank+1, len(ct.Value)); err != nil {
		return err
	}
	for i := range ct.Value {
		if err := checkDimension(ErrGadgetMismatch, ct.GadgetParameters.level, len(ct.Value[i].Value)); err != nil {
			return err
		}
		for l := range ct.Value[i].Value {
			if err := e.checkGLWE(ct.Value[i].Value[l]); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkFourierGGSW checks that ct matches the rank and degree of the parameters.
func (e *Evaluator[T]) checkFourierGGSW(ct FourierGGSWCiphertext[T]) error {
	if err := checkDimension(ErrGLWERankMismatch, e.Parameters.glweRank, ct.Rank()); err != nil {
		return err
	}
	if err := checkDimension(ErrPolyDegreeMismatch, e.Parameters.polyDegree, ct.Degree()); err != nil {
		return err
	}
	for i := range ct.Value {
		if err := checkDimension(ErrGadgetMismatch, ct.GadgetParameters.level, len(ct.Value[i].Value)); err != nil {
			return err
		}
	}
	return nil
}
