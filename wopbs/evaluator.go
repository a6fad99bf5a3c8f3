package wopbs

import (
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// Evaluator evaluates WoP-PBS and its building blocks:
// bit extraction, circuit bootstrapping and vertical packing.
// All fields except Parameters, BaseEvaluator and EvaluationKey are buffers.
//
// Evaluator is not safe for concurrent use.
// Use [*Evaluator.ShallowCopy] to get a safe copy.
type Evaluator[T tfhe.TorusInt] struct {
	// Parameters is the parameters for this Evaluator.
	Parameters Parameters[T]

	// BaseEvaluator evaluates the operations of the underlying scheme.
	BaseEvaluator *tfhe.Evaluator[T]

	// EvaluationKey is the evaluation key for this Evaluator.
	// This is shared with ShallowCopy.
	EvaluationKey EvaluationKey[T]

	buffer evaluationBuffer[T]
}

// evaluationBuffer contains buffer values for Evaluator.
type evaluationBuffer[T tfhe.TorusInt] struct {
	// ctCurrent holds the message bits not yet extracted, under the large LWE key.
	ctCurrent tfhe.LWECiphertext[T]
	// ctShift holds ctCurrent shifted so that the next bit sits at the top.
	ctShift tfhe.LWECiphertext[T]
	// ctSmall holds an offset ciphertext under the LWE key, ready for blind rotation.
	ctSmall tfhe.LWECiphertext[T]
	// ctBit holds a bootstrapped bit under the large LWE key.
	ctBit tfhe.LWECiphertext[T]
	// lut holds the constant lookup table for bit extraction and circuit bootstrapping.
	lut tfhe.LookUpTable[T]

	// ctGGSW holds a circuit bootstrapped GGSW ciphertext in the coefficient domain.
	ctGGSW tfhe.GGSWCiphertext[T]

	// ctBits holds the extracted bits, LSB first.
	ctBits []tfhe.LWECiphertext[T]
	// ctSelectors holds the circuit bootstrapped bits, MSB first.
	ctSelectors []tfhe.FourierGGSWCiphertext[T]

	// ctTree holds the nodes of the CMUX tree.
	// It grows when a vertical packing needs more leaves.
	ctTree []tfhe.GLWECiphertext[T]
	// ctRotated holds the rotated accumulator in the CMUX ladder.
	ctRotated tfhe.GLWECiphertext[T]
}

// NewEvaluator allocates an empty Evaluator based on parameters.
// This does not copy evaluation keys, since they are large.
func NewEvaluator[T tfhe.TorusInt](params Parameters[T], evk EvaluationKey[T]) *Evaluator[T] {
	return &Evaluator[T]{
		Parameters:    params,
		BaseEvaluator: tfhe.NewEvaluator(params.baseParameters, evk.BaseEvaluationKey),
		EvaluationKey: evk,
		buffer:        newEvaluationBuffer(params),
	}
}

// newEvaluationBuffer allocates an empty evaluationBuffer.
func newEvaluationBuffer[T tfhe.TorusInt](params Parameters[T]) evaluationBuffer[T] {
	base := params.baseParameters

	ctBits := make([]tfhe.LWECiphertext[T], params.messageBits)
	ctSelectors := make([]tfhe.FourierGGSWCiphertext[T], params.messageBits)
	for i := 0; i < params.messageBits; i++ {
		ctBits[i] = tfhe.NewLWECiphertextCustom[T](base.LWEDimension())
		ctSelectors[i] = tfhe.NewFourierGGSWCiphertext(base, params.circuitBootstrapParameters)
	}

	return evaluationBuffer[T]{
		ctCurrent: tfhe.NewLWECiphertextCustom[T](base.GLWEDimension()),
		ctShift:   tfhe.NewLWECiphertextCustom[T](base.GLWEDimension()),
		ctSmall:   tfhe.NewLWECiphertextCustom[T](base.LWEDimension()),
		ctBit:     tfhe.NewLWECiphertextCustom[T](base.GLWEDimension()),
		lut:       tfhe.NewLookUpTable(base),

		ctGGSW: tfhe.NewGGSWCiphertext(base, params.circuitBootstrapParameters),

		ctBits:      ctBits,
		ctSelectors: ctSelectors,

		ctRotated: tfhe.NewGLWECiphertext(base),
	}
}

// ShallowCopy returns a shallow copy of this Evaluator.
// Returned Evaluator is safe for concurrent use.
func (e *Evaluator[T]) ShallowCopy() *Evaluator[T] {
	return &Evaluator[T]{
		Parameters:    e.Parameters,
		BaseEvaluator: e.BaseEvaluator.ShallowCopy(),
		EvaluationKey: e.EvaluationKey,
		buffer:        newEvaluationBuffer(e.Parameters),
	}
}

// treeBuffer returns the CMUX tree buffer with exactly size nodes.
func (e *Evaluator[T]) treeBuffer(size int) []tfhe.GLWECiphertext[T] {
	for len(e.buffer.ctTree) < size {
		e.buffer.ctTree = append(e.buffer.ctTree, tfhe.NewGLWECiphertext(e.Parameters.baseParameters))
	}
	return e.buffer.ctTree[:size]
}

// checkDimension returns a *tfhe.MismatchError wrapping err if want != got.
func checkDimension(err error, want, got int) error {
	if want != got {
		return &tfhe.MismatchError{Err: err, Want: want, Got: got}
	}
	return nil
}

// checkFourierGGSW checks that ct has the shape of a circuit bootstrapped GGSW ciphertext.
func (e *Evaluator[T]) checkFourierGGSW(ct tfhe.FourierGGSWCiphertext[T]) error {
	base := e.Parameters.baseParameters
	if err := checkDimension(tfhe.ErrGLWERankMismatch, base.GLWERank(), ct.Rank()); err != nil {
		return err
	}
	if err := checkDimension(tfhe.ErrPolyDegreeMismatch, base.PolyDegree(), ct.Degree()); err != nil {
		return err
	}
	for i := range ct.Value {
		if err := checkDimension(tfhe.ErrGadgetMismatch, ct.GadgetParameters.Level(), len(ct.Value[i].Value)); err != nil {
			return err
		}
	}
	return nil
}
