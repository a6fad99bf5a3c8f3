package wopbs

import (
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// GenLookUpTable generates a lookup table for WoP-PBS based on function f.
// Input of f ranges over [0, 2^MessageBits), and output is encoded with
// the MessageModulus and Scale of the base parameters.
func (e *Evaluator[T]) GenLookUpTable(f func(int) int) []T {
	return e.GenLookUpTableMany(f)
}

// GenLookUpTableMany generates a lookup table for multi-output WoP-PBS.
// Segment i of the lookup table is the table of fs[i].
func (e *Evaluator[T]) GenLookUpTableMany(fs ...func(int) int) []T {
	size := e.Parameters.LookUpTableSize()
	base := e.Parameters.baseParameters

	lut := make([]T, len(fs)*size)
	for i, f := range fs {
		for x := 0; x < size; x++ {
			lut[i*size+x] = tfhe.EncodeLWECustom(f(x), base.MessageModulus(), base.Scale()).Value
		}
	}
	return lut
}

// WoPBSFunc returns the evaluation of f on the message of ct.
func (e *Evaluator[T]) WoPBSFunc(ct tfhe.LWECiphertext[T], f func(int) int) tfhe.LWECiphertext[T] {
	return e.WoPBS(ct, e.GenLookUpTable(f))
}

// WoPBS returns the evaluation of lut on the message of ct.
// It panics if the arguments are invalid.
func (e *Evaluator[T]) WoPBS(ct tfhe.LWECiphertext[T], lut []T) tfhe.LWECiphertext[T] {
	ctOut := tfhe.NewLWECiphertextCustom[T](e.Parameters.baseParameters.GLWEDimension())
	if err := e.WoPBSAssign(ct, lut, ctOut); err != nil {
		panic(err)
	}
	return ctOut
}

// WoPBSAssign evaluates lut on the message of ct and writes the result to ctOut.
// ct and ctOut are LWE ciphertexts under the large LWE key,
// and lut has 2^MessageBits entries.
//
// Unlike the programmable bootstrapping of the base scheme,
// lut need not be negacyclic.
func (e *Evaluator[T]) WoPBSAssign(ct tfhe.LWECiphertext[T], lut []T, ctOut tfhe.LWECiphertext[T]) error {
	return e.WoPBSManyAssign(ct, lut, []tfhe.LWECiphertext[T]{ctOut})
}

// WoPBSManyAssign evaluates every segment of lut on the message of ct,
// sharing bit extraction and circuit bootstrapping between them.
// lut holds len(ctOut) segments of 2^MessageBits entries, and ctOut[i] encrypts segment i.
//
// It returns an error wrapping tfhe.ErrLWEDimensionMismatch if a ciphertext
// has the wrong dimension, and tfhe.ErrLUTSizeMismatch if lut has the wrong length.
func (e *Evaluator[T]) WoPBSManyAssign(ct tfhe.LWECiphertext[T], lut []T, ctOut []tfhe.LWECiphertext[T]) error {
	base := e.Parameters.baseParameters
	if err := checkDimension(tfhe.ErrLWEDimensionMismatch, base.GLWEDimension(), ct.Dimension()); err != nil {
		return err
	}
	if err := checkDimension(tfhe.ErrLUTSizeMismatch, len(ctOut)*e.Parameters.LookUpTableSize(), len(lut)); err != nil {
		return err
	}
	for i := range ctOut {
		if err := checkDimension(tfhe.ErrLWEDimensionMismatch, base.GLWEDimension(), ctOut[i].Dimension()); err != nil {
			return err
		}
	}
	if err := e.checkKeySwitchKey(); err != nil {
		return err
	}
	if err := e.checkCircuitBootstrap(e.buffer.ctBits[0], e.Parameters.circuitBootstrapParameters); err != nil {
		return err
	}

	e.WoPBSManyAssignUnsafe(ct, lut, ctOut)
	return nil
}

// WoPBSManyAssignUnsafe is the unchecked version of [*Evaluator.WoPBSManyAssign].
func (e *Evaluator[T]) WoPBSManyAssignUnsafe(ct tfhe.LWECiphertext[T], lut []T, ctOut []tfhe.LWECiphertext[T]) {
	r := e.Parameters.messageBits
	e.ExtractBitsAssignUnsafe(ct, e.Parameters.deltaLog, r, e.buffer.ctBits)
	for i := 0; i < r; i++ {
		e.CircuitBootstrapAssignUnsafe(e.buffer.ctBits[i], e.buffer.ctSelectors[r-1-i])
	}
	e.VerticalPackingAssignUnsafe(e.buffer.ctSelectors, lut, ctOut)
}
