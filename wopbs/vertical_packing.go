package wopbs

import (
	"fmt"

	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// VerticalPacking returns the evaluation of lut at the integer
// whose bits are encrypted in ctSelectors, most significant bit first.
// It panics if the arguments are invalid.
func (e *Evaluator[T]) VerticalPacking(ctSelectors []tfhe.FourierGGSWCiphertext[T], lut []T) tfhe.LWECiphertext[T] {
	ctOut := tfhe.NewLWECiphertextCustom[T](e.Parameters.baseParameters.GLWEDimension())
	if err := e.VerticalPackingAssign(ctSelectors, lut, []tfhe.LWECiphertext[T]{ctOut}); err != nil {
		panic(err)
	}
	return ctOut
}

// VerticalPackingAssign evaluates lut at the integer x whose r bits are encrypted
// in ctSelectors, most significant bit first, and writes the results to ctOut
// as LWE ciphertexts under the large LWE key.
//
// lut holds len(ctOut) segments of 2^r entries, one after another,
// and ctOut[i] encrypts lut[i * 2^r + x]. Entries are used as is, without encoding.
//
// It returns an error wrapping tfhe.ErrBatchSizeMismatch if there are no selectors or outputs,
// tfhe.ErrLUTSizeMismatch if len(lut) != len(ctOut) * 2^r,
// and a shape error if a ciphertext does not match the parameters.
func (e *Evaluator[T]) VerticalPackingAssign(ctSelectors []tfhe.FourierGGSWCiphertext[T], lut []T, ctOut []tfhe.LWECiphertext[T]) error {
	r := len(ctSelectors)
	if r == 0 || len(ctOut) == 0 {
		return fmt.Errorf("%w: vertical packing needs at least one selector and one output", tfhe.ErrBatchSizeMismatch)
	}
	if r >= num.SizeT[int]()-1 {
		return fmt.Errorf("%w: %v selectors are too many", tfhe.ErrLUTSizeMismatch, r)
	}
	if err := checkDimension(tfhe.ErrLUTSizeMismatch, len(ctOut)<<r, len(lut)); err != nil {
		return err
	}
	for _, ct := range ctSelectors {
		if err := e.checkFourierGGSW(ct); err != nil {
			return err
		}
	}
	for _, ct := range ctOut {
		if err := checkDimension(tfhe.ErrLWEDimensionMismatch, e.Parameters.baseParameters.GLWEDimension(), ct.Dimension()); err != nil {
			return err
		}
	}

	e.VerticalPackingAssignUnsafe(ctSelectors, lut, ctOut)
	return nil
}

// VerticalPackingAssignUnsafe is the unchecked version of [*Evaluator.VerticalPackingAssign].
func (e *Evaluator[T]) VerticalPackingAssignUnsafe(ctSelectors []tfhe.FourierGGSWCiphertext[T], lut []T, ctOut []tfhe.LWECiphertext[T]) {
	size := 1 << len(ctSelectors)
	for i := range ctOut {
		e.verticalPackingAssign(ctSelectors, lut[i*size:(i+1)*size], ctOut[i])
	}
}

// verticalPackingAssign evaluates a single segment of 2^r entries.
//
// The low min(r, log N) bits index a coefficient inside a polynomial,
// and the remaining high bits index a polynomial.
// The polynomial is first selected by a CMUX tree over the high bits,
// and then rotated by X^(-2^j) for every low bit j set, with a CMUX ladder.
// The constant coefficient of the result is lut[x].
func (e *Evaluator[T]) verticalPackingAssign(ctSelectors []tfhe.FourierGGSWCiphertext[T], lut []T, ctOut tfhe.LWECiphertext[T]) {
	eval := e.BaseEvaluator
	r := len(ctSelectors)
	lowBits := num.Min(r, e.Parameters.baseParameters.LogPolyDegree())
	chunkSize := 1 << lowBits

	// Bit j of x is selected by ctSelectors[r-1-j].
	tree := e.treeBuffer(1 << (r - lowBits))
	for i := range tree {
		tree[i].Clear()
		copy(tree[i].Value[0].Coeffs, lut[i*chunkSize:(i+1)*chunkSize])
	}

	for j, size := lowBits, len(tree); size > 1; j, size = j+1, size/2 {
		for i := 0; i < size/2; i++ {
			eval.CMuxAssignUnsafe(ctSelectors[r-1-j], tree[2*i], tree[2*i+1], tree[i])
		}
	}

	ctAcc := tree[0]
	for j := 0; j < lowBits; j++ {
		eval.MonomialMulGLWEAssign(ctAcc, -(1 << j), e.buffer.ctRotated)
		eval.CMuxAssignUnsafe(ctSelectors[r-1-j], ctAcc, e.buffer.ctRotated, ctAcc)
	}

	eval.SampleExtractAssign(ctAcc, 0, ctOut)
}
