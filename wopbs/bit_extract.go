package wopbs

import (
	"fmt"

	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// ExtractBits extracts bitCount bits of ct,
// whose message occupies the bits [deltaLog, deltaLog + bitCount) of the torus.
// It panics if the arguments are invalid.
func (e *Evaluator[T]) ExtractBits(ct tfhe.LWECiphertext[T], deltaLog, bitCount int) []tfhe.LWECiphertext[T] {
	ctOut := make([]tfhe.LWECiphertext[T], bitCount)
	for i := range ctOut {
		ctOut[i] = tfhe.NewLWECiphertextCustom[T](e.Parameters.baseParameters.LWEDimension())
	}
	if err := e.ExtractBitsAssign(ct, deltaLog, bitCount, ctOut); err != nil {
		panic(err)
	}
	return ctOut
}

// ExtractBitsAssign extracts bitCount bits of ct, an LWE ciphertext under the large LWE key
// whose message occupies the bits [deltaLog, deltaLog + bitCount) of the torus,
// and writes them to ctOut.
//
// Bits are written LSB first: ctOut[i] encrypts bit i at the most significant bit,
// under the LWE key.
//
// It returns an error wrapping tfhe.ErrInvalidParameters if the bit range does not fit in T,
// tfhe.ErrBatchSizeMismatch if len(ctOut) != bitCount
// and tfhe.ErrLWEDimensionMismatch if a ciphertext or a key has the wrong dimension.
func (e *Evaluator[T]) ExtractBitsAssign(ct tfhe.LWECiphertext[T], deltaLog, bitCount int, ctOut []tfhe.LWECiphertext[T]) error {
	if deltaLog < 1 || bitCount < 1 || deltaLog+bitCount > num.SizeT[T]() {
		return fmt.Errorf("%w: cannot extract %v bits from bit %v", tfhe.ErrInvalidParameters, bitCount, deltaLog)
	}
	if err := checkDimension(tfhe.ErrBatchSizeMismatch, bitCount, len(ctOut)); err != nil {
		return err
	}
	if err := checkDimension(tfhe.ErrLWEDimensionMismatch, e.Parameters.baseParameters.GLWEDimension(), ct.Dimension()); err != nil {
		return err
	}
	for i := range ctOut {
		if err := checkDimension(tfhe.ErrLWEDimensionMismatch, e.Parameters.baseParameters.LWEDimension(), ctOut[i].Dimension()); err != nil {
			return err
		}
	}
	if err := e.checkKeySwitchKey(); err != nil {
		return err
	}
	if err := checkDimension(tfhe.ErrLWEDimensionMismatch, e.Parameters.baseParameters.LWEDimension(), len(e.EvaluationKey.BaseEvaluationKey.BlindRotateKey.Value)); err != nil {
		return err
	}

	e.ExtractBitsAssignUnsafe(ct, deltaLog, bitCount, ctOut)
	return nil
}

// ExtractBitsAssignUnsafe is the unchecked version of [*Evaluator.ExtractBitsAssign].
//
// At step i, bit i is shifted to the top and keyswitched to the LWE key.
// Unless it is the last bit, it is then bootstrapped back to the large key
// as bit * 2^(deltaLog + i) and subtracted, so that bit i + 1 becomes the lowest bit.
func (e *Evaluator[T]) ExtractBitsAssignUnsafe(ct tfhe.LWECiphertext[T], deltaLog, bitCount int, ctOut []tfhe.LWECiphertext[T]) {
	bits := num.SizeT[T]()
	eval := e.BaseEvaluator

	e.buffer.ctCurrent.CopyFrom(ct)
	for i := 0; i < bitCount; i++ {
		eval.ScalarMulLWEAssign(e.buffer.ctCurrent, T(1)<<(bits-deltaLog-i-1), e.buffer.ctShift)
		eval.KeySwitchForBootstrapAssign(e.buffer.ctShift, ctOut[i])

		if i == bitCount-1 {
			break
		}

		// Constant LUT -c gives -c for bit 0 and c for bit 1.
		c := T(1) << (deltaLog + i - 1)
		eval.PlaintextAddLWEAssign(ctOut[i], T(1)<<(bits-2), e.buffer.ctSmall)
		eval.GenLookUpTableConstantAssign(-c, e.buffer.lut)
		eval.BootstrapLUTToLargeKeyAssign(e.buffer.ctSmall, e.buffer.lut, e.buffer.ctBit)
		eval.PlaintextAddLWEAssign(e.buffer.ctBit, c, e.buffer.ctBit)
		eval.SubLWEAssign(e.buffer.ctCurrent, e.buffer.ctBit, e.buffer.ctCurrent)
	}
}
