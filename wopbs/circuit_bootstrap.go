package wopbs

import (
	"fmt"

	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// CircuitBootstrap returns the circuit bootstrapping of ct
// as a GGSW ciphertext in the Fourier domain.
func (e *Evaluator[T]) CircuitBootstrap(ct tfhe.LWECiphertext[T]) tfhe.FourierGGSWCiphertext[T] {
	ctOut := tfhe.NewFourierGGSWCiphertext(e.Parameters.baseParameters, e.Parameters.circuitBootstrapParameters)
	e.CircuitBootstrapAssignUnsafe(ct, ctOut)
	return ctOut
}

// CircuitBootstrapAssign converts ct, an LWE ciphertext under the LWE key
// encrypting a bit b at the most significant bit, to a GGSW ciphertext encrypting b,
// and writes it to ctOut in the Fourier domain.
// ctOut must use the CircuitBootstrapParameters of the Evaluator.
//
// It returns an error wrapping tfhe.ErrLWEDimensionMismatch, tfhe.ErrGLWERankMismatch,
// tfhe.ErrPolyDegreeMismatch or tfhe.ErrGadgetMismatch if the shapes do not match.
func (e *Evaluator[T]) CircuitBootstrapAssign(ct tfhe.LWECiphertext[T], ctOut tfhe.FourierGGSWCiphertext[T]) error {
	if err := e.checkCircuitBootstrap(ct, ctOut.GadgetParameters); err != nil {
		return err
	}
	if err := e.checkFourierGGSW(ctOut); err != nil {
		return err
	}
	e.CircuitBootstrapAssignUnsafe(ct, ctOut)
	return nil
}

// CircuitBootstrapAssignUnsafe is the unchecked version of [*Evaluator.CircuitBootstrapAssign].
func (e *Evaluator[T]) CircuitBootstrapAssignUnsafe(ct tfhe.LWECiphertext[T], ctOut tfhe.FourierGGSWCiphertext[T]) {
	ctGGSW := e.buffer.ctGGSW
	if ctGGSW.GadgetParameters != ctOut.GadgetParameters {
		ctGGSW = tfhe.NewGGSWCiphertext(e.Parameters.baseParameters, ctOut.GadgetParameters)
	}
	e.circuitBootstrapAssign(ct, ctGGSW)
	tfhe.ToFourierGGSWCiphertextAssign(e.BaseEvaluator.PolyEvaluator, ctGGSW, ctOut)
}

// CircuitBootstrapToGGSWAssign is the coefficient domain version of [*Evaluator.CircuitBootstrapAssign].
func (e *Evaluator[T]) CircuitBootstrapToGGSWAssign(ct tfhe.LWECiphertext[T], ctOut tfhe.GGSWCiphertext[T]) error {
	if err := e.checkCircuitBootstrap(ct, ctOut.GadgetParameters); err != nil {
		return err
	}
	if err := checkDimension(tfhe.ErrGLWERankMismatch, e.Parameters.baseParameters.GLWERank()+1, len(ctOut.Value)); err != nil {
		return err
	}
	e.circuitBootstrapAssign(ct, ctOut)
	return nil
}

// circuitBootstrapAssign fills ctOut level by level.
//
// For level l, the bit is bootstrapped to b * g_l under the large LWE key,
// where g_l = Q / Base^(l+1), and every row of ctOut is filled
// by the private functional keyswitching key of that row.
func (e *Evaluator[T]) circuitBootstrapAssign(ct tfhe.LWECiphertext[T], ctOut tfhe.GGSWCiphertext[T]) {
	eval := e.BaseEvaluator
	cbsk := e.EvaluationKey.CircuitBootstrapKey

	eval.PlaintextAddLWEAssign(ct, T(1)<<(num.SizeT[T]()-2), e.buffer.ctSmall)
	for l := 0; l < ctOut.GadgetParameters.Level(); l++ {
		c := ctOut.GadgetParameters.BaseQ(l) >> 1
		eval.GenLookUpTableConstantAssign(-c, e.buffer.lut)
		eval.BootstrapLUTToLargeKeyAssign(e.buffer.ctSmall, e.buffer.lut, e.buffer.ctBit)
		eval.PlaintextAddLWEAssign(e.buffer.ctBit, c, e.buffer.ctBit)

		for i := range ctOut.Value {
			eval.PrivateFunctionalKeySwitchAssignUnsafe(cbsk.Value[i], e.buffer.ctBit, ctOut.Value[i].Value[l])
		}
	}
}

// checkCircuitBootstrap checks the input of a circuit bootstrapping and the keys it needs.
func (e *Evaluator[T]) checkCircuitBootstrap(ct tfhe.LWECiphertext[T], gadgetParams tfhe.GadgetParameters[T]) error {
	base := e.Parameters.baseParameters
	if err := checkDimension(tfhe.ErrLWEDimensionMismatch, base.LWEDimension(), ct.Dimension()); err != nil {
		return err
	}
	if err := checkDimension(tfhe.ErrLWEDimensionMismatch, base.LWEDimension(), len(e.EvaluationKey.BaseEvaluationKey.BlindRotateKey.Value)); err != nil {
		return err
	}
	if err := checkDimension(tfhe.ErrGLWERankMismatch, base.GLWERank()+1, len(e.EvaluationKey.CircuitBootstrapKey.Value)); err != nil {
		return err
	}
	for _, pfksk := range e.EvaluationKey.CircuitBootstrapKey.Value {
		if err := checkDimension(tfhe.ErrLWEDimensionMismatch, base.GLWEDimension(), pfksk.InputDimension()); err != nil {
			return err
		}
	}
	if gadgetParams != e.Parameters.circuitBootstrapParameters {
		return fmt.Errorf("%w: circuit bootstrapping outputs base %v level %v, got base %v level %v", tfhe.ErrGadgetMismatch,
			e.Parameters.circuitBootstrapParameters.Base(), e.Parameters.circuitBootstrapParameters.Level(), gadgetParams.Base(), gadgetParams.Level())
	}
	return nil
}

// checkKeySwitchKey checks that the keyswitching key of the base evaluation key
// switches the tail of the large LWE key to the LWE key.
func (e *Evaluator[T]) checkKeySwitchKey() error {
	base := e.Parameters.baseParameters
	ksk := e.EvaluationKey.BaseEvaluationKey.KeySwitchKey
	if err := checkDimension(tfhe.ErrLWEDimensionMismatch, base.GLWEDimension()-base.LWEDimension(), ksk.InputDimension()); err != nil {
		return err
	}
	for _, lev := range ksk.Value {
		if err := checkDimension(tfhe.ErrGadgetMismatch, ksk.GadgetParameters.Level(), len(lev.Value)); err != nil {
			return err
		}
		for _, ct := range lev.Value {
			if err := checkDimension(tfhe.ErrLWEDimensionMismatch, base.LWEDimension(), ct.Dimension()); err != nil {
				return err
			}
		}
	}
	return nil
}
