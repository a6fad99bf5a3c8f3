package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/poly"
)

// EncodeGLWE encodes up to PolyDegree integer messages into one GLWE plaintext.
// If len(messages) < PolyDegree, the leftovers are padded with zero.
// If len(messages) > PolyDegree, the leftovers are discarded.
func (e *Encryptor[T]) EncodeGLWE(messages []int) GLWEPlaintext[T] {
	pt := NewGLWEPlaintext(e.Parameters)
	e.EncodeGLWEAssign(messages, pt)
	return pt
}

// EncodeGLWEAssign encodes up to PolyDegree integer messages into one GLWE plaintext and writes it to ptOut.
func (e *Encryptor[T]) EncodeGLWEAssign(messages []int, ptOut GLWEPlaintext[T]) {
	ptOut.Value.Clear()
	for i := 0; i < len(messages) && i < e.Parameters.polyDegree; i++ {
		ptOut.Value.Coeffs[i] = e.EncodeLWE(messages[i]).Value
	}
}

// DecodeGLWE decodes a GLWE plaintext to integer messages.
func (e *Encryptor[T]) DecodeGLWE(pt GLWEPlaintext[T]) []int {
	messages := make([]int, e.Parameters.polyDegree)
	for i := range messages {
		messages[i] = e.DecodeLWE(LWEPlaintext[T]{Value: pt.Value.Coeffs[i]})
	}
	return messages
}

// EncryptGLWE encodes and encrypts integer messages to GLWE ciphertext.
func (e *Encryptor[T]) EncryptGLWE(messages []int) GLWECiphertext[T] {
	return e.EncryptGLWEPlaintext(e.EncodeGLWE(messages))
}

// EncryptGLWEPlaintext encrypts GLWE plaintext to GLWE ciphertext.
func (e *Encryptor[T]) EncryptGLWEPlaintext(pt GLWEPlaintext[T]) GLWECiphertext[T] {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.EncryptGLWEPlaintextAssign(pt, ctOut)
	return ctOut
}

// EncryptGLWEPlaintextAssign encrypts GLWE plaintext to GLWE ciphertext and writes it to ctOut.
func (e *Encryptor[T]) EncryptGLWEPlaintextAssign(pt GLWEPlaintext[T], ctOut GLWECiphertext[T]) {
	ctOut.Value[0].CopyFrom(pt.Value)
	e.EncryptGLWEBodyAssign(ctOut, e.Parameters.glweStdDevQ)
}

// EncryptGLWEList encrypts every plaintext in index order.
func (e *Encryptor[T]) EncryptGLWEList(pts []GLWEPlaintext[T]) []GLWECiphertext[T] {
	ctOut := make([]GLWECiphertext[T], len(pts))
	for i := range pts {
		ctOut[i] = e.EncryptGLWEPlaintext(pts[i])
	}
	return ctOut
}

// EncryptGLWEBodyAssign encrypts the value in the body of GLWE ciphertext and overrides it.
// This avoids the need for most buffers.
//
// After this call, ct.Value[0] = sum mask_i * S_i + (previous body) + e.
func (e *Encryptor[T]) EncryptGLWEBodyAssign(ct GLWECiphertext[T], stdDevQ float64) {
	for i := 1; i < e.Parameters.glweRank+1; i++ {
		e.UniformSampler.SampleSliceAssign(ct.Value[i].Coeffs)
	}

	for i := 1; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MulPolyAssign(ct.Value[i], e.SecretKey.GLWEKey.Value[i-1], e.buffer.pMul)
		e.PolyEvaluator.AddPolyAssign(ct.Value[0], e.buffer.pMul, ct.Value[0])
	}

	e.GaussianSampler.SampleSliceAddAssign(stdDevQ, ct.Value[0].Coeffs)
}

// DecryptGLWE decrypts and decodes GLWE ciphertext to integer message.
func (e *Encryptor[T]) DecryptGLWE(ct GLWECiphertext[T]) []int {
	return e.DecodeGLWE(e.DecryptGLWEPlaintext(ct))
}

// DecryptGLWEPlaintext decrypts GLWE ciphertext to GLWE plaintext.
func (e *Encryptor[T]) DecryptGLWEPlaintext(ct GLWECiphertext[T]) GLWEPlaintext[T] {
	ptOut := NewGLWEPlaintext(e.Parameters)
	e.DecryptGLWEPhaseAssign(ct, ptOut)
	return ptOut
}

// DecryptGLWEList decrypts every ciphertext in index order.
func (e *Encryptor[T]) DecryptGLWEList(cts []GLWECiphertext[T]) []GLWEPlaintext[T] {
	ptOut := make([]GLWEPlaintext[T], len(cts))
	for i := range cts {
		ptOut[i] = e.DecryptGLWEPlaintext(cts[i])
	}
	return ptOut
}

// DecryptGLWEPhaseAssign computes the phase body - sum mask_i * S_i of ct and writes it to ptOut.
func (e *Encryptor[T]) DecryptGLWEPhaseAssign(ct GLWECiphertext[T], ptOut GLWEPlaintext[T]) {
	ptOut.Value.CopyFrom(ct.Value[0])
	for i := 1; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MulPolyAssign(ct.Value[i], e.SecretKey.GLWEKey.Value[i-1], e.buffer.pMul)
		e.PolyEvaluator.SubPolyAssign(ptOut.Value, e.buffer.pMul, ptOut.Value)
	}
}

// EncryptGGSW encrypts integer message to GGSW ciphertext.
func (e *Encryptor[T]) EncryptGGSW(message int, gadgetParams GadgetParameters[T]) GGSWCiphertext[T] {
	pt := NewGLWEPlaintext(e.Parameters)
	pt.Value.Coeffs[0] = T(message)
	return e.EncryptGGSWPlaintext(pt, gadgetParams)
}

// EncryptGGSWPlaintext encrypts GLWE plaintext to GGSW ciphertext.
// The plaintext is used as is, without scaling.
func (e *Encryptor[T]) EncryptGGSWPlaintext(pt GLWEPlaintext[T], gadgetParams GadgetParameters[T]) GGSWCiphertext[T] {
	ctOut := NewGGSWCiphertext(e.Parameters, gadgetParams)
	e.EncryptGGSWPlaintextAssign(pt, ctOut)
	return ctOut
}

// EncryptGGSWPlaintextAssign encrypts GLWE plaintext to GGSW ciphertext and writes it to ctOut.
//
// Row 0 adds m * g_l to the body of a zero encryption,
// and row i adds m * g_l to mask polynomial i, so that its phase is -m * g_l * S_i.
func (e *Encryptor[T]) EncryptGGSWPlaintextAssign(pt GLWEPlaintext[T], ctOut GGSWCiphertext[T]) {
	gadgetParams := ctOut.GadgetParameters
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		for j := 0; j < gadgetParams.level; j++ {
			ct := ctOut.Value[i].Value[j]
			ct.Clear()
			e.EncryptGLWEBodyAssign(ct, e.Parameters.glweStdDevQ)
			e.PolyEvaluator.ScalarMulAddPolyAssign(pt.Value, gadgetParams.BaseQ(j), ct.Value[i])
		}
	}
}

// EncryptFourierGGSW encrypts integer message to a fourier transformed GGSW ciphertext.
func (e *Encryptor[T]) EncryptFourierGGSW(message int, gadgetParams GadgetParameters[T]) FourierGGSWCiphertext[T] {
	ctOut := NewFourierGGSWCiphertext(e.Parameters, gadgetParams)
	ToFourierGGSWCiphertextAssign(e.PolyEvaluator, e.EncryptGGSW(message, gadgetParams), ctOut)
	return ctOut
}

// ToFourierGGSWCiphertextAssign transforms GGSW ciphertext to the Fourier domain and writes it to ctOut.
func ToFourierGGSWCiphertextAssign[T TorusInt](pe *poly.Evaluator[T], ct GGSWCiphertext[T], ctOut FourierGGSWCiphertext[T]) {
	for i := range ct.Value {
		for j := range ct.Value[i].Value {
			for k := range ct.Value[i].Value[j].Value {
				pe.ToFourierPolyAssign(ct.Value[i].Value[j].Value[k], ctOut.Value[i].Value[j].Value[k])
			}
		}
	}
}

// DecryptGGSW decrypts the first level of the body row of a GGSW ciphertext,
// returning m such that the row encrypts m * Q / Base.
func (e *Encryptor[T]) DecryptGGSW(ct GGSWCiphertext[T]) int {
	e.DecryptGLWEPhaseAssign(ct.Value[0].Value[0], e.buffer.ptGLWE)
	return DecodeLWECustom(LWEPlaintext[T]{Value: e.buffer.ptGLWE.Value.Coeffs[0]}, ct.GadgetParameters.base, ct.GadgetParameters.FirstBaseQ())
}
