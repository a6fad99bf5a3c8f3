package tfhe

import (
	"runtime"
	"sync"

	"github.com/snucp/tfhe-wopbs/math/poly"
)

// GenEvaluationKey samples a new evaluation key for bootstrapping.
//
// This can take a long time.
// Use [*Encryptor.GenEvaluationKeyParallel] for better key generation performance.
func (e *Encryptor[T]) GenEvaluationKey() EvaluationKey[T] {
	return EvaluationKey[T]{
		BlindRotateKey: e.GenFourierBootstrapKey(),
		KeySwitchKey:   e.GenKeySwitchKeyForBootstrap(),
	}
}

// GenEvaluationKeyParallel samples a new evaluation key for bootstrapping in parallel.
func (e *Encryptor[T]) GenEvaluationKeyParallel() EvaluationKey[T] {
	return EvaluationKey[T]{
		BlindRotateKey: e.GenFourierBootstrapKeyParallel(),
		KeySwitchKey:   e.GenKeySwitchKeyForBootstrap(),
	}
}

// GenBootstrapKey samples a new bootstrapping key in the coefficient domain.
// The i-th GGSW ciphertext encrypts the i-th bit of the LWE key.
func (e *Encryptor[T]) GenBootstrapKey() BootstrapKey[T] {
	bsk := NewBootstrapKey(e.Parameters)
	e.genBootstrapKeyRange(bsk, 0, e.Parameters.lweDimension)
	return bsk
}

// genBootstrapKeyRange encrypts the key bits in [start, end) to bsk.
func (e *Encryptor[T]) genBootstrapKeyRange(bsk BootstrapKey[T], start, end int) {
	for i := start; i < end; i++ {
		e.buffer.ptGLWE.Value.Clear()
		e.buffer.ptGLWE.Value.Coeffs[0] = e.SecretKey.LWEKey.Value[i]
		e.EncryptGGSWPlaintextAssign(e.buffer.ptGLWE, bsk.Value[i])
	}
}

// GenFourierBootstrapKey samples a new bootstrapping key in the Fourier domain.
func (e *Encryptor[T]) GenFourierBootstrapKey() FourierBootstrapKey[T] {
	return e.ToFourierBootstrapKey(e.GenBootstrapKey())
}

// GenFourierBootstrapKeyParallel samples a new bootstrapping key in the Fourier domain in parallel.
// Each key bit is encrypted with samplers forked for its index,
// so the result does not depend on the number of workers.
func (e *Encryptor[T]) GenFourierBootstrapKeyParallel() FourierBootstrapKey[T] {
	bsk := NewBootstrapKey(e.Parameters)
	root := e.forkRoot()

	workSize := runtime.NumCPU()
	chunkSize := (e.Parameters.lweDimension + workSize - 1) / workSize

	var wg sync.WaitGroup
	for start := 0; start < e.Parameters.lweDimension; start += chunkSize {
		end := start + chunkSize
		if end > e.Parameters.lweDimension {
			end = e.Parameters.lweDimension
		}

		wg.Add(1)
		go func(encryptor *Encryptor[T], start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				encryptor.reseed(root, i)
				encryptor.genBootstrapKeyRange(bsk, i, i+1)
			}
		}(e.forkedCopy(root, start), start, end)
	}
	wg.Wait()

	return e.ToFourierBootstrapKey(bsk)
}

// ToFourierBootstrapKey transforms a bootstrapping key to the Fourier domain.
func (e *Encryptor[T]) ToFourierBootstrapKey(bsk BootstrapKey[T]) FourierBootstrapKey[T] {
	fbsk := NewFourierBootstrapKey(e.Parameters)
	for i := range bsk.Value {
		ToFourierGGSWCiphertextAssign(e.PolyEvaluator, bsk.Value[i], fbsk.Value[i])
	}
	return fbsk
}

// GenKeySwitchKeyForBootstrap samples a new keyswitching key from
// the tail of the large LWE key to the LWE key.
func (e *Encryptor[T]) GenKeySwitchKeyForBootstrap() LWEKeySwitchKey[T] {
	skIn := LWESecretKey[T]{Value: e.SecretKey.LWELargeKey.Value[e.Parameters.lweDimension:]}
	return e.GenLWEKeySwitchKey(skIn, e.SecretKey.LWEKey, e.Parameters.keySwitchParameters)
}

// GenLWEKeySwitchKey samples a new keyswitching key from skIn to skOut.
// Errors are sampled with LWEStdDev if skOut has length LWEDimension, and GLWEStdDev otherwise.
func (e *Encryptor[T]) GenLWEKeySwitchKey(skIn, skOut LWESecretKey[T], gadgetParams GadgetParameters[T]) LWEKeySwitchKey[T] {
	stdDevQ := e.Parameters.glweStdDevQ
	if len(skOut.Value) == e.Parameters.lweDimension {
		stdDevQ = e.Parameters.lweStdDevQ
	}

	ksk := NewLWEKeySwitchKey(len(skIn.Value), len(skOut.Value), gadgetParams)
	for i := range skIn.Value {
		for j := 0; j < gadgetParams.level; j++ {
			ct := ksk.Value[i].Value[j]
			ct.Clear()
			ct.Value[0] = skIn.Value[i] * gadgetParams.BaseQ(j)
			e.EncryptLWEBodyAssign(ct, skOut, stdDevQ)
		}
	}
	return ksk
}

// GenGLWEPackingKeySwitchKey samples a new packing keyswitching key from skIn to the GLWE key.
func (e *Encryptor[T]) GenGLWEPackingKeySwitchKey(skIn LWESecretKey[T], gadgetParams GadgetParameters[T]) GLWEPackingKeySwitchKey[T] {
	pksk := NewGLWEPackingKeySwitchKey(e.Parameters, len(skIn.Value), gadgetParams)
	for i := range skIn.Value {
		for j := 0; j < gadgetParams.level; j++ {
			ct := pksk.Value[i].Value[j]
			ct.Clear()
			ct.Value[0].Coeffs[0] = skIn.Value[i] * gadgetParams.BaseQ(j)
			e.EncryptGLWEBodyAssign(ct, e.Parameters.glweStdDevQ)
		}
	}
	return pksk
}

// GenPrivateFunctionalKeySwitchKey samples a new private functional keyswitching key
// from skIn to the GLWE key, evaluating the linear function f and multiplying by p.
//
// The block of the body uses the key element -1,
// so that keyswitching a ciphertext of phase m yields a GLWE ciphertext of phase f(m) * p.
func (e *Encryptor[T]) GenPrivateFunctionalKeySwitchKey(skIn LWESecretKey[T], f func(T) T, p poly.Poly[T], gadgetParams GadgetParameters[T]) PrivateFunctionalKeySwitchKey[T] {
	pfksk := NewPrivateFunctionalKeySwitchKey(e.Parameters, len(skIn.Value), gadgetParams)
	for t := range pfksk.Value {
		keyElem := ^T(0)
		if t > 0 {
			keyElem = skIn.Value[t-1]
		}
		fk := f(keyElem)

		for j := 0; j < gadgetParams.level; j++ {
			ct := pfksk.Value[t].Value[j]
			ct.Clear()
			e.PolyEvaluator.ScalarMulPolyAssign(p, fk*gadgetParams.BaseQ(j), ct.Value[0])
			e.EncryptGLWEBodyAssign(ct, e.Parameters.glweStdDevQ)
		}
	}
	return pfksk
}
