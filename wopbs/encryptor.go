package wopbs

import (
	"sync"

	"github.com/snucp/tfhe-wopbs/math/poly"
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// Encryptor encrypts and decrypts messages for WoP-PBS,
// and generates the evaluation keys.
//
// Encryptor is not safe for concurrent use.
// Use [*Encryptor.ShallowCopy] to get a safe copy.
type Encryptor[T tfhe.TorusInt] struct {
	// Parameters is the parameters for this Encryptor.
	Parameters Parameters[T]

	// BaseEncryptor is the encryptor of the underlying scheme.
	// Its SecretKey is the secret key of this Encryptor.
	BaseEncryptor *tfhe.Encryptor[T]
}

// NewEncryptor returns an initialized Encryptor with given parameters.
// It also automatically samples LWE and GLWE key.
func NewEncryptor[T tfhe.TorusInt](params Parameters[T]) *Encryptor[T] {
	return &Encryptor[T]{
		Parameters:    params,
		BaseEncryptor: tfhe.NewEncryptor(params.baseParameters),
	}
}

// NewEncryptorWithSeed returns an initialized Encryptor whose samplers are derived from seed.
func NewEncryptorWithSeed[T tfhe.TorusInt](params Parameters[T], seed []byte) *Encryptor[T] {
	return &Encryptor[T]{
		Parameters:    params,
		BaseEncryptor: tfhe.NewEncryptorWithSeed(params.baseParameters, seed),
	}
}

// ShallowCopy returns a shallow copy of this Encryptor.
// Returned Encryptor is safe for concurrent use.
func (e *Encryptor[T]) ShallowCopy() *Encryptor[T] {
	return &Encryptor[T]{
		Parameters:    e.Parameters,
		BaseEncryptor: e.BaseEncryptor.ShallowCopy(),
	}
}

// EncryptLWE encrypts an integer message in [0, 2^MessageBits)
// to an LWE ciphertext under the large LWE key.
func (e *Encryptor[T]) EncryptLWE(message int) tfhe.LWECiphertext[T] {
	return e.BaseEncryptor.EncryptLWE(message)
}

// DecryptLWE decrypts an LWE ciphertext under the large LWE key to an integer message.
func (e *Encryptor[T]) DecryptLWE(ct tfhe.LWECiphertext[T]) int {
	return e.BaseEncryptor.DecryptLWE(ct)
}

// GenEvaluationKey samples a new evaluation key for WoP-PBS.
//
// This can take a long time.
// Use [*Encryptor.GenEvaluationKeyParallel] for better key generation performance.
func (e *Encryptor[T]) GenEvaluationKey() EvaluationKey[T] {
	return EvaluationKey[T]{
		BaseEvaluationKey:   e.BaseEncryptor.GenEvaluationKey(),
		CircuitBootstrapKey: e.GenCircuitBootstrapKey(),
	}
}

// GenEvaluationKeyParallel samples a new evaluation key for WoP-PBS in parallel.
func (e *Encryptor[T]) GenEvaluationKeyParallel() EvaluationKey[T] {
	return EvaluationKey[T]{
		BaseEvaluationKey:   e.BaseEncryptor.GenEvaluationKeyParallel(),
		CircuitBootstrapKey: e.GenCircuitBootstrapKeyParallel(),
	}
}

// GenCircuitBootstrapKey samples a new circuit bootstrapping key.
func (e *Encryptor[T]) GenCircuitBootstrapKey() CircuitBootstrapKey[T] {
	cbsk := CircuitBootstrapKey[T]{Value: make([]tfhe.PrivateFunctionalKeySwitchKey[T], e.Parameters.baseParameters.GLWERank()+1)}
	for i := range cbsk.Value {
		cbsk.Value[i] = e.genCircuitBootstrapKeyRow(e.BaseEncryptor, i)
	}
	return cbsk
}

// GenCircuitBootstrapKeyParallel samples a new circuit bootstrapping key,
// generating each row in its own goroutine.
func (e *Encryptor[T]) GenCircuitBootstrapKeyParallel() CircuitBootstrapKey[T] {
	cbsk := CircuitBootstrapKey[T]{Value: make([]tfhe.PrivateFunctionalKeySwitchKey[T], e.Parameters.baseParameters.GLWERank()+1)}

	encryptors := e.BaseEncryptor.ForkedCopies(len(cbsk.Value))

	var wg sync.WaitGroup
	for i := range cbsk.Value {
		wg.Add(1)
		go func(encryptor *tfhe.Encryptor[T], i int) {
			defer wg.Done()
			cbsk.Value[i] = e.genCircuitBootstrapKeyRow(encryptor, i)
		}(encryptors[i], i)
	}
	wg.Wait()

	return cbsk
}

// genCircuitBootstrapKeyRow samples the keyswitching key filling row i of a GGSW ciphertext.
func (e *Encryptor[T]) genCircuitBootstrapKeyRow(encryptor *tfhe.Encryptor[T], i int) tfhe.PrivateFunctionalKeySwitchKey[T] {
	sk := encryptor.SecretKey
	pfksParams := e.Parameters.privateKeySwitchParameters

	if i == 0 {
		one := poly.NewPoly[T](e.Parameters.baseParameters.PolyDegree())
		one.Coeffs[0] = 1
		return encryptor.GenPrivateFunctionalKeySwitchKey(sk.LWELargeKey, func(x T) T { return x }, one, pfksParams)
	}
	return encryptor.GenPrivateFunctionalKeySwitchKey(sk.LWELargeKey, func(x T) T { return -x }, sk.GLWEKey.Value[i-1], pfksParams)
}
