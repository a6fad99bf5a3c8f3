package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/csprng"
	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/poly"
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// Encryptor encrypts and decrypts TFHE plaintexts and ciphertexts.
// This is meant to be private, only for clients.
//
// Encryptor is not safe for concurrent use.
// Use [*Encryptor.ShallowCopy] to get a safe copy.
type Encryptor[T TorusInt] struct {
	// Parameters is the parameters for this Encryptor.
	Parameters Parameters[T]

	// UniformSampler is used for sampling the mask of encryptions.
	UniformSampler *csprng.UniformSampler[T]
	// BinarySampler is used for sampling secret keys.
	BinarySampler *csprng.BinarySampler[T]
	// GaussianSampler is used for sampling noise.
	GaussianSampler *csprng.GaussianSampler[T]

	// PolyEvaluator is a PolyEvaluator for this Encryptor.
	PolyEvaluator *poly.Evaluator[T]

	// SecretKey is the secret key for this Encryptor.
	// This is shared with ShallowCopy.
	SecretKey SecretKey[T]

	buffer encryptionBuffer[T]
}

// encryptionBuffer contains buffer values for Encryptor.
type encryptionBuffer[T TorusInt] struct {
	// ptGLWE holds a GLWE plaintext for GLWE encryption / decryptions.
	ptGLWE GLWEPlaintext[T]
	// pMul holds a polynomial product.
	pMul poly.Poly[T]
}

// NewEncryptor returns an initialized Encryptor with given parameters.
// It also automatically samples LWE and GLWE key.
func NewEncryptor[T TorusInt](params Parameters[T]) *Encryptor[T] {
	encryptor := Encryptor[T]{
		Parameters: params,

		UniformSampler:  csprng.NewUniformSampler[T](),
		BinarySampler:   csprng.NewBinarySampler[T](),
		GaussianSampler: csprng.NewGaussianSampler[T](),

		PolyEvaluator: poly.NewEvaluator[T](params.polyDegree),

		buffer: newEncryptionBuffer(params),
	}

	encryptor.SecretKey = encryptor.GenSecretKey()
	return &encryptor
}

// NewEncryptorWithSeed returns an initialized Encryptor whose samplers
// are derived from seed. Two encryptors with the same seed produce the same keys
// and the same ciphertexts, which is useful for reproducible tests.
func NewEncryptorWithSeed[T TorusInt](params Parameters[T], seed []byte) *Encryptor[T] {
	base := csprng.NewUniformSamplerWithSeed[T](seed)

	encryptor := Encryptor[T]{
		Parameters: params,

		UniformSampler:  base.Fork(0),
		BinarySampler:   csprng.NewBinarySamplerWithSeed[T](base.Fork(1).Seed()),
		GaussianSampler: csprng.NewGaussianSamplerWithSeed[T](base.Fork(2).Seed()),

		PolyEvaluator: poly.NewEvaluator[T](params.polyDegree),

		buffer: newEncryptionBuffer(params),
	}

	encryptor.SecretKey = encryptor.GenSecretKey()
	return &encryptor
}

// NewEncryptorWithKey returns an initialized Encryptor with given parameters and key.
// This does not copy the secret key.
func NewEncryptorWithKey[T TorusInt](params Parameters[T], sk SecretKey[T]) *Encryptor[T] {
	return &Encryptor[T]{
		Parameters: params,

		UniformSampler:  csprng.NewUniformSampler[T](),
		BinarySampler:   csprng.NewBinarySampler[T](),
		GaussianSampler: csprng.NewGaussianSampler[T](),

		PolyEvaluator: poly.NewEvaluator[T](params.polyDegree),

		SecretKey: sk,

		buffer: newEncryptionBuffer(params),
	}
}

// newEncryptionBuffer allocates an empty encryptionBuffer.
func newEncryptionBuffer[T TorusInt](params Parameters[T]) encryptionBuffer[T] {
	return encryptionBuffer[T]{
		ptGLWE: NewGLWEPlaintext(params),
		pMul:   poly.NewPoly[T](params.polyDegree),
	}
}

// ShallowCopy returns a shallow copy of this Encryptor.
// Returned Encryptor is safe for concurrent use.
// Samplers are reseeded from the operating system.
func (e *Encryptor[T]) ShallowCopy() *Encryptor[T] {
	return &Encryptor[T]{
		Parameters: e.Parameters,

		UniformSampler:  csprng.NewUniformSampler[T](),
		BinarySampler:   csprng.NewBinarySampler[T](),
		GaussianSampler: csprng.NewGaussianSampler[T](),

		PolyEvaluator: e.PolyEvaluator.ShallowCopy(),

		SecretKey: e.SecretKey,

		buffer: newEncryptionBuffer(e.Parameters),
	}
}

// ForkedCopies returns n shallow copies of this Encryptor for parallel workers.
// Their samplers are forked from a seed drawn from UniformSampler,
// so encryptors created with the same seed return the same copies.
func (e *Encryptor[T]) ForkedCopies(n int) []*Encryptor[T] {
	root := e.forkRoot()
	copies := make([]*Encryptor[T], n)
	for i := range copies {
		copies[i] = e.forkedCopy(root, i)
	}
	return copies
}

// forkRoot draws a seed from UniformSampler and returns a sampler to fork worker streams from.
func (e *Encryptor[T]) forkRoot() *csprng.UniformSampler[T] {
	seed := make([]byte, csprng.SeedSize)
	e.UniformSampler.Read(seed)
	return csprng.NewUniformSamplerWithSeed[T](seed)
}

// forkedCopy returns a shallow copy of this Encryptor with samplers forked from root at index i.
func (e *Encryptor[T]) forkedCopy(root *csprng.UniformSampler[T], i int) *Encryptor[T] {
	encryptor := &Encryptor[T]{
		Parameters: e.Parameters,

		PolyEvaluator: e.PolyEvaluator.ShallowCopy(),

		SecretKey: e.SecretKey,

		buffer: newEncryptionBuffer(e.Parameters),
	}
	encryptor.reseed(root, i)
	return encryptor
}

// reseed replaces the samplers with streams forked from root at index i.
func (e *Encryptor[T]) reseed(root *csprng.UniformSampler[T], i int) {
	e.UniformSampler = root.Fork(3 * i)
	e.BinarySampler = csprng.NewBinarySamplerWithSeed[T](root.Fork(3*i + 1).Seed())
	e.GaussianSampler = csprng.NewGaussianSamplerWithSeed[T](root.Fork(3*i + 2).Seed())
}

// GenSecretKey samples a new SecretKey.
// The SecretKey of the Encryptor is not changed.
func (e *Encryptor[T]) GenSecretKey() SecretKey[T] {
	sk := NewSecretKey(e.Parameters)
	e.BinarySampler.SampleSliceAssign(sk.LWELargeKey.Value)
	for i := 0; i < e.Parameters.glweRank; i++ {
		e.PolyEvaluator.ToFourierPolyAssign(sk.GLWEKey.Value[i], sk.FourierGLWEKey.Value[i])
	}
	return sk
}

// EncodeLWE encodes an integer message to LWE plaintext.
// Message will get wrapped around MessageModulus.
func (e *Encryptor[T]) EncodeLWE(message int) LWEPlaintext[T] {
	return EncodeLWECustom(message, e.Parameters.messageModulus, e.Parameters.scale)
}

// EncodeLWECustom encodes an integer message to LWE plaintext
// using custom MessageModulus and Scale.
// Message will get wrapped around messageModulus.
func EncodeLWECustom[T TorusInt](message int, messageModulus, scale T) LWEPlaintext[T] {
	m := message % int(messageModulus)
	if m < 0 {
		m += int(messageModulus)
	}
	return LWEPlaintext[T]{Value: T(m) * scale}
}

// DecodeLWE decodes the LWE plaintext into integer message.
func (e *Encryptor[T]) DecodeLWE(pt LWEPlaintext[T]) int {
	return DecodeLWECustom(pt, e.Parameters.messageModulus, e.Parameters.scale)
}

// DecodeLWECustom decodes the LWE plaintext into integer message
// using custom MessageModulus and Scale.
func DecodeLWECustom[T TorusInt](pt LWEPlaintext[T], messageModulus, scale T) int {
	return int(num.DivRound(pt.Value, scale) % messageModulus)
}

// EncryptLWE encodes and encrypts integer message to LWE ciphertext
// under the default LWE key.
func (e *Encryptor[T]) EncryptLWE(message int) LWECiphertext[T] {
	return e.EncryptLWEPlaintext(e.EncodeLWE(message))
}

// EncryptLWEPlaintext encrypts LWE plaintext to LWE ciphertext
// under the default LWE key.
func (e *Encryptor[T]) EncryptLWEPlaintext(pt LWEPlaintext[T]) LWECiphertext[T] {
	ctOut := NewLWECiphertext(e.Parameters)
	e.EncryptLWEPlaintextAssign(pt, ctOut)
	return ctOut
}

// EncryptLWEPlaintextAssign encrypts LWE plaintext to LWE ciphertext and writes it to ctOut.
func (e *Encryptor[T]) EncryptLWEPlaintextAssign(pt LWEPlaintext[T], ctOut LWECiphertext[T]) {
	ctOut.Clear()
	ctOut.Value[0] = pt.Value
	e.EncryptLWEBodyAssign(ctOut, e.SecretKey.DefaultLWEKey(e.Parameters), e.Parameters.DefaultLWEStdDevQ())
}

// EncryptLWEBodyAssign encrypts the value in the body of LWE ciphertext under key
// and overrides it. The mask is sampled uniformly and the error is sampled
// from the rounded gaussian with standard deviation stdDevQ, in absolute units of Q.
//
// After this call, ct.Value[0] = <mask, key> + (previous body) + e.
func (e *Encryptor[T]) EncryptLWEBodyAssign(ct LWECiphertext[T], key LWESecretKey[T], stdDevQ float64) {
	e.UniformSampler.SampleSliceAssign(ct.Value[1:])
	ct.Value[0] += vec.Dot(ct.Value[1:], key.Value) + e.GaussianSampler.Sample(stdDevQ)
}

// DecryptLWE decrypts and decodes LWE ciphertext to integer message
// under the default LWE key.
func (e *Encryptor[T]) DecryptLWE(ct LWECiphertext[T]) int {
	return e.DecodeLWE(e.DecryptLWEPlaintext(ct))
}

// DecryptLWEPlaintext decrypts LWE ciphertext to LWE plaintext
// under the default LWE key.
func (e *Encryptor[T]) DecryptLWEPlaintext(ct LWECiphertext[T]) LWEPlaintext[T] {
	return LWEPlaintext[T]{Value: e.DecryptLWEPhaseUnsafe(ct, e.SecretKey.DefaultLWEKey(e.Parameters))}
}

// DecryptLWEPhase returns the phase body - <mask, key> of ct.
// It returns an error wrapping ErrLWEDimensionMismatch if the dimension of ct does not match key.
func (e *Encryptor[T]) DecryptLWEPhase(ct LWECiphertext[T], key LWESecretKey[T]) (T, error) {
	if err := checkDimension(ErrLWEDimensionMismatch, len(key.Value), ct.Dimension()); err != nil {
		return 0, err
	}
	return e.DecryptLWEPhaseUnsafe(ct, key), nil
}

// DecryptLWEPhaseUnsafe returns the phase body - <mask, key> of ct,
// without checking dimensions.
func (e *Encryptor[T]) DecryptLWEPhaseUnsafe(ct LWECiphertext[T], key LWESecretKey[T]) T {
	return ct.Value[0] - vec.Dot(ct.Value[1:], key.Value)
}
