package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/poly"
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// SecretKey is a structure containing LWE and GLWE key.
//
// LWEKey and GLWEKey share the same backing slice:
// LWELargeKey is the flattened GLWE key, and LWEKey is its prefix of length LWEDimension.
type SecretKey[T TorusInt] struct {
	// LWELargeKey is a LWE key with length GLWEDimension.
	// Essentially, this is the GLWE key flattened into a vector.
	LWELargeKey LWESecretKey[T]
	// LWEKey is a LWE key with length LWEDimension.
	// It is the prefix of LWELargeKey.
	LWEKey LWESecretKey[T]
	// GLWEKey is a key used for GLWE encryption and decryption.
	GLWEKey GLWESecretKey[T]
	// FourierGLWEKey is a fourier transformed GLWEKey.
	FourierGLWEKey FourierGLWESecretKey[T]
}

// NewSecretKey allocates an empty SecretKey.
func NewSecretKey[T TorusInt](params Parameters[T]) SecretKey[T] {
	lweKey := make([]T, params.glweDimension)
	chunks := vec.Chunk(lweKey, params.polyDegree)
	glweKey := make([]poly.Poly[T], params.glweRank)
	for i := range glweKey {
		glweKey[i] = poly.Poly[T]{Coeffs: chunks[i]}
	}

	return SecretKey[T]{
		LWELargeKey:    LWESecretKey[T]{Value: lweKey},
		LWEKey:         LWESecretKey[T]{Value: lweKey[:params.lweDimension]},
		GLWEKey:        GLWESecretKey[T]{Value: glweKey},
		FourierGLWEKey: NewFourierGLWESecretKey(params),
	}
}

// DefaultLWEKey returns the LWE key used for default LWE encryption.
func (sk SecretKey[T]) DefaultLWEKey(params Parameters[T]) LWESecretKey[T] {
	if params.bootstrapOrder == OrderKeySwitchBlindRotate {
		return sk.LWELargeKey
	}
	return sk.LWEKey
}

// BootstrapKey is a list of GGSW encryptions of the LWE key bits,
// in the coefficient domain.
type BootstrapKey[T TorusInt] struct {
	// Value has length LWEDimension.
	Value []GGSWCiphertext[T]
}

// FourierBootstrapKey is a list of GGSW encryptions of the LWE key bits,
// in the Fourier domain. It is immutable once generated
// and can be shared between evaluators.
type FourierBootstrapKey[T TorusInt] struct {
	// Value has length LWEDimension.
	Value []FourierGGSWCiphertext[T]
}

// NewBootstrapKey allocates an empty BootstrapKey.
func NewBootstrapKey[T TorusInt](params Parameters[T]) BootstrapKey[T] {
	bsk := make([]GGSWCiphertext[T], params.lweDimension)
	for i := range bsk {
		bsk[i] = NewGGSWCiphertext(params, params.blindRotateParameters)
	}
	return BootstrapKey[T]{Value: bsk}
}

// NewFourierBootstrapKey allocates an empty FourierBootstrapKey.
func NewFourierBootstrapKey[T TorusInt](params Parameters[T]) FourierBootstrapKey[T] {
	bsk := make([]FourierGGSWCiphertext[T], params.lweDimension)
	for i := range bsk {
		bsk[i] = NewFourierGGSWCiphertext(params, params.blindRotateParameters)
	}
	return FourierBootstrapKey[T]{Value: bsk}
}

// LWEKeySwitchKey switches an LWE ciphertext from an input key to an output key.
// Value[i].Value[l] encrypts s_in[i] * Q / Base^(l+1) under the output key.
type LWEKeySwitchKey[T TorusInt] struct {
	// GadgetParameters is the gadget parameters of this key.
	GadgetParameters GadgetParameters[T]

	// Value has length InputDimension.
	Value []LevCiphertext[T]
}

// NewLWEKeySwitchKey allocates an empty LWEKeySwitchKey.
func NewLWEKeySwitchKey[T TorusInt](inputDimension, outputDimension int, gadgetParams GadgetParameters[T]) LWEKeySwitchKey[T] {
	ksk := make([]LevCiphertext[T], inputDimension)
	for i := range ksk {
		ksk[i] = NewLevCiphertextCustom(outputDimension, gadgetParams)
	}
	return LWEKeySwitchKey[T]{Value: ksk, GadgetParameters: gadgetParams}
}

// NewKeySwitchKeyForBootstrap allocates an empty LWEKeySwitchKey
// switching the tail of the large LWE key to the LWE key.
func NewKeySwitchKeyForBootstrap[T TorusInt](params Parameters[T]) LWEKeySwitchKey[T] {
	return NewLWEKeySwitchKey(params.glweDimension-params.lweDimension, params.lweDimension, params.keySwitchParameters)
}

// InputDimension returns the input LWE dimension of this key.
func (ksk LWEKeySwitchKey[T]) InputDimension() int {
	return len(ksk.Value)
}

// OutputDimension returns the output LWE dimension of this key.
func (ksk LWEKeySwitchKey[T]) OutputDimension() int {
	return ksk.Value[0].Value[0].Dimension()
}

// GLWEPackingKeySwitchKey packs LWE ciphertexts into a GLWE ciphertext.
// Value[i].Value[l] encrypts s_in[i] * Q / Base^(l+1) under the output GLWE key.
type GLWEPackingKeySwitchKey[T TorusInt] struct {
	// GadgetParameters is the gadget parameters of this key.
	GadgetParameters GadgetParameters[T]

	// Value has length InputDimension.
	Value []GLevCiphertext[T]
}

// NewGLWEPackingKeySwitchKey allocates an empty GLWEPackingKeySwitchKey.
func NewGLWEPackingKeySwitchKey[T TorusInt](params Parameters[T], inputDimension int, gadgetParams GadgetParameters[T]) GLWEPackingKeySwitchKey[T] {
	pksk := make([]GLevCiphertext[T], inputDimension)
	for i := range pksk {
		pksk[i] = NewGLevCiphertext(params, gadgetParams)
	}
	return GLWEPackingKeySwitchKey[T]{Value: pksk, GadgetParameters: gadgetParams}
}

// InputDimension returns the input LWE dimension of this key.
func (pksk GLWEPackingKeySwitchKey[T]) InputDimension() int {
	return len(pksk.Value)
}

// PrivateFunctionalKeySwitchKey evaluates a secret linear function f
// while switching an LWE ciphertext into a GLWE ciphertext.
//
// Value has length InputDimension + 1, following the LWE layout:
// Value[0] corresponds to the body with key element -1,
// and Value[t] corresponds to the input key element s_in[t-1].
// Value[t].Value[l] encrypts f(key_t) * Q / Base^(l+1) * P(X),
// where the function f and the polynomial P are fixed at generation time.
type PrivateFunctionalKeySwitchKey[T TorusInt] struct {
	// GadgetParameters is the gadget parameters of this key.
	GadgetParameters GadgetParameters[T]

	// Value has length InputDimension + 1.
	Value []GLevCiphertext[T]
}

// NewPrivateFunctionalKeySwitchKey allocates an empty PrivateFunctionalKeySwitchKey.
func NewPrivateFunctionalKeySwitchKey[T TorusInt](params Parameters[T], inputDimension int, gadgetParams GadgetParameters[T]) PrivateFunctionalKeySwitchKey[T] {
	pfksk := make([]GLevCiphertext[T], inputDimension+1)
	for i := range pfksk {
		pfksk[i] = NewGLevCiphertext(params, gadgetParams)
	}
	return PrivateFunctionalKeySwitchKey[T]{Value: pfksk, GadgetParameters: gadgetParams}
}

// InputDimension returns the input LWE dimension of this key.
func (pfksk PrivateFunctionalKeySwitchKey[T]) InputDimension() int {
	return len(pfksk.Value) - 1
}

// EvaluationKey is a public key for Evaluator,
// which consists of Bootstrapping Key and KeySwitching Key.
// All keys should be treated as read-only.
type EvaluationKey[T TorusInt] struct {
	// BlindRotateKey is a fourier transformed bootstrapping key.
	BlindRotateKey FourierBootstrapKey[T]
	// KeySwitchKey switches the large LWE key to the LWE key.
	KeySwitchKey LWEKeySwitchKey[T]
}

// LookUpTable is a trivially encrypted GLWE body used in blind rotation.
type LookUpTable[T TorusInt] struct {
	// Value has degree PolyDegree.
	Value poly.Poly[T]
}

// NewLookUpTable allocates an empty lookup table.
func NewLookUpTable[T TorusInt](params Parameters[T]) LookUpTable[T] {
	return LookUpTable[T]{Value: poly.NewPoly[T](params.polyDegree)}
}

// Copy returns a copy of the LUT.
func (lut LookUpTable[T]) Copy() LookUpTable[T] {
	return LookUpTable[T]{Value: lut.Value.Copy()}
}

// Clear clears the LUT.
func (lut LookUpTable[T]) Clear() {
	lut.Value.Clear()
}
