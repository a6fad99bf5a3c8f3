package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// LWESecretKey is a LWE secret key, sampled from uniform binary distribution.
type LWESecretKey[T TorusInt] struct {
	// Value has length LWEDimension.
	Value []T
}

// NewLWESecretKey allocates an empty LWESecretKey of the default LWE dimension.
func NewLWESecretKey[T TorusInt](params Parameters[T]) LWESecretKey[T] {
	return NewLWESecretKeyCustom[T](params.DefaultLWEDimension())
}

// NewLWESecretKeyCustom allocates an empty LWESecretKey with given dimension.
func NewLWESecretKeyCustom[T TorusInt](lweDimension int) LWESecretKey[T] {
	return LWESecretKey[T]{Value: make([]T, lweDimension)}
}

// Copy returns a copy of the key.
func (sk LWESecretKey[T]) Copy() LWESecretKey[T] {
	return LWESecretKey[T]{Value: vec.Copy(sk.Value)}
}

// CopyFrom copies values from a key.
func (sk *LWESecretKey[T]) CopyFrom(skIn LWESecretKey[T]) {
	vec.CopyAssign(skIn.Value, sk.Value)
}

// Clear clears the key.
func (sk LWESecretKey[T]) Clear() {
	vec.Fill(sk.Value, 0)
}

// LWEPlaintext represents an encoded LWE plaintext.
type LWEPlaintext[T TorusInt] struct {
	// Value is a scalar.
	Value T
}

// LWECiphertext represents a LWE ciphertext.
type LWECiphertext[T TorusInt] struct {
	// Value has length Dimension + 1.
	// Value[0] is the body, and Value[1:] is the mask.
	// The body satisfies body = <mask, key> + plaintext + error.
	Value []T
}

// NewLWECiphertext allocates an empty LWECiphertext of the default LWE dimension.
func NewLWECiphertext[T TorusInt](params Parameters[T]) LWECiphertext[T] {
	return NewLWECiphertextCustom[T](params.DefaultLWEDimension())
}

// NewLWECiphertextCustom allocates an empty LWECiphertext with given dimension.
// Note that the resulting ciphertext has length lweDimension + 1.
func NewLWECiphertextCustom[T TorusInt](lweDimension int) LWECiphertext[T] {
	return LWECiphertext[T]{Value: make([]T, lweDimension+1)}
}

// Dimension returns the dimension of the mask of the ciphertext.
func (ct LWECiphertext[T]) Dimension() int {
	return len(ct.Value) - 1
}

// Copy returns a copy of the ciphertext.
func (ct LWECiphertext[T]) Copy() LWECiphertext[T] {
	return LWECiphertext[T]{Value: vec.Copy(ct.Value)}
}

// CopyFrom copies values from a ciphertext.
func (ct *LWECiphertext[T]) CopyFrom(ctIn LWECiphertext[T]) {
	vec.CopyAssign(ctIn.Value, ct.Value)
}

// Clear clears the ciphertext.
func (ct LWECiphertext[T]) Clear() {
	vec.Fill(ct.Value, 0)
}

// LevCiphertext is a leveled LWE ciphertext, decomposed with respect to gadget parameters.
type LevCiphertext[T TorusInt] struct {
	// GadgetParameters is the gadget parameters of this ciphertext.
	GadgetParameters GadgetParameters[T]

	// Value has length Level.
	// Value[l] encrypts m * Q / Base^(l+1).
	Value []LWECiphertext[T]
}

// NewLevCiphertext allocates an empty LevCiphertext of the default LWE dimension.
func NewLevCiphertext[T TorusInt](params Parameters[T], gadgetParams GadgetParameters[T]) LevCiphertext[T] {
	return NewLevCiphertextCustom(params.DefaultLWEDimension(), gadgetParams)
}

// NewLevCiphertextCustom allocates an empty LevCiphertext with given dimension.
func NewLevCiphertextCustom[T TorusInt](lweDimension int, gadgetParams GadgetParameters[T]) LevCiphertext[T] {
	ct := make([]LWECiphertext[T], gadgetParams.level)
	for i := 0; i < gadgetParams.level; i++ {
		ct[i] = NewLWECiphertextCustom[T](lweDimension)
	}
	return LevCiphertext[T]{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct LevCiphertext[T]) Copy() LevCiphertext[T] {
	ctCopy := make([]LWECiphertext[T], len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return LevCiphertext[T]{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

// Clear clears the ciphertext.
func (ct LevCiphertext[T]) Clear() {
	for i := range ct.Value {
		ct.Value[i].Clear()
	}
}
