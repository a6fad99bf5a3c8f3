package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/poly"
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// GLWESecretKey is a GLWE secret key, sampled from uniform binary distribution.
type GLWESecretKey[T TorusInt] struct {
	// Value has length GLWERank.
	Value []poly.Poly[T]
}

// NewGLWESecretKey allocates an empty GLWESecretKey.
func NewGLWESecretKey[T TorusInt](params Parameters[T]) GLWESecretKey[T] {
	return NewGLWESecretKeyCustom[T](params.glweRank, params.polyDegree)
}

// NewGLWESecretKeyCustom allocates an empty GLWESecretKey with given rank and degree.
func NewGLWESecretKeyCustom[T TorusInt](glweRank, polyDegree int) GLWESecretKey[T] {
	return GLWESecretKey[T]{Value: newPolyList[T](glweRank, polyDegree)}
}

// Copy returns a copy of the key.
func (sk GLWESecretKey[T]) Copy() GLWESecretKey[T] {
	return GLWESecretKey[T]{Value: copyPolyList(sk.Value)}
}

// Rank returns the rank of the key.
func (sk GLWESecretKey[T]) Rank() int {
	return len(sk.Value)
}

// FourierGLWESecretKey is a GLWE secret key in the Fourier domain.
type FourierGLWESecretKey[T TorusInt] struct {
	// Value has length GLWERank.
	Value []poly.FourierPoly
}

// NewFourierGLWESecretKey allocates an empty FourierGLWESecretKey.
func NewFourierGLWESecretKey[T TorusInt](params Parameters[T]) FourierGLWESecretKey[T] {
	return NewFourierGLWESecretKeyCustom[T](params.glweRank, params.polyDegree)
}

// NewFourierGLWESecretKeyCustom allocates an empty FourierGLWESecretKey with given rank and degree.
func NewFourierGLWESecretKeyCustom[T TorusInt](glweRank, polyDegree int) FourierGLWESecretKey[T] {
	sk := make([]poly.FourierPoly, glweRank)
	for i := range sk {
		sk[i] = poly.NewFourierPoly(polyDegree)
	}
	return FourierGLWESecretKey[T]{Value: sk}
}

// GLWEPlaintext represents an encoded GLWE plaintext.
type GLWEPlaintext[T TorusInt] struct {
	// Value is a single polynomial.
	Value poly.Poly[T]
}

// NewGLWEPlaintext allocates an empty GLWEPlaintext.
func NewGLWEPlaintext[T TorusInt](params Parameters[T]) GLWEPlaintext[T] {
	return GLWEPlaintext[T]{Value: poly.NewPoly[T](params.polyDegree)}
}

// Copy returns a copy of the plaintext.
func (pt GLWEPlaintext[T]) Copy() GLWEPlaintext[T] {
	return GLWEPlaintext[T]{Value: pt.Value.Copy()}
}

// GLWECiphertext represents a GLWE ciphertext.
type GLWECiphertext[T TorusInt] struct {
	// Value has length GLWERank + 1.
	// Value[0] is the body, and Value[1:] is the mask.
	// All polynomials share one contiguous backing array.
	Value []poly.Poly[T]
}

// NewGLWECiphertext allocates an empty GLWECiphertext.
func NewGLWECiphertext[T TorusInt](params Parameters[T]) GLWECiphertext[T] {
	return NewGLWECiphertextCustom[T](params.glweRank, params.polyDegree)
}

// NewGLWECiphertextCustom allocates an empty GLWECiphertext with given rank and degree.
func NewGLWECiphertextCustom[T TorusInt](glweRank, polyDegree int) GLWECiphertext[T] {
	return GLWECiphertext[T]{Value: newPolyList[T](glweRank+1, polyDegree)}
}

// Rank returns the rank of the ciphertext.
func (ct GLWECiphertext[T]) Rank() int {
	return len(ct.Value) - 1
}

// Degree returns the polynomial degree of the ciphertext.
func (ct GLWECiphertext[T]) Degree() int {
	return ct.Value[0].Degree()
}

// Copy returns a copy of the ciphertext.
func (ct GLWECiphertext[T]) Copy() GLWECiphertext[T] {
	return GLWECiphertext[T]{Value: copyPolyList(ct.Value)}
}

// CopyFrom copies values from a ciphertext.
func (ct *GLWECiphertext[T]) CopyFrom(ctIn GLWECiphertext[T]) {
	for i := range ct.Value {
		ct.Value[i].CopyFrom(ctIn.Value[i])
	}
}

// Clear clears the ciphertext.
func (ct GLWECiphertext[T]) Clear() {
	for i := range ct.Value {
		ct.Value[i].Clear()
	}
}

// ToLWECiphertext extracts the coefficient at idx as an LWE ciphertext
// under the flattened GLWE key.
func (ct GLWECiphertext[T]) ToLWECiphertext(idx int) LWECiphertext[T] {
	ctOut := NewLWECiphertextCustom[T](ct.Rank() * ct.Degree())
	ct.ToLWECiphertextAssign(idx, ctOut)
	return ctOut
}

// ToLWECiphertextAssign extracts the coefficient at idx as an LWE ciphertext
// under the flattened GLWE key and writes it to ctOut.
//
// For mask polynomial A_i, the extracted mask is
// a[iN+t] = A_i[idx-t] for t <= idx, and -A_i[N+idx-t] for t > idx.
func (ct GLWECiphertext[T]) ToLWECiphertextAssign(idx int, ctOut LWECiphertext[T]) {
	N := ct.Degree()
	ctOut.Value[0] = ct.Value[0].Coeffs[idx]

	for i := 1; i < len(ct.Value); i++ {
		mask := ctOut.Value[1+(i-1)*N : 1+i*N]
		for t := 0; t <= idx; t++ {
			mask[t] = ct.Value[i].Coeffs[idx-t]
		}
		for t := idx + 1; t < N; t++ {
			mask[t] = -ct.Value[i].Coeffs[N+idx-t]
		}
	}
}

// FourierGLWECiphertext is a GLWE ciphertext in the Fourier domain.
type FourierGLWECiphertext[T TorusInt] struct {
	// Value has length GLWERank + 1.
	Value []poly.FourierPoly
}

// NewFourierGLWECiphertext allocates an empty FourierGLWECiphertext.
func NewFourierGLWECiphertext[T TorusInt](params Parameters[T]) FourierGLWECiphertext[T] {
	return NewFourierGLWECiphertextCustom[T](params.glweRank, params.polyDegree)
}

// NewFourierGLWECiphertextCustom allocates an empty FourierGLWECiphertext with given rank and degree.
func NewFourierGLWECiphertextCustom[T TorusInt](glweRank, polyDegree int) FourierGLWECiphertext[T] {
	ct := make([]poly.FourierPoly, glweRank+1)
	for i := range ct {
		ct[i] = poly.NewFourierPoly(polyDegree)
	}
	return FourierGLWECiphertext[T]{Value: ct}
}

// Copy returns a copy of the ciphertext.
func (ct FourierGLWECiphertext[T]) Copy() FourierGLWECiphertext[T] {
	ctCopy := make([]poly.FourierPoly, len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return FourierGLWECiphertext[T]{Value: ctCopy}
}

// Clear clears the ciphertext.
func (ct FourierGLWECiphertext[T]) Clear() {
	for i := range ct.Value {
		ct.Value[i].Clear()
	}
}

// newPolyList allocates count polynomials of degree N backed by one array.
func newPolyList[T TorusInt](count, N int) []poly.Poly[T] {
	chunks := vec.Chunk(make([]T, count*N), N)
	ps := make([]poly.Poly[T], count)
	for i := range ps {
		ps[i] = poly.Poly[T]{Coeffs: chunks[i]}
	}
	return ps
}

// copyPolyList returns a deep copy of ps, backed by one array.
func copyPolyList[T TorusInt](ps []poly.Poly[T]) []poly.Poly[T] {
	psCopy := newPolyList[T](len(ps), ps[0].Degree())
	for i := range ps {
		psCopy[i].CopyFrom(ps[i])
	}
	return psCopy
}
