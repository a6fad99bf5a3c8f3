// Package poly implements polynomial arithmetic over the negacyclic ring
// Z_Q[X]/(X^N + 1), where Q is 2^32 or 2^64, both in the coefficient domain
// and in the Fourier domain.
package poly

import (
	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// MinDegree is the minimum degree of a polynomial.
const MinDegree = 4

// Poly is a polynomial of degree N over Z_Q[X]/(X^N + 1).
type Poly[T num.Torus] struct {
	// Coeffs has length Degree.
	Coeffs []T
}

// NewPoly allocates an empty polynomial with degree N.
//
// Panics if N is not a power of two or N < MinDegree.
func NewPoly[T num.Torus](N int) Poly[T] {
	if !num.IsPowerOfTwo(N) || N < MinDegree {
		panic("degree not a power of two or too small")
	}
	return Poly[T]{Coeffs: make([]T, N)}
}

// From wraps coeffs as a polynomial without copying.
func From[T num.Torus](coeffs []T) Poly[T] {
	return Poly[T]{Coeffs: coeffs}
}

// Degree returns the degree of the polynomial.
func (p Poly[T]) Degree() int {
	return len(p.Coeffs)
}

// Copy returns a copy of the polynomial.
func (p Poly[T]) Copy() Poly[T] {
	return Poly[T]{Coeffs: vec.Copy(p.Coeffs)}
}

// CopyFrom copies p0 to p.
func (p *Poly[T]) CopyFrom(p0 Poly[T]) {
	copy(p.Coeffs, p0.Coeffs)
}

// Clear clears all the coefficients of the polynomial.
func (p Poly[T]) Clear() {
	vec.Fill(p.Coeffs, 0)
}

// Equals returns whether the two polynomials are equal.
func (p Poly[T]) Equals(p0 Poly[T]) bool {
	return vec.Equals(p.Coeffs, p0.Coeffs)
}

// FourierPoly is a polynomial in the Fourier domain, holding the evaluations
// of a real polynomial at the roots exp(i*pi*(4k+1)/N) for 0 <= k < N/2.
type FourierPoly struct {
	// Coeffs has length Degree/2.
	Coeffs []complex128
}

// NewFourierPoly allocates an empty fourier polynomial with degree N.
//
// Panics if N is not a power of two or N < MinDegree.
func NewFourierPoly(N int) FourierPoly {
	if !num.IsPowerOfTwo(N) || N < MinDegree {
		panic("degree not a power of two or too small")
	}
	return FourierPoly{Coeffs: make([]complex128, N/2)}
}

// Degree returns the degree of the polynomial.
func (p FourierPoly) Degree() int {
	return 2 * len(p.Coeffs)
}

// Copy returns a copy of the polynomial.
func (p FourierPoly) Copy() FourierPoly {
	return FourierPoly{Coeffs: vec.Copy(p.Coeffs)}
}

// CopyFrom copies p0 to p.
func (p *FourierPoly) CopyFrom(p0 FourierPoly) {
	copy(p.Coeffs, p0.Coeffs)
}

// Clear clears all the coefficients of the polynomial.
func (p FourierPoly) Clear() {
	vec.Fill(p.Coeffs, 0)
}
