package poly

import (
	"github.com/snucp/tfhe-wopbs/math/num"
)

// ToFourierPoly transforms Poly to FourierPoly.
func (e *Evaluator[T]) ToFourierPoly(p Poly[T]) FourierPoly {
	fp := e.NewFourierPoly()
	e.ToFourierPolyAssign(p, fp)
	return fp
}

// ToFourierPolyAssign transforms Poly to FourierPoly and writes it to fpOut.
// Coefficients are interpreted as signed integers.
func (e *Evaluator[T]) ToFourierPolyAssign(p Poly[T], fpOut FourierPoly) {
	M := e.fft.half
	for j := 0; j < M; j++ {
		fpOut.Coeffs[j] = complex(num.ToSigned(p.Coeffs[j]), num.ToSigned(p.Coeffs[j+M])) * e.fft.twist[j]
	}
	e.fft.transform(fpOut.Coeffs, e.fft.tw)
}

// ToPoly transforms FourierPoly to Poly.
func (e *Evaluator[T]) ToPoly(fp FourierPoly) Poly[T] {
	p := e.NewPoly()
	e.ToPolyAssign(fp, p)
	return p
}

// ToPolyAssign transforms FourierPoly to Poly and writes it to pOut.
// Each coefficient is rounded and reduced modulo Q.
func (e *Evaluator[T]) ToPolyAssign(fp FourierPoly, pOut Poly[T]) {
	v := e.inverse(fp)
	M := e.fft.half
	for j := 0; j < M; j++ {
		pOut.Coeffs[j] = num.FromFloat64[T](real(v[j]))
		pOut.Coeffs[j+M] = num.FromFloat64[T](imag(v[j]))
	}
}

// ToPolyAddAssign transforms FourierPoly to Poly and adds it to pOut.
func (e *Evaluator[T]) ToPolyAddAssign(fp FourierPoly, pOut Poly[T]) {
	v := e.inverse(fp)
	M := e.fft.half
	for j := 0; j < M; j++ {
		pOut.Coeffs[j] += num.FromFloat64[T](real(v[j]))
		pOut.Coeffs[j+M] += num.FromFloat64[T](imag(v[j]))
	}
}

// ToPolySubAssign transforms FourierPoly to Poly and subtracts it from pOut.
func (e *Evaluator[T]) ToPolySubAssign(fp FourierPoly, pOut Poly[T]) {
	v := e.inverse(fp)
	M := e.fft.half
	for j := 0; j < M; j++ {
		pOut.Coeffs[j] -= num.FromFloat64[T](real(v[j]))
		pOut.Coeffs[j+M] -= num.FromFloat64[T](imag(v[j]))
	}
}

// inverse computes the inverse transform of fp into the evaluator buffer
// and returns it, untwisted and scaled.
func (e *Evaluator[T]) inverse(fp FourierPoly) []complex128 {
	v := e.buffer.fp.Coeffs
	if &v[0] != &fp.Coeffs[0] {
		copy(v, fp.Coeffs)
	}
	e.fft.transform(v, e.fft.twInv)
	for j := range v {
		v[j] *= e.fft.twistInv[j]
	}
	return v
}

// AddFourierPolyAssign computes fpOut = fp0 + fp1.
func (e *Evaluator[T]) AddFourierPolyAssign(fp0, fp1, fpOut FourierPoly) {
	for i := range fpOut.Coeffs {
		fpOut.Coeffs[i] = fp0.Coeffs[i] + fp1.Coeffs[i]
	}
}

// SubFourierPolyAssign computes fpOut = fp0 - fp1.
func (e *Evaluator[T]) SubFourierPolyAssign(fp0, fp1, fpOut FourierPoly) {
	for i := range fpOut.Coeffs {
		fpOut.Coeffs[i] = fp0.Coeffs[i] - fp1.Coeffs[i]
	}
}

// MulFourierPolyAssign computes fpOut = fp0 * fp1.
func (e *Evaluator[T]) MulFourierPolyAssign(fp0, fp1, fpOut FourierPoly) {
	c0, c1, cOut := fp0.Coeffs, fp1.Coeffs, fpOut.Coeffs
	for i := range cOut {
		cOut[i] = c0[i] * c1[i]
	}
}

// MulAddFourierPolyAssign computes fpOut += fp0 * fp1.
func (e *Evaluator[T]) MulAddFourierPolyAssign(fp0, fp1, fpOut FourierPoly) {
	c0, c1, cOut := fp0.Coeffs, fp1.Coeffs, fpOut.Coeffs
	for i := range cOut {
		cOut[i] += c0[i] * c1[i]
	}
}

// MulSubFourierPolyAssign computes fpOut -= fp0 * fp1.
func (e *Evaluator[T]) MulSubFourierPolyAssign(fp0, fp1, fpOut FourierPoly) {
	for i := range fpOut.Coeffs {
		fpOut.Coeffs[i] -= fp0.Coeffs[i] * fp1.Coeffs[i]
	}
}

// MonomialToFourierPolyAssign transforms X^d to FourierPoly and writes it to fpOut.
func (e *Evaluator[T]) MonomialToFourierPolyAssign(d int, fpOut FourierPoly) {
	d = e.reduceDegree(d)
	for k := range fpOut.Coeffs {
		fpOut.Coeffs[k] = e.fft.monomial(d, k)
	}
}

// MonomialSubOneToFourierPolyAssign transforms X^d - 1 to FourierPoly and writes it to fpOut.
func (e *Evaluator[T]) MonomialSubOneToFourierPolyAssign(d int, fpOut FourierPoly) {
	d = e.reduceDegree(d)
	for k := range fpOut.Coeffs {
		fpOut.Coeffs[k] = e.fft.monomial(d, k) - 1
	}
}

// reduceDegree reduces d modulo 2N into [0, 2N).
func (e *Evaluator[T]) reduceDegree(d int) int {
	d %= 2 * e.degree
	if d < 0 {
		d += 2 * e.degree
	}
	return d
}
