package poly

import (
	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// Evaluator computes polynomial operations over the N-th cyclotomic ring.
//
// Evaluator is not safe for concurrent use.
// Use [*Evaluator.ShallowCopy] to get a safe copy.
type Evaluator[T num.Torus] struct {
	// degree is the degree of polynomials this evaluator can handle.
	degree int
	// logDegree is log2(degree).
	logDegree int

	// fft holds the precomputed FFT tables. It is shared between shallow copies.
	fft *fftContext

	buffer evaluationBuffer[T]
}

// evaluationBuffer contains buffer values for Evaluator.
type evaluationBuffer[T num.Torus] struct {
	// fp holds a temporary fourier polynomial.
	fp FourierPoly
	// fpSplit holds the fourier transform of the high half of a split operand.
	fpSplit FourierPoly
	// fpMul holds the fourier transform of the second operand of MulPoly.
	fpMul FourierPoly
	// pSplit holds the split operand.
	pSplit Poly[T]
	// pOut holds the product in coefficient domain.
	pOut Poly[T]
}

// NewEvaluator allocates an empty Evaluator with degree N.
//
// Panics when N is not a power of two or N < MinDegree.
func NewEvaluator[T num.Torus](N int) *Evaluator[T] {
	if !num.IsPowerOfTwo(N) || N < MinDegree {
		panic("degree not a power of two or too small")
	}

	return &Evaluator[T]{
		degree:    N,
		logDegree: num.Log2(N),
		fft:       newFFTContext(N),
		buffer:    newEvaluationBuffer[T](N),
	}
}

// newEvaluationBuffer allocates an empty evaluationBuffer.
func newEvaluationBuffer[T num.Torus](N int) evaluationBuffer[T] {
	return evaluationBuffer[T]{
		fp:      NewFourierPoly(N),
		fpSplit: NewFourierPoly(N),
		fpMul:   NewFourierPoly(N),
		pSplit:  NewPoly[T](N),
		pOut:    NewPoly[T](N),
	}
}

// ShallowCopy returns a shallow copy of this Evaluator.
// Returned Evaluator is safe for concurrent use.
func (e *Evaluator[T]) ShallowCopy() *Evaluator[T] {
	return &Evaluator[T]{
		degree:    e.degree,
		logDegree: e.logDegree,
		fft:       e.fft,
		buffer:    newEvaluationBuffer[T](e.degree),
	}
}

// Degree returns the degree of polynomial that the evaluator can handle.
func (e *Evaluator[T]) Degree() int {
	return e.degree
}

// LogDegree returns log2(Degree).
func (e *Evaluator[T]) LogDegree() int {
	return e.logDegree
}

// NewPoly allocates an empty polynomial with the same degree as the evaluator.
func (e *Evaluator[T]) NewPoly() Poly[T] {
	return NewPoly[T](e.degree)
}

// NewFourierPoly allocates an empty fourier polynomial with the same degree as the evaluator.
func (e *Evaluator[T]) NewFourierPoly() FourierPoly {
	return NewFourierPoly(e.degree)
}

// AddPoly returns p0 + p1.
func (e *Evaluator[T]) AddPoly(p0, p1 Poly[T]) Poly[T] {
	pOut := e.NewPoly()
	e.AddPolyAssign(p0, p1, pOut)
	return pOut
}

// AddPolyAssign computes pOut = p0 + p1.
func (e *Evaluator[T]) AddPolyAssign(p0, p1, pOut Poly[T]) {
	vec.AddAssign(p0.Coeffs, p1.Coeffs, pOut.Coeffs)
}

// SubPoly returns p0 - p1.
func (e *Evaluator[T]) SubPoly(p0, p1 Poly[T]) Poly[T] {
	pOut := e.NewPoly()
	e.SubPolyAssign(p0, p1, pOut)
	return pOut
}

// SubPolyAssign computes pOut = p0 - p1.
func (e *Evaluator[T]) SubPolyAssign(p0, p1, pOut Poly[T]) {
	vec.SubAssign(p0.Coeffs, p1.Coeffs, pOut.Coeffs)
}

// NegPolyAssign computes pOut = -p0.
func (e *Evaluator[T]) NegPolyAssign(p0, pOut Poly[T]) {
	vec.NegAssign(p0.Coeffs, pOut.Coeffs)
}

// ScalarMulPolyAssign computes pOut = c * p0.
func (e *Evaluator[T]) ScalarMulPolyAssign(p0 Poly[T], c T, pOut Poly[T]) {
	vec.ScalarMulAssign(p0.Coeffs, c, pOut.Coeffs)
}

// ScalarMulAddPolyAssign computes pOut += c * p0.
func (e *Evaluator[T]) ScalarMulAddPolyAssign(p0 Poly[T], c T, pOut Poly[T]) {
	vec.ScalarMulAddAssign(p0.Coeffs, c, pOut.Coeffs)
}

// ScalarMulSubPolyAssign computes pOut -= c * p0.
func (e *Evaluator[T]) ScalarMulSubPolyAssign(p0 Poly[T], c T, pOut Poly[T]) {
	vec.ScalarMulSubAssign(p0.Coeffs, c, pOut.Coeffs)
}

// MonomialMulPoly returns X^d * p0.
func (e *Evaluator[T]) MonomialMulPoly(p0 Poly[T], d int) Poly[T] {
	pOut := e.NewPoly()
	e.MonomialMulPolyAssign(p0, d, pOut)
	return pOut
}

// MonomialMulPolyAssign computes pOut = X^d * p0.
// d can be any integer; it is reduced modulo 2N.
//
// p0 and pOut should not overlap. For inplace multiplication,
// use [*Evaluator.MonomialMulPolyInPlace].
func (e *Evaluator[T]) MonomialMulPolyAssign(p0 Poly[T], d int, pOut Poly[T]) {
	N := e.degree
	d %= 2 * N
	if d < 0 {
		d += 2 * N
	}

	sign := T(1)
	if d >= N {
		d -= N
		sign = ^T(0)
	}

	for i, ii := 0, N-d; i < d; i, ii = i+1, ii+1 {
		pOut.Coeffs[i] = -sign * p0.Coeffs[ii]
	}
	for i, ii := d, 0; i < N; i, ii = i+1, ii+1 {
		pOut.Coeffs[i] = sign * p0.Coeffs[ii]
	}
}

// MonomialMulPolyInPlace computes p0 = X^d * p0.
func (e *Evaluator[T]) MonomialMulPolyInPlace(p0 Poly[T], d int) {
	e.MonomialMulPolyAssign(p0, d, e.buffer.pOut)
	p0.CopyFrom(e.buffer.pOut)
}

// MonomialMulAddPolyAssign computes pOut += X^d * p0.
func (e *Evaluator[T]) MonomialMulAddPolyAssign(p0 Poly[T], d int, pOut Poly[T]) {
	e.MonomialMulPolyAssign(p0, d, e.buffer.pOut)
	e.AddPolyAssign(pOut, e.buffer.pOut, pOut)
}

// MulPoly returns p0 * p1.
func (e *Evaluator[T]) MulPoly(p0, p1 Poly[T]) Poly[T] {
	pOut := e.NewPoly()
	e.MulPolyAssign(p0, p1, pOut)
	return pOut
}

// MulPolyAssign computes pOut = p0 * p1 using the FFT.
//
// The product is exact when p1 has small coefficients
// (e.g. a secret key polynomial), since p0 is split into 32-bit halves
// before the transform when T is 64 bits wide.
// Otherwise it is only correct up to a floating point error.
func (e *Evaluator[T]) MulPolyAssign(p0, p1, pOut Poly[T]) {
	e.ToFourierPolyAssign(p1, e.buffer.fpMul)

	if num.SizeT[T]() <= 32 {
		e.ToFourierPolyAssign(p0, e.buffer.fp)
		e.MulFourierPolyAssign(e.buffer.fp, e.buffer.fpMul, e.buffer.fp)
		e.ToPolyAssign(e.buffer.fp, pOut)
		return
	}

	// p0 = hi * 2^32 + lo, with lo in [-2^31, 2^31).
	splitBits := num.SizeT[T]() / 2
	for i := 0; i < e.degree; i++ {
		lo := T(int32(uint32(p0.Coeffs[i])))
		e.buffer.pSplit.Coeffs[i] = (p0.Coeffs[i] - lo) >> splitBits
		e.buffer.pOut.Coeffs[i] = lo
	}

	e.ToFourierPolyAssign(e.buffer.pOut, e.buffer.fp)
	e.MulFourierPolyAssign(e.buffer.fp, e.buffer.fpMul, e.buffer.fp)
	e.ToFourierPolyAssign(e.buffer.pSplit, e.buffer.fpSplit)
	e.MulFourierPolyAssign(e.buffer.fpSplit, e.buffer.fpMul, e.buffer.fpSplit)

	// fp must be converted first, since ToPolyAssign uses it as scratch.
	e.ToPolyAssign(e.buffer.fp, pOut)
	e.ToPolyAssign(e.buffer.fpSplit, e.buffer.pSplit)
	for i := 0; i < e.degree; i++ {
		pOut.Coeffs[i] += e.buffer.pSplit.Coeffs[i] << splitBits
	}
}

// MulAddPolyAssign computes pOut += p0 * p1.
func (e *Evaluator[T]) MulAddPolyAssign(p0, p1, pOut Poly[T]) {
	prod := e.NewPoly()
	e.MulPolyAssign(p0, p1, prod)
	e.AddPolyAssign(pOut, prod, pOut)
}

// MulPolyNaiveAssign computes pOut = p0 * p1 with the schoolbook algorithm.
// The result is exact modulo Q, but takes O(N^2) time.
//
// pOut should not overlap with p0 or p1.
func (e *Evaluator[T]) MulPolyNaiveAssign(p0, p1, pOut Poly[T]) {
	N := e.degree
	pOut.Clear()
	for i := 0; i < N; i++ {
		if p0.Coeffs[i] == 0 {
			continue
		}
		for j := 0; j < N-i; j++ {
			pOut.Coeffs[i+j] += p0.Coeffs[i] * p1.Coeffs[j]
		}
		for j := N - i; j < N; j++ {
			pOut.Coeffs[i+j-N] -= p0.Coeffs[i] * p1.Coeffs[j]
		}
	}
}

// MulAddPolyNaiveAssign computes pOut += p0 * p1 with the schoolbook algorithm.
func (e *Evaluator[T]) MulAddPolyNaiveAssign(p0, p1, pOut Poly[T]) {
	N := e.degree
	for i := 0; i < N; i++ {
		if p0.Coeffs[i] == 0 {
			continue
		}
		for j := 0; j < N-i; j++ {
			pOut.Coeffs[i+j] += p0.Coeffs[i] * p1.Coeffs[j]
		}
		for j := N - i; j < N; j++ {
			pOut.Coeffs[i+j-N] -= p0.Coeffs[i] * p1.Coeffs[j]
		}
	}
}
