package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/poly"
)

// Decomposer decomposes a scalar or a polynomial with respect to gadget parameters.
//
// Decomposer is not safe for concurrent use.
// Use [*Decomposer.ShallowCopy] to get a safe copy.
type Decomposer[T TorusInt] struct {
	buffer decompositionBuffer[T]
}

// decompositionBuffer contains buffer values for Decomposer.
type decompositionBuffer[T TorusInt] struct {
	// polyDecomposed holds the decomposed polynomial.
	// Initially has length MaxLevel.
	polyDecomposed []poly.Poly[T]
	// scalarDecomposed holds the decomposed scalar.
	// Initially has length MaxLevel.
	scalarDecomposed []T
}

// NewDecomposer allocates an empty Decomposer that can decompose
// polynomials of degree N up to maxLevel levels.
func NewDecomposer[T TorusInt](N, maxLevel int) *Decomposer[T] {
	return &Decomposer[T]{
		buffer: newDecompositionBuffer[T](N, maxLevel),
	}
}

// newDecompositionBuffer allocates an empty decompositionBuffer.
func newDecompositionBuffer[T TorusInt](N, maxLevel int) decompositionBuffer[T] {
	polyDecomposed := make([]poly.Poly[T], maxLevel)
	for i := range polyDecomposed {
		polyDecomposed[i] = poly.NewPoly[T](N)
	}

	return decompositionBuffer[T]{
		polyDecomposed:   polyDecomposed,
		scalarDecomposed: make([]T, maxLevel),
	}
}

// ShallowCopy returns a shallow copy of this Decomposer.
// Returned Decomposer is safe for concurrent use.
func (d *Decomposer[T]) ShallowCopy() *Decomposer[T] {
	return &Decomposer[T]{
		buffer: newDecompositionBuffer[T](d.buffer.polyDecomposed[0].Degree(), len(d.buffer.scalarDecomposed)),
	}
}

// ensureLevel grows the buffers so that they can hold level digits.
func (d *Decomposer[T]) ensureLevel(level int) {
	for len(d.buffer.scalarDecomposed) < level {
		d.buffer.scalarDecomposed = append(d.buffer.scalarDecomposed, 0)
		d.buffer.polyDecomposed = append(d.buffer.polyDecomposed, poly.NewPoly[T](d.buffer.polyDecomposed[0].Degree()))
	}
}

// ScalarBuffer returns the scalar decomposition buffer, sliced to level.
func (d *Decomposer[T]) ScalarBuffer(level int) []T {
	d.ensureLevel(level)
	return d.buffer.scalarDecomposed[:level]
}

// PolyBuffer returns the polynomial decomposition buffer, sliced to level.
func (d *Decomposer[T]) PolyBuffer(level int) []poly.Poly[T] {
	d.ensureLevel(level)
	return d.buffer.polyDecomposed[:level]
}

// ClosestRepresentable returns the closest value of x
// that can be exactly represented by the gadget, rounding half up.
// The result is a multiple of Q / Base^Level, computed with wrapping arithmetic.
func (p GadgetParameters[T]) ClosestRepresentable(x T) T {
	s := p.LogLastBaseQ()
	return num.DivRoundBits(x, s) << s
}

// Decompose returns the signed decomposition of x.
func (p GadgetParameters[T]) Decompose(x T) []T {
	dOut := make([]T, p.level)
	p.DecomposeAssign(x, dOut)
	return dOut
}

// DecomposeAssign computes the signed decomposition of x and writes it to dOut.
// Each digit lies in [-Base/2, Base/2), stored in two's complement,
// and dOut[0] is the most significant digit.
func (p GadgetParameters[T]) DecomposeAssign(x T, dOut []T) {
	u := num.DivRoundBits(x, p.LogLastBaseQ())
	for i := p.level - 1; i >= 1; i-- {
		dOut[i] = u & (p.base - 1)
		u >>= p.baseLog
		u += dOut[i] >> (p.baseLog - 1)
		dOut[i] -= (dOut[i] & (p.base >> 1)) << 1
	}
	dOut[0] = u & (p.base - 1)
	dOut[0] -= (dOut[0] & (p.base >> 1)) << 1
}

// Recompose returns the sum of d[i] * BaseQ(i).
// Recompose(Decompose(x)) = ClosestRepresentable(x).
func (p GadgetParameters[T]) Recompose(d []T) T {
	var x T
	for i := 0; i < p.level; i++ {
		x += d[i] << (num.SizeT[T]() - (i+1)*p.baseLog)
	}
	return x
}

// DecomposeScalar decomposes x with respect to gadgetParams.
func (d *Decomposer[T]) DecomposeScalar(x T, gadgetParams GadgetParameters[T]) []T {
	decomposedOut := make([]T, gadgetParams.level)
	d.DecomposeScalarAssign(x, gadgetParams, decomposedOut)
	return decomposedOut
}

// DecomposeScalarAssign decomposes x with respect to gadgetParams and writes it to decomposedOut.
func (d *Decomposer[T]) DecomposeScalarAssign(x T, gadgetParams GadgetParameters[T], decomposedOut []T) {
	gadgetParams.DecomposeAssign(x, decomposedOut)
}

// DecomposePoly decomposes p with respect to gadgetParams.
func (d *Decomposer[T]) DecomposePoly(p poly.Poly[T], gadgetParams GadgetParameters[T]) []poly.Poly[T] {
	decomposedOut := make([]poly.Poly[T], gadgetParams.level)
	for i := 0; i < gadgetParams.level; i++ {
		decomposedOut[i] = poly.NewPoly[T](p.Degree())
	}
	d.DecomposePolyAssign(p, gadgetParams, decomposedOut)
	return decomposedOut
}

// DecomposePolyAssign decomposes p with respect to gadgetParams and writes it to decomposedOut.
// Each coefficient is decomposed independently.
func (d *Decomposer[T]) DecomposePolyAssign(p poly.Poly[T], gadgetParams GadgetParameters[T], decomposedOut []poly.Poly[T]) {
	lastBaseQLog := gadgetParams.LogLastBaseQ()
	base, baseLog, level := gadgetParams.base, gadgetParams.baseLog, gadgetParams.level
	for j := range p.Coeffs {
		u := num.DivRoundBits(p.Coeffs[j], lastBaseQLog)
		for i := level - 1; i >= 1; i-- {
			c := u & (base - 1)
			u >>= baseLog
			u += c >> (baseLog - 1)
			decomposedOut[i].Coeffs[j] = c - (c&(base>>1))<<1
		}
		c := u & (base - 1)
		decomposedOut[0].Coeffs[j] = c - (c&(base>>1))<<1
	}
}
