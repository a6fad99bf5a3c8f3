package poly_test

import (
	"math/rand"
	"testing"

	"github.com/snucp/tfhe-wopbs/math/poly"
	"github.com/stretchr/testify/assert"
)

var (
	N   = 1 << 9
	eps = uint64(1 << 32)
)

func randomPoly(r *rand.Rand, N int) poly.Poly[uint64] {
	p := poly.NewPoly[uint64](N)
	for i := range p.Coeffs {
		p.Coeffs[i] = r.Uint64()
	}
	return p
}

func binaryPoly(r *rand.Rand, N int) poly.Poly[uint64] {
	p := poly.NewPoly[uint64](N)
	for i := range p.Coeffs {
		p.Coeffs[i] = uint64(r.Intn(2))
	}
	return p
}

func TestFourierTransform(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	eval := poly.NewEvaluator[uint64](N)

	t.Run("RoundTrip", func(t *testing.T) {
		p := randomPoly(r, N)
		pOut := eval.ToPoly(eval.ToFourierPoly(p))
		for i := range p.Coeffs {
			assert.LessOrEqual(t, distance(p.Coeffs[i], pOut.Coeffs[i]), eps)
		}
	})

	t.Run("RoundTripUint32", func(t *testing.T) {
		eval32 := poly.NewEvaluator[uint32](N)
		p := poly.NewPoly[uint32](N)
		for i := range p.Coeffs {
			p.Coeffs[i] = r.Uint32()
		}
		assert.Equal(t, p.Coeffs, eval32.ToPoly(eval32.ToFourierPoly(p)).Coeffs)
	})
}

func TestMul(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	eval := poly.NewEvaluator[uint64](N)

	p0 := randomPoly(r, N)
	p1 := binaryPoly(r, N)

	want := eval.NewPoly()
	eval.MulPolyNaiveAssign(p0, p1, want)

	t.Run("Exact", func(t *testing.T) {
		assert.Equal(t, want.Coeffs, eval.MulPoly(p0, p1).Coeffs)
	})

	t.Run("Fourier", func(t *testing.T) {
		fp := eval.ToFourierPoly(p0)
		eval.MulFourierPolyAssign(fp, eval.ToFourierPoly(p1), fp)
		got := eval.ToPoly(fp)
		for i := range got.Coeffs {
			assert.LessOrEqual(t, distance(want.Coeffs[i], got.Coeffs[i]), eps)
		}
	})

	t.Run("ExactUint32", func(t *testing.T) {
		eval32 := poly.NewEvaluator[uint32](N)
		p0, p1 := eval32.NewPoly(), eval32.NewPoly()
		for i := 0; i < N; i++ {
			p0.Coeffs[i] = r.Uint32()
			p1.Coeffs[i] = uint32(r.Intn(2))
		}

		want32 := eval32.NewPoly()
		eval32.MulPolyNaiveAssign(p0, p1, want32)
		assert.Equal(t, want32.Coeffs, eval32.MulPoly(p0, p1).Coeffs)
	})
}

func TestMonomial(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	eval := poly.NewEvaluator[uint64](N)
	p := binaryPoly(r, N)

	for _, d := range []int{0, 1, 37, N, N + 5, 2*N - 1, -3} {
		want := eval.MonomialMulPoly(p, d)

		mono := eval.NewPoly()
		mono.Coeffs[0] = 1
		eval.MonomialMulPolyInPlace(mono, d)
		assert.Equal(t, want.Coeffs, eval.MulPoly(p, mono).Coeffs)

		fp := eval.ToFourierPoly(p)
		fMono := eval.NewFourierPoly()
		eval.MonomialToFourierPolyAssign(d, fMono)
		eval.MulFourierPolyAssign(fp, fMono, fp)
		assert.Equal(t, want.Coeffs, eval.ToPoly(fp).Coeffs)

		fp = eval.ToFourierPoly(p)
		eval.MonomialSubOneToFourierPolyAssign(d, fMono)
		eval.MulFourierPolyAssign(fp, fMono, fp)
		assert.Equal(t, eval.SubPoly(want, p).Coeffs, eval.ToPoly(fp).Coeffs)
	}

	t.Run("Wrap", func(t *testing.T) {
		x := eval.NewPoly()
		x.Coeffs[N-1] = 1
		eval.MonomialMulPolyInPlace(x, 1)
		assert.Equal(t, ^uint64(0), x.Coeffs[0])
	})
}

func distance(x, y uint64) uint64 {
	d := x - y
	if d > 1<<63 {
		return -d
	}
	return d
}
