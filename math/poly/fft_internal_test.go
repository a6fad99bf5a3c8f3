package poly

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformKernels(t *testing.T) {
	r := rand.New(rand.NewSource(0))

	for _, N := range []int{2, 4, 8, 16, 32, 1 << 10, 1 << 11} {
		ctx := newFFTContext(N)

		v := make([]complex128, N/2)
		for i := range v {
			v[i] = complex(r.NormFloat64(), r.NormFloat64())
		}

		v2 := append([]complex128(nil), v...)
		v4 := append([]complex128(nil), v...)
		ctx.transformRadix2(v2, ctx.tw)
		ctx.transformRadix4(v4, ctx.tw)
		assert.Equal(t, v2, v4, "N=%v", N)

		ctx.transformRadix2(v2, ctx.twInv)
		ctx.transformRadix4(v4, ctx.twInv)
		assert.Equal(t, v2, v4, "N=%v", N)

		// The first output is the sum of the inputs.
		if N >= 4 {
			var want complex128
			for j := range v {
				want += v[j] * ctx.tw[0]
			}
			w := append([]complex128(nil), v...)
			ctx.transformRadix4(w, ctx.tw)
			assert.InDelta(t, real(want), real(w[0]), 1e-9)
			assert.InDelta(t, imag(want), imag(w[0]), 1e-9)
		}
	}
}
