package poly

import (
	"math"
	"math/bits"
	"math/cmplx"

	"golang.org/x/sys/cpu"
)

// useRadix4 reports whether transforms fuse two butterfly levels per pass.
// Fusing halves the passes over the data, which pays off on cores
// with wide vector units and enough registers to hold four lanes.
var useRadix4 = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// fftContext holds the precomputed tables for the folded negacyclic FFT of degree N.
type fftContext struct {
	// degree is N.
	degree int
	// half is N/2, the length of the complex FFT.
	half int

	// twist[j] = exp(i*pi*j/N) for 0 <= j < N/2.
	twist []complex128
	// twistInv[j] = exp(-i*pi*j/N) / (N/2).
	twistInv []complex128

	// tw[j] = exp(2*pi*i*j/(N/2)) for 0 <= j < N/4.
	tw []complex128
	// twInv[j] = conj(tw[j]).
	twInv []complex128

	// bitRev is the bit reversal permutation of length N/2.
	bitRev []int

	// rootPow[j] = exp(i*pi*j/N) for 0 <= j < 2N.
	rootPow []complex128
}

func newFFTContext(N int) *fftContext {
	M := N / 2

	twist := make([]complex128, M)
	twistInv := make([]complex128, M)
	for j := 0; j < M; j++ {
		twist[j] = cmplx.Exp(complex(0, math.Pi*float64(j)/float64(N)))
		twistInv[j] = cmplx.Conj(twist[j]) / complex(float64(M), 0)
	}

	tw := make([]complex128, M/2)
	twInv := make([]complex128, M/2)
	for j := 0; j < M/2; j++ {
		tw[j] = cmplx.Exp(complex(0, 2*math.Pi*float64(j)/float64(M)))
		twInv[j] = cmplx.Conj(tw[j])
	}

	logM := bits.Len(uint(M)) - 1
	bitRev := make([]int, M)
	for j := 0; j < M; j++ {
		bitRev[j] = int(bits.Reverse64(uint64(j)) >> (64 - logM))
	}

	rootPow := make([]complex128, 2*N)
	for j := 0; j < 2*N; j++ {
		rootPow[j] = cmplx.Exp(complex(0, math.Pi*float64(j)/float64(N)))
	}

	return &fftContext{
		degree:   N,
		half:     M,
		twist:    twist,
		twistInv: twistInv,
		tw:       tw,
		twInv:    twInv,
		bitRev:   bitRev,
		rootPow:  rootPow,
	}
}

// transform computes the in-place length N/2 DFT of v using twiddles tw.
// With tw = ctx.tw, this is V_k = sum_j v_j exp(2*pi*i*j*k/(N/2)).
func (ctx *fftContext) transform(v []complex128, tw []complex128) {
	if useRadix4 {
		ctx.transformRadix4(v, tw)
	} else {
		ctx.transformRadix2(v, tw)
	}
}

// bitReverse permutes v in bit reversed order.
func (ctx *fftContext) bitReverse(v []complex128) {
	for j := 0; j < ctx.half; j++ {
		if r := ctx.bitRev[j]; j < r {
			v[j], v[r] = v[r], v[j]
		}
	}
}

// butterflyLevel runs the butterflies merging blocks of size / 2 into blocks of size.
func (ctx *fftContext) butterflyLevel(v []complex128, tw []complex128, size int) {
	M := ctx.half
	half := size >> 1
	step := M / size
	for start := 0; start < M; start += size {
		for j, t := 0, 0; j < half; j, t = j+1, t+step {
			u := v[start+j]
			w := v[start+j+half] * tw[t]
			v[start+j] = u + w
			v[start+j+half] = u - w
		}
	}
}

// transformRadix2 runs one butterfly level per pass.
func (ctx *fftContext) transformRadix2(v []complex128, tw []complex128) {
	ctx.bitReverse(v)
	for size := 2; size <= ctx.half; size <<= 1 {
		ctx.butterflyLevel(v, tw, size)
	}
}

// transformRadix4 runs two butterfly levels per pass.
// It performs the same floating point operations as transformRadix2, in the same order.
func (ctx *fftContext) transformRadix4(v []complex128, tw []complex128) {
	ctx.bitReverse(v)

	M := ctx.half
	size := 2
	for ; 2*size <= M; size <<= 2 {
		h := size >> 1
		step1 := M / size
		step2 := step1 >> 1
		for start := 0; start < M; start += 2 * size {
			for j := 0; j < h; j++ {
				a, b, c, d := start+j, start+j+h, start+j+2*h, start+j+3*h

				t1 := tw[j*step1]
				u0, w0 := v[a], v[b]*t1
				u1, w1 := v[c], v[d]*t1
				xa, xb := u0+w0, u0-w0
				xc, xd := u1+w1, u1-w1

				wc := xc * tw[j*step2]
				wd := xd * tw[(j+h)*step2]
				v[a], v[c] = xa+wc, xa-wc
				v[b], v[d] = xb+wd, xb-wd
			}
		}
	}
	if size <= M {
		ctx.butterflyLevel(v, tw, size)
	}
}

// monomial returns the evaluation of X^d at the k-th root, d in [0, 2N).
func (ctx *fftContext) monomial(d, k int) complex128 {
	return ctx.rootPow[((4*k+1)*d)%(2*ctx.degree)]
}
