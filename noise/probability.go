package noise

import (
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// precision is the bit precision used for deep-tail evaluations.
const precision = 256

// FailureProbability returns the probability that a centered gaussian error
// with normalized variance v exceeds bound in absolute value.
// It underflows to zero for tails deeper than about 2^-1074;
// use [Log2FailureProbability] for those.
func FailureProbability(v, bound float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Erfc(bound / math.Sqrt(2*v))
}

// Log2FailureProbability returns log2 of [FailureProbability].
// It remains accurate where float64 underflows.
func Log2FailureProbability(v, bound float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	x := bound / math.Sqrt(2*v)
	if x < 8 {
		return math.Log2(math.Erfc(x))
	}

	// erfc(x) = exp(-x^2) / (x * sqrt(pi)) * (1 - 1/(2x^2) + 3/(4x^4) - ...)
	xBig := new(big.Float).SetPrec(precision).SetFloat64(x)
	x2 := new(big.Float).SetPrec(precision).Mul(xBig, xBig)

	tail := bigfloat.Exp(new(big.Float).SetPrec(precision).Neg(x2))

	series := 1 - 1/(2*x*x) + 3/(4*x*x*x*x)
	denom := new(big.Float).SetPrec(precision).SetFloat64(x * math.Sqrt(math.Pi) / series)
	tail.Quo(tail, denom)

	ln := bigfloat.Log(tail)
	ln.Quo(ln, new(big.Float).SetPrec(precision).SetFloat64(math.Ln2))

	log2, _ := ln.Float64()
	return log2
}

// MaxVarianceForFailure returns the largest normalized variance whose failure probability
// against bound stays below 2^log2Probability.
func MaxVarianceForFailure(bound, log2Probability float64) float64 {
	lo, hi := 0.0, bound*bound
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if Log2FailureProbability(mid, bound) <= log2Probability {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
