package noise

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/snucp/tfhe-wopbs/math/num"
)

// Statistics is an empirical summary of normalized errors.
type Statistics struct {
	Mean     float64
	Variance float64
	StdDev   float64
	Max      float64
}

// Log2StdDev returns log2 of the standard deviation.
func (s Statistics) Log2StdDev() float64 {
	return math.Log2(s.StdDev)
}

// Measure returns the empirical statistics of normalized errors.
func Measure(errs []float64) (Statistics, error) {
	data := stats.Float64Data(errs)

	mean, err := data.Mean()
	if err != nil {
		return Statistics{}, err
	}
	variance, err := data.PopulationVariance()
	if err != nil {
		return Statistics{}, err
	}
	stdDev, err := data.StandardDeviation()
	if err != nil {
		return Statistics{}, err
	}

	abs := make(stats.Float64Data, len(errs))
	for i, e := range errs {
		abs[i] = num.Abs(e)
	}
	maxAbs, err := abs.Max()
	if err != nil {
		return Statistics{}, err
	}

	return Statistics{
		Mean:     mean,
		Variance: variance,
		StdDev:   stdDev,
		Max:      maxAbs,
	}, nil
}

// MeasureTorus returns the empirical statistics of errors over Z_Q,
// interpreted as signed integers and normalized by Q.
func MeasureTorus[T num.Unsigned](errs []T) (Statistics, error) {
	q := float64(uint64(1)<<(num.SizeT[T]()-1)) * 2
	normalized := make([]float64, len(errs))
	for i, e := range errs {
		normalized[i] = num.ToSigned(e) / q
	}
	return Measure(normalized)
}
