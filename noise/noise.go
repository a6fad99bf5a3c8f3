// Package noise implements error growth formulas for TFHE operations.
//
// Every variance in this package is normalized: an error e over Z_Q
// has normalized variance Var(e / Q). Secret keys are assumed to be
// uniform binary, so that a key coefficient has mean 1/2 and second moment 1/2.
package noise

import (
	"math"
)

// GadgetParameters describe a gadget decomposition of base 2^BaseLog with Level digits
// over Z_Q with Q = 2^LogQ.
type GadgetParameters struct {
	BaseLog int
	Level   int
	LogQ    int
}

// digitVariance returns the variance of a signed digit in [-B/2, B/2).
func (g GadgetParameters) digitVariance() float64 {
	B := math.Exp2(float64(g.BaseLog))
	return (B*B + 2) / 12
}

// roundingVariance returns the variance of the decomposition rounding error.
func (g GadgetParameters) roundingVariance() float64 {
	return (math.Exp2(-2*float64(g.BaseLog*g.Level)) - math.Exp2(-2*float64(g.LogQ))) / 12
}

// GGSWParameters describe a GGSW ciphertext used in an external product.
type GGSWParameters struct {
	GadgetParameters

	GLWERank   int
	PolyDegree int
	// KeyVar is the normalized variance of the fresh GGSW encryption error.
	KeyVar float64
}

// BootstrapParameters collect everything needed to estimate the error
// of a programmable bootstrapping.
type BootstrapParameters struct {
	LWEDimension int
	GLWERank     int
	PolyDegree   int
	LogQ         int

	BootstrapBaseLog int
	BootstrapLevel   int
	// BootstrapKeyVar is the normalized variance of the bootstrapping key error.
	BootstrapKeyVar float64

	KeySwitchBaseLog int
	KeySwitchLevel   int
	// KeySwitchKeyVar is the normalized variance of the keyswitching key error.
	KeySwitchKeyVar float64
}

// BootstrapGGSW returns the GGSW parameters of the bootstrapping key.
func (p BootstrapParameters) BootstrapGGSW() GGSWParameters {
	return GGSWParameters{
		GadgetParameters: GadgetParameters{BaseLog: p.BootstrapBaseLog, Level: p.BootstrapLevel, LogQ: p.LogQ},
		GLWERank:         p.GLWERank,
		PolyDegree:       p.PolyDegree,
		KeyVar:           p.BootstrapKeyVar,
	}
}

// AdditionVariance returns the variance of the sum of independent errors.
func AdditionVariance(vs ...float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum
}

// ScalarMulVariance returns the variance after multiplying by an integer scalar c.
func ScalarMulVariance(v float64, c int) float64 {
	return float64(c) * float64(c) * v
}

// ShiftVariance returns the variance after multiplying by 2^shift.
func ShiftVariance(v float64, shift int) float64 {
	return v * math.Exp2(2*float64(shift))
}

// KeySwitchVariance returns the variance after an LWE keyswitching
// of a ciphertext with variance vIn and inputDimension switched coefficients.
func KeySwitchVariance(vIn float64, inputDimension int, kskVar float64, baseLog, level, logQ int) float64 {
	g := GadgetParameters{BaseLog: baseLog, Level: level, LogQ: logQ}
	n := float64(inputDimension)
	return vIn + n*float64(level)*g.digitVariance()*kskVar + n*g.roundingVariance()/2
}

// ModSwitchVariance returns the variance introduced by switching the modulus
// of an LWE ciphertext of dimension n to 2^logModulus.
func ModSwitchVariance(n, logModulus int) float64 {
	m := math.Exp2(float64(logModulus))
	return (float64(n)/2 + 1) / (12 * m * m)
}

// ExternalProductVariance returns the variance of the external product of a GGSW ciphertext
// encrypting a message with squared norm msgNorm2 and a GLWE ciphertext with variance vIn.
func ExternalProductVariance(vIn float64, g GGSWParameters, msgNorm2 float64) float64 {
	k, N := float64(g.GLWERank), float64(g.PolyDegree)
	decomposition := (k + 1) * float64(g.Level) * N * g.digitVariance() * g.KeyVar
	rounding := (1 + k*N/2) * g.roundingVariance()
	return decomposition + msgNorm2*(vIn+rounding)
}

// CMuxVariance returns the variance of a CMUX between ciphertexts with variance v0 and v1,
// controlled by a GGSW ciphertext encrypting a bit.
func CMuxVariance(v0, v1 float64, g GGSWParameters) float64 {
	return math.Max(v0, v1) + ExternalProductVariance(0, g, 1)
}

// BlindRotateVariance returns the variance of the accumulator after a blind rotation
// over a noiseless lookup table.
func BlindRotateVariance(p BootstrapParameters) float64 {
	// Each step is a CMUX between acc and X^a * acc.
	return float64(p.LWEDimension) * CMuxVariance(0, 0, p.BootstrapGGSW())
}

// PBSVariance returns the variance of a sample extracted blind rotation,
// which is independent of the input error.
func PBSVariance(p BootstrapParameters) float64 {
	return BlindRotateVariance(p)
}

// PFKSParameters describe a private functional keyswitching key.
type PFKSParameters struct {
	GadgetParameters

	InputDimension int
	PolyDegree     int
	// KeyVar is the normalized variance of the keyswitching key error.
	KeyVar float64
	// FuncNorm2 is the squared norm of the product f * P.
	FuncNorm2 float64
}

// PFKSVariance returns the variance after a private functional keyswitching
// of a ciphertext with variance vIn.
func PFKSVariance(vIn float64, p PFKSParameters) float64 {
	n := float64(p.InputDimension + 1)
	return p.FuncNorm2*(vIn+n*p.roundingVariance()/2) + n*float64(p.Level)*p.digitVariance()*p.KeyVar
}

// BitExtractionVariance returns the variance of the i-th extracted bit
// of a ciphertext with variance vIn, whose message starts at bit deltaLog.
// The result is normalized with respect to the extracted bit at the most significant position.
func BitExtractionVariance(vIn float64, deltaLog, i int, p BootstrapParameters) float64 {
	current := vIn + float64(i)*PBSVariance(p)
	shifted := ShiftVariance(current, p.LogQ-deltaLog-i-1)
	return KeySwitchVariance(shifted, p.GLWERank*p.PolyDegree-p.LWEDimension, p.KeySwitchKeyVar, p.KeySwitchBaseLog, p.KeySwitchLevel, p.LogQ)
}

// CircuitBootstrapVariance returns the variance of the worst row of a GGSW ciphertext
// produced by a circuit bootstrapping.
func CircuitBootstrapVariance(p BootstrapParameters, pf PFKSParameters) float64 {
	return PFKSVariance(PBSVariance(p), pf)
}

// VerticalPackingVariance returns the variance of a vertical packing over r selector bits,
// starting from a noiseless lookup table, with GGSW ciphertexts from circuit bootstrapping.
func VerticalPackingVariance(r int, g GGSWParameters) float64 {
	var v float64
	for i := 0; i < r; i++ {
		v = CMuxVariance(v, v, g)
	}
	return v
}
