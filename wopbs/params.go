package wopbs

import (
	"fmt"
	"math"

	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/noise"
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// ParametersLiteral is a structure for WoP-PBS parameters.
//
// # Warning
//
// Unless you are a cryptographic expert, DO NOT set these by yourself;
// always use the default parameters provided.
type ParametersLiteral[T tfhe.TorusInt] struct {
	// BaseParametersLiteral is the parameters of the underlying TFHE scheme.
	// Its MessageModulus sets the number of message bits,
	// and its BootstrapOrder must be OrderKeySwitchBlindRotate.
	BaseParametersLiteral tfhe.ParametersLiteral[T]

	// CircuitBootstrapParameters is the gadget parameters
	// of the GGSW ciphertexts produced by circuit bootstrapping.
	CircuitBootstrapParameters tfhe.GadgetParametersLiteral[T]
	// PrivateKeySwitchParameters is the gadget parameters
	// of the private functional keyswitching inside circuit bootstrapping.
	PrivateKeySwitchParameters tfhe.GadgetParametersLiteral[T]
}

// WithBaseParametersLiteral sets the BaseParametersLiteral and returns the new ParametersLiteral.
func (p ParametersLiteral[T]) WithBaseParametersLiteral(base tfhe.ParametersLiteral[T]) ParametersLiteral[T] {
	p.BaseParametersLiteral = base
	return p
}

// WithCircuitBootstrapParameters sets the CircuitBootstrapParameters and returns the new ParametersLiteral.
func (p ParametersLiteral[T]) WithCircuitBootstrapParameters(cbsParams tfhe.GadgetParametersLiteral[T]) ParametersLiteral[T] {
	p.CircuitBootstrapParameters = cbsParams
	return p
}

// WithPrivateKeySwitchParameters sets the PrivateKeySwitchParameters and returns the new ParametersLiteral.
func (p ParametersLiteral[T]) WithPrivateKeySwitchParameters(pfksParams tfhe.GadgetParametersLiteral[T]) ParametersLiteral[T] {
	p.PrivateKeySwitchParameters = pfksParams
	return p
}

// CompileChecked checks the parameters and returns the compiled Parameters.
// Every error wraps tfhe.ErrInvalidParameters or tfhe.ErrInvalidGadget.
func (p ParametersLiteral[T]) CompileChecked() (Parameters[T], error) {
	baseParams, err := p.BaseParametersLiteral.CompileChecked()
	if err != nil {
		return Parameters[T]{}, err
	}
	if baseParams.BootstrapOrder() != tfhe.OrderKeySwitchBlindRotate {
		return Parameters[T]{}, fmt.Errorf("%w: WoP-PBS needs OrderKeySwitchBlindRotate", tfhe.ErrInvalidParameters)
	}

	cbsParams, err := p.CircuitBootstrapParameters.CompileChecked()
	if err != nil {
		return Parameters[T]{}, fmt.Errorf("circuit bootstrap parameters: %w", err)
	}
	pfksParams, err := p.PrivateKeySwitchParameters.CompileChecked()
	if err != nil {
		return Parameters[T]{}, fmt.Errorf("private keyswitch parameters: %w", err)
	}

	return Parameters[T]{
		baseParameters: baseParams,

		messageBits: num.Log2(baseParams.MessageModulus()),
		deltaLog:    num.Log2(baseParams.Scale()),

		circuitBootstrapParameters: cbsParams,
		privateKeySwitchParameters: pfksParams,
	}, nil
}

// Compile transforms ParametersLiteral to read-only Parameters.
// If there is any invalid parameter in the literal, it panics.
// Default parameters are guaranteed to be compiled without panics.
func (p ParametersLiteral[T]) Compile() Parameters[T] {
	params, err := p.CompileChecked()
	if err != nil {
		panic(err)
	}
	return params
}

// Parameters are read-only, compiled parameters based on ParametersLiteral.
type Parameters[T tfhe.TorusInt] struct {
	baseParameters tfhe.Parameters[T]

	// messageBits equals log(MessageModulus).
	messageBits int
	// deltaLog equals log(Scale), the position of the least significant message bit.
	deltaLog int

	circuitBootstrapParameters tfhe.GadgetParameters[T]
	privateKeySwitchParameters tfhe.GadgetParameters[T]
}

// BaseParameters returns the parameters of the underlying TFHE scheme.
func (p Parameters[T]) BaseParameters() tfhe.Parameters[T] {
	return p.baseParameters
}

// MessageBits is the number of message bits, log(MessageModulus).
func (p Parameters[T]) MessageBits() int {
	return p.messageBits
}

// DeltaLog is log(Scale), the bit position of the least significant message bit.
func (p Parameters[T]) DeltaLog() int {
	return p.deltaLog
}

// LookUpTableSize is the number of entries of a single output lookup table, 2^MessageBits.
func (p Parameters[T]) LookUpTableSize() int {
	return 1 << p.messageBits
}

// CircuitBootstrapParameters is the gadget parameters of circuit bootstrapped GGSW ciphertexts.
func (p Parameters[T]) CircuitBootstrapParameters() tfhe.GadgetParameters[T] {
	return p.circuitBootstrapParameters
}

// PrivateKeySwitchParameters is the gadget parameters of private functional keyswitching.
func (p Parameters[T]) PrivateKeySwitchParameters() tfhe.GadgetParameters[T] {
	return p.privateKeySwitchParameters
}

// Literal returns a ParametersLiteral from this Parameters.
func (p Parameters[T]) Literal() ParametersLiteral[T] {
	return ParametersLiteral[T]{
		BaseParametersLiteral:      p.baseParameters.Literal(),
		CircuitBootstrapParameters: p.circuitBootstrapParameters.Literal(),
		PrivateKeySwitchParameters: p.privateKeySwitchParameters.Literal(),
	}
}

// circuitBootstrapGGSW returns the noise parameters of a circuit bootstrapped GGSW ciphertext.
func (p Parameters[T]) circuitBootstrapGGSW() noise.GGSWParameters {
	np := p.baseParameters.NoiseParameters()
	glweVar := p.baseParameters.GLWEStdDev() * p.baseParameters.GLWEStdDev()

	pf := noise.PFKSParameters{
		GadgetParameters: noise.GadgetParameters{
			BaseLog: p.privateKeySwitchParameters.BaseLog(),
			Level:   p.privateKeySwitchParameters.Level(),
			LogQ:    np.LogQ,
		},
		InputDimension: p.baseParameters.GLWEDimension(),
		PolyDegree:     p.baseParameters.PolyDegree(),
		KeyVar:         glweVar,
		FuncNorm2:      1,
	}

	return noise.GGSWParameters{
		GadgetParameters: noise.GadgetParameters{
			BaseLog: p.circuitBootstrapParameters.BaseLog(),
			Level:   p.circuitBootstrapParameters.Level(),
			LogQ:    np.LogQ,
		},
		GLWERank:   np.GLWERank,
		PolyDegree: np.PolyDegree,
		KeyVar:     noise.CircuitBootstrapVariance(np, pf),
	}
}

// EstimateLog2FailureProbability returns the estimated log2 failure probability
// of a WoP-PBS on a fresh ciphertext.
// It is the worst of the bit extraction steps and the final vertical packing.
func (p Parameters[T]) EstimateLog2FailureProbability() float64 {
	np := p.baseParameters.NoiseParameters()
	freshVar := p.baseParameters.GLWEStdDev() * p.baseParameters.GLWEStdDev()
	modSwitchVar := noise.ModSwitchVariance(np.LWEDimension, p.baseParameters.LogPolyDegree()+1)

	worst := math.Inf(-1)
	for i := 0; i < p.messageBits; i++ {
		v := noise.AdditionVariance(noise.BitExtractionVariance(freshVar, p.deltaLog, i, np), modSwitchVar)
		worst = math.Max(worst, noise.Log2FailureProbability(v, 0.25))
	}

	v := noise.VerticalPackingVariance(p.messageBits, p.circuitBootstrapGGSW())
	bound := 1 / (4 * float64(p.baseParameters.MessageModulus()))
	return math.Max(worst, noise.Log2FailureProbability(v, bound))
}
