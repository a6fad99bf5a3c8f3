package tfhe

import (
	"fmt"
	"math"

	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/noise"
)

// TorusInt represents the integer type used as the discretized torus Z_Q,
// where Q = 2^32 or 2^64. All arithmetic wraps modulo Q.
type TorusInt interface {
	~uint32 | ~uint64
}

// BootstrapOrder is the order of the programmable bootstrapping.
type BootstrapOrder int

const (
	// OrderKeySwitchBlindRotate sets the order to KeySwitch - BlindRotate - SampleExtract.
	// Ciphertexts live under the GLWE key, and the LWE key is only used inside bootstrapping.
	// This is the order used by the circuit bootstrapping pipeline.
	OrderKeySwitchBlindRotate BootstrapOrder = iota

	// OrderBlindRotateKeySwitch sets the order to BlindRotate - SampleExtract - KeySwitch.
	// Ciphertexts live under the LWE key.
	OrderBlindRotateKeySwitch
)

// GadgetParametersLiteral is a structure for Gadget Decomposition,
// which is used in Lev, GSW, GLev and GGSW encryptions.
type GadgetParametersLiteral[T TorusInt] struct {
	// Base is a base of gadget. It must be a power of two.
	Base T
	// Level is a length of gadget.
	Level int
}

// WithBase sets the base and returns the new GadgetParametersLiteral.
func (p GadgetParametersLiteral[T]) WithBase(base T) GadgetParametersLiteral[T] {
	p.Base = base
	return p
}

// WithLevel sets the level and returns the new GadgetParametersLiteral.
func (p GadgetParametersLiteral[T]) WithLevel(level int) GadgetParametersLiteral[T] {
	p.Level = level
	return p
}

// CompileChecked checks the parameters and returns the compiled GadgetParameters.
// It returns an error wrapping ErrInvalidGadget if:
//   - Base is not a power of two or is smaller than 2
//   - Level is not positive
//   - Base * Level is not strictly below the bit width of T
func (p GadgetParametersLiteral[T]) CompileChecked() (GadgetParameters[T], error) {
	switch {
	case p.Base < 2 || !num.IsPowerOfTwo(p.Base):
		return GadgetParameters[T]{}, fmt.Errorf("%w: base %v is not a power of two >= 2", ErrInvalidGadget, p.Base)
	case p.Level <= 0:
		return GadgetParameters[T]{}, fmt.Errorf("%w: level %v is not positive", ErrInvalidGadget, p.Level)
	case num.Log2(p.Base)*p.Level >= num.SizeT[T]():
		return GadgetParameters[T]{}, fmt.Errorf("%w: base log %v * level %v exceeds %v bits", ErrInvalidGadget, num.Log2(p.Base), p.Level, num.SizeT[T]())
	}

	return GadgetParameters[T]{
		base:    p.Base,
		baseLog: num.Log2(p.Base),
		level:   p.Level,
	}, nil
}

// Compile transforms GadgetParametersLiteral to read-only GadgetParameters.
// If there is any invalid parameter in the literal, it panics.
func (p GadgetParametersLiteral[T]) Compile() GadgetParameters[T] {
	params, err := p.CompileChecked()
	if err != nil {
		panic(err)
	}
	return params
}

// GadgetParameters is a read-only, compiled parameters based on GadgetParametersLiteral.
type GadgetParameters[T TorusInt] struct {
	// Base is a base of gadget. It must be a power of two.
	base T
	// BaseLog equals log(Base).
	baseLog int
	// Level is a length of gadget.
	level int
}

// Base is a base of gadget. It must be a power of two.
func (p GadgetParameters[T]) Base() T {
	return p.base
}

// BaseLog equals log(Base).
func (p GadgetParameters[T]) BaseLog() int {
	return p.baseLog
}

// Level is a length of gadget.
func (p GadgetParameters[T]) Level() int {
	return p.level
}

// LogLastBaseQ returns log(Q / Base^Level), the bit position of the
// least significant digit.
func (p GadgetParameters[T]) LogLastBaseQ() int {
	return num.SizeT[T]() - p.baseLog*p.level
}

// BaseQ returns Q / Base^(i+1) for 0 <= i < Level.
// For the most common usages i = 0 and i = Level-1, use [GadgetParameters.FirstBaseQ] and [GadgetParameters.LastBaseQ].
func (p GadgetParameters[T]) BaseQ(i int) T {
	return T(1) << (num.SizeT[T]() - (i+1)*p.baseLog)
}

// FirstBaseQ returns Q / Base.
func (p GadgetParameters[T]) FirstBaseQ() T {
	return p.BaseQ(0)
}

// LastBaseQ returns Q / Base^Level.
func (p GadgetParameters[T]) LastBaseQ() T {
	return p.BaseQ(p.level - 1)
}

// Literal returns a GadgetParametersLiteral from this GadgetParameters.
func (p GadgetParameters[T]) Literal() GadgetParametersLiteral[T] {
	return GadgetParametersLiteral[T]{
		Base:  p.base,
		Level: p.level,
	}
}

// ParametersLiteral is a structure for TFHE parameters.
//
// # Warning
//
// Unless you are a cryptographic expert, DO NOT set these by yourself;
// always use the default parameters provided.
type ParametersLiteral[T TorusInt] struct {
	// LWEDimension is the dimension of LWE lattice used. Usually this is denoted by n.
	LWEDimension int
	// GLWERank is the rank of GLWE lattice used. Usually this is denoted by k.
	// Length of GLWE secret key is GLWERank, and length of GLWE ciphertext is GLWERank+1.
	GLWERank int
	// PolyDegree is the degree of polynomials in GLWE entities. Usually this is denoted by N.
	PolyDegree int

	// LWEStdDev is the normalized standard deviation used for gaussian error sampling in LWE encryption.
	LWEStdDev float64
	// GLWEStdDev is the normalized standard deviation used for gaussian error sampling in GLWE encryption.
	GLWEStdDev float64

	// MessageModulus is the largest message that could be encrypted.
	MessageModulus T

	// BlindRotateParameters is the gadget parameters for Blind Rotation.
	BlindRotateParameters GadgetParametersLiteral[T]
	// KeySwitchParameters is the gadget parameters for KeySwitching.
	KeySwitchParameters GadgetParametersLiteral[T]

	// BootstrapOrder is the order of Programmable Bootstrapping.
	BootstrapOrder BootstrapOrder
}

// WithLWEDimension sets the LWEDimension and returns the new ParametersLiteral.
func (p ParametersLiteral[T]) WithLWEDimension(lweDimension int) ParametersLiteral[T] {
	p.LWEDimension = lweDimension
	return p
}

// WithGLWERank sets the GLWERank and returns the new ParametersLiteral.
func (p ParametersLiteral[T]) WithGLWERank(glweRank int) ParametersLiteral[T] {
	p.GLWERank = glweRank
	return p
}

// WithPolyDegree sets the PolyDegree and returns the new ParametersLiteral.
func (p ParametersLiteral[T]) WithPolyDegree(polyDegree int) ParametersLiteral[T] {
	p.PolyDegree = polyDegree
	return p
}

// WithMessageModulus sets the MessageModulus and returns the new ParametersLiteral.
func (p ParametersLiteral[T]) WithMessageModulus(messageModulus T) ParametersLiteral[T] {
	p.MessageModulus = messageModulus
	return p
}

// WithBootstrapOrder sets the BootstrapOrder and returns the new ParametersLiteral.
func (p ParametersLiteral[T]) WithBootstrapOrder(bootstrapOrder BootstrapOrder) ParametersLiteral[T] {
	p.BootstrapOrder = bootstrapOrder
	return p
}

// CompileChecked checks the parameters and returns the compiled Parameters.
// Every error wraps ErrInvalidParameters or ErrInvalidGadget.
func (p ParametersLiteral[T]) CompileChecked() (Parameters[T], error) {
	switch {
	case p.LWEDimension <= 0:
		return Parameters[T]{}, fmt.Errorf("%w: LWEDimension %v is not positive", ErrInvalidParameters, p.LWEDimension)
	case p.GLWERank <= 0:
		return Parameters[T]{}, fmt.Errorf("%w: GLWERank %v is not positive", ErrInvalidParameters, p.GLWERank)
	case p.PolyDegree < 4 || !num.IsPowerOfTwo(p.PolyDegree):
		return Parameters[T]{}, fmt.Errorf("%w: PolyDegree %v is not a power of two >= 4", ErrInvalidParameters, p.PolyDegree)
	case p.LWEDimension > p.GLWERank*p.PolyDegree:
		return Parameters[T]{}, fmt.Errorf("%w: LWEDimension %v exceeds GLWEDimension %v", ErrInvalidParameters, p.LWEDimension, p.GLWERank*p.PolyDegree)
	case p.LWEStdDev <= 0 || p.GLWEStdDev <= 0:
		return Parameters[T]{}, fmt.Errorf("%w: standard deviations must be positive", ErrInvalidParameters)
	case p.MessageModulus < 2 || !num.IsPowerOfTwo(p.MessageModulus):
		return Parameters[T]{}, fmt.Errorf("%w: MessageModulus %v is not a power of two >= 2", ErrInvalidParameters, p.MessageModulus)
	case int(p.MessageModulus) > p.PolyDegree:
		return Parameters[T]{}, fmt.Errorf("%w: MessageModulus %v exceeds PolyDegree %v", ErrInvalidParameters, p.MessageModulus, p.PolyDegree)
	case p.BootstrapOrder != OrderKeySwitchBlindRotate && p.BootstrapOrder != OrderBlindRotateKeySwitch:
		return Parameters[T]{}, fmt.Errorf("%w: unknown BootstrapOrder %v", ErrInvalidParameters, p.BootstrapOrder)
	}

	blindRotateParameters, err := p.BlindRotateParameters.CompileChecked()
	if err != nil {
		return Parameters[T]{}, fmt.Errorf("blind rotate parameters: %w", err)
	}
	keySwitchParameters, err := p.KeySwitchParameters.CompileChecked()
	if err != nil {
		return Parameters[T]{}, fmt.Errorf("keyswitch parameters: %w", err)
	}

	Q := math.Exp2(float64(num.SizeT[T]()))

	return Parameters[T]{
		lweDimension:  p.LWEDimension,
		glweRank:      p.GLWERank,
		polyDegree:    p.PolyDegree,
		logPolyDegree: num.Log2(p.PolyDegree),
		glweDimension: p.GLWERank * p.PolyDegree,

		lweStdDev:   p.LWEStdDev,
		glweStdDev:  p.GLWEStdDev,
		lweStdDevQ:  p.LWEStdDev * Q,
		glweStdDevQ: p.GLWEStdDev * Q,

		messageModulus: p.MessageModulus,
		scale:          (T(1) << (num.SizeT[T]() - 1)) / p.MessageModulus,

		blindRotateParameters: blindRotateParameters,
		keySwitchParameters:   keySwitchParameters,

		bootstrapOrder: p.BootstrapOrder,
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
type Parameters[T TorusInt] struct {
	// LWEDimension is the dimension of LWE lattice used. Usually this is denoted by n.
	lweDimension int
	// GLWERank is the rank of GLWE lattice used. Usually this is denoted by k.
	glweRank int
	// PolyDegree is the degree of polynomials in GLWE entities. Usually this is denoted by N.
	polyDegree int
	// LogPolyDegree equals log(PolyDegree).
	logPolyDegree int
	// GLWEDimension is the dimension of LWE ciphertexts extracted from GLWE ciphertexts.
	// It equals GLWERank * PolyDegree.
	glweDimension int

	lweStdDev   float64
	glweStdDev  float64
	lweStdDevQ  float64
	glweStdDevQ float64

	// MessageModulus is the largest message that could be encrypted.
	messageModulus T
	// Scale is the scaling factor used for message encoding, with one bit of padding.
	scale T

	blindRotateParameters GadgetParameters[T]
	keySwitchParameters   GadgetParameters[T]

	bootstrapOrder BootstrapOrder
}

// DefaultLWEDimension returns the default dimension for LWE entities.
// Returns GLWEDimension if BootstrapOrder is OrderKeySwitchBlindRotate,
// and LWEDimension otherwise.
func (p Parameters[T]) DefaultLWEDimension() int {
	if p.bootstrapOrder == OrderKeySwitchBlindRotate {
		return p.glweDimension
	}
	return p.lweDimension
}

// LWEDimension is the dimension of LWE lattice used. Usually this is denoted by n.
func (p Parameters[T]) LWEDimension() int {
	return p.lweDimension
}

// GLWEDimension is the dimension of LWE ciphertexts extracted from GLWE ciphertexts.
func (p Parameters[T]) GLWEDimension() int {
	return p.glweDimension
}

// GLWERank is the rank of GLWE lattice used. Usually this is denoted by k.
func (p Parameters[T]) GLWERank() int {
	return p.glweRank
}

// PolyDegree is the degree of polynomials in GLWE entities. Usually this is denoted by N.
func (p Parameters[T]) PolyDegree() int {
	return p.polyDegree
}

// LogPolyDegree equals log(PolyDegree).
func (p Parameters[T]) LogPolyDegree() int {
	return p.logPolyDegree
}

// LWEStdDev is the normalized standard deviation used for gaussian error sampling in LWE encryption.
func (p Parameters[T]) LWEStdDev() float64 {
	return p.lweStdDev
}

// LWEStdDevQ is LWEStdDev * Q.
func (p Parameters[T]) LWEStdDevQ() float64 {
	return p.lweStdDevQ
}

// GLWEStdDev is the normalized standard deviation used for gaussian error sampling in GLWE encryption.
func (p Parameters[T]) GLWEStdDev() float64 {
	return p.glweStdDev
}

// GLWEStdDevQ is GLWEStdDev * Q.
func (p Parameters[T]) GLWEStdDevQ() float64 {
	return p.glweStdDevQ
}

// DefaultLWEStdDevQ returns the absolute standard deviation for default LWE entities.
func (p Parameters[T]) DefaultLWEStdDevQ() float64 {
	if p.bootstrapOrder == OrderKeySwitchBlindRotate {
		return p.glweStdDevQ
	}
	return p.lweStdDevQ
}

// MessageModulus is the largest message that could be encrypted.
func (p Parameters[T]) MessageModulus() T {
	return p.messageModulus
}

// Scale is the scaling factor used for message encoding.
// The lower log(Scale) bits are reserved for errors, and one bit on top is left as padding.
func (p Parameters[T]) Scale() T {
	return p.scale
}

// BlindRotateParameters is the gadget parameters for Blind Rotation.
func (p Parameters[T]) BlindRotateParameters() GadgetParameters[T] {
	return p.blindRotateParameters
}

// KeySwitchParameters is the gadget parameters for KeySwitching.
func (p Parameters[T]) KeySwitchParameters() GadgetParameters[T] {
	return p.keySwitchParameters
}

// BootstrapOrder is the order of Programmable Bootstrapping.
func (p Parameters[T]) BootstrapOrder() BootstrapOrder {
	return p.bootstrapOrder
}

// Literal returns a ParametersLiteral from this Parameters.
func (p Parameters[T]) Literal() ParametersLiteral[T] {
	return ParametersLiteral[T]{
		LWEDimension: p.lweDimension,
		GLWERank:     p.glweRank,
		PolyDegree:   p.polyDegree,

		LWEStdDev:  p.lweStdDev,
		GLWEStdDev: p.glweStdDev,

		MessageModulus: p.messageModulus,

		BlindRotateParameters: p.blindRotateParameters.Literal(),
		KeySwitchParameters:   p.keySwitchParameters.Literal(),

		BootstrapOrder: p.bootstrapOrder,
	}
}

// NoiseParameters returns the parameters consumed by the noise estimation formulas.
func (p Parameters[T]) NoiseParameters() noise.BootstrapParameters {
	return noise.BootstrapParameters{
		LWEDimension:     p.lweDimension,
		GLWERank:         p.glweRank,
		PolyDegree:       p.polyDegree,
		LogQ:             num.SizeT[T](),
		BootstrapBaseLog: p.blindRotateParameters.baseLog,
		BootstrapLevel:   p.blindRotateParameters.level,
		BootstrapKeyVar:  p.glweStdDev * p.glweStdDev,
		KeySwitchBaseLog: p.keySwitchParameters.baseLog,
		KeySwitchLevel:   p.keySwitchParameters.level,
		KeySwitchKeyVar:  p.lweStdDev * p.lweStdDev,
	}
}

// EstimateBootstrapVariance returns the estimated normalized variance
// of the error at the input of the modulus switching, right before the blind rotation,
// assuming the input is the output of a previous bootstrapping.
func (p Parameters[T]) EstimateBootstrapVariance() float64 {
	np := p.NoiseParameters()
	v := noise.PBSVariance(np)
	v = noise.KeySwitchVariance(v, p.glweDimension-p.lweDimension, np.KeySwitchKeyVar, np.KeySwitchBaseLog, np.KeySwitchLevel, np.LogQ)
	return noise.AdditionVariance(v, noise.ModSwitchVariance(p.lweDimension, p.logPolyDegree+1))
}

// EstimateBootstrapFailureProbability returns the estimated failure probability
// of a programmable bootstrapping with the default message encoding.
func (p Parameters[T]) EstimateBootstrapFailureProbability() float64 {
	bound := 1 / (4 * float64(p.messageModulus))
	return noise.FailureProbability(p.EstimateBootstrapVariance(), bound)
}
