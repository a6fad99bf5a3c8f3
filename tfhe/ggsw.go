package tfhe

// GLevCiphertext is a leveled GLWE ciphertext, decomposed with respect to gadget parameters.
type GLevCiphertext[T TorusInt] struct {
	// GadgetParameters is the gadget parameters of this ciphertext.
	GadgetParameters GadgetParameters[T]

	// Value has length Level.
	Value []GLWECiphertext[T]
}

// NewGLevCiphertext allocates an empty GLevCiphertext.
func NewGLevCiphertext[T TorusInt](params Parameters[T], gadgetParams GadgetParameters[T]) GLevCiphertext[T] {
	return NewGLevCiphertextCustom(params.glweRank, params.polyDegree, gadgetParams)
}

// NewGLevCiphertextCustom allocates an empty GLevCiphertext with given rank and degree.
func NewGLevCiphertextCustom[T TorusInt](glweRank, polyDegree int, gadgetParams GadgetParameters[T]) GLevCiphertext[T] {
	ct := make([]GLWECiphertext[T], gadgetParams.level)
	for i := range ct {
		ct[i] = NewGLWECiphertextCustom[T](glweRank, polyDegree)
	}
	return GLevCiphertext[T]{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct GLevCiphertext[T]) Copy() GLevCiphertext[T] {
	ctCopy := make([]GLWECiphertext[T], len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return GLevCiphertext[T]{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

// Clear clears the ciphertext.
func (ct GLevCiphertext[T]) Clear() {
	for i := range ct.Value {
		ct.Value[i].Clear()
	}
}

// GGSWCiphertext represents a GGSW ciphertext,
// which is a GLWERank+1 collection of GLev ciphertexts.
//
// Row 0 encrypts m * g_l, and row i >= 1 encrypts -m * g_l * S_i,
// where g_l = Q / Base^(l+1) and S_i is the i-th GLWE key polynomial.
type GGSWCiphertext[T TorusInt] struct {
	// GadgetParameters is the gadget parameters of this ciphertext.
	GadgetParameters GadgetParameters[T]

	// Value has length GLWERank + 1.
	Value []GLevCiphertext[T]
}

// NewGGSWCiphertext allocates an empty GGSWCiphertext.
func NewGGSWCiphertext[T TorusInt](params Parameters[T], gadgetParams GadgetParameters[T]) GGSWCiphertext[T] {
	return NewGGSWCiphertextCustom(params.glweRank, params.polyDegree, gadgetParams)
}

// NewGGSWCiphertextCustom allocates an empty GGSWCiphertext with given rank and degree.
func NewGGSWCiphertextCustom[T TorusInt](glweRank, polyDegree int, gadgetParams GadgetParameters[T]) GGSWCiphertext[T] {
	ct := make([]GLevCiphertext[T], glweRank+1)
	for i := range ct {
		ct[i] = NewGLevCiphertextCustom(glweRank, polyDegree, gadgetParams)
	}
	return GGSWCiphertext[T]{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct GGSWCiphertext[T]) Copy() GGSWCiphertext[T] {
	ctCopy := make([]GLevCiphertext[T], len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return GGSWCiphertext[T]{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

// Clear clears the ciphertext.
func (ct GGSWCiphertext[T]) Clear() {
	for i := range ct.Value {
		ct.Value[i].Clear()
	}
}

// FourierGLevCiphertext is a GLev ciphertext in the Fourier domain.
type FourierGLevCiphertext[T TorusInt] struct {
	// GadgetParameters is the gadget parameters of this ciphertext.
	GadgetParameters GadgetParameters[T]

	// Value has length Level.
	Value []FourierGLWECiphertext[T]
}

// NewFourierGLevCiphertextCustom allocates an empty FourierGLevCiphertext with given rank and degree.
func NewFourierGLevCiphertextCustom[T TorusInt](glweRank, polyDegree int, gadgetParams GadgetParameters[T]) FourierGLevCiphertext[T] {
	ct := make([]FourierGLWECiphertext[T], gadgetParams.level)
	for i := range ct {
		ct[i] = NewFourierGLWECiphertextCustom[T](glweRank, polyDegree)
	}
	return FourierGLevCiphertext[T]{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct FourierGLevCiphertext[T]) Copy() FourierGLevCiphertext[T] {
	ctCopy := make([]FourierGLWECiphertext[T], len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return FourierGLevCiphertext[T]{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

// FourierGGSWCiphertext is a GGSW ciphertext in the Fourier domain.
// Once generated it is only read, so it can be shared between evaluators.
type FourierGGSWCiphertext[T TorusInt] struct {
	// GadgetParameters is the gadget parameters of this ciphertext.
	GadgetParameters GadgetParameters[T]

	// Value has length GLWERank + 1.
	Value []FourierGLevCiphertext[T]
}

// NewFourierGGSWCiphertext allocates an empty FourierGGSWCiphertext.
func NewFourierGGSWCiphertext[T TorusInt](params Parameters[T], gadgetParams GadgetParameters[T]) FourierGGSWCiphertext[T] {
	return NewFourierGGSWCiphertextCustom(params.glweRank, params.polyDegree, gadgetParams)
}

// NewFourierGGSWCiphertextCustom allocates an empty FourierGGSWCiphertext with given rank and degree.
func NewFourierGGSWCiphertextCustom[T TorusInt](glweRank, polyDegree int, gadgetParams GadgetParameters[T]) FourierGGSWCiphertext[T] {
	ct := make([]FourierGLevCiphertext[T], glweRank+1)
	for i := range ct {
		ct[i] = NewFourierGLevCiphertextCustom(glweRank, polyDegree, gadgetParams)
	}
	return FourierGGSWCiphertext[T]{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct FourierGGSWCiphertext[T]) Copy() FourierGGSWCiphertext[T] {
	ctCopy := make([]FourierGLevCiphertext[T], len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return FourierGGSWCiphertext[T]{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

// Rank returns the GLWE rank of the ciphertext.
func (ct FourierGGSWCiphertext[T]) Rank() int {
	return len(ct.Value) - 1
}

// Degree returns the polynomial degree of the ciphertext.
func (ct FourierGGSWCiphertext[T]) Degree() int {
	return ct.Value[0].Value[0].Value[0].Degree()
}
