package wopbs

import (
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// CircuitBootstrapKey is a list of private functional keyswitching keys,
// one for each row of the GGSW ciphertext produced by circuit bootstrapping.
//
// Value[0] evaluates the identity with P = 1, filling the body row.
// Value[i] for i >= 1 evaluates the negation with P = S_i, filling the row of mask i.
// Every key switches from the large LWE key.
type CircuitBootstrapKey[T tfhe.TorusInt] struct {
	// Value has length GLWERank + 1.
	Value []tfhe.PrivateFunctionalKeySwitchKey[T]
}

// NewCircuitBootstrapKey allocates an empty CircuitBootstrapKey.
func NewCircuitBootstrapKey[T tfhe.TorusInt](params Parameters[T]) CircuitBootstrapKey[T] {
	base := params.baseParameters
	cbsk := make([]tfhe.PrivateFunctionalKeySwitchKey[T], base.GLWERank()+1)
	for i := range cbsk {
		cbsk[i] = tfhe.NewPrivateFunctionalKeySwitchKey(base, base.GLWEDimension(), params.privateKeySwitchParameters)
	}
	return CircuitBootstrapKey[T]{Value: cbsk}
}

// EvaluationKey is a public key for Evaluator.
// All keys should be treated as read-only.
type EvaluationKey[T tfhe.TorusInt] struct {
	// BaseEvaluationKey is the bootstrapping and keyswitching key of the underlying scheme.
	BaseEvaluationKey tfhe.EvaluationKey[T]
	// CircuitBootstrapKey fills the rows of circuit bootstrapped GGSW ciphertexts.
	CircuitBootstrapKey CircuitBootstrapKey[T]
}
