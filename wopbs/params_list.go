package wopbs

import (
	"github.com/snucp/tfhe-wopbs/tfhe"
)

var (
	// ParamsWoPBS is a default parameter set for evaluating
	// arbitrary functions over 4-bit messages without padding.
	ParamsWoPBS = ParametersLiteral[uint64]{
		BaseParametersLiteral: tfhe.ParamsWoPBS,

		CircuitBootstrapParameters: tfhe.GadgetParametersLiteral[uint64]{
			Base:  1 << 5,
			Level: 4,
		},
		PrivateKeySwitchParameters: tfhe.GadgetParametersLiteral[uint64]{
			Base:  1 << 15,
			Level: 2,
		},
	}

	// ParamsTestUint64 is a small parameter set over 4-bit messages for tests.
	//
	// # Warning
	//
	// This is NOT secure. Never use it outside of tests.
	ParamsTestUint64 = ParametersLiteral[uint64]{
		BaseParametersLiteral: tfhe.ParamsTestUint64.WithMessageModulus(1 << 4),

		CircuitBootstrapParameters: tfhe.GadgetParametersLiteral[uint64]{
			Base:  1 << 5,
			Level: 4,
		},
		PrivateKeySwitchParameters: tfhe.GadgetParametersLiteral[uint64]{
			Base:  1 << 15,
			Level: 3,
		},
	}
)
