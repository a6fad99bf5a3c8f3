package tfhe

var (
	// ParamsMessage2 ensures 128-bit security with 2-bit messages.
	// It uses the BlindRotate - KeySwitch order, so ciphertexts live under the LWE key.
	ParamsMessage2 = ParametersLiteral[uint64]{
		LWEDimension: 742,
		GLWERank:     1,
		PolyDegree:   2048,

		LWEStdDev:  0.000007069849454709433,
		GLWEStdDev: 0.00000000000000029403601535432533,

		MessageModulus: 1 << 2,

		BlindRotateParameters: GadgetParametersLiteral[uint64]{
			Base:  1 << 23,
			Level: 1,
		},
		KeySwitchParameters: GadgetParametersLiteral[uint64]{
			Base:  1 << 3,
			Level: 5,
		},

		BootstrapOrder: OrderBlindRotateKeySwitch,
	}

	// ParamsWoPBS ensures 128-bit security for the without-padding bootstrapping pipeline.
	// Messages live under the GLWE key, which is required for the circuit bootstrapping.
	ParamsWoPBS = ParametersLiteral[uint64]{
		LWEDimension: 769,
		GLWERank:     2,
		PolyDegree:   1024,

		LWEStdDev:  0.0000043131554647504185,
		GLWEStdDev: 0.00000000000000029403601535432533,

		MessageModulus: 1 << 4,

		BlindRotateParameters: GadgetParametersLiteral[uint64]{
			Base:  1 << 15,
			Level: 2,
		},
		KeySwitchParameters: GadgetParametersLiteral[uint64]{
			Base:  1 << 6,
			Level: 2,
		},

		BootstrapOrder: OrderKeySwitchBlindRotate,
	}

	// ParamsUint32Message2 is a 32-bit torus parameter set with 2-bit messages.
	ParamsUint32Message2 = ParametersLiteral[uint32]{
		LWEDimension: 630,
		GLWERank:     1,
		PolyDegree:   1024,

		LWEStdDev:  0.000030517578125,
		GLWEStdDev: 0.0000000298023223876953125,

		MessageModulus: 1 << 2,

		BlindRotateParameters: GadgetParametersLiteral[uint32]{
			Base:  1 << 7,
			Level: 3,
		},
		KeySwitchParameters: GadgetParametersLiteral[uint32]{
			Base:  1 << 2,
			Level: 8,
		},

		BootstrapOrder: OrderBlindRotateKeySwitch,
	}

	// ParamsTestUint64 is a small parameter set for tests and examples.
	//
	// # Warning
	//
	// This is NOT secure. Never use it outside of tests.
	ParamsTestUint64 = ParametersLiteral[uint64]{
		LWEDimension: 256,
		GLWERank:     1,
		PolyDegree:   512,

		LWEStdDev:  0.0000000000009094947017729282,
		GLWEStdDev: 0.0000000000000008881784197001252,

		MessageModulus: 1 << 2,

		BlindRotateParameters: GadgetParametersLiteral[uint64]{
			Base:  1 << 15,
			Level: 2,
		},
		KeySwitchParameters: GadgetParametersLiteral[uint64]{
			Base:  1 << 4,
			Level: 4,
		},

		BootstrapOrder: OrderKeySwitchBlindRotate,
	}

	// ParamsTestUint32 is a small 32-bit torus parameter set for tests.
	//
	// # Warning
	//
	// This is NOT secure. Never use it outside of tests.
	ParamsTestUint32 = ParametersLiteral[uint32]{
		LWEDimension: 256,
		GLWERank:     1,
		PolyDegree:   512,

		LWEStdDev:  0.00000095367431640625,
		GLWEStdDev: 0.0000000298023223876953125,

		MessageModulus: 1 << 2,

		BlindRotateParameters: GadgetParametersLiteral[uint32]{
			Base:  1 << 7,
			Level: 3,
		},
		KeySwitchParameters: GadgetParametersLiteral[uint32]{
			Base:  1 << 4,
			Level: 4,
		},

		BootstrapOrder: OrderBlindRotateKeySwitch,
	}
)
