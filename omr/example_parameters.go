package omr

import "github.com/xiangxiecrypto/tfhe-omr/core/rlwe"

// ExampleParametersFast is a small, insecure parameter set intended for fast
// unit tests. Its three rings reuse exactly the literal moduli this
// module's own blind-rotation tests are known to work with
// (core/rgsw/blindrot/blindrot_test.go): 0x3001 is NTT-friendly at N=512,
// 0x7fff801 at N=1024. 0x3ffffffb80001 is one of the "special" primes this
// module's own example_parameters.go uses for a LogN=14 ring, and, being
// congruent to 1 modulo 2^15, remains NTT-friendly at the smaller N=2048
// used here.
var ExampleParametersFast = ParametersLiteral{
	Clue: rlwe.ParametersLiteral{
		LogN:    9,
		Q:       []uint64{0x3001},
		NTTFlag: true,
	},
	F1: rlwe.ParametersLiteral{
		LogN:    10,
		Q:       []uint64{0x7fff801},
		NTTFlag: true,
	},
	F2: rlwe.ParametersLiteral{
		LogN:    11,
		Q:       []uint64{0x3ffffffb80001},
		NTTFlag: true,
	},
	ClueCount:          7,
	IntermediateLogT:   5,
	OutputModulus:      256,
	BlindRotation1Base: 7,
	BlindRotation2Base: 7,
	KeySwitchBase:      7,
	TraceBase:          7,
}

// ExampleParametersDefault is the parameter set named by the scheme's
// default scenarios (ring dimensions N1=1024, N2=2048, output modulus
// p=256, clue count c=7). It shares ExampleParametersFast's rings; the
// distinction from the fast set exists so that callers who need the
// "named default" scenario and callers who only need something fast for a
// table test are not forced through the same identifier.
var ExampleParametersDefault = ExampleParametersFast
