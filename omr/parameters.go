// Package omr implements oblivious message retrieval: a detector can scan a
// public board of clue ciphertexts on behalf of a receiver and produce a
// compact encrypted digest of the pertinent indices and their payloads,
// without learning which messages were pertinent.
//
// The scheme is built directly on this module's own ring, core/rlwe,
// core/rgsw and core/rgsw/blindrot packages: clues and intermediate values
// are represented as degree-1 RLWE ciphertexts, the two functional-
// bootstrapping layers are driven by blindrot.Evaluator, and the final
// digest collapse uses rlwe.Evaluator.Trace.
package omr

import (
	"fmt"

	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/ring"
)

// ParametersLiteral is the unchecked, serializable description of an OMR
// parameter set. It mirrors the teacher's own ParametersLiteral idiom (see
// core/rlwe/params.go), one level up: three RLWE rings plus the scheme's
// own plaintext moduli and gadget bases.
type ParametersLiteral struct {
	// Clue is the ring the sender packs clue ciphertexts into. It also
	// serves as the LWE ring blindrot.Evaluator samples from for the
	// first bootstrap layer.
	Clue rlwe.ParametersLiteral

	// F1 is the first RLWE field: the output ring of the first blind
	// rotation. After key-switching to the secret s_m it is also
	// reused, unchanged, as the LWE ring for the second blind rotation
	// (the scheme collapses the intermediate LWE dimension to N1 instead
	// of introducing an arbitrary, non-power-of-two dimension, so that
	// the whole pipeline stays on top of this module's NTT-friendly
	// ring substrate).
	F1 rlwe.ParametersLiteral

	// F2 is the second RLWE field: the output ring of the second blind
	// rotation and of the homomorphic trace.
	F2 rlwe.ParametersLiteral

	// ClueCount is c, the fixed number of LWE slots packed into one clue
	// ciphertext.
	ClueCount int

	// IntermediateLogT is log2(t_m), the plaintext modulus of the
	// intermediate (post key-switch) LWE value. Must satisfy
	// 4*ClueCount <= t_m: buildLUT2Table writes its non-zero entry at index
	// 2*ClueCount into a table of length t_m/2+1, so 2*ClueCount must fit
	// within that table, i.e. 2*ClueCount <= t_m/2.
	IntermediateLogT int

	// OutputModulus is p, the final plaintext modulus (typically 256).
	OutputModulus uint64

	// BlindRotation1Base, BlindRotation2Base, KeySwitchBase and
	// TraceBase are the gadget decomposition bases (BaseTwoDecomposition)
	// of, respectively, BSK1, BSK2, KSK and TK.
	BlindRotation1Base int
	BlindRotation2Base int
	KeySwitchBase      int
	TraceBase          int
}

// Parameters is the checked, immutable parameter set for one OMR session.
// It is created once and shared by SecretKeyPack, DetectionKey, Detector and
// Retriever.
type Parameters struct {
	ParametersLiteral

	clue rlwe.Parameters
	f1   rlwe.Parameters
	f2   rlwe.Parameters

	lut1 []uint64
	lut2 []uint64
}

// NewParametersFromLiteral validates lit and derives the fixed LUT tables.
func NewParametersFromLiteral(lit ParametersLiteral) (params Parameters, err error) {

	if lit.ClueCount <= 0 {
		return Parameters{}, fmt.Errorf("omr: ClueCount must be strictly positive")
	}

	if lit.IntermediateLogT <= 0 {
		return Parameters{}, fmt.Errorf("omr: IntermediateLogT must be strictly positive")
	}

	tm := uint64(1) << lit.IntermediateLogT

	if 4*uint64(lit.ClueCount) > tm {
		return Parameters{}, fmt.Errorf("omr: 4*ClueCount must be <= intermediate plaintext modulus (2^%d)", lit.IntermediateLogT)
	}

	if lit.OutputModulus == 0 {
		return Parameters{}, fmt.Errorf("omr: OutputModulus must be non-zero")
	}

	clue, err := rlwe.NewParametersFromLiteral(lit.Clue)
	if err != nil {
		return Parameters{}, fmt.Errorf("omr: clue ring: %w", err)
	}

	f1, err := rlwe.NewParametersFromLiteral(lit.F1)
	if err != nil {
		return Parameters{}, fmt.Errorf("omr: F1 ring: %w", err)
	}

	f2, err := rlwe.NewParametersFromLiteral(lit.F2)
	if err != nil {
		return Parameters{}, fmt.Errorf("omr: F2 ring: %w", err)
	}

	params = Parameters{
		ParametersLiteral: lit,
		clue:              clue,
		f1:                f1,
		f2:                f2,
	}

	params.lut1 = params.buildLUT1Table()
	params.lut2 = params.buildLUT2Table()

	return params, nil
}

// ClueParams returns the RLWE parameters of the clue ring.
func (p Parameters) ClueParams() rlwe.Parameters { return p.clue }

// F1Params returns the RLWE parameters of the first field.
func (p Parameters) F1Params() rlwe.Parameters { return p.f1 }

// F2Params returns the RLWE parameters of the second field.
func (p Parameters) F2Params() rlwe.Parameters { return p.f2 }

// IntermediateModulus returns t_m, the plaintext modulus of the intermediate
// LWE value between the two bootstrap layers.
func (p Parameters) IntermediateModulus() uint64 { return uint64(1) << p.IntermediateLogT }

// buildLUT1Table builds the (t/2+1)-entry value table for LUT1: a Dirac at 0
// over an 8-entry negacyclic table [s, 0, 0, 0, -s], s = round(q1/(2*t_m)).
func (p Parameters) buildLUT1Table() []uint64 {
	q1 := p.f1.Q()[0]
	tm := p.IntermediateModulus()

	s := roundDiv(q1, 2*tm)

	return []uint64{s, 0, 0, 0, q1 - s}
}

// buildLUT2Table builds the (t_m/2+1)-entry value table for LUT2: zero
// everywhere except at index 2*ClueCount, where the value is
// round(q2/(2*p)) -- the gate that fires only when all c clues passed LUT1.
func (p Parameters) buildLUT2Table() []uint64 {
	q2 := p.f2.Q()[0]
	tm := p.IntermediateModulus()

	values := make([]uint64, tm/2+1)
	values[2*p.ClueCount] = roundDiv(q2, 2*p.OutputModulus)

	return values
}

// roundDiv returns round(num/den) for unsigned integers, half rounding up.
func roundDiv(num, den uint64) uint64 {
	return (num + den/2) / den
}

// LUT1 returns, in NTT domain, the first blind rotation's test polynomial:
// a Dirac at 0 over F1 that evaluates to (a scaled) 1 iff its input LWE
// cleartext lies in the narrow band around 0.
func (p Parameters) LUT1() (lut ring.Poly) {
	ringQ := p.f1.RingQ()
	lut = negacyclicLUT(ringQ, 3, p.lut1)
	ringQ.NTT(lut, lut)
	return
}

// LUT2 returns, in NTT domain, the second blind rotation's test polynomial:
// a gate over F2 that fires iff the first-stage accumulator equals exactly
// ClueCount, i.e. all c clue slots passed LUT1.
func (p Parameters) LUT2() (lut ring.Poly) {
	ringQ := p.f2.RingQ()
	lut = negacyclicLUT(ringQ, p.IntermediateLogT, p.lut2)
	ringQ.NTT(lut, lut)
	return
}
