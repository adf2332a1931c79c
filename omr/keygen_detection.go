package omr

import (
	"github.com/xiangxiecrypto/tfhe-omr/core/rgsw/blindrot"
	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/utils"
	"github.com/xiangxiecrypto/tfhe-omr/utils/sampling"
)

// DetectionKey is the evaluation-only key material a receiver ships to the
// (untrusted) detector. It carries nothing that could decrypt a clue or a
// digest; it only lets the detector homomorphically evaluate the two
// bootstrap layers and collapse the result with a trace, all against
// ciphertexts it never holds the corresponding secret for.
type DetectionKey struct {
	params Parameters

	// BSK1 blind-rotates a clue-ring LWE sample (under clueSK) through
	// LUT1, landing in F1 under z1.
	BSK1 blindrot.MemBlindRotationEvaluationKeySet

	// KSK re-encrypts an F1 ciphertext from z1 onto sm, without changing
	// ring degree: this is the collapsed stand-in for the scheme's
	// dimension-reducing key switch (see SecretKeyPack.sm).
	KSK *rlwe.EvaluationKey

	// BSK2 blind-rotates the key-switched F1 sample (under sm) through
	// LUT2, landing in F2 under z2.
	BSK2 blindrot.MemBlindRotationEvaluationKeySet

	// TK holds the Galois keys needed to homomorphically trace an F2
	// ciphertext down to its constant coefficient.
	TK *rlwe.MemEvaluationKeySet
}

// GenerateDetectionKey derives the DetectionKey matching kp. prng seeds
// none of the key material itself (see GenerateSecretKey); it is accepted
// for interface symmetry with the rest of the scheme's key-generation
// operations and so that a future randomized gadget-noise flooding step has
// somewhere to draw from without changing this signature.
func (kp *SecretKeyPack) GenerateDetectionKey(prng sampling.PRNG) (*DetectionKey, error) {

	p := kp.params

	bsk1 := blindrot.GenEvaluationKeyNew(
		p.F1Params(), kp.z1,
		p.ClueParams(), kp.clueSK,
		rlwe.EvaluationKeyParameters{BaseTwoDecomposition: utils.Pointy(p.BlindRotation1Base)},
	)

	ksk := rlwe.NewKeyGenerator(p.F1Params()).GenEvaluationKeyNew(
		kp.z1, kp.sm,
		rlwe.EvaluationKeyParameters{BaseTwoDecomposition: utils.Pointy(p.KeySwitchBase)},
	)

	bsk2 := blindrot.GenEvaluationKeyNew(
		p.F2Params(), kp.z2,
		p.F1Params(), kp.sm,
		rlwe.EvaluationKeyParameters{BaseTwoDecomposition: utils.Pointy(p.BlindRotation2Base)},
	)

	galEls := rlwe.GaloisElementsForTrace(p.F2Params(), 0)

	gks := rlwe.NewKeyGenerator(p.F2Params()).GenGaloisKeysNew(
		galEls, kp.z2,
		rlwe.EvaluationKeyParameters{BaseTwoDecomposition: utils.Pointy(p.TraceBase)},
	)

	return &DetectionKey{
		params: p,
		BSK1:   bsk1,
		KSK:    ksk,
		BSK2:   bsk2,
		TK:     rlwe.NewMemEvaluationKeySet(nil, gks...),
	}, nil
}
