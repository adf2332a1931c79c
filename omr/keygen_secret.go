package omr

import (
	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/utils/sampling"
)

// SecretKeyPack holds every secret a receiver generates once, for the
// lifetime of one OMR identity: the clue-ring LWE secret clues are checked
// against, the two RLWE secrets the bootstrap pipeline rotates into, and the
// intermediate secret the key-switch step produces between the two
// bootstrap layers.
//
// A SecretKeyPack never leaves the receiver. It is the source the clue key
// (published to senders) and the detection key (shipped to the detector)
// are both derived from.
type SecretKeyPack struct {
	params Parameters

	// clueSK is the secret a clue ciphertext must be encrypted under to be
	// judged pertinent; it lives in the clue ring.
	clueSK *rlwe.SecretKey

	// z1 is the first bootstrap layer's output RLWE secret, in F1.
	z1 *rlwe.SecretKey

	// sm is a second, independent secret also in F1: the key-switch step
	// re-encrypts the LUT1-accumulator away from z1 and onto sm, so that
	// BSK2 and KSK are never both built against the same secret. Reusing
	// F1's own ring degree for sm (rather than some smaller, non-power-of-
	// two dimension) keeps the whole pipeline on this module's NTT-friendly
	// ring substrate.
	sm *rlwe.SecretKey

	// z2 is the second bootstrap layer's output RLWE secret, in F2. The
	// receiver decrypts PertinencyCT and PayloadDigest under z2.
	z2 *rlwe.SecretKey
}

// GenerateSecretKey samples a fresh SecretKeyPack for params.
//
// prng is not used: the underlying rlwe.KeyGenerator draws the secret
// polynomials from its own internal CSPRNG, since core/rlwe does not
// expose a hook to replace that sampler (see DESIGN.md).
func GenerateSecretKey(params Parameters, prng sampling.PRNG) (*SecretKeyPack, error) {

	clueKgen := rlwe.NewKeyGenerator(params.ClueParams())
	f1Kgen := rlwe.NewKeyGenerator(params.F1Params())
	f2Kgen := rlwe.NewKeyGenerator(params.F2Params())

	return &SecretKeyPack{
		params: params,
		clueSK: clueKgen.GenSecretKeyNew(),
		z1:     f1Kgen.GenSecretKeyNew(),
		sm:     f1Kgen.GenSecretKeyNew(),
		z2:     f2Kgen.GenSecretKeyNew(),
	}, nil
}

// GenerateClueKey derives the publishable RLWE-mode LWE public key senders
// encrypt clue ciphertexts under.
func (kp *SecretKeyPack) GenerateClueKey(prng sampling.PRNG) (*ClueKey, error) {
	kgen := rlwe.NewKeyGenerator(kp.params.ClueParams())
	return &ClueKey{
		params: kp.params,
		pk:     kgen.GenPublicKeyNew(kp.clueSK),
	}, nil
}
