package omr

import (
	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/utils/sampling"
)

// ClueKey is the publishable half of a receiver's identity: an RLWE-mode
// LWE public key in the clue ring, together with the parameter set senders
// need to build a matching ClueCiphertext. A receiver hands out one ClueKey
// to every sender wishing to notify them; the key carries no information a
// sender could use to learn anything about the receiver's traffic.
type ClueKey struct {
	params Parameters
	pk     *rlwe.PublicKey
}

// ClueCiphertext is the coefficient-packed RLWE ciphertext a sender attaches
// to a message: it decrypts, coefficient-wise, to zero in each of the
// params.ClueCount designated slots iff the receiver holding the matching
// secret is its intended recipient; otherwise every slot decrypts to noise.
type ClueCiphertext struct {
	Value *rlwe.Ciphertext
}

// GenClues draws a fresh clue ciphertext: an RLWE encryption of the
// all-zero message under ck's public key. This is the operation a sender
// runs once per outgoing message. prng is installed on the encryptor with
// WithPRNG, which replaces only its uniform sampler; public-key encryption
// draws its ternary and Gaussian terms from the encryptor's own internal
// samplers, so the clue's randomness does not come from prng.
func (ck *ClueKey) GenClues(prng sampling.PRNG) (*ClueCiphertext, error) {
	enc := rlwe.NewEncryptor(ck.params.ClueParams(), ck.pk).WithPRNG(prng)
	return &ClueCiphertext{
		Value: enc.EncryptZeroNew(ck.params.ClueParams().MaxLevel()),
	}, nil
}
