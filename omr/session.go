package omr

import "github.com/xiangxiecrypto/tfhe-omr/utils/sampling"

// SessionSeed is the 32-byte value the payload digest's weight matrix W is
// re-derived from, on both the encode and the decode side. It is fresh per
// retrieval session and travels alongside the digest ciphertexts; how a
// caller transmits it is outside this package's concern.
type SessionSeed [32]byte

// NewSessionSeed draws a fresh SessionSeed from prng.
func NewSessionSeed(prng sampling.PRNG) (seed SessionSeed, err error) {
	_, err = prng.Read(seed[:])
	return
}
