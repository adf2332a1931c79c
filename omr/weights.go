package omr

import (
	"math/big"

	"github.com/xiangxiecrypto/tfhe-omr/utils/bignum"
	"github.com/xiangxiecrypto/tfhe-omr/utils/sampling"
)

// deriveWeightMatrix regenerates the combination_count x N weight matrix W
// the payload digest is built from, deterministically from seed: row-major,
// one uniform draw in [0, p) per (row, message) pair. Encode and decode
// both call this so that W never needs to travel with the digest itself.
func deriveWeightMatrix(seed SessionSeed, combinationCount, n int, p uint64) ([][]uint64, error) {

	kprng, err := sampling.NewKeyedPRNG(seed[:])
	if err != nil {
		return nil, err
	}

	bound := big.NewInt(int64(p))

	W := make([][]uint64, combinationCount)
	for row := range W {
		W[row] = make([]uint64, n)
		for i := range W[row] {
			W[row][i] = uint64(bignum.RandInt(kprng, bound).Int64())
		}
	}

	return W, nil
}
