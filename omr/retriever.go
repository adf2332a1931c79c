package omr

import (
	"fmt"
	"math/big"

	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/utils/bignum"
	"golang.org/x/exp/slices"
)

// Retriever decodes the digests a Detector produced back into the set of
// pertinent indices and their payloads, using the receiver's own secret
// key. Unlike Detector, a Retriever is never shared with an untrusted
// party.
type Retriever struct {
	params Parameters
	rp     RetrievalParameters
	dec    *rlwe.Decryptor
}

// NewRetriever builds a Retriever bound to the receiver's own secret keys
// and to the RetrievalParameters the matching Detector call used -- the
// decoder must reconstruct the identical segment/bucket layout the encoder
// used, so both sides are built from the same RetrievalParameters value.
func NewRetriever(params Parameters, rp RetrievalParameters, kp *SecretKeyPack) *Retriever {
	return &Retriever{
		params: params,
		rp:     rp,
		dec:    rlwe.NewDecryptor(params.F2Params(), kp.z2),
	}
}

// DecodePertinentIndices decrypts one index-digest ciphertext and returns
// the set of indices whose sentinel slot decoded to exactly 1. A bucket
// whose sentinel rounds to anything else (including a collision between
// two pertinent messages) is simply skipped.
func (r *Retriever) DecodePertinentIndices(ct *IndexDigestCT) (map[int]bool, error) {

	f2 := r.params.F2Params()
	coeffs := r.decryptToCoeffs(ct.Value)

	q2 := r.params.f2.Q()[0]
	p := r.rp.P

	indexSlots := r.rp.IndexSlots()
	slotsPerBucket := r.rp.SlotsPerBucket()
	slotsPerSegment := r.rp.SlotsPerSegment()
	segsPerCipher := r.rp.SegmentsPerCipher(f2.N())

	result := make(map[int]bool)

	for seg := 0; seg < segsPerCipher; seg++ {
		for b := 0; b < r.rp.BucketsPerSegment; b++ {

			base := seg*slotsPerSegment + b*slotsPerBucket

			if roundToModulus(coeffs[base+indexSlots], q2, p) != 1 {
				continue
			}

			idx := uint64(0)
			mult := uint64(1)
			for d := 0; d < indexSlots; d++ {
				idx += roundToModulus(coeffs[base+d], q2, p) * mult
				mult *= p
			}

			result[int(idx)] = true
		}
	}

	return result, nil
}

// DecodeDigest recovers the pertinent indices from idx (trying each
// ciphertext in turn and taking the union of what each one decodes
// cleanly -- later ciphertexts exist exactly to recover what an earlier
// one lost to a bucket collision) and then solves for their payloads using
// pay and the same session seed the encoder derived W from. An empty
// recovered set is a valid, successful outcome -- it returns empty indices
// and payloads slices, not ErrRetrievalFailed, which is reserved for an
// unsolvable (singular) combination matrix below.
func (r *Retriever) DecodeDigest(idx []*IndexDigestCT, pay *PayloadDigest, seed SessionSeed) ([]int, []Payload, error) {

	recovered := make(map[int]bool)
	for _, ct := range idx {
		found, err := r.DecodePertinentIndices(ct)
		if err != nil {
			return nil, nil, err
		}
		for i := range found {
			recovered[i] = true
		}
	}

	indices := make([]int, 0, len(recovered))
	for i := range recovered {
		indices = append(indices, i)
	}
	slices.Sort(indices)

	posOf := make(map[int]int, len(indices))
	for pos, i := range indices {
		posOf[i] = pos
	}

	p := r.rp.P

	W, err := deriveWeightMatrix(seed, pay.CombinationCount, r.rp.N, p)
	if err != nil {
		return nil, nil, err
	}

	A := make([][]uint64, pay.CombinationCount)
	for row := range A {
		A[row] = make([]uint64, len(indices))
		for i, pos := range posOf {
			A[row][pos] = W[row][i]
		}
	}

	B := make([]Payload, pay.CombinationCount)
	for c, ct := range pay.Values {
		coeffs := r.decryptToCoeffs(ct)

		rowsInCipher := pay.CmbCountPerCipher
		if remaining := pay.CombinationCount - c*pay.CmbCountPerCipher; remaining < rowsInCipher {
			rowsInCipher = remaining
		}

		for rr := 0; rr < rowsInCipher; rr++ {
			row := c*pay.CmbCountPerCipher + rr
			base := rr * PayloadLength
			pl := NewPayload(p)
			for j := 0; j < PayloadLength; j++ {
				pl.Values[j] = roundToModulus(coeffs[base+j], r.params.f2.Q()[0], p)
			}
			B[row] = pl
		}
	}

	payloads, err := solveSystemMod(p, A, B)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	return indices, payloads, nil
}

// decryptToCoeffs decrypts ct under z2 and returns its plaintext in
// coefficient (non-NTT) domain.
func (r *Retriever) decryptToCoeffs(ct *rlwe.Ciphertext) []uint64 {
	pt := r.dec.DecryptNew(ct)
	ringF2 := r.params.F2Params().RingQ().AtLevel(pt.Level())
	if pt.IsNTT {
		ringF2.INTT(pt.Value, pt.Value)
	}
	return pt.Value.Coeffs[0]
}

// roundToModulus rounds c, read as a centered residue modulo q, to the
// nearest multiple of p/q and reduces the result modulo p: round(c*p/q)
// mod p, computed with big.Int arithmetic to avoid a double-rounding error.
func roundToModulus(c, q, p uint64) uint64 {
	num := new(big.Int).Mul(new(big.Int).SetUint64(c), new(big.Int).SetUint64(p))
	rounded := bignum.DivRound(num, new(big.Int).SetUint64(q), new(big.Int))
	return new(big.Int).Mod(rounded, new(big.Int).SetUint64(p)).Uint64()
}
