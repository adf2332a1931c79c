package omr

import (
	"fmt"
	"math/big"

	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/ring"
	"github.com/xiangxiecrypto/tfhe-omr/utils/bignum"
	"github.com/xiangxiecrypto/tfhe-omr/utils/sampling"
)

// IndexDigestCT is one RLWE(F2) ciphertext of the index digest: decrypting
// it and rounding its coefficients to the index modulus reveals, for every
// bucket it provisions, either an occupied slot's base-p index digits (with
// a 1 sentinel) or an empty slot (all zero).
type IndexDigestCT struct {
	Value *rlwe.Ciphertext
}

// EncodePertinentIndices builds the index digest for one retrieval session:
// every message's pertinency ciphertext is scattered, independently per
// segment, into a uniformly random bucket, and the digest ciphertexts are
// the sum, over all messages, of the pertinency ciphertext times the
// plaintext polynomial encoding that message's index at its drawn buckets.
// A pertinent message's own ciphertext dominates its bucket's sentinel slot
// (since a non-pertinent PertinencyCT decrypts to all-zero, contributing
// nothing); two pertinent messages landing in the same bucket of the same
// segment instead produce a sentinel value outside {0,1}, which the
// retriever detects as an unusable, collided slot.
//
// A fresh sampling.PRNG drives the bucket draws for this call: independent
// per message rather than a single seeded stream shared across calls, so
// that the same pertinency vector encoded twice does not leak a
// correlation between the two digests.
func (d *Detector) EncodePertinentIndices(rp RetrievalParameters, pert []*PertinencyCT) ([]*IndexDigestCT, error) {

	if len(pert) != rp.N {
		return nil, fmt.Errorf("omr: EncodePertinentIndices: len(pert)=%d does not match RetrievalParameters.N=%d", len(pert), rp.N)
	}

	prng, err := sampling.NewPRNG()
	if err != nil {
		return nil, err
	}

	f2 := d.params.F2Params()
	n2 := f2.N()
	ringF2 := f2.RingQ().AtLevel(f2.MaxLevel())

	slotsPerBucket := rp.SlotsPerBucket()
	slotsPerSegment := rp.SlotsPerSegment()
	segsPerCipher := rp.SegmentsPerCipher(n2)
	if segsPerCipher == 0 {
		return nil, fmt.Errorf("omr: EncodePertinentIndices: retrieval parameters do not fit a single F2 ciphertext")
	}
	cipherCount := rp.CipherCount(n2)
	indexSlots := rp.IndexSlots()
	p := rp.P
	bucketBound := big.NewInt(int64(rp.BucketsPerSegment))

	digests := make([]*IndexDigestCT, cipherCount)

	for c := 0; c < cipherCount; c++ {

		acc := rlwe.NewCiphertext(f2, 1, f2.MaxLevel())
		acc.MetaData = &rlwe.MetaData{CiphertextMetaData: rlwe.CiphertextMetaData{IsNTT: true, IsMontgomery: true}}

		pt := ringF2.NewPoly()

		for i := 0; i < rp.N; i++ {
			clear(pt.Coeffs[0])

			for seg := 0; seg < segsPerCipher; seg++ {

				b := int(bignum.RandInt(prng, bucketBound).Int64())
				base := seg*slotsPerSegment + b*slotsPerBucket

				v := uint64(i)
				for digit := 0; digit < indexSlots; digit++ {
					pt.Coeffs[0][base+digit] = v % p
					v /= p
				}
				pt.Coeffs[0][base+indexSlots] = 1
			}

			replicateAcrossLimbs(ringF2, pt)

			ringF2.NTT(pt, pt)
			ringF2.MForm(pt, pt)

			ringF2.MulCoeffsMontgomeryAndAdd(pert[i].Value.Value[0], pt, acc.Value[0])
			ringF2.MulCoeffsMontgomeryAndAdd(pert[i].Value.Value[1], pt, acc.Value[1])
		}

		digests[c] = &IndexDigestCT{Value: acc}
	}

	return digests, nil
}

// replicateAcrossLimbs takes the coefficients already written to pt's first
// RNS limb (each a value < any of the ring's moduli) and reduces/copies
// them to every other limb, the same "write once, broadcast across limbs"
// idiom negacyclicLUT uses to build a multi-limb constant.
func replicateAcrossLimbs(ringQ *ring.Ring, pt ring.Poly) {
	for j := 1; j <= ringQ.Level(); j++ {
		modulus := ringQ.SubRings[j].Modulus
		for i, v := range pt.Coeffs[0] {
			pt.Coeffs[j][i] = v % modulus
		}
	}
}
