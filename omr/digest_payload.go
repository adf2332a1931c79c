package omr

import (
	"fmt"

	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
)

// PayloadDigest is the encoded answer to "what were the pertinent
// payloads": combinationCount linear combinations of every message's
// payload, weighted by a session-seed-derived matrix W, packed
// cmbCountPerCipher rows to an RLWE(F2) ciphertext.
type PayloadDigest struct {
	Values            []*rlwe.Ciphertext
	CombinationCount  int
	CmbCountPerCipher int
}

// EncodePertinentPayloads builds the payload digest. W is re-derived,
// deterministically, from seed via a sampling.KeyedPRNG: the retriever
// regenerates the identical matrix from the same seed rather than W
// travelling with the digest.
func (d *Detector) EncodePertinentPayloads(pert []*PertinencyCT, payloads []Payload, combinationCount, cmbCountPerCipher int, seed SessionSeed) (*PayloadDigest, error) {

	if len(pert) != len(payloads) {
		return nil, fmt.Errorf("omr: EncodePertinentPayloads: len(pert)=%d does not match len(payloads)=%d", len(pert), len(payloads))
	}

	if cmbCountPerCipher*PayloadLength > d.params.F2Params().N() {
		return nil, fmt.Errorf("omr: EncodePertinentPayloads: cmbCountPerCipher=%d does not fit the F2 ring", cmbCountPerCipher)
	}

	N := len(pert)

	W, err := deriveWeightMatrix(seed, combinationCount, N, d.params.OutputModulus)
	if err != nil {
		return nil, err
	}

	f2 := d.params.F2Params()
	ringF2 := f2.RingQ().AtLevel(f2.MaxLevel())

	cipherCount := (combinationCount + cmbCountPerCipher - 1) / cmbCountPerCipher

	digest := make([]*rlwe.Ciphertext, cipherCount)

	pt := ringF2.NewPoly()

	for c := 0; c < cipherCount; c++ {

		rowsInCipher := cmbCountPerCipher
		if remaining := combinationCount - c*cmbCountPerCipher; remaining < rowsInCipher {
			rowsInCipher = remaining
		}

		acc := rlwe.NewCiphertext(f2, 1, f2.MaxLevel())
		acc.MetaData = &rlwe.MetaData{CiphertextMetaData: rlwe.CiphertextMetaData{IsNTT: true, IsMontgomery: true}}

		for i := 0; i < N; i++ {
			clear(pt.Coeffs[0])

			for r := 0; r < rowsInCipher; r++ {
				w := W[c*cmbCountPerCipher+r][i]
				base := r * PayloadLength
				for j := 0; j < PayloadLength; j++ {
					pt.Coeffs[0][base+j] = (w * payloads[i].Values[j]) % d.params.OutputModulus
				}
			}

			replicateAcrossLimbs(ringF2, pt)

			ringF2.NTT(pt, pt)
			ringF2.MForm(pt, pt)

			ringF2.MulCoeffsMontgomeryAndAdd(pert[i].Value.Value[0], pt, acc.Value[0])
			ringF2.MulCoeffsMontgomeryAndAdd(pert[i].Value.Value[1], pt, acc.Value[1])
		}

		digest[c] = acc
	}

	return &PayloadDigest{
		Values:            digest,
		CombinationCount:  combinationCount,
		CmbCountPerCipher: cmbCountPerCipher,
	}, nil
}
