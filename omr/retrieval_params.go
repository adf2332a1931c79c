package omr

import (
	"math/rand"

	"github.com/montanaflynn/stats"
)

// RetrievalParameters describes one retrieval session's layout: how many
// messages the detector scanned, the modulus indices and payloads are
// written in, and the bucket-hashing knobs the index digest's collision
// model depends on. Both Detector.EncodePertinentIndices and
// Retriever.DecodePertinentIndices derive the identical slot layout from
// this same struct, which is why it is kept as one small, pure-function
// value rather than inlined separately at each call site.
type RetrievalParameters struct {
	// N is the size of the message universe the pertinency vector ranges
	// over; indices are written base-p in [0, N).
	N int

	// P is the index/payload modulus (typically the same as
	// Parameters.OutputModulus).
	P uint64

	// RetrievalCount is the number of independent retrieval slots
	// (segments) to provision across the whole digest, chosen large
	// enough that, by a standard bins-and-balls argument, every pertinent
	// index lands alone in some bucket with high probability.
	RetrievalCount int

	// BucketsPerSegment is B, the number of buckets each segment hashes
	// messages into.
	BucketsPerSegment int
}

// IndexSlots returns the minimum number of base-P digits needed to write
// any index in [0, N).
func (rp RetrievalParameters) IndexSlots() int {
	n := 0
	for limit := uint64(1); limit < uint64(rp.N); limit *= rp.P {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// SlotsPerBucket returns the number of plaintext slots one bucket
// occupies: the index digits plus one sentinel slot.
func (rp RetrievalParameters) SlotsPerBucket() int { return rp.IndexSlots() + 1 }

// SlotsPerSegment returns the number of plaintext slots one segment spans.
func (rp RetrievalParameters) SlotsPerSegment() int {
	return rp.BucketsPerSegment * rp.SlotsPerBucket()
}

// SegmentsPerCipher returns how many independent segments fit in one
// RLWE(F2) ciphertext of ring dimension n2.
func (rp RetrievalParameters) SegmentsPerCipher(n2 int) int {
	return n2 / rp.SlotsPerSegment()
}

// CipherCount returns the number of index-digest ciphertexts needed to
// provision RetrievalCount segments, given an F2 ring of dimension n2.
func (rp RetrievalParameters) CipherCount(n2 int) int {
	perCipher := rp.SegmentsPerCipher(n2)
	return (rp.RetrievalCount + perCipher - 1) / perCipher
}

// RecommendedRetrievalCount is a diagnostic helper for choosing
// RetrievalParameters.RetrievalCount: it Monte Carlo simulates the index
// digest's per-segment bucket hashing and returns the smallest segment
// count whose simulated collision count stays, with a two-standard-
// deviation margin, at or below maxExpectedCollisions. Detect and decode
// never call this themselves; it exists for callers sizing a retrieval
// session ahead of time.
func RecommendedRetrievalCount(pertinentCount, bucketsPerSegment int, maxExpectedCollisions float64, trials int) (int, error) {
	if pertinentCount <= 0 || bucketsPerSegment <= 0 || trials <= 0 {
		panic("omr: RecommendedRetrievalCount: pertinentCount, bucketsPerSegment and trials must all be positive")
	}

	const segmentSearchLimit = 1 << 20

	for segments := 1; segments <= segmentSearchLimit; segments++ {
		samples := make(stats.Float64Data, trials)
		for t := range samples {
			samples[t] = float64(simulateBucketCollisions(pertinentCount, bucketsPerSegment, segments))
		}

		mean, err := samples.Mean()
		if err != nil {
			return 0, err
		}
		stddev, err := samples.StandardDeviation()
		if err != nil {
			return 0, err
		}

		if mean+2*stddev <= maxExpectedCollisions {
			return segments, nil
		}
	}

	return segmentSearchLimit, nil
}

// simulateBucketCollisions scatters pertinentCount balls into
// bucketsPerSegment buckets, independently across segments segments times,
// and counts how many buckets end up with more than one ball -- the same
// hashing model EncodePertinentIndices actually runs, just replayed with
// math/rand instead of a cryptographic PRNG since this estimate carries no
// secret and is never used to derive key material or ciphertext content.
func simulateBucketCollisions(pertinentCount, bucketsPerSegment, segments int) int {
	bucket := make([]int, bucketsPerSegment)
	collisions := 0
	for s := 0; s < segments; s++ {
		for i := range bucket {
			bucket[i] = 0
		}
		for i := 0; i < pertinentCount; i++ {
			bucket[rand.Intn(bucketsPerSegment)]++
		}
		for _, c := range bucket {
			if c > 1 {
				collisions++
			}
		}
	}
	return collisions
}
