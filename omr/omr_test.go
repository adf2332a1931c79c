package omr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/utils/sampling"
)

func testPertinencyBit(t *testing.T, params Parameters, z2 *rlwe.SecretKey, ct *PertinencyCT) uint64 {
	dec := rlwe.NewDecryptor(params.F2Params(), z2)
	pt := dec.DecryptNew(ct.Value)
	ringF2 := params.F2Params().RingQ().AtLevel(pt.Level())
	if pt.IsNTT {
		ringF2.INTT(pt.Value, pt.Value)
	}
	return roundToModulus(pt.Value.Coeffs[0][0], params.f2.Q()[0], params.OutputModulus)
}

// TestDetectRecipient checks spec property S1: a clue generated under a
// receiver's own ClueKey is detected as pertinent by that receiver's own
// DetectionKey.
func TestDetectRecipient(t *testing.T) {

	params, err := NewParametersFromLiteral(ExampleParametersFast)
	require.NoError(t, err)

	prng, err := sampling.NewPRNG()
	require.NoError(t, err)

	kp, err := GenerateSecretKey(params, prng)
	require.NoError(t, err)

	clueKey, err := kp.GenerateClueKey(prng)
	require.NoError(t, err)

	detKey, err := kp.GenerateDetectionKey(prng)
	require.NoError(t, err)

	clue, err := clueKey.GenClues(prng)
	require.NoError(t, err)

	detector := NewDetector(params, detKey)

	pert, err := detector.Detect(clue)
	require.NoError(t, err)

	require.Equal(t, uint64(1), testPertinencyBit(t, params, kp.z2, pert))
}

// TestDetectNonRecipient checks spec property S2: a clue generated under a
// different receiver's ClueKey is not detected as pertinent.
func TestDetectNonRecipient(t *testing.T) {

	params, err := NewParametersFromLiteral(ExampleParametersFast)
	require.NoError(t, err)

	prng, err := sampling.NewPRNG()
	require.NoError(t, err)

	kpReceiver, err := GenerateSecretKey(params, prng)
	require.NoError(t, err)

	detKey, err := kpReceiver.GenerateDetectionKey(prng)
	require.NoError(t, err)

	kpOther, err := GenerateSecretKey(params, prng)
	require.NoError(t, err)

	clueKeyOther, err := kpOther.GenerateClueKey(prng)
	require.NoError(t, err)

	clue, err := clueKeyOther.GenClues(prng)
	require.NoError(t, err)

	detector := NewDetector(params, detKey)

	pert, err := detector.Detect(clue)
	require.NoError(t, err)

	require.Equal(t, uint64(0), testPertinencyBit(t, params, kpReceiver.z2, pert))
}

// TestDigestRoundTripEmpty checks spec property S2's digest-side boundary
// behavior: when no message in the universe is pertinent, DecodeDigest
// returns an empty index set and an empty payload slice, with no error --
// not ErrRetrievalFailed.
func TestDigestRoundTripEmpty(t *testing.T) {

	params, err := NewParametersFromLiteral(ExampleParametersFast)
	require.NoError(t, err)

	prng, err := sampling.NewPRNG()
	require.NoError(t, err)

	kp, err := GenerateSecretKey(params, prng)
	require.NoError(t, err)

	detKey, err := kp.GenerateDetectionKey(prng)
	require.NoError(t, err)

	const N = 16

	detector := NewDetector(params, detKey)

	pert := make([]*PertinencyCT, N)
	payloads := make([]Payload, N)

	for i := 0; i < N; i++ {
		kpOther, err := GenerateSecretKey(params, prng)
		require.NoError(t, err)
		otherKey, err := kpOther.GenerateClueKey(prng)
		require.NoError(t, err)
		clue, err := otherKey.GenClues(prng)
		require.NoError(t, err)

		pert[i], err = detector.Detect(clue)
		require.NoError(t, err)

		payloads[i] = payloadOf(params.OutputModulus, uint64(100+i))
	}

	rp := RetrievalParameters{
		N:                 N,
		P:                 params.OutputModulus,
		RetrievalCount:    4,
		BucketsPerSegment: 4,
	}

	idxDigest, err := detector.EncodePertinentIndices(rp, pert)
	require.NoError(t, err)

	seed, err := NewSessionSeed(prng)
	require.NoError(t, err)

	payDigest, err := detector.EncodePertinentPayloads(pert, payloads, 11, 3, seed)
	require.NoError(t, err)

	retriever := NewRetriever(params, rp, kp)

	indices, recovered, err := retriever.DecodeDigest(idxDigest, payDigest, seed)
	require.NoError(t, err)
	require.Empty(t, indices)
	require.Empty(t, recovered)
}

// TestDigestRoundTrip checks spec properties S3/S4: a small message
// universe, one pertinent message, recovered through both the index and
// payload digest.
func TestDigestRoundTrip(t *testing.T) {

	params, err := NewParametersFromLiteral(ExampleParametersFast)
	require.NoError(t, err)

	prng, err := sampling.NewPRNG()
	require.NoError(t, err)

	kp, err := GenerateSecretKey(params, prng)
	require.NoError(t, err)

	clueKey, err := kp.GenerateClueKey(prng)
	require.NoError(t, err)

	detKey, err := kp.GenerateDetectionKey(prng)
	require.NoError(t, err)

	const N = 16
	const pertinentIndex = 9

	detector := NewDetector(params, detKey)

	pert := make([]*PertinencyCT, N)
	payloads := make([]Payload, N)

	for i := 0; i < N; i++ {

		var clue *ClueCiphertext
		if i == pertinentIndex {
			clue, err = clueKey.GenClues(prng)
		} else {
			var kpOther *SecretKeyPack
			kpOther, err = GenerateSecretKey(params, prng)
			require.NoError(t, err)
			var otherKey *ClueKey
			otherKey, err = kpOther.GenerateClueKey(prng)
			require.NoError(t, err)
			clue, err = otherKey.GenClues(prng)
		}
		require.NoError(t, err)

		pert[i], err = detector.Detect(clue)
		require.NoError(t, err)

		payloads[i] = payloadOf(params.OutputModulus, uint64(100+i))
	}

	rp := RetrievalParameters{
		N:                 N,
		P:                 params.OutputModulus,
		RetrievalCount:    4,
		BucketsPerSegment: 4,
	}

	idxDigest, err := detector.EncodePertinentIndices(rp, pert)
	require.NoError(t, err)
	require.NotEmpty(t, idxDigest)

	seed, err := NewSessionSeed(prng)
	require.NoError(t, err)

	payDigest, err := detector.EncodePertinentPayloads(pert, payloads, 11, 3, seed)
	require.NoError(t, err)

	retriever := NewRetriever(params, rp, kp)

	indices, recovered, err := retriever.DecodeDigest(idxDigest, payDigest, seed)
	require.NoError(t, err)

	require.Contains(t, indices, pertinentIndex)

	for k, i := range indices {
		if i == pertinentIndex {
			require.Empty(t, cmp.Diff(payloads[pertinentIndex], recovered[k]))
		}
	}
}

// TestDigestRoundTripFull runs the same round trip as TestDigestRoundTrip
// over a larger message universe and more pertinent messages, skipped under
// `go test -short`.
func TestDigestRoundTripFull(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-size digest round trip in short mode")
	}

	params, err := NewParametersFromLiteral(ExampleParametersDefault)
	require.NoError(t, err)

	prng, err := sampling.NewPRNG()
	require.NoError(t, err)

	kp, err := GenerateSecretKey(params, prng)
	require.NoError(t, err)

	detKey, err := kp.GenerateDetectionKey(prng)
	require.NoError(t, err)

	const N = 64
	pertinentIndices := map[int]bool{3: true, 17: true, 40: true, 63: true}

	clueKey, err := kp.GenerateClueKey(prng)
	require.NoError(t, err)

	detector := NewDetector(params, detKey)

	clues := make([]*ClueCiphertext, N)
	payloads := make([]Payload, N)

	for i := 0; i < N; i++ {
		var clue *ClueCiphertext
		if pertinentIndices[i] {
			clue, err = clueKey.GenClues(prng)
		} else {
			var kpOther *SecretKeyPack
			kpOther, err = GenerateSecretKey(params, prng)
			require.NoError(t, err)
			var otherKey *ClueKey
			otherKey, err = kpOther.GenerateClueKey(prng)
			require.NoError(t, err)
			clue, err = otherKey.GenClues(prng)
		}
		require.NoError(t, err)

		clues[i] = clue
		payloads[i] = payloadOf(params.OutputModulus, uint64(1000+i))
	}

	pert, err := detector.DetectAll(clues)
	require.NoError(t, err)

	rp := RetrievalParameters{
		N:                 N,
		P:                 params.OutputModulus,
		RetrievalCount:    4,
		BucketsPerSegment: 8,
	}

	idxDigest, err := detector.EncodePertinentIndices(rp, pert)
	require.NoError(t, err)

	seed, err := NewSessionSeed(prng)
	require.NoError(t, err)

	payDigest, err := detector.EncodePertinentPayloads(pert, payloads, 11, 3, seed)
	require.NoError(t, err)

	retriever := NewRetriever(params, rp, kp)

	indices, recovered, err := retriever.DecodeDigest(idxDigest, payDigest, seed)
	require.NoError(t, err)

	for want := range pertinentIndices {
		require.Contains(t, indices, want)
	}

	for k, i := range indices {
		if pertinentIndices[i] {
			require.Empty(t, cmp.Diff(payloads[i], recovered[k]))
		}
	}
}

// TestDetectAll checks that the worker-pool fan-out in Detector.DetectAll
// produces the same per-clue results, in the same order, as calling Detect
// sequentially on each clue.
func TestDetectAll(t *testing.T) {
	params, err := NewParametersFromLiteral(ExampleParametersFast)
	require.NoError(t, err)

	prng, err := sampling.NewPRNG()
	require.NoError(t, err)

	kp, err := GenerateSecretKey(params, prng)
	require.NoError(t, err)

	clueKey, err := kp.GenerateClueKey(prng)
	require.NoError(t, err)

	detKey, err := kp.GenerateDetectionKey(prng)
	require.NoError(t, err)

	detector := NewDetector(params, detKey)

	const N = 6
	clues := make([]*ClueCiphertext, N)
	for i := range clues {
		clues[i], err = clueKey.GenClues(prng)
		require.NoError(t, err)
	}

	sequential := make([]uint64, N)
	for i, clue := range clues {
		pert, err := detector.Detect(clue)
		require.NoError(t, err)
		sequential[i] = testPertinencyBit(t, params, kp.z2, pert)
	}

	pooled, err := detector.DetectAll(clues)
	require.NoError(t, err)
	require.Len(t, pooled, N)

	for i, pert := range pooled {
		require.Equal(t, sequential[i], testPertinencyBit(t, params, kp.z2, pert))
	}
}
