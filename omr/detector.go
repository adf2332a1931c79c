package omr

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/xiangxiecrypto/tfhe-omr/core/rgsw/blindrot"
	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/ring"
)

// PertinencyCT is the per-clue output of Detect: a degree-1 RLWE ciphertext
// over F2 that decrypts, under the matching z2, to a polynomial whose
// constant coefficient rounds to 1 iff the clue it was computed from was
// addressed to the holder of z2, and to 0 otherwise.
type PertinencyCT struct {
	Value *rlwe.Ciphertext
}

// Detector runs the two-layer functional-bootstrapping pipeline against
// clue ciphertexts on behalf of a receiver, using only the DetectionKey --
// it never learns any of the receiver's secrets.
type Detector struct {
	params Parameters
	key    *DetectionKey

	br1 *blindrot.Evaluator
	br2 *blindrot.Evaluator
	ks  *rlwe.Evaluator
	tr  *rlwe.Evaluator

	lut1 map[int]*ring.Poly
	lut2 map[int]*ring.Poly
}

// NewDetector builds a Detector bound to key. The four underlying
// evaluators and the two constant test-polynomial maps are built once and
// reused across every call to Detect. The evaluators keep scratch buffers
// that Detect mutates, so one Detector must not run Detect from several
// goroutines at once; DetectAll gives each worker its own Detector bound to
// the same DetectionKey.
func NewDetector(params Parameters, key *DetectionKey) *Detector {

	lut1Poly := params.LUT1()
	lut1 := make(map[int]*ring.Poly, params.ClueCount)
	for i := 0; i < params.ClueCount; i++ {
		lut1[i] = &lut1Poly
	}

	lut2Poly := params.LUT2()

	return &Detector{
		params: params,
		key:    key,
		br1:    blindrot.NewEvaluator(params.F1Params(), params.ClueParams()),
		br2:    blindrot.NewEvaluator(params.F2Params(), params.F1Params()),
		ks:     rlwe.NewEvaluator(params.F1Params(), nil),
		tr:     rlwe.NewEvaluator(params.F2Params(), key.TK),
		lut1:   lut1,
		lut2:   map[int]*ring.Poly{0: &lut2Poly},
	}
}

// Detect evaluates the full pipeline on one clue: extract-and-blind-rotate
// each of the params.ClueCount LWE slots through LUT1 (first bootstrap
// layer), sum the results, key-switch from z1 onto sm, add the intermediate
// gate's offset, blind-rotate the switched sample through LUT2 (second
// bootstrap layer), and finally trace the result down to its constant
// coefficient.
func (d *Detector) Detect(clue *ClueCiphertext) (*PertinencyCT, error) {

	parts, err := d.br1.Evaluate(clue.Value, d.lut1, d.key.BSK1)
	if err != nil {
		return nil, fmt.Errorf("omr: first blind rotation: %w", err)
	}

	levelF1 := d.params.F1Params().MaxLevel()
	ringF1 := d.params.F1Params().RingQ().AtLevel(levelF1)

	sum := rlwe.NewCiphertext(d.params.F1Params(), 1, levelF1)
	sum.MetaData = parts[0].MetaData.CopyNew()

	for i := 0; i < d.params.ClueCount; i++ {
		ringF1.Add(sum.Value[0], parts[i].Value[0], sum.Value[0])
		ringF1.Add(sum.Value[1], parts[i].Value[1], sum.Value[1])
	}

	switched := rlwe.NewCiphertext(d.params.F1Params(), 1, levelF1)
	if err := d.ks.ApplyEvaluationKey(sum, d.key.KSK, switched); err != nil {
		return nil, fmt.Errorf("omr: key switch: %w", err)
	}

	// Offset c*round(q1/t_m) onto the body: in NTT domain a constant
	// polynomial is the same value repeated at every coefficient, so this
	// single AddScalar applies the offset to every ring position at once.
	// q1 is never a power of two in this module's parameter sets, so only
	// the "prime / arbitrary modulus" branch of the offset computation is
	// needed.
	q1 := d.params.f1.Q()[0]
	offset := (uint64(d.params.ClueCount) * roundDiv(q1, d.params.IntermediateModulus())) % q1
	ringF1.AddScalar(switched.Value[0], offset, switched.Value[0])

	gated, err := d.br2.Evaluate(switched, d.lut2, d.key.BSK2)
	if err != nil {
		return nil, fmt.Errorf("omr: second blind rotation: %w", err)
	}

	out := rlwe.NewCiphertext(d.params.F2Params(), 1, d.params.F2Params().MaxLevel())
	if err := d.tr.Trace(gated[0], 0, out); err != nil {
		return nil, fmt.Errorf("omr: trace: %w", err)
	}

	return &PertinencyCT{Value: out}, nil
}

// DetectAll runs Detect across every clue in clues, fanning out over a pool
// of runtime.GOMAXPROCS(0) goroutines (never more than len(clues)). Results
// are written into a pre-sized slice by index, so the caller's ordering is
// preserved regardless of which worker finishes which clue first; no shared
// mutable state is touched by more than one goroutine. Each worker builds
// its own Detector bound to the same DetectionKey, since blindrot.Evaluator
// keeps a reusable internal accumulator and scratch polynomials that are not
// safe to share across concurrent Evaluate calls.
func (d *Detector) DetectAll(clues []*ClueCiphertext) ([]*PertinencyCT, error) {

	out := make([]*PertinencyCT, len(clues))
	errs := make([]error, len(clues))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(clues) {
		workers = len(clues)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			worker := NewDetector(d.params, d.key)
			for i := range jobs {
				pert, err := worker.Detect(clues[i])
				if err != nil {
					errs[i] = err
					continue
				}
				out[i] = pert
			}
		}()
	}
	for i := range clues {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("omr: DetectAll: %w", err)
		}
	}

	return out, nil
}
