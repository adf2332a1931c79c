package ring

// NumberTheoreticTransformer is an interface to provide
// flexibility on what type of NTT is used by the struct SubRing.
type NumberTheoreticTransformer interface {
	Forward(p1, p2 []uint64)
	ForwardLazy(p1, p2 []uint64)
	Backward(p1, p2 []uint64)
	BackwardLazy(p1, p2 []uint64)
}

// NumberTheoreticTransformerStandard computes the standard nega-cyclic NTT in the ring Z[X]/(X^N+1).
type NumberTheoreticTransformerStandard struct {
	n            uint64
	modulus      uint64
	mredConstant uint64
	bredConstant []uint64
	rootsForward []uint64
	rootsBackward []uint64
	nInv         uint64
}

// NewNumberTheoreticTransformerStandard instantiates a NumberTheoreticTransformer
// for the given SubRing, carrying its own copy of the SubRing's NTT constants.
func NewNumberTheoreticTransformerStandard(s *SubRing, N int) NumberTheoreticTransformer {
	return NumberTheoreticTransformerStandard{
		n:             uint64(N),
		modulus:       s.Modulus,
		mredConstant:  s.MRedConstant,
		bredConstant:  s.BRedConstant,
		rootsForward:  s.RootsForward,
		rootsBackward: s.RootsBackward,
		nInv:          s.NInv,
	}
}

// Forward writes the forward NTT in Z[X]/(X^N+1) of p1 on p2.
func (rntt NumberTheoreticTransformerStandard) Forward(p1, p2 []uint64) {
	NTT(p1, p2, rntt.n, rntt.rootsForward, rntt.modulus, rntt.mredConstant, rntt.bredConstant)
}

// ForwardLazy writes the forward NTT in Z[X]/(X^N+1) of p1 on p2.
// Values are fully reduced in [0, modulus), a subset of the lazy range [0, 2*modulus-1]
// tolerated by every caller.
func (rntt NumberTheoreticTransformerStandard) ForwardLazy(p1, p2 []uint64) {
	rntt.Forward(p1, p2)
}

// Backward writes the backward NTT in Z[X]/(X^N+1) of p1 on p2.
func (rntt NumberTheoreticTransformerStandard) Backward(p1, p2 []uint64) {
	InvNTT(p1, p2, rntt.n, rntt.rootsBackward, rntt.nInv, rntt.modulus, rntt.mredConstant)
}

// BackwardLazy writes the backward NTT in Z[X]/(X^N+1) of p1 on p2.
// Values are fully reduced in [0, modulus), a subset of the lazy range [0, 2*modulus-1]
// tolerated by every caller.
func (rntt NumberTheoreticTransformerStandard) BackwardLazy(p1, p2 []uint64) {
	rntt.Backward(p1, p2)
}

// NumberTheoreticTransformerConjugateInvariant computes the NTT in the ring Z[X+X^-1]/(X^2N+1).
// Z[X+X^-1]/(X^2N+1) is a closed sub-ring of Z[X]/(X^2N+1). Note that the input polynomial only needs to be size N
// since the right half does not provide any additional information.
// See "Approximate Homomorphic Encryption over the Conjugate-invariant Ring", https://eprint.iacr.org/2018/952.
type NumberTheoreticTransformerConjugateInvariant struct {
	NumberTheoreticTransformerStandard
}

// NewNumberTheoreticTransformerConjugateInvariant instantiates a NumberTheoreticTransformer
// for the conjugate-invariant ring, for the given SubRing.
func NewNumberTheoreticTransformerConjugateInvariant(s *SubRing, N int) NumberTheoreticTransformer {
	return NumberTheoreticTransformerConjugateInvariant{
		NumberTheoreticTransformerStandard: NewNumberTheoreticTransformerStandard(s, N).(NumberTheoreticTransformerStandard),
	}
}
