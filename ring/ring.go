// Package ring implements RNS-accelerated modular arithmetic operations for polynomials, including:
// RNS basis extension; RNS rescaling; number theoretic transform (NTT); uniform, Gaussian and ternary sampling.
package ring

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/xiangxiecrypto/tfhe-omr/utils"
)

// Type is the type of ring used by the cryptographic scheme.
type Type int

// Standard and ConjugateInvariant are the two types of Rings.
const (
	Standard           = Type(0) // Z[X]/(X^N + 1) (Default)
	ConjugateInvariant = Type(1) // Z[X+X^-1]/(X^2N + 1)
)

// String returns the string representation of the ring Type.
func (rt Type) String() string {
	switch rt {
	case Standard:
		return "Standard"
	case ConjugateInvariant:
		return "ConjugateInvariant"
	default:
		return "Invalid"
	}
}

// UnmarshalJSON reads a JSON byte slice into the receiver Type.
func (rt *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	default:
		return fmt.Errorf("invalid ring type: %s", s)
	case "Standard":
		*rt = Standard
	case "ConjugateInvariant":
		*rt = ConjugateInvariant
	}

	return nil
}

// MarshalJSON marshals the receiver Type into a JSON []byte.
func (rt Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(rt.String())
}

// Ring is a structure that keeps all the variables required to operate on a polynomial represented
// in this ring, as a Residue Number System (RNS) of SubRings, one per modulus in the chain.
type Ring struct {
	// SubRings holds the per-modulus precomputations, ordered from the first modulus in the chain
	// to the last. A Ring returned by AtLevel reslices this same backing array down to level+1
	// entries, so that calling AtLevel again (including with a larger level) is allocation-free.
	SubRings []*SubRing

	level int

	// ModulusAtLevel[i] is the product of the first i+1 moduli of the chain.
	ModulusAtLevel []*big.Int

	// RescaleParams[j-1][i] stores -(qj^-1) mod qi in Montgomery form, for i < j, used to
	// divide a polynomial by qj and rescale it into the remaining RNS basis.
	RescaleParams [][]uint64
}

// NewRing creates a new RNS Ring with degree N and coefficient moduli Moduli, using the
// standard NTT. N must be a power of two larger than 8. Moduli should be a non-empty
// []uint64 with distinct prime elements, each congruent to 1 modulo 2*N.
func NewRing(N int, Moduli []uint64) (r *Ring, err error) {
	return NewRingWithCustomNTT(N, Moduli, NewNumberTheoreticTransformerStandard, 2*N)
}

// NewRingConjugateInvariant creates a new RNS Ring with degree N and coefficient moduli Moduli,
// using the conjugate-invariant NTT. N must be a power of two larger than 8. Moduli should be
// a non-empty []uint64 with distinct prime elements, each congruent to 1 modulo 4*N.
func NewRingConjugateInvariant(N int, Moduli []uint64) (r *Ring, err error) {
	return NewRingWithCustomNTT(N, Moduli, NewNumberTheoreticTransformerConjugateInvariant, 4*N)
}

// NewRingFromType creates a new RNS Ring with degree N and coefficient moduli Moduli for which
// the type of NTT is determined by the ringType argument.
func NewRingFromType(N int, Moduli []uint64, ringType Type) (r *Ring, err error) {
	switch ringType {
	case Standard:
		return NewRing(N, Moduli)
	case ConjugateInvariant:
		return NewRingConjugateInvariant(N, Moduli)
	default:
		return nil, fmt.Errorf("invalid ring type")
	}
}

// NewRingWithCustomNTT creates a new RNS Ring with degree N and coefficient moduli Moduli, using
// a user-provided NTT constructor and Nth root of unity. Moduli should be a non-empty []uint64
// with distinct prime elements, each congruent to 1 modulo the root of unity.
func NewRingWithCustomNTT(N int, Moduli []uint64, nttFunc func(*SubRing, int) NumberTheoreticTransformer, NthRoot int) (r *Ring, err error) {
	r = new(Ring)

	if err = r.setParameters(N, Moduli, nttFunc, NthRoot); err != nil {
		return nil, err
	}

	if err = r.genNTTParams(); err != nil {
		return r, err
	}

	return r, nil
}

// ConjugateInvariantRing returns the conjugate invariant ring sharing the receiver's moduli chain.
// If r.Type()==ConjugateInvariant, the receiver itself is returned.
func (r *Ring) ConjugateInvariantRing() (*Ring, error) {
	if r.Type() == ConjugateInvariant {
		return r, nil
	}
	return NewRingConjugateInvariant(r.N()>>1, r.ModuliChain())
}

// StandardRing returns the standard ring sharing the receiver's moduli chain.
// If r.Type()==Standard, the receiver itself is returned.
func (r *Ring) StandardRing() (*Ring, error) {
	if r.Type() == Standard {
		return r, nil
	}
	return NewRing(r.N()<<1, r.ModuliChain())
}

// N returns the ring degree.
func (r *Ring) N() int {
	return r.SubRings[0].N
}

// LogN returns the base two logarithm of the ring degree.
func (r *Ring) LogN() int {
	return bits.Len64(uint64(r.N() - 1))
}

// NthRoot returns the Nth root used for the NTT.
func (r *Ring) NthRoot() uint64 {
	return r.SubRings[0].NthRoot
}

// Level returns the level at which the target ring is currently operating.
func (r *Ring) Level() int {
	return r.level
}

// MaxLevel returns the maximum level supported by the moduli chain with which the ring was instantiated.
func (r *Ring) MaxLevel() int {
	return cap(r.SubRings) - 1
}

// NbModuli returns the number of active moduli, i.e. Level()+1.
func (r *Ring) NbModuli() int {
	return r.level + 1
}

// AtLevel returns a shallow copy of the target ring, configured to operate at the given level.
// It shares the same SubRings backing array, so the returned Ring can subsequently be brought back
// up to any level at most r.MaxLevel() without reallocating.
func (r *Ring) AtLevel(level int) *Ring {
	return &Ring{
		SubRings:       r.SubRings[:level+1],
		level:          level,
		ModulusAtLevel: r.ModulusAtLevel,
		RescaleParams:  r.RescaleParams,
	}
}

// ModuliChain returns the list of primes of the ring's current moduli chain.
func (r *Ring) ModuliChain() (moduli []uint64) {
	moduli = make([]uint64, len(r.SubRings))
	for i, s := range r.SubRings {
		moduli[i] = s.Modulus
	}
	return
}

// ModuliChainLength returns the number of active moduli, i.e. Level()+1.
func (r *Ring) ModuliChainLength() int {
	return len(r.SubRings)
}

// MRedConstants returns the Montgomery reduction constant of each active modulus.
func (r *Ring) MRedConstants() (mredConstants []uint64) {
	mredConstants = make([]uint64, len(r.SubRings))
	for i, s := range r.SubRings {
		mredConstants[i] = s.MRedConstant
	}
	return
}

// BRedConstants returns the Barrett reduction constants of each active modulus.
func (r *Ring) BRedConstants() (bredConstants [][]uint64) {
	bredConstants = make([][]uint64, len(r.SubRings))
	for i, s := range r.SubRings {
		bredConstants[i] = s.BRedConstant
	}
	return
}

// Type returns the Type of the ring, which is either Standard or ConjugateInvariant.
func (r *Ring) Type() Type {
	return r.SubRings[0].Type()
}

// setParameters allocates and checks the SubRing chain, and computes ModulusAtLevel.
// The NTT-related constants are generated separately, by genNTTParams.
func (r *Ring) setParameters(N int, Moduli []uint64, nttFunc func(*SubRing, int) NumberTheoreticTransformer, NthRoot int) error {

	if (N < 16) || (N&(N-1)) != 0 && N != 0 {
		return errors.New("invalid ring degree (must be a power of 2 >= 16)")
	}

	if len(Moduli) == 0 {
		return errors.New("invalid modulus (must be a non-empty []uint64)")
	}

	if !utils.AllDistinct(Moduli) {
		return errors.New("invalid modulus (moduli are not distinct)")
	}

	r.SubRings = make([]*SubRing, len(Moduli))

	for i, qi := range Moduli {
		s, err := NewSubRingWithCustomNTT(N, qi, nttFunc, NthRoot)
		if err != nil {
			return err
		}
		r.SubRings[i] = s
	}

	r.level = len(Moduli) - 1

	r.ModulusAtLevel = make([]*big.Int, len(Moduli))
	r.ModulusAtLevel[0] = NewUint(Moduli[0])
	for i := 1; i < len(Moduli); i++ {
		r.ModulusAtLevel[i] = new(big.Int).Mul(r.ModulusAtLevel[i-1], NewUint(Moduli[i]))
	}

	return nil
}

// genNTTParams generates the NTT constants of every SubRing in the chain, checking along the
// way that each modulus is prime and NTT-friendly, then derives the rescaling constants.
func (r *Ring) genNTTParams() error {

	for i, s := range r.SubRings {
		if err := s.generateNTTConstants(); err != nil {
			return fmt.Errorf("genNTTParams: modulus %d: %w", i, err)
		}
	}

	r.RescaleParams = make([][]uint64, len(r.SubRings)-1)

	for j := len(r.SubRings) - 1; j > 0; j-- {

		qj := r.SubRings[j].Modulus

		r.RescaleParams[j-1] = make([]uint64, j)

		for i := 0; i < j; i++ {
			qi := r.SubRings[i].Modulus
			r.RescaleParams[j-1][i] = MForm(qi-ModExp(qj, qi-2, qi), qi, r.SubRings[i].BRedConstant)
		}
	}

	return nil
}

// ringParams is the minimal information required to recover the full ring, used to
// import and export the ring.
type ringParams struct {
	N       int
	NthRoot uint64
	Moduli  []uint64
	RType   Type
}

// MarshalBinary encodes the target ring on a slice of bytes.
func (r *Ring) MarshalBinary() ([]byte, error) {

	parameters := ringParams{r.N(), r.NthRoot(), r.ModuliChain(), r.Type()}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(parameters); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a slice of bytes on the target Ring.
func (r *Ring) UnmarshalBinary(data []byte) error {

	parameters := ringParams{}

	reader := bytes.NewReader(data)
	dec := gob.NewDecoder(reader)
	if err := dec.Decode(&parameters); err != nil {
		return err
	}

	nttFunc := NewNumberTheoreticTransformerStandard
	if parameters.RType == ConjugateInvariant {
		nttFunc = NewNumberTheoreticTransformerConjugateInvariant
	}

	if err := r.setParameters(parameters.N, parameters.Moduli, nttFunc, int(parameters.NthRoot)); err != nil {
		return err
	}

	return r.genNTTParams()
}

// NewPoly creates a new polynomial with all coefficients set to 0, sized to the ring's
// current degree and level.
func (r *Ring) NewPoly() Poly {
	return NewPoly(r.N(), r.level)
}

// SetCoefficientsInt64 sets the coefficients of p1 from an int64 array.
func (r *Ring) SetCoefficientsInt64(coeffs []int64, p1 Poly) {
	for i, coeff := range coeffs {
		for j, table := range r.SubRings[:r.level+1] {
			qi := table.Modulus
			p1.Coeffs[j][i] = CRed(uint64(coeff%int64(qi)+int64(qi)), qi)
		}
	}
}

// SetCoefficientsUint64 sets the coefficients of p1 from an uint64 array.
func (r *Ring) SetCoefficientsUint64(coeffs []uint64, p1 Poly) {
	for i, coeff := range coeffs {
		for j, table := range r.SubRings[:r.level+1] {
			p1.Coeffs[j][i] = coeff % table.Modulus
		}
	}
}

// SetCoefficientsString parses an array of strings as big.Int variables, and sets the
// coefficients of p1 with these values.
func (r *Ring) SetCoefficientsString(coeffs []string, p1 Poly) {
	QiBigint := new(big.Int)
	coeffTmp := new(big.Int)
	for i, table := range r.SubRings[:r.level+1] {
		QiBigint.SetUint64(table.Modulus)
		for j, coeff := range coeffs {
			p1.Coeffs[i][j] = coeffTmp.Mod(NewIntFromString(coeff), QiBigint).Uint64()
		}
	}
}

// SetCoefficientsBigint sets the coefficients of p1 from an array of big.Int variables.
func (r *Ring) SetCoefficientsBigint(coeffs []*big.Int, p1 Poly) {
	QiBigint := new(big.Int)
	coeffTmp := new(big.Int)
	for i, table := range r.SubRings[:r.level+1] {
		QiBigint.SetUint64(table.Modulus)
		for j, coeff := range coeffs {
			p1.Coeffs[i][j] = coeffTmp.Mod(coeff, QiBigint).Uint64()
		}
	}
}

// SetCoefficientsBigintLvl sets the coefficients of p1 from an array of big.Int variables,
// up to and including the given level.
func (r *Ring) SetCoefficientsBigintLvl(level int, coeffs []*big.Int, p1 Poly) {
	r.AtLevel(level).SetCoefficientsBigint(coeffs, p1)
}

// PolyToString reconstructs p1 and returns the result as an array of strings.
func (r *Ring) PolyToString(p1 Poly) []string {

	coeffsBigint := make([]*big.Int, r.N())
	r.PolyToBigint(p1, 1, coeffsBigint)
	coeffsString := make([]string, len(coeffsBigint))

	for i := range coeffsBigint {
		coeffsString[i] = coeffsBigint[i].String()
	}

	return coeffsString
}

// PolyToBigint reconstructs p1 and returns the result in an array of big.Int.
// gap defines coefficients X^{i*gap} that will be reconstructed.
func (r *Ring) PolyToBigint(p1 Poly, gap int, coeffsBigint []*big.Int) {
	r.PolyToBigintLvl(p1.Level(), p1, gap, coeffsBigint)
}

// PolyToBigintLvl reconstructs p1 up to the given level and returns the result in an array of big.Int.
// gap defines coefficients X^{i*gap} that will be reconstructed.
func (r *Ring) PolyToBigintLvl(level int, p1 Poly, gap int, coeffsBigint []*big.Int) {

	crtReconstruction := make([]*big.Int, level+1)

	QiB := new(big.Int)
	tmp := new(big.Int)
	modulusBigint := r.ModulusAtLevel[level]

	for i, table := range r.SubRings[:level+1] {
		QiB.SetUint64(table.Modulus)
		crtReconstruction[i] = new(big.Int).Quo(modulusBigint, QiB)
		tmp.ModInverse(crtReconstruction[i], QiB)
		tmp.Mod(tmp, QiB)
		crtReconstruction[i].Mul(crtReconstruction[i], tmp)
	}

	N := r.N()
	for i, j := 0, 0; j < N; i, j = i+1, j+gap {

		tmp.SetUint64(0)
		coeffsBigint[i] = new(big.Int)

		for k := 0; k < level+1; k++ {
			coeffsBigint[i].Add(coeffsBigint[i], tmp.Mul(NewUint(p1.Coeffs[k][j]), crtReconstruction[k]))
		}

		coeffsBigint[i].Mod(coeffsBigint[i], modulusBigint)
	}
}

// PolyToBigintCentered reconstructs p1 and returns the result in an array of big.Int, centered around
// ModulusAtLevel/2. gap defines coefficients X^{i*gap} that will be reconstructed.
func (r *Ring) PolyToBigintCentered(p1 Poly, gap int, coeffsBigint []*big.Int) {
	r.PolyToBigintCenteredLvl(p1.Level(), p1, gap, coeffsBigint)
}

// PolyToBigintCenteredLvl reconstructs p1 up to the given level and returns the result in an array
// of big.Int, centered around ModulusAtLevel/2.
func (r *Ring) PolyToBigintCenteredLvl(level int, p1 Poly, gap int, coeffsBigint []*big.Int) {

	crtReconstruction := make([]*big.Int, level+1)

	QiB := new(big.Int)
	tmp := new(big.Int)
	modulusBigint := r.ModulusAtLevel[level]

	for i, table := range r.SubRings[:level+1] {
		QiB.SetUint64(table.Modulus)
		crtReconstruction[i] = new(big.Int).Quo(modulusBigint, QiB)
		tmp.ModInverse(crtReconstruction[i], QiB)
		tmp.Mod(tmp, QiB)
		crtReconstruction[i].Mul(crtReconstruction[i], tmp)
	}

	modulusBigintHalf := new(big.Int)
	modulusBigintHalf.Rsh(modulusBigint, 1)

	N := r.N()

	var sign int
	for i, j := 0, 0; j < N; i, j = i+1, j+gap {

		tmp.SetUint64(0)
		coeffsBigint[i].SetUint64(0)

		for k := 0; k < level+1; k++ {
			coeffsBigint[i].Add(coeffsBigint[i], tmp.Mul(NewUint(p1.Coeffs[k][j]), crtReconstruction[k]))
		}

		coeffsBigint[i].Mod(coeffsBigint[i], modulusBigint)

		sign = coeffsBigint[i].Cmp(modulusBigintHalf)

		if sign == 1 || sign == 0 {
			coeffsBigint[i].Sub(coeffsBigint[i], modulusBigint)
		}
	}
}

// Equal checks if p1 = p2 in the given Ring, at the ring's current level.
func (r *Ring) Equal(p1, p2 Poly) bool {

	for i := 0; i < r.level+1; i++ {
		if len(p1.Coeffs[i]) != len(p2.Coeffs[i]) {
			return false
		}
	}

	r.Reduce(p1, p1)
	r.Reduce(p2, p2)

	N := r.N()
	for i := 0; i < r.level+1; i++ {
		for j := 0; j < N; j++ {
			if p1.Coeffs[i][j] != p2.Coeffs[i][j] {
				return false
			}
		}
	}

	return true
}

// EqualLvl checks if p1 = p2 in the given Ring, up to a given level.
func (r *Ring) EqualLvl(level int, p1, p2 Poly) bool {
	return r.AtLevel(level).Equal(p1, p2)
}

// ReduceLvl applies a modular reduction on the coefficients of p1 up to the given level
// and writes the result on p2.
func (r *Ring) ReduceLvl(level int, p1, p2 Poly) {
	r.AtLevel(level).Reduce(p1, p2)
}

// NTT computes the NTT of p1 and writes the result on p2.
func (r *Ring) NTT(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.NTT(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// NTTLazy computes the NTT of p1 and writes the result on p2, with p2 in the range [0, 2*modulus-1].
func (r *Ring) NTTLazy(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.NTTLazy(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// InvNTT computes the inverse NTT of p1 and writes the result on p2.
func (r *Ring) InvNTT(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.INTT(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// INTT is an alias of InvNTT.
func (r *Ring) INTT(p1, p2 Poly) {
	r.InvNTT(p1, p2)
}

// InvNTTLazy computes the inverse NTT of p1 and writes the result on p2, with p2 in the range [0, 2*modulus-1].
func (r *Ring) InvNTTLazy(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.INTTLazy(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// NTTSingleLazy computes the NTT of p1 with respect to the given SubRing and writes the result
// on p2, with p2 in the range [0, 2*modulus-1].
func (r *Ring) NTTSingleLazy(s *SubRing, p1, p2 []uint64) {
	s.NTTLazy(p1, p2)
}

// InvNTTSingleLazy computes the inverse NTT of p1 with respect to the given SubRing and writes
// the result on p2, with p2 in the range [0, 2*modulus-1].
func (r *Ring) InvNTTSingleLazy(s *SubRing, p1, p2 []uint64) {
	s.INTTLazy(p1, p2)
}
