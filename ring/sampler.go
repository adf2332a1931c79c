package ring

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/xiangxiecrypto/tfhe-omr/utils/sampling"
)

// gaussianSamplerPrecision is the number of bits of precision used to build the
// cumulative distribution table consumed by the Knuth-Yao style Gaussian sampler.
const gaussianSamplerPrecision = uint64(56)

// Sampler is a common interface for polynomial samplers. A Sampler draws
// coefficients from a fixed distribution over a Ring and writes them to a Poly.
type Sampler interface {
	Read(pol Poly)
	ReadNew() (pol Poly)
	ReadAndAdd(pol Poly)
	AtLevel(level int) Sampler
}

// NewSampler instantiates a Sampler whose distribution is described by X.
// montgomery indicates whether the sampled coefficients should be returned
// in the Montgomery domain of baseRing.
func NewSampler(prng sampling.PRNG, baseRing *Ring, X DistributionParameters, montgomery bool) (Sampler, error) {
	switch X := X.(type) {
	case DiscreteGaussian:
		return NewGaussianSampler(prng, baseRing, X, montgomery), nil
	case Ternary:
		return NewTernarySampler(prng, baseRing, X, montgomery)
	case Uniform:
		return NewUniformSampler(prng, baseRing), nil
	default:
		return nil, fmt.Errorf("ring: invalid DistributionParameters: must be DiscreteGaussian, Ternary or Uniform but is %T", X)
	}
}

// baseSampler holds the fields shared by all concrete samplers.
type baseSampler struct {
	prng     sampling.PRNG
	baseRing *Ring
}

// fullSubRings returns the complete backing SubRings slice of r, irrespective
// of the level r currently operates at.
func fullSubRings(r *Ring) []*SubRing {
	return r.SubRings[:cap(r.SubRings)]
}

// readUint64 fills buf by refilling it from prng whenever it runs dry and
// returns the next 8 bytes reinterpreted as a big-endian uint64, masked to mask.
func readUint64(prng sampling.PRNG, buf []byte, ptr *int, mask uint64) uint64 {
	if *ptr+8 > len(buf) {
		if _, err := prng.Read(buf); err != nil {
			panic(err)
		}
		*ptr = 0
	}
	v := binary.BigEndian.Uint64(buf[*ptr:*ptr+8]) & mask
	*ptr += 8
	return v
}

// UniformSampler samples polynomials with coefficients uniform over [0, Qi).
type UniformSampler struct {
	baseSampler
	randomBufferN []byte
}

// NewUniformSampler creates a new UniformSampler bound to prng and baseRing.
func NewUniformSampler(prng sampling.PRNG, baseRing *Ring) *UniformSampler {
	return &UniformSampler{
		baseSampler:   baseSampler{prng: prng, baseRing: baseRing},
		randomBufferN: make([]byte, baseRing.N()*8),
	}
}

// AtLevel returns a shallow copy of the sampler operating at the given level.
func (s *UniformSampler) AtLevel(level int) Sampler {
	return &UniformSampler{
		baseSampler:   baseSampler{prng: s.prng, baseRing: s.baseRing.AtLevel(level)},
		randomBufferN: s.randomBufferN,
	}
}

// WithPRNG returns a shallow copy of the sampler that draws randomness from prng.
func (s *UniformSampler) WithPRNG(prng sampling.PRNG) *UniformSampler {
	return &UniformSampler{
		baseSampler:   baseSampler{prng: prng, baseRing: s.baseRing},
		randomBufferN: s.randomBufferN,
	}
}

// Read samples a uniform polynomial into pol.
func (s *UniformSampler) Read(pol Poly) {
	r := s.baseRing
	N := r.N()
	var ptr int
	buf := s.randomBufferN
	if _, err := s.prng.Read(buf); err != nil {
		panic(err)
	}
	for j, si := range r.SubRings[:r.Level()+1] {
		qi, mask := si.Modulus, si.Mask
		coeffs := pol.Coeffs[j]
		for i := 0; i < N; i++ {
			for {
				v := readUint64(s.prng, buf, &ptr, mask)
				if v < qi {
					coeffs[i] = v
					break
				}
			}
		}
	}
}

// ReadNew samples a new uniform polynomial at the sampler's current level.
func (s *UniformSampler) ReadNew() (pol Poly) {
	pol = s.baseRing.NewPoly()
	s.Read(pol)
	return
}

// ReadAndAdd samples a uniform polynomial and adds it into pol.
func (s *UniformSampler) ReadAndAdd(pol Poly) {
	tmp := s.baseRing.NewPoly()
	s.Read(tmp)
	s.baseRing.Add(pol, tmp, pol)
}

// TernarySampler samples polynomials with coefficients in {-1, 0, 1}.
//
// If H is set, the sampled polynomial has exactly H non-zero coefficients,
// each uniformly set to -1 or 1. Otherwise each coefficient independently
// takes value 0 with probability 1-P and -1 or 1 with probability P/2 each.
type TernarySampler struct {
	baseSampler
	matrix     [][3]uint64
	h          int
	p          float64
	montgomery bool
}

// NewTernarySampler creates a new TernarySampler bound to prng and baseRing.
func NewTernarySampler(prng sampling.PRNG, baseRing *Ring, X Ternary, montgomery bool) (*TernarySampler, error) {
	if X.H == 0 && X.P == 0 {
		return nil, fmt.Errorf("ring: invalid Ternary: exactly one of H or P must be set")
	}

	if X.H > baseRing.N() {
		return nil, fmt.Errorf("ring: invalid Ternary: H=%d is larger than the ring degree N=%d", X.H, baseRing.N())
	}

	s := &TernarySampler{
		baseSampler: baseSampler{prng: prng, baseRing: baseRing},
		h:           X.H,
		p:           X.P,
		montgomery:  montgomery,
	}
	s.genMatrix()
	return s, nil
}

func (s *TernarySampler) genMatrix() {
	subRings := fullSubRings(s.baseRing)
	s.matrix = make([][3]uint64, len(subRings))
	for i, si := range subRings {
		qi := si.Modulus
		if s.montgomery {
			s.matrix[i] = [3]uint64{MForm(qi-1, qi, si.BRedConstant), 0, MForm(1, qi, si.BRedConstant)}
		} else {
			s.matrix[i] = [3]uint64{qi - 1, 0, 1}
		}
	}
}

// AtLevel returns a shallow copy of the sampler operating at the given level.
func (s *TernarySampler) AtLevel(level int) Sampler {
	return &TernarySampler{
		baseSampler: baseSampler{prng: s.prng, baseRing: s.baseRing.AtLevel(level)},
		matrix:      s.matrix,
		h:           s.h,
		p:           s.p,
		montgomery:  s.montgomery,
	}
}

// randBoundedUint64 samples a uniform value in [0, bound) by rejection sampling.
func (s *TernarySampler) randBoundedUint64(bound uint64) uint64 {
	mask := maskForBound(bound)
	buf := make([]byte, 8)
	var ptr int
	for {
		v := readUint64(s.prng, buf, &ptr, mask)
		if v < bound {
			return v
		}
	}
}

// randBit samples a single uniformly random bit.
func (s *TernarySampler) randBit() uint64 {
	b := make([]byte, 1)
	if _, err := s.prng.Read(b); err != nil {
		panic(err)
	}
	return uint64(b[0]) & 1
}

// randFloat01 samples a value approximately uniform in [0, 1).
func (s *TernarySampler) randFloat01() float64 {
	b := make([]byte, 8)
	if _, err := s.prng.Read(b); err != nil {
		panic(err)
	}
	return float64(binary.BigEndian.Uint64(b)>>11) / float64(1<<53)
}

// sampleTrits draws N trits in {-1, 0, 1} according to the sampler's distribution.
func (s *TernarySampler) sampleTrits() []int8 {
	N := s.baseRing.N()
	trits := make([]int8, N)

	if s.h > 0 {
		chosen := make(map[int]bool, s.h)
		for len(chosen) < s.h {
			idx := int(s.randBoundedUint64(uint64(N)))
			if chosen[idx] {
				continue
			}
			chosen[idx] = true
			if s.randBit() == 1 {
				trits[idx] = 1
			} else {
				trits[idx] = -1
			}
		}
		return trits
	}

	for i := 0; i < N; i++ {
		u := s.randFloat01()
		switch {
		case u < s.p/2:
			trits[i] = -1
		case u < s.p:
			trits[i] = 1
		default:
			trits[i] = 0
		}
	}
	return trits
}

// Read samples a ternary polynomial into pol.
func (s *TernarySampler) Read(pol Poly) {
	N := s.baseRing.N()
	trits := s.sampleTrits()
	for j, si := range s.baseRing.SubRings[:s.baseRing.Level()+1] {
		_ = si
		coeffs := pol.Coeffs[j]
		m := s.matrix[j]
		for i := 0; i < N; i++ {
			switch trits[i] {
			case 1:
				coeffs[i] = m[2]
			case -1:
				coeffs[i] = m[0]
			default:
				coeffs[i] = m[1]
			}
		}
	}
}

// ReadNew samples a new ternary polynomial at the sampler's current level.
func (s *TernarySampler) ReadNew() (pol Poly) {
	pol = s.baseRing.NewPoly()
	s.Read(pol)
	return
}

// ReadAndAdd samples a ternary polynomial and adds it into pol.
func (s *TernarySampler) ReadAndAdd(pol Poly) {
	tmp := s.baseRing.NewPoly()
	s.Read(tmp)
	s.baseRing.Add(pol, tmp, pol)
}

// GaussianSampler samples polynomials with coefficients following a discrete
// Gaussian distribution of standard deviation Sigma truncated at Bound.
type GaussianSampler struct {
	baseSampler
	X          DiscreteGaussian
	matrix     [][]uint8
	montgomery bool
}

// NewGaussianSampler creates a new GaussianSampler bound to prng and baseRing.
func NewGaussianSampler(prng sampling.PRNG, baseRing *Ring, X DiscreteGaussian, montgomery bool) *GaussianSampler {
	bound := int(math.Ceil(X.Bound))
	if bound < 1 {
		bound = 1
	}
	return &GaussianSampler{
		baseSampler: baseSampler{prng: prng, baseRing: baseRing},
		X:           X,
		matrix:      computeDiscreteGaussianMatrix(X.Sigma, bound),
		montgomery:  montgomery,
	}
}

// AtLevel returns a shallow copy of the sampler operating at the given level.
func (s *GaussianSampler) AtLevel(level int) Sampler {
	return &GaussianSampler{
		baseSampler: baseSampler{prng: s.prng, baseRing: s.baseRing.AtLevel(level)},
		X:           s.X,
		matrix:      s.matrix,
		montgomery:  s.montgomery,
	}
}

// gaussianDensity evaluates the centered normal density of standard deviation sigma at x.
func gaussianDensity(x, sigma float64) float64 {
	return (1 / (sigma * 2.5066282746310007)) * math.Exp(-(x*x)/(2*sigma*sigma))
}

// computeDiscreteGaussianMatrix builds the cumulative-digit matrix consumed by
// the column-wise sampling walk in (*GaussianSampler).sampleOne: row i holds the
// binary expansion, to gaussianSamplerPrecision bits, of the Gaussian density at i.
func computeDiscreteGaussianMatrix(sigma float64, bound int) [][]uint8 {
	precision := gaussianSamplerPrecision
	M := make([][]uint8, bound)

	rows := 0
	for i := 0; i < bound; i++ {
		g := gaussianDensity(float64(i), sigma)

		if i == 0 {
			g *= math.Exp2(float64(precision) - 1)
		} else {
			g *= math.Exp2(float64(precision))
		}

		x := uint64(g)
		if x == 0 {
			break
		}

		M[i] = make([]uint8, precision-1)
		for j := uint64(0); j < precision-1; j++ {
			M[i][j] = uint8((x >> (precision - j - 2)) & 1)
		}
		rows++
	}

	return M[:rows]
}

// sampleOne performs one step of the column-wise discrete distribution walk
// (Knuth-Yao style sampling) over buf, refilling it from prng as needed.
func (s *GaussianSampler) sampleOne(buf []byte, pointer uint8) (coeff, sign uint64, rest []byte, nextPointer uint8) {
	M := s.matrix
	colLen := len(M)
	d := 0
	col := 0

	for {
		for i := pointer; i < 8; i++ {
			d = (d << 1) + 1 - int((buf[0]>>i)&1)

			if d > colLen-1 {
				return s.sampleOne(buf, i)
			}

			for row := colLen - 1; row >= 0; row-- {
				d -= int(M[row][col])
				if d == -1 {
					if i == 7 {
						pointer = 0
						buf = buf[1:]
						if len(buf) == 0 {
							buf = make([]byte, 8)
							if _, err := s.prng.Read(buf); err != nil {
								panic(err)
							}
						}
						sign = uint64(buf[0]) & 1
					} else {
						pointer = i
						sign = uint64(buf[0]>>(i+1)) & 1
					}
					return uint64(row), sign, buf, pointer + 1
				}
			}
			col++
		}

		pointer = 0
		buf = buf[1:]
		if len(buf) == 0 {
			buf = make([]byte, 8)
			if _, err := s.prng.Read(buf); err != nil {
				panic(err)
			}
		}
	}
}

// Read samples a discrete Gaussian polynomial into pol.
func (s *GaussianSampler) Read(pol Poly) {
	N := s.baseRing.N()
	signed := make([]int64, N)

	buf := make([]byte, 8)
	if _, err := s.prng.Read(buf); err != nil {
		panic(err)
	}
	var pointer uint8
	for i := 0; i < N; i++ {
		var coeff, sign uint64
		coeff, sign, buf, pointer = s.sampleOne(buf, pointer)
		if sign == 1 {
			signed[i] = int64(coeff)
		} else {
			signed[i] = -int64(coeff)
		}
	}

	for j, si := range s.baseRing.SubRings[:s.baseRing.Level()+1] {
		qi := si.Modulus
		coeffs := pol.Coeffs[j]
		for i := 0; i < N; i++ {
			var v uint64
			if c := signed[i]; c < 0 {
				v = qi - uint64(-c)
			} else {
				v = uint64(c)
			}
			if s.montgomery {
				v = MForm(v, qi, si.BRedConstant)
			}
			coeffs[i] = v
		}
	}
}

// ReadNew samples a new discrete Gaussian polynomial at the sampler's current level.
func (s *GaussianSampler) ReadNew() (pol Poly) {
	pol = s.baseRing.NewPoly()
	s.Read(pol)
	return
}

// ReadAndAdd samples a discrete Gaussian polynomial and adds it into pol.
func (s *GaussianSampler) ReadAndAdd(pol Poly) {
	tmp := s.baseRing.NewPoly()
	s.Read(tmp)
	s.baseRing.Add(pol, tmp, pol)
}

// maskForBound returns the smallest mask of the form 2^n-1 covering [0, bound).
func maskForBound(bound uint64) uint64 {
	if bound == 0 {
		return 0
	}
	mask := uint64(1)
	for mask < bound {
		mask <<= 1
	}
	return mask - 1
}
