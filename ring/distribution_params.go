package ring

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/xiangxiecrypto/tfhe-omr/utils/buffer"
)

const (
	discreteGaussianType = 0
	ternaryType          = 1
	uniformType          = 2
	discreteGaussianName = "DiscreteGaussian"
	ternaryDistName      = "Ternary"
	uniformDistName      = "Uniform"
)

// DistributionParameters is an interface for distribution parameters in the ring.
// There are three implementations of this interface:
//   - DiscreteGaussian for sampling polynomials with discretized Gaussian
//     coefficients of a given standard deviation and bound.
//   - Ternary for sampling polynomials with coefficients in [-1, 1].
//   - Uniform for sampling polynomials with uniformly random coefficients.
type DistributionParameters interface {
	Equal(DistributionParameters) bool
	mustBeDist()
	BinarySize() int
}

// DiscreteGaussian represents the parameters of a discrete Gaussian
// distribution with standard deviation Sigma and bound [-Bound, Bound].
type DiscreteGaussian struct {
	Sigma float64
	Bound float64
}

// Ternary represents the parameters of a distribution with coefficients in [-1, 0, 1].
// Only one of its fields should be set to a non-zero value:
//   - If P is set, each coefficient is sampled in [-1, 0, 1] with probabilities
//     [0.5*P, 1-P, 0.5*P].
//   - If H is set, the coefficients are sampled uniformly among ternary
//     polynomials of Hamming weight H.
type Ternary struct {
	P float64
	H int
}

// Uniform represents the parameters of a uniform distribution, i.e. with
// coefficients uniformly distributed in the given ring.
type Uniform struct{}

func (d DiscreteGaussian) Equal(other DistributionParameters) bool {
	switch other := other.(type) {
	case DiscreteGaussian:
		return d == other
	case *DiscreteGaussian:
		return d == *other
	default:
		return false
	}
}

func (d DiscreteGaussian) mustBeDist() {}

func (d DiscreteGaussian) BinarySize() int {
	return 17
}

func (d DiscreteGaussian) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64

		if inc, err = buffer.WriteAsUint8(w, discreteGaussianType); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteAsUint64(w, math.Float64bits(d.Sigma)); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteAsUint64(w, math.Float64bits(d.Bound)); err != nil {
			return n + inc, err
		}
		n += inc

		return n, w.Flush()
	default:
		return d.WriteTo(bufio.NewWriter(w))
	}
}

func (d *DiscreteGaussian) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var inc int64

		var typ int
		if inc, err = buffer.ReadAsUint8(r, &typ); err != nil {
			return n + inc, err
		}
		n += inc

		if typ != discreteGaussianType {
			return n, fmt.Errorf("invalid distribution type: expected %d but got %d", discreteGaussianType, typ)
		}

		var sigma, bound uint64
		if inc, err = buffer.ReadAsUint64(r, &sigma); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.ReadAsUint64(r, &bound); err != nil {
			return n + inc, err
		}
		n += inc

		d.Sigma = math.Float64frombits(sigma)
		d.Bound = math.Float64frombits(bound)

		return n, nil
	default:
		return d.ReadFrom(bufio.NewReader(r))
	}
}

func (d DiscreteGaussian) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(d.BinarySize())
	_, err = d.WriteTo(buf)
	return buf.Bytes(), err
}

func (d *DiscreteGaussian) UnmarshalBinary(p []byte) (err error) {
	_, err = d.ReadFrom(buffer.NewBuffer(p))
	return
}

func (d Ternary) Equal(other DistributionParameters) bool {
	switch other := other.(type) {
	case Ternary:
		return d == other
	case *Ternary:
		return d == *other
	default:
		return false
	}
}

func (d Ternary) mustBeDist() {}

func (d Ternary) BinarySize() int {
	return 17
}

func (d Ternary) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64

		if inc, err = buffer.WriteAsUint8(w, ternaryType); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteAsUint64(w, uint64(d.H)); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteAsUint64(w, math.Float64bits(d.P)); err != nil {
			return n + inc, err
		}
		n += inc

		return n, w.Flush()
	default:
		return d.WriteTo(bufio.NewWriter(w))
	}
}

func (d *Ternary) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var inc int64

		var typ int
		if inc, err = buffer.ReadAsUint8(r, &typ); err != nil {
			return n + inc, err
		}
		n += inc

		if typ != ternaryType {
			return n, fmt.Errorf("invalid distribution type: expected %d but got %d", ternaryType, typ)
		}

		var h, p uint64
		if inc, err = buffer.ReadAsUint64(r, &h); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.ReadAsUint64(r, &p); err != nil {
			return n + inc, err
		}
		n += inc

		d.H = int(h)
		d.P = math.Float64frombits(p)

		return n, nil
	default:
		return d.ReadFrom(bufio.NewReader(r))
	}
}

func (d Ternary) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(d.BinarySize())
	_, err = d.WriteTo(buf)
	return buf.Bytes(), err
}

func (d *Ternary) UnmarshalBinary(p []byte) (err error) {
	_, err = d.ReadFrom(buffer.NewBuffer(p))
	return
}

func (d Uniform) Equal(other DistributionParameters) bool {
	switch other.(type) {
	case Uniform, *Uniform:
		return true
	default:
		return false
	}
}

func (d Uniform) mustBeDist() {}

func (d Uniform) BinarySize() int {
	return 8
}

func (d Uniform) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64
		if inc, err = buffer.WriteAsUint64(w, uniformType); err != nil {
			return n + inc, err
		}
		return n + inc, w.Flush()
	default:
		return d.WriteTo(bufio.NewWriter(w))
	}
}

func (d *Uniform) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var inc int64
		var typ uint64
		if inc, err = buffer.ReadAsUint64(r, &typ); err != nil {
			return n + inc, err
		}
		n += inc
		if typ != uniformType {
			return n, fmt.Errorf("invalid distribution type: expected %d but got %d", uniformType, typ)
		}
		return n, nil
	default:
		return d.ReadFrom(bufio.NewReader(r))
	}
}

func (d Uniform) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(d.BinarySize())
	_, err = d.WriteTo(buf)
	return buf.Bytes(), err
}

func (d *Uniform) UnmarshalBinary(p []byte) (err error) {
	_, err = d.ReadFrom(buffer.NewBuffer(p))
	return
}

func getFloatFromMap(distDef map[string]interface{}, key string) (float64, error) {
	val, hasVal := distDef[key]
	if !hasVal {
		return 0, fmt.Errorf("map specifies no value for %s", key)
	}
	f, isFloat := val.(float64)
	if !isFloat {
		return 0, fmt.Errorf("value for key %s in map should be of type float", key)
	}
	return f, nil
}

func getIntFromMap(distDef map[string]interface{}, key string) (int, error) {
	val, hasVal := distDef[key]
	if !hasVal {
		return 0, fmt.Errorf("map specifies no value for %s", key)
	}
	f, isNumeric := val.(float64)
	if !isNumeric {
		return 0, fmt.Errorf("value for key %s in map should be an integer", key)
	}
	return int(f), nil
}

// ParametersFromMap instantiates a DistributionParameters from a generic map,
// as used when unmarshalling JSON parameter sets.
func ParametersFromMap(distDef map[string]interface{}) (DistributionParameters, error) {
	distTypeVal, specified := distDef["Type"]
	if !specified {
		return nil, fmt.Errorf("map specifies no distribution type")
	}

	distTypeStr, isString := distTypeVal.(string)
	if !isString {
		return nil, fmt.Errorf("value for key Type of map should be of type string")
	}

	switch distTypeStr {
	case uniformDistName:
		return Uniform{}, nil
	case ternaryDistName:
		_, hasP := distDef["P"]
		_, hasH := distDef["H"]

		if hasP == hasH {
			return nil, fmt.Errorf("exactly one of the field P or H must be set")
		}

		var p float64
		var h int
		var err error

		if hasP {
			if p, err = getFloatFromMap(distDef, "P"); err != nil {
				return nil, err
			}
		}

		if hasH {
			if h, err = getIntFromMap(distDef, "H"); err != nil {
				return nil, err
			}
		}

		return Ternary{P: p, H: h}, nil
	case discreteGaussianName:
		sigma, errSigma := getFloatFromMap(distDef, "Sigma")
		if errSigma != nil {
			return nil, errSigma
		}
		bound, errBound := getFloatFromMap(distDef, "Bound")
		if errBound != nil {
			return nil, errBound
		}
		return DiscreteGaussian{Sigma: sigma, Bound: bound}, nil
	default:
		return nil, fmt.Errorf("distribution type %s does not exist", distTypeStr)
	}
}
