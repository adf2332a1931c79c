// Package bignum provides arbitrary-precision integer and floating-point helpers
// (math/big wrappers, logarithms, rounded division and CSPRNG sampling) used
// throughout the ring and rlwe packages wherever a modulus or a noise bound
// exceeds the range of a native uint64/float64.
package bignum

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/xiangxiecrypto/tfhe-omr/utils/sampling"
	"golang.org/x/exp/constraints"
)

// Integer is the set of types that NewInt accepts: any native integer type,
// or an already-allocated *big.Int (which is copied, not aliased).
type Integer interface {
	constraints.Integer | *big.Int
}

// NewInt allocates a new big.Int set to v.
func NewInt[T Integer](v T) *big.Int {
	switch v := any(v).(type) {
	case *big.Int:
		return new(big.Int).Set(v)
	case int:
		return big.NewInt(int64(v))
	case int8:
		return big.NewInt(int64(v))
	case int16:
		return big.NewInt(int64(v))
	case int32:
		return big.NewInt(int64(v))
	case int64:
		return big.NewInt(v)
	case uint:
		return new(big.Int).SetUint64(uint64(v))
	case uint8:
		return new(big.Int).SetUint64(uint64(v))
	case uint16:
		return new(big.Int).SetUint64(uint64(v))
	case uint32:
		return new(big.Int).SetUint64(uint64(v))
	case uint64:
		return new(big.Int).SetUint64(v)
	case uintptr:
		return new(big.Int).SetUint64(uint64(v))
	default:
		panic("bignum.NewInt: unsupported integer type")
	}
}

// NewFloat allocates a new big.Float set to x at the given precision (in bits).
func NewFloat(x float64, prec uint) *big.Float {
	f := new(big.Float)
	f.SetPrec(prec)
	f.SetFloat64(x)
	return f
}

// DivRound sets out = round(x / y), with x and y unchanged (out may alias x or y).
func DivRound(x, y, out *big.Int) *big.Int {
	quo, rem := new(big.Int), new(big.Int)
	quo.QuoRem(x, y, rem)

	rem.Abs(rem)
	rem.Lsh(rem, 1)

	if rem.CmpAbs(new(big.Int).Abs(y)) >= 0 {
		if (x.Sign() < 0) != (y.Sign() < 0) {
			quo.Sub(quo, big.NewInt(1))
		} else {
			quo.Add(quo, big.NewInt(1))
		}
	}

	out.Set(quo)
	return out
}

// RandInt samples a uniformly random big.Int in [0, max) using prng.
func RandInt(prng sampling.PRNG, max *big.Int) *big.Int {
	n, err := rand.Int(prng, max)
	if err != nil {
		panic(err)
	}
	return n
}

// Log2 returns ln(2) at the given precision (in bits).
func Log2(prec uint) *big.Float {
	return NewFloat(math.Ln2, prec)
}

// Log returns the natural logarithm of x. The precision of the returned value
// follows x's precision, but the underlying computation goes through a
// float64, so callers needing more than float64 accuracy should not rely on
// the low-order bits of the result.
func Log(x *big.Float) *big.Float {
	prec := x.Prec()
	if prec == 0 {
		prec = 53
	}
	f64, _ := x.Float64()
	return NewFloat(math.Log(f64), prec)
}
