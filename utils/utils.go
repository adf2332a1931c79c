// Package utils implements generic helper functions that are used throughout the repository.
package utils

import (
	"math/big"
	"math/bits"
	"sort"

	"github.com/xiangxiecrypto/tfhe-omr/utils/factorization"
	"golang.org/x/exp/constraints"
)

// Min returns the minimum of the two inputs.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of the two inputs.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// MinInt returns the minimum of two int.
func MinInt(a, b int) int { return Min(a, b) }

// MaxInt returns the maximum of two int.
func MaxInt(a, b int) int { return Max(a, b) }

// MinUint64 returns the minimum of two uint64.
func MinUint64(a, b uint64) uint64 { return Min(a, b) }

// MaxUint64 returns the maximum of two uint64.
func MaxUint64(a, b uint64) uint64 { return Max(a, b) }

// MaxFloat64 returns the maximum of two float64.
func MaxFloat64(a, b float64) float64 { return Max(a, b) }

// AllDistinct returns true if all elements in s are distinct.
func AllDistinct[T comparable](s []T) bool {
	seen := make(map[T]bool, len(s))
	for _, v := range s {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// EqualSlice returns true if both slices are equal.
func EqualSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EqualSliceUint64 returns true if both slices of uint64 are equal.
func EqualSliceUint64(a, b []uint64) bool { return EqualSlice(a, b) }

// IsInSlice returns true if x is contained in s.
func IsInSlice[T comparable](x T, s []T) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}

// IsInSliceInt returns true if x is contained in s.
func IsInSliceInt(x int, s []int) bool { return IsInSlice(x, s) }

// IsInSliceUint64 returns true if x is contained in s.
func IsInSliceUint64(x uint64, s []uint64) bool { return IsInSlice(x, s) }

// GetKeys returns the keys of a map, in no particular order.
func GetKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// GetSortedKeys returns the keys of a map, sorted in ascending order.
func GetSortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := GetKeys(m)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// GetDistincts returns the distinct elements of s, in no particular order.
func GetDistincts[T comparable](s []T) []T {
	seen := make(map[T]bool, len(s))
	distinct := make([]T, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	return distinct
}

// RotateSlice returns a new slice, left-rotated by k positions (negative k rotates right).
func RotateSlice[T any](s []T, k int) []T {
	out := make([]T, len(s))
	RotateSliceAllocFree(s, k, out)
	return out
}

// RotateSliceAllocFree writes into sout the slice s left-rotated by k positions.
// sout and s may be the same slice.
func RotateSliceAllocFree[T any](s []T, k int, sout []T) {
	n := len(s)
	if n == 0 {
		return
	}
	k = ((k % n) + n) % n
	if k == 0 {
		if &s[0] != &sout[0] {
			copy(sout, s)
		}
		return
	}
	tmp := make([]T, n)
	copy(tmp, s)
	for i := 0; i < n; i++ {
		sout[i] = tmp[(i+k)%n]
	}
}

// RotateSliceInPlace rotates s in place, left-rotated by k positions.
func RotateSliceInPlace[T any](s []T, k int) {
	RotateSliceAllocFree(s, k, s)
}

// RotateUint64SliceAllocFree writes into sout the slice s left-rotated by k positions.
func RotateUint64SliceAllocFree(s []uint64, k int, sout []uint64) {
	RotateSliceAllocFree(s, k, sout)
}

// RotateSlotsNew returns a new slice of complex128, left-rotated by k positions.
func RotateSlotsNew(s []complex128, k int) []complex128 {
	return RotateSlice(s, k)
}

// BitReverse64 returns the bit-reversed value of x of bitLen bits.
func BitReverse64(x uint64, bitLen int) (y uint64) {
	y = bits.Reverse64(x) >> (64 - bitLen)
	return
}

// BitReverseInPlaceSlice permutes s in-place into bit-reversal order.
// N must be a power of two and len(s) >= N.
func BitReverseInPlaceSlice[T any](s []T, N int) {
	bitLen := bits.Len64(uint64(N - 1))
	for i := 0; i < N; i++ {
		j := BitReverse64(uint64(i), bitLen)
		if uint64(i) < j {
			s[i], s[j] = s[j], s[i]
		}
	}
}

// IsNil returns true if v is a nil interface or a nil pointer/slice/map stored in an interface.
func IsNil(v interface{}) bool {
	return v == nil
}

// Pointy returns a pointer to a copy of v. Useful for populating optional
// (pointer-typed) fields of parameter-literal structs inline.
func Pointy[T any](v T) *T {
	return &v
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// GetFactors returns the prime factors of x.
func GetFactors(x *big.Int) []*big.Int {
	return factorization.GetFactors(x)
}

// GetFactorECM returns a non-trivial factor of x found via the elliptic-curve method,
// or x itself if x is prime.
func GetFactorECM(x *big.Int) *big.Int {
	return factorization.GetFactorECM(x)
}

// GetFactorPollardRho returns a non-trivial factor of x found via Pollard's rho method,
// or x itself if x is prime.
func GetFactorPollardRho(x *big.Int) *big.Int {
	return factorization.GetFactorPollardRho(x)
}
