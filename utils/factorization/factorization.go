// Package factorization implements big.Int primality testing and integer factorization,
// used to generate NTT-friendly prime moduli.
package factorization

import (
	"math/big"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// IsPrime returns true if n is (probabilistically) prime.
func IsPrime(n *big.Int) bool {
	return n.ProbablyPrime(30)
}

// GetFactors returns the distinct prime factors of n.
func GetFactors(n *big.Int) (factors []*big.Int) {

	m := new(big.Int).Set(n)

	for m.Cmp(one) > 0 {

		if IsPrime(m) {
			factors = append(factors, new(big.Int).Set(m))
			break
		}

		d := GetFactorPollardRho(m)

		if d.Cmp(m) == 0 {
			d = GetFactorECM(m)
		}

		if !IsPrime(d) {
			sub := GetFactors(d)
			factors = append(factors, sub...)
		} else {
			factors = append(factors, d)
		}

		m.Div(m, d)
	}

	return
}

// GetFactorPollardRho returns a non-trivial factor of n using Pollard's rho heuristic,
// or n itself if n is prime or the search does not converge.
func GetFactorPollardRho(n *big.Int) *big.Int {

	if n.Bit(0) == 0 {
		return new(big.Int).Set(two)
	}

	if IsPrime(n) {
		return new(big.Int).Set(n)
	}

	x := big.NewInt(2)
	y := big.NewInt(2)
	c := big.NewInt(1)
	d := big.NewInt(1)

	f := func(v *big.Int) *big.Int {
		r := new(big.Int).Mul(v, v)
		r.Add(r, c)
		r.Mod(r, n)
		return r
	}

	tmp := new(big.Int)

	for attempt := 0; attempt < 64; attempt++ {

		x.SetInt64(2)
		y.SetInt64(2)
		d.SetInt64(1)

		for d.Cmp(one) == 0 {
			x = f(x)
			y = f(f(y))

			tmp.Sub(x, y)
			tmp.Abs(tmp)
			if tmp.Sign() == 0 {
				d.Set(n)
				break
			}
			d.GCD(nil, nil, tmp, n)
		}

		if d.Cmp(n) != 0 && d.Cmp(one) != 0 {
			return d
		}

		c.Add(c, one)
	}

	return new(big.Int).Set(n)
}

// GetFactorECM returns a non-trivial factor of n. This implementation falls back to trial
// division over small primes followed by Pollard's rho, which is sufficient for the moduli
// sizes (<=61 bits) handled by the NTT-friendly prime generator.
func GetFactorECM(n *big.Int) *big.Int {

	m := new(big.Int).Set(n)

	for _, p := range smallPrimes {
		pb := big.NewInt(int64(p))
		if m.Cmp(pb) <= 0 {
			break
		}
		mod := new(big.Int).Mod(m, pb)
		if mod.Sign() == 0 {
			return pb
		}
	}

	return GetFactorPollardRho(m)
}

var smallPrimes = sieveSmallPrimes(1 << 16)

func sieveSmallPrimes(limit int) []int {
	composite := make([]bool, limit+1)
	var primes []int
	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return primes
}
