package omr

import "github.com/xiangxiecrypto/tfhe-omr/ring"

// negacyclicLUT builds an N-coefficient look-up polynomial for functional
// bootstrapping out of a (2^logT/2 + 1)-entry value table, grounded on the
// teacher's own negacyclic-table convention (the table's length is
// constrained to a power of two, t = 2^logT, exactly as this module's
// blind-rotation test polynomials are built relative to a fixed ring
// dimension).
//
// values holds v_0 .. v_{t/2}, the first half of the t logical table
// entries; the remaining half is recovered from the ring's own negacyclic
// structure (X^N = -1), so callers encode an odd function by simply setting
// values[t/2] to the negation, modulo the ring's modulus, of values[0].
//
// Each logical entry v_k is written across N/t consecutive coefficients,
// following the doubling pattern v_0, v_1, v_1, v_2, v_2, ..., v_{t/2}: the
// polynomial has one "far" half-chunk for v_0, then t/2-1 full chunks, then
// one final half-chunk for v_{t/2} -- the same "Dirac-like" shape a 5-entry
// table [s, 0, 0, 0, -s] produces when padded to t=8.
//
// Panics if N is not a multiple of t or len(values) != t/2+1.
func negacyclicLUT(ringQ *ring.Ring, logT int, values []uint64) (lut ring.Poly) {

	N := ringQ.N()
	t := 1 << logT

	if N%t != 0 {
		panic("negacyclicLUT: ring dimension is not a multiple of the table size")
	}

	if len(values) != t/2+1 {
		panic("negacyclicLUT: len(values) must equal 2^logT/2 + 1")
	}

	chunk := N / t

	lut = ringQ.NewPoly()

	level := ringQ.Level()

	for pos := 0; pos < t; pos++ {

		k := (pos + 1) / 2

		start := pos * chunk

		for j, table := range ringQ.SubRings[:level+1] {
			v := values[k] % table.Modulus
			coeffs := lut.Coeffs[j][start : start+chunk]
			for i := range coeffs {
				coeffs[i] = v
			}
		}
	}

	return
}
