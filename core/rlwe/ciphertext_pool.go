package rlwe

import (
	"github.com/xiangxiecrypto/tfhe-omr/ring"
	"github.com/xiangxiecrypto/tfhe-omr/utils/structs"
)

// NewCiphertextFromUintPool returns a new Ciphertext of the given degree and level, its
// polynomials' backing storage drawn from bufferPool instead of freshly allocated.
func NewCiphertextFromUintPool(bufferPool structs.BufferPool[*[]uint64], params Parameters, degree, level int) *Ciphertext {
	N := params.RingQ().N()

	polys := make([]ring.Poly, degree+1)
	for i := range polys {
		polys[i] = *ring.NewPolyFromUintPool(bufferPool, N, level)
	}

	ct, err := NewCiphertextAtLevelFromPoly(level, polys)
	if err != nil {
		// sanity check: should not happen, degree and level are always valid here.
		panic(err)
	}
	return ct
}

// RecycleCiphertextInUintPool returns ct's polynomials' backing storage to bufferPool.
// ct must not be used after calling this method.
func RecycleCiphertextInUintPool(bufferPool structs.BufferPool[*[]uint64], ct *Ciphertext) {
	for i := range ct.Value {
		ring.RecyclePolyInUintPool(bufferPool, &ct.Value[i])
	}
}
