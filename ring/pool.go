package ring

import (
	"fmt"

	"github.com/xiangxiecrypto/tfhe-omr/utils/structs"
)

// BufferPool represents a pool of polys that can be used (concurrently) to instantiate temporary polynomials.
type BufferPool struct {
	level      int
	n          int
	bufferPool structs.BufferPool[*[]uint64]
}

// NewPool returns a new pool given a ring, and optionally a pool to draw the backing arrays from.
func NewPool(ring *Ring, pools ...structs.BufferPool[*[]uint64]) *BufferPool {
	newPool := &BufferPool{level: ring.level, n: ring.N()}
	switch lenPool := len(pools); lenPool {
	case 0:
		newPool.bufferPool = structs.NewSyncPoolUint64(ring.N())
	case 1:
		newPool.bufferPool = pools[0]
	default:
		panic(fmt.Errorf("the method takes at most 1 argument but %d were given", lenPool))
	}

	return newPool
}

// GetLevel returns the level of the polynomials obtained from the pool.
func (p BufferPool) GetLevel() int {
	return p.level
}

// AtLevel returns a new pool from which polynomials at the given level can be drawn.
func (p BufferPool) AtLevel(level int) *BufferPool {
	return &BufferPool{level, p.n, p.bufferPool}
}

// GetBuffUintArray returns a new  []uint64 slice obtained from a pool.
// After use, the slice should be recycled using the [BufferPool.RecycleBuffUintArray] method.
func (p BufferPool) GetBuffUintArray() *[]uint64 {
	return p.bufferPool.Get()
}

// RecycleBuffUintArray takes a reference to a []uint64 slice and puts it back in the pool.
func (p BufferPool) RecycleBuffUintArray(arr *[]uint64) {
	p.bufferPool.Put(arr)
}

// GetBuffPoly returns a new [Poly] built by [NewPolyFromUintPool] from the pool.
// After use, the [Poly] should be recycled using the [BufferPool.RecycleBuffPoly] method.
func (p BufferPool) GetBuffPoly() *Poly {
	return NewPolyFromUintPool(p.bufferPool, p.n, p.level)
}

// RecycleBuffPoly takes a reference to a [Poly] and recycles it with [RecyclePolyInUintPool]
// (copies of its levels are put into the pool). The input [Poly] must not be used after calling this method.
func (p BufferPool) RecycleBuffPoly(pol *Poly) {
	RecyclePolyInUintPool(p.bufferPool, pol)
}

// NewPolyFromUintPool creates a new polynomial of the given N and Level in freshly allocated
// storage. For each level it takes an N-sized []uint64 array from bufferPool, copies its
// content into the polynomial and puts it back; the polynomial does not share memory with the pool.
func NewPolyFromUintPool(bufferPool structs.BufferPool[*[]uint64], N, Level int) (pol *Poly) {
	pol = new(Poly)
	pol.Buff = make([]uint64, N*(Level+1))
	pol.Coeffs = make([][]uint64, Level+1)
	for i := 0; i < Level+1; i++ {
		buf := bufferPool.Get()
		copy(pol.Buff[i*N:(i+1)*N], (*buf)[:N])
		bufferPool.Put(buf)
		pol.Coeffs[i] = pol.Buff[i*N : (i+1)*N]
	}
	return
}

// RecyclePolyInUintPool puts a fresh N-sized copy of each level of pol into bufferPool;
// pol's own backing storage is not handed to the pool.
// pol must not be used after calling this method.
func RecyclePolyInUintPool(bufferPool structs.BufferPool[*[]uint64], pol *Poly) {
	N := pol.N()
	for i := 0; i <= pol.Level(); i++ {
		chunk := append([]uint64(nil), pol.Buff[i*N:(i+1)*N]...)
		bufferPool.Put(&chunk)
	}
}
