package structs

import "sync"

// BufferPool is a pool of reusable values of type T, used to avoid repeated
// allocation of scratch space (backing []uint64 arrays, polynomials, ciphertexts, ...)
// in hot evaluator loops.
type BufferPool[T any] interface {
	// Get returns a value from the pool, allocating a new one if the pool is empty.
	Get() T
	// Put returns a value to the pool so it can be reused by a subsequent Get.
	Put(T)
}

// syncPool is a BufferPool backed by a sync.Pool.
type syncPool[T any] struct {
	pool *sync.Pool
}

// NewSyncPool returns a BufferPool[T] that allocates new values with f whenever
// the underlying sync.Pool is empty.
func NewSyncPool[T any](f func() T) BufferPool[T] {
	return &syncPool[T]{
		pool: &sync.Pool{
			New: func() interface{} {
				return f()
			},
		},
	}
}

func (s *syncPool[T]) Get() T {
	return s.pool.Get().(T)
}

func (s *syncPool[T]) Put(v T) {
	s.pool.Put(v)
}

// NewSyncPoolUint64 returns a BufferPool of []uint64 backing arrays of the given size.
func NewSyncPoolUint64(size int) BufferPool[*[]uint64] {
	return NewSyncPool(func() *[]uint64 {
		buf := make([]uint64, size)
		return &buf
	})
}

// derivedPool is a BufferPool[T] whose values are derived from another BufferPool[U]
// (typically a pool of raw []uint64 backing arrays), via a make/recycle pair.
type derivedPool[U, T any] struct {
	base    BufferPool[U]
	makeFn  func(BufferPool[U]) T
	recycle func(BufferPool[U], T)
}

// NewBuffFromUintPool returns a BufferPool[T] that draws its backing storage from
// base (a pool of []uint64 arrays), constructing values with makeFn and returning
// their backing arrays to base via recycleFn on Put.
func NewBuffFromUintPool[U, T any](base BufferPool[U], makeFn func(BufferPool[U]) T, recycleFn func(BufferPool[U], T)) BufferPool[T] {
	return &derivedPool[U, T]{
		base:    base,
		makeFn:  makeFn,
		recycle: recycleFn,
	}
}

func (d *derivedPool[U, T]) Get() T {
	return d.makeFn(d.base)
}

func (d *derivedPool[U, T]) Put(v T) {
	d.recycle(d.base, v)
}
