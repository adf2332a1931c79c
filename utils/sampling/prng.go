// Package sampling implements cryptographically secure pseudo-random number
// generation, used throughout the module to sample randomness deterministically
// from a seed (KeyedPRNG) or from the operating system's entropy source (PRNG).
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// PRNG is an interface for a pseudo-random number generator, implementing io.Reader.
type PRNG interface {
	io.Reader
}

// prng wraps the operating system's entropy source directly.
type prng struct{}

// NewPRNG creates a new PRNG backed by the operating system's CSPRNG.
func NewPRNG() (PRNG, error) {
	return &prng{}, nil
}

func (p *prng) Read(b []byte) (int, error) {
	return rand.Read(b)
}

// KeyedPRNG is a PRNG that can be keyed with a fixed seed, in which case it will
// deterministically generate the same stream of bytes. It is implemented as a
// BLAKE3 extendable-output hash keyed on the seed, used as a stream cipher.
type KeyedPRNG struct {
	digest *blake3.Hasher
	reader io.Reader
	key    []byte
}

// NewKeyedPRNG creates a new instance of KeyedPRNG.
// Accepts an optional key. If key==nil, then the PRNG is initialized with a random key.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {

	var digest *blake3.Hasher
	var err error

	if key != nil {
		keyArr := [32]byte{}
		if len(key) != 32 {
			h := blake3.New()
			if _, err = h.Write(key); err != nil {
				return nil, fmt.Errorf("cannot NewKeyedPRNG: %w", err)
			}
			copy(keyArr[:], h.Sum(nil))
		} else {
			copy(keyArr[:], key)
		}
		digest = blake3.NewKeyed(&keyArr)
	} else {
		seed := make([]byte, 32)
		if _, err = rand.Read(seed); err != nil {
			return nil, fmt.Errorf("cannot NewKeyedPRNG: %w", err)
		}
		digest, err = newKeyedFromSeed(seed)
		if err != nil {
			return nil, err
		}
		key = seed
	}

	return &KeyedPRNG{digest: digest, reader: digest.XOF(), key: append([]byte(nil), key...)}, nil
}

func newKeyedFromSeed(seed []byte) (*blake3.Hasher, error) {
	keyArr := [32]byte{}
	copy(keyArr[:], seed)
	return blake3.NewKeyed(&keyArr), nil
}

// Read reads len(b) bytes from the stream, advancing the internal clock.
func (prng *KeyedPRNG) Read(b []byte) (n int, err error) {
	return prng.reader.Read(b)
}

// Reset rewinds the stream to its initial position, making subsequent Read calls
// reproduce the same output as a freshly created KeyedPRNG sharing the same key.
func (prng *KeyedPRNG) Reset() {
	prng.reader = prng.digest.XOF()
}

// Key returns a copy of the key the KeyedPRNG was initialized with.
func (prng *KeyedPRNG) Key() []byte {
	return append([]byte(nil), prng.key...)
}

// RandUint64 returns a random uint64 sampled from the operating system's CSPRNG.
func RandUint64() uint64 {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b)
}

// RandFloat64 returns a random float64 in [min, max) sampled from the operating system's CSPRNG.
func RandFloat64(min, max float64) float64 {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	unit := float64(binary.LittleEndian.Uint64(b)>>11) / (1 << 53)
	return min + unit*(max-min)
}

// RandComplex128 returns a random complex128 with both real and imaginary parts in [min, max).
func RandComplex128(min, max float64) complex128 {
	return complex(RandFloat64(min, max), RandFloat64(min, max))
}
