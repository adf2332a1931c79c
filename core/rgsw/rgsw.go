// Package rgsw implements an RLWE-based GSW encryption and external product RLWE x RGSW -> RLWE.
// RSGW ciphertexts are tuples of two [rlwe.GadgetCiphertext] encrypting (`m(X)`, s*m(X)).
package rgsw

import (
	"bufio"
	"io"

	"github.com/xiangxiecrypto/tfhe-omr/core/rlwe"
	"github.com/xiangxiecrypto/tfhe-omr/utils/buffer"
)

// Ciphertext is a generic type for RGSW ciphertext.
// An RGSW ciphertext encrypting a plaintext m(X) is a pair of [rlwe.GadgetCiphertext],
// the first encrypting m(X) and the second encrypting s*m(X), where s is the RLWE secret.
type Ciphertext struct {
	Value [2]rlwe.GadgetCiphertext
}

// Plaintext stores an RGSW plaintext value times the gadget vector.
type Plaintext rlwe.GadgetPlaintext

// NewCiphertext allocates a new RGSW ciphertext in the NTT domain.
func NewCiphertext(params rlwe.ParameterProvider, levelQ, levelP, baseTwoDecomposition int) (ct *Ciphertext) {
	return &Ciphertext{
		Value: [2]rlwe.GadgetCiphertext{
			*rlwe.NewGadgetCiphertext(params, 1, levelQ, levelP, baseTwoDecomposition),
			*rlwe.NewGadgetCiphertext(params, 1, levelQ, levelP, baseTwoDecomposition),
		},
	}
}

// LevelQ returns the level of the modulus Q of the target ciphertext.
func (ct Ciphertext) LevelQ() int {
	return ct.Value[0].LevelQ()
}

// LevelP returns the level of the modulus P of the target ciphertext.
func (ct Ciphertext) LevelP() int {
	return ct.Value[0].LevelP()
}

// BaseTwoDecomposition returns the power of two decomposition basis of the ciphertext.
func (ct Ciphertext) BaseTwoDecomposition() int {
	return ct.Value[0].BaseTwoDecomposition
}

// Equal checks two ciphertexts for equality.
func (ct Ciphertext) Equal(other *Ciphertext) bool {
	return ct.Value[0].Equal(&other.Value[0]) && ct.Value[1].Equal(&other.Value[1])
}

// CopyNew creates a deep copy of the receiver ciphertext and returns it.
func (ct Ciphertext) CopyNew() (ctCopy *Ciphertext) {
	return &Ciphertext{
		Value: [2]rlwe.GadgetCiphertext{
			*ct.Value[0].CopyNew(),
			*ct.Value[1].CopyNew(),
		},
	}
}

// BinarySize returns the serialized size of the object in bytes.
func (ct Ciphertext) BinarySize() (dataLen int) {
	return ct.Value[0].BinarySize() + ct.Value[1].BinarySize()
}

// WriteTo writes the object on an [io.Writer]. It implements the [io.WriterTo]
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the [buffer.Writer] interface (see lattigo/utils/buffer/writer.go),
// it will be wrapped into a [bufio.Writer]. Since this requires allocations, it
// is preferable to pass a [buffer.Writer] directly:
//
//   - When writing multiple times to a [io.Writer], it is preferable to first wrap the
//     io.Writer in a pre-allocated [bufio.Writer].
//   - When writing to a pre-allocated var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as w (see lattigo/utils/buffer/buffer.go).
func (ct Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = ct.Value[0].WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		inc, err = ct.Value[1].WriteTo(w)

		return n + inc, err

	default:
		return ct.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an [io.Reader]. It implements the
// [io.ReaderFrom] interface.
//
// Unless r implements the [buffer.Reader] interface (see see lattigo/utils/buffer/reader.go),
// it will be wrapped into a [bufio.Reader]. Since this requires allocation, it
// is preferable to pass a [buffer.Reader] directly:
//
//   - When reading multiple values from a [io.Reader], it is preferable to first
//     first wrap [io.Reader] in a pre-allocated [bufio.Reader].
//   - When reading from a var b []byte, it is preferable to pass a buffer.NewBuffer(b)
//     as w (see lattigo/utils/buffer/buffer.go).
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		if inc, err = ct.Value[0].ReadFrom(r); err != nil {
			return n + inc, err
		}

		n += inc

		inc, err = ct.Value[1].ReadFrom(r)

		return n + inc, err

	default:
		return ct.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (ct Ciphertext) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(ct.BinarySize())
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// [Ciphertext.MarshalBinary] or [Ciphertext.WriteTo] on the object.
func (ct *Ciphertext) UnmarshalBinary(p []byte) (err error) {
	_, err = ct.ReadFrom(buffer.NewBuffer(p))
	return
}
