package structs

import (
	"fmt"
	"io"

	"github.com/xiangxiecrypto/tfhe-omr/utils/buffer"
)

// Matrix is a slice of rows, used to represent e.g. the rows of a gadget ciphertext.
type Matrix[T any] [][]T

// Equal returns true if the two matrices have the same shape and compare equal row-wise.
func (m Matrix[T]) Equal(other Matrix[T]) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(other[i]) {
			return false
		}
		for j := range m[i] {
			if !elementEqual(m[i][j], other[i][j]) {
				return false
			}
		}
	}
	return true
}

// BinarySize returns the size in bytes of the matrix's serialization.
func (m Matrix[T]) BinarySize() (size int) {
	size = 8
	for _, row := range m {
		size += 8
		for _, c := range row {
			size += elementBinarySize(c)
		}
	}
	return
}

// WriteTo writes the matrix on w. It implements the io.WriterTo interface.
func (m Matrix[T]) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if inc, err = buffer.WriteInt(w, len(m)); err != nil {
		return inc, fmt.Errorf("Matrix.WriteTo: %w", err)
	}
	n += inc
	for _, row := range m {
		if inc, err = buffer.WriteInt(w, len(row)); err != nil {
			return n + inc, fmt.Errorf("Matrix.WriteTo: %w", err)
		}
		n += inc
		for j := range row {
			if inc, err = writeElement(w, row[j]); err != nil {
				return n + inc, fmt.Errorf("Matrix.WriteTo: %w", err)
			}
			n += inc
		}
	}
	return
}

// ReadFrom reads a matrix from r. It implements the io.ReaderFrom interface.
func (m *Matrix[T]) ReadFrom(r io.Reader) (n int64, err error) {
	var rows int
	var inc int64
	if inc, err = buffer.ReadInt(r, &rows); err != nil {
		return inc, fmt.Errorf("Matrix.ReadFrom: %w", err)
	}
	n += inc

	if len(*m) != rows {
		*m = make(Matrix[T], rows)
	}

	for i := 0; i < rows; i++ {
		var cols int
		if inc, err = buffer.ReadInt(r, &cols); err != nil {
			return n + inc, fmt.Errorf("Matrix.ReadFrom: %w", err)
		}
		n += inc

		if len((*m)[i]) != cols {
			(*m)[i] = make([]T, cols)
		}

		for j := 0; j < cols; j++ {
			if inc, err = readElement(r, &(*m)[i][j]); err != nil {
				return n + inc, fmt.Errorf("Matrix.ReadFrom: %w", err)
			}
			n += inc
		}
	}
	return
}

// MarshalBinary encodes the matrix into a newly allocated slice of bytes.
func (m Matrix[T]) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(m.BinarySize())
	_, err = m.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes produced by MarshalBinary into the receiver.
func (m *Matrix[T]) UnmarshalBinary(data []byte) (err error) {
	_, err = m.ReadFrom(buffer.NewBuffer(data))
	return
}
