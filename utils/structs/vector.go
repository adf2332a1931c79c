// Package structs implements generic container types (Vector, Matrix) shared by
// every keyed/ciphertext structure of the module, together with the allocation
// pooling helpers (BufferPool) used by the evaluators' scratch space.
package structs

import (
	"fmt"
	"io"
	"reflect"

	"github.com/xiangxiecrypto/tfhe-omr/utils/buffer"
)

// Vector is a slice of elements of type T. If T implements io.WriterTo, io.ReaderFrom
// and BinarySize() int (e.g. ring.Poly), serialization delegates to T; otherwise T is
// expected to be a fixed-width numeric type and is serialized generically.
type Vector[T any] []T

// Equal returns true if the two vectors have the same length and compare equal
// element-wise (either via a comparable T or via T's own Equal method).
func (v Vector[T]) Equal(other Vector[T]) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if !elementEqual(v[i], other[i]) {
			return false
		}
	}
	return true
}

// BinarySize returns the size in bytes of the vector's serialization.
func (v Vector[T]) BinarySize() (size int) {
	size = 8
	for _, c := range v {
		size += elementBinarySize(c)
	}
	return
}

// WriteTo writes the vector on w. It implements the io.WriterTo interface.
func (v Vector[T]) WriteTo(w io.Writer) (n int64, err error) {
	var inc int64
	if inc, err = buffer.WriteInt(w, len(v)); err != nil {
		return inc, fmt.Errorf("Vector.WriteTo: %w", err)
	}
	n += inc
	for i := range v {
		if inc, err = writeElement(w, v[i]); err != nil {
			return n + inc, fmt.Errorf("Vector.WriteTo: %w", err)
		}
		n += inc
	}
	return
}

// ReadFrom reads a vector from r. It implements the io.ReaderFrom interface.
func (v *Vector[T]) ReadFrom(r io.Reader) (n int64, err error) {
	var size int
	var inc int64
	if inc, err = buffer.ReadInt(r, &size); err != nil {
		return inc, fmt.Errorf("Vector.ReadFrom: %w", err)
	}
	n += inc

	if len(*v) != size {
		*v = make(Vector[T], size)
	}

	for i := range *v {
		if inc, err = readElement(r, &(*v)[i]); err != nil {
			return n + inc, fmt.Errorf("Vector.ReadFrom: %w", err)
		}
		n += inc
	}
	return
}

// MarshalBinary encodes the vector into a newly allocated slice of bytes.
func (v Vector[T]) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(v.BinarySize())
	_, err = v.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes produced by MarshalBinary into the receiver.
func (v *Vector[T]) UnmarshalBinary(data []byte) (err error) {
	_, err = v.ReadFrom(buffer.NewBuffer(data))
	return
}

type writerTo interface {
	io.WriterTo
	BinarySize() int
}

type readerFrom interface {
	io.ReaderFrom
}

func elementBinarySize(c any) int {
	if s, ok := c.(writerTo); ok {
		return s.BinarySize()
	}
	return numericSize(c)
}

func writeElement(w io.Writer, c any) (int64, error) {
	if s, ok := c.(writerTo); ok {
		return s.WriteTo(w)
	}
	return writeNumeric(w, c)
}

func readElement[T any](r io.Reader, c *T) (int64, error) {
	if s, ok := any(c).(readerFrom); ok {
		return s.ReadFrom(r)
	}
	return readNumeric(r, c)
}

func elementEqual(a, b any) bool {
	if ea, ok := a.(interface{ Equal(any) bool }); ok {
		return ea.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

func numericSize(c any) int {
	switch reflect.ValueOf(c).Kind() {
	case reflect.Uint8, reflect.Int8:
		return 1
	case reflect.Uint16, reflect.Int16:
		return 2
	case reflect.Uint32, reflect.Int32, reflect.Float32:
		return 4
	default:
		return 8
	}
}

func intValue(rv reflect.Value) int64 {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	default:
		return int64(rv.Uint())
	}
}

func setIntValue(rv reflect.Value, v int64) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		rv.SetInt(v)
	default:
		rv.SetUint(uint64(v))
	}
}

func writeNumeric(w io.Writer, c any) (int64, error) {
	rv := reflect.ValueOf(c)
	switch rv.Kind() {
	case reflect.Uint8, reflect.Int8:
		return buffer.WriteAsUint8(w, int(intValue(rv)))
	case reflect.Uint16, reflect.Int16:
		return buffer.WriteAsUint16(w, int(intValue(rv)))
	case reflect.Uint32, reflect.Int32:
		return buffer.WriteAsUint32(w, int(intValue(rv)))
	case reflect.Float32, reflect.Float64:
		return buffer.WriteUint64(w, floatBits(rv.Float()))
	default:
		return buffer.WriteUint64(w, uint64(intValue(rv)))
	}
}

func readNumeric[T any](r io.Reader, c *T) (int64, error) {
	rv := reflect.ValueOf(c).Elem()
	switch rv.Kind() {
	case reflect.Uint8, reflect.Int8:
		var v int
		n, err := buffer.ReadAsUint8(r, &v)
		setIntValue(rv, int64(v))
		return n, err
	case reflect.Uint16, reflect.Int16:
		var v int
		n, err := buffer.ReadAsUint16(r, &v)
		setIntValue(rv, int64(v))
		return n, err
	case reflect.Uint32, reflect.Int32:
		var v int
		n, err := buffer.ReadAsUint32(r, &v)
		setIntValue(rv, int64(v))
		return n, err
	case reflect.Float32, reflect.Float64:
		var v uint64
		n, err := buffer.ReadUint64(r, &v)
		rv.SetFloat(floatFromBits(v))
		return n, err
	default:
		var v uint64
		n, err := buffer.ReadUint64(r, &v)
		setIntValue(rv, int64(v))
		return n, err
	}
}
