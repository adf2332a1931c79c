// Package buffer implements low-level (de)serialization primitives shared by every
// marshallable type in the module (parameters, polynomials, ciphertexts, keys).
//
// All types implementing io.WriterTo and io.ReaderFrom in this module are expected to
// write/read through the helpers of this package, so that serialization is consistent
// and allocation-free when the underlying io.Writer/io.Reader is a *Buffer.
package buffer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Writer is the interface that a struct must implement to be used as an efficient
// writing backend by this package. *bufio.Writer and *Buffer both satisfy it.
type Writer interface {
	io.Writer
	Flush() error
}

// Reader is the interface that a struct must implement to be used as an efficient
// reading backend by this package. *bufio.Reader and *Buffer both satisfy it.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Buffer is an in-memory, allocation-free io.Writer/io.Reader over a []byte slice.
type Buffer struct {
	buf []byte
}

// NewBuffer creates a new Buffer over the provided slice. Writes append to buf,
// reads consume buf from the front.
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// NewBufferSize creates a new, empty Buffer with the given capacity pre-allocated.
func NewBufferSize(size int) *Buffer {
	return &Buffer{buf: make([]byte, 0, size)}
}

// Bytes returns the buffer's remaining (unread) content.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Write appends p to the buffer. It always returns len(p), nil.
func (b *Buffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Read consumes up to len(p) bytes from the front of the buffer.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(b.buf) == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

// ReadByte consumes and returns a single byte from the front of the buffer.
func (b *Buffer) ReadByte() (byte, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	c := b.buf[0]
	b.buf = b.buf[1:]
	return c, nil
}

// Flush is a no-op: Buffer writes are unbuffered.
func (b *Buffer) Flush() error {
	return nil
}

// WriteUint8 appends a single byte to the buffer.
func (b *Buffer) WriteUint8(v uint8) {
	b.buf = append(b.buf, v)
}

// ReadUint8 consumes and returns a single byte from the buffer.
func (b *Buffer) ReadUint8() uint8 {
	v := b.buf[0]
	b.buf = b.buf[1:]
	return v
}

// WriteUint64 appends v, big-endian encoded, to the buffer.
func (b *Buffer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// ReadUint64 consumes and returns a big-endian uint64 from the buffer.
func (b *Buffer) ReadUint64() uint64 {
	v := binary.BigEndian.Uint64(b.buf[:8])
	b.buf = b.buf[8:]
	return v
}

// WriteUint64Slice appends s, big-endian encoded, to the buffer.
func (b *Buffer) WriteUint64Slice(s []uint64) {
	for _, v := range s {
		b.WriteUint64(v)
	}
}

// ReadUint64Slice fills s by consuming len(s) big-endian uint64 values from the buffer.
func (b *Buffer) ReadUint64Slice(s []uint64) {
	for i := range s {
		s[i] = b.ReadUint64()
	}
}

func asReader(r io.Reader) Reader {
	switch r := r.(type) {
	case Reader:
		return r
	default:
		return bufio.NewReader(r)
	}
}

func asWriter(w io.Writer) Writer {
	switch w := w.(type) {
	case Writer:
		return w
	default:
		return bufio.NewWriter(w)
	}
}

// WriteUint8 writes a single byte to w.
func WriteUint8(w io.Writer, v uint8) (n int64, err error) {
	ww := asWriter(w)
	if err = ww.WriteByte(v); err != nil {
		return 0, fmt.Errorf("buffer.WriteUint8: %w", err)
	}
	return 1, ww.Flush()
}

// ReadUint8 reads a single byte from r into v.
func ReadUint8(r io.Reader, v *uint8) (n int64, err error) {
	rr := asReader(r)
	*v, err = rr.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("buffer.ReadUint8: %w", err)
	}
	return 1, nil
}

// WriteAsUint8 writes v, truncated to a uint8, to w.
func WriteAsUint8(w io.Writer, v int) (int64, error) {
	return WriteUint8(w, uint8(v))
}

// ReadAsUint8 reads a uint8 from r into v.
func ReadAsUint8(r io.Reader, v *int) (n int64, err error) {
	var u uint8
	if n, err = ReadUint8(r, &u); err != nil {
		return n, err
	}
	*v = int(u)
	return n, nil
}

func writeFixed(w io.Writer, p []byte) (n int64, err error) {
	ww := asWriter(w)
	inc, err := ww.Write(p)
	if err != nil {
		return int64(inc), fmt.Errorf("buffer.writeFixed: %w", err)
	}
	return int64(inc), ww.Flush()
}

func readFixed(r io.Reader, p []byte) (n int64, err error) {
	rr := asReader(r)
	inc, err := io.ReadFull(rr, p)
	if err != nil {
		return int64(inc), fmt.Errorf("buffer.readFixed: %w", err)
	}
	return int64(inc), nil
}

// WriteUint16 writes v, big-endian encoded, to w.
func WriteUint16(w io.Writer, v uint16) (int64, error) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return writeFixed(w, tmp[:])
}

// ReadUint16 reads a big-endian uint16 from r into v.
func ReadUint16(r io.Reader, v *uint16) (n int64, err error) {
	var tmp [2]byte
	if n, err = readFixed(r, tmp[:]); err != nil {
		return n, err
	}
	*v = binary.BigEndian.Uint16(tmp[:])
	return n, nil
}

// WriteAsUint16 writes v, truncated to a uint16, to w.
func WriteAsUint16(w io.Writer, v int) (int64, error) {
	return WriteUint16(w, uint16(v))
}

// ReadAsUint16 reads a uint16 from r into v.
func ReadAsUint16(r io.Reader, v *int) (n int64, err error) {
	var u uint16
	if n, err = ReadUint16(r, &u); err != nil {
		return n, err
	}
	*v = int(u)
	return n, nil
}

// WriteUint32 writes v, big-endian encoded, to w.
func WriteUint32(w io.Writer, v uint32) (int64, error) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return writeFixed(w, tmp[:])
}

// ReadUint32 reads a big-endian uint32 from r into v.
func ReadUint32(r io.Reader, v *uint32) (n int64, err error) {
	var tmp [4]byte
	if n, err = readFixed(r, tmp[:]); err != nil {
		return n, err
	}
	*v = binary.BigEndian.Uint32(tmp[:])
	return n, nil
}

// WriteAsUint32 writes v, truncated to a uint32, to w.
func WriteAsUint32(w io.Writer, v int) (int64, error) {
	return WriteUint32(w, uint32(v))
}

// ReadAsUint32 reads a uint32 from r into v.
func ReadAsUint32(r io.Reader, v *int) (n int64, err error) {
	var u uint32
	if n, err = ReadUint32(r, &u); err != nil {
		return n, err
	}
	*v = int(u)
	return n, nil
}

// WriteUint64 writes v, big-endian encoded, to w.
func WriteUint64(w io.Writer, v uint64) (int64, error) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return writeFixed(w, tmp[:])
}

// ReadUint64 reads a big-endian uint64 from r into v.
func ReadUint64(r io.Reader, v *uint64) (n int64, err error) {
	var tmp [8]byte
	if n, err = readFixed(r, tmp[:]); err != nil {
		return n, err
	}
	*v = binary.BigEndian.Uint64(tmp[:])
	return n, nil
}

// WriteAsUint64 writes v, converted to a uint64, to w.
func WriteAsUint64(w io.Writer, v uint64) (int64, error) {
	return WriteUint64(w, v)
}

// ReadAsUint64 reads a uint64 from r into v.
func ReadAsUint64(r io.Reader, v *uint64) (n int64, err error) {
	return ReadUint64(r, v)
}

// WriteInt writes v as a big-endian uint64 to w.
func WriteInt(w io.Writer, v int) (int64, error) {
	return WriteUint64(w, uint64(v))
}

// ReadInt reads a big-endian uint64 from r into v.
func ReadInt(r io.Reader, v *int) (n int64, err error) {
	var u uint64
	if n, err = ReadUint64(r, &u); err != nil {
		return n, err
	}
	*v = int(u)
	return n, nil
}

// WriteAsUint8Slice writes len(s) as a prefix then s, each element truncated to a uint8, to w.
func WriteAsUint8Slice[T ~int | ~uint64 | ~uint32 | ~int64](w io.Writer, s []T) (n int64, err error) {
	var inc int64
	if inc, err = WriteInt(w, len(s)); err != nil {
		return inc, err
	}
	n += inc
	for _, v := range s {
		if inc, err = WriteAsUint8(w, int(v)); err != nil {
			return n + inc, err
		}
		n += inc
	}
	return n, nil
}

// ReadAsUint8Slice reads back a slice written by WriteAsUint8Slice into s.
func ReadAsUint8Slice[T ~int | ~uint64 | ~uint32 | ~int64](r io.Reader, s *[]T) (n int64, err error) {
	var size int
	var inc int64
	if inc, err = ReadInt(r, &size); err != nil {
		return inc, err
	}
	n += inc
	if len(*s) != size {
		*s = make([]T, size)
	}
	for i := 0; i < size; i++ {
		var v int
		if inc, err = ReadAsUint8(r, &v); err != nil {
			return n + inc, err
		}
		n += inc
		(*s)[i] = T(v)
	}
	return n, nil
}

// WriteAsUint16Slice writes len(s) as a prefix then s, each element truncated to a uint16, to w.
func WriteAsUint16Slice[T ~int | ~uint64 | ~uint32 | ~int64](w io.Writer, s []T) (n int64, err error) {
	var inc int64
	if inc, err = WriteInt(w, len(s)); err != nil {
		return inc, err
	}
	n += inc
	for _, v := range s {
		if inc, err = WriteAsUint16(w, int(v)); err != nil {
			return n + inc, err
		}
		n += inc
	}
	return n, nil
}

// ReadAsUint16Slice reads back a slice written by WriteAsUint16Slice into s.
func ReadAsUint16Slice[T ~int | ~uint64 | ~uint32 | ~int64](r io.Reader, s *[]T) (n int64, err error) {
	var size int
	var inc int64
	if inc, err = ReadInt(r, &size); err != nil {
		return inc, err
	}
	n += inc
	if len(*s) != size {
		*s = make([]T, size)
	}
	for i := 0; i < size; i++ {
		var v int
		if inc, err = ReadAsUint16(r, &v); err != nil {
			return n + inc, err
		}
		n += inc
		(*s)[i] = T(v)
	}
	return n, nil
}

// WriteAsUint32Slice writes len(s) as a prefix then s, each element truncated to a uint32, to w.
func WriteAsUint32Slice(w io.Writer, s []uint64) (n int64, err error) {
	var inc int64
	if inc, err = WriteInt(w, len(s)); err != nil {
		return inc, err
	}
	n += inc
	for _, v := range s {
		if inc, err = WriteUint32(w, uint32(v)); err != nil {
			return n + inc, err
		}
		n += inc
	}
	return n, nil
}

// ReadAsUint32Slice reads back a slice written by WriteAsUint32Slice into s.
func ReadAsUint32Slice(r io.Reader, s *[]uint64) (n int64, err error) {
	var size int
	var inc int64
	if inc, err = ReadInt(r, &size); err != nil {
		return inc, err
	}
	n += inc
	if len(*s) != size {
		*s = make([]uint64, size)
	}
	for i := 0; i < size; i++ {
		var v uint32
		if inc, err = ReadUint32(r, &v); err != nil {
			return n + inc, err
		}
		n += inc
		(*s)[i] = uint64(v)
	}
	return n, nil
}

// WriteUint64Slice writes len(s) as a prefix then s to w.
func WriteUint64Slice(w io.Writer, s []uint64) (n int64, err error) {
	var inc int64
	if inc, err = WriteInt(w, len(s)); err != nil {
		return inc, err
	}
	n += inc
	ww := asWriter(w)
	for _, v := range s {
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], v)
		wn, err := ww.Write(tmp[:])
		n += int64(wn)
		if err != nil {
			return n, fmt.Errorf("buffer.WriteUint64Slice: %w", err)
		}
	}
	return n, ww.Flush()
}

// ReadUint64Slice reads back a slice of known length written by WriteUint64Slice-like
// encoding into s (s must already be sized).
func ReadUint64Slice(r io.Reader, s []uint64) (n int64, err error) {
	rr := asReader(r)
	for i := range s {
		var tmp [8]byte
		rn, err := io.ReadFull(rr, tmp[:])
		n += int64(rn)
		if err != nil {
			return n, fmt.Errorf("buffer.ReadUint64Slice: %w", err)
		}
		s[i] = binary.BigEndian.Uint64(tmp[:])
	}
	return n, nil
}

// Write writes data prefixed with its length.
func Write(w io.Writer, data []byte) (n int64, err error) {
	var inc int64
	if inc, err = WriteInt(w, len(data)); err != nil {
		return inc, err
	}
	n += inc
	wn, err := writeFixed(w, data)
	return n + wn, err
}

// Read reads back data written by Write into data (resizing it if necessary).
func Read(r io.Reader, data *[]byte) (n int64, err error) {
	var size int
	var inc int64
	if inc, err = ReadInt(r, &size); err != nil {
		return inc, err
	}
	n += inc
	if len(*data) != size {
		*data = make([]byte, size)
	}
	rn, err := readFixed(r, *data)
	return n + rn, err
}

// EqualAsUint8Slice compares two slices whose elements have been truncated to uint8 on write.
func EqualAsUint8Slice[T ~int | ~uint64 | ~uint32 | ~int64](a, b []T) bool {
	return equalSlice(a, b, func(v T) uint64 { return uint64(uint8(v)) })
}

// EqualAsUint16Slice compares two slices whose elements have been truncated to uint16 on write.
func EqualAsUint16Slice[T ~int | ~uint64 | ~uint32 | ~int64](a, b []T) bool {
	return equalSlice(a, b, func(v T) uint64 { return uint64(uint16(v)) })
}

// EqualAsUint32Slice compares two slices whose elements have been truncated to uint32 on write.
func EqualAsUint32Slice[T ~int | ~uint64 | ~uint32 | ~int64](a, b []T) bool {
	return equalSlice(a, b, func(v T) uint64 { return uint64(uint32(v)) })
}

// EqualAsUint64Slice compares two slices whose elements are compared directly as uint64.
func EqualAsUint64Slice[T ~int | ~uint64 | ~uint32 | ~int64](a, b []T) bool {
	return equalSlice(a, b, func(v T) uint64 { return uint64(v) })
}

func equalSlice[T any](a, b []T, key func(T) uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if key(a[i]) != key(b[i]) {
			return false
		}
	}
	return true
}
