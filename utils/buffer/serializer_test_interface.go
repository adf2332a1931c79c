package buffer

import (
	"io"
	"reflect"

	"github.com/stretchr/testify/require"
)

// Serializable is implemented by every marshallable type of the module.
type Serializable interface {
	io.WriterTo
	io.ReaderFrom
	BinarySize() int
}

// TestInterfaceWriteAndRead writes obj to a freshly allocated Buffer sized from
// obj.BinarySize() and reads it back into a zero-valued instance of the same
// concrete type, returning the round-tripped copy for the caller to compare.
func TestInterfaceWriteAndRead(t require.TestingT, obj Serializable) interface{} {

	buf := NewBufferSize(obj.BinarySize())

	_, err := obj.WriteTo(buf)
	require.NoError(t, err)

	clonePtr := reflect.New(reflect.TypeOf(obj).Elem())
	clone, ok := clonePtr.Interface().(Serializable)
	require.True(t, ok, "object does not implement Serializable")

	_, err = clone.ReadFrom(NewBuffer(buf.Bytes()))
	require.NoError(t, err)

	return clone
}

// RequireSerializerCorrect asserts that obj survives a WriteTo/ReadFrom round-trip
// unchanged. obj must be a pointer implementing io.WriterTo, io.ReaderFrom and BinarySize.
func RequireSerializerCorrect(t require.TestingT, obj Serializable) {
	clone := TestInterfaceWriteAndRead(t, obj)
	require.Equal(t, obj, clone)
}
