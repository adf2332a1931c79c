package omr

// PayloadLength is the fixed number of elements carried by one message's
// payload.
const PayloadLength = 612

// Payload is a fixed-length vector over Z/modulus attached to one message.
// Arithmetic wraps modulo Modulus; Modulus is carried on the value itself
// (rather than threaded through every call) since payloads are always
// combined within a single retrieval session sharing one output modulus p.
type Payload struct {
	Modulus uint64
	Values  [PayloadLength]uint64
}

// NewPayload returns the zero payload over the given modulus.
func NewPayload(modulus uint64) Payload {
	return Payload{Modulus: modulus}
}

// Add returns a+b mod Modulus.
func (a Payload) Add(b Payload) (c Payload) {
	c.Modulus = a.Modulus
	for i := range a.Values {
		c.Values[i] = (a.Values[i] + b.Values[i]) % a.Modulus
	}
	return
}

// Sub returns a-b mod Modulus.
func (a Payload) Sub(b Payload) (c Payload) {
	c.Modulus = a.Modulus
	for i := range a.Values {
		c.Values[i] = (a.Values[i] + a.Modulus - b.Values[i]%a.Modulus) % a.Modulus
	}
	return
}

// ScalarMul returns w*a mod Modulus.
func (a Payload) ScalarMul(w uint64) (c Payload) {
	c.Modulus = a.Modulus
	w %= a.Modulus
	for i := range a.Values {
		c.Values[i] = (a.Values[i] * w) % a.Modulus
	}
	return
}

// AddScaled returns a + w*b mod Modulus.
func (a Payload) AddScaled(w uint64, b Payload) (c Payload) {
	return a.Add(b.ScalarMul(w))
}

// Equal reports whether a and b hold the same modulus and values.
func (a Payload) Equal(b Payload) bool {
	if a.Modulus != b.Modulus {
		return false
	}
	return a.Values == b.Values
}
