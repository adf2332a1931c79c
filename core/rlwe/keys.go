package rlwe

import (
	"bufio"
	"fmt"
	"io"

	"github.com/xiangxiecrypto/tfhe-omr/ring"
	"github.com/xiangxiecrypto/tfhe-omr/ring/ringqp"
	"github.com/xiangxiecrypto/tfhe-omr/utils/buffer"
	"github.com/xiangxiecrypto/tfhe-omr/utils/structs"
)

// VectorQP is a vector of [ringqp.Poly], used as the base storage type of a [GadgetCiphertext].
type VectorQP = structs.Vector[ringqp.Poly]

// NewVectorQP allocates a new [VectorQP] of the given degree, with polynomials
// allocated in RingQP at the given levelQ, levelP.
func NewVectorQP(params ParameterProvider, degree, levelQ, levelP int) VectorQP {
	ringQP := params.GetRLWEParameters().RingQP().AtLevel(levelQ, levelP)
	v := make(VectorQP, degree)
	for i := range v {
		v[i] = ringQP.NewPoly()
	}
	return v
}

// SecretKey is a type for generic RLWE secret keys. The SecretKey is always
// sampled in RingQP, for consistency across schemes that either see the
// auxiliary modulus P as part of the ciphertext modulus (e.g. BFV, BGV, CKKS)
// or use it only for keys (e.g. RGSW-based schemes).
type SecretKey struct {
	Value ringqp.Poly
}

// NewSecretKey generates a new [SecretKey] with zero values.
func NewSecretKey(params ParameterProvider) *SecretKey {
	p := params.GetRLWEParameters()
	return &SecretKey{Value: p.RingQP().AtLevel(p.MaxLevelQ(), p.MaxLevelP()).NewPoly()}
}

func (sk *SecretKey) isEncryptionKey() {}

// LevelQ returns the level of the modulus Q of the target.
func (sk SecretKey) LevelQ() int {
	return sk.Value.LevelQ()
}

// LevelP returns the level of the modulus P of the target.
func (sk SecretKey) LevelP() int {
	return sk.Value.LevelP()
}

// CopyNew creates a deep copy of the receiver secret key and returns it.
func (sk SecretKey) CopyNew() *SecretKey {
	return &SecretKey{Value: *sk.Value.CopyNew()}
}

// Equal performs a deep equal.
func (sk SecretKey) Equal(other *SecretKey) bool {
	return sk.Value.Equal(&other.Value)
}

// BinarySize returns the size in bytes of the object when encoded using [SecretKey.WriteTo].
func (sk SecretKey) BinarySize() int {
	return sk.Value.BinarySize()
}

// WriteTo writes the object on an io.Writer.
func (sk SecretKey) WriteTo(w io.Writer) (n int64, err error) {
	return sk.Value.WriteTo(w)
}

// ReadFrom reads on the object from an io.Reader.
func (sk *SecretKey) ReadFrom(r io.Reader) (n int64, err error) {
	return sk.Value.ReadFrom(r)
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (sk SecretKey) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(sk.BinarySize())
	_, err = sk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [SecretKey.MarshalBinary] or [SecretKey.WriteTo] on the object.
func (sk *SecretKey) UnmarshalBinary(data []byte) (err error) {
	_, err = sk.ReadFrom(buffer.NewBuffer(data))
	return
}

// PublicKey is a type for generic RLWE public keys. A PublicKey is an
// encryption, under the corresponding SecretKey, of the zero plaintext.
type PublicKey struct {
	Value structs.Vector[ringqp.Poly]
}

// NewPublicKey returns a new [PublicKey] with zero values.
func NewPublicKey(params ParameterProvider) (pk *PublicKey) {
	p := params.GetRLWEParameters()
	return &PublicKey{Value: NewVectorQP(p, 2, p.MaxLevelQ(), p.MaxLevelP())}
}

func (pk *PublicKey) isEncryptionKey() {}

// LevelQ returns the level of the modulus Q of the target.
func (pk PublicKey) LevelQ() int {
	return pk.Value[0].LevelQ()
}

// LevelP returns the level of the modulus P of the target.
func (pk PublicKey) LevelP() int {
	return pk.Value[0].LevelP()
}

// CopyNew creates a deep copy of the receiver public key and returns it.
func (pk PublicKey) CopyNew() *PublicKey {
	v := make(structs.Vector[ringqp.Poly], len(pk.Value))
	for i := range v {
		v[i] = *pk.Value[i].CopyNew()
	}
	return &PublicKey{Value: v}
}

// Equal performs a deep equal.
func (pk PublicKey) Equal(other *PublicKey) bool {
	return pk.Value.Equal(other.Value)
}

// BinarySize returns the size in bytes of the object when encoded using [PublicKey.WriteTo].
func (pk PublicKey) BinarySize() int {
	return pk.Value.BinarySize()
}

// WriteTo writes the object on an io.Writer.
func (pk PublicKey) WriteTo(w io.Writer) (n int64, err error) {
	return pk.Value.WriteTo(w)
}

// ReadFrom reads on the object from an io.Reader.
func (pk *PublicKey) ReadFrom(r io.Reader) (n int64, err error) {
	return pk.Value.ReadFrom(r)
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (pk PublicKey) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(pk.BinarySize())
	_, err = pk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [PublicKey.MarshalBinary] or [PublicKey.WriteTo] on the object.
func (pk *PublicKey) UnmarshalBinary(data []byte) (err error) {
	_, err = pk.ReadFrom(buffer.NewBuffer(data))
	return
}

// EvaluationKeyParameters is a struct used to parameterize the generation
// of an [EvaluationKey] (or any of the types built on top of it). A nil
// field is resolved to the Parameters' default value by
// [ResolveEvaluationKeyParameters].
type EvaluationKeyParameters struct {
	LevelQ               *int
	LevelP               *int
	BaseTwoDecomposition *int
}

// ResolveEvaluationKeyParameters extracts the effective (LevelQ, LevelP, BaseTwoDecomposition)
// to use for an EvaluationKey from a list of optional [EvaluationKeyParameters]. At most one
// [EvaluationKeyParameters] is accepted; missing fields default to the Parameters' maximal
// level (no base decomposition).
func ResolveEvaluationKeyParameters(params Parameters, evkParams []EvaluationKeyParameters) (levelQ, levelP, baseTwoDecomposition int) {

	var evkParam EvaluationKeyParameters
	switch len(evkParams) {
	case 0:
	case 1:
		evkParam = evkParams[0]
	default:
		panic(fmt.Errorf("ResolveEvaluationKeyParameters takes at most one EvaluationKeyParameters but %d were given", len(evkParams)))
	}

	if evkParam.LevelQ == nil {
		levelQ = params.MaxLevelQ()
	} else {
		levelQ = *evkParam.LevelQ
	}

	if evkParam.LevelP == nil {
		levelP = params.MaxLevelP()
	} else {
		levelP = *evkParam.LevelP
	}

	if evkParam.BaseTwoDecomposition == nil {
		baseTwoDecomposition = 0
	} else {
		baseTwoDecomposition = *evkParam.BaseTwoDecomposition
	}

	return
}

// EvaluationKey is a type for generic RLWE public evaluation keys. It stores
// a re-encryption of a secret-key under another secret-key, decomposed along
// the gadget vector associated to the [GadgetCiphertext].
type EvaluationKey struct {
	GadgetCiphertext
}

// NewEvaluationKey returns a new [EvaluationKey] with zero values.
func NewEvaluationKey(params ParameterProvider, evkParams ...EvaluationKeyParameters) *EvaluationKey {
	p := *params.GetRLWEParameters()
	levelQ, levelP, bpw2 := ResolveEvaluationKeyParameters(p, evkParams)
	return newEvaluationKey(p, levelQ, levelP, bpw2)
}

func newEvaluationKey(params ParameterProvider, levelQ, levelP, baseTwoDecomposition int) *EvaluationKey {
	return &EvaluationKey{GadgetCiphertext: *NewGadgetCiphertext(params, 1, levelQ, levelP, baseTwoDecomposition)}
}

// Equal performs a deep equal.
func (evk EvaluationKey) Equal(other *EvaluationKey) bool {
	return evk.GadgetCiphertext.Equal(&other.GadgetCiphertext)
}

// CopyNew creates a deep copy of the receiver evaluation key and returns it.
func (evk EvaluationKey) CopyNew() *EvaluationKey {
	return &EvaluationKey{GadgetCiphertext: *evk.GadgetCiphertext.CopyNew()}
}

// RelinearizationKey is a type for generic RLWE relinearization keys.
// It stores a re-encryption under a secret-key s of the value s^2.
type RelinearizationKey struct {
	EvaluationKey
}

// NewRelinearizationKey returns a new [RelinearizationKey] with zero values.
func NewRelinearizationKey(params ParameterProvider, evkParams ...EvaluationKeyParameters) *RelinearizationKey {
	p := *params.GetRLWEParameters()
	levelQ, levelP, bpw2 := ResolveEvaluationKeyParameters(p, evkParams)
	return &RelinearizationKey{EvaluationKey: *newEvaluationKey(p, levelQ, levelP, bpw2)}
}

// Equal performs a deep equal.
func (rlk RelinearizationKey) Equal(other *RelinearizationKey) bool {
	return rlk.EvaluationKey.Equal(&other.EvaluationKey)
}

// CopyNew creates a deep copy of the receiver relinearization key and returns it.
func (rlk RelinearizationKey) CopyNew() *RelinearizationKey {
	return &RelinearizationKey{EvaluationKey: *rlk.EvaluationKey.CopyNew()}
}

// GaloisKey is a type for generic RLWE public galois keys. It stores a
// re-encryption under the secret-key s of the value pi_k(s), where pi_k is
// the automorphism X^{i} -> X^{i*k}.
type GaloisKey struct {
	EvaluationKey
	NthRoot       uint64
	GaloisElement uint64
}

// NewGaloisKey returns a new [GaloisKey] with zero values.
func NewGaloisKey(params ParameterProvider, evkParams ...EvaluationKeyParameters) *GaloisKey {
	p := *params.GetRLWEParameters()
	levelQ, levelP, bpw2 := ResolveEvaluationKeyParameters(p, evkParams)
	return newGaloisKey(p, levelQ, levelP, bpw2)
}

func newGaloisKey(params ParameterProvider, levelQ, levelP, baseTwoDecomposition int) *GaloisKey {
	return &GaloisKey{
		EvaluationKey: *newEvaluationKey(params, levelQ, levelP, baseTwoDecomposition),
		NthRoot:       params.GetRLWEParameters().RingQ().NthRoot(),
	}
}

// Equal performs a deep equal.
func (gk GaloisKey) Equal(other *GaloisKey) bool {
	return gk.NthRoot == other.NthRoot && gk.GaloisElement == other.GaloisElement && gk.EvaluationKey.Equal(&other.EvaluationKey)
}

// CopyNew creates a deep copy of the receiver galois key and returns it.
func (gk GaloisKey) CopyNew() *GaloisKey {
	return &GaloisKey{
		EvaluationKey: *gk.EvaluationKey.CopyNew(),
		NthRoot:       gk.NthRoot,
		GaloisElement: gk.GaloisElement,
	}
}

// BinarySize returns the size in bytes of the object when encoded using [GaloisKey.WriteTo].
func (gk GaloisKey) BinarySize() int {
	return gk.EvaluationKey.BinarySize() + 16
}

// WriteTo writes the object on an io.Writer.
func (gk GaloisKey) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64

		if inc, err = gk.EvaluationKey.WriteTo(w); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteAsUint64(w, gk.NthRoot); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.WriteAsUint64(w, gk.GaloisElement); err != nil {
			return n + inc, err
		}
		n += inc

		return n, w.Flush()
	default:
		return gk.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader.
func (gk *GaloisKey) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var inc int64

		if inc, err = gk.EvaluationKey.ReadFrom(r); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.ReadAsUint64(r, &gk.NthRoot); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = buffer.ReadAsUint64(r, &gk.GaloisElement); err != nil {
			return n + inc, err
		}
		n += inc

		return n, nil
	default:
		return gk.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (gk GaloisKey) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(gk.BinarySize())
	_, err = gk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [GaloisKey.MarshalBinary] or [GaloisKey.WriteTo] on the object.
func (gk *GaloisKey) UnmarshalBinary(data []byte) (err error) {
	_, err = gk.ReadFrom(buffer.NewBuffer(data))
	return
}

// EvaluationKeySet is an interface implementing methods to load evaluation and
// automorphism keys.
type EvaluationKeySet interface {
	// GetGaloisKey retrieves the galois key for the automorphism X^{i} -> X^{i*galEl}.
	GetGaloisKey(galEl uint64) (evk *GaloisKey, err error)
	// GetGaloisKeysList returns the list of all galois elements for which a
	// [GaloisKey] is available.
	GetGaloisKeysList() (galEls []uint64)
	// GetRelinearizationKey retrieves the relinearization key.
	GetRelinearizationKey() (evk *RelinearizationKey, err error)
}

// MemEvaluationKeySet is a simple in-memory implementation of the [EvaluationKeySet] interface.
type MemEvaluationKeySet struct {
	RelinearizationKey *RelinearizationKey
	GaloisKeys         map[uint64]*GaloisKey
}

// NewMemEvaluationKeySet returns a new [MemEvaluationKeySet] with the given
// relinearization key and galois keys. A nil rlk is allowed, for parameter
// sets where relinearization is not needed.
func NewMemEvaluationKeySet(rlk *RelinearizationKey, gks ...*GaloisKey) (evk *MemEvaluationKeySet) {
	galoisKeys := make(map[uint64]*GaloisKey, len(gks))
	for _, gk := range gks {
		if gk != nil {
			galoisKeys[gk.GaloisElement] = gk
		}
	}
	return &MemEvaluationKeySet{RelinearizationKey: rlk, GaloisKeys: galoisKeys}
}

// GetGaloisKey retrieves the galois key for the automorphism X^{i} -> X^{i*galEl}.
func (evk MemEvaluationKeySet) GetGaloisKey(galEl uint64) (gk *GaloisKey, err error) {
	var ok bool
	if gk, ok = evk.GaloisKeys[galEl]; !ok {
		return nil, fmt.Errorf("GaloisKey[%d] is not available", galEl)
	}
	return
}

// GetGaloisKeysList returns the list of all galois elements for which a
// [GaloisKey] is available.
func (evk MemEvaluationKeySet) GetGaloisKeysList() (galEls []uint64) {
	if evk.GaloisKeys == nil {
		return []uint64{}
	}
	galEls = make([]uint64, 0, len(evk.GaloisKeys))
	for galEl := range evk.GaloisKeys {
		galEls = append(galEls, galEl)
	}
	return
}

// GetRelinearizationKey retrieves the relinearization key.
func (evk MemEvaluationKeySet) GetRelinearizationKey() (rk *RelinearizationKey, err error) {
	if evk.RelinearizationKey == nil {
		return nil, fmt.Errorf("RelinearizationKey is not available")
	}
	return evk.RelinearizationKey, nil
}

// BinarySize returns the size in bytes of the object when encoded using [MemEvaluationKeySet.WriteTo].
func (evk MemEvaluationKeySet) BinarySize() (size int) {
	size = 1
	if evk.RelinearizationKey != nil {
		size += evk.RelinearizationKey.BinarySize()
	}
	size += 8
	for _, gk := range evk.GaloisKeys {
		size += 8 + gk.BinarySize()
	}
	return
}

// WriteTo writes the object on an io.Writer.
func (evk MemEvaluationKeySet) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64

		hasRlk := 0
		if evk.RelinearizationKey != nil {
			hasRlk = 1
		}

		if inc, err = buffer.WriteAsUint8(w, hasRlk); err != nil {
			return n + inc, err
		}
		n += inc

		if hasRlk == 1 {
			if inc, err = evk.RelinearizationKey.WriteTo(w); err != nil {
				return n + inc, err
			}
			n += inc
		}

		galEls := evk.GetGaloisKeysList()

		if inc, err = buffer.WriteAsUint64(w, uint64(len(galEls))); err != nil {
			return n + inc, err
		}
		n += inc

		for _, galEl := range galEls {
			if inc, err = buffer.WriteAsUint64(w, galEl); err != nil {
				return n + inc, err
			}
			n += inc

			if inc, err = evk.GaloisKeys[galEl].WriteTo(w); err != nil {
				return n + inc, err
			}
			n += inc
		}

		return n, w.Flush()
	default:
		return evk.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader.
func (evk *MemEvaluationKeySet) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var inc int64

		var hasRlk int
		if inc, err = buffer.ReadAsUint8(r, &hasRlk); err != nil {
			return n + inc, err
		}
		n += inc

		if hasRlk == 1 {
			evk.RelinearizationKey = new(RelinearizationKey)
			if inc, err = evk.RelinearizationKey.ReadFrom(r); err != nil {
				return n + inc, err
			}
			n += inc
		} else {
			evk.RelinearizationKey = nil
		}

		var nbGaloisKeys uint64
		if inc, err = buffer.ReadAsUint64(r, &nbGaloisKeys); err != nil {
			return n + inc, err
		}
		n += inc

		evk.GaloisKeys = make(map[uint64]*GaloisKey, nbGaloisKeys)

		for i := uint64(0); i < nbGaloisKeys; i++ {
			var galEl uint64
			if inc, err = buffer.ReadAsUint64(r, &galEl); err != nil {
				return n + inc, err
			}
			n += inc

			gk := new(GaloisKey)
			if inc, err = gk.ReadFrom(r); err != nil {
				return n + inc, err
			}
			n += inc

			evk.GaloisKeys[galEl] = gk
		}

		return n, nil
	default:
		return evk.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (evk MemEvaluationKeySet) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(evk.BinarySize())
	_, err = evk.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [MemEvaluationKeySet.MarshalBinary] or [MemEvaluationKeySet.WriteTo] on the object.
func (evk *MemEvaluationKeySet) UnmarshalBinary(data []byte) (err error) {
	_, err = evk.ReadFrom(buffer.NewBuffer(data))
	return
}

// Plaintext is a generic type for RLWE plaintexts, a single polynomial in RingQ
// together with its [MetaData].
type Plaintext struct {
	*MetaData
	Value ring.Poly
}

// NewPlaintext returns a new [Plaintext] with zero values and an associated
// MetaData set to the Parameters default value. The optional level defaults
// to the Parameters' maximum level.
func NewPlaintext(params ParameterProvider, level ...int) (pt *Plaintext) {
	p := params.GetRLWEParameters()

	lvl := p.MaxLevel()
	if len(level) == 1 {
		lvl = level[0]
	} else if len(level) > 1 {
		panic(fmt.Errorf("NewPlaintext takes at most one level but %d were given", len(level)))
	}

	return &Plaintext{
		MetaData: &MetaData{
			CiphertextMetaData: CiphertextMetaData{
				IsNTT:        p.NTTFlag(),
				IsMontgomery: p.NTTFlag(),
			},
		},
		Value: p.RingQ().AtLevel(lvl).NewPoly(),
	}
}

// NewPlaintextAtLevelFromPoly constructs a new [Plaintext] at a specific level where
// the message is set to the passed poly. No checks are performed on poly and
// the returned [Plaintext] will share its backing array of coefficients.
// The returned [Plaintext]'s [MetaData] is allocated but empty.
func NewPlaintextAtLevelFromPoly(level int, poly ring.Poly) (*Plaintext, error) {
	if len(poly.Coeffs) < level+1 {
		return nil, fmt.Errorf("cannot NewPlaintextAtLevelFromPoly: provided poly level is too small")
	}

	Value := poly
	Value.Coeffs = poly.Coeffs[:level+1]

	return &Plaintext{MetaData: &MetaData{}, Value: Value}, nil
}

// Level returns the level of the target Plaintext.
func (pt Plaintext) Level() int {
	return pt.Value.Level()
}

// Degree always returns 0 for a [Plaintext].
func (pt Plaintext) Degree() int {
	return 0
}

// Resize resizes the level of the target Plaintext to the given level; degree is ignored and
// kept only for parity with the [Element] API.
func (pt *Plaintext) Resize(degree, level int) {
	pt.Value.Resize(level)
}

// CopyNew creates a deep copy of the receiver Plaintext and returns it.
func (pt Plaintext) CopyNew() *Plaintext {
	return &Plaintext{
		MetaData: pt.MetaData.CopyNew(),
		Value:    *pt.Value.CopyNew(),
	}
}

// Copy copies the input Plaintext and its metadata on the receiver.
func (pt *Plaintext) Copy(ptCopy *Plaintext) {
	pt.Value.Copy(ptCopy.Value)
	*pt.MetaData = *ptCopy.MetaData
}

// Equal performs a deep equal.
func (pt Plaintext) Equal(other *Plaintext) bool {
	return pt.MetaData.Equal(other.MetaData) && pt.Value.Equal(&other.Value)
}

// BinarySize returns the size in bytes of the object when encoded using [Plaintext.WriteTo].
func (pt Plaintext) BinarySize() int {
	return pt.MetaData.BinarySize() + pt.Value.BinarySize()
}

// WriteTo writes the object on an io.Writer.
func (pt Plaintext) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:
		var inc int64

		if inc, err = pt.MetaData.WriteTo(w); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = pt.Value.WriteTo(w); err != nil {
			return n + inc, err
		}
		n += inc

		return n, w.Flush()
	default:
		return pt.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader.
func (pt *Plaintext) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:
		var inc int64

		if pt.MetaData == nil {
			pt.MetaData = &MetaData{}
		}

		if inc, err = pt.MetaData.ReadFrom(r); err != nil {
			return n + inc, err
		}
		n += inc

		if inc, err = pt.Value.ReadFrom(r); err != nil {
			return n + inc, err
		}
		n += inc

		return n, nil
	default:
		return pt.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (pt Plaintext) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(pt.BinarySize())
	_, err = pt.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by [Plaintext.MarshalBinary] or [Plaintext.WriteTo] on the object.
func (pt *Plaintext) UnmarshalBinary(data []byte) (err error) {
	_, err = pt.ReadFrom(buffer.NewBuffer(data))
	return
}
