package scale

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/wippyai/polkawasm/errors"
)

// Encodable is implemented by types with a SCALE encoding.
type Encodable interface {
	EncodeTo(e *Encoder)
}

// Encoder appends SCALE-encoded values to an internal buffer.
// The zero value is ready to use.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Marshal encodes v into a new byte slice.
func Marshal(v Encodable) []byte {
	var e Encoder
	v.EncodeTo(&e)
	return e.Bytes()
}

// Bytes returns the encoded bytes. The slice is valid until the next write.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Reset discards all encoded bytes.
func (e *Encoder) Reset() {
	e.buf.Reset()
}

func (e *Encoder) PutU8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) PutU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) PutU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) PutU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) PutI32(v int32) {
	e.PutU32(uint32(v))
}

func (e *Encoder) PutI64(v int64) {
	e.PutU64(uint64(v))
}

func (e *Encoder) PutBool(v bool) {
	if v {
		e.buf.WriteByte(1)
		return
	}
	e.buf.WriteByte(0)
}

// PutCompact writes v in the shortest compact form.
func (e *Encoder) PutCompact(v uint64) {
	switch {
	case v < 1<<6:
		e.buf.WriteByte(byte(v) << 2)
	case v < 1<<14:
		e.PutU16(uint16(v)<<2 | 0b01)
	case v < 1<<30:
		e.PutU32(uint32(v)<<2 | 0b10)
	default:
		n := 4
		for n < 8 && v>>(8*n) != 0 {
			n++
		}
		e.buf.WriteByte(byte(n-4)<<2 | 0b11)
		for i := 0; i < n; i++ {
			e.buf.WriteByte(byte(v >> (8 * i)))
		}
	}
}

// PutCompactBig writes a non-negative integer of up to 536 bits in compact form.
func (e *Encoder) PutCompactBig(v *big.Int) error {
	if v.Sign() < 0 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Type("Compact").
			Detail("negative value %s", v.String()).
			Build()
	}
	if v.IsUint64() {
		e.PutCompact(v.Uint64())
		return nil
	}

	be := v.Bytes()
	if len(be) > maxBigBytes {
		return errors.Overflow(errors.PhaseEncode, v.String(), "Compact")
	}
	e.buf.WriteByte(byte(len(be)-4)<<2 | 0b11)
	for i := len(be) - 1; i >= 0; i-- {
		e.buf.WriteByte(be[i])
	}
	return nil
}

// PutBytes writes a length-prefixed byte sequence.
func (e *Encoder) PutBytes(b []byte) {
	e.PutCompact(uint64(len(b)))
	e.buf.Write(b)
}

// PutString writes a length-prefixed UTF-8 string.
func (e *Encoder) PutString(s string) {
	e.PutCompact(uint64(len(s)))
	e.buf.WriteString(s)
}

// PutFixed writes raw bytes with no prefix, for fixed-size arrays.
func (e *Encoder) PutFixed(b []byte) {
	e.buf.Write(b)
}

// PutOption writes the option tag. The caller writes the value when present.
func (e *Encoder) PutOption(present bool) {
	e.PutBool(present)
}

// PutResult writes the result tag: 0 for ok, 1 for error.
func (e *Encoder) PutResult(ok bool) {
	if ok {
		e.buf.WriteByte(0)
		return
	}
	e.buf.WriteByte(1)
}

// Put writes an Encodable value.
func (e *Encoder) Put(v Encodable) {
	v.EncodeTo(e)
}
