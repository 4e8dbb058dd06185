package scale

import (
	"encoding/binary"
	"math/big"
	"unicode/utf8"

	"github.com/wippyai/polkawasm/errors"
)

// Decodable is implemented by types with a SCALE decoding.
type Decodable interface {
	DecodeFrom(d *Decoder) error
}

// Largest big-integer compact payload: six bits of n-4 allow 67 bytes.
const maxBigBytes = 67

// Decoder reads SCALE-encoded values from a byte slice.
type Decoder struct {
	data []byte
	pos  int
	opts Options
}

// NewDecoder returns a decoder with DefaultOptions.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data, opts: DefaultOptions()}
}

// NewDecoderWithOptions returns a decoder using opts.
func NewDecoderWithOptions(data []byte, opts Options) *Decoder {
	return &Decoder{data: data, opts: opts}
}

// Unmarshal decodes data into v with DefaultOptions. All bytes must be consumed.
func Unmarshal(data []byte, v Decodable) error {
	return UnmarshalWithOptions(data, v, DefaultOptions())
}

// UnmarshalWithOptions decodes data into v. All bytes must be consumed.
func UnmarshalWithOptions(data []byte, v Decodable, opts Options) error {
	d := NewDecoderWithOptions(data, opts)
	if err := v.DecodeFrom(d); err != nil {
		return err
	}
	return d.Finish()
}

// Options returns the decoding options.
func (d *Decoder) Options() Options {
	return d.opts
}

// Offset returns the number of bytes consumed.
func (d *Decoder) Offset() int {
	return d.pos
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Finish reports an error when unread bytes remain.
func (d *Decoder) Finish() error {
	if rem := d.Remaining(); rem != 0 {
		return errors.New(errors.PhaseDecode, errors.KindTrailingBytes).
			Detail("%d unread bytes at offset %d", rem, d.pos).
			Build()
	}
	return nil
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, errors.OutOfBounds(errors.PhaseDecode, nil, d.pos, n, len(d.data))
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) I32() (int32, error) {
	v, err := d.U32()
	return int32(v), err
}

func (d *Decoder) I64() (int64, error) {
	v, err := d.U64()
	return int64(v), err
}

// Bool reads a single byte that must be 0 or 1.
func (d *Decoder) Bool() (bool, error) {
	b, err := d.U8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Type("bool").
			Detail("invalid bool byte 0x%02x at offset %d", b, d.pos-1).
			Build()
	}
}

// Compact reads a compact integer that fits in 64 bits.
func (d *Decoder) Compact() (uint64, error) {
	start := d.pos
	first, err := d.U8()
	if err != nil {
		return 0, err
	}

	switch first & 0b11 {
	case 0b00:
		return uint64(first >> 2), nil
	case 0b01:
		d.pos = start
		raw, err := d.U16()
		if err != nil {
			return 0, err
		}
		v := uint64(raw >> 2)
		if v < 1<<6 {
			if err := d.nonCanonical(start, v); err != nil {
				return 0, err
			}
		}
		return v, nil
	case 0b10:
		d.pos = start
		raw, err := d.U32()
		if err != nil {
			return 0, err
		}
		v := uint64(raw >> 2)
		if v < 1<<14 {
			if err := d.nonCanonical(start, v); err != nil {
				return 0, err
			}
		}
		return v, nil
	}

	n := int(first>>2) + 4
	if n > 8 {
		return 0, errors.New(errors.PhaseDecode, errors.KindOverflow).
			Type("Compact<u64>").
			Detail("big-integer compact of %d bytes at offset %d", n, start).
			Build()
	}
	b, err := d.take(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	if v < 1<<30 || b[n-1] == 0 {
		if err := d.nonCanonical(start, v); err != nil {
			return 0, err
		}
	}
	return v, nil
}

// CompactBig reads a compact integer of any supported width.
func (d *Decoder) CompactBig() (*big.Int, error) {
	start := d.pos
	first, err := d.U8()
	if err != nil {
		return nil, err
	}
	if first&0b11 != 0b11 {
		d.pos = start
		v, err := d.Compact()
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(v), nil
	}

	n := int(first>>2) + 4
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	be := make([]byte, n)
	for i := range b {
		be[n-1-i] = b[i]
	}
	v := new(big.Int).SetBytes(be)
	if b[n-1] == 0 || (v.IsUint64() && v.Uint64() < 1<<30) {
		if err := d.nonCanonical(start, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (d *Decoder) nonCanonical(offset int, v any) error {
	if !d.opts.StrictCompact {
		return nil
	}
	return errors.New(errors.PhaseDecode, errors.KindNonCanonical).
		Type("Compact").
		Value(v).
		Detail("value %v at offset %d is not in its shortest form", v, offset).
		Build()
}

// Length reads a compact sequence length. A length larger than the remaining
// input fails before any allocation, assuming every element takes at least
// one byte.
func (d *Decoder) Length() (int, error) {
	start := d.pos
	n, err := d.Compact()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.Remaining()) {
		return 0, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Type("Vec").
			Value(n).
			Detail("length prefix %d at offset %d exceeds %d remaining bytes", n, start, d.Remaining()).
			Build()
	}
	return int(n), nil
}

// Bytes reads a length-prefixed byte sequence into a new slice.
// An empty sequence decodes as a non-nil empty slice.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.Length()
	if err != nil {
		return nil, err
	}
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// String reads a length-prefixed UTF-8 string.
func (d *Decoder) String() (string, error) {
	start := d.pos
	n, err := d.Length()
	if err != nil {
		return "", err
	}
	b, err := d.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Type("string").
			Detail("invalid UTF-8 sequence at offset %d", start).
			Build()
	}
	return string(b), nil
}

// Fixed fills dst with the next len(dst) bytes.
func (d *Decoder) Fixed(dst []byte) error {
	b, err := d.take(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// Option reads an option tag and reports whether a value follows.
func (d *Decoder) Option() (bool, error) {
	tag, err := d.U8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.InvalidDiscriminant(errors.PhaseDecode, "Option", tag)
	}
}

// Result reads a result tag and reports whether the ok variant follows.
func (d *Decoder) Result() (bool, error) {
	tag, err := d.U8()
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, errors.InvalidDiscriminant(errors.PhaseDecode, "Result", tag)
	}
}

// Get decodes a Decodable value.
func (d *Decoder) Get(v Decodable) error {
	return v.DecodeFrom(d)
}
