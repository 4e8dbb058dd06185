package types

import (
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
)

// Extrinsic payload versions.
const (
	ExtrinsicVersion uint8 = 4
	signedBit        uint8 = 0x80
)

// Extrinsic is an opaque extrinsic payload, encoded as a byte sequence.
type Extrinsic []byte

func (x *Extrinsic) EncodeTo(e *scale.Encoder) {
	e.PutBytes(*x)
}

func (x *Extrinsic) DecodeFrom(d *scale.Decoder) error {
	b, err := d.Bytes()
	if err != nil {
		return err
	}
	*x = b
	return nil
}

// PutExtrinsics writes a sequence of extrinsics.
func PutExtrinsics(e *scale.Encoder, xs []Extrinsic) {
	scale.PutSeq(e, xs, func(e *scale.Encoder, x Extrinsic) { e.PutBytes(x) })
}

// DecodeExtrinsics reads a sequence of extrinsics.
func DecodeExtrinsics(d *scale.Decoder) ([]Extrinsic, error) {
	return scale.Seq(d, func(d *scale.Decoder) (Extrinsic, error) {
		b, err := d.Bytes()
		return Extrinsic(b), err
	})
}

// Extrinsics is a sequence of extrinsics, the result of inherent_extrinsics.
type Extrinsics []Extrinsic

func (xs *Extrinsics) EncodeTo(e *scale.Encoder) {
	PutExtrinsics(e, *xs)
}

func (xs *Extrinsics) DecodeFrom(d *scale.Decoder) error {
	items, err := DecodeExtrinsics(d)
	if err != nil {
		return err
	}
	*xs = items
	return nil
}

// Call selects a dispatchable function by module and function index.
// Args holds the call's encoded arguments.
type Call struct {
	Module   uint8
	Function uint8
	Args     []byte
}

// NewUnsigned builds an unsigned extrinsic payload for call.
func NewUnsigned(call Call) Extrinsic {
	x := make(Extrinsic, 0, 3+len(call.Args))
	x = append(x, ExtrinsicVersion, call.Module, call.Function)
	return append(x, call.Args...)
}

// DecodeCall parses the payload of an unsigned extrinsic.
func (x Extrinsic) DecodeCall() (Call, error) {
	d := scale.NewDecoder(x)
	version, err := d.U8()
	if err != nil {
		return Call{}, err
	}
	if version&signedBit != 0 {
		return Call{}, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Type("Extrinsic").
			Detail("signed extrinsics are not supported").
			Build()
	}
	if version != ExtrinsicVersion {
		return Call{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Type("Extrinsic").
			Value(version).
			Detail("unsupported extrinsic version %d", version).
			Build()
	}

	var c Call
	if c.Module, err = d.U8(); err != nil {
		return Call{}, err
	}
	if c.Function, err = d.U8(); err != nil {
		return Call{}, err
	}
	if d.Remaining() > 0 {
		c.Args = make([]byte, d.Remaining())
		copy(c.Args, x[d.Offset():])
	}
	return c, nil
}
