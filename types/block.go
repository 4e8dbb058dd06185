package types

import (
	"github.com/wippyai/polkawasm/scale"
)

// Block is a header with its extrinsics in execution order.
type Block struct {
	Header     Header
	Extrinsics []Extrinsic
}

func (b *Block) EncodeTo(e *scale.Encoder) {
	b.Header.EncodeTo(e)
	PutExtrinsics(e, b.Extrinsics)
}

func (b *Block) DecodeFrom(d *scale.Decoder) error {
	if err := b.Header.DecodeFrom(d); err != nil {
		return err
	}
	var err error
	b.Extrinsics, err = DecodeExtrinsics(d)
	return err
}
