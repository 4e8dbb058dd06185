package types

import (
	"github.com/wippyai/polkawasm/scale"
)

// Header is a block header. Number is encoded as a compact integer.
type Header struct {
	ParentHash     Hash
	Number         uint64
	StateRoot      Hash
	ExtrinsicsRoot Hash
	Digest         Digest
}

func (h *Header) EncodeTo(e *scale.Encoder) {
	h.ParentHash.EncodeTo(e)
	e.PutCompact(h.Number)
	h.StateRoot.EncodeTo(e)
	h.ExtrinsicsRoot.EncodeTo(e)
	h.Digest.EncodeTo(e)
}

func (h *Header) DecodeFrom(d *scale.Decoder) error {
	if err := h.ParentHash.DecodeFrom(d); err != nil {
		return err
	}
	var err error
	if h.Number, err = d.Compact(); err != nil {
		return err
	}
	if err := h.StateRoot.DecodeFrom(d); err != nil {
		return err
	}
	if err := h.ExtrinsicsRoot.DecodeFrom(d); err != nil {
		return err
	}
	return h.Digest.DecodeFrom(d)
}

// Hash returns the blake2b-256 hash of the encoded header.
func (h *Header) Hash() Hash {
	return HashOf(scale.Marshal(h))
}
