package types

import (
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
)

// ConsensusEngineID identifies the consensus engine a digest item belongs to.
type ConsensusEngineID [4]byte

// DigestItemKind is the encoded discriminant of a digest item.
type DigestItemKind uint8

const (
	DigestOther                     DigestItemKind = 0
	DigestConsensus                 DigestItemKind = 4
	DigestSeal                      DigestItemKind = 5
	DigestPreRuntime                DigestItemKind = 6
	DigestRuntimeEnvironmentUpdated DigestItemKind = 8
)

func (k DigestItemKind) String() string {
	switch k {
	case DigestOther:
		return "Other"
	case DigestConsensus:
		return "Consensus"
	case DigestSeal:
		return "Seal"
	case DigestPreRuntime:
		return "PreRuntime"
	case DigestRuntimeEnvironmentUpdated:
		return "RuntimeEnvironmentUpdated"
	default:
		return "Unknown"
	}
}

// hasEngine reports whether items of this kind carry an engine id.
func (k DigestItemKind) hasEngine() bool {
	return k == DigestConsensus || k == DigestSeal || k == DigestPreRuntime
}

// DigestItem is one header digest entry. Engine is set for Consensus, Seal
// and PreRuntime items; RuntimeEnvironmentUpdated carries no data.
type DigestItem struct {
	Kind   DigestItemKind
	Engine ConsensusEngineID
	Data   []byte
}

func (it *DigestItem) EncodeTo(e *scale.Encoder) {
	e.PutU8(uint8(it.Kind))
	switch {
	case it.Kind.hasEngine():
		e.PutFixed(it.Engine[:])
		e.PutBytes(it.Data)
	case it.Kind == DigestOther:
		e.PutBytes(it.Data)
	}
}

func (it *DigestItem) DecodeFrom(d *scale.Decoder) error {
	tag, err := d.U8()
	if err != nil {
		return err
	}
	it.Kind = DigestItemKind(tag)
	switch {
	case it.Kind.hasEngine():
		if err := d.Fixed(it.Engine[:]); err != nil {
			return err
		}
		it.Data, err = d.Bytes()
		return err
	case it.Kind == DigestOther:
		it.Data, err = d.Bytes()
		return err
	case it.Kind == DigestRuntimeEnvironmentUpdated:
		return nil
	default:
		return errors.InvalidDiscriminant(errors.PhaseDecode, "DigestItem", tag)
	}
}

// Digest is the ordered list of digest items of a header.
type Digest struct {
	Items []DigestItem
}

func (dg *Digest) EncodeTo(e *scale.Encoder) {
	scale.PutSeq(e, dg.Items, func(e *scale.Encoder, it DigestItem) { it.EncodeTo(e) })
}

func (dg *Digest) DecodeFrom(d *scale.Decoder) error {
	items, err := scale.Seq(d, func(d *scale.Decoder) (DigestItem, error) {
		var it DigestItem
		err := it.DecodeFrom(d)
		return it, err
	})
	if err != nil {
		return err
	}
	dg.Items = items
	return nil
}

// PreRuntime returns the pre-runtime items in order.
func (dg *Digest) PreRuntime() []DigestItem {
	var out []DigestItem
	for _, it := range dg.Items {
		if it.Kind == DigestPreRuntime {
			out = append(out, it)
		}
	}
	return out
}
