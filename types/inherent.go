package types

import (
	"fmt"

	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
)

// InherentIdentifier names one inherent data entry.
type InherentIdentifier [8]byte

// TimestampInherent identifies the block timestamp in milliseconds.
var TimestampInherent = InherentIdentifier{'t', 'i', 'm', 's', 't', 'a', 'p', '0'}

func (id InherentIdentifier) String() string {
	return string(id[:])
}

// InherentData is an ordered mapping from identifier to encoded value.
// Keys are unique; iteration follows insertion order.
// The zero value is an empty mapping.
type InherentData struct {
	pairs []scale.Pair[InherentIdentifier, []byte]
}

// Put adds an entry. It fails if id is already present.
func (in *InherentData) Put(id InherentIdentifier, value []byte) error {
	if _, ok := in.Get(id); ok {
		return errors.New(errors.PhaseRuntime, errors.KindDuplicateKey).
			Type("InherentData").
			Detail("inherent %q already present", id.String()).
			Build()
	}
	in.pairs = append(in.pairs, scale.Pair[InherentIdentifier, []byte]{Key: id, Value: value})
	return nil
}

// Replace sets the value for id, adding it if absent.
func (in *InherentData) Replace(id InherentIdentifier, value []byte) {
	for i := range in.pairs {
		if in.pairs[i].Key == id {
			in.pairs[i].Value = value
			return
		}
	}
	in.pairs = append(in.pairs, scale.Pair[InherentIdentifier, []byte]{Key: id, Value: value})
}

// Get returns the encoded value for id.
func (in *InherentData) Get(id InherentIdentifier) ([]byte, bool) {
	for _, p := range in.pairs {
		if p.Key == id {
			return p.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (in *InherentData) Len() int {
	return len(in.pairs)
}

// Keys returns identifiers in insertion order.
func (in *InherentData) Keys() []InherentIdentifier {
	keys := make([]InherentIdentifier, len(in.pairs))
	for i, p := range in.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Clear removes every entry.
func (in *InherentData) Clear() {
	in.pairs = nil
}

func (in *InherentData) EncodeTo(e *scale.Encoder) {
	scale.PutMap(e, in.pairs, putIdentifier, (*scale.Encoder).PutBytes)
}

func (in *InherentData) DecodeFrom(d *scale.Decoder) error {
	pairs, err := scale.Map(d, "InherentData", decodeIdentifier, (*scale.Decoder).Bytes,
		func(id InherentIdentifier) []byte { return id[:] })
	if err != nil {
		return err
	}
	in.pairs = pairs
	return nil
}

func (in *InherentData) String() string {
	return fmt.Sprintf("InherentData%v", in.Keys())
}

func putIdentifier(e *scale.Encoder, id InherentIdentifier) {
	e.PutFixed(id[:])
}

func decodeIdentifier(d *scale.Decoder) (InherentIdentifier, error) {
	var id InherentIdentifier
	err := d.Fixed(id[:])
	return id, err
}

// TimestampData returns the timestamp inherent in milliseconds.
func (in *InherentData) TimestampData() (uint64, error) {
	raw, ok := in.Get(TimestampInherent)
	if !ok {
		return 0, errors.NotFound(errors.PhaseRuntime, "inherent", TimestampInherent.String())
	}
	d := scale.NewDecoder(raw)
	ts, err := d.U64()
	if err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "timestamp inherent")
	}
	if err := d.Finish(); err != nil {
		return 0, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "timestamp inherent")
	}
	return ts, nil
}

// PutTimestamp adds the timestamp inherent in milliseconds.
func (in *InherentData) PutTimestamp(ms uint64) error {
	var e scale.Encoder
	e.PutU64(ms)
	return in.Put(TimestampInherent, e.Bytes())
}
