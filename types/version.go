package types

import (
	"github.com/wippyai/polkawasm/hashing"
	"github.com/wippyai/polkawasm/scale"
)

// ApiID is the blake2b-64 hash of a runtime API name.
type ApiID [8]byte

// ApiItem declares that a runtime implements an API at a version.
type ApiItem struct {
	ID      ApiID
	Version uint32
}

// NewApiItem returns the item for the named API.
func NewApiItem(name string, version uint32) ApiItem {
	return ApiItem{ID: ApiID(hashing.Blake2b64([]byte(name))), Version: version}
}

// VersionData describes a runtime build. StateVersion is a single byte on
// the wire.
type VersionData struct {
	SpecName           string
	ImplName           string
	AuthoringVersion   uint32
	SpecVersion        uint32
	ImplVersion        uint32
	Apis               []ApiItem
	TransactionVersion uint32
	StateVersion       uint8 // one byte on the wire, not a u32
}

// ApiVersion returns the declared version of an API.
func (v *VersionData) ApiVersion(id ApiID) (uint32, bool) {
	for _, api := range v.Apis {
		if api.ID == id {
			return api.Version, true
		}
	}
	return 0, false
}

func (v *VersionData) EncodeTo(e *scale.Encoder) {
	e.PutString(v.SpecName)
	e.PutString(v.ImplName)
	e.PutU32(v.AuthoringVersion)
	e.PutU32(v.SpecVersion)
	e.PutU32(v.ImplVersion)
	pairs := make([]scale.Pair[ApiID, uint32], len(v.Apis))
	for i, api := range v.Apis {
		pairs[i] = scale.Pair[ApiID, uint32]{Key: api.ID, Value: api.Version}
	}
	scale.PutMap(e, pairs, func(e *scale.Encoder, id ApiID) { e.PutFixed(id[:]) }, (*scale.Encoder).PutU32)
	e.PutU32(v.TransactionVersion)
	e.PutU8(v.StateVersion)
}

func (v *VersionData) DecodeFrom(d *scale.Decoder) error {
	var err error
	if v.SpecName, err = d.String(); err != nil {
		return err
	}
	if v.ImplName, err = d.String(); err != nil {
		return err
	}
	if v.AuthoringVersion, err = d.U32(); err != nil {
		return err
	}
	if v.SpecVersion, err = d.U32(); err != nil {
		return err
	}
	if v.ImplVersion, err = d.U32(); err != nil {
		return err
	}

	pairs, err := scale.Map(d, "ApiItems",
		func(d *scale.Decoder) (ApiID, error) {
			var id ApiID
			err := d.Fixed(id[:])
			return id, err
		},
		(*scale.Decoder).U32,
		func(id ApiID) []byte { return id[:] },
	)
	if err != nil {
		return err
	}
	v.Apis = nil
	for _, p := range pairs {
		v.Apis = append(v.Apis, ApiItem{ID: p.Key, Version: p.Value})
	}

	if v.TransactionVersion, err = d.U32(); err != nil {
		return err
	}
	v.StateVersion, err = d.U8()
	return err
}
