package types

import (
	"encoding/hex"

	"github.com/wippyai/polkawasm/hashing"
	"github.com/wippyai/polkawasm/scale"
)

// Hash is a 32-byte digest.
type Hash [32]byte

// Blake2bHash is a Hash produced by blake2b-256.
type Blake2bHash = Hash

// HashOf returns the blake2b-256 hash of data.
func HashOf(data ...[]byte) Hash {
	return Hash(hashing.Blake2b256(data...))
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h *Hash) EncodeTo(e *scale.Encoder) {
	e.PutFixed(h[:])
}

func (h *Hash) DecodeFrom(d *scale.Decoder) error {
	return d.Fixed(h[:])
}
