package storage

import (
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/types"
)

// KV is one storage entry.
type KV struct {
	Key   []byte
	Value []byte
}

// StateRoot commits to pairs, which must be sorted by key.
func StateRoot(pairs []KV) types.Hash {
	var e scale.Encoder
	scale.PutSeq(&e, pairs, func(e *scale.Encoder, kv KV) {
		e.PutBytes(kv.Key)
		e.PutBytes(kv.Value)
	})
	return types.HashOf(e.Bytes())
}

// OrderedRoot commits to items in order.
func OrderedRoot(items [][]byte) types.Hash {
	var e scale.Encoder
	scale.PutBytesSeq(&e, items)
	return types.HashOf(e.Bytes())
}
