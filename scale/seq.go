package scale

import (
	"github.com/wippyai/polkawasm/errors"
)

// PutSeq writes a compact length followed by every item.
func PutSeq[T any](e *Encoder, items []T, put func(*Encoder, T)) {
	e.PutCompact(uint64(len(items)))
	for _, item := range items {
		put(e, item)
	}
}

// Seq reads a compact length and exactly that many items.
// An empty sequence decodes as nil.
func Seq[T any](d *Decoder, get func(*Decoder) (T, error)) ([]T, error) {
	n, err := d.Length()
	if err != nil || n == 0 {
		return nil, err
	}
	items := make([]T, 0, n)
	for i := 0; i < n; i++ {
		item, err := get(d)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// PutBytesSeq writes a sequence of byte sequences.
func PutBytesSeq(e *Encoder, items [][]byte) {
	PutSeq(e, items, (*Encoder).PutBytes)
}

// BytesSeq reads a sequence of byte sequences.
func BytesSeq(d *Decoder) ([][]byte, error) {
	return Seq(d, (*Decoder).Bytes)
}

// Pair is one key/value entry of an ordered mapping.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// PutMap writes a compact count followed by key/value pairs in the given order.
func PutMap[K comparable, V any](e *Encoder, pairs []Pair[K, V], putKey func(*Encoder, K), putValue func(*Encoder, V)) {
	e.PutCompact(uint64(len(pairs)))
	for _, p := range pairs {
		putKey(e, p.Key)
		putValue(e, p.Value)
	}
}

// Map reads an ordered mapping, applying the decoder's duplicate key policy.
// keyBytes renders a key for error reporting.
func Map[K comparable, V any](
	d *Decoder,
	typ string,
	getKey func(*Decoder) (K, error),
	getValue func(*Decoder) (V, error),
	keyBytes func(K) []byte,
) ([]Pair[K, V], error) {
	n, err := d.Length()
	if err != nil || n == 0 {
		return nil, err
	}

	pairs := make([]Pair[K, V], 0, n)
	index := make(map[K]int, n)
	for i := 0; i < n; i++ {
		k, err := getKey(d)
		if err != nil {
			return nil, err
		}
		v, err := getValue(d)
		if err != nil {
			return nil, err
		}

		if at, dup := index[k]; dup {
			if d.opts.DuplicateKeys == RejectDuplicates {
				return nil, errors.Wrap(errors.PhaseDecode, errors.KindDuplicateKey,
					&errors.DuplicateKeyError{Type: typ, Key: keyBytes(k)}, "decode "+typ)
			}
			pairs[at].Value = v
			continue
		}
		index[k] = len(pairs)
		pairs = append(pairs, Pair[K, V]{Key: k, Value: v})
	}
	return pairs, nil
}
