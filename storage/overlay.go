package storage

import (
	"sort"

	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/types"
)

// change is a pending write. An empty value is still a value.
type change struct {
	value   []byte
	deleted bool
}

// Overlay implements Storage over a Backend. Writes outside a transaction
// go straight to the backend; writes inside one are buffered per level.
type Overlay struct {
	backend Backend
	layers  []map[string]change
}

// NewOverlay returns an overlay over backend.
func NewOverlay(backend Backend) *Overlay {
	return &Overlay{backend: backend}
}

// Depth returns the number of open transactions.
func (o *Overlay) Depth() int {
	return len(o.layers)
}

func (o *Overlay) Get(key []byte) ([]byte, bool, error) {
	for i := len(o.layers) - 1; i >= 0; i-- {
		if c, ok := o.layers[i][string(key)]; ok {
			if c.deleted {
				return nil, false, nil
			}
			return c.value, true, nil
		}
	}
	v, err := o.backend.Get(key)
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

func (o *Overlay) Exists(key []byte) (bool, error) {
	_, ok, err := o.Get(key)
	return ok, err
}

func (o *Overlay) Set(key, value []byte) error {
	if len(key) == 0 {
		return errEmptyKey()
	}
	if value == nil {
		value = []byte{}
	}
	if len(o.layers) == 0 {
		return o.backend.Set(key, value)
	}
	v := make([]byte, len(value))
	copy(v, value)
	o.layers[len(o.layers)-1][string(key)] = change{value: v}
	return nil
}

func (o *Overlay) Clear(key []byte) error {
	if len(key) == 0 {
		return errEmptyKey()
	}
	if len(o.layers) == 0 {
		return o.backend.Delete(key)
	}
	o.layers[len(o.layers)-1][string(key)] = change{deleted: true}
	return nil
}

func (o *Overlay) StartTransaction() {
	o.layers = append(o.layers, make(map[string]change))
}

func (o *Overlay) CommitTransaction() error {
	top, err := o.pop()
	if err != nil {
		return err
	}
	if len(o.layers) > 0 {
		parent := o.layers[len(o.layers)-1]
		for k, c := range top {
			parent[k] = c
		}
		return nil
	}

	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c := top[k]
		if c.deleted {
			err = o.backend.Delete([]byte(k))
		} else {
			err = o.backend.Set([]byte(k), c.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *Overlay) RollbackTransaction() error {
	_, err := o.pop()
	return err
}

func (o *Overlay) pop() (map[string]change, error) {
	if len(o.layers) == 0 {
		return nil, errors.New(errors.PhaseStorage, errors.KindInvalidState).
			Detail("no open transaction").
			Build()
	}
	top := o.layers[len(o.layers)-1]
	o.layers = o.layers[:len(o.layers)-1]
	return top, nil
}

// Pairs returns the merged view of backend and open transactions, sorted by key.
func (o *Overlay) Pairs() ([]KV, error) {
	merged := make(map[string][]byte)
	err := o.backend.Iterate(func(k, v []byte) error {
		merged[string(k)] = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, layer := range o.layers {
		for k, c := range layer {
			if c.deleted {
				delete(merged, k)
			} else {
				merged[k] = c.value
			}
		}
	}

	pairs := make([]KV, 0, len(merged))
	for k, v := range merged {
		pairs = append(pairs, KV{Key: []byte(k), Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return string(pairs[i].Key) < string(pairs[j].Key) })
	return pairs, nil
}

// Root commits to the merged view, including open transactions.
func (o *Overlay) Root() (types.Hash, error) {
	pairs, err := o.Pairs()
	if err != nil {
		return types.Hash{}, err
	}
	return StateRoot(pairs), nil
}

func (o *Overlay) OrderedRoot(items [][]byte) (types.Hash, error) {
	return OrderedRoot(items), nil
}
