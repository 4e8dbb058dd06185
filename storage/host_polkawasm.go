//go:build polkawasm

package storage

import (
	"runtime"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/allocator"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/types"
)

//go:wasm-module env
//go:export ext_storage_get_version_1
func extStorageGet(key uint64) uint64

//go:wasm-module env
//go:export ext_storage_set_version_1
func extStorageSet(key, value uint64)

//go:wasm-module env
//go:export ext_storage_clear_version_1
func extStorageClear(key uint64)

//go:wasm-module env
//go:export ext_storage_exists_version_1
func extStorageExists(key uint64) uint32

//go:wasm-module env
//go:export ext_storage_root_version_1
func extStorageRoot() uint64

//go:wasm-module env
//go:export ext_storage_start_transaction_version_1
func extStorageStartTransaction()

//go:wasm-module env
//go:export ext_storage_commit_transaction_version_1
func extStorageCommitTransaction()

//go:wasm-module env
//go:export ext_storage_rollback_transaction_version_1
func extStorageRollbackTransaction()

//go:wasm-module env
//go:export ext_trie_blake2_256_ordered_root_version_1
func extTrieOrderedRoot(input uint64) uint32

// HostStorage implements Storage through the host's storage imports.
// Host failures trap, so the methods never return errors.
type HostStorage struct {
	mem   allocator.GuestMemory
	alloc *allocator.Bridge
}

// NewHostStorage returns the storage backed by the host.
func NewHostStorage() *HostStorage {
	return &HostStorage{alloc: allocator.Host()}
}

func span(b []byte) uint64 {
	return uint64(abi.Pack(allocator.Pointer(b), uint32(len(b))))
}

// take copies a host-allocated buffer and releases it.
func (s *HostStorage) take(ptr, size uint32) ([]byte, error) {
	view, err := s.mem.Read(ptr, size)
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), view...)
	s.alloc.Release(ptr)
	return out, nil
}

func (s *HostStorage) Get(key []byte) ([]byte, bool, error) {
	ps := abi.PointerSize(extStorageGet(span(key)))
	runtime.KeepAlive(key)

	raw, err := s.take(ps.Unpack())
	if err != nil {
		return nil, false, err
	}
	d := scale.NewDecoder(raw)
	some, err := d.Option()
	if err != nil || !some {
		return nil, false, err
	}
	v, err := d.Bytes()
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

func (s *HostStorage) Set(key, value []byte) error {
	extStorageSet(span(key), span(value))
	runtime.KeepAlive(key)
	runtime.KeepAlive(value)
	return nil
}

func (s *HostStorage) Clear(key []byte) error {
	extStorageClear(span(key))
	runtime.KeepAlive(key)
	return nil
}

func (s *HostStorage) Exists(key []byte) (bool, error) {
	ok := extStorageExists(span(key)) == 1
	runtime.KeepAlive(key)
	return ok, nil
}

func (s *HostStorage) Root() (types.Hash, error) {
	ps := abi.PointerSize(extStorageRoot())
	raw, err := s.take(ps.Unpack())
	if err != nil {
		return types.Hash{}, err
	}
	var h types.Hash
	copy(h[:], raw)
	return h, nil
}

func (s *HostStorage) OrderedRoot(items [][]byte) (types.Hash, error) {
	var e scale.Encoder
	scale.PutBytesSeq(&e, items)
	input := e.Bytes()
	ptr := extTrieOrderedRoot(span(input))
	runtime.KeepAlive(input)

	raw, err := s.take(ptr, 32)
	if err != nil {
		return types.Hash{}, err
	}
	var h types.Hash
	copy(h[:], raw)
	return h, nil
}

func (s *HostStorage) StartTransaction() {
	extStorageStartTransaction()
}

func (s *HostStorage) CommitTransaction() error {
	extStorageCommitTransaction()
	return nil
}

func (s *HostStorage) RollbackTransaction() error {
	extStorageRollbackTransaction()
	return nil
}
