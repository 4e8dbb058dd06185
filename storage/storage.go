// Package storage is the state collaborator of the runtime: key/value
// access with nested transactions and the root commitments reported in
// block headers.
//
// Overlay runs in-process over any Backend, for example a cometbft-db
// database through DBBackend. Inside a runtime binary HostStorage forwards
// every operation to the host's ext_storage_* imports.
//
// Roots are flat commitments: the state root is blake2b-256 over the
// SCALE-encoded, key-sorted list of pairs and the ordered root is
// blake2b-256 over a SCALE-encoded list of values. They are not
// Patricia-Merkle trie roots.
package storage

import (
	"github.com/wippyai/polkawasm/types"
)

// Storage is the state a runtime reads and writes.
//
// Transactions nest. Changes made after StartTransaction become visible to
// the enclosing level on CommitTransaction and are discarded by
// RollbackTransaction.
type Storage interface {
	Get(key []byte) ([]byte, bool, error)
	Set(key, value []byte) error
	Clear(key []byte) error
	Exists(key []byte) (bool, error)
	Root() (types.Hash, error)
	OrderedRoot(items [][]byte) (types.Hash, error)
	StartTransaction()
	CommitTransaction() error
	RollbackTransaction() error
}

// Backend is durable key/value storage underneath an Overlay.
type Backend interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Iterate visits every pair in ascending key order.
	Iterate(fn func(key, value []byte) error) error
}
