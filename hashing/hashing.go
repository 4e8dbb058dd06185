// Package hashing provides the hash functions used for block hashes, API
// identifiers and storage keys.
package hashing

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Blake2b256 returns the 32-byte blake2b digest of data.
func Blake2b256(data ...[]byte) [32]byte {
	h, _ := blake2b.New256(nil)
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Blake2b128 returns the 16-byte blake2b digest of data.
func Blake2b128(data []byte) [16]byte {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	var out [16]byte
	h.Sum(out[:0])
	return out
}

// Blake2b64 returns the 8-byte blake2b digest of data. Runtime API
// identifiers are the Blake2b64 of the API name.
func Blake2b64(data []byte) [8]byte {
	h, _ := blake2b.New(8, nil)
	h.Write(data)
	var out [8]byte
	h.Sum(out[:0])
	return out
}

// Twox64 returns xxhash64 of data with seed 0, little-endian.
func Twox64(data []byte) [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], xxhash.Sum64(data))
	return out
}

// Twox128 returns two concatenated xxhash64 digests with seeds 0 and 1.
func Twox128(data []byte) [16]byte {
	var out [16]byte
	binary.LittleEndian.PutUint64(out[:8], seeded(0, data))
	binary.LittleEndian.PutUint64(out[8:], seeded(1, data))
	return out
}

func seeded(seed uint64, data []byte) uint64 {
	d := xxhash.NewWithSeed(seed)
	d.Write(data)
	return d.Sum64()
}
