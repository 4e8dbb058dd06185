package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/hashing"
)

// Key returns the storage key of a module value: twox128(module) ++ twox128(item).
func Key(module, item string) []byte {
	m := hashing.Twox128([]byte(module))
	i := hashing.Twox128([]byte(item))
	key := make([]byte, 0, 32)
	key = append(key, m[:]...)
	return append(key, i[:]...)
}

// GetU64 reads a little-endian u64 value.
func GetU64(s Storage, key []byte) (uint64, bool, error) {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return 0, false, err
	}
	if len(v) != 8 {
		return 0, false, errors.InvalidData(errors.PhaseStorage, nil,
			fmt.Sprintf("expected 8-byte value at 0x%x, got %d bytes", key, len(v)))
	}
	return binary.LittleEndian.Uint64(v), true, nil
}

// PutU64 writes a little-endian u64 value.
func PutU64(s Storage, key []byte, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return s.Set(key, b[:])
}
