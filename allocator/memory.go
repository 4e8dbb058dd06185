package allocator

import (
	"encoding/binary"
	"fmt"
)

// PageSize is the WASM page size in bytes.
const PageSize = 64 * 1024

// SliceMemory is a byte-slice linear memory for in-process use.
type SliceMemory struct {
	data     []byte
	maxPages uint32
}

// NewSliceMemory returns a memory of pages pages that can grow to maxPages.
// A maxPages below pages disables growth.
func NewSliceMemory(pages, maxPages uint32) *SliceMemory {
	return &SliceMemory{data: make([]byte, int(pages)*PageSize), maxPages: maxPages}
}

func (m *SliceMemory) check(offset uint32, length uint64) error {
	if uint64(offset)+length > uint64(len(m.data)) {
		return fmt.Errorf("memory access out of bounds: offset=%d, length=%d", offset, length)
	}
	return nil
}

// Read returns a view of memory. The view is not a copy.
func (m *SliceMemory) Read(offset uint32, length uint32) ([]byte, error) {
	if err := m.check(offset, uint64(length)); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length], nil
}

func (m *SliceMemory) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint64(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *SliceMemory) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

func (m *SliceMemory) ReadU64(offset uint32) (uint64, error) {
	if err := m.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

func (m *SliceMemory) WriteU32(offset uint32, value uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}

func (m *SliceMemory) WriteU64(offset uint32, value uint64) error {
	if err := m.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], value)
	return nil
}

// Size returns the memory size in bytes.
func (m *SliceMemory) Size() uint32 {
	return uint32(len(m.data))
}

// Grow adds pages, failing past the configured maximum.
func (m *SliceMemory) Grow(pages uint32) bool {
	current := uint32(len(m.data) / PageSize)
	if current+pages > m.maxPages {
		return false
	}
	m.data = append(m.data, make([]byte, int(pages)*PageSize)...)
	return true
}
