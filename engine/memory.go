package engine

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/polkawasm"
	"github.com/wippyai/polkawasm/errors"
)

// Memory wraps wazero memory to implement polkawasm.Memory.
type Memory struct {
	mem api.Memory
}

// NewMemory wraps mem.
func NewMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

func outOfBounds(op string, offset uint32, length int, size uint32) error {
	return errors.New(errors.PhaseHost, errors.KindOutOfBounds).
		Detail("%s out of bounds: offset=%d, length=%d, size=%d", op, offset, length, size).
		Build()
}

// Read returns a view of memory. The view is invalidated when memory grows.
func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, outOfBounds("read", offset, int(length), m.mem.Size())
	}
	return data, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return outOfBounds("write", offset, len(data), m.mem.Size())
	}
	return nil
}

func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, outOfBounds("read", offset, 4, m.mem.Size())
	}
	return val, nil
}

func (m *Memory) ReadU64(offset uint32) (uint64, error) {
	val, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, outOfBounds("read", offset, 8, m.mem.Size())
	}
	return val, nil
}

func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return outOfBounds("write", offset, 4, m.mem.Size())
	}
	return nil
}

func (m *Memory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return outOfBounds("write", offset, 8, m.mem.Size())
	}
	return nil
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// Grow adds pages, reporting false past the memory maximum.
func (m *Memory) Grow(pages uint32) bool {
	_, ok := m.mem.Grow(pages)
	return ok
}

var (
	_ polkawasm.Memory       = (*Memory)(nil)
	_ polkawasm.MemorySizer  = (*Memory)(nil)
	_ polkawasm.MemoryGrower = (*Memory)(nil)
)
