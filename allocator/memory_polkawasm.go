//go:build polkawasm

package allocator

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

const wasmPageSize = 64 * 1024

//export llvm.wasm.memory.size.i32
func wasmMemorySize(index int32) int32

// GuestMemory addresses the module's own linear memory by offset.
type GuestMemory struct{}

// Size returns the current linear memory size in bytes.
func (GuestMemory) Size() uint32 {
	return uint32(wasmMemorySize(0)) * wasmPageSize
}

func (m GuestMemory) view(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(m.Size()) {
		return nil, fmt.Errorf("memory access out of bounds: offset=%d, length=%d", offset, length)
	}
	if length == 0 {
		return nil, nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(offset))), length), nil
}

// Read returns a view of linear memory. The view is not a copy.
func (m GuestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	return m.view(offset, length)
}

func (m GuestMemory) Write(offset uint32, data []byte) error {
	dst, err := m.view(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

func (m GuestMemory) ReadU32(offset uint32) (uint32, error) {
	b, err := m.view(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m GuestMemory) ReadU64(offset uint32) (uint64, error) {
	b, err := m.view(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m GuestMemory) WriteU32(offset uint32, value uint32) error {
	b, err := m.view(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, value)
	return nil
}

func (m GuestMemory) WriteU64(offset uint32, value uint64) error {
	b, err := m.view(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, value)
	return nil
}

// Pointer returns the linear memory offset of b's first byte, or 0 for an
// empty slice.
func Pointer(b []byte) uint32 {
	if len(b) == 0 {
		return 0
	}
	return uint32(uintptr(unsafe.Pointer(&b[0])))
}
