package abi

import "fmt"

// PointerSize packs a buffer as offset | length<<32.
type PointerSize uint64

// Pack builds a PointerSize from an offset and length.
func Pack(ptr, size uint32) PointerSize {
	return PointerSize(uint64(ptr) | uint64(size)<<32)
}

// Unpack splits a PointerSize into offset and length.
func (ps PointerSize) Unpack() (ptr, size uint32) {
	return uint32(ps), uint32(ps >> 32)
}

// Ptr returns the offset.
func (ps PointerSize) Ptr() uint32 {
	return uint32(ps)
}

// Size returns the length.
func (ps PointerSize) Size() uint32 {
	return uint32(ps >> 32)
}

func (ps PointerSize) String() string {
	return fmt.Sprintf("ptr=%d len=%d", ps.Ptr(), ps.Size())
}
