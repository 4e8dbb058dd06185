package polkawasm

// Memory represents WASM linear memory
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of WASM linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// MemoryGrower extends linear memory by a number of 64 KiB pages.
// It reports false when the memory cannot grow.
type MemoryGrower interface {
	Grow(pages uint32) bool
}

// Allocator allocates memory in WASM linear memory.
//
// Allocate returns the offset of a fresh region of exactly size bytes.
// Release returns a region obtained from Allocate to the allocator; the
// pointer must not be used afterwards.
type Allocator interface {
	Allocate(size uint32) (uint32, error)
	Release(ptr uint32)
}
