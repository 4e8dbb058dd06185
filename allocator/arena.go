package allocator

import (
	"sort"

	"github.com/wippyai/polkawasm/errors"
)

// Arena is an in-process linear memory with a FreeingBump allocator that
// tracks ownership of every live buffer.
//
// It implements both polkawasm.Memory and polkawasm.Allocator so one value
// can stand in for a host in tests. Release panics on a pointer that is not
// live, which catches double frees and frees of foreign buffers.
type Arena struct {
	*SliceMemory
	alloc *FreeingBump
	owned map[uint32]uint32
}

// NewArena returns an arena of pages pages that can grow to maxPages.
// The heap starts at offset 8 so that 0 is never a valid pointer.
func NewArena(pages, maxPages uint32) *Arena {
	mem := NewSliceMemory(pages, maxPages)
	return &Arena{
		SliceMemory: mem,
		alloc:       NewFreeingBump(mem, 8),
		owned:       make(map[uint32]uint32),
	}
}

// Allocate obtains size bytes. A zero size panics.
func (a *Arena) Allocate(size uint32) (uint32, error) {
	if size == 0 {
		panic(errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Detail("zero-size allocation").
			Build())
	}
	ptr, err := a.alloc.Allocate(size)
	if err != nil {
		return 0, err
	}
	a.owned[ptr] = size
	return ptr, nil
}

// Release frees ptr. It panics if ptr is not a live allocation.
func (a *Arena) Release(ptr uint32) {
	if _, ok := a.owned[ptr]; !ok {
		panic(errors.New(errors.PhaseAlloc, errors.KindDoubleFree).
			Value(ptr).
			Detail("release of pointer %d that is not live", ptr).
			Build())
	}
	delete(a.owned, ptr)
	a.alloc.Release(ptr)
}

// Place allocates a buffer holding a copy of data, as a host does for call
// arguments. Empty data yields pointer 0 and no allocation.
func (a *Arena) Place(data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	ptr, err := a.Allocate(uint32(len(data)))
	if err != nil {
		return 0, err
	}
	if err := a.Write(ptr, data); err != nil {
		a.Release(ptr)
		return 0, err
	}
	return ptr, nil
}

// Bytes returns a copy of the region at ptr.
func (a *Arena) Bytes(ptr, size uint32) ([]byte, error) {
	view, err := a.Read(ptr, size)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), view...), nil
}

// Outstanding returns live pointers in ascending order.
func (a *Arena) Outstanding() []uint32 {
	ptrs := make([]uint32, 0, len(a.owned))
	for ptr := range a.owned {
		ptrs = append(ptrs, ptr)
	}
	sort.Slice(ptrs, func(i, j int) bool { return ptrs[i] < ptrs[j] })
	return ptrs
}

// SizeOf returns the requested size of a live allocation.
func (a *Arena) SizeOf(ptr uint32) (uint32, bool) {
	size, ok := a.owned[ptr]
	return size, ok
}
