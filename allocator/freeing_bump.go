package allocator

import (
	"math/bits"

	"github.com/wippyai/polkawasm"
	"github.com/wippyai/polkawasm/errors"
)

const (
	// HeaderSize precedes every block and records its order or free-list link.
	HeaderSize = 8
	// MinBlock is the smallest block handed out.
	MinBlock = 8
	// MaxAllocation is the largest single request.
	MaxAllocation = 32 << 20

	numOrders    = 23 // MinBlock << 22 == MaxAllocation
	occupiedFlag = uint64(1) << 32
	noBlock      = ^uint32(0)
)

// LinearMemory is the memory a FreeingBump allocates from.
type LinearMemory interface {
	polkawasm.Memory
	polkawasm.MemorySizer
}

// FreeingBump is a bump allocator with per-size free lists.
//
// Requests are rounded up to a power of two between MinBlock and
// MaxAllocation. Each block is preceded by an 8-byte header holding the
// block order with the occupied flag, or the next free header when the
// block sits in a free list. Freed blocks are reused by later requests of
// the same order; memory is grown through polkawasm.MemoryGrower when the
// bump pointer reaches the end.
type FreeingBump struct {
	mem       LinearMemory
	heads     [numOrders]uint32
	bump      uint32
	base      uint32
	live      int
	allocated uint64
}

// NewFreeingBump returns an allocator over mem starting at heapBase.
func NewFreeingBump(mem LinearMemory, heapBase uint32) *FreeingBump {
	a := &FreeingBump{mem: mem}
	a.base = alignUp(heapBase)
	a.bump = a.base
	for i := range a.heads {
		a.heads[i] = noBlock
	}
	return a
}

func alignUp(v uint32) uint32 {
	return (v + 7) &^ 7
}

func orderOf(size uint32) int {
	if size <= MinBlock {
		return 0
	}
	return bits.Len32(size-1) - 3
}

func blockSize(order int) uint32 {
	return MinBlock << order
}

// Allocate returns a region of at least size bytes.
// Zero-size requests receive a minimum block.
func (a *FreeingBump) Allocate(size uint32) (uint32, error) {
	if size > MaxAllocation {
		return 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Value(size).
			Detail("request of %d bytes exceeds maximum of %d", size, MaxAllocation).
			Build()
	}
	order := orderOf(size)

	var header uint32
	if head := a.heads[order]; head != noBlock {
		next, err := a.mem.ReadU64(head)
		if err != nil {
			return 0, errors.Wrap(errors.PhaseAlloc, errors.KindAllocation, err, "read free list")
		}
		if next&occupiedFlag != 0 {
			return 0, errors.New(errors.PhaseAlloc, errors.KindInvalidData).
				Detail("free list entry at %d is marked occupied", head).
				Build()
		}
		a.heads[order] = uint32(next)
		header = head
	} else {
		var err error
		if header, err = a.bumpBlock(order); err != nil {
			return 0, err
		}
	}

	if err := a.mem.WriteU64(header, occupiedFlag|uint64(order)); err != nil {
		return 0, errors.Wrap(errors.PhaseAlloc, errors.KindAllocation, err, "write header")
	}
	a.live++
	a.allocated += uint64(blockSize(order))
	return header + HeaderSize, nil
}

func (a *FreeingBump) bumpBlock(order int) (uint32, error) {
	need := uint64(HeaderSize) + uint64(blockSize(order))
	end := uint64(a.bump) + need
	if end > uint64(^uint32(0)) {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, blockSize(order))
	}

	if size := uint64(a.mem.Size()); end > size {
		grower, ok := a.mem.(polkawasm.MemoryGrower)
		if !ok {
			return 0, errors.AllocationFailed(errors.PhaseAlloc, blockSize(order))
		}
		pages := uint32((end - size + PageSize - 1) / PageSize)
		if !grower.Grow(pages) {
			return 0, errors.AllocationFailed(errors.PhaseAlloc, blockSize(order))
		}
	}

	header := a.bump
	a.bump = uint32(end)
	return header, nil
}

// Free returns ptr to its free list. It fails for pointers this allocator
// did not hand out and for blocks that are already free.
func (a *FreeingBump) Free(ptr uint32) error {
	if ptr < a.base+HeaderSize || ptr >= a.bump {
		return errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(ptr).
			Detail("pointer %d outside heap [%d, %d)", ptr, a.base, a.bump).
			Build()
	}
	if ptr&7 != 0 {
		return errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(ptr).
			Detail("pointer %d is not 8-byte aligned", ptr).
			Build()
	}
	header := ptr - HeaderSize
	raw, err := a.mem.ReadU64(header)
	if err != nil {
		return errors.Wrap(errors.PhaseAlloc, errors.KindInvalidInput, err, "read header")
	}
	if raw&occupiedFlag == 0 {
		return errors.New(errors.PhaseAlloc, errors.KindDoubleFree).
			Value(ptr).
			Detail("pointer %d is not allocated", ptr).
			Build()
	}
	order := int(uint32(raw))
	if order >= numOrders {
		return errors.New(errors.PhaseAlloc, errors.KindInvalidData).
			Value(ptr).
			Detail("corrupt header order %d at %d", order, header).
			Build()
	}

	if err := a.mem.WriteU64(header, uint64(a.heads[order])); err != nil {
		return errors.Wrap(errors.PhaseAlloc, errors.KindInvalidData, err, "write header")
	}
	a.heads[order] = header
	a.live--
	a.allocated -= uint64(blockSize(order))
	return nil
}

// Release frees ptr and panics if it is not a live allocation.
func (a *FreeingBump) Release(ptr uint32) {
	if err := a.Free(ptr); err != nil {
		panic(err)
	}
}

// Live returns the number of outstanding allocations.
func (a *FreeingBump) Live() int {
	return a.live
}

// Allocated returns the bytes held by outstanding allocations, excluding headers.
func (a *FreeingBump) Allocated() uint64 {
	return a.allocated
}

// HeapEnd returns the current bump pointer.
func (a *FreeingBump) HeapEnd() uint32 {
	return a.bump
}
