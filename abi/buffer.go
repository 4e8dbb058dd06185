package abi

import (
	"github.com/wippyai/polkawasm"
	"github.com/wippyai/polkawasm/errors"
)

// Owner records which side of the boundary is responsible for a buffer.
type Owner uint8

const (
	OwnerGuest Owner = iota
	OwnerHost
	Released
)

func (o Owner) String() string {
	switch o {
	case OwnerGuest:
		return "guest"
	case OwnerHost:
		return "host"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Buffer is a region of linear memory obtained from an Allocator.
// Exactly one side owns it at a time and it is released exactly once.
type Buffer struct {
	alloc polkawasm.Allocator
	ptr   uint32
	size  uint32
	owner Owner
}

// NewBuffer allocates a buffer with a copy of data, owned by owner.
// Empty data still allocates one byte so the buffer has a real address.
func NewBuffer(mem polkawasm.Memory, alloc polkawasm.Allocator, data []byte, owner Owner) (*Buffer, error) {
	if uint64(len(data)) > uint64(^uint32(0)) {
		return nil, errors.Overflow(errors.PhaseABI, len(data), "u32")
	}
	size := uint32(len(data))
	req := size
	if req == 0 {
		req = 1
	}
	ptr, err := alloc.Allocate(req)
	if err != nil {
		return nil, err
	}
	buf := &Buffer{alloc: alloc, ptr: ptr, size: size, owner: owner}
	if err := mem.Write(ptr, data); err != nil {
		buf.Release()
		return nil, errors.Wrap(errors.PhaseABI, errors.KindOutOfBounds, err, "write buffer")
	}
	return buf, nil
}

func (b *Buffer) Ptr() uint32  { return b.ptr }
func (b *Buffer) Size() uint32 { return b.size }
func (b *Buffer) Owner() Owner { return b.owner }

// PointerSize returns the packed form of the buffer.
func (b *Buffer) PointerSize() PointerSize {
	return Pack(b.ptr, b.size)
}

// Transfer hands the buffer to the other side and returns its packed form.
// The previous owner must not release it afterwards.
func (b *Buffer) Transfer(to Owner) PointerSize {
	if b.owner == Released {
		panic(errors.New(errors.PhaseABI, errors.KindDoubleFree).
			Detail("transfer of released buffer %s", b.PointerSize()).
			Build())
	}
	b.owner = to
	return b.PointerSize()
}

// Release returns the buffer to the allocator. Releasing twice panics.
func (b *Buffer) Release() {
	if b.owner == Released {
		panic(errors.New(errors.PhaseABI, errors.KindDoubleFree).
			Detail("buffer %s released twice", b.PointerSize()).
			Build())
	}
	b.owner = Released
	b.alloc.Release(b.ptr)
}
