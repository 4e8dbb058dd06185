package allocator

import (
	"github.com/wippyai/polkawasm/errors"
)

// MallocFunc allocates size bytes and returns 0 on failure.
type MallocFunc func(size uint32) uint32

// FreeFunc releases a region obtained from a MallocFunc.
type FreeFunc func(ptr uint32)

// Bridge implements polkawasm.Allocator over a raw malloc/free pair.
type Bridge struct {
	malloc MallocFunc
	free   FreeFunc
}

// NewBridge returns a bridge over malloc and free.
func NewBridge(malloc MallocFunc, free FreeFunc) *Bridge {
	return &Bridge{malloc: malloc, free: free}
}

// Allocate obtains size bytes from the host. A zero size is a caller bug
// and panics. A zero pointer from the host is reported as exhaustion.
func (b *Bridge) Allocate(size uint32) (uint32, error) {
	if size == 0 {
		panic(errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Detail("zero-size allocation").
			Build())
	}
	ptr := b.malloc(size)
	if ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size)
	}
	return ptr, nil
}

// Release returns ptr to the host.
func (b *Bridge) Release(ptr uint32) {
	b.free(ptr)
}
