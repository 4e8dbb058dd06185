package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/polkawasm"
	"github.com/wippyai/polkawasm/errors"
)

var (
	_ polkawasm.Allocator = (*Bridge)(nil)
	_ polkawasm.Allocator = (*FreeingBump)(nil)
	_ polkawasm.Allocator = (*Arena)(nil)
	_ polkawasm.Memory    = (*Arena)(nil)
	_ LinearMemory        = (*SliceMemory)(nil)
)

func TestOrderOf(t *testing.T) {
	tests := []struct {
		size  uint32
		order int
	}{
		{0, 0}, {1, 0}, {8, 0}, {9, 1}, {16, 1}, {17, 2}, {1024, 7}, {MaxAllocation, numOrders - 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.order, orderOf(tt.size), "size %d", tt.size)
		assert.GreaterOrEqual(t, blockSize(orderOf(tt.size)), tt.size)
	}
}

func TestFreeingBump_AllocateAndReuse(t *testing.T) {
	mem := NewSliceMemory(1, 1)
	a := NewFreeingBump(mem, 1001)

	p1, err := a.Allocate(10)
	require.NoError(t, err)
	assert.Equal(t, uint32(1008+HeaderSize), p1)
	assert.Zero(t, p1%8)

	p2, err := a.Allocate(10)
	require.NoError(t, err)
	assert.Equal(t, p1+16+HeaderSize, p2)
	assert.Equal(t, 2, a.Live())
	assert.Equal(t, uint64(32), a.Allocated())

	require.NoError(t, a.Free(p1))
	assert.Equal(t, 1, a.Live())

	p3, err := a.Allocate(12)
	require.NoError(t, err)
	assert.Equal(t, p1, p3, "freed block of same order is reused")

	p4, err := a.Allocate(100)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p4)
}

func TestFreeingBump_DoubleFree(t *testing.T) {
	a := NewFreeingBump(NewSliceMemory(1, 1), 0)
	p, err := a.Allocate(8)
	require.NoError(t, err)

	require.NoError(t, a.Free(p))
	err = a.Free(p)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindDoubleFree})
	assert.Panics(t, func() { a.Release(p) })
}

func TestFreeingBump_ForeignPointer(t *testing.T) {
	a := NewFreeingBump(NewSliceMemory(1, 1), 256)
	_, err := a.Allocate(8)
	require.NoError(t, err)

	assert.Error(t, a.Free(4))
	assert.Error(t, a.Free(60000))
}

func TestFreeingBump_FreeBounds(t *testing.T) {
	a := NewFreeingBump(NewSliceMemory(1, 1), 256)
	p, err := a.Allocate(8)
	require.NoError(t, err)
	require.Equal(t, uint32(264), p)
	require.Equal(t, uint32(272), a.HeapEnd())

	invalid := &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindInvalidInput}
	assert.ErrorIs(t, a.Free(a.HeapEnd()), invalid, "bump pointer is not a block")
	assert.ErrorIs(t, a.Free(p+4), invalid, "unaligned")
	assert.Equal(t, 1, a.Live())

	require.NoError(t, a.Free(p))
	assert.Zero(t, a.Live())
}

func TestFreeingBump_Exhaustion(t *testing.T) {
	a := NewFreeingBump(NewSliceMemory(1, 1), 0)

	_, err := a.Allocate(PageSize)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindAllocation})

	_, err = a.Allocate(MaxAllocation + 1)
	assert.Error(t, err)
}

func TestFreeingBump_Grows(t *testing.T) {
	mem := NewSliceMemory(1, 4)
	a := NewFreeingBump(mem, 0)

	p, err := a.Allocate(PageSize)
	require.NoError(t, err)
	assert.Equal(t, uint32(2*PageSize), mem.Size())
	require.NoError(t, mem.Write(p+PageSize-1, []byte{1}))
}

func TestBridge(t *testing.T) {
	var freed []uint32
	next := uint32(64)
	b := NewBridge(
		func(size uint32) uint32 {
			if size > 100 {
				return 0
			}
			ptr := next
			next += size
			return ptr
		},
		func(ptr uint32) { freed = append(freed, ptr) },
	)

	p, err := b.Allocate(10)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), p)

	_, err = b.Allocate(1000)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindAllocation})

	b.Release(p)
	assert.Equal(t, []uint32{64}, freed)

	assert.Panics(t, func() { _, _ = b.Allocate(0) })
}

func TestArena_Ownership(t *testing.T) {
	a := NewArena(1, 1)

	p, err := a.Place([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []uint32{p}, a.Outstanding())
	size, ok := a.SizeOf(p)
	require.True(t, ok)
	assert.Equal(t, uint32(5), size)

	got, err := a.Bytes(p, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	a.Release(p)
	assert.Empty(t, a.Outstanding())
	assert.Panics(t, func() { a.Release(p) }, "double free")
	assert.Panics(t, func() { a.Release(12345) }, "foreign pointer")
	assert.Panics(t, func() { _, _ = a.Allocate(0) })
}

func TestArena_PlaceEmpty(t *testing.T) {
	a := NewArena(1, 1)
	p, err := a.Place(nil)
	require.NoError(t, err)
	assert.Zero(t, p)
	assert.Empty(t, a.Outstanding())
}

func TestSliceMemory_Bounds(t *testing.T) {
	m := NewSliceMemory(1, 1)
	_, err := m.Read(PageSize-2, 4)
	assert.Error(t, err)
	assert.Error(t, m.Write(PageSize, []byte{1}))
	_, err = m.ReadU64(PageSize - 4)
	assert.Error(t, err)
	assert.Error(t, m.WriteU32(PageSize-3, 1))

	require.NoError(t, m.WriteU64(0, 0x0102030405060708))
	v, err := m.ReadU32(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)

	assert.False(t, m.Grow(1))
}
