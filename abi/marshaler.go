package abi

import (
	"github.com/wippyai/polkawasm"
	"github.com/wippyai/polkawasm/errors"
)

// Marshaler moves entry point arguments and results across linear memory.
type Marshaler struct {
	mem   polkawasm.Memory
	alloc polkawasm.Allocator
}

// NewMarshaler returns a marshaler over mem and alloc.
func NewMarshaler(mem polkawasm.Memory, alloc polkawasm.Allocator) *Marshaler {
	return &Marshaler{mem: mem, alloc: alloc}
}

// Args copies the argument region out of linear memory. The host keeps
// ownership of the region.
func (m *Marshaler) Args(ptr, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	view, err := m.mem.Read(ptr, size)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseABI, errors.KindOutOfBounds, err, "read arguments")
	}
	out := make([]byte, size)
	copy(out, view)
	return out, nil
}

// Return places data in a new buffer and transfers it to the host.
func (m *Marshaler) Return(data []byte) (PointerSize, error) {
	buf, err := NewBuffer(m.mem, m.alloc, data, OwnerGuest)
	if err != nil {
		return 0, err
	}
	return buf.Transfer(OwnerHost), nil
}

// Call reads the arguments, runs fn and allocates the result buffer only
// when fn succeeds.
func (m *Marshaler) Call(ptr, size uint32, fn func(args []byte) ([]byte, error)) (PointerSize, error) {
	args, err := m.Args(ptr, size)
	if err != nil {
		return 0, err
	}
	out, err := fn(args)
	if err != nil {
		return 0, err
	}
	return m.Return(out)
}

// CallVoid reads the arguments and runs fn.
func (m *Marshaler) CallVoid(ptr, size uint32, fn func(args []byte) error) error {
	args, err := m.Args(ptr, size)
	if err != nil {
		return err
	}
	return fn(args)
}
