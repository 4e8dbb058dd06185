package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/allocator"
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/storage"
)

// Instance is an instantiated runtime binary with its heap and storage.
type Instance struct {
	engine *Engine
	module api.Module
	memory *Memory
	alloc  *allocator.FreeingBump
	store  storage.Storage
}

type instanceKey struct{}

// Module returns the underlying wazero module.
func (i *Instance) Module() api.Module {
	return i.module
}

// Memory returns the guest linear memory.
func (i *Instance) Memory() *Memory {
	return i.memory
}

// Allocator returns the guest heap allocator.
func (i *Instance) Allocator() *allocator.FreeingBump {
	return i.alloc
}

// Storage returns the storage host calls operate on.
func (i *Instance) Storage() storage.Storage {
	return i.store
}

// WithInstance attaches i to ctx so host functions can find it.
func (i *Instance) WithInstance(ctx context.Context) context.Context {
	return context.WithValue(ctx, instanceKey{}, i)
}

// FromContext returns the instance attached to ctx.
func FromContext(ctx context.Context) (*Instance, bool) {
	i, ok := ctx.Value(instanceKey{}).(*Instance)
	return i, ok
}

func mustInstance(ctx context.Context, fn string) *Instance {
	i, ok := FromContext(ctx)
	if !ok {
		panic(errors.New(errors.PhaseHost, errors.KindInvalidState).
			Detail("%s called outside an instance call", fn).
			Build())
	}
	return i
}

// Call invokes an export with raw parameters. A guest trap or host
// function failure is returned as a trap error.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "export", name)
	}
	results, err := fn.Call(i.WithInstance(ctx), params...)
	if err != nil {
		return nil, errors.Trap(name, err)
	}
	return results, nil
}

// Place copies data into a new heap buffer owned by the host.
func (i *Instance) Place(data []byte) (*abi.Buffer, error) {
	return abi.NewBuffer(i.memory, i.alloc, data, abi.OwnerHost)
}

// Take copies the region ps out of memory and frees it. A zero pointer
// frees nothing.
func (i *Instance) Take(ps abi.PointerSize) ([]byte, error) {
	ptr, size := ps.Unpack()
	view, err := i.memory.Read(ptr, size)
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), view...)
	if ptr != 0 {
		if err := i.alloc.Free(ptr); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Close releases the wazero module.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}
