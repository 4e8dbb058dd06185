package engine

import (
	"context"
	"strconv"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/polkawasm/allocator"
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/storage"
)

// HostModule is the import module name of every host function.
const HostModule = "env"

// HeapBaseGlobal is the exported global marking the start of the guest heap.
const HeapBaseGlobal = "__heap_base"

// Config holds configuration for engine creation.
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// GuestLogLevel is the most verbose guest log level forwarded to the
	// engine logger. The zero value is info.
	GuestLogLevel zapcore.Level
}

// Engine compiles and instantiates runtime binaries.
type Engine struct {
	runtime wazero.Runtime
	cfg     Config

	mu       sync.Mutex
	env      api.Module
	sequence uint64
}

// New creates an engine and instantiates the host module.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	e := &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		cfg:     cfg,
	}
	env, err := e.buildHostModule(ctx)
	if err != nil {
		_ = e.runtime.Close(ctx)
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInstantiation, err, "instantiate host module")
	}
	e.env = env
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Compile validates and compiles a runtime binary.
func (e *Engine) Compile(ctx context.Context, wasm []byte) (wazero.CompiledModule, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}
	return compiled, nil
}

// Instantiate creates an instance of compiled whose host calls read and
// write store.
func (e *Engine) Instantiate(ctx context.Context, compiled wazero.CompiledModule, store storage.Storage) (*Instance, error) {
	e.mu.Lock()
	e.sequence++
	name := "runtime-" + strconv.FormatUint(e.sequence, 10)
	e.mu.Unlock()

	mod, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name).WithStartFunctions())
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	mem := mod.Memory()
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, errors.Instantiation(errors.NotFound(errors.PhaseHost, "memory export", "memory"))
	}

	var heapBase uint32
	if g := mod.ExportedGlobal(HeapBaseGlobal); g != nil {
		heapBase = uint32(g.Get())
	} else {
		heapBase = mem.Size()
		Logger().Warn("module has no __heap_base, heap starts at end of initial memory",
			zap.Uint32("heap_base", heapBase))
	}

	wrapped := NewMemory(mem)
	return &Instance{
		engine: e,
		module: mod,
		memory: wrapped,
		alloc:  allocator.NewFreeingBump(wrapped, heapBase),
		store:  store,
	}, nil
}

// Close releases the wazero runtime and every instance created from it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
