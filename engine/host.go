package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/polkawasm/abi"
	rtapi "github.com/wippyai/polkawasm/api"
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
)

const (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

type hostFunc struct {
	name    string
	fn      api.GoModuleFunc
	params  []api.ValueType
	results []api.ValueType
}

func (e *Engine) hostFuncs() []hostFunc {
	return []hostFunc{
		{"ext_allocator_malloc_version_1", extMalloc, []api.ValueType{i32}, []api.ValueType{i32}},
		{"ext_allocator_free_version_1", extFree, []api.ValueType{i32}, nil},
		{"ext_storage_get_version_1", extStorageGet, []api.ValueType{i64}, []api.ValueType{i64}},
		{"ext_storage_set_version_1", extStorageSet, []api.ValueType{i64, i64}, nil},
		{"ext_storage_clear_version_1", extStorageClear, []api.ValueType{i64}, nil},
		{"ext_storage_exists_version_1", extStorageExists, []api.ValueType{i64}, []api.ValueType{i32}},
		{"ext_storage_root_version_1", extStorageRoot, nil, []api.ValueType{i64}},
		{"ext_storage_start_transaction_version_1", extStorageStartTransaction, nil, nil},
		{"ext_storage_commit_transaction_version_1", extStorageCommitTransaction, nil, nil},
		{"ext_storage_rollback_transaction_version_1", extStorageRollbackTransaction, nil, nil},
		{"ext_trie_blake2_256_ordered_root_version_1", extTrieOrderedRoot, []api.ValueType{i64}, []api.ValueType{i32}},
		{"ext_logging_log_version_1", e.extLoggingLog, []api.ValueType{i32, i64, i64}, nil},
		{"ext_logging_max_level_version_1", e.extLoggingMaxLevel, nil, []api.ValueType{i32}},
	}
}

// HostFunctionNames lists the imports the host module provides.
func (e *Engine) HostFunctionNames() []string {
	funcs := e.hostFuncs()
	names := make([]string, len(funcs))
	for i, f := range funcs {
		names[i] = f.name
	}
	return names
}

func (e *Engine) buildHostModule(ctx context.Context) (api.Module, error) {
	builder := e.runtime.NewHostModuleBuilder(HostModule)
	for _, f := range e.hostFuncs() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			Export(f.name)
	}
	return builder.Instantiate(ctx)
}

// hostFail aborts the guest call.
func hostFail(fn string, err error) {
	panic(errors.Wrap(errors.PhaseHost, errors.KindTrap, err, fn))
}

// readSpan copies the region described by a packed pointer-size. An empty
// region yields an empty, non-nil slice.
func (i *Instance) readSpan(packed uint64) ([]byte, error) {
	ptr, size := abi.PointerSize(packed).Unpack()
	view, err := i.memory.Read(ptr, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

// give copies data into a new heap buffer that the guest must release.
func (i *Instance) give(data []byte) (abi.PointerSize, error) {
	buf, err := abi.NewBuffer(i.memory, i.alloc, data, abi.OwnerHost)
	if err != nil {
		return 0, err
	}
	return buf.Transfer(abi.OwnerGuest), nil
}

func extMalloc(ctx context.Context, _ api.Module, stack []uint64) {
	inst := mustInstance(ctx, "ext_allocator_malloc_version_1")
	size := api.DecodeU32(stack[0])
	ptr, err := inst.alloc.Allocate(size)
	if err != nil {
		Logger().Warn("guest allocation failed", zap.Uint32("size", size), zap.Error(err))
		ptr = 0
	}
	stack[0] = api.EncodeU32(ptr)
}

func extFree(ctx context.Context, _ api.Module, stack []uint64) {
	inst := mustInstance(ctx, "ext_allocator_free_version_1")
	if err := inst.alloc.Free(api.DecodeU32(stack[0])); err != nil {
		hostFail("ext_allocator_free_version_1", err)
	}
}

func extStorageGet(ctx context.Context, _ api.Module, stack []uint64) {
	const fn = "ext_storage_get_version_1"
	inst := mustInstance(ctx, fn)
	key, err := inst.readSpan(stack[0])
	if err != nil {
		hostFail(fn, err)
	}
	value, ok, err := inst.store.Get(key)
	if err != nil {
		hostFail(fn, err)
	}

	var e scale.Encoder
	e.PutOption(ok)
	if ok {
		e.PutBytes(value)
	}
	ps, err := inst.give(e.Bytes())
	if err != nil {
		hostFail(fn, err)
	}
	stack[0] = uint64(ps)
}

func extStorageSet(ctx context.Context, _ api.Module, stack []uint64) {
	const fn = "ext_storage_set_version_1"
	inst := mustInstance(ctx, fn)
	key, err := inst.readSpan(stack[0])
	if err != nil {
		hostFail(fn, err)
	}
	value, err := inst.readSpan(stack[1])
	if err != nil {
		hostFail(fn, err)
	}
	if err := inst.store.Set(key, value); err != nil {
		hostFail(fn, err)
	}
}

func extStorageClear(ctx context.Context, _ api.Module, stack []uint64) {
	const fn = "ext_storage_clear_version_1"
	inst := mustInstance(ctx, fn)
	key, err := inst.readSpan(stack[0])
	if err != nil {
		hostFail(fn, err)
	}
	if err := inst.store.Clear(key); err != nil {
		hostFail(fn, err)
	}
}

func extStorageExists(ctx context.Context, _ api.Module, stack []uint64) {
	const fn = "ext_storage_exists_version_1"
	inst := mustInstance(ctx, fn)
	key, err := inst.readSpan(stack[0])
	if err != nil {
		hostFail(fn, err)
	}
	ok, err := inst.store.Exists(key)
	if err != nil {
		hostFail(fn, err)
	}
	stack[0] = 0
	if ok {
		stack[0] = 1
	}
}

func extStorageRoot(ctx context.Context, _ api.Module, stack []uint64) {
	const fn = "ext_storage_root_version_1"
	inst := mustInstance(ctx, fn)
	root, err := inst.store.Root()
	if err != nil {
		hostFail(fn, err)
	}
	ps, err := inst.give(root[:])
	if err != nil {
		hostFail(fn, err)
	}
	stack[0] = uint64(ps)
}

func extStorageStartTransaction(ctx context.Context, _ api.Module, _ []uint64) {
	mustInstance(ctx, "ext_storage_start_transaction_version_1").store.StartTransaction()
}

func extStorageCommitTransaction(ctx context.Context, _ api.Module, _ []uint64) {
	const fn = "ext_storage_commit_transaction_version_1"
	if err := mustInstance(ctx, fn).store.CommitTransaction(); err != nil {
		hostFail(fn, err)
	}
}

func extStorageRollbackTransaction(ctx context.Context, _ api.Module, _ []uint64) {
	const fn = "ext_storage_rollback_transaction_version_1"
	if err := mustInstance(ctx, fn).store.RollbackTransaction(); err != nil {
		hostFail(fn, err)
	}
}

func extTrieOrderedRoot(ctx context.Context, _ api.Module, stack []uint64) {
	const fn = "ext_trie_blake2_256_ordered_root_version_1"
	inst := mustInstance(ctx, fn)
	input, err := inst.readSpan(stack[0])
	if err != nil {
		hostFail(fn, err)
	}
	items, err := scale.BytesSeq(scale.NewDecoder(input))
	if err != nil {
		hostFail(fn, err)
	}
	root, err := inst.store.OrderedRoot(items)
	if err != nil {
		hostFail(fn, err)
	}
	ps, err := inst.give(root[:])
	if err != nil {
		hostFail(fn, err)
	}
	stack[0] = api.EncodeU32(ps.Ptr())
}

func (e *Engine) extLoggingLog(ctx context.Context, _ api.Module, stack []uint64) {
	const fn = "ext_logging_log_version_1"
	inst := mustInstance(ctx, fn)
	level := rtapi.ZapLevel(api.DecodeU32(stack[0]))
	if level < e.cfg.GuestLogLevel {
		return
	}
	target, err := inst.readSpan(stack[1])
	if err != nil {
		hostFail(fn, err)
	}
	message, err := inst.readSpan(stack[2])
	if err != nil {
		hostFail(fn, err)
	}
	if ce := Logger().Named("guest").Check(level, string(message)); ce != nil {
		ce.Write(zap.ByteString("target", target))
	}
}

func (e *Engine) extLoggingMaxLevel(ctx context.Context, _ api.Module, stack []uint64) {
	mustInstance(ctx, "ext_logging_max_level_version_1")
	stack[0] = api.EncodeU32(rtapi.HostLevel(e.cfg.GuestLogLevel))
}
