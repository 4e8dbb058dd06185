package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/engine"
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/types"
)

// Instance is a running runtime binary.
type Instance struct {
	module *Module
	inst   *engine.Instance
}

// Engine returns the engine-level instance.
func (i *Instance) Engine() *engine.Instance {
	return i.inst
}

// Call invokes an entry point with encoded arguments. Void entry points
// return nil.
func (i *Instance) Call(ctx context.Context, name string, args []byte) ([]byte, error) {
	ep, ok := abi.LookupEntryPoint(name)
	if !ok {
		for _, exp := range i.module.exports {
			if exp.Name == name {
				ep, ok = exp.EntryPoint, true
				break
			}
		}
	}
	if !ok {
		return nil, errors.NotFound(errors.PhaseRuntime, "export", name)
	}

	in, err := i.inst.Place(args)
	if err != nil {
		return nil, err
	}
	defer in.Release()

	results, err := i.inst.Call(ctx, name, uint64(in.Ptr()), uint64(in.Size()))
	if err != nil {
		return nil, err
	}
	if ep.Void {
		return nil, nil
	}
	if len(results) != 1 {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidData).
			Detail("%s returned %d values", name, len(results)).
			Build()
	}

	out := abi.PointerSize(results[0])
	if overlaps(in.PointerSize(), out) {
		return nil, errors.New(errors.PhaseABI, errors.KindInvalidData).
			Detail("%s result %s aliases its arguments %s", name, out, in.PointerSize()).
			Build()
	}
	data, err := i.inst.Take(out)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseABI, errors.KindOutOfBounds, err, "read "+name+" result")
	}
	Logger().Debug("call",
		zap.String("entry", name),
		zap.Int("args", len(args)),
		zap.Int("result", len(data)))
	return data, nil
}

func overlaps(a, b abi.PointerSize) bool {
	if a.Size() == 0 || b.Size() == 0 {
		return a.Ptr() == b.Ptr() && b.Ptr() != 0
	}
	aEnd := uint64(a.Ptr()) + uint64(a.Size())
	bEnd := uint64(b.Ptr()) + uint64(b.Size())
	return uint64(a.Ptr()) < bEnd && uint64(b.Ptr()) < aEnd
}

func (i *Instance) decode(name string, data []byte, v scale.Decodable) error {
	if err := scale.UnmarshalWithOptions(data, v, i.module.runtime.cfg.Codec); err != nil {
		return errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "decode "+name+" result")
	}
	return nil
}

func (i *Instance) call(ctx context.Context, name string, args []byte, out scale.Decodable) error {
	data, err := i.Call(ctx, name, args)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return i.decode(name, data, out)
}

// Version calls Core_version.
func (i *Instance) Version(ctx context.Context) (types.VersionData, error) {
	var v types.VersionData
	err := i.call(ctx, abi.CoreVersion, nil, &v)
	return v, err
}

// InitializeBlock calls Core_initialize_block.
func (i *Instance) InitializeBlock(ctx context.Context, header *types.Header) error {
	return i.call(ctx, abi.CoreInitializeBlock, scale.Marshal(header), nil)
}

// ExecuteBlock calls Core_execute_block.
func (i *Instance) ExecuteBlock(ctx context.Context, block *types.Block) error {
	return i.call(ctx, abi.CoreExecuteBlock, scale.Marshal(block), nil)
}

// ApplyExtrinsic calls BlockBuilder_apply_extrinsic.
func (i *Instance) ApplyExtrinsic(ctx context.Context, ext types.Extrinsic) (types.ApplyExtrinsicResult, error) {
	var res types.ApplyExtrinsicResult
	err := i.call(ctx, abi.BlockBuilderApplyExtrinsic, scale.Marshal(&ext), &res)
	return res, err
}

// FinalizeBlock calls BlockBuilder_finalize_block.
func (i *Instance) FinalizeBlock(ctx context.Context) (types.Header, error) {
	var h types.Header
	err := i.call(ctx, abi.BlockBuilderFinalizeBlock, nil, &h)
	return h, err
}

// InherentExtrinsics calls BlockBuilder_inherent_extrinisics.
func (i *Instance) InherentExtrinsics(ctx context.Context, data *types.InherentData) (types.Extrinsics, error) {
	var xs types.Extrinsics
	err := i.call(ctx, abi.BlockBuilderInherentExtrinsics, scale.Marshal(data), &xs)
	return xs, err
}

// CheckInherents calls BlockBuilder_check_inherents.
func (i *Instance) CheckInherents(ctx context.Context, block *types.Block, data *types.InherentData) (types.CheckInherentsResult, error) {
	var e scale.Encoder
	e.Put(block)
	e.Put(data)
	var res types.CheckInherentsResult
	err := i.call(ctx, abi.BlockBuilderCheckInherents, e.Bytes(), &res)
	return res, err
}

// RandomSeed calls BlockBuilder_random_seed.
func (i *Instance) RandomSeed(ctx context.Context) (types.Hash, error) {
	var h types.Hash
	err := i.call(ctx, abi.BlockBuilderRandomSeed, nil, &h)
	return h, err
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.inst.Close(ctx)
}
