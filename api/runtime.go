// Package api is the runtime's entry point surface: the Core and
// BlockBuilder APIs bound to names, decoded from linear memory and encoded
// back into a fresh buffer owned by the host.
//
// Runtime.Call is what a wasm export invokes. Any failure becomes a panic
// carrying an *errors.Error of kind trap, which aborts the wasm call.
// Runtime.Invoke runs the same path and recovers the trap as an error.
package api

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/polkawasm"
	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/executive"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/storage"
	"github.com/wippyai/polkawasm/types"
)

// Runtime serves the entry points of one instance.
type Runtime struct {
	cfg       Config
	marshaler *abi.Marshaler
	exec      *executive.Executive
	exports   *Exports
}

// New creates a runtime over guest memory, an allocator and storage.
func New(cfg Config, mem polkawasm.Memory, alloc polkawasm.Allocator, store storage.Storage) (*Runtime, error) {
	r := &Runtime{
		cfg:       cfg,
		marshaler: abi.NewMarshaler(mem, alloc),
		exec:      executive.New(store, cfg.Executive),
	}

	exports, err := NewExports(map[string]HandlerFunc{
		abi.CoreVersion:                    r.version,
		abi.CoreInitializeBlock:            r.initializeBlock,
		abi.CoreExecuteBlock:               r.executeBlock,
		abi.BlockBuilderApplyExtrinsic:     r.applyExtrinsic,
		abi.BlockBuilderFinalizeBlock:      r.finalizeBlock,
		abi.BlockBuilderInherentExtrinsics: r.inherentExtrinsics,
		abi.BlockBuilderCheckInherents:     r.checkInherents,
		abi.BlockBuilderRandomSeed:         r.randomSeed,
	})
	if err != nil {
		return nil, err
	}
	r.exports = exports
	return r, nil
}

// Config returns the runtime configuration.
func (r *Runtime) Config() Config {
	return r.cfg
}

// Exports returns the entry point table.
func (r *Runtime) Exports() *Exports {
	return r.exports
}

// Executive returns the block state machine.
func (r *Runtime) Executive() *executive.Executive {
	return r.exec
}

// Call runs the named entry point over the argument region and returns the
// packed result. Void entry points return 0. It panics with a trap error on
// any failure.
func (r *Runtime) Call(name string, ptr, size uint32) uint64 {
	ps, err := r.call(name, ptr, size)
	if err != nil {
		Logger().Error("entry point trapped", zap.String("entry", name), zap.Error(err))
		panic(errors.Trap(name, err))
	}
	return uint64(ps)
}

// Invoke is Call with the trap recovered as an error.
func (r *Runtime) Invoke(name string, ptr, size uint32) (ps abi.PointerSize, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			err = errors.Trap(name, fmt.Errorf("%v", rec))
		}
	}()
	return abi.PointerSize(r.Call(name, ptr, size)), nil
}

func (r *Runtime) call(name string, ptr, size uint32) (abi.PointerSize, error) {
	exp, err := r.exports.Lookup(name)
	if err != nil {
		return 0, err
	}

	if exp.Void {
		return 0, r.marshaler.CallVoid(ptr, size, func(args []byte) error {
			_, err := exp.Handler(args)
			return err
		})
	}
	ps, err := r.marshaler.Call(ptr, size, exp.Handler)
	if err == nil && exp.Mutates {
		Logger().Debug("entry point returned",
			zap.String("entry", name),
			zap.Stringer("result", ps),
			zap.Stringer("state", r.exec.State()))
	}
	return ps, err
}

// decode reads exactly one value from args using the codec options.
func (r *Runtime) decode(args []byte, v scale.Decodable) error {
	if err := scale.UnmarshalWithOptions(args, v, r.cfg.Codec); err != nil {
		return errors.Wrap(errors.PhaseABI, errors.KindInvalidInput, err, "decode arguments")
	}
	return nil
}

func (r *Runtime) version([]byte) ([]byte, error) {
	return scale.Marshal(&r.cfg.Version), nil
}

func (r *Runtime) initializeBlock(args []byte) ([]byte, error) {
	var header types.Header
	if err := r.decode(args, &header); err != nil {
		return nil, err
	}
	return nil, r.exec.InitializeBlock(&header)
}

func (r *Runtime) executeBlock(args []byte) ([]byte, error) {
	var block types.Block
	if err := r.decode(args, &block); err != nil {
		return nil, err
	}
	return nil, r.exec.ExecuteBlock(&block)
}

func (r *Runtime) applyExtrinsic(args []byte) ([]byte, error) {
	var ext types.Extrinsic
	if err := r.decode(args, &ext); err != nil {
		return nil, err
	}
	res, err := r.exec.ApplyExtrinsic(ext)
	if err != nil {
		return nil, err
	}
	return scale.Marshal(&res), nil
}

func (r *Runtime) finalizeBlock([]byte) ([]byte, error) {
	header, err := r.exec.FinalizeBlock()
	if err != nil {
		return nil, err
	}
	return scale.Marshal(&header), nil
}

func (r *Runtime) inherentExtrinsics(args []byte) ([]byte, error) {
	var data types.InherentData
	if err := r.decode(args, &data); err != nil {
		return nil, err
	}
	xs, err := r.exec.InherentExtrinsics(&data)
	if err != nil {
		return nil, err
	}
	return scale.Marshal(&xs), nil
}

func (r *Runtime) checkInherents(args []byte) ([]byte, error) {
	var in checkInherentsArgs
	if err := r.decode(args, &in); err != nil {
		return nil, err
	}
	res, err := r.exec.CheckInherents(&in.Block, &in.Data)
	if err != nil {
		return nil, err
	}
	return scale.Marshal(&res), nil
}

func (r *Runtime) randomSeed([]byte) ([]byte, error) {
	seed := r.exec.RandomSeed()
	return scale.Marshal(&seed), nil
}

// checkInherentsArgs is the (block, data) argument tuple of check_inherents.
type checkInherentsArgs struct {
	Block types.Block
	Data  types.InherentData
}

func (a *checkInherentsArgs) EncodeTo(e *scale.Encoder) {
	a.Block.EncodeTo(e)
	a.Data.EncodeTo(e)
}

func (a *checkInherentsArgs) DecodeFrom(d *scale.Decoder) error {
	if err := a.Block.DecodeFrom(d); err != nil {
		return err
	}
	return a.Data.DecodeFrom(d)
}

// CheckInherentsArgs encodes the check_inherents argument tuple.
func CheckInherentsArgs(block *types.Block, data *types.InherentData) []byte {
	return scale.Marshal(&checkInherentsArgs{Block: *block, Data: *data})
}
