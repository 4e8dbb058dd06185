// Package executive implements block processing for the runtime: the
// per-instance block state machine, extrinsic dispatch and the timestamp
// inherent.
//
// An Executive moves through Idle, Initialized, Executing and Finalized.
// Every operation that is not valid in the current state returns an
// *errors.Error of kind invalid_state; the api package turns it into a trap.
package executive

import (
	"go.uber.org/zap"

	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/hashing"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/storage"
	"github.com/wippyai/polkawasm/types"
)

// blockContext is the block under construction.
type blockContext struct {
	parentHash   types.Hash
	number       uint64
	digest       types.Digest
	extrinsics   [][]byte
	timestampSet bool
}

// Executive drives one runtime instance through the block lifecycle.
// It is not safe for concurrent use.
type Executive struct {
	store storage.Storage
	cfg   Config
	state State
	block blockContext

	lastHash   types.Hash
	lastNumber uint64
	lastKnown  bool
}

// New creates an executive in the Idle state.
func New(store storage.Storage, cfg Config) *Executive {
	return &Executive{store: store, cfg: cfg}
}

// State returns the current lifecycle state.
func (x *Executive) State() State {
	return x.state
}

// Config returns the chain constants.
func (x *Executive) Config() Config {
	return x.cfg
}

// LastFinalized returns the hash and number of the last finalized block.
func (x *Executive) LastFinalized() (types.Hash, uint64, bool) {
	return x.lastHash, x.lastNumber, x.lastKnown
}

func (x *Executive) require(op string, states ...State) error {
	if !x.state.allows(states...) {
		return errors.InvalidState(op, x.state.String())
	}
	return nil
}

// InitializeBlock starts a new block from header. Only the parent hash,
// number and digest are used.
func (x *Executive) InitializeBlock(header *types.Header) error {
	if err := x.require("initialize_block", StateIdle, StateInitialized, StateFinalized); err != nil {
		return err
	}
	x.reset(header)
	x.state = StateInitialized
	Logger().Debug("block initialized",
		zap.Uint64("number", header.Number),
		zap.Stringer("parent", header.ParentHash))
	return nil
}

func (x *Executive) reset(header *types.Header) {
	x.block = blockContext{
		parentHash: header.ParentHash,
		number:     header.Number,
		digest:     types.Digest{Items: append([]types.DigestItem(nil), header.Digest.Items...)},
	}
}

// ApplyExtrinsic dispatches one extrinsic into the current block. A
// dispatch failure is reported in the result and leaves storage untouched;
// the returned error is reserved for invalid state and storage faults.
func (x *Executive) ApplyExtrinsic(ext types.Extrinsic) (types.ApplyExtrinsicResult, error) {
	if err := x.require("apply_extrinsic", StateInitialized, StateExecuting); err != nil {
		return types.ApplyExtrinsicResult{}, err
	}
	x.state = StateExecuting
	return x.apply(ext)
}

func (x *Executive) apply(ext types.Extrinsic) (types.ApplyExtrinsicResult, error) {
	call, err := ext.DecodeCall()
	if err != nil {
		return types.ApplyExtrinsicResult{Err: undecodable(err)}, nil
	}

	fn, ok := calls[callKey{call.Module, call.Function}]
	if !ok {
		return types.ApplyExtrinsicResult{Err: &types.DispatchError{
			Kind:   types.DispatchUnknownCall,
			Module: call.Module,
			Code:   call.Function,
		}}, nil
	}

	x.store.StartTransaction()
	args := scale.NewDecoder(call.Args)
	dispatchErr, err := fn(x, args)
	if err == nil && dispatchErr == nil {
		if finishErr := args.Finish(); finishErr != nil {
			dispatchErr = undecodable(finishErr)
		}
	}
	if err != nil || dispatchErr != nil {
		if rbErr := x.store.RollbackTransaction(); rbErr != nil && err == nil {
			err = rbErr
		}
		if err != nil {
			return types.ApplyExtrinsicResult{}, errors.Wrap(errors.PhaseDispatch, errors.KindInvalidData, err, "dispatch")
		}
		Logger().Debug("extrinsic failed",
			zap.Uint8("module", call.Module),
			zap.Uint8("function", call.Function),
			zap.Error(dispatchErr))
		return types.ApplyExtrinsicResult{Err: dispatchErr}, nil
	}
	if err := x.store.CommitTransaction(); err != nil {
		return types.ApplyExtrinsicResult{}, errors.Wrap(errors.PhaseDispatch, errors.KindInvalidData, err, "commit")
	}

	x.block.extrinsics = append(x.block.extrinsics, append([]byte(nil), ext...))
	return types.ApplyExtrinsicResult{}, nil
}

// FinalizeBlock closes the current block and returns its header.
func (x *Executive) FinalizeBlock() (types.Header, error) {
	if err := x.require("finalize_block", StateExecuting); err != nil {
		return types.Header{}, err
	}
	header, err := x.seal()
	if err != nil {
		return types.Header{}, err
	}
	x.finish(&header)
	return header, nil
}

// seal computes the header of the block under construction.
func (x *Executive) seal() (types.Header, error) {
	extrinsicsRoot, err := x.store.OrderedRoot(x.block.extrinsics)
	if err != nil {
		return types.Header{}, errors.Wrap(errors.PhaseStorage, errors.KindInvalidData, err, "extrinsics root")
	}
	stateRoot, err := x.store.Root()
	if err != nil {
		return types.Header{}, errors.Wrap(errors.PhaseStorage, errors.KindInvalidData, err, "state root")
	}
	return types.Header{
		ParentHash:     x.block.parentHash,
		Number:         x.block.number,
		StateRoot:      stateRoot,
		ExtrinsicsRoot: extrinsicsRoot,
		Digest:         x.block.digest,
	}, nil
}

func (x *Executive) finish(header *types.Header) {
	x.lastHash = header.Hash()
	x.lastNumber = header.Number
	x.lastKnown = true
	x.state = StateFinalized
	Logger().Debug("block finalized",
		zap.Uint64("number", header.Number),
		zap.Stringer("hash", x.lastHash),
		zap.Int("extrinsics", len(x.block.extrinsics)))
}

// ExecuteBlock imports a complete block on top of the initialized context.
// Inherents must come first. Every extrinsic must dispatch successfully
// and the resulting header must match the supplied one. On failure storage
// is rolled back and the executive returns to Idle.
func (x *Executive) ExecuteBlock(block *types.Block) error {
	if err := x.require("execute_block", StateInitialized); err != nil {
		return err
	}

	if err := x.checkContext(&block.Header); err != nil {
		x.abort()
		return err
	}
	if err := ensureInherentsFirst(block); err != nil {
		x.abort()
		return err
	}

	x.reset(&block.Header)
	x.store.StartTransaction()
	header, err := x.executeExtrinsics(block)
	if err == nil {
		err = compareHeaders(&block.Header, &header)
	}
	if err != nil {
		if rbErr := x.store.RollbackTransaction(); rbErr != nil {
			Logger().Warn("rollback after failed block", zap.Error(rbErr))
		}
		x.abort()
		return err
	}
	if err := x.store.CommitTransaction(); err != nil {
		x.abort()
		return errors.Wrap(errors.PhaseStorage, errors.KindInvalidData, err, "commit block")
	}

	x.finish(&header)
	return nil
}

func (x *Executive) abort() {
	x.block = blockContext{}
	x.state = StateIdle
}

func (x *Executive) checkContext(h *types.Header) error {
	if h.Number != x.block.number || h.ParentHash != x.block.parentHash {
		return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Type("Header").
			Detail("block #%d with parent %s does not extend initialized #%d with parent %s",
				h.Number, h.ParentHash, x.block.number, x.block.parentHash).
			Build()
	}
	if x.lastKnown && h.ParentHash != x.lastHash {
		return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Type("Header").
			Detail("parent %s is not the last finalized block %s", h.ParentHash, x.lastHash).
			Build()
	}
	return nil
}

func (x *Executive) executeExtrinsics(block *types.Block) (types.Header, error) {
	for i, ext := range block.Extrinsics {
		res, err := x.apply(ext)
		if err != nil {
			return types.Header{}, err
		}
		if !res.Ok() {
			return types.Header{}, errors.New(errors.PhaseDispatch, errors.KindInvalidData).
				Path("extrinsics").
				Value(i).
				Detail("extrinsic %d failed", i).
				Cause(res.Err).
				Build()
		}
	}
	return x.seal()
}

func compareHeaders(want, got *types.Header) error {
	mismatch := func(field string, w, g types.Hash) error {
		return errors.New(errors.PhaseRuntime, errors.KindRootMismatch).
			Path("header", field).
			Detail("block has %s, computed %s", w, g).
			Build()
	}
	if want.StateRoot != got.StateRoot {
		return mismatch("state_root", want.StateRoot, got.StateRoot)
	}
	if want.ExtrinsicsRoot != got.ExtrinsicsRoot {
		return mismatch("extrinsics_root", want.ExtrinsicsRoot, got.ExtrinsicsRoot)
	}
	if string(scale.Marshal(&want.Digest)) != string(scale.Marshal(&got.Digest)) {
		return errors.New(errors.PhaseRuntime, errors.KindRootMismatch).
			Path("header", "digest").
			Detail("digest differs from the initialized block").
			Build()
	}
	return nil
}

// RandomSeed derives a seed from the current block context. It is the
// zero context while Idle.
func (x *Executive) RandomSeed() types.Hash {
	var e scale.Encoder
	e.PutCompact(x.block.number)
	return types.Hash(hashing.Blake2b256([]byte("random_seed"), x.block.parentHash[:], e.Bytes()))
}
