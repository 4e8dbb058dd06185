package executive

import (
	"go.uber.org/zap"

	"github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/storage"
	"github.com/wippyai/polkawasm/types"
)

// InherentExtrinsics builds the inherent extrinsics for a new block from
// data. The timestamp is raised to the minimum allowed by the stored one.
func (x *Executive) InherentExtrinsics(data *types.InherentData) (types.Extrinsics, error) {
	ts, err := data.TimestampData()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInherent, err, "timestamp inherent")
	}

	prev, ok, err := storage.GetU64(x.store, TimestampNowKey)
	if err != nil {
		return nil, err
	}
	if ok && ts < prev+x.cfg.MinimumPeriod {
		ts = prev + x.cfg.MinimumPeriod
	}

	return types.Extrinsics{types.NewUnsigned(TimestampCall(ts))}, nil
}

// CheckInherents validates the inherent extrinsics at the head of block
// against data. Checking stops at the first extrinsic that is not an
// inherent.
func (x *Executive) CheckInherents(block *types.Block, data *types.InherentData) (types.CheckInherentsResult, error) {
	result := types.NewCheckInherentsResult()

	for _, ext := range block.Extrinsics {
		call, err := ext.DecodeCall()
		if err != nil || !isInherent(call) {
			break
		}

		inherentErr, err := x.checkTimestamp(call, data)
		if err != nil {
			return types.CheckInherentsResult{}, err
		}
		if inherentErr == nil {
			continue
		}
		Logger().Debug("inherent check failed", zap.Error(inherentErr))
		if err := result.PutError(types.TimestampInherent, inherentErr); err != nil {
			return types.CheckInherentsResult{}, err
		}
		if result.FatalError {
			break
		}
	}

	return result, nil
}

func (x *Executive) checkTimestamp(call types.Call, data *types.InherentData) (*types.TimestampError, error) {
	d := scale.NewDecoder(call.Args)
	t, err := d.Compact()
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return &types.TimestampError{Kind: types.TimestampInvalid, Message: "undecodable timestamp.set"}, nil
	}

	local, err := data.TimestampData()
	if err != nil {
		return &types.TimestampError{Kind: types.TimestampInvalid, Message: "timestamp inherent data not found"}, nil
	}
	if t > local+x.cfg.MaxTimestampDrift {
		return &types.TimestampError{Kind: types.TimestampTooFarInFuture}, nil
	}

	prev, ok, err := storage.GetU64(x.store, TimestampNowKey)
	if err != nil {
		return nil, err
	}
	if ok && t < prev+x.cfg.MinimumPeriod {
		return &types.TimestampError{Kind: types.TimestampValidAt, ValidAt: prev + x.cfg.MinimumPeriod}, nil
	}
	return nil, nil
}

func isInherent(call types.Call) bool {
	return call.Module == ModuleTimestamp && call.Function == TimestampSet
}

// ensureInherentsFirst rejects a block with an inherent after any other
// extrinsic. Undecodable extrinsics count as non-inherent.
func ensureInherentsFirst(block *types.Block) error {
	seenOther := false
	for i, ext := range block.Extrinsics {
		call, err := ext.DecodeCall()
		if err != nil || !isInherent(call) {
			seenOther = true
			continue
		}
		if seenOther {
			return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
				Path("extrinsics").
				Value(i).
				Detail("inherent extrinsic %d follows a non-inherent one", i).
				Build()
		}
	}
	return nil
}
