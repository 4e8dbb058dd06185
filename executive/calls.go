package executive

import (
	"go.uber.org/zap"

	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/storage"
	"github.com/wippyai/polkawasm/types"
)

// Module indices.
const (
	ModuleSystem    uint8 = 0
	ModuleTimestamp uint8 = 3
)

// Function indices.
const (
	SystemRemark      uint8 = 0
	SystemSetStorage  uint8 = 1
	SystemKillStorage uint8 = 2

	TimestampSet uint8 = 0
)

// Timestamp module error codes reported as DispatchModule.
const (
	TimestampErrAlreadySet uint8 = 0
	TimestampErrTooEarly   uint8 = 1
)

// TimestampNowKey holds the timestamp of the current block.
var TimestampNowKey = storage.Key("Timestamp", "Now")

type callKey struct {
	module, function uint8
}

// dispatchFunc applies a call. The first result is a recoverable dispatch
// failure; the error is a fatal storage failure.
type dispatchFunc func(x *Executive, args *scale.Decoder) (*types.DispatchError, error)

var calls = map[callKey]dispatchFunc{
	{ModuleSystem, SystemRemark}:      systemRemark,
	{ModuleSystem, SystemSetStorage}:  systemSetStorage,
	{ModuleSystem, SystemKillStorage}: systemKillStorage,
	{ModuleTimestamp, TimestampSet}:   timestampSet,
}

func undecodable(err error) *types.DispatchError {
	return &types.DispatchError{Kind: types.DispatchUndecodable, Message: err.Error()}
}

func systemRemark(_ *Executive, args *scale.Decoder) (*types.DispatchError, error) {
	if _, err := args.Bytes(); err != nil {
		return undecodable(err), nil
	}
	return nil, nil
}

func systemSetStorage(x *Executive, args *scale.Decoder) (*types.DispatchError, error) {
	items, err := scale.Seq(args, func(d *scale.Decoder) (storage.KV, error) {
		k, err := d.Bytes()
		if err != nil {
			return storage.KV{}, err
		}
		v, err := d.Bytes()
		return storage.KV{Key: k, Value: v}, err
	})
	if err != nil {
		return undecodable(err), nil
	}
	for _, kv := range items {
		if len(kv.Key) == 0 {
			return &types.DispatchError{Kind: types.DispatchOther, Message: "empty storage key"}, nil
		}
		if err := x.store.Set(kv.Key, kv.Value); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func systemKillStorage(x *Executive, args *scale.Decoder) (*types.DispatchError, error) {
	keys, err := scale.BytesSeq(args)
	if err != nil {
		return undecodable(err), nil
	}
	for _, k := range keys {
		if len(k) == 0 {
			return &types.DispatchError{Kind: types.DispatchOther, Message: "empty storage key"}, nil
		}
		if err := x.store.Clear(k); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// timestampSet stores the block timestamp. It may run once per block and
// must advance the previous timestamp by at least MinimumPeriod.
func timestampSet(x *Executive, args *scale.Decoder) (*types.DispatchError, error) {
	now, err := args.Compact()
	if err != nil {
		return undecodable(err), nil
	}
	if x.block.timestampSet {
		return &types.DispatchError{Kind: types.DispatchModule, Module: ModuleTimestamp, Code: TimestampErrAlreadySet}, nil
	}

	prev, ok, err := storage.GetU64(x.store, TimestampNowKey)
	if err != nil {
		return nil, err
	}
	if ok && now < prev+x.cfg.MinimumPeriod {
		Logger().Debug("timestamp.set rejected: too early",
			zap.Uint64("now", now),
			zap.Uint64("minimum", prev+x.cfg.MinimumPeriod))
		return &types.DispatchError{Kind: types.DispatchModule, Module: ModuleTimestamp, Code: TimestampErrTooEarly}, nil
	}

	if err := storage.PutU64(x.store, TimestampNowKey, now); err != nil {
		return nil, err
	}
	x.block.timestampSet = true
	return nil, nil
}

// TimestampCall returns the timestamp.set call for now.
func TimestampCall(now uint64) types.Call {
	var e scale.Encoder
	e.PutCompact(now)
	return types.Call{Module: ModuleTimestamp, Function: TimestampSet, Args: e.Bytes()}
}

// RemarkCall returns a system.remark call.
func RemarkCall(remark []byte) types.Call {
	var e scale.Encoder
	e.PutBytes(remark)
	return types.Call{Module: ModuleSystem, Function: SystemRemark, Args: e.Bytes()}
}

// SetStorageCall returns a system.set_storage call.
func SetStorageCall(items ...storage.KV) types.Call {
	var e scale.Encoder
	scale.PutSeq(&e, items, func(e *scale.Encoder, kv storage.KV) {
		e.PutBytes(kv.Key)
		e.PutBytes(kv.Value)
	})
	return types.Call{Module: ModuleSystem, Function: SystemSetStorage, Args: e.Bytes()}
}

// KillStorageCall returns a system.kill_storage call.
func KillStorageCall(keys ...[]byte) types.Call {
	var e scale.Encoder
	scale.PutBytesSeq(&e, keys)
	return types.Call{Module: ModuleSystem, Function: SystemKillStorage, Args: e.Bytes()}
}
