package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/allocator"
	rterrors "github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/executive"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/storage"
	"github.com/wippyai/polkawasm/types"
)

var errTrap = &rterrors.Error{Phase: rterrors.PhaseRuntime, Kind: rterrors.KindTrap}

// testHost drives a Runtime the way a wasm host does: arguments are placed
// in host-owned buffers and results are read and released after the call.
type testHost struct {
	t     *testing.T
	arena *allocator.Arena
	store *storage.Overlay
	rt    *Runtime
}

func newTestHost(t *testing.T, cfg Config) *testHost {
	t.Helper()
	arena := allocator.NewArena(2, 16)
	store := storage.NewOverlay(storage.NewMemBackend())
	rt, err := New(cfg, arena, arena, store)
	require.NoError(t, err)
	return &testHost{t: t, arena: arena, store: store, rt: rt}
}

func (h *testHost) call(name string, args []byte) ([]byte, error) {
	h.t.Helper()
	ptr, err := h.arena.Place(args)
	require.NoError(h.t, err)
	defer func() {
		if ptr != 0 {
			h.arena.Release(ptr)
		}
	}()

	ps, err := h.rt.Invoke(name, ptr, uint32(len(args)))
	if err != nil {
		return nil, err
	}
	ep, ok := abi.LookupEntryPoint(name)
	require.True(h.t, ok)
	if ep.Void {
		assert.Zero(h.t, uint64(ps))
		return nil, nil
	}

	rptr, rsize := ps.Unpack()
	require.NotZero(h.t, rptr)
	if ptr != 0 {
		assert.True(h.t, rptr >= ptr+uint32(len(args)) || rptr+rsize <= ptr, "result aliases arguments")
	}
	out, err := h.arena.Bytes(rptr, rsize)
	require.NoError(h.t, err)
	h.arena.Release(rptr)
	return out, nil
}

func (h *testHost) mustCall(name string, args []byte) []byte {
	h.t.Helper()
	out, err := h.call(name, args)
	require.NoError(h.t, err)
	return out
}

func (h *testHost) assertNoLeaks() {
	h.t.Helper()
	assert.Empty(h.t, h.arena.Outstanding())
}

func encodeHeader(hdr types.Header) []byte {
	return scale.Marshal(&hdr)
}

func encodeExtrinsic(x types.Extrinsic) []byte {
	return scale.Marshal(&x)
}

func TestVersion(t *testing.T) {
	h := newTestHost(t, DefaultConfig())

	out := h.mustCall(abi.CoreVersion, nil)
	var v types.VersionData
	require.NoError(t, scale.Unmarshal(out, &v))
	assert.Equal(t, DefaultVersion(), v)

	ver, ok := v.ApiVersion(types.NewApiItem(CoreAPI, 0).ID)
	assert.True(t, ok)
	assert.Equal(t, uint32(CoreAPIVersion), ver)

	assert.Equal(t, out, h.mustCall(abi.CoreVersion, nil), "version is pure")
	h.assertNoLeaks()
}

func TestVersion_Custom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = types.VersionData{
		SpecName: "test", ImplName: "impl",
		AuthoringVersion: 1, SpecVersion: 2, ImplVersion: 1,
		TransactionVersion: 1, StateVersion: 1,
	}
	h := newTestHost(t, cfg)

	var v types.VersionData
	require.NoError(t, scale.Unmarshal(h.mustCall(abi.CoreVersion, nil), &v))
	assert.Equal(t, cfg.Version, v)
}

func TestBlockProduction(t *testing.T) {
	h := newTestHost(t, DefaultConfig())

	h.mustCall(abi.CoreInitializeBlock, encodeHeader(types.Header{Number: 1}))

	var data types.InherentData
	require.NoError(t, data.PutTimestamp(6_000))
	var inherents types.Extrinsics
	require.NoError(t, scale.Unmarshal(h.mustCall(abi.BlockBuilderInherentExtrinsics, scale.Marshal(&data)), &inherents))
	require.Len(t, inherents, 1)

	xs := append(inherents, types.NewUnsigned(executive.SetStorageCall(storage.KV{Key: []byte("k"), Value: []byte("v")})))
	for _, x := range xs {
		var res types.ApplyExtrinsicResult
		require.NoError(t, scale.Unmarshal(h.mustCall(abi.BlockBuilderApplyExtrinsic, encodeExtrinsic(x)), &res))
		assert.True(t, res.Ok())
	}

	var hdr types.Header
	require.NoError(t, scale.Unmarshal(h.mustCall(abi.BlockBuilderFinalizeBlock, nil), &hdr))
	assert.Equal(t, uint64(1), hdr.Number)
	assert.Equal(t, storage.OrderedRoot([][]byte{xs[0], xs[1]}), hdr.ExtrinsicsRoot)

	_, err := h.call(abi.BlockBuilderFinalizeBlock, nil)
	assert.ErrorIs(t, err, errTrap, "second finalize traps")

	block := types.Block{Header: hdr, Extrinsics: xs}
	var check types.CheckInherentsResult
	other := newTestHost(t, DefaultConfig())
	require.NoError(t, scale.Unmarshal(other.mustCall(abi.BlockBuilderCheckInherents, CheckInherentsArgs(&block, &data)), &check))
	assert.True(t, check.Okay)

	other.mustCall(abi.CoreInitializeBlock, encodeHeader(hdr))
	other.mustCall(abi.CoreExecuteBlock, scale.Marshal(&block))
	assert.Equal(t, executive.StateFinalized, other.rt.Executive().State())

	h.assertNoLeaks()
	other.assertNoLeaks()
}

func TestExecuteBlock_BeforeInitializeTraps(t *testing.T) {
	h := newTestHost(t, DefaultConfig())
	block := types.Block{}

	_, err := h.call(abi.CoreExecuteBlock, scale.Marshal(&block))
	require.ErrorIs(t, err, errTrap)
	assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseRuntime, Kind: rterrors.KindInvalidState})
	h.assertNoLeaks()
}

func TestExecuteBlock_EmptyBlock(t *testing.T) {
	h := newTestHost(t, DefaultConfig())
	block := types.Block{Header: types.Header{
		Number:         0,
		StateRoot:      storage.StateRoot(nil),
		ExtrinsicsRoot: storage.OrderedRoot(nil),
	}}

	h.mustCall(abi.CoreInitializeBlock, encodeHeader(block.Header))
	h.mustCall(abi.CoreExecuteBlock, scale.Marshal(&block))

	pairs, err := h.store.Pairs()
	require.NoError(t, err)
	assert.Empty(t, pairs)
	h.assertNoLeaks()
}

func TestExecuteBlock_RootMismatchTraps(t *testing.T) {
	h := newTestHost(t, DefaultConfig())
	block := types.Block{Header: types.Header{
		Number:         1,
		StateRoot:      types.Hash{0xaa},
		ExtrinsicsRoot: storage.OrderedRoot(nil),
	}}

	h.mustCall(abi.CoreInitializeBlock, encodeHeader(block.Header))
	_, err := h.call(abi.CoreExecuteBlock, scale.Marshal(&block))
	require.ErrorIs(t, err, errTrap)
	assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseRuntime, Kind: rterrors.KindRootMismatch})
	h.assertNoLeaks()
}

func TestApplyExtrinsic_Malformed(t *testing.T) {
	h := newTestHost(t, DefaultConfig())
	h.mustCall(abi.CoreInitializeBlock, encodeHeader(types.Header{Number: 1}))

	t.Run("payload decode failure is a result", func(t *testing.T) {
		out := h.mustCall(abi.BlockBuilderApplyExtrinsic, encodeExtrinsic(types.Extrinsic{0x04, 0x00}))
		var res types.ApplyExtrinsicResult
		require.NoError(t, scale.Unmarshal(out, &res))
		require.False(t, res.Ok())
		assert.Equal(t, types.DispatchUndecodable, res.Err.Kind)
	})

	t.Run("length prefix beyond the buffer traps", func(t *testing.T) {
		_, err := h.call(abi.BlockBuilderApplyExtrinsic, []byte{0x28, 0x04, 0x00})
		require.ErrorIs(t, err, errTrap)
		assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseABI, Kind: rterrors.KindInvalidInput})
	})

	t.Run("trailing argument bytes trap", func(t *testing.T) {
		args := append(encodeExtrinsic(types.NewUnsigned(executive.RemarkCall(nil))), 0x00)
		_, err := h.call(abi.BlockBuilderApplyExtrinsic, args)
		assert.ErrorIs(t, err, errTrap)
	})

	h.assertNoLeaks()
}

func TestApplyExtrinsic_StateTraps(t *testing.T) {
	h := newTestHost(t, DefaultConfig())
	_, err := h.call(abi.BlockBuilderApplyExtrinsic, encodeExtrinsic(types.NewUnsigned(executive.RemarkCall(nil))))
	assert.ErrorIs(t, err, errTrap)
	h.assertNoLeaks()
}

func TestInherentExtrinsics_DuplicatePolicy(t *testing.T) {
	// Two entries for timstap0: 8-byte values 1000 and 2000.
	var e scale.Encoder
	e.PutCompact(2)
	for _, ms := range []uint64{1_000, 2_000} {
		e.PutFixed(types.TimestampInherent[:])
		var v scale.Encoder
		v.PutU64(ms)
		e.PutBytes(v.Bytes())
	}
	args := e.Bytes()

	t.Run("reject", func(t *testing.T) {
		h := newTestHost(t, DefaultConfig())
		_, err := h.call(abi.BlockBuilderInherentExtrinsics, args)
		require.ErrorIs(t, err, errTrap)
		assert.ErrorIs(t, err, &rterrors.DuplicateKeyError{})
		h.assertNoLeaks()
	})

	t.Run("overwrite", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Codec.DuplicateKeys = scale.OverwriteDuplicates
		h := newTestHost(t, cfg)

		var xs types.Extrinsics
		require.NoError(t, scale.Unmarshal(h.mustCall(abi.BlockBuilderInherentExtrinsics, args), &xs))
		assert.Equal(t, types.Extrinsics{types.NewUnsigned(executive.TimestampCall(2_000))}, xs)
		h.assertNoLeaks()
	})
}

func TestCompactPolicy(t *testing.T) {
	// Header number 1 encoded in two-byte mode.
	var e scale.Encoder
	hash := types.Hash{}
	hash.EncodeTo(&e)
	e.PutFixed([]byte{0x05, 0x00})
	hash.EncodeTo(&e)
	hash.EncodeTo(&e)
	e.PutCompact(0)
	args := e.Bytes()

	strict := newTestHost(t, DefaultConfig())
	_, err := strict.call(abi.CoreInitializeBlock, args)
	assert.ErrorIs(t, err, scale.ErrNonCanonicalCompact)

	cfg := DefaultConfig()
	cfg.Codec.StrictCompact = false
	lenient := newTestHost(t, cfg)
	lenient.mustCall(abi.CoreInitializeBlock, args)
	assert.Equal(t, executive.StateInitialized, lenient.rt.Executive().State())
}

func TestRandomSeed(t *testing.T) {
	h := newTestHost(t, DefaultConfig())
	var idle types.Hash
	require.NoError(t, scale.Unmarshal(h.mustCall(abi.BlockBuilderRandomSeed, nil), &idle))

	h.mustCall(abi.CoreInitializeBlock, encodeHeader(types.Header{Number: 4, ParentHash: types.Hash{1}}))
	var seeded types.Hash
	require.NoError(t, scale.Unmarshal(h.mustCall(abi.BlockBuilderRandomSeed, nil), &seeded))
	assert.NotEqual(t, idle, seeded)
	assert.Equal(t, h.rt.Executive().RandomSeed(), seeded)
	h.assertNoLeaks()
}

func TestCall_PanicsWithTrap(t *testing.T) {
	h := newTestHost(t, DefaultConfig())

	assert.PanicsWithError(t, rterrors.Trap(abi.BlockBuilderFinalizeBlock,
		rterrors.InvalidState("finalize_block", "Idle")).Error(), func() {
		h.rt.Call(abi.BlockBuilderFinalizeBlock, 0, 0)
	})

	_, err := h.rt.Invoke("Core_unknown", 0, 0)
	require.ErrorIs(t, err, errTrap)
	assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseRuntime, Kind: rterrors.KindNotFound})
}

func TestCall_ArgumentsOutOfBounds(t *testing.T) {
	h := newTestHost(t, DefaultConfig())
	_, err := h.rt.Invoke(abi.CoreInitializeBlock, h.arena.Size()-4, 64)
	require.ErrorIs(t, err, errTrap)
	assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseABI, Kind: rterrors.KindOutOfBounds})
	h.assertNoLeaks()
}
