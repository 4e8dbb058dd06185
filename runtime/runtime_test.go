package runtime

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/polkawasm/abi"
	"github.com/wippyai/polkawasm/engine"
	rterrors "github.com/wippyai/polkawasm/errors"
	"github.com/wippyai/polkawasm/scale"
	"github.com/wippyai/polkawasm/storage"
	"github.com/wippyai/polkawasm/types"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func newStubInstance(t *testing.T) (*Instance, *storage.Overlay) {
	t.Helper()
	ctx := context.Background()

	rt, err := New(ctx, Config{Codec: scale.DefaultOptions()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	mod, err := rt.Load(ctx, readFixture(t, "stub.wasm"))
	require.NoError(t, err)

	store := storage.NewOverlay(storage.NewMemBackend())
	inst, err := mod.Instantiate(ctx, store)
	require.NoError(t, err)
	return inst, store
}

func assertNoLeaks(t *testing.T, inst *Instance) {
	t.Helper()
	assert.Zero(t, inst.Engine().Allocator().Live(), "outstanding heap buffers")
}

func TestLoad_Exports(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, Config{})
	require.NoError(t, err)
	defer rt.Close(ctx)

	mod, err := rt.Load(ctx, readFixture(t, "stub.wasm"))
	require.NoError(t, err)

	exports := mod.Exports()
	require.Len(t, exports, len(abi.EntryPoints))
	for _, exp := range exports {
		assert.True(t, exp.Known, exp.Name)
	}
}

func TestLoad_MissingExports(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, Config{})
	require.NoError(t, err)
	defer rt.Close(ctx)

	_, err = rt.Load(ctx, readFixture(t, "broken.wasm"))
	var missing *rterrors.MissingExportsError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseLoad, Kind: rterrors.KindMissingExport})

	reasons := make(map[string]string)
	for _, exp := range missing.Exports {
		reasons[exp.Name] = exp.Reason
	}
	assert.Len(t, reasons, len(abi.EntryPoints)+1)
	assert.Equal(t, "want (i32, i32) -> (i64), got (i32, i32) -> ()", reasons[abi.CoreVersion])
	assert.Equal(t, "", reasons[abi.BlockBuilderRandomSeed])
	assert.Equal(t, "memory not exported", reasons["memory"])
}

func TestLoad_RequiredSubset(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, Config{Required: []string{abi.CoreInitializeBlock}})
	require.NoError(t, err)
	defer rt.Close(ctx)

	_, err = rt.Load(ctx, readFixture(t, "broken.wasm"))
	var missing *rterrors.MissingExportsError
	require.True(t, errors.As(err, &missing))
	require.Len(t, missing.Exports, 2)
	assert.Equal(t, abi.CoreInitializeBlock, missing.Exports[0].Name)
	assert.Equal(t, "memory", missing.Exports[1].Name)
}

func TestLoad_InvalidBinary(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx, Config{})
	require.NoError(t, err)
	defer rt.Close(ctx)

	_, err = rt.Load(ctx, []byte("not wasm"))
	assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseLoad, Kind: rterrors.KindInvalidData})
}

func TestInstance_Version(t *testing.T) {
	inst, _ := newStubInstance(t)

	v, err := inst.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.VersionData{
		SpecName:           "stub",
		ImplName:           "stub",
		AuthoringVersion:   1,
		SpecVersion:        1,
		ImplVersion:        1,
		TransactionVersion: 1,
		StateVersion:       1,
	}, v)
	assertNoLeaks(t, inst)
}

func TestInstance_Echo(t *testing.T) {
	inst, _ := newStubInstance(t)
	ctx := context.Background()

	for _, args := range [][]byte{nil, {1}, make([]byte, 300)} {
		out, err := inst.Call(ctx, abi.BlockBuilderApplyExtrinsic, args)
		require.NoError(t, err)
		if len(args) == 0 {
			assert.Empty(t, out)
		} else {
			assert.Equal(t, args, out)
		}
	}
	assertNoLeaks(t, inst)
}

func TestInstance_VoidAndTrap(t *testing.T) {
	inst, _ := newStubInstance(t)
	ctx := context.Background()

	require.NoError(t, inst.InitializeBlock(ctx, &types.Header{Number: 1}))

	err := inst.ExecuteBlock(ctx, &types.Block{})
	assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseRuntime, Kind: rterrors.KindTrap})
	assertNoLeaks(t, inst)

	_, err = inst.Call(ctx, "Core_missing", nil)
	assert.ErrorIs(t, err, &rterrors.Error{Phase: rterrors.PhaseRuntime, Kind: rterrors.KindNotFound})
}

func TestInstance_HostStorage(t *testing.T) {
	inst, store := newStubInstance(t)
	ctx := context.Background()

	out, err := inst.Call(ctx, abi.BlockBuilderFinalizeBlock, []byte("key"))
	require.NoError(t, err)

	var e scale.Encoder
	e.PutOption(true)
	e.PutBytes([]byte("key"))
	assert.Equal(t, e.Bytes(), out)

	v, ok, err := store.Get([]byte("key"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("key"), v)

	root, err := inst.RandomSeed(ctx)
	require.NoError(t, err)
	want, err := store.Root()
	require.NoError(t, err)
	assert.Equal(t, want, root)

	assertNoLeaks(t, inst)
}

func TestInstance_GuestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine.SetLogger(zap.New(core))
	defer engine.SetLogger(zap.NewNop())

	inst, _ := newStubInstance(t)
	out, err := inst.Call(context.Background(), abi.BlockBuilderCheckInherents, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)

	entries := logs.FilterMessage("hello").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "guest", entries[0].LoggerName)
	assert.Equal(t, "hello", entries[0].ContextMap()["target"])
	assertNoLeaks(t, inst)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b abi.PointerSize
		want bool
	}{
		{"disjoint", abi.Pack(100, 10), abi.Pack(200, 10), false},
		{"adjacent", abi.Pack(100, 10), abi.Pack(110, 10), false},
		{"contained", abi.Pack(100, 10), abi.Pack(104, 2), true},
		{"same empty", abi.Pack(100, 0), abi.Pack(100, 0), true},
		{"empty elsewhere", abi.Pack(100, 0), abi.Pack(108, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlaps(tt.a, tt.b))
		})
	}
}
