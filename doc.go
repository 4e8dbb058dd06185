// Package polkawasm implements the guest side of a Substrate-style WASM
// runtime in Go, together with a wazero host harness to drive it.
//
// A runtime is a WASM module that exports block-authoring and block-execution
// entry points (Core and BlockBuilder APIs). Every entry point takes a
// pointer and length into linear memory holding SCALE-encoded arguments and
// returns a packed 64-bit word (offset | length<<32) describing a freshly
// allocated buffer with the SCALE-encoded result. Memory for results is
// obtained from the host through the ext_allocator_* imports.
//
// # Architecture Overview
//
//	polkawasm/           Root package with core Memory and Allocator interfaces
//	├── scale/           SCALE codec (compact integers, sequences, options)
//	├── types/           Blocks, headers, digests, inherents, version data
//	├── hashing/         blake2b and twox hashers
//	├── allocator/       Host allocator bridge, freeing-bump allocator, arena
//	├── abi/             Pointer-size packing and argument/result marshaling
//	├── storage/         Storage collaborator with transactions and roots
//	├── executive/       Block state machine, dispatch, inherents
//	├── api/             Core and BlockBuilder entry points, export table
//	├── engine/          Host side: wazero runtime and env host module
//	├── runtime/         Host side: load, validate and call a runtime binary
//	└── errors/          Structured error types for debugging
//
// # Guest
//
// cmd/runtime builds with TinyGo into a runtime binary:
//
//	tinygo build -target=polkawasm -o runtime.wasm ./cmd/runtime
//
// # Host
//
// Load and drive a runtime:
//
//	rt, err := runtime.New(ctx, runtime.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx, storage.NewOverlay(storage.NewMemBackend()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	version, err := inst.Version(ctx)
//
// # Thread Safety
//
// Runtime and Module are safe for concurrent use. Instance is NOT thread-safe
// and holds the state of a single block being built or executed.
package polkawasm
