// Package runtime loads runtime binaries on the host and drives their
// entry points.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, runtime.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	// Compile and validate the exports
//	mod, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err) // *errors.MissingExportsError lists what is wrong
//	}
//
//	// Each instance has its own heap and storage
//	inst, err := mod.Instantiate(ctx, storage.NewOverlay(storage.NewMemBackend()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	version, err := inst.Version(ctx)
//
// # Calling Convention
//
// Instance.Call copies the encoded arguments into a buffer allocated from
// the instance heap, calls the export with its pointer and length, copies
// the result region out and frees both buffers. A trap in the guest or in
// a host function is returned as an *errors.Error of kind trap.
//
// The typed methods (Version, InitializeBlock, ApplyExtrinsic and the rest)
// encode their arguments and decode results with the configured codec
// options.
//
// # Thread Safety
//
// Runtime and Module are safe for concurrent use. Instance is NOT
// thread-safe and should be used by a single goroutine.
package runtime
