// Package abi implements the calling convention of runtime entry points.
//
// Every entry point receives one region of linear memory as two i32
// parameters, pointer and length, holding its SCALE-encoded arguments. A
// value-returning entry point answers with a single i64 whose low 32 bits
// are the offset of a freshly allocated result buffer and whose high 32 bits
// are its length. Void entry points return nothing.
//
// The result buffer is allocated only after the computation succeeds and is
// never the argument buffer, so the host can release both independently.
package abi
