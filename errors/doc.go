// Package errors provides structured error types for the polkawasm runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a field path, the type being processed, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
//		Path("header", "digest").
//		Type("DigestItem").
//		Detail("need %d bytes", 32).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 4, 2)
//	err := errors.InvalidState("finalize_block", "Idle")
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when their Phase and Kind agree.
package errors
