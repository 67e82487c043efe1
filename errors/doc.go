// Package errors provides structured error types for the contract ABI codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: value path, ABI type name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindLengthMismatch).
//		Path("args[1]", "b").
//		Type("u16").
//		Detail("expected 2 bytes, got 3").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(errors.PhaseDecode, path, raw, "u8")
//	err := errors.UnknownVariant(errors.PhaseDecode, path, "DayOfWeek", 9, 7)
//
// The decode kinds (length_mismatch, overflow, unknown_variant,
// argument_count_mismatch, argument_decode) abort a single call and are
// reported to the caller as a fault. User rejections raised by handlers are a
// separate type owned by the dispatch package.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
