// Package errors provides structured error types for the FST reader library.
//
// Errors are categorized by Phase (where in reader processing the error
// occurred) and Kind (error category). The Error type includes location
// path and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindCorruptBlock).
//		Path("top", "cpu").
//		Detail("record time %d past block end", t).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.CorruptBlock(3, "truncated payload", io.ErrUnexpectedEOF)
//	err := errors.UnknownHandle(errors.PhaseQuery, handle, maxHandle)
//
// All errors implement the standard error interface and support errors.Is/As.
// Kind-based matching ignores the phase when the target's phase is empty:
//
//	errors.Is(err, &errors.Error{Kind: errors.KindCorruptBlock})
package errors
