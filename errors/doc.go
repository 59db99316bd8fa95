// Package errors provides structured error types for the binmsg library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: command label path, type name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseFinalize, errors.KindNotFound).
//		Path("pose", "position").
//		TypeName("geometry/Point").
//		Detail("referenced before registration").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseFinalize, path, "geometry/Point")
//	err := errors.ShortInput(errors.PhaseWrite, path, 8, 3)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
