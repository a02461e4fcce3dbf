// Package errors provides structured error types used across the grid
// builder, model loader, target preparation and fit orchestration.
//
// Every failure that surfaces to a caller carries an ErrorCode so the CLI and
// tests can tell a missing resource from malformed input without parsing
// messages:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeNotFound,
//	    "grid slice not found",
//	    cause,
//	    map[string]any{
//	        "path": key.Path(),
//	        "file": archive,
//	    },
//	)
//
// Warnings (ambiguous label substitution, empty work, premature access) are
// never errors; they are logged through slog by the owning package.
package errors
