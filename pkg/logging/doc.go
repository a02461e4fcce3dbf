// Package logging provides structured logging utilities for gridfit.
//
// # Overview
//
// This package wraps the standard library slog package with consistent
// defaults: JSON records on stderr, a level taken from the LOG_LEVEL
// environment variable or an explicit flag, and module/version attributes on
// every record. Debug records include the source location.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: per-slice and per-line diagnostics with source location
//   - INFO: progress of grid builds and fits (default)
//   - WARN/WARNING: label substitutions, blended doublets, empty fits
//   - ERROR: failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("gridfit", version)
//	    slog.Info("grid saved", "path", path, "rows", n)
//	}
//
// Setting an explicit level, as the CLI does after parsing --log-level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("gridfit", version, "warn")
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "WARN",
//	    "msg": "substituting similar line label",
//	    "module": "gridfit",
//	    "version": "v1.0.0",
//	    "requested": "OIII_5007",
//	    "resolved": "OIII5007"
//	}
package logging
