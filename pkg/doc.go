// Package pkg provides shared utilities for the softdfu protocol engine.
//
// This package contains common functionality used across the control
// surface, the DFU state machine, and memory back-ends, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for control-transfer and back-end failures
//   - Component identifiers for log filtering
//
// The package is designed to have zero external dependencies, relying
// only on the Go standard library.
//
// # Logging
//
// The logging subsystem wraps [log/slog] with DFU-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentDFU, "block accepted", "block", 2)
//
// # Errors
//
// Common errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrStall) {
//	    // Request was rejected by the class driver
//	}
package pkg
