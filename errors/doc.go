// Package errors provides the error taxonomy of the bootstrapper.
//
// Every failure is an *AppError carrying a machine-readable code. Discovery
// failures (timeouts, empty answers, registry and per-host errors) are
// non-fatal: callers absorb them into absence or fallback values. File I/O,
// rendering and spawn failures are fatal and terminate the bootstrap with
// exit code 1.
package errors
