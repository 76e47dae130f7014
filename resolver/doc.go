// Package resolver performs single A-record lookups with a bounded wait.
//
// A lookup returns the first address of the answer set. Timeouts and empty
// answers are reported as RESOLUTION_TIMEOUT and NO_ADDRESS errors; callers
// decide whether to fall back or treat the name as absent.
package resolver
