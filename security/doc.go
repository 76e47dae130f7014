// Package security builds client TLS configurations from file-based settings.
//
// The same TLSConfig is used for the registry client when the leader API is
// served over https, and for the broker readiness probe.
package security
