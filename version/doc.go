// Package version reports the kafkaboot build.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/kafkaboot/version.Version=1.2.0"
//
// Missing values fall back to the VCS data embedded by the Go toolchain.
package version
