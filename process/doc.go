// Package process starts the broker and hands the container over to it.
//
// The broker runs in its own process group with its standard streams wired
// straight through to the bootstrapper's. Canceling the launch context sends
// SIGTERM to the whole group; a broker still running after the grace period
// is killed. The broker's exit status becomes the launcher's result.
package process
