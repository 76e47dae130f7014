package process

import (
	"io"
	"time"
)

const defaultGracePeriod = 10 * time.Second

// Command is the broker invocation handed over by the bootstrapper.
type Command struct {
	Binary string
	// Args follow the binary; the bootstrapper passes the rendered config path.
	Args []string
	// Env overrides the inherited environment when non-nil.
	Env []string
	// Stdout and Stderr default to the bootstrapper's own streams.
	Stdout io.Writer
	Stderr io.Writer
	// GracePeriod separates SIGTERM from SIGKILL on shutdown. Zero means 10s.
	GracePeriod time.Duration
}
