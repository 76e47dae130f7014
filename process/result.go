package process

import "time"

// Result describes a finished process.
type Result struct {
	// Pid is the process id the broker ran under.
	Pid int
	// ExitCode is the process exit code. A process terminated by a signal
	// reports 128 plus the signal number.
	ExitCode int
	// Signaled is set when the process was terminated by a signal.
	Signaled bool
	// Duration is how long the process ran.
	Duration time.Duration
}
