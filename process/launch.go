package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kbukum/kafkaboot/errors"
	"github.com/kbukum/kafkaboot/logger"
)

// Spawner starts a command and waits for it to exit.
type Spawner interface {
	Launch(ctx context.Context, cmd Command) (*Result, error)
}

// Launcher runs commands as real subprocesses.
type Launcher struct {
	log *logger.Logger
}

// NewLauncher creates a Launcher.
func NewLauncher(log *logger.Logger) *Launcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Launcher{log: log.WithComponent("process")}
}

// Launch starts cmd and waits for it to exit. A process that starts always
// yields a Result; a non-zero exit is not an error. Failure to start returns
// a SPAWN_FAILED error. If ctx is canceled, SIGTERM is sent to the process
// group first, then SIGKILL after GracePeriod.
func (l *Launcher) Launch(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.Spawn(cmd.Binary, fmt.Errorf("binary is required"))
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = defaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // the broker binary is configured by the operator
	c.Env = cmd.Env
	c.Stdout = orDefault(cmd.Stdout, os.Stdout)
	c.Stderr = orDefault(cmd.Stderr, os.Stderr)

	// Use process group so we can signal the entire tree
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		l.log.Info("forwarding termination to broker", logger.Fields("pid", c.Process.Pid))
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, errors.Spawn(cmd.Binary, err)
	}
	l.log.Info("broker started", logger.Fields(
		logger.FieldPath, cmd.Binary,
		"pid", c.Process.Pid,
		"args", cmd.Args,
	))

	err := c.Wait()
	result := &Result{
		Pid:      c.Process.Pid,
		Duration: time.Since(start),
	}
	result.ExitCode, result.Signaled = exitStatus(c.ProcessState)

	// A collected exit status is the result, whatever Wait reports.
	if err != nil && c.ProcessState == nil {
		return result, fmt.Errorf("process: wait: %w", err)
	}

	l.log.Info("broker exited", logger.Fields(
		logger.FieldExitCode, result.ExitCode,
		"signaled", result.Signaled,
		logger.FieldDuration, result.Duration.Milliseconds(),
	))
	return result, nil
}

// Launch runs cmd with a Launcher that discards its logs.
func Launch(ctx context.Context, cmd Command) (int, error) {
	res, err := NewLauncher(nil).Launch(ctx, cmd)
	if res == nil {
		return 1, err
	}
	return res.ExitCode, err
}

func exitStatus(state *os.ProcessState) (int, bool) {
	if state == nil {
		return -1, false
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), true
	}
	return state.ExitCode(), false
}

// orDefault keeps *os.File destinations unwrapped so the child writes to
// the inherited descriptors directly.
func orDefault(w io.Writer, def *os.File) io.Writer {
	if w == nil {
		return def
	}
	return w
}
