package process_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/kafkaboot/errors"
	"github.com/kbukum/kafkaboot/process"
)

func launch(t *testing.T, ctx context.Context, cmd process.Command) (*process.Result, error) {
	t.Helper()
	return process.NewLauncher(nil).Launch(ctx, cmd)
}

func TestLaunch_ForwardsStdout(t *testing.T) {
	var stdout bytes.Buffer
	res, err := launch(t, context.Background(), process.Command{
		Binary: "echo",
		Args:   []string{"hello", "world"},
		Stdout: &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", res.ExitCode)
	}
	if strings.TrimSpace(stdout.String()) != "hello world" {
		t.Fatalf("expected 'hello world', got %q", stdout.String())
	}
}

func TestLaunch_ForwardsStderrUnmodified(t *testing.T) {
	var stderr bytes.Buffer
	_, err := launch(t, context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "printf 'oops\\nraw' >&2"},
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stderr.String() != "oops\nraw" {
		t.Fatalf("expected raw stderr, got %q", stderr.String())
	}
}

func TestLaunch_PropagatesExitCode(t *testing.T) {
	res, err := launch(t, context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "exit 42"},
	})
	if err != nil {
		t.Fatalf("non-zero exit is not an error: %v", err)
	}
	if res.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", res.ExitCode)
	}
}

func TestLaunch_PassesConfigPathAsSoleArgument(t *testing.T) {
	var stdout bytes.Buffer
	_, err := launch(t, context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", `echo "$#:$1"`, "sh", "/kafka/config/server.properties"},
		Stdout: &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "1:/kafka/config/server.properties" {
		t.Errorf("unexpected args seen by child: %q", stdout.String())
	}
}

func TestLaunch_Env(t *testing.T) {
	var stdout bytes.Buffer
	_, err := launch(t, context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo $KAFKA_HEAP_OPTS"},
		Env:    []string{"KAFKA_HEAP_OPTS=-Xmx1G"},
		Stdout: &stdout,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "-Xmx1G" {
		t.Errorf("expected env to reach child, got %q", stdout.String())
	}
}

func TestLaunch_SpawnFailure(t *testing.T) {
	_, err := launch(t, context.Background(), process.Command{
		Binary: filepath.Join(t.TempDir(), "missing-kafka-server-start.sh"),
	})
	if !errors.HasCode(err, errors.ErrCodeSpawn) {
		t.Fatalf("expected SPAWN_FAILED, got %v", err)
	}

	_, err = launch(t, context.Background(), process.Command{})
	if !errors.HasCode(err, errors.ErrCodeSpawn) {
		t.Fatalf("expected SPAWN_FAILED for empty binary, got %v", err)
	}
}

func TestLaunch_NotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := launch(t, context.Background(), process.Command{Binary: path})
	if !errors.HasCode(err, errors.ErrCodeSpawn) {
		t.Fatalf("expected SPAWN_FAILED, got %v", err)
	}
}

func TestLaunch_CancelSendsSIGTERM(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	res, err := launch(t, ctx, process.Command{
		Binary:      "sleep",
		Args:        []string{"30"},
		GracePeriod: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Signaled || res.ExitCode != 143 {
		t.Errorf("expected SIGTERM exit (143), got %d signaled=%v", res.ExitCode, res.Signaled)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("SIGTERM should stop the process well before the grace period")
	}
}

func TestLaunch_GracePeriodKills(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	res, err := launch(t, ctx, process.Command{
		Binary:      "sh",
		Args:        []string{"-c", "trap '' TERM; while true; do sleep 0.05; done"},
		GracePeriod: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Signaled || res.ExitCode != 137 {
		t.Errorf("expected SIGKILL exit (137), got %d signaled=%v", res.ExitCode, res.Signaled)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("process should be killed after the grace period")
	}
}

func TestLaunchFunc(t *testing.T) {
	code, err := process.Launch(context.Background(), process.Command{Binary: "false"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}

	code, err = process.Launch(context.Background(), process.Command{Binary: "/nonexistent/broker"})
	if code != 1 || !errors.HasCode(err, errors.ErrCodeSpawn) {
		t.Errorf("expected exit 1 with SPAWN_FAILED, got %d %v", code, err)
	}
}
