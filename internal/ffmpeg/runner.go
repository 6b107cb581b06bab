// Package ffmpeg invokes external tools (ffmpeg, ffprobe, hardware query
// commands) behind a narrow Runner interface so the rest of the program can
// be tested with canned outputs instead of real subprocesses.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result holds the outcome of a single subprocess invocation.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// ExitCode returns the process exit code, 0 on success, or -1 when the
// process did not run (e.g. binary not found, killed by signal).
func (r Result) ExitCode() int {
	if r.Err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(r.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Runner is the subprocess capability used throughout the pipeline:
// run a command, wait for it, capture stdout and stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner is the real Runner backed by os/exec.
type ExecRunner struct{}

// Run executes name with args and captures both output streams.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
}
