package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/Cyclone1070/commander/internal/config"
)

const (
	// binarySample is how much of each stream is checked for binary content.
	binarySample = 8000

	// minGrace bounds how long Wait may block on pipes after a kill; a zero
	// WaitDelay would wait forever.
	minGrace = 100 * time.Millisecond
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// Output returns stderr when the command wrote any, stdout otherwise.
func (r *Result) Output() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// OSCommandExecutor runs argv commands with os/exec. No shell is involved.
type OSCommandExecutor struct {
	maxOutput int
	grace     time.Duration
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{
		maxOutput: int(cfg.Tools.MaxCommandOutputSize),
		grace:     max(time.Duration(cfg.Workflow.GracefulShutdownMs)*time.Millisecond, minGrace),
	}
}

// Run executes a command until it exits or ctx is done.
func (f *OSCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string) (*Result, error) {
	return f.run(ctx, command, dir, env, nil)
}

// RunWithTimeout executes a command with a timeout. On expiry the process
// group is interrupted, then killed after the graceful shutdown period, and
// ErrTimeout is returned with whatever output was collected.
func (f *OSCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return f.run(ctx, command, dir, env, timer.C)
}

func (f *OSCommandExecutor) run(ctx context.Context, command []string, dir string, env []string, expired <-chan time.Time) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	// exec.CommandContext would kill without the interrupt grace period.
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdout := newCollector(f.maxOutput, binarySample)
	stderr := newCollector(f.maxOutput, binarySample)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Grandchildren holding the pipes open must not block Wait forever.
	cmd.WaitDelay = f.grace
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		killGroup(cmd.Process)
		<-done
		execErr = ctx.Err()
	case <-expired:
		interruptGroup(cmd.Process)
		select {
		case <-done:
		case <-time.After(f.grace):
			killGroup(cmd.Process)
			<-done
		}
		execErr = ErrTimeout
	}

	exitCode := exitCodeOf(cmd, execErr)
	if errors.Is(execErr, exec.ErrWaitDelay) && exitCode == 0 {
		execErr = nil
	}

	return &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode,
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}, execErr
}

func exitCodeOf(cmd *exec.Cmd, err error) int {
	if errors.Is(err, ErrTimeout) {
		return -1
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err == nil {
		return 0
	}
	return -1
}
