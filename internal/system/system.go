package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

type Runner interface {
	Run(ctx context.Context, cmd string, args ...string) (stdout, stderr string, err error)
}

type NoopRunner struct{}

func (NoopRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	return "", "", nil
}

// ShellRunner executes commands resolved via PATH, optionally through sudo.
// It returns stdout, stderr, and an error if the command exits non-zero.
type ShellRunner struct {
	Sudo bool
}

func (s ShellRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	name, fullArgs := cmd, args
	if s.Sudo {
		name, fullArgs = "sudo", append([]string{cmd}, args...)
	}
	c := exec.CommandContext(ctx, name, fullArgs...)
	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf
	err := c.Run()
	if err != nil {
		// Include exit status if available
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return outBuf.String(), errBuf.String(), fmt.Errorf("exit %d: %w", exitErr.ExitCode(), err)
		}
		return outBuf.String(), errBuf.String(), err
	}
	return outBuf.String(), errBuf.String(), nil
}
