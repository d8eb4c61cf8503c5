// Package procexec runs submission programs as local subprocesses with
// captured streams and a wall-clock limit.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout applies when a Command has no timeout of its own.
const DefaultTimeout = 10 * time.Second

// Command describes one program execution.
type Command struct {
	Argv    []string
	Dir     string
	Env     []string
	Stdin   string
	Timeout time.Duration
}

// Result is what a finished execution produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

func (c Command) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Command) build() (*exec.Cmd, error) {
	if len(c.Argv) == 0 || c.Argv[0] == "" {
		return nil, errors.New("empty command")
	}
	cmd := exec.Command(c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	setProcessGroup(cmd)
	return cmd, nil
}

// Run executes the command to completion. A program that exits non-zero or
// runs out of time is a normal Result; only failures to start the program or
// cancellation of ctx are errors.
func Run(ctx context.Context, c Command) (*Result, error) {
	cmd, err := c.build()
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(c.Stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", c.Argv[0], err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(c.timeout())
	defer timer.Stop()

	res := &Result{}
	select {
	case err = <-done:
	case <-timer.C:
		killProcessGroup(cmd)
		err = <-done
		res.TimedOut = true
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		return nil, fmt.Errorf("process %q was killed because the context completed: %w", c.Argv[0], ctx.Err())
	}

	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.ExitCode = cmd.ProcessState.ExitCode()

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) && !res.TimedOut {
			return nil, fmt.Errorf("failed waiting for %q: %w", c.Argv[0], err)
		}
	}
	return res, nil
}
