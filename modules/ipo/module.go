package ipo

import (
	"context"
	"fmt"

	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/procexec"
	"github.com/vk/gradegrid/internal/registry"
	"github.com/vk/gradegrid/internal/report"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'ipo' delegate.
type Input struct {
	// Command is the program to run; each test's arguments are appended.
	Command []string `hcl:"command"`
	// Workdir is relative to the submission directory.
	Workdir string            `hcl:"workdir,optional"`
	Env     map[string]string `hcl:"env,optional"`
}

// OnRunIPO runs the program once per test case with the test's arguments and
// stdin, then compares exit code, stdout and stderr with the expectations.
func OnRunIPO(ctx context.Context, inv *checker.Invocation, input *Input) (*report.Report, error) {
	logger := ctxlog.FromContext(ctx)

	if len(input.Command) == 0 {
		return nil, fmt.Errorf("check %q: command must not be empty", inv.Check.Name)
	}
	if len(inv.Check.Tests) == 0 {
		return nil, fmt.Errorf("check %q has no test blocks", inv.Check.Name)
	}

	dir := inv.WorkingDir(input.Workdir)
	env := checker.Environ(input.Env)
	rep := inv.NewReport()

	for _, tc := range inv.Check.Tests {
		result := rep.Add(tc.Name)
		result.Description = tc.Description

		argv := append(append([]string{}, input.Command...), tc.Arguments...)
		res, err := procexec.Run(ctx, procexec.Command{
			Argv:    argv,
			Dir:     dir,
			Env:     env,
			Stdin:   tc.Stdin,
			Timeout: inv.TestTimeout(tc, procexec.DefaultTimeout),
		})
		if err != nil {
			return nil, fmt.Errorf("test %q: %w", tc.Name, err)
		}
		logger.Debug("Program finished.", "test", tc.Name, "exit_code", res.ExitCode, "duration", res.Duration, "timed_out", res.TimedOut)

		if err := checker.ExpectResult(result, tc, res, true); err != nil {
			return nil, fmt.Errorf("test %q: %w", tc.Name, err)
		}
	}
	return rep, nil
}

// Register registers the delegate with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterChecker("ipo", &registry.RegisteredChecker{
		Description: "Runs the program per test case and compares its output.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunIPO,
	})
}
