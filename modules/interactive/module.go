package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/gradegrid/internal/analyse"
	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/procexec"
	"github.com/vk/gradegrid/internal/protocol"
	"github.com/vk/gradegrid/internal/registry"
	"github.com/vk/gradegrid/internal/report"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'interactive' delegate.
type Input struct {
	Command []string          `hcl:"command"`
	Workdir string            `hcl:"workdir,optional"`
	Env     map[string]string `hcl:"env,optional"`
	// LineTimeout bounds the wait for each expected output line.
	LineTimeout string `hcl:"line_timeout,optional"`
}

// OnRunInteractive replays each test's protocol against a live program:
// '<' lines are written to stdin and '>' lines must be the next stdout line.
func OnRunInteractive(ctx context.Context, inv *checker.Invocation, input *Input) (*report.Report, error) {
	if len(input.Command) == 0 {
		return nil, fmt.Errorf("check %q: command must not be empty", inv.Check.Name)
	}
	if len(inv.Check.Tests) == 0 {
		return nil, fmt.Errorf("check %q has no test blocks", inv.Check.Name)
	}
	lineTimeout, err := time.ParseDuration(input.LineTimeout)
	if err != nil || lineTimeout <= 0 {
		return nil, fmt.Errorf("check %q: invalid line_timeout %q", inv.Check.Name, input.LineTimeout)
	}

	d := &dialogue{
		inv:         inv,
		dir:         inv.WorkingDir(input.Workdir),
		env:         checker.Environ(input.Env),
		command:     input.Command,
		lineTimeout: lineTimeout,
	}
	rep := inv.NewReport()
	for _, tc := range inv.Check.Tests {
		result := rep.Add(tc.Name)
		result.Description = tc.Description
		if err := d.run(ctx, tc, result); err != nil {
			return nil, fmt.Errorf("test %q: %w", tc.Name, err)
		}
	}
	return rep, nil
}

type dialogue struct {
	inv         *checker.Invocation
	dir         string
	env         []string
	command     []string
	lineTimeout time.Duration
}

func (d *dialogue) run(ctx context.Context, tc *config.TestCase, result *report.TestResult) error {
	logger := ctxlog.FromContext(ctx)

	if tc.Protocol == "" {
		return errors.New("interactive tests need a protocol file")
	}
	proto, err := protocol.Load(tc.Protocol)
	if err != nil {
		return err
	}
	compare, err := analyse.Lookup(tc.Analyser("stdout", analyse.Default))
	if err != nil {
		return err
	}

	session, err := procexec.Start(ctx, procexec.Command{
		Argv:    append(append([]string{}, d.command...), tc.Arguments...),
		Dir:     d.dir,
		Env:     d.env,
		Timeout: d.inv.TestTimeout(tc, procexec.DefaultTimeout),
	})
	if err != nil {
		return err
	}

	for _, step := range proto.Steps {
		if !d.step(session, step, compare, result) {
			break
		}
	}

	res, rest, err := session.Close()
	if err != nil {
		return err
	}
	logger.Debug("Dialogue finished.", "test", tc.Name, "steps", len(proto.Steps), "exit_code", res.ExitCode, "duration", res.Duration)

	if result.Passed && len(rest) > 0 {
		result.Failf("unexpected extra output %q after the protocol ended", rest[0])
	}
	return checker.ExpectResult(result, tc, res, false)
}

// step performs one protocol line and reports whether the dialogue may go on.
func (d *dialogue) step(s *procexec.Session, step protocol.Step, compare analyse.Analyser, result *report.TestResult) bool {
	if step.Direction == protocol.Input {
		if err := s.Send(step.Text); err != nil {
			result.Failf("protocol line %d: program stopped reading before %q was sent", step.Line, step.Text)
			return false
		}
		return true
	}

	line, ok, err := s.ReadLine(d.lineTimeout)
	switch {
	case errors.Is(err, procexec.ErrLineTimeout):
		result.Failf("protocol line %d: no output within %s, expected %q", step.Line, d.lineTimeout, step.Text)
		return false
	case !ok:
		result.Failf("protocol line %d: output ended, expected %q", step.Line, step.Text)
		return false
	}
	if r := compare(step.Text, line); !r.OK {
		// Steps are single lines, so the analyser's line number adds nothing.
		result.Failf("protocol line %d: %s", step.Line, strings.TrimPrefix(r.Detail, "line 1: "))
		return false
	}
	return true
}

// Register registers the delegate with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterChecker("interactive", &registry.RegisteredChecker{
		Description: "Replays protocol files against the running program.",
		NewInput:    func() any { return &Input{LineTimeout: "2s"} },
		Fn:          OnRunInteractive,
	})
}
