package checkstyle

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/procexec"
	"github.com/vk/gradegrid/internal/registry"
	"github.com/vk/gradegrid/internal/report"
)

// DefaultTimeout applies when the check sets no timeout; a JVM start is slow.
const DefaultTimeout = 60 * time.Second

var violationRe = regexp.MustCompile(`^\[(WARN|ERROR)\]\s+(.*)$`)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'checkstyle' delegate.
type Input struct {
	// Command starts checkstyle; "-c <config>" and the sources are appended.
	Command []string `hcl:"command,optional"`
	// Config is the rule-set file, relative to the checker file.
	Config        string `hcl:"config"`
	MaxViolations int    `hcl:"max_violations,optional"`
}

// Violation is one reported style problem.
type Violation struct {
	Severity string
	Text     string
}

// ParseViolations extracts the [WARN] and [ERROR] lines of checkstyle's
// plain output.
func ParseViolations(output string) []Violation {
	var out []Violation
	for _, line := range strings.Split(output, "\n") {
		m := violationRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		out = append(out, Violation{Severity: m[1], Text: m[2]})
	}
	return out
}

// OnRunCheckstyle runs checkstyle over every submitted .java file and passes
// when the number of violations does not exceed MaxViolations.
func OnRunCheckstyle(ctx context.Context, inv *checker.Invocation, input *Input) (*report.Report, error) {
	logger := ctxlog.FromContext(ctx)

	if len(input.Command) == 0 {
		return nil, fmt.Errorf("check %q: command must not be empty", inv.Check.Name)
	}
	if input.MaxViolations < 0 {
		return nil, fmt.Errorf("check %q: max_violations must not be negative", inv.Check.Name)
	}

	files, err := inv.FilesWithExtension(".java")
	if err != nil {
		return nil, err
	}
	rep := inv.NewReport()
	result := rep.Add("checkstyle")
	if len(files) == 0 {
		result.Failf("submission contains no .java files")
		return rep, nil
	}

	argv := append(append([]string{}, input.Command...), "-c", inv.Resolve(input.Config))
	for _, f := range files {
		argv = append(argv, f.Path)
	}
	res, err := procexec.Run(ctx, procexec.Command{
		Argv:    argv,
		Dir:     inv.SubmissionDir(),
		Timeout: inv.TestTimeout(nil, DefaultTimeout),
	})
	if err != nil {
		return nil, err
	}
	if res.TimedOut {
		return nil, fmt.Errorf("checkstyle timed out after %s", res.Duration.Round(time.Millisecond))
	}

	violations := ParseViolations(res.Stdout)
	logger.Debug("Checkstyle finished.", "files", len(files), "violations", len(violations), "exit_code", res.ExitCode)
	if len(violations) == 0 && res.ExitCode != 0 {
		return nil, fmt.Errorf("checkstyle failed with exit code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	for _, v := range violations {
		result.Logf("[%s] %s", v.Severity, v.Text)
	}
	if len(violations) > input.MaxViolations {
		result.Failf("%d violations, at most %d allowed", len(violations), input.MaxViolations)
	}
	return rep, nil
}

// Register registers the delegate with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterChecker("checkstyle", &registry.RegisteredChecker{
		Description: "Counts checkstyle violations in the Java sources.",
		NewInput:    func() any { return &Input{Command: []string{"checkstyle"}} },
		Fn:          OnRunCheckstyle,
	})
}
