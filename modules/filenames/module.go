package filenames

import (
	"context"
	"path"

	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/registry"
	"github.com/vk/gradegrid/internal/report"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'filenames' delegate.
type Input struct {
	// Rules names the rule list candidates are evaluated against.
	Rules string `hcl:"rules,optional"`
	// BaseNames evaluates "Main.java" instead of "src/Main.java".
	BaseNames bool `hcl:"base_names,optional"`
}

// OnRunFilenames checks every submitted file name against a rule list. The
// check passes when every file is accepted.
func OnRunFilenames(ctx context.Context, inv *checker.Invocation, input *Input) (*report.Report, error) {
	logger := ctxlog.FromContext(ctx)

	table, err := inv.RequireRuleList(input.Rules)
	if err != nil {
		return nil, err
	}
	files, err := inv.Files()
	if err != nil {
		return nil, err
	}

	rep := inv.NewReport()
	if len(files) == 0 {
		rep.Add("files").Failf("submission contains no files")
		return rep, nil
	}

	names := make([]string, len(files))
	candidates := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Label
		candidates[i] = f.Name
		if input.BaseNames {
			candidates[i] = path.Base(f.Name)
		}
	}
	logger.Debug("Evaluating file names.", "count", len(candidates), "rules", table.Name)

	if err := checker.AddNamedVerdicts(ctx, rep, table, "", names, candidates); err != nil {
		return nil, err
	}
	return rep, nil
}

// Register registers the delegate with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterChecker("filenames", &registry.RegisteredChecker{
		Description: "Accepts or rejects every submitted file by name.",
		NewInput:    func() any { return &Input{Rules: "files"} },
		Fn:          OnRunFilenames,
	})
}
