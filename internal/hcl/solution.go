package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/ctxlog"
)

// LoadSolution reads a JSON solution configuration such as
// config_mySolution.json. Unknown keys are ignored.
func (l *Loader) LoadSolution(ctx context.Context, path string) (*config.SolutionConfig, error) {
	logger := ctxlog.FromContext(ctx)

	parsed, diags := hclparse.NewParser().ParseJSONFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
	}
	var root solutionRoot
	if diags := gohcl.DecodeBody(parsed.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", path, diags)
	}
	if root.SampleSolution == "" {
		return nil, fmt.Errorf("%s: sample_solution must not be empty", path)
	}

	pipeline, err := config.ParsePipeline(root.Checkers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	sc := &config.SolutionConfig{
		Library:        root.Pythomat,
		SampleSolution: root.SampleSolution,
		Pipeline:       pipeline,
		Dir:            dir,
	}
	logger.Debug("Loaded solution configuration.", "path", path, "stages", len(pipeline))
	return sc, nil
}
