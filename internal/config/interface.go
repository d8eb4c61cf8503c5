package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// RunContext carries the values checker files can refer to while they are
// evaluated.
type RunContext struct {
	// Args are the positional command-line arguments, usually submission paths.
	Args []string
}

// Submission returns the first argument, or "." when there is none.
func (rc RunContext) Submission() string {
	if len(rc.Args) == 0 {
		return "."
	}
	return rc.Args[0]
}

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads checker files and manifests from the given paths, translates
	// them into the format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, rc RunContext, paths ...string) (*Model, Converter, error)

	// LoadSolution reads a solution configuration file.
	LoadSolution(ctx context.Context, path string) (*SolutionConfig, error)
}

// Converter binds a check's raw 'arguments' to the input struct of a Go
// delegate.
type Converter interface {
	// DecodeArguments evaluates args and stores them in the fields of the
	// struct pointed to by input, applying the struct's optional/required
	// markers.
	DecodeArguments(
		ctx context.Context,
		input any,
		args map[string]hcl.Expression,
		evalCtx *hcl.EvalContext,
	) error
}
