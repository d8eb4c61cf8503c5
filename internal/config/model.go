package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gradegrid/internal/rules"
)

// Model is the unified representation of everything a run loaded.
type Model struct {
	Checks    []*Check
	Manifests map[string]*CheckerManifest
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Manifests: make(map[string]*CheckerManifest)}
}

// Check is one `check` block: the delegate to call and the data it gets.
type Check struct {
	Delegate    string
	Name        string
	Description string
	// Dir is the directory of the file that declared the check. Relative
	// paths in the check resolve against it.
	Dir string
	// Timeout is the default per-test limit; zero means the delegate default.
	Timeout time.Duration

	// Arguments are delegate-specific settings, decoded lazily by a Converter
	// once the delegate's input type is known.
	Arguments   map[string]hcl.Expression
	EvalContext *hcl.EvalContext

	Tests []*TestCase
	Rules map[string]*rules.Table
}

// RuleList returns the named rule table.
func (c *Check) RuleList(name string) (*rules.Table, bool) {
	t, ok := c.Rules[name]
	return t, ok
}

// TestCase is a single test descriptor. Optional expectations are nil when
// the checker file leaves them out, which means "not checked".
type TestCase struct {
	Name        string
	Description string
	Arguments   []string
	Stdin       string
	Stdout      *string
	Stderr      *string
	// Protocol is an absolute path to an interactive transcript, or empty.
	Protocol string
	// Analysers maps a stream name ("stdout", "stderr") to a strategy name.
	Analysers map[string]string
	Timeout   time.Duration
	ExitCode  *int
}

// Analyser returns the strategy configured for stream, or def.
func (t *TestCase) Analyser(stream, def string) string {
	if a, ok := t.Analysers[stream]; ok && a != "" {
		return a
	}
	return def
}

// CheckerManifest declares a delegate's inputs in the checker library.
type CheckerManifest struct {
	Name        string
	Description string
	Inputs      map[string]*InputDefinition
	// File is the manifest's source path, for error messages.
	File string
}

// InputDefinition declares one delegate argument.
type InputDefinition struct {
	Name        string
	Description string
	Optional    bool
}
