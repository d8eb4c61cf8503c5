package config

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// SolutionConfig is the content of a config_*.json file: where the checker
// library lives, which sample solution to grade and the checker pipeline to
// run against it.
type SolutionConfig struct {
	// Library is the checker library search path. Relative to Dir.
	Library        string
	SampleSolution string
	Pipeline       Pipeline
	// Dir is the directory containing the configuration file.
	Dir string
}

// StageKind names a kind of checker registry string.
type StageKind string

const (
	StageCompiler StageKind = "compiler"
	StagePythomat StageKind = "pythomat"
	StageScript   StageKind = "script"
	StageCopy     StageKind = "copy"
)

// Stage is one parsed checker registry string, e.g. "script:build.sh".
type Stage struct {
	Kind StageKind
	Args string
	Raw  string
}

// Fields splits the stage arguments with shell quoting rules.
func (s Stage) Fields() ([]string, error) {
	fields, err := shlex.Split(s.Args)
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", s.Raw, err)
	}
	return fields, nil
}

// Pipeline is the ordered list of stages from the 'checkers' key.
type Pipeline []Stage

// ParseStage parses a checker registry string.
func ParseStage(raw string) (Stage, error) {
	kind, args, _ := strings.Cut(raw, ":")
	stage := Stage{Kind: StageKind(strings.TrimSpace(kind)), Args: strings.TrimSpace(args), Raw: raw}

	switch stage.Kind {
	case StageCompiler:
		return stage, nil
	case StagePythomat:
		if stage.Args == "" {
			return Stage{}, fmt.Errorf("checker %q: 'pythomat:' needs a checker file", raw)
		}
	case StageScript:
		if stage.Args == "" {
			return Stage{}, fmt.Errorf("checker %q: 'script:' needs a file", raw)
		}
	case StageCopy:
		if stage.Args == "" {
			return Stage{}, fmt.Errorf("checker %q: 'copy:' needs a path", raw)
		}
	default:
		return Stage{}, fmt.Errorf("checker %q: unknown kind %q (expected compiler, pythomat, script or copy)", raw, stage.Kind)
	}
	return stage, nil
}

// ParsePipeline parses every registry string in order.
func ParsePipeline(raw []string) (Pipeline, error) {
	p := make(Pipeline, 0, len(raw))
	for _, r := range raw {
		stage, err := ParseStage(r)
		if err != nil {
			return nil, err
		}
		p = append(p, stage)
	}
	return p, nil
}
