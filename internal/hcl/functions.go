package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gradegrid/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// newEvalContext exposes the run's arguments, the checker directory and the
// process environment to expressions in a check.
func newEvalContext(rc config.RunContext, dir string) *hcl.EvalContext {
	args := cty.ListValEmpty(cty.String)
	if len(rc.Args) > 0 {
		vals := make([]cty.Value, len(rc.Args))
		for i, a := range rc.Args {
			vals[i] = cty.StringVal(a)
		}
		args = cty.ListVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"args":        args,
			"submission":  cty.StringVal(rc.Submission()),
			"checker_dir": cty.StringVal(dir),
			"env":         environ(),
		},
		Functions: functions(dir),
	}
}

// environ maps every environment variable to its value, e.g. env.JAVA_HOME.
func environ() cty.Value {
	vals := make(map[string]cty.Value)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && pair[0] != "" {
			vals[pair[0]] = cty.StringVal(pair[1])
		}
	}
	if len(vals) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	return cty.MapVal(vals)
}

func functions(dir string) map[string]function.Function {
	return map[string]function.Function{
		"file":       fileFunc(dir),
		"upper":      stdlib.UpperFunc,
		"lower":      stdlib.LowerFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"chomp":      stdlib.ChompFunc,
		"indent":     stdlib.IndentFunc,
		"join":       stdlib.JoinFunc,
		"split":      stdlib.SplitFunc,
		"replace":    stdlib.ReplaceFunc,
		"format":     stdlib.FormatFunc,
		"concat":     stdlib.ConcatFunc,
		"length":     stdlib.LengthFunc,
		"lookup":     stdlib.LookupFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
	}
}

// fileFunc reads a UTF-8 file relative to dir, typically an expected output.
func fileFunc(dir string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "path", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			path := args[0].AsString()
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return cty.UnknownVal(cty.String), fmt.Errorf("failed to read %s: %w", path, err)
			}
			if !utf8.Valid(data) {
				return cty.UnknownVal(cty.String), fmt.Errorf("%s is not valid UTF-8", path)
			}
			return cty.StringVal(string(data)), nil
		},
	})
}
