package hcl

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gradegrid/internal/config"
)

type testInput struct {
	Command []string          `hcl:"command"`
	Workdir string            `hcl:"workdir,optional"`
	Env     map[string]string `hcl:"env,optional"`
	Limit   int               `hcl:"limit,optional"`
	Ignored string
	Skipped string `hcl:"-"`
}

func parseArgs(t *testing.T, src map[string]string) map[string]hcl.Expression {
	t.Helper()
	args := make(map[string]hcl.Expression, len(src))
	for name, text := range src {
		expr, diags := hclsyntax.ParseExpression([]byte(text), name, hcl.InitialPos)
		require.False(t, diags.HasErrors(), diags.Error())
		args[name] = expr
	}
	return args
}

func TestConverter_DecodeArguments(t *testing.T) {
	t.Parallel()
	evalCtx := newEvalContext(config.RunContext{Args: []string{"/work/sub"}}, "/lib")

	args := parseArgs(t, map[string]string{
		"command": `["java", "-cp", submission, "Main"]`,
		"env":     `{ LANG = "C" }`,
		"limit":   `"3"`,
	})

	input := &testInput{Workdir: "keep"}
	err := NewConverter().DecodeArguments(context.Background(), input, args, evalCtx)
	require.NoError(t, err)

	assert.Equal(t, []string{"java", "-cp", "/work/sub", "Main"}, input.Command)
	assert.Equal(t, "keep", input.Workdir, "absent optional arguments keep their default")
	assert.Equal(t, map[string]string{"LANG": "C"}, input.Env)
	assert.Equal(t, 3, input.Limit)
}

func TestConverter_DecodeArguments_Errors(t *testing.T) {
	t.Parallel()
	evalCtx := newEvalContext(config.RunContext{}, "/lib")

	testCases := []struct {
		name    string
		args    map[string]string
		input   any
		wantErr string
	}{
		{
			name:    "missing required",
			args:    map[string]string{"workdir": `"x"`},
			input:   &testInput{},
			wantErr: `missing required argument "command"`,
		},
		{
			name:    "unsupported argument",
			args:    map[string]string{"command": `["a"]`, "colour": `"red"`, "Ignored": `"x"`},
			input:   &testInput{},
			wantErr: "unsupported argument(s): Ignored, colour",
		},
		{
			name:    "wrong type",
			args:    map[string]string{"command": `["a"]`, "limit": `"many"`},
			input:   &testInput{},
			wantErr: "failed to decode argument 'limit'",
		},
		{
			name:    "unknown variable",
			args:    map[string]string{"command": `[nope]`},
			input:   &testInput{},
			wantErr: "nope",
		},
		{
			name:    "not a pointer",
			args:    map[string]string{},
			input:   testInput{},
			wantErr: "non-nil pointer to a struct",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := NewConverter().DecodeArguments(context.Background(), tc.input, parseArgs(t, tc.args), evalCtx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
