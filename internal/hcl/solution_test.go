package hcl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/testutil"
)

func TestLoadSolution(t *testing.T) {
	t.Parallel()
	root := testutil.WriteFiles(t, map[string]string{
		"config_mySolution.json": `{
  "pythomat": "checkers",
  "sample_solution": "solution",
  "checkers": ["compiler", "pythomat:names.hcl", "script:build.sh", "copy:data"],
  "comment": "ignored"
}`,
	})

	sc, err := NewLoader().LoadSolution(context.Background(), filepath.Join(root, "config_mySolution.json"))
	require.NoError(t, err)

	assert.Equal(t, "checkers", sc.Library)
	assert.Equal(t, "solution", sc.SampleSolution)
	assert.Equal(t, root, sc.Dir)

	want := config.Pipeline{
		{Kind: config.StageCompiler, Raw: "compiler"},
		{Kind: config.StagePythomat, Args: "names.hcl", Raw: "pythomat:names.hcl"},
		{Kind: config.StageScript, Args: "build.sh", Raw: "script:build.sh"},
		{Kind: config.StageCopy, Args: "data", Raw: "copy:data"},
	}
	if diff := cmp.Diff(want, sc.Pipeline); diff != "" {
		t.Errorf("pipeline mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSolution_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed json", content: `{"checkers": [`, wantErr: "failed to parse"},
		{name: "missing sample solution", content: `{"checkers": []}`, wantErr: "sample_solution"},
		{name: "empty sample solution", content: `{"sample_solution": "", "checkers": []}`, wantErr: "must not be empty"},
		{name: "unknown stage", content: `{"sample_solution": "s", "checkers": ["resolution"]}`, wantErr: "unknown kind"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := testutil.WriteFiles(t, map[string]string{"config.json": tc.content})
			_, err := NewLoader().LoadSolution(context.Background(), filepath.Join(root, "config.json"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	_, err := NewLoader().LoadSolution(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
