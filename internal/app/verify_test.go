package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gradegrid/internal/testutil"
)

func TestApp_VerifySolution(t *testing.T) {
	t.Parallel()
	root := testutil.WriteFiles(t, map[string]string{
		"names.hcl": namesCheck,
		"strict.hcl": `
check "filenames" "strict" {
  rules "files" {
    table = [["accept", "Main.java"], ["reject", "*"]]
  }
}
check "filenames" "other" {
  rules "files" {
    table = [["reject", "*"]]
  }
}`,
		"solution/Main.java": "class Main {}",
		"config_mySolution.json": `{
  "sample_solution": "solution",
  "checkers": ["compiler", "pythomat:names.hcl", "script:build.sh", "pythomat:strict.hcl strict"]
}`,
	})

	a, out, logs := newTestApp(t, Config{SolutionConfigPath: filepath.Join(root, "config_mySolution.json")})
	pub := &recordingPublisher{}
	a.SetPublisher(pub)

	reports, passed, err := a.VerifySolution(context.Background())
	require.NoError(t, err)
	assert.True(t, passed)
	require.Len(t, reports, 2)
	assert.Equal(t, "names", reports[0].Check)
	assert.Equal(t, "strict", reports[1].Check)
	assert.Len(t, pub.reports, 2)

	assert.Contains(t, out.String(), "check names (filenames): PASS")
	assert.Contains(t, out.String(), "check strict (filenames): PASS")
	assert.Contains(t, logs.String(), "stage=compiler")
	assert.Contains(t, logs.String(), "stage=script:build.sh")
}

func TestApp_VerifySolution_Failing(t *testing.T) {
	t.Parallel()
	root := testutil.WriteFiles(t, map[string]string{
		"names.hcl":                  namesCheck,
		"solution/Main.java":         "",
		"solution/Main.class":        "",
		"config_mySolution.json":     `{"sample_solution": "solution", "checkers": ["pythomat:names.hcl"]}`,
		"config_badStage.json":       `{"sample_solution": "solution", "checkers": ["pythomat:a b c"]}`,
		"config_missingChecker.json": `{"sample_solution": "solution", "checkers": ["pythomat:absent.hcl"]}`,
	})

	a, _, _ := newTestApp(t, Config{SolutionConfigPath: filepath.Join(root, "config_mySolution.json")})
	reports, passed, err := a.VerifySolution(context.Background())
	require.NoError(t, err)
	assert.False(t, passed)
	require.Len(t, reports, 1)

	a, _, _ = newTestApp(t, Config{SolutionConfigPath: filepath.Join(root, "config_badStage.json")})
	_, _, err = a.VerifySolution(context.Background())
	require.ErrorContains(t, err, "expected 'pythomat:<checker-file> [check-name]'")

	a, _, _ = newTestApp(t, Config{SolutionConfigPath: filepath.Join(root, "config_missingChecker.json")})
	_, _, err = a.VerifySolution(context.Background())
	require.ErrorContains(t, err, "checker file")
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})
	require.ErrorContains(t, err, "a checker file is required")

	_, err = NewConfig(Config{CheckPath: "a.hcl", SolutionConfigPath: "config.json"})
	require.ErrorContains(t, err, "cannot be combined")

	_, err = NewConfig(Config{CheckPath: "a.hcl", NotifyURL: "ftp://x"})
	require.ErrorContains(t, err, "scheme must be")

	cfg, err := NewConfig(Config{CheckPath: "a.hcl", NotifyURL: "http://localhost:3000"})
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.CheckPath)
}
