package checker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/rules"
)

func TestInvocation_Files(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Main.java"), []byte("class Main {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	single := filepath.Join(t.TempDir(), "Extra.java")
	require.NoError(t, os.WriteFile(single, []byte("class Extra {}"), 0o644))

	inv := NewInvocation(&config.Check{Name: "c", Delegate: "filenames"}, []string{dir, single})

	files, err := inv.Files()
	require.NoError(t, err)
	assert.Equal(t, []File{
		{Path: filepath.Join(dir, "notes.txt"), Name: "notes.txt", Label: filepath.ToSlash(filepath.Join(dir, "notes.txt"))},
		{Path: filepath.Join(dir, "src", "Main.java"), Name: "src/Main.java", Label: filepath.ToSlash(filepath.Join(dir, "src", "Main.java"))},
		{Path: single, Name: "Extra.java", Label: filepath.ToSlash(single)},
	}, files)

	files, err = NewInvocation(inv.Check, []string{dir}).Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "src/Main.java", files[1].Label)

	java, err := inv.FilesWithExtension(".java")
	require.NoError(t, err)
	require.Len(t, java, 2)

	assert.Equal(t, dir, inv.SubmissionDir())
	assert.Equal(t, filepath.Dir(single), NewInvocation(inv.Check, []string{single}).SubmissionDir())
}

func TestInvocation_ResolveAndTimeouts(t *testing.T) {
	check := &config.Check{Name: "c", Delegate: "ipo", Dir: "/assignments/hello"}
	inv := NewInvocation(check, nil)

	assert.Equal(t, ".", inv.Submission())
	assert.Equal(t, filepath.Join("/assignments/hello", "expected.txt"), inv.Resolve("expected.txt"))
	assert.Equal(t, "/abs/path", inv.Resolve("/abs/path"))

	assert.Equal(t, time.Second, inv.TestTimeout(&config.TestCase{}, time.Second))
	check.Timeout = 3 * time.Second
	assert.Equal(t, 3*time.Second, inv.TestTimeout(&config.TestCase{}, time.Second))
	assert.Equal(t, 5*time.Second, inv.TestTimeout(&config.TestCase{Timeout: 5 * time.Second}, time.Second))
}

func TestInvocation_RequireRuleList(t *testing.T) {
	table, err := rules.FromRows("files", [][]string{{"accept", "*"}})
	require.NoError(t, err)
	check := &config.Check{Name: "c", Delegate: "filenames", Rules: map[string]*rules.Table{"files": table}}
	inv := NewInvocation(check, nil)

	got, err := inv.RequireRuleList("files")
	require.NoError(t, err)
	assert.Same(t, table, got)

	_, err = inv.RequireRuleList("imports")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `needs a rules "imports" block`)
}

func TestInvocation_WorkingDir(t *testing.T) {
	sub := t.TempDir()
	inv := NewInvocation(&config.Check{}, []string{sub})

	assert.Equal(t, sub, inv.WorkingDir(""))
	assert.Equal(t, filepath.Join(sub, "bin"), inv.WorkingDir("bin"))
	assert.Equal(t, "/opt", inv.WorkingDir("/opt"))
}
