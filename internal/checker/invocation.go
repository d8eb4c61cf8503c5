// Package checker defines what a delegate receives when it is invoked: the
// loaded check and the submission it grades.
package checker

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/fsutil"
	"github.com/vk/gradegrid/internal/report"
	"github.com/vk/gradegrid/internal/rules"
)

// Invocation is the single call of a delegate for a check.
type Invocation struct {
	Check       *config.Check
	Submissions []string
}

// NewInvocation binds a check to the submission paths from the command line.
func NewInvocation(check *config.Check, submissions []string) *Invocation {
	return &Invocation{Check: check, Submissions: submissions}
}

// Submission returns the first submission path, or "." when none was given.
func (inv *Invocation) Submission() string {
	return config.RunContext{Args: inv.Submissions}.Submission()
}

// SubmissionDir is the directory programs run in: the submission itself when
// it is a directory, otherwise the directory containing it.
func (inv *Invocation) SubmissionDir() string {
	sub := inv.Submission()
	if info, err := os.Stat(sub); err == nil && !info.IsDir() {
		return filepath.Dir(sub)
	}
	return sub
}

// WorkingDir resolves a program's working directory against the submission
// directory.
func (inv *Invocation) WorkingDir(workdir string) string {
	base := inv.SubmissionDir()
	if workdir == "" {
		return base
	}
	if filepath.IsAbs(workdir) {
		return workdir
	}
	return filepath.Join(base, workdir)
}

// Resolve makes a path from the checker file absolute against the check's
// directory.
func (inv *Invocation) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(inv.Check.Dir, path)
}

// File is a submission file: where it is and how it is named in reports.
type File struct {
	Path string
	// Name is the path relative to its submission root, slash separated.
	Name string
	// Label names the file in reports. It is Name, prefixed with the
	// submission root when several roots were given.
	Label string
}

// Files lists the files of every submission path, in argument order.
func (inv *Invocation) Files() ([]File, error) {
	var files []File
	roots := inv.submissionRoots()
	for _, root := range roots {
		names, err := fsutil.ListFiles(root)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			path, label := root, name
			if info.IsDir() {
				path = filepath.Join(root, filepath.FromSlash(name))
			}
			if len(roots) > 1 {
				label = filepath.ToSlash(path)
			}
			files = append(files, File{Path: path, Name: name, Label: label})
		}
	}
	return files, nil
}

// FilesWithExtension lists the submission files with the given extension.
func (inv *Invocation) FilesWithExtension(ext string) ([]File, error) {
	all, err := inv.Files()
	if err != nil {
		return nil, err
	}
	var files []File
	for _, f := range all {
		if filepath.Ext(f.Name) == ext {
			files = append(files, f)
		}
	}
	return files, nil
}

func (inv *Invocation) submissionRoots() []string {
	if len(inv.Submissions) == 0 {
		return []string{"."}
	}
	return inv.Submissions
}

// NewReport starts the report for this invocation.
func (inv *Invocation) NewReport() *report.Report {
	return report.New(inv.Check.Name, inv.Check.Delegate)
}

// TestTimeout returns the limit for a test: its own, the check's, or def.
func (inv *Invocation) TestTimeout(tc *config.TestCase, def time.Duration) time.Duration {
	switch {
	case tc != nil && tc.Timeout > 0:
		return tc.Timeout
	case inv.Check.Timeout > 0:
		return inv.Check.Timeout
	default:
		return def
	}
}

// RequireRuleList returns a rule table the delegate cannot work without.
func (inv *Invocation) RequireRuleList(name string) (*rules.Table, error) {
	t, ok := inv.Check.RuleList(name)
	if !ok {
		return nil, fmt.Errorf("check %q: delegate %q needs a rules %q block", inv.Check.Name, inv.Check.Delegate, name)
	}
	return t, nil
}
