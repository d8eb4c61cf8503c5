// Package report collects the per-test outcome of one checker run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// TestResult is the outcome of a single test case or candidate.
type TestResult struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Passed      bool     `json:"passed"`
	Messages    []string `json:"messages,omitempty"`
}

// Failf marks the test as failed and records why.
func (t *TestResult) Failf(format string, args ...any) {
	t.Passed = false
	t.Messages = append(t.Messages, fmt.Sprintf(format, args...))
}

// Logf records a note without changing the outcome.
func (t *TestResult) Logf(format string, args ...any) {
	t.Messages = append(t.Messages, fmt.Sprintf(format, args...))
}

// Report is the full result of invoking one delegate.
type Report struct {
	Check    string        `json:"check"`
	Delegate string        `json:"delegate"`
	Tests    []*TestResult `json:"tests"`
}

// New starts an empty report.
func New(check, delegate string) *Report {
	return &Report{Check: check, Delegate: delegate, Tests: []*TestResult{}}
}

// Add appends a test that passes until it is failed.
func (r *Report) Add(name string) *TestResult {
	t := &TestResult{Name: name, Passed: true}
	r.Tests = append(r.Tests, t)
	return t
}

// Passed reports whether every test passed.
func (r *Report) Passed() bool {
	for _, t := range r.Tests {
		if !t.Passed {
			return false
		}
	}
	return true
}

// Counts returns the number of passed and total tests.
func (r *Report) Counts() (passed, total int) {
	for _, t := range r.Tests {
		if t.Passed {
			passed++
		}
	}
	return passed, len(r.Tests)
}

// Render writes a human-readable summary.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "check %s (%s): %s\n", r.Check, r.Delegate, status(r.Passed()))
	for _, t := range r.Tests {
		fmt.Fprintf(&b, "  %s %s\n", status(t.Passed), t.Name)
		for _, msg := range t.Messages {
			fmt.Fprintf(&b, "       %s\n", msg)
		}
	}
	passed, total := r.Counts()
	fmt.Fprintf(&b, "%d/%d tests passed\n", passed, total)

	_, err := io.WriteString(w, b.String())
	return err
}

// Payload converts the report into plain maps and slices for transports that
// serialise arbitrary values.
func (r *Report) Payload() (map[string]any, error) {
	data, err := json.Marshal(struct {
		*Report
		Passed bool `json:"passed"`
	}{r, r.Passed()})
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func status(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
