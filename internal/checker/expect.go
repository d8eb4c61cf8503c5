package checker

import (
	"sort"
	"time"

	"github.com/vk/gradegrid/internal/analyse"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/procexec"
	"github.com/vk/gradegrid/internal/report"
)

// ExpectResult compares a finished program with the test's expectations and
// fails t on every mismatch. Delegates that judge stdout themselves pass
// checkStdout=false. A timeout fails the test without further comparisons.
func ExpectResult(t *report.TestResult, tc *config.TestCase, res *procexec.Result, checkStdout bool) error {
	if res.TimedOut {
		t.Failf("timed out after %s", res.Duration.Round(time.Millisecond))
		return nil
	}
	if tc.ExitCode != nil && res.ExitCode != *tc.ExitCode {
		t.Failf("exit code: expected %d, got %d", *tc.ExitCode, res.ExitCode)
	}
	if checkStdout && tc.Stdout != nil {
		if err := expectStream(t, tc, "stdout", *tc.Stdout, res.Stdout); err != nil {
			return err
		}
	}
	if tc.Stderr != nil {
		if err := expectStream(t, tc, "stderr", *tc.Stderr, res.Stderr); err != nil {
			return err
		}
	}
	return nil
}

func expectStream(t *report.TestResult, tc *config.TestCase, stream, want, got string) error {
	a, err := analyse.Lookup(tc.Analyser(stream, analyse.Default))
	if err != nil {
		return err
	}
	if r := a(want, got); !r.OK {
		t.Failf("%s: %s", stream, r.Detail)
	}
	return nil
}

// Environ turns a variable map into sorted KEY=value pairs.
func Environ(env map[string]string) []string {
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return pairs
}
