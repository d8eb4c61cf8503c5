// Package analyse compares a captured output stream with its expectation.
//
// Each comparison strategy is registered under a short name ("exact",
// "lines", "regex", ...) that checker files use to pick how a stream is
// judged.
package analyse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Result is the outcome of one comparison. Detail explains a mismatch.
type Result struct {
	OK     bool
	Detail string
}

// Analyser compares the expected text with the actual stream content.
type Analyser func(expected, actual string) Result

// Default is the strategy used for streams without an explicit analyser.
const Default = "exact"

var analysers = map[string]Analyser{
	"exact":    Exact,
	"trim":     Trim,
	"lines":    Lines,
	"contains": Contains,
	"regex":    Regex,
	"ignore":   Ignore,
}

// Lookup returns the analyser registered under name.
func Lookup(name string) (Analyser, error) {
	a, ok := analysers[name]
	if !ok {
		return nil, fmt.Errorf("unknown analyser %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return a, nil
}

// Names lists the registered strategies in sorted order.
func Names() []string {
	names := make([]string, 0, len(analysers))
	for name := range analysers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exact requires byte-for-byte equality.
func Exact(expected, actual string) Result {
	if expected == actual {
		return Result{OK: true}
	}
	return Result{Detail: firstDifference(strings.Split(expected, "\n"), strings.Split(actual, "\n"))}
}

// Trim ignores leading and trailing whitespace of the whole text.
func Trim(expected, actual string) Result {
	return Exact(strings.TrimSpace(expected), strings.TrimSpace(actual))
}

// Lines compares line by line, ignoring trailing whitespace on each line and
// trailing blank lines.
func Lines(expected, actual string) Result {
	want, got := normalizedLines(expected), normalizedLines(actual)
	if len(want) == len(got) {
		same := true
		for i := range want {
			if want[i] != got[i] {
				same = false
				break
			}
		}
		if same {
			return Result{OK: true}
		}
	}
	return Result{Detail: firstDifference(want, got)}
}

// Contains requires the expected text to occur somewhere in the stream.
func Contains(expected, actual string) Result {
	if strings.Contains(actual, expected) {
		return Result{OK: true}
	}
	return Result{Detail: fmt.Sprintf("output does not contain %q", expected)}
}

// Regex treats the expectation as a regular expression that must match the
// whole stream.
func Regex(expected, actual string) Result {
	re, err := regexp.Compile(`^(?:` + expected + `)$`)
	if err != nil {
		return Result{Detail: fmt.Sprintf("invalid expectation pattern: %v", err)}
	}
	if re.MatchString(actual) {
		return Result{OK: true}
	}
	return Result{Detail: fmt.Sprintf("output %q does not match /%s/", abbreviate(actual), expected)}
}

// Ignore accepts anything.
func Ignore(string, string) Result {
	return Result{OK: true}
}

func normalizedLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// firstDifference describes the first line where want and got diverge.
func firstDifference(want, got []string) string {
	for i := 0; i < len(want) || i < len(got); i++ {
		switch {
		case i >= len(got):
			return fmt.Sprintf("line %d: expected %q, output ended", i+1, want[i])
		case i >= len(want):
			return fmt.Sprintf("line %d: unexpected extra output %q", i+1, got[i])
		case want[i] != got[i]:
			return fmt.Sprintf("line %d: expected %q, got %q", i+1, want[i], got[i])
		}
	}
	return "output differs"
}

func abbreviate(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
