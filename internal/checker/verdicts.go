package checker

import (
	"context"
	"fmt"

	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/report"
	"github.com/vk/gradegrid/internal/rules"
)

// AddVerdicts evaluates every candidate against table and records one test
// per candidate, named "<label> <candidate>" or just the candidate when label
// is empty. Rejected and undefined candidates fail their test.
func AddVerdicts(ctx context.Context, rep *report.Report, table *rules.Table, label string, candidates []string) error {
	return AddNamedVerdicts(ctx, rep, table, label, candidates, candidates)
}

// AddNamedVerdicts is AddVerdicts with the test for candidates[i] named after
// names[i] instead of the candidate itself.
func AddNamedVerdicts(ctx context.Context, rep *report.Report, table *rules.Table, label string, names, candidates []string) error {
	logger := ctxlog.FromContext(ctx)

	if len(names) != len(candidates) {
		return fmt.Errorf("rules %q: %d names for %d candidates", table.Name, len(names), len(candidates))
	}
	results, err := table.EvaluateAll(candidates)
	if err != nil {
		return err
	}
	for i, res := range results {
		name := names[i]
		if label != "" {
			name = label + " " + name
		}
		t := rep.Add(name)

		switch res.Verdict {
		case rules.Accept:
			if res.Message != "" {
				t.Logf("%s", res.Message)
			}
		case rules.Reject:
			if res.Message != "" {
				t.Failf("%s", res.Message)
			} else {
				t.Failf("%q is rejected by pattern %q", res.Candidate, res.Rule.Pattern)
			}
		default:
			t.Failf("no rule matches %q", res.Candidate)
		}

		if res.Rule != nil {
			logger.Debug("Evaluated candidate.", "rules", table.Name, "candidate", res.Candidate, "verdict", res.Verdict.String(), "pattern", res.Rule.Pattern)
		} else {
			logger.Debug("Evaluated candidate.", "rules", table.Name, "candidate", res.Candidate, "verdict", res.Verdict.String())
		}
	}
	return nil
}
