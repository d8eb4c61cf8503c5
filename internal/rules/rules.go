package rules

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Verdict is the outcome attached to a rule match.
type Verdict int

const (
	// Undefined is the result for a candidate that no rule matches.
	Undefined Verdict = iota
	Accept
	Reject
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "undefined"
	}
}

// ParseVerdict converts the textual verdict used in rule tables.
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "accept":
		return Accept, nil
	case "reject":
		return Reject, nil
	default:
		return Undefined, fmt.Errorf("unknown verdict %q: must be 'accept' or 'reject'", s)
	}
}

// messageVariables are the only names a message template may reference.
var messageVariables = map[string]struct{}{
	"name":    {},
	"pattern": {},
}

// Rule is a single [verdict, pattern, message] entry.
type Rule struct {
	Verdict Verdict
	Pattern string
	// Message is nil when the rule carries no message.
	Message hcl.Expression

	glob glob
}

// NewRule compiles the pattern and checks that the message template only
// refers to ${name} and ${pattern}.
func NewRule(verdict Verdict, pattern string, message hcl.Expression) (*Rule, error) {
	if verdict != Accept && verdict != Reject {
		return nil, fmt.Errorf("rule %q: verdict must be accept or reject", pattern)
	}
	if message != nil {
		for _, traversal := range message.Variables() {
			if _, ok := messageVariables[traversal.RootName()]; !ok {
				return nil, fmt.Errorf("rule %q: message refers to unknown variable %q (only ${name} and ${pattern} are available)", pattern, traversal.RootName())
			}
		}
	}
	return &Rule{Verdict: verdict, Pattern: pattern, Message: message, glob: compileGlob(pattern)}, nil
}

// ParseMessage compiles a message template such as "bad file ${name}".
func ParseMessage(src string) (hcl.Expression, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(src), "message", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	return expr, nil
}

// Matches reports whether the candidate matches the rule's pattern.
func (r *Rule) Matches(candidate string) bool {
	return r.glob.Match(candidate)
}

// render evaluates the message template for a candidate. A missing or null
// message renders as the empty string.
func (r *Rule) render(candidate string) (string, error) {
	if r.Message == nil {
		return "", nil
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"name":    cty.StringVal(candidate),
			"pattern": cty.StringVal(r.Pattern),
		},
	}
	val, diags := r.Message.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("rule %q: failed to render message: %w", r.Pattern, diags)
	}
	if val.IsNull() {
		return "", nil
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("rule %q: message must be a string: %w", r.Pattern, err)
	}
	return val.AsString(), nil
}

// Result is the evaluation of one candidate against a table.
type Result struct {
	Candidate string
	Verdict   Verdict
	// Rule is nil when the verdict is Undefined.
	Rule    *Rule
	Message string
}

// Accepted reports whether the candidate was explicitly accepted.
func (r Result) Accepted() bool {
	return r.Verdict == Accept
}

// Table is an ordered rule list evaluated first-match-wins.
type Table struct {
	Name  string
	Rules []*Rule
}

// HasCatchAll reports whether the last rule matches every candidate, which
// guarantees a defined verdict for all inputs. "*", "**" and so on all count.
func (t *Table) HasCatchAll() bool {
	if len(t.Rules) == 0 {
		return false
	}
	return isCatchAll(t.Rules[len(t.Rules)-1].Pattern)
}

// Evaluate returns the verdict of the first rule matching the candidate.
func (t *Table) Evaluate(candidate string) (Result, error) {
	for _, rule := range t.Rules {
		if !rule.Matches(candidate) {
			continue
		}
		msg, err := rule.render(candidate)
		if err != nil {
			return Result{}, fmt.Errorf("rule list %q: %w", t.Name, err)
		}
		return Result{Candidate: candidate, Verdict: rule.Verdict, Rule: rule, Message: msg}, nil
	}
	return Result{Candidate: candidate, Verdict: Undefined}, nil
}

// EvaluateAll evaluates every candidate in order.
func (t *Table) EvaluateAll(candidates []string) ([]Result, error) {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		res, err := t.Evaluate(c)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
