package hcl

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gradegrid/internal/analyse"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/rules"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// streams are the keys accepted in a test's analysers map.
var streams = map[string]struct{}{"stdout": {}, "stderr": {}}

// translateCheck converts a check block into the agnostic model, evaluating
// everything except the delegate arguments and rule messages.
func (l *Loader) translateCheck(ctx context.Context, b *checkBlock, dir string, evalCtx *hcl.EvalContext) (*config.Check, error) {
	logger := ctxlog.FromContext(ctx)

	check := &config.Check{
		Delegate:    b.Delegate,
		Name:        b.Name,
		Dir:         dir,
		EvalContext: evalCtx,
		Rules:       make(map[string]*rules.Table),
	}
	if b.Arguments != nil {
		check.Arguments = l.extractBodyAttributes(b.Arguments.Body)
	} else {
		check.Arguments = make(map[string]hcl.Expression)
	}

	if _, err := decodeOptional(b.Description, evalCtx, cty.String, &check.Description); err != nil {
		return nil, fmt.Errorf("check %q: description: %w", b.Name, err)
	}
	timeout, err := decodeDuration(b.Timeout, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("check %q: timeout: %w", b.Name, err)
	}
	check.Timeout = timeout

	seenTests := make(map[string]struct{}, len(b.Tests))
	for _, tb := range b.Tests {
		if _, dup := seenTests[tb.Name]; dup {
			return nil, fmt.Errorf("check %q: duplicate test %q", b.Name, tb.Name)
		}
		seenTests[tb.Name] = struct{}{}
		tc, err := l.translateTest(tb, dir, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("check %q, test %q: %w", b.Name, tb.Name, err)
		}
		check.Tests = append(check.Tests, tc)
	}

	for _, rb := range b.Rules {
		if _, dup := check.Rules[rb.Name]; dup {
			return nil, fmt.Errorf("check %q: duplicate rules %q", b.Name, rb.Name)
		}
		table, err := l.translateRuleList(rb, dir, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", b.Name, err)
		}
		if !table.HasCatchAll() {
			logger.Warn("Rule list has no catch-all rule; some candidates may be left undefined.",
				"check", b.Name, "rules", rb.Name)
		}
		check.Rules[rb.Name] = table
	}

	logger.Debug("Translated check.", "check", check.Name, "delegate", check.Delegate,
		"tests", len(check.Tests), "rule_lists", len(check.Rules))
	return check, nil
}

// translateTest evaluates one test block.
func (l *Loader) translateTest(b *testBlock, dir string, evalCtx *hcl.EvalContext) (*config.TestCase, error) {
	tc := &config.TestCase{Name: b.Name}

	if _, err := decodeOptional(b.Description, evalCtx, cty.String, &tc.Description); err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	if _, err := decodeOptional(b.Arguments, evalCtx, cty.List(cty.String), &tc.Arguments); err != nil {
		return nil, fmt.Errorf("arguments: %w", err)
	}
	if _, err := decodeOptional(b.Stdin, evalCtx, cty.String, &tc.Stdin); err != nil {
		return nil, fmt.Errorf("stdin: %w", err)
	}

	var stdout, stderr string
	if ok, err := decodeOptional(b.Stdout, evalCtx, cty.String, &stdout); err != nil {
		return nil, fmt.Errorf("stdout: %w", err)
	} else if ok {
		tc.Stdout = &stdout
	}
	if ok, err := decodeOptional(b.Stderr, evalCtx, cty.String, &stderr); err != nil {
		return nil, fmt.Errorf("stderr: %w", err)
	} else if ok {
		tc.Stderr = &stderr
	}

	var exitCode int
	if ok, err := decodeOptional(b.ExitCode, evalCtx, cty.Number, &exitCode); err != nil {
		return nil, fmt.Errorf("exit_code: %w", err)
	} else if ok {
		tc.ExitCode = &exitCode
	}

	var protocol string
	if ok, err := decodeOptional(b.Protocol, evalCtx, cty.String, &protocol); err != nil {
		return nil, fmt.Errorf("protocol: %w", err)
	} else if ok {
		tc.Protocol = resolve(dir, protocol)
	}

	if _, err := decodeOptional(b.Analysers, evalCtx, cty.Map(cty.String), &tc.Analysers); err != nil {
		return nil, fmt.Errorf("analysers: %w", err)
	}
	for stream, name := range tc.Analysers {
		if _, ok := streams[stream]; !ok {
			return nil, fmt.Errorf("analysers: unknown stream %q (expected stdout or stderr)", stream)
		}
		if _, err := analyse.Lookup(name); err != nil {
			return nil, fmt.Errorf("analysers: %w", err)
		}
	}

	timeout, err := decodeDuration(b.Timeout, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	tc.Timeout = timeout
	return tc, nil
}

// translateRuleList builds a rule table from exactly one of its sources.
func (l *Loader) translateRuleList(b *rulesBlock, dir string, evalCtx *hcl.EvalContext) (*rules.Table, error) {
	hasTable := isPresent(b.Table)
	hasFile := isPresent(b.TableFile)
	hasBlocks := len(b.Rules) > 0

	sources := 0
	for _, present := range []bool{hasTable, hasFile, hasBlocks} {
		if present {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("rules %q: use exactly one of rule blocks, table or table_file", b.Name)
	}

	switch {
	case hasTable:
		var rows [][]string
		if _, err := decodeOptional(b.Table, evalCtx, cty.List(cty.List(cty.String)), &rows); err != nil {
			return nil, fmt.Errorf("rules %q: table: %w", b.Name, err)
		}
		return rules.FromRows(b.Name, rows)

	case hasFile:
		var path string
		if _, err := decodeOptional(b.TableFile, evalCtx, cty.String, &path); err != nil {
			return nil, fmt.Errorf("rules %q: table_file: %w", b.Name, err)
		}
		return rules.LoadTableFile(b.Name, resolve(dir, path))
	}

	table := &rules.Table{Name: b.Name, Rules: make([]*rules.Rule, 0, len(b.Rules))}
	for i, rb := range b.Rules {
		verdict, err := rules.ParseVerdict(rb.Verdict)
		if err != nil {
			return nil, fmt.Errorf("rule list %q, entry %d: %w", b.Name, i+1, err)
		}
		var message hcl.Expression
		if isPresent(rb.Message) {
			message = rb.Message
		}
		rule, err := rules.NewRule(verdict, rb.Pattern, message)
		if err != nil {
			return nil, fmt.Errorf("rule list %q, entry %d: %w", b.Name, i+1, err)
		}
		table.Rules = append(table.Rules, rule)
	}
	return table, nil
}

// translateManifest converts a checker block into a manifest.
func (l *Loader) translateManifest(b *checkerBlock, file string) (*config.CheckerManifest, error) {
	m := &config.CheckerManifest{
		Name:        b.Name,
		Description: b.Description,
		Inputs:      make(map[string]*config.InputDefinition, len(b.Inputs)),
		File:        file,
	}
	for _, in := range b.Inputs {
		if _, dup := m.Inputs[in.Name]; dup {
			return nil, fmt.Errorf("checker %q in %s: duplicate input %q", b.Name, file, in.Name)
		}
		m.Inputs[in.Name] = &config.InputDefinition{
			Name:        in.Name,
			Description: in.Description,
			Optional:    in.Optional,
		}
	}
	return m, nil
}

// extractBodyAttributes is a helper to get raw expressions from a remain body.
func (l *Loader) extractBodyAttributes(body hcl.Body) map[string]hcl.Expression {
	exprs := make(map[string]hcl.Expression)
	if body == nil {
		return exprs
	}
	attrs, _ := body.JustAttributes()
	for name, attr := range attrs {
		exprs[name] = attr.Expr
	}
	return exprs
}

// isPresent reports whether an optional attribute was written in the file.
// gohcl fills absent attributes with a synthetic null expression.
func isPresent(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	if len(expr.Variables()) > 0 {
		return true
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return true
	}
	return !val.IsNull()
}

// decodeOptional evaluates expr, converts it to ty and stores it in target.
// It reports false, leaving target untouched, when the value is null.
func decodeOptional(expr hcl.Expression, evalCtx *hcl.EvalContext, ty cty.Type, target any) (bool, error) {
	if expr == nil {
		return false, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return false, diags
	}
	if val.IsNull() {
		return false, nil
	}
	if !val.IsWhollyKnown() {
		return false, fmt.Errorf("%s: value is not known", expr.Range())
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return false, fmt.Errorf("%s: expected %s: %w", expr.Range(), ty.FriendlyName(), err)
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return false, fmt.Errorf("%s: %w", expr.Range(), err)
	}
	return true, nil
}

// decodeDuration evaluates an optional duration string such as "2s".
func decodeDuration(expr hcl.Expression, evalCtx *hcl.EvalContext) (time.Duration, error) {
	var raw string
	ok, err := decodeOptional(expr, evalCtx, cty.String, &raw)
	if err != nil || !ok {
		return 0, err
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", raw)
	}
	return d, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
