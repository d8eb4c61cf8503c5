package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a checker or manifest file may hold.
type fileRoot struct {
	Checks   []*checkBlock   `hcl:"check,block"`
	Checkers []*checkerBlock `hcl:"checker,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// checkBlock is `check "<delegate>" "<name>" { ... }`.
type checkBlock struct {
	Delegate    string          `hcl:"delegate,label"`
	Name        string          `hcl:"name,label"`
	Description hcl.Expression  `hcl:"description,optional"`
	Timeout     hcl.Expression  `hcl:"timeout,optional"`
	Arguments   *argumentsBlock `hcl:"arguments,block"`
	Tests       []*testBlock    `hcl:"test,block"`
	Rules       []*rulesBlock   `hcl:"rules,block"`
}

// argumentsBlock holds delegate-specific attributes, decoded later.
type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// testBlock is one test case descriptor. Every attribute is optional and is
// evaluated during translation so that absence can be told apart from an
// empty value.
type testBlock struct {
	Name        string         `hcl:"name,label"`
	Description hcl.Expression `hcl:"description,optional"`
	Arguments   hcl.Expression `hcl:"arguments,optional"`
	Stdin       hcl.Expression `hcl:"stdin,optional"`
	Stdout      hcl.Expression `hcl:"stdout,optional"`
	Stderr      hcl.Expression `hcl:"stderr,optional"`
	Protocol    hcl.Expression `hcl:"protocol,optional"`
	Analysers   hcl.Expression `hcl:"analysers,optional"`
	Timeout     hcl.Expression `hcl:"timeout,optional"`
	ExitCode    hcl.Expression `hcl:"exit_code,optional"`
}

// rulesBlock is a named rule list given either as rule blocks, as a table
// attribute or as a table file.
type rulesBlock struct {
	Name      string         `hcl:"name,label"`
	Table     hcl.Expression `hcl:"table,optional"`
	TableFile hcl.Expression `hcl:"table_file,optional"`
	Rules     []*ruleBlock   `hcl:"rule,block"`
}

// ruleBlock is `rule "<verdict>" "<pattern>" { message = "..." }`. The
// message stays an unevaluated template until a candidate is known.
type ruleBlock struct {
	Verdict string         `hcl:"verdict,label"`
	Pattern string         `hcl:"pattern,label"`
	Message hcl.Expression `hcl:"message,optional"`
}

// checkerBlock is a delegate manifest in the checker library.
type checkerBlock struct {
	Name        string        `hcl:"name,label"`
	Description string        `hcl:"description,optional"`
	Inputs      []*inputBlock `hcl:"input,block"`
}

type inputBlock struct {
	Name        string `hcl:"name,label"`
	Description string `hcl:"description,optional"`
	Optional    bool   `hcl:"optional,optional"`
}

// solutionRoot is the JSON solution configuration.
type solutionRoot struct {
	Pythomat       string   `hcl:"pythomat,optional"`
	SampleSolution string   `hcl:"sample_solution"`
	Checkers       []string `hcl:"checkers"`
	Remain         hcl.Body `hcl:",remain"`
}
