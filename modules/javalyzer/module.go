package javalyzer

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/registry"
	"github.com/vk/gradegrid/internal/report"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'javalyzer' delegate.
type Input struct {
	// Categories limits the analysis; each one is evaluated against the rule
	// list of the same name.
	Categories []string `hcl:"categories,optional"`
}

// OnRunJavalyzer extracts package, import, class and method names from the
// submitted .java files and evaluates each category against its rule list.
// A category without a rule list is skipped.
func OnRunJavalyzer(ctx context.Context, inv *checker.Invocation, input *Input) (*report.Report, error) {
	logger := ctxlog.FromContext(ctx)

	categories, err := selectCategories(input.Categories)
	if err != nil {
		return nil, err
	}

	var active []Category
	for _, c := range categories {
		if _, ok := inv.Check.RuleList(string(c)); ok {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("check %q: javalyzer needs a rules block named after at least one of %v", inv.Check.Name, categories)
	}

	files, err := inv.FilesWithExtension(".java")
	if err != nil {
		return nil, err
	}
	rep := inv.NewReport()
	if len(files) == 0 {
		rep.Add("sources").Failf("submission contains no .java files")
		return rep, nil
	}

	all := make(Names)
	for _, f := range files {
		src, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		for c, names := range Scan(string(src)) {
			for _, n := range names {
				all.add(c, n)
			}
		}
		logger.Debug("Scanned Java source.", "file", f.Name)
	}

	for _, c := range active {
		table, _ := inv.Check.RuleList(string(c))
		if err := checker.AddVerdicts(ctx, rep, table, string(c), all[c]); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func selectCategories(requested []string) ([]Category, error) {
	if len(requested) == 0 {
		return Categories, nil
	}
	known := make(map[Category]struct{}, len(Categories))
	for _, c := range Categories {
		known[c] = struct{}{}
	}
	out := make([]Category, 0, len(requested))
	for _, r := range requested {
		if _, ok := known[Category(r)]; !ok {
			return nil, fmt.Errorf("unknown category %q (expected one of %v)", r, Categories)
		}
		out = append(out, Category(r))
	}
	return out, nil
}

// Register registers the delegate with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterChecker("javalyzer", &registry.RegisteredChecker{
		Description: "Evaluates Java packages, imports, classes and methods against rule lists.",
		NewInput:    func() any { return new(Input) },
		Fn:          OnRunJavalyzer,
	})
}
