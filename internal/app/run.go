package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/report"
)

// Run grades the configured submissions with the configured checker file.
// The returned report may be failing; an error means the run itself broke.
func (a *App) Run(ctx context.Context) (*report.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	rep, err := a.runCheck(ctx, a.config.CheckPath, a.config.CheckName, a.config.Submissions, a.config.LibraryPath)
	if err != nil {
		return nil, err
	}
	if err := rep.Render(a.outW); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	a.publish(ctx, rep)

	a.logger.Debug("App.Run method finished.")
	return rep, nil
}

// runCheck performs one delegate invocation: load, select, decode, call.
func (a *App) runCheck(ctx context.Context, checkPath, checkName string, submissions []string, library string) (*report.Report, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(checkPath); err != nil {
		return nil, fmt.Errorf("checker file: %w", err)
	}
	rc := config.RunContext{Args: submissions}

	model, converter, err := a.loader.Load(ctx, rc, checkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if library != "" {
		libModel, _, err := a.loader.Load(ctx, rc, library)
		if err != nil {
			return nil, fmt.Errorf("failed to load checker library: %w", err)
		}
		for name, m := range libModel.Manifests {
			if prev, dup := model.Manifests[name]; dup && prev.File != m.File {
				return nil, fmt.Errorf("checker %q declared in both %s and %s", name, prev.File, m.File)
			}
			model.Manifests[name] = m
		}
	}
	logger.Debug("Configuration loaded and translated into unified model.", "checks", len(model.Checks), "manifests", len(model.Manifests))

	a.registry.PopulateManifestsFromModel(model)
	if err := a.registry.ValidateRegistry(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	check, err := selectCheck(model, checkPath, checkName)
	if err != nil {
		return nil, err
	}

	delegate, ok := a.registry.Lookup(check.Delegate)
	if !ok {
		return nil, fmt.Errorf("check %q: unknown checker delegate %q (available: %s)",
			check.Name, check.Delegate, strings.Join(a.registry.Names(), ", "))
	}

	input := delegate.NewInput()
	if err := converter.DecodeArguments(ctx, input, check.Arguments, check.EvalContext); err != nil {
		return nil, fmt.Errorf("check %q: %w", check.Name, err)
	}

	logger.Info("Invoking checker.", "check", check.Name, "delegate", check.Delegate, "submissions", submissions)
	rep, err := delegate.Call(ctx, checker.NewInvocation(check, submissions), input)
	if err != nil {
		return nil, fmt.Errorf("check %q: delegate %q failed: %w", check.Name, check.Delegate, err)
	}

	passed, total := rep.Counts()
	logger.Info("Checker finished.", "check", check.Name, "passed", rep.Passed(), "tests_passed", passed, "tests_total", total)
	return rep, nil
}

// selectCheck picks the check to run: the named one, or the only one.
func selectCheck(model *config.Model, checkPath, name string) (*config.Check, error) {
	if name != "" {
		for _, c := range model.Checks {
			if c.Name == name {
				return c, nil
			}
		}
		return nil, fmt.Errorf("%s: no check named %q", checkPath, name)
	}
	switch len(model.Checks) {
	case 0:
		return nil, fmt.Errorf("%s: no check block found", checkPath)
	case 1:
		return model.Checks[0], nil
	}
	names := make([]string, len(model.Checks))
	for i, c := range model.Checks {
		names[i] = c.Name
	}
	return nil, fmt.Errorf("%s declares %d checks; select one with -name (%s)", checkPath, len(names), strings.Join(names, ", "))
}
