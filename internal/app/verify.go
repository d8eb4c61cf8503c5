package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/report"
)

// VerifySolution grades the sample solution of a solution configuration with
// every 'pythomat:' stage of its checker pipeline. Other stages belong to the
// external pipeline and are skipped. passed is true when every executed stage
// passed.
func (a *App) VerifySolution(ctx context.Context) (reports []*report.Report, passed bool, err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)

	sc, err := a.loader.LoadSolution(ctx, a.config.SolutionConfigPath)
	if err != nil {
		return nil, false, err
	}

	library := a.config.LibraryPath
	if sc.Library != "" {
		library = resolve(sc.Dir, sc.Library)
	}
	sample := resolve(sc.Dir, sc.SampleSolution)

	passed = true
	for _, stage := range sc.Pipeline {
		if stage.Kind != config.StagePythomat {
			logger.Info("Skipping external stage.", "stage", stage.Raw)
			continue
		}
		fields, err := stage.Fields()
		if err != nil {
			return reports, false, err
		}
		if len(fields) == 0 || len(fields) > 2 {
			return reports, false, fmt.Errorf("stage %q: expected 'pythomat:<checker-file> [check-name]'", stage.Raw)
		}
		checkName := ""
		if len(fields) == 2 {
			checkName = fields[1]
		}

		rep, err := a.runCheck(ctx, resolve(sc.Dir, fields[0]), checkName, []string{sample}, library)
		if err != nil {
			return reports, false, fmt.Errorf("stage %q: %w", stage.Raw, err)
		}
		if err := rep.Render(a.outW); err != nil {
			return reports, false, fmt.Errorf("failed to write report: %w", err)
		}
		a.publish(ctx, rep)

		reports = append(reports, rep)
		passed = passed && rep.Passed()
	}

	if len(reports) == 0 {
		logger.Warn("Solution configuration has no 'pythomat:' stages; nothing was checked.", "path", a.config.SolutionConfigPath)
	}
	return reports, passed, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
