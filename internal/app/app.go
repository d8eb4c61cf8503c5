package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/ctxlog"
	"github.com/vk/gradegrid/internal/notify"
	"github.com/vk/gradegrid/internal/registry"
	"github.com/vk/gradegrid/internal/report"
)

// Publisher receives every finished report.
type Publisher interface {
	Publish(ctx context.Context, rep *report.Report) error
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	loader    config.Loader
	config    *Config
	publisher Publisher
}

// NewApp is the constructor for the main application. Reports are written to
// outW and logs to logW. Without modules the core delegates are registered.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "checkers", reg.Names())

	a := &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		loader:   loader,
		config:   cfg,
	}
	if cfg.NotifyURL != "" {
		// NewConfig has already validated the URL.
		pub, err := notify.NewSocketIO(notify.Options{URL: cfg.NotifyURL, Timeout: cfg.NotifyTimeout})
		if err != nil {
			panic(err)
		}
		a.publisher = pub
	}
	return a
}

// SetPublisher replaces the report publisher. This is primarily for testing.
func (a *App) SetPublisher(p Publisher) {
	a.publisher = p
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

func (a *App) publish(ctx context.Context, rep *report.Report) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, rep); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to publish report.", "check", rep.Check, "error", err)
	}
}
