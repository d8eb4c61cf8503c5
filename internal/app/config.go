package app

import (
	"errors"
	"time"

	"github.com/vk/gradegrid/internal/notify"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// CheckPath is the checker file for a grading run.
	CheckPath   string
	Submissions []string
	// CheckName selects one check when the checker file declares several.
	CheckName string

	// SolutionConfigPath switches the app to verifying a sample solution.
	SolutionConfigPath string

	LibraryPath string // checker manifests

	NotifyURL     string
	NotifyTimeout time.Duration

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CheckPath == "" && cfg.SolutionConfigPath == "" {
		return nil, errors.New("a checker file is required")
	}
	if cfg.CheckPath != "" && cfg.SolutionConfigPath != "" {
		return nil, errors.New("a checker file and a solution configuration cannot be combined")
	}
	if cfg.NotifyURL != "" {
		if _, err := notify.NewSocketIO(notify.Options{URL: cfg.NotifyURL, Timeout: cfg.NotifyTimeout}); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
