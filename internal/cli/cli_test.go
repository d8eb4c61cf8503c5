package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gradegrid/internal/app"
	"github.com/vk/gradegrid/internal/notify"
)

func TestParse(t *testing.T) {
	t.Parallel()

	defaults := func(cfg app.Config) *app.Config {
		cfg.LibraryPath = "checkers"
		cfg.NotifyTimeout = notify.DefaultTimeout
		cfg.LogFormat = "text"
		cfg.LogLevel = "warn"
		return &cfg
	}

	testCases := []struct {
		name string
		args []string
		want *app.Config
	}{
		{
			name: "check flag",
			args: []string{"-check", "names.hcl", "submission"},
			want: defaults(app.Config{CheckPath: "names.hcl", Submissions: []string{"submission"}}),
		},
		{
			name: "first checker file among positionals",
			args: []string{"sub1", "check.json", "sub2", "other.hcl"},
			want: defaults(app.Config{CheckPath: "check.json", Submissions: []string{"sub1", "sub2", "other.hcl"}}),
		},
		{
			name: "check flag keeps hcl positionals as submissions",
			args: []string{"-check", "a.hcl", "b.hcl"},
			want: defaults(app.Config{CheckPath: "a.hcl", Submissions: []string{"b.hcl"}}),
		},
		{
			name: "no submissions",
			args: []string{"Check.HCL"},
			want: defaults(app.Config{CheckPath: "Check.HCL"}),
		},
		{
			name: "all options",
			args: []string{
				"-name", "imports", "-library", "", "-notify-url", "http://localhost:3000",
				"-notify-timeout", "2s", "-log-format", "JSON", "-log-level", "Debug",
				"-check", "java.hcl", "src",
			},
			want: &app.Config{
				CheckPath:     "java.hcl",
				Submissions:   []string{"src"},
				CheckName:     "imports",
				NotifyURL:     "http://localhost:3000",
				NotifyTimeout: 2 * time.Second,
				LogFormat:     "json",
				LogLevel:      "debug",
			},
		},
		{
			name: "verify solution",
			args: []string{"verify-solution", "-config", "config_mySolution.json"},
			want: defaults(app.Config{SolutionConfigPath: "config_mySolution.json"}),
		},
		{
			name: "verify solution positional",
			args: []string{"verify-solution", "-log-level", "info", "config_mySolution.json"},
			want: &app.Config{
				SolutionConfigPath: "config_mySolution.json",
				LibraryPath:        "checkers",
				NotifyTimeout:      notify.DefaultTimeout,
				LogFormat:          "text",
				LogLevel:           "info",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			cfg, shouldExit, err := Parse(tc.args, &out)
			require.NoError(t, err)
			require.False(t, shouldExit)
			if diff := cmp.Diff(tc.want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"-h"}, {"verify-solution", "-help"}} {
		var out bytes.Buffer
		cfg, shouldExit, err := Parse(args, &out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_UsageErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-grid", "x"}, wantMsg: "flag provided but not defined: -grid"},
		{name: "no checker file", args: []string{"submission"}, wantMsg: "no checker file given"},
		{name: "bad log format", args: []string{"-log-format", "xml", "a.hcl"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace", "a.hcl"}, wantMsg: "invalid log-level"},
		{name: "bad notify timeout", args: []string{"-notify-timeout", "0s", "a.hcl"}, wantMsg: "invalid notify-timeout"},
		{name: "bad notify url", args: []string{"-notify-url", "ftp://host", "a.hcl"}, wantMsg: "scheme must be"},
		{name: "verify without config", args: []string{"verify-solution"}, wantMsg: "verify-solution needs -config FILE"},
		{name: "verify with extra args", args: []string{"verify-solution", "-config", "c.json", "x"}, wantMsg: "unexpected arguments: x"},
		{name: "verify with name", args: []string{"verify-solution", "-name", "a", "-config", "c.json"}, wantMsg: "-name cannot be used"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			_, shouldExit, err := Parse(tc.args, &out)
			require.Error(t, err)
			assert.False(t, shouldExit)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, ExitUsage, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
