package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/gradegrid/internal/app"
	"github.com/vk/gradegrid/internal/notify"
)

// Exit codes.
const (
	ExitPass  = 0
	ExitFail  = 1
	ExitUsage = 2
)

// VerifySolutionCommand is the subcommand that grades a sample solution.
const VerifySolutionCommand = "verify-solution"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// commonFlags are shared by both command forms.
type commonFlags struct {
	name          *string
	library       *string
	notifyURL     *string
	notifyTimeout *time.Duration
	logFormat     *string
	logLevel      *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		name:          fs.String("name", "", "Check to run when the checker file declares several."),
		library:       fs.String("library", "checkers", "Path to the directory containing checker manifests. Empty disables it."),
		notifyURL:     fs.String("notify-url", "", "Socket.IO server that receives every report."),
		notifyTimeout: fs.Duration("notify-timeout", notify.DefaultTimeout, "How long to wait for the notify server to acknowledge a report."),
		logFormat:     fs.String("log-format", "text", "Log output format. Options: 'text' or 'json'."),
		logLevel:      fs.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'."),
	}
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// A config with SolutionConfigPath set selects the verify-solution command.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if len(args) > 0 && args[0] == VerifySolutionCommand {
		return parseVerifySolution(args[1:], output)
	}

	flagSet := flag.NewFlagSet("gradegrid", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
gradegrid - Grades a submission with a declarative checker file.

Usage:
  gradegrid [options] [-check FILE] [SUBMISSION...]
  gradegrid verify-solution [options] -config FILE

Arguments:
  SUBMISSION
    Submission directories or files. Without -check, the first argument
    ending in .hcl or .json is the checker file.

Exit status is 0 when the check passes, 1 when it fails or cannot run and
2 on usage errors.

Options:
`)
		flagSet.PrintDefaults()
	}

	checkFlag := flagSet.String("check", "", "Path to the checker file.")
	common := addCommonFlags(flagSet)

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	checkPath := *checkFlag
	var submissions []string
	for _, arg := range flagSet.Args() {
		if checkPath == "" && isCheckerFile(arg) {
			checkPath = arg
			continue
		}
		submissions = append(submissions, arg)
	}
	slog.Debug("Checker file determined.", "path", checkPath, "submissions", submissions)

	if checkPath == "" {
		if len(args) == 0 {
			slog.Debug("No arguments provided, printing usage and exiting.")
			flagSet.Usage()
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: "no checker file given: use -check FILE or pass a .hcl/.json file"}
	}

	return newConfig(app.Config{
		CheckPath:   checkPath,
		Submissions: submissions,
	}, common)
}

func parseVerifySolution(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("gradegrid "+VerifySolutionCommand, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Grades the sample solution of a solution configuration with its 'pythomat:'
checker stages. Other stages are skipped.

Usage:
  gradegrid verify-solution [options] -config FILE

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the solution configuration (config_mySolution.json).")
	common := addCommonFlags(flagSet)

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	path := *configFlag
	if path == "" && flagSet.NArg() == 1 {
		path = flagSet.Arg(0)
	} else if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}
	if path == "" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "verify-solution needs -config FILE"}
	}
	if *common.name != "" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "-name cannot be used with verify-solution; name the check in the 'pythomat:' stage"}
	}

	return newConfig(app.Config{SolutionConfigPath: path}, common)
}

// newConfig validates the shared flags and builds the app configuration.
func newConfig(cfg app.Config, common *commonFlags) (*app.Config, bool, error) {
	logFormat := strings.ToLower(*common.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*common.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if *common.notifyTimeout <= 0 {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid notify-timeout: must be positive"}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg.CheckName = *common.name
	cfg.LibraryPath = *common.library
	cfg.NotifyURL = *common.notifyURL
	cfg.NotifyTimeout = *common.notifyTimeout
	cfg.LogFormat = logFormat
	cfg.LogLevel = logLevel

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func isCheckerFile(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".hcl", ".json":
		return true
	}
	return false
}
