package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/gradegrid/internal/app"
	"github.com/vk/gradegrid/internal/cli"
	"github.com/vk/gradegrid/internal/hcl"
)

// main is the entrypoint for the gradegrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFail)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Reports go to outW, logs to logW.
func run(outW, logW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Registration panics on programming errors; turn them into a clean
	// failure instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl.NewLoader()
	gradegridApp := app.NewApp(outW, logW, appConfig, loader)
	ctx := context.Background()

	if appConfig.SolutionConfigPath != "" {
		reports, passed, err := gradegridApp.VerifySolution(ctx)
		if err != nil {
			return err
		}
		if !passed {
			return &cli.ExitError{Code: cli.ExitFail, Message: fmt.Sprintf("sample solution failed (%d stages checked)", len(reports))}
		}
		return nil
	}

	rep, err := gradegridApp.Run(ctx)
	if err != nil {
		return err
	}
	if !rep.Passed() {
		return &cli.ExitError{Code: cli.ExitFail, Message: "check failed"}
	}
	return nil
}
