package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/specialistvlad/fullrom/internal/app"
	"github.com/specialistvlad/fullrom/internal/cli"
)

// main is the entrypoint for the fullrom application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
// Reports go to outW, structured logs to logW.
func run(outW, logW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	fullrom, err := app.NewApp(outW, logW, appConfig)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	status, err := fullrom.Run(ctx)
	if err != nil {
		if errors.Is(err, app.ErrInvalidConfig) {
			return &cli.ExitError{Code: 2, Message: err.Error()}
		}
		return err
	}
	if status != 0 {
		return &cli.ExitError{Code: status}
	}
	return nil
}
