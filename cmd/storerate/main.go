package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/app"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/config"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var cmdErr *app.CommandError
		if errors.As(err, &cmdErr) {
			fmt.Fprintf(os.Stderr, "storerate: %s\n", cmdErr.Message)
		} else {
			slog.Error("fatal error", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "storerate: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		app.Usage(os.Stdout)
		return nil
	}

	// Load configuration from .env and environment variables.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize structured logger on stderr.
	log := logger.New("storerate", cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting storerate",
		slog.String("environment", cfg.Environment),
		slog.String("api_url", cfg.APIURL),
	)

	// Create the application with all dependencies wired.
	application, err := app.NewApp(cfg, log, os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(args) > 0 {
		return application.Exec(ctx, args)
	}

	// Run the interactive shell. This blocks until the person quits.
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}
