package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/intellinbox/internal/cli"
	"github.com/okian/intellinbox/internal/config"
	"github.com/okian/intellinbox/pkg/logger"
)

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// stdout is reserved for command output.
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return exitFailure
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// defaults -> optional file -> env; flags are applied by the command tree
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return exitUsage
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := cli.Execute(ctx, cfg, log, args, os.Stdout, os.Stderr); err != nil {
		log.Error(ctx, "inboxctl failed", logger.Error(err))
		if errors.Is(err, cli.ErrUsage) {
			return exitUsage
		}
		return exitFailure
	}
	return 0
}
