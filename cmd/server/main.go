package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/vancomm/sweeper/internal/app"
	"github.com/vancomm/sweeper/internal/config"
)

func main() {
	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, nil)
	if config.Development() {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		})
	}
	logger := slog.New(handler)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mode, err := config.GameMode()
	if err != nil {
		logger.Error("failed to read game config", slog.Any("error", err))
		os.Exit(1)
	}

	storage, err := app.OpenStorage(ctx, logger)
	if err != nil {
		logger.Error("failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer storage.Close()

	a, err := app.New(logger, mode, storage)
	if err != nil {
		logger.Error("failed to set up server", slog.Any("error", err))
		os.Exit(1)
	}

	if err := a.Start(ctx, config.Addr()); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		storage.Close()
		os.Exit(1)
	}
}
