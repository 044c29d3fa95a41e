package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gkwang4912/speechwall/config"
	"github.com/gkwang4912/speechwall/internal/classifier"
	"github.com/gkwang4912/speechwall/internal/clients"
	"github.com/gkwang4912/speechwall/internal/logging"
	"github.com/gkwang4912/speechwall/internal/pipeline"
)

func main() {
	logging.InitLogger()

	cfg, err := config.Load(config.DefaultConfigFile)
	if err != nil {
		slog.Error("Configuration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Configuration loaded", slog.String("model", cfg.Model))

	clf := classifier.New(cfg, clients.GetGeminiClient())
	p := pipeline.New(clf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir, err := os.Getwd()
	if err != nil {
		slog.Error("Cannot determine working directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := p.Run(ctx, dir); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("Interrupted; checkpoints are saved, rerun to resume")
			return
		}
		// Only configuration failure exits non-zero.
		slog.Error("Run stopped early", slog.String("error", err.Error()))
	}
}
