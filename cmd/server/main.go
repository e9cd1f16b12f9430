package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/gridlock/internal/api"
	"github.com/dgallion1/gridlock/internal/config"
	"github.com/dgallion1/gridlock/internal/ocr"
	"github.com/dgallion1/gridlock/internal/pipeline"
)

const shutdownGrace = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(log); err != nil {
		log.Error("gridlock exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	if err := config.LoadDotenv(); err != nil {
		log.Warn("ignoring .env file", "error", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats := ocr.NewStats(time.Hour)
	rec, err := ocr.New(ocr.Config{
		Backend:    cfg.OCRBackend,
		APIKey:     cfg.AnthropicAPIKey,
		Model:      cfg.OCRModel,
		PromptFile: cfg.OCRPromptFile,
		Language:   cfg.OCRLanguage,
		Stats:      stats,
	})
	if err != nil {
		return fmt.Errorf("ocr backend %q: %w", cfg.OCRBackend, err)
	}
	defer rec.Close()

	orch := pipeline.NewOrchestrator(cfg, rec, log)
	orch.Start(ctx)
	defer orch.Stop()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, stats, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting gridlock", "port", cfg.Port, "ocr_backend", cfg.OCRBackend, "workspace", cfg.WorkspaceDir)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
