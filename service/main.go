package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"legal-search/bootstrap"
	"legal-search/config"
	"legal-search/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.App.LogLevel, cfg.App.LogFormat)
	slog.SetDefault(logger)
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.NewStore(cfg.Store)
	if err != nil {
		logger.Error("failed to create vector store client", slog.Any("error", err))
		os.Exit(1)
	}

	orchestrator, closeProviders, err := bootstrap.NewOrchestrator(ctx, cfg, store, logger)
	if err != nil {
		logger.Error("failed to initialise providers", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := closeProviders(); err != nil {
			logger.Warn("failed to close providers", slog.Any("error", err))
		}
	}()

	s := &server{
		answerer:    orchestrator,
		defaultTopK: cfg.Retrieval.DefaultTopK,
		logger:      logger,
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: s.routes(),
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("listening", slog.String("addr", httpServer.Addr), slog.String("store", cfg.Store.Backend))
	err = httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("unexpected error in http server", slog.Any("error", err))
		os.Exit(1)
	}
	<-shutdownDone
}
