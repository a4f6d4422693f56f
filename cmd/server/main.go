package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/adaptive-quiz/internal/app"
	"github.com/aliskhannn/adaptive-quiz/internal/config"
	"github.com/aliskhannn/adaptive-quiz/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("init app", zap.Error(err))
	}
	defer func() { _ = application.Close() }()

	go func() {
		if err := application.Sweeper().Start(ctx); err != nil {
			lg.Error("eviction sweeper failed", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      application.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("http server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("http server shutdown", zap.Error(err))
	}
}
