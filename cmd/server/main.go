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

	"github.com/AngelCh415/studio-metrics/internal/config"
	"github.com/AngelCh415/studio-metrics/internal/engine"
	"github.com/AngelCh415/studio-metrics/internal/httpx"
	"github.com/AngelCh415/studio-metrics/internal/ingest"
	"github.com/AngelCh415/studio-metrics/internal/metrics"
	"github.com/AngelCh415/studio-metrics/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	rules, err := cfg.Rules()
	if err != nil {
		logger.Error("load rules", slog.String("err", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store = store.NewMemoryStore()
	if cfg.StoreBackend == "redis" {
		rs, err := store.OpenRedis(ctx, cfg.RedisURL, cfg.ResultTTL)
		if err != nil {
			logger.Error("redis store", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer rs.Close()
		st = rs
	}

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	etl := ingest.NewETL(cl, st, engine.New(rules, logger), logger, cfg)
	mSvc := metrics.NewService(st)

	r := httpx.NewRouter(logger, cfg, etl, mSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("store", cfg.StoreBackend))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
