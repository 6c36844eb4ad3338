package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentiboard/internal/cache"
	"sentiboard/internal/config"
	"sentiboard/internal/feed"
	"sentiboard/internal/httpapi"
	"sentiboard/internal/pipeline"
	"sentiboard/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config.yaml"
	if p := os.Getenv("SENTIBOARD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	store, err := cache.New(cfg.Cache, logger)
	if err != nil {
		log.Fatalf("initializing cache: %v", err)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Probe the redis backend before accepting requests.
	if r, ok := store.(*cache.Redis); ok {
		if err := util.Retry(ctx, 3, time.Second, r.Ping); err != nil {
			log.Fatalf("reaching redis at %s: %v", cfg.Cache.Redis.Addr, err)
		}
		logger.Info("redis cache reachable", "addr", cfg.Cache.Redis.Addr)
	}

	gen := feed.NewSynthetic(cfg.Generator.Seed, cfg.Generator.KeepProbability, cfg.Generator.Tickers)
	runner := pipeline.NewRunner(gen, store, cfg.Cache.Backend, logger)
	srv := httpapi.NewServer(runner, cfg.Generator.Tickers, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("sentiboard server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down sentiboard server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
