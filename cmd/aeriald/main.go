package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"aerial/internal/catalog"
	"aerial/internal/config"
	"aerial/internal/daemon"
	"aerial/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := catalog.Open(ctx, cfg.Paths.DatabasePath)
	if err != nil {
		logger.Error("open catalog", logging.Error(err))
		return
	}
	defer store.Close()

	if _, err := store.SeedChannelsFromFile(ctx, cfg.Paths.ChannelListPath); err != nil {
		logger.Warn("seed channels", logging.Error(err))
	}

	orch, loc, err := buildPipeline(cfg, logger, store)
	if err != nil {
		logger.Error("build pipeline", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, logger, orch, loc)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	d.Stop()
	logger.Info("aeriald shutting down", slog.String("reason", "signal"))
}
