package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/cyclist-scatter/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cyclist-scatter/internal/adapter/kafka"
	"github.com/couchcryptid/cyclist-scatter/internal/adapter/source"
	"github.com/couchcryptid/cyclist-scatter/internal/config"
	"github.com/couchcryptid/cyclist-scatter/internal/observability"
	"github.com/couchcryptid/cyclist-scatter/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	var src pipeline.Source = source.NewClient(cfg.SourceURL, cfg.SourceTimeout, metrics, logger)
	if cfg.SourceCacheTTL > 0 {
		src = source.NewCachedSource(src, cfg.SourceCacheTTL, clock, metrics)
		logger.Info("source cache enabled", "ttl", cfg.SourceCacheTTL)
	}

	// Publishing is feature-flagged via KAFKA_BROKERS.
	var (
		publisher pipeline.Publisher
		kafkaPub  *kafkaadapter.Publisher
	)
	if cfg.PublishEnabled() {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPub
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(src, publisher, clock, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Build the dataset once, retrying until it succeeds or we shut down.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
