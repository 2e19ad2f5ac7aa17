package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridleaf/easee-telemetry-etl/internal/adapter/easee"
	httpadapter "github.com/gridleaf/easee-telemetry-etl/internal/adapter/http"
	kafkaadapter "github.com/gridleaf/easee-telemetry-etl/internal/adapter/kafka"
	"github.com/gridleaf/easee-telemetry-etl/internal/adapter/stream"
	"github.com/gridleaf/easee-telemetry-etl/internal/config"
	"github.com/gridleaf/easee-telemetry-etl/internal/domain"
	"github.com/gridleaf/easee-telemetry-etl/internal/observability"
	"github.com/gridleaf/easee-telemetry-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := pipeline.NewChannelSource(cfg.SourceBuffer)

	apiClient := easee.NewClient(cfg.EaseeAPIURL, cfg.EaseeAPIToken, cfg.EaseeAPITimeout, logger)

	// Site enrichment is feature-flagged; readings still normalize without it.
	var resolver domain.SiteResolver
	if cfg.SiteEnrichmentEnabled {
		resolver = easee.NewCachedSiteResolver(apiClient, cfg.SiteCacheSize, metrics)
		logger.Info("site enrichment enabled", "cache_size", cfg.SiteCacheSize)
	} else {
		logger.Info("site enrichment disabled")
	}

	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(resolver, logger, metrics)

	p := pipeline.New(source, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start transports.
	if cfg.StreamEnabled {
		hub := stream.NewClient(cfg.EaseeStreamURL, cfg.EaseeAPIToken, cfg.ChargerIDs, source, logger)
		go func() {
			if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("streaming client error", "error", err)
			}
		}()
	}
	if cfg.RestEnabled {
		poller := easee.NewPoller(apiClient, source, cfg.ChargerIDs, cfg.PollInterval, logger)
		go func() {
			if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("rest poller error", "error", err)
			}
		}()
	}

	// Start normalization pipeline.
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
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
