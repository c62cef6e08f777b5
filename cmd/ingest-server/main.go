package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"portal-analytics/internal/config"
	"portal-analytics/internal/ingest"
	"portal-analytics/internal/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: .env file not found: %v\n", err)
	}

	cfg := config.New()
	logger.Initialize(cfg.LogLevel, cfg.LogPretty)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	sink, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("sink", string(cfg.IngestSink)).Msg("failed to open sink")
	}

	dedup, err := ingest.NewDeduper(cfg.DedupTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init dedup cache")
	}

	router := ingest.NewRouter(ingest.NewHandler(sink, dedup), cfg.AllowedOrigins)
	server := &http.Server{
		Addr:         cfg.IngestAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.IngestAddr).Str("sink", string(cfg.IngestSink)).Msg("Starting ingest server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	dedup.Close()
	closeSink()
	log.Info().Msg("Server stopped gracefully")
}

func openSink(ctx context.Context, cfg *config.Config) (ingest.Sink, func(), error) {
	switch cfg.IngestSink {
	case config.SinkClickHouse:
		s, err := ingest.NewClickHouseSink(ctx, ingest.ClickHouseOptions{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close clickhouse")
			}
		}, nil
	case config.SinkPostgres:
		s, err := ingest.NewPostgresSink(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return ingest.LogSink{}, func() {}, nil
	}
}
