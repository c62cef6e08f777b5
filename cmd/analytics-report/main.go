package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"portal-analytics/internal/analytics"
	"portal-analytics/internal/config"
	"portal-analytics/internal/logger"
	"portal-analytics/internal/report"
	"portal-analytics/internal/storage"
)

func main() {
	date := flag.String("date", "", "day to report on, YYYY-MM-DD (default: today, UTC)")
	asJSON := flag.Bool("json", false, "print the statistics as JSON instead of publishing")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: .env file not found: %v\n", err)
	}

	cfg := config.New()
	logger.Initialize(cfg.LogLevel, cfg.LogPretty)

	day := time.Now().UTC()
	if *date != "" {
		d, err := time.Parse("2006-01-02", *date)
		if err != nil {
			log.Fatal().Err(err).Str("date", *date).Msg("invalid date")
		}
		day = d
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, closeStore, err := storage.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer closeStore()

	eventLog := analytics.NewPersistentLog(store, cfg.AnalyticsKey, cfg.LogCapacity)

	if *asJSON {
		events, err := eventLog.Load(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load events")
		}
		out, err := analytics.AnalyzeDay(events, day).ToJSON()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to encode stats")
		}
		fmt.Println(out)
		return
	}

	reporter, err := report.NewFromConfig(cfg, eventLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init reporter")
	}
	if err := reporter.Run(ctx, day); err != nil {
		log.Fatal().Err(err).Msg("report failed")
	}
}
