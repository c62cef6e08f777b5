package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"portal-analytics/internal/analytics"
	"portal-analytics/internal/config"
	"portal-analytics/internal/delivery"
	"portal-analytics/internal/favorites"
	"portal-analytics/internal/logger"
	"portal-analytics/internal/report"
	"portal-analytics/internal/scheduler"
	"portal-analytics/internal/session"
	"portal-analytics/internal/storage"
)

const usage = `commands:
  <event_type> [json]        track an event, e.g. ticket_click {"event_id":"42"}
  page <path>                track a page view
  poi [id]                   set or clear the current point of interest
  lang <pl|en|de|uk>         switch language
  fav-event <id> <title>     toggle a favorite event
  fav-poi <id> <name>        toggle a favorite point of interest
  flush                      deliver pending events now
  pending                    show the number of pending events
  quit                       flush and exit`

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: .env file not found: %v\n", err)
	}

	cfg := config.New()
	logger.Initialize(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer closeStore()

	state := session.New(store, cfg.DefaultLanguage)
	if err := state.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to restore language")
	}

	eventLog := analytics.NewPersistentLog(store, cfg.AnalyticsKey, cfg.LogCapacity)
	buf := analytics.NewBuffer(analytics.Options{
		Sender:     delivery.NewHTTPSender(cfg.BatchEndpoint(), cfg.HTTPTimeout),
		Log:        eventLog,
		Session:    state,
		Probe:      analytics.StaticProbe{Width: cfg.ViewportWidth, Agent: cfg.UserAgent},
		Policy:     analytics.FlushPolicy(cfg.FlushPolicy),
		FlushDelay: cfg.FlushDelay,
		MaxPending: cfg.MaxPending,
	})

	favs := favorites.New(store, buf)
	if err := favs.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load favorites")
	}

	sched := scheduler.New()
	if cfg.FlushPolicy == config.FlushInterval {
		if err := sched.AddInterval(cfg.FlushDelay, buf.Flush); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule flush")
		}
	}
	if cfg.ReportCron != "" {
		reporter, err := report.NewFromConfig(cfg, eventLog)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init reporter")
		}
		sched.SetReportFunction(cfg.ReportCron, reporter.RunToday)
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	log.Info().
		Str("session_id", buf.SessionID()).
		Str("endpoint", cfg.BatchEndpoint()).
		Str("policy", string(cfg.FlushPolicy)).
		Msg("tracker started")

	lines := make(chan string)
	go readLines(lines)

	buf.PageView("/")

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if !handle(ctx, line, buf, state, favs) {
				break loop
			}
		}
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout+time.Second)
	defer cancel()
	buf.Close(shutdownCtx)
	if n := len(buf.Pending()); n > 0 {
		log.Warn().Int("events", n).Msg("exiting with undelivered events")
	}
	log.Info().Msg("tracker stopped")
}

func readLines(out chan<- string) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out <- sc.Text()
	}
	close(out)
}

// handle runs one command line; it returns false when the tracker should exit.
func handle(ctx context.Context, line string, buf *analytics.Buffer, state *session.State, favs *favorites.Store) bool {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "":
	case "help":
		fmt.Println(usage)
	case "quit", "exit":
		return false
	case "flush":
		buf.Flush(ctx)
		fmt.Printf("pending after flush: %d\n", len(buf.Pending()))
	case "pending":
		fmt.Printf("pending: %d\n", len(buf.Pending()))
	case "page":
		if rest == "" {
			rest = "/"
		}
		buf.PageView(rest)
	case "poi":
		state.SetCurrentPOI(rest)
	case "lang":
		if err := state.SetLanguage(ctx, rest); err != nil {
			fmt.Println(err)
		}
	case "fav-event", "fav-poi":
		id, title, _ := strings.Cut(rest, " ")
		if id == "" {
			fmt.Println("usage:", cmd, "<id> <title>")
			break
		}
		var added bool
		if cmd == "fav-event" {
			added = favs.ToggleEvent(ctx, id, title)
		} else {
			added = favs.TogglePOI(ctx, id, title)
		}
		fmt.Printf("favorite %s: %v\n", id, added)
	default:
		eventType := analytics.EventType(cmd)
		if !eventType.Known() {
			fmt.Printf("unknown command %q, type help\n", cmd)
			break
		}
		var data map[string]any
		if rest != "" {
			if err := json.Unmarshal([]byte(rest), &data); err != nil {
				fmt.Printf("invalid json payload: %v\n", err)
				break
			}
		}
		buf.Track(eventType, data)
	}
	return true
}
