package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"portal-analytics/internal/analytics"
	"portal-analytics/internal/llm"
)

const digestPrompt = `You are an analyst for a tourism and events portal.
Given daily usage statistics, write a short digest (at most 5 sentences) highlighting
what visitors did most, notable device or language shifts, and the most viewed points
of interest. Do not invent numbers that are not in the data.`

// Source отдаёт события, накопленные в журнале.
type Source interface {
	Load(ctx context.Context) ([]analytics.Event, error)
}

// Publisher доставляет готовый текст отчёта.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// LogPublisher пишет отчёт в лог, когда Telegram не настроен.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, text string) error {
	log.Info().Str("report", text).Msg("analytics report")
	return nil
}

// Reporter собирает дневной отчёт по журналу событий.
type Reporter struct {
	source    Source
	publisher Publisher
	llm       llm.Client
	now       func() time.Time
}

// New создает генератор отчётов. llmClient может быть nil.
func New(source Source, publisher Publisher, llmClient llm.Client) *Reporter {
	return &Reporter{
		source:    source,
		publisher: publisher,
		llm:       llmClient,
		now:       time.Now,
	}
}

// Build считает статистику за день и формирует текст отчёта.
func (r *Reporter) Build(ctx context.Context, day time.Time) (*analytics.DailyStats, string, error) {
	events, err := r.source.Load(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load events: %w", err)
	}
	stats := analytics.AnalyzeDay(events, day)
	text := stats.GenerateReportSummary()

	if r.llm != nil && stats.TotalEvents > 0 {
		digest, err := r.digest(ctx, stats)
		if err != nil {
			log.Warn().Err(err).Msg("llm digest unavailable, sending plain report")
		} else if digest != "" {
			text = text + "\n" + digest
		}
	}
	return stats, text, nil
}

// Run формирует и публикует отчёт за день.
func (r *Reporter) Run(ctx context.Context, day time.Time) error {
	stats, text, err := r.Build(ctx, day)
	if err != nil {
		return err
	}
	if err := r.publisher.Publish(ctx, text); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	log.Info().Str("date", stats.Date).Int("events", stats.TotalEvents).Msg("analytics report published")
	return nil
}

// RunToday подходит для scheduler.SetReportFunction.
func (r *Reporter) RunToday(ctx context.Context) error {
	return r.Run(ctx, r.now().UTC())
}

func (r *Reporter) digest(ctx context.Context, stats *analytics.DailyStats) (string, error) {
	data, err := stats.ToJSON()
	if err != nil {
		return "", err
	}
	resp, err := r.llm.Generate(ctx, []llm.Message{
		{Role: "system", Content: digestPrompt},
		{Role: "user", Content: data},
	})
	if err != nil {
		return "", err
	}
	log.Debug().Str("model", resp.Model).Int("tokens", resp.TotalTokens).Msg("llm digest generated")
	return resp.Content, nil
}
