package report

import (
	"github.com/rs/zerolog/log"

	"portal-analytics/internal/config"
	"portal-analytics/internal/llm"
	"portal-analytics/internal/telegram"
)

// NewFromConfig собирает Reporter из конфигурации.
// Без токена Telegram отчёт пишется в лог.
func NewFromConfig(cfg *config.Config, source Source) (*Reporter, error) {
	var publisher Publisher = LogPublisher{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := telegram.NewPublisher(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		publisher = tg
	}

	var client llm.Client
	if cfg.OpenAIAPIKey != "" {
		client = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		log.Info().Str("model", cfg.OpenAIModel).Msg("llm digest enabled")
	}
	return New(source, publisher, client), nil
}
