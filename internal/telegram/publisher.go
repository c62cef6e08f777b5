package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// лимит Telegram на одно текстовое сообщение
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Publisher отправляет отчёты в один чат.
type Publisher struct {
	s      sender
	chatID int64
}

func NewPublisher(botToken string, chatID int64) (*Publisher, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Info().Str("bot", api.Self.UserName).Int64("chat_id", chatID).Msg("telegram publisher ready")
	return &Publisher{s: api, chatID: chatID}, nil
}

// Publish отправляет текст, разбивая его на части при превышении лимита.
func (p *Publisher) Publish(ctx context.Context, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.s.Send(tgbotapi.NewMessage(p.chatID, part)); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
	}
	return nil
}

// splitMessage режет текст по строкам, не превышая limit рун в части.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}
	var parts []string
	var b strings.Builder
	size := 0
	flush := func() {
		if b.Len() > 0 {
			parts = append(parts, b.String())
			b.Reset()
			size = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		if size+len(runes) > limit {
			flush()
		}
		b.WriteString(string(runes))
		size += len(runes)
	}
	flush()
	return parts
}
