package ingest

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sink persists accepted records. A returned error makes the whole batch fail.
type Sink interface {
	Write(ctx context.Context, records []Record) error
}

// LogSink writes every record to the structured log.
type LogSink struct{}

func (LogSink) Write(_ context.Context, records []Record) error {
	for _, r := range records {
		log.Info().
			Str("event_id", r.EventID.String()).
			Str("session_id", r.Event.SessionID).
			Str("event_type", string(r.Event.Type)).
			Str("poi_id", r.Event.SubjectID).
			Str("device_type", string(r.Event.DeviceType)).
			Str("language", r.Event.Language).
			Str("client_ip", r.ClientIP).
			Time("timestamp", r.Event.Timestamp).
			Msg("analytics event")
	}
	return nil
}
