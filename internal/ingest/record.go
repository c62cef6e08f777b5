package ingest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"portal-analytics/internal/analytics"
)

// Record is an accepted event with the metadata the server adds on receipt.
type Record struct {
	EventID    uuid.UUID       `json:"event_id"`
	ReceivedAt time.Time       `json:"received_at"`
	ClientIP   string          `json:"client_ip"`
	Event      analytics.Event `json:"event"`
}

// dataJSON renders the free-form payload for column stores; empty payloads become "{}".
func (r Record) dataJSON() string {
	if len(r.Event.Data) == 0 {
		return "{}"
	}
	b, err := json.Marshal(r.Event.Data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// columns lists the table layout shared by the SQL sinks.
var columns = []string{
	"event_id", "received_at", "client_ip", "timestamp", "session_id", "poi_id",
	"device_type", "os", "browser", "language", "event_type", "data",
}

func (r Record) row() []any {
	e := r.Event
	return []any{
		r.EventID, r.ReceivedAt, r.ClientIP, e.Timestamp, e.SessionID, e.SubjectID,
		string(e.DeviceType), e.OS, e.Browser, e.Language, string(e.Type), r.dataJSON(),
	}
}
