package ingest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portal-analytics/internal/analytics"
)

const maxBodyBytes = 1 << 20

type batchRequest struct {
	Events []analytics.Event `json:"events"`
}

// BatchResult is the response body of the batch endpoint.
type BatchResult struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
}

type Handler struct {
	sink  Sink
	dedup *Deduper
	now   func() time.Time
	newID func() uuid.UUID
}

// NewHandler returns the batch handler. dedup may be nil.
func NewHandler(sink Sink, dedup *Deduper) *Handler {
	return &Handler{
		sink:  sink,
		dedup: dedup,
		now:   time.Now,
		newID: uuid.New,
	}
}

func (h *Handler) Batch(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var (
		result  BatchResult
		records []Record
		keys    []string
	)
	inBatch := make(map[string]struct{}, len(req.Events))
	receivedAt := h.now().UTC()
	clientIP := c.ClientIP()

	for _, ev := range req.Events {
		if !valid(ev) {
			result.Rejected++
			continue
		}
		key := Key(ev)
		if _, dup := inBatch[key]; dup || (h.dedup != nil && !h.dedup.Reserve(key)) {
			result.Duplicates++
			continue
		}
		inBatch[key] = struct{}{}
		keys = append(keys, key)
		records = append(records, Record{
			EventID:    h.newID(),
			ReceivedAt: receivedAt,
			ClientIP:   clientIP,
			Event:      ev,
		})
	}

	if err := h.sink.Write(c.Request.Context(), records); err != nil {
		if h.dedup != nil {
			h.dedup.Release(keys)
		}
		log.Error().Err(err).Int("events", len(records)).Msg("failed to store analytics batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store events"})
		return
	}
	if h.dedup != nil {
		h.dedup.Commit(keys)
	}
	result.Accepted = len(records)

	if result.Rejected > 0 {
		log.Debug().Int("rejected", result.Rejected).Str("client_ip", clientIP).Msg("dropped invalid analytics events")
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func valid(ev analytics.Event) bool {
	return ev.Type.Known() && ev.SessionID != "" && !ev.Timestamp.IsZero()
}
