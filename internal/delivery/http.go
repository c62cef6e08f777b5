package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"portal-analytics/internal/analytics"
)

// StatusError is returned when the ingestion endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analytics batch rejected: status %d", e.StatusCode)
	}
	return fmt.Sprintf("analytics batch rejected: status %d: %s", e.StatusCode, e.Body)
}

type batchRequest struct {
	Events []analytics.Event `json:"events"`
}

// HTTPSender posts batches as {"events": [...]} to a fixed endpoint.
type HTTPSender struct {
	client   *http.Client
	endpoint string
}

func NewHTTPSender(endpoint string, timeout time.Duration) *HTTPSender {
	return NewHTTPSenderWithClient(endpoint, &http.Client{Timeout: timeout})
}

func NewHTTPSenderWithClient(endpoint string, client *http.Client) *HTTPSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSender{client: client, endpoint: endpoint}
}

func (s *HTTPSender) Send(ctx context.Context, events []analytics.Event) error {
	body, err := json.Marshal(batchRequest{Events: events})
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
