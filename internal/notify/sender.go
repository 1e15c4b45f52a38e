package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"
)

// HTTPSender posts each signal to the external dispatcher as JSON. A
// non-2xx answer is an error so the queue's retry applies.
type HTTPSender struct {
	url    string
	client *http.Client
}

func NewHTTPSender(url string) *HTTPSender {
	return &HTTPSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSender) Send(ctx context.Context, typ string, payload json.RawMessage) error {
	body, err := json.Marshal(map[string]any{"type": typ, "payload": payload})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post signal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("dispatcher returned %d", resp.StatusCode)
	}
	return nil
}

// CloseIdleConnections drops kept-alive connections to the dispatcher.
func (s *HTTPSender) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

// LogSender is the stand-in when no dispatcher URL is configured: signals
// drain to the log instead of piling up in the queue.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, typ string, payload json.RawMessage) error {
	s.logger.Info("signal", slog.String("type", typ), slog.String("payload", string(payload)))
	return nil
}
