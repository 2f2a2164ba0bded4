package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/infrastructure/observability"
	"github.com/reservenow/backend/pkg/retry"
)

// WebhookSink posts each submission log as JSON to a collecting endpoint,
// typically a spreadsheet script.
type WebhookSink struct {
	url            string
	httpClient     *http.Client
	retry          retry.Config
	attemptTimeout time.Duration
}

// minAttemptTimeout keeps very small budgets from starving every attempt
const minAttemptTimeout = 100 * time.Millisecond

// NewWebhookSink creates a webhook sink. budget is the overall time a Record
// may take; it is split evenly across the retry attempts so a hung first
// attempt still leaves room for the others. The caller's context bounds the
// whole call as well.
func NewWebhookSink(url string, budget time.Duration) *WebhookSink {
	cfg := retry.QuickConfig()
	cfg.MaxTotalTimeout = budget
	return &WebhookSink{
		url:            url,
		httpClient:     &http.Client{},
		retry:          cfg,
		attemptTimeout: max(budget/time.Duration(cfg.MaxAttempts), minAttemptTimeout),
	}
}

// AttemptTimeout returns the cap on a single POST
func (s *WebhookSink) AttemptTimeout() time.Duration {
	return s.attemptTimeout
}

// Record sends entry. 5xx responses and transport errors are retried; 4xx are not.
func (s *WebhookSink) Record(ctx context.Context, entry *entities.SubmissionLog) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode submission log: %w", err)
	}

	logger := observability.LoggerFromContext(ctx)

	return retry.DoWithLog(ctx, s.retry, "webhook", func() error {
		return s.post(ctx, body)
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Debug().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("webhook post failed")
	})
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return retry.Permanent(fmt.Errorf("webhook rejected submission with status %d", resp.StatusCode))
	}
	return nil
}
