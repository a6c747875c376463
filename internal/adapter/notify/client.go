package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// ErrRejected indicates the transport refused the message permanently.
var ErrRejected = errors.New("message rejected")

// TooManyRequestsError represents rate limiting signal from the messaging transport.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, n model.Notification) error
}

// HTTPSender posts notifications to the messaging transport webhook.
type HTTPSender struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// message mirrors the JSON payload accepted by the transport.
type message struct {
	RecipientKind string    `json:"recipient_kind"`
	RecipientID   string    `json:"recipient_id"`
	Event         string    `json:"event"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewHTTPSender creates a webhook sender with default timeout.
func NewHTTPSender(baseURL string, logger *slog.Logger) (*HTTPSender, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse notify url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("notify url must be absolute")
	}
	return &HTTPSender{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Send posts the notification to /api/messages.
func (s *HTTPSender) Send(ctx context.Context, n model.Notification) error {
	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/messages")

	payload, err := json.Marshal(message{
		RecipientKind: string(n.Kind),
		RecipientID:   n.RecipientID,
		Event:         string(n.Event),
		Text:          n.Text,
		CreatedAt:     n.CreatedAt.UTC(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Warn("notification rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("event", string(n.Event)),
			slog.String("body", string(body)),
		)
		return fmt.Errorf("%w: %s", ErrRejected, resp.Status)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Error("notify request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("notify error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}

// LogSender writes notifications to the log when no transport is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs n.
func (s *LogSender) Send(ctx context.Context, n model.Notification) error {
	s.logger.InfoContext(ctx, "notification",
		slog.String("recipient_kind", string(n.Kind)),
		slog.String("recipient_id", n.RecipientID),
		slog.String("event", string(n.Event)),
		slog.String("text", n.Text),
	)
	return nil
}
