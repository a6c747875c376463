package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testNotification() model.Notification {
	return model.Notification{
		Kind:        model.RecipientCustomer,
		RecipientID: "c1",
		Event:       model.EventPurchaseSettled,
		Text:        "Balance: 10 points.",
		CreatedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewHTTPSenderValidatesURL(t *testing.T) {
	if _, err := NewHTTPSender("://bad-url", testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPSender("/relative", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestSendPostsMessage(t *testing.T) {
	received := make(chan message, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bot/api/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var msg message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("decode body: %v", err)
		}
		received <- msg
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender, err := NewHTTPSender(srv.URL+"/bot", testLogger())
	if err != nil {
		t.Fatalf("failed to create sender: %v", err)
	}
	if err := sender.Send(context.Background(), testNotification()); err != nil {
		t.Fatalf("send returned error: %v", err)
	}

	msg := <-received
	if msg.RecipientKind != "customer" || msg.RecipientID != "c1" || msg.Event != "purchase_settled" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !msg.CreatedAt.Equal(testNotification().CreatedAt) {
		t.Fatalf("unexpected created_at %v", msg.CreatedAt)
	}
}

func TestSendHandlesSpecialStatuses(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		header     http.Header
		check      func(t *testing.T, err error)
	}{
		{
			name:       "too many requests",
			statusCode: http.StatusTooManyRequests,
			header:     http.Header{"Retry-After": []string{"5"}},
			check: func(t *testing.T, err error) {
				var tm TooManyRequestsError
				if !errors.As(err, &tm) || tm.RetryAfter != 5*time.Second {
					t.Fatalf("expected retry after 5s, got %v", err)
				}
			},
		},
		{
			name:       "rejected",
			statusCode: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrRejected) {
					t.Fatalf("expected rejected error, got %v", err)
				}
			},
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				if err == nil || errors.Is(err, ErrRejected) {
					t.Fatalf("expected transient error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for key, values := range tt.header {
					for _, v := range values {
						w.Header().Add(key, v)
					}
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			sender, err := NewHTTPSender(srv.URL, testLogger())
			if err != nil {
				t.Fatalf("failed to create sender: %v", err)
			}
			tt.check(t, sender.Send(context.Background(), testNotification()))
		})
	}
}

func TestSendLogsErrorResponses(t *testing.T) {
	called := make(chan struct{}, 1)
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && a.Value.Any() == slog.LevelError {
			select {
			case called <- struct{}{}:
			default:
			}
		}
		return a
	}})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sender, err := NewHTTPSender(srv.URL, slog.New(handler))
	if err != nil {
		t.Fatalf("failed to create sender: %v", err)
	}
	if err := sender.Send(context.Background(), testNotification()); err == nil {
		t.Fatal("expected error from server")
	}

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected error log to be written")
	}
}

func TestSendHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	sender, err := NewHTTPSender(srv.URL, testLogger())
	if err != nil {
		t.Fatalf("failed to create sender: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sender.Send(ctx, testNotification()); err == nil {
		t.Fatal("expected context error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	httpTime := time.Now().Add(3 * time.Second).UTC().Format(http.TimeFormat)

	cases := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "empty", header: "", want: 5 * time.Second},
		{name: "seconds", header: "7", want: 7 * time.Second},
		{name: "http date", header: httpTime},
		{name: "fallback", header: "bad", want: 5 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseRetryAfter(tc.header)
			if tc.header == httpTime {
				if got <= time.Second || got > 4*time.Second {
					t.Fatalf("unexpected retry duration %v", got)
				}
			} else if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestLogSenderWritesNotification(t *testing.T) {
	var buf strings.Builder
	sender := NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))
	if err := sender.Send(context.Background(), testNotification()); err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"recipient_id":"c1"`) {
		t.Fatalf("expected recipient in log, got %s", buf.String())
	}
}
