package notify

import (
	"io"
	"log/slog"
	"testing"

	"github.com/polkiloo/qrloyalty/internal/config"
)

func TestNewSenderUsesConfig(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	sender, err := newSender(senderParams{Config: &config.Config{NotifyWebhookAddress: "http://example.com"}, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sender.(*HTTPSender); !ok {
		t.Fatalf("expected http sender, got %T", sender)
	}

	sender, err = newSender(senderParams{Config: &config.Config{}, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sender.(*LogSender); !ok {
		t.Fatalf("expected log sender, got %T", sender)
	}

	if _, err := newSender(senderParams{Config: &config.Config{NotifyWebhookAddress: "relative/path"}, Logger: logger}); err == nil {
		t.Fatal("expected error for relative url")
	}
}
