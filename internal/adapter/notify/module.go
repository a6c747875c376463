package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/qrloyalty/internal/config"
)

// Module exposes the notification sender to fx graph.
var Module = fx.Provide(newSender)

type senderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSender(p senderParams) (Sender, error) {
	if p.Config.NotifyWebhookAddress == "" {
		p.Logger.Warn("notify webhook address not set, notifications are only logged")
		return NewLogSender(p.Logger), nil
	}
	return NewHTTPSender(p.Config.NotifyWebhookAddress, p.Logger)
}
