package workflow

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/qrloyalty/internal/config"
	"github.com/polkiloo/qrloyalty/internal/pkg/ratelimit"
	"github.com/polkiloo/qrloyalty/internal/usecase"
)

// Module provides the scan dispatcher and the workflow engine.
var Module = fx.Options(
	fx.Provide(
		newEngine,
		newDispatcher,
	),
)

type engineParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Ledger    *usecase.LedgerUseCase
	Notifier  Notifier
	Observer  Observer `optional:"true"`
	Logger    *slog.Logger
}

func newEngine(p engineParams) *Engine {
	engine := NewEngine(p.Ledger, p.Notifier, Options{
		IdleTimeout: p.Config.WorkflowIdleTimeout,
		Observer:    p.Observer,
		Logger:      p.Logger,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			engine.Close()
			return nil
		},
	})
	return engine
}

func newDispatcher(cfg *config.Config, engine *Engine, businesses *usecase.BusinessUseCase) *Dispatcher {
	limiter := ratelimit.New(ratelimit.Limit{
		RequestsPerMinute: cfg.ScanRatePerMinute,
		Burst:             cfg.ScanBurst,
	})
	return NewDispatcher(engine, businesses, limiter)
}
