package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/qrloyalty/internal/adapter/notify"
	"github.com/polkiloo/qrloyalty/internal/config"
	"github.com/polkiloo/qrloyalty/internal/worker"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewLoyaltyFacade,
		newHTTPServer,
		newNotificationWorker,
		func(w *worker.NotificationWorker) workflow.Notifier { return w },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Sender   notify.Sender
	Config   *config.Config
	Observer worker.DeliveryObserver `optional:"true"`
	Logger   *slog.Logger
}

func newNotificationWorker(p workerParams) *worker.NotificationWorker {
	return worker.NewNotificationWorker(p.Sender, worker.Options{
		Workers:   p.Config.NotifyWorkers,
		QueueSize: p.Config.NotifyQueueSize,
		Observer:  p.Observer,
	}, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.NotificationWorker
	Engine     *workflow.Engine
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting qrloyalty", slog.String("addr", p.Server.Addr))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Engine.Close()
			p.Worker.Stop()

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("qrloyalty stopped")
			return nil
		},
	})
}
