package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/qrloyalty/internal/adapter/notify"
	"github.com/polkiloo/qrloyalty/internal/app"
	"github.com/polkiloo/qrloyalty/internal/config"
	"github.com/polkiloo/qrloyalty/internal/logger"
	"github.com/polkiloo/qrloyalty/internal/metrics"
	"github.com/polkiloo/qrloyalty/internal/pkg/auth"
	"github.com/polkiloo/qrloyalty/internal/server/http/router"
	"github.com/polkiloo/qrloyalty/internal/storage/postgres"
	"github.com/polkiloo/qrloyalty/internal/usecase"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		metrics.Module,
		notify.Module,
		usecase.Module,
		workflow.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
