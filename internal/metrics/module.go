package metrics

import (
	"go.uber.org/fx"

	"github.com/polkiloo/qrloyalty/internal/usecase"
	"github.com/polkiloo/qrloyalty/internal/worker"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

// Module provides the collectors and binds them to every observer port.
var Module = fx.Provide(
	New,
	func(m *Metrics) usecase.LedgerObserver { return m },
	func(m *Metrics) workflow.Observer { return m },
	func(m *Metrics) worker.DeliveryObserver { return m },
)
