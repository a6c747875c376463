package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/qrloyalty/internal/adapter/notify"
	"github.com/polkiloo/qrloyalty/internal/app"
	"github.com/polkiloo/qrloyalty/internal/config"
	"github.com/polkiloo/qrloyalty/internal/domain/repository"
	"github.com/polkiloo/qrloyalty/internal/metrics"
	"github.com/polkiloo/qrloyalty/internal/storage/postgres"
	"github.com/polkiloo/qrloyalty/internal/test"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:           ":0",
		DatabaseURI:          "postgres://stub",
		JWTSecret:            "secret",
		OperatorTokenTTL:     time.Hour,
		ShutdownTimeout:      time.Millisecond,
		WorkflowIdleTimeout:  time.Minute,
		CommitMaxRetries:     1,
		CommitRetryBackoff:   time.Millisecond,
		AccrualPolicy:        "exclusive",
		AccrualRounding:      "half_even",
		RedemptionCapPercent: 50,
		TierBasis:            "spend",
		NotifyWorkers:        1,
		NotifyQueueSize:      4,
		ScanRatePerMinute:    60,
		ScanBurst:            1,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ledger := test.NewLedgerRepositoryStub()

	var (
		facade     *app.LoyaltyFacade
		engine     *workflow.Engine
		collectors *metrics.Metrics
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OperatorRepository(test.NewOperatorRepositoryStub())),
			fx.Replace(repository.CustomerRepository(test.NewCustomerRepositoryStub())),
			fx.Replace(repository.BusinessRepository(test.NewBusinessRepositoryStub())),
			fx.Replace(repository.LedgerRepository(ledger)),
			fx.Replace(repository.TransactionRepository(ledger)),
			fx.Replace(repository.TierRepository(test.NewTierRepositoryStub())),
			fx.Replace(notify.Sender(&test.SenderStub{})),
		),
		fx.Populate(&facade, &engine, &collectors),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || engine == nil || collectors == nil {
		t.Fatal("expected facade, engine and metrics instances")
	}
}
