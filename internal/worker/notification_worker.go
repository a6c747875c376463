package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/qrloyalty/internal/adapter/notify"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// Delivery outcomes reported to the observer.
const (
	DeliverySent     = "sent"
	DeliveryRejected = "rejected"
	DeliveryFailed   = "failed"
	DeliveryDropped  = "dropped"
)

// DeliveryObserver receives notification delivery telemetry.
type DeliveryObserver interface {
	ObserveDelivery(event string, outcome string)
}

// Options tunes the notification pool.
type Options struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
	Observer    DeliveryObserver
}

// NotificationWorker delivers notifications through a bounded queue and a worker pool.
// Notify never blocks the caller; a full queue drops the message.
type NotificationWorker struct {
	sender      notify.Sender
	workers     int
	maxAttempts int
	backoff     time.Duration
	observer    DeliveryObserver
	logger      *slog.Logger

	jobs    chan model.Notification
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.RWMutex
	running bool
}

// NewNotificationWorker constructs notification worker pool.
func NewNotificationWorker(sender notify.Sender, opts Options, logger *slog.Logger) *NotificationWorker {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	return &NotificationWorker{
		sender:      sender,
		workers:     opts.Workers,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		observer:    opts.Observer,
		logger:      logger,
		jobs:        make(chan model.Notification, opts.QueueSize),
	}
}

// Start launches background delivery.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	// The fx start context is cancelled once startup completes.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	w.running = true

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.worker(runCtx)
	}
}

// Stop cancels in-flight deliveries and waits for all workers to finish.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
}

// Notify enqueues n for delivery.
func (w *NotificationWorker) Notify(ctx context.Context, n model.Notification) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.running {
		w.drop(n, "worker stopped")
		return
	}
	select {
	case w.jobs <- n:
	default:
		w.drop(n, "queue full")
	}
}

func (w *NotificationWorker) drop(n model.Notification, reason string) {
	w.logger.Warn("notification dropped",
		slog.String("reason", reason),
		slog.String("event", string(n.Event)),
		slog.String("recipient_kind", string(n.Kind)),
	)
	w.observe(n, DeliveryDropped)
}

func (w *NotificationWorker) worker(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-w.jobs:
			w.deliver(ctx, n)
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, n model.Notification) {
	for attempt := 1; ; attempt++ {
		err := w.sender.Send(ctx, n)
		if err == nil {
			w.observe(n, DeliverySent)
			return
		}
		if errors.Is(err, notify.ErrRejected) {
			w.observe(n, DeliveryRejected)
			return
		}
		if attempt >= w.maxAttempts || ctx.Err() != nil {
			w.logger.Error("notification delivery failed",
				slog.String("event", string(n.Event)),
				slog.String("recipient_kind", string(n.Kind)),
				slog.Int("attempts", attempt),
				slog.String("error", err.Error()),
			)
			w.observe(n, DeliveryFailed)
			return
		}

		delay := time.Duration(attempt) * w.backoff
		var tm notify.TooManyRequestsError
		if errors.As(err, &tm) {
			w.logger.Warn("notify rate limited", slog.Duration("retry_after", tm.RetryAfter))
			delay = tm.RetryAfter
		}
		if !sleep(ctx, delay) {
			w.observe(n, DeliveryFailed)
			return
		}
	}
}

func (w *NotificationWorker) observe(n model.Notification, outcome string) {
	if w.observer != nil {
		w.observer.ObserveDelivery(string(n.Event), outcome)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
