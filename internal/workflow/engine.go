package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/usecase"
)

// ErrEngineClosed is returned once the engine has been shut down.
var ErrEngineClosed = errors.New("workflow engine closed")

const defaultIdleTimeout = 5 * time.Minute

// Ledger is the part of the ledger the engine drives.
type Ledger interface {
	Enroll(ctx context.Context, customer model.Customer, businessID int64) (*usecase.Enrollment, error)
	Balance(ctx context.Context, customerID string, businessID int64) (int64, error)
	Commit(ctx context.Context, req usecase.CommitRequest) (*model.CommitResult, error)
	Policy() usecase.Policy
}

// Notifier delivers messages to operator and customer channels without blocking.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// Observer receives workflow telemetry.
type Observer interface {
	SessionStarted()
	SessionFinished(state model.WorkflowState, lifetime time.Duration)
	ScanRejected(reason string)
}

// Options tunes the engine.
type Options struct {
	IdleTimeout time.Duration
	Observer    Observer
	Logger      *slog.Logger
}

// Engine runs one purchase conversation per operator channel.
type Engine struct {
	ledger   Ledger
	notifier Notifier
	observer Observer
	logger   *slog.Logger
	idle     time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[model.ChannelID]*session
	closed   bool
}

// NewEngine constructs Engine.
func NewEngine(ledger Ledger, notifier Notifier, opts Options) *Engine {
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		ledger:   ledger,
		notifier: notifier,
		observer: opts.Observer,
		logger:   logger,
		idle:     idle,
		now:      time.Now,
		sessions: make(map[model.ChannelID]*session),
	}
}

// Session returns a copy of the active session on the channel.
func (e *Engine) Session(channel model.ChannelID) (*model.WorkflowSession, bool) {
	s := e.lookup(channel)
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live() {
		return nil, false
	}
	snap := s.snapshot()
	return &snap, true
}

// Active returns the number of channels with a live or reserved session.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

// Advance feeds operator input to the session on the channel.
// Validation errors leave the session in its current state.
func (e *Engine) Advance(ctx context.Context, channel model.ChannelID, input string) (*model.WorkflowReply, error) {
	s := e.lookup(channel)
	if s == nil {
		return nil, domainErrors.ErrNoActiveSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live() {
		return nil, domainErrors.ErrNoActiveSession
	}

	switch s.data.State {
	case model.WorkflowAwaitingAmount:
		return e.acceptAmount(ctx, s, input)
	case model.WorkflowAwaitingRedemption:
		return e.acceptRedemption(ctx, s, input)
	default:
		return nil, domainErrors.ErrNoActiveSession
	}
}

func (e *Engine) acceptAmount(ctx context.Context, s *session, input string) (*model.WorkflowReply, error) {
	amount, err := usecase.ParseAmount(input)
	if err != nil {
		return nil, err
	}
	balance, err := e.ledger.Balance(ctx, s.data.CustomerID, s.data.BusinessID)
	if err != nil {
		return nil, err
	}
	s.data.Amount = &amount
	s.data.State = model.WorkflowAwaitingRedemption
	e.touch(s)

	return &model.WorkflowReply{
		SessionID: s.data.ID,
		State:     s.data.State,
		Prompt:    promptRedemption(amount, balance, e.ledger.Policy().RedemptionCap(amount)),
	}, nil
}

func (e *Engine) acceptRedemption(ctx context.Context, s *session, input string) (*model.WorkflowReply, error) {
	points, err := usecase.ParsePoints(input)
	if err != nil {
		return nil, err
	}
	amount := *s.data.Amount
	if capPoints := e.ledger.Policy().RedemptionCap(amount); points > capPoints {
		return nil, domainErrors.RedemptionCapError{Cap: capPoints}
	}
	balance, err := e.ledger.Balance(ctx, s.data.CustomerID, s.data.BusinessID)
	if err != nil {
		return nil, err
	}
	if points > balance {
		return nil, domainErrors.InsufficientBalanceError{Balance: balance}
	}

	res, err := e.ledger.Commit(ctx, usecase.CommitRequest{
		CustomerID:     s.data.CustomerID,
		BusinessID:     s.data.BusinessID,
		Amount:         amount,
		PointsRedeemed: points,
	})
	if err != nil {
		if retryable(err) {
			e.touch(s)
			return nil, err
		}
		e.logger.Error("workflow commit failed",
			slog.String("session_id", s.data.ID.String()),
			slog.String("channel", s.data.Channel.String()),
			slog.Any("error", err),
		)
		e.finish(ctx, s, model.WorkflowFailed)
		return nil, err
	}

	e.end(s, model.WorkflowSettled)
	e.notify(ctx, model.RecipientOperator, s.data.Channel.String(), model.EventPurchaseSettled, settledOperator(s.data.CustomerName, res))
	e.notify(ctx, model.RecipientCustomer, s.data.CustomerID, model.EventPurchaseSettled, settledCustomer(s.data.BusinessName, res))

	return &model.WorkflowReply{
		SessionID: s.data.ID,
		State:     model.WorkflowSettled,
		Prompt:    settledOperator(s.data.CustomerName, res),
		Result:    res,
	}, nil
}

// retryable reports whether a commit error leaves the conversation usable.
func retryable(err error) bool {
	return errors.Is(err, domainErrors.ErrInsufficientBalance) ||
		errors.Is(err, domainErrors.ErrRedemptionCapExceeded) ||
		errors.Is(err, domainErrors.ErrInvalidPoints) ||
		errors.Is(err, domainErrors.ErrInvalidAmount)
}

// Cancel aborts the session on the channel without touching the ledger.
func (e *Engine) Cancel(ctx context.Context, channel model.ChannelID) error {
	s := e.lookup(channel)
	if s == nil {
		return domainErrors.ErrNoActiveSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live() {
		return domainErrors.ErrNoActiveSession
	}
	e.finish(ctx, s, model.WorkflowCancelled)
	return nil
}

// Close stops every idle timer and drops all sessions.
func (e *Engine) Close() {
	e.mu.Lock()
	sessions := e.sessions
	e.sessions = make(map[model.ChannelID]*session)
	e.closed = true
	e.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		if s.timer != nil {
			s.timer.Stop()
		}
		s.done = true
		s.mu.Unlock()
	}
}

func (e *Engine) lookup(channel model.ChannelID) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[channel]
}

// reserve claims the channel for a dispatch that is about to start a session.
func (e *Engine) reserve(channel model.ChannelID) (*session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	if _, busy := e.sessions[channel]; busy {
		return nil, domainErrors.ErrOperatorBusy
	}
	s := &session{data: model.WorkflowSession{Channel: channel}}
	e.sessions[channel] = s
	return s, nil
}

// release drops a reservation whose dispatch failed.
func (e *Engine) release(s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessions[s.data.Channel] == s {
		delete(e.sessions, s.data.Channel)
	}
}

// activate turns a reservation into a live session awaiting the amount.
func (e *Engine) activate(s *session, data model.WorkflowSession) model.WorkflowSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := e.now()
	data.ID = uuid.New()
	data.Channel = s.data.Channel
	data.State = model.WorkflowAwaitingAmount
	data.StartedAt = now
	data.TouchedAt = now
	s.data = data
	s.active = true
	id := data.ID
	s.timer = time.AfterFunc(e.idle, func() { e.expire(s, id) })
	if e.observer != nil {
		e.observer.SessionStarted()
	}
	return s.snapshot()
}

// touch must be called with s.mu held.
func (e *Engine) touch(s *session) {
	s.data.TouchedAt = e.now()
	if s.timer != nil {
		s.timer.Reset(e.idle)
	}
}

func (e *Engine) expire(s *session, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live() || s.data.ID != id {
		return
	}
	if remaining := e.idle - e.now().Sub(s.data.TouchedAt); remaining > 0 {
		s.timer.Reset(remaining)
		return
	}
	e.logger.Info("workflow timed out",
		slog.String("session_id", id.String()),
		slog.String("channel", s.data.Channel.String()),
		slog.String("state", string(s.data.State)),
	)
	e.finish(context.Background(), s, model.WorkflowTimedOut)
}

// finish ends the session and tells both parties. s.mu must be held.
func (e *Engine) finish(ctx context.Context, s *session, state model.WorkflowState) {
	e.end(s, state)
	event := model.EventWorkflowFailed
	switch state {
	case model.WorkflowCancelled:
		event = model.EventWorkflowCanceled
	case model.WorkflowTimedOut:
		event = model.EventWorkflowTimedOut
	}
	text := endedText(state, s.data.BusinessName)
	e.notify(ctx, model.RecipientOperator, s.data.Channel.String(), event, text)
	e.notify(ctx, model.RecipientCustomer, s.data.CustomerID, event, text)
}

// end marks the session terminal and frees the channel. s.mu must be held.
func (e *Engine) end(s *session, state model.WorkflowState) {
	s.done = true
	s.data.State = state
	if s.timer != nil {
		s.timer.Stop()
	}
	e.release(s)
	if e.observer != nil {
		e.observer.SessionFinished(state, e.now().Sub(s.data.StartedAt))
	}
}

func (e *Engine) notify(ctx context.Context, kind model.RecipientKind, recipient string, event model.NotificationEvent, text string) {
	if e.notifier == nil || recipient == "" {
		return
	}
	e.notifier.Notify(ctx, model.Notification{
		Kind:        kind,
		RecipientID: recipient,
		Event:       event,
		Text:        text,
		CreatedAt:   e.now(),
	})
}
