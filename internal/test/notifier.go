package test

import (
	"context"
	"sync"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// NotifierStub records notifications instead of delivering them.
type NotifierStub struct {
	mu   sync.Mutex
	sent []model.Notification
}

// Notify stores n.
func (s *NotifierStub) Notify(ctx context.Context, n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
}

// Sent returns a copy of the recorded notifications.
func (s *NotifierStub) Sent() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.sent...)
}

// Last returns the most recent notification for the recipient kind.
func (s *NotifierStub) Last(kind model.RecipientKind) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.sent) - 1; i >= 0; i-- {
		if s.sent[i].Kind == kind {
			return s.sent[i], true
		}
	}
	return model.Notification{}, false
}

// Events lists recorded event types in order.
func (s *NotifierStub) Events() []model.NotificationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.NotificationEvent, 0, len(s.sent))
	for _, n := range s.sent {
		out = append(out, n.Event)
	}
	return out
}

// SenderStub records deliveries and lets tests script failures.
type SenderStub struct {
	mu     sync.Mutex
	sent   []model.Notification
	calls  int
	SendFn func(ctx context.Context, n model.Notification) error
}

// Send records n unless SendFn fails.
func (s *SenderStub) Send(ctx context.Context, n model.Notification) error {
	s.mu.Lock()
	s.calls++
	fn := s.SendFn
	s.mu.Unlock()
	if fn != nil {
		if err := fn(ctx, n); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

// Delivered returns a copy of successfully sent notifications.
func (s *SenderStub) Delivered() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.sent...)
}

// Calls returns the number of Send invocations.
func (s *SenderStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
