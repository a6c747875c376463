package workflow

import (
	"sync"
	"time"

	"github.com/polkiloo/qrloyalty/internal/domain/model"
)

// session is the live state of one operator channel. The registry lock only
// guards the map; mu serialises every step of the conversation, including the
// ledger commit.
type session struct {
	mu    sync.Mutex
	data  model.WorkflowSession
	timer *time.Timer
	// active is false while the slot is only reserved by a dispatch in progress.
	active bool
	done   bool
}

func (s *session) snapshot() model.WorkflowSession {
	out := s.data
	if s.data.Amount != nil {
		amount := *s.data.Amount
		out.Amount = &amount
	}
	return out
}

func (s *session) live() bool {
	return s.active && !s.done
}
