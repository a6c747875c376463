package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/pkg/ratelimit"
	testhelpers "github.com/polkiloo/qrloyalty/internal/test"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

func TestDispatchEnrollsCustomer(t *testing.T) {
	f := newFixture(t, time.Minute, nil)

	res, err := f.dispatcher.Dispatch(context.Background(), workflow.ScanRequest{CustomerID: " c1 ", DisplayName: "Ann", Handle: "ann", BusinessID: 1})
	if err != nil {
		t.Fatalf("dispatch returned error: %v", err)
	}
	if res.Customer.ID != "c1" || res.Business.Name != "Coffee" || res.Balance != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, ok := f.customers.Customers["c1"]; !ok {
		t.Fatalf("expected customer to be stored")
	}
	if points, err := f.uc.Balance(context.Background(), "c1", 1); err != nil || points != 0 {
		t.Fatalf("expected zero balance entry, got %d, %v", points, err)
	}

	s, ok := f.engine.Session(channel)
	if !ok || s.State != model.WorkflowAwaitingAmount || s.ID != res.SessionID {
		t.Fatalf("expected session awaiting amount, got %+v", s)
	}

	op, ok := f.notifier.Last(model.RecipientOperator)
	if !ok || op.Event != model.EventScanStarted || op.RecipientID != channel.String() {
		t.Fatalf("expected operator prompt, got %+v", op)
	}
	cust, ok := f.notifier.Last(model.RecipientCustomer)
	if !ok || cust.RecipientID != "c1" {
		t.Fatalf("expected customer welcome, got %+v", cust)
	}
}

func TestDispatchUnknownBusiness(t *testing.T) {
	f := newFixture(t, time.Minute, nil)

	_, err := f.dispatcher.Dispatch(context.Background(), workflow.ScanRequest{CustomerID: "c1", BusinessID: 404})
	if !errors.Is(err, domainErrors.ErrBusinessNotFound) {
		t.Fatalf("expected business not found, got %v", err)
	}
	if f.engine.Active() != 0 {
		t.Fatalf("expected no session")
	}
	if len(f.customers.Customers) != 0 {
		t.Fatalf("expected no customer side effects")
	}
}

func TestDispatchBusyChannel(t *testing.T) {
	f := newFixture(t, time.Minute, nil)
	first := f.start(t, "c1", 0)

	_, err := f.dispatcher.Dispatch(context.Background(), workflow.ScanRequest{CustomerID: "c2", BusinessID: 2})
	if !errors.Is(err, domainErrors.ErrOperatorBusy) {
		t.Fatalf("expected operator busy, got %v", err)
	}
	s, _ := f.engine.Session(channel)
	if s.ID != first.SessionID || s.CustomerID != "c1" {
		t.Fatalf("expected first session untouched, got %+v", s)
	}
}

func TestDispatchConcurrentScansStartOneSession(t *testing.T) {
	f := newFixture(t, time.Minute, nil)

	const scans = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
		busy    int
	)
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.dispatcher.Dispatch(context.Background(), workflow.ScanRequest{CustomerID: testhelpers.RandomCustomerID(), BusinessID: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				started++
			case errors.Is(err, domainErrors.ErrOperatorBusy):
				busy++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if started != 1 || busy != scans-1 {
		t.Fatalf("expected exactly one session, got started=%d busy=%d", started, busy)
	}
	if f.engine.Active() != 1 {
		t.Fatalf("expected one active channel, got %d", f.engine.Active())
	}
}

func TestDispatchReleasesSlotOnEnrollFailure(t *testing.T) {
	f := newFixture(t, time.Minute, nil)
	f.customers.Err = errors.New("db down")

	if _, err := f.dispatcher.Dispatch(context.Background(), workflow.ScanRequest{CustomerID: "c1", BusinessID: 1}); err == nil {
		t.Fatalf("expected enrollment error")
	}
	if f.engine.Active() != 0 {
		t.Fatalf("expected reservation released")
	}

	f.customers.Err = nil
	f.start(t, "c1", 0)
}

func TestDispatchRateLimited(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Limit{RequestsPerMinute: 1, Burst: 1})
	f := newFixture(t, time.Minute, limiter)

	f.start(t, "c1", 0)
	if err := f.engine.Cancel(context.Background(), channel); err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}

	_, err := f.dispatcher.Dispatch(context.Background(), workflow.ScanRequest{CustomerID: "c1", BusinessID: 1})
	if !errors.Is(err, workflow.ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}
	f.start(t, "c2", 0)
}

func TestDispatchBlankCustomer(t *testing.T) {
	f := newFixture(t, time.Minute, nil)
	if _, err := f.dispatcher.Dispatch(context.Background(), workflow.ScanRequest{CustomerID: "  ", BusinessID: 1}); !errors.Is(err, domainErrors.ErrCustomerNotFound) {
		t.Fatalf("expected customer not found, got %v", err)
	}
}

func TestDispatchPayload(t *testing.T) {
	f := newFixture(t, time.Minute, nil)

	res, err := f.dispatcher.DispatchPayload(context.Background(), "business_2", workflow.ScanRequest{CustomerID: "c1"})
	if err != nil {
		t.Fatalf("dispatch payload returned error: %v", err)
	}
	if res.Business.ID != 2 {
		t.Fatalf("expected business 2, got %d", res.Business.ID)
	}

	if _, err := f.dispatcher.DispatchPayload(context.Background(), "shop_2", workflow.ScanRequest{CustomerID: "c1"}); !errors.Is(err, domainErrors.ErrInvalidScanPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}

func TestParseScanPayload(t *testing.T) {
	cases := []struct {
		payload string
		id      int64
		ok      bool
	}{
		{"business_42", 42, true},
		{" business_7 ", 7, true},
		{workflow.ScanPayload(1001), 1001, true},
		{"business_", 0, false},
		{"business_0", 0, false},
		{"business_-3", 0, false},
		{"business_+3", 0, false},
		{"business_12abc", 0, false},
		{"42", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.payload, func(t *testing.T) {
			id, err := workflow.ParseScanPayload(tc.payload)
			if tc.ok {
				if err != nil || id != tc.id {
					t.Fatalf("expected %d, got %d, %v", tc.id, id, err)
				}
				return
			}
			if !errors.Is(err, domainErrors.ErrInvalidScanPayload) {
				t.Fatalf("expected invalid payload, got %v", err)
			}
		})
	}
}
