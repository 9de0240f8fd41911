package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/storage/memory"
	testhelpers "github.com/B3hnamR/viranumpro/internal/test"
	"github.com/B3hnamR/viranumpro/internal/usecase"
)

func newTestPoller(t *testing.T, registry *memory.Registry, provider *testhelpers.ProviderStub, notifier *testhelpers.NotifierStub, cfg Config) *Poller {
	t.Helper()
	tracker := usecase.NewOrderUseCase(registry, provider, testhelpers.NewLogger())
	return NewPoller(tracker, provider, notifier, cfg, testhelpers.NewLogger())
}

func pendingOrder(id string, expires time.Time) *model.Order {
	return &model.Order{
		ID:        id,
		OwnerID:   7,
		Product:   "telegram",
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
}

func TestEnrollSkipsTerminalAndDuplicates(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	p := newTestPoller(t, registry, &testhelpers.ProviderStub{}, &testhelpers.NotifierStub{}, Config{})

	done := pendingOrder("1", time.Now().Add(time.Hour))
	done.Status = model.OrderStatusFinished
	p.Enroll(done)
	if p.Enrolled("1") {
		t.Fatal("terminal order must not be enrolled")
	}

	order := pendingOrder("2", time.Now().Add(time.Hour))
	p.Enroll(order)
	p.Enroll(order)
	if !p.Enrolled("2") {
		t.Fatal("expected order to be enrolled")
	}
	p.mu.Lock()
	queued := p.queue.Len()
	p.mu.Unlock()
	if queued != 1 {
		t.Fatalf("duplicate enroll must not queue twice, got %d", queued)
	}
}

func TestDeregisterIsIdempotent(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	p := newTestPoller(t, registry, &testhelpers.ProviderStub{}, &testhelpers.NotifierStub{}, Config{})

	p.Enroll(pendingOrder("1", time.Now().Add(time.Hour)))
	p.Deregister("1")
	p.Deregister("1")
	p.Deregister("never-seen")
	if p.Enrolled("1") {
		t.Fatal("expected order to be deregistered")
	}
}

func TestBackoffDoublesUpToCeiling(t *testing.T) {
	cfg := Config{Floor: 2 * time.Second, Ceiling: 30 * time.Second}
	registry := memory.NewRegistry(testhelpers.NewLogger())
	p := newTestPoller(t, registry, &testhelpers.ProviderStub{}, &testhelpers.NotifierStub{}, cfg)

	intervals := []time.Duration{p.cfg.Floor}
	current := p.cfg.Floor
	for i := 0; i < 6; i++ {
		current = p.backoff(current)
		intervals = append(intervals, current)
	}
	for i := 1; i < len(intervals); i++ {
		if intervals[i] < intervals[i-1] {
			t.Fatalf("backoff must be non-decreasing: %v", intervals)
		}
		if intervals[i] > cfg.Ceiling {
			t.Fatalf("backoff must not exceed ceiling: %v", intervals)
		}
	}
	if intervals[len(intervals)-1] != cfg.Ceiling {
		t.Fatalf("expected ceiling %v, got %v", cfg.Ceiling, intervals[len(intervals)-1])
	}
}

func TestPollUnchangedBacksOffAndChangeResets(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	notifier := &testhelpers.NotifierStub{}
	status := "PENDING"
	provider := &testhelpers.ProviderStub{
		CheckFn: func(ctx context.Context, orderID string) (*fivesim.Order, error) {
			return &fivesim.Order{Status: status}, nil
		},
	}
	p := newTestPoller(t, registry, provider, notifier, Config{Floor: 2 * time.Second, Ceiling: 30 * time.Second})

	if err := registry.Insert(context.Background(), pendingOrder("1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	e := &entry{orderID: "1", ownerID: 7, interval: p.cfg.Floor}

	if drop := p.poll(context.Background(), e); drop {
		t.Fatal("unchanged pending order must stay enrolled")
	}
	if e.interval != 4*time.Second {
		t.Fatalf("expected backoff to 4s, got %v", e.interval)
	}
	if drop := p.poll(context.Background(), e); drop {
		t.Fatal("unchanged pending order must stay enrolled")
	}
	if e.interval != 8*time.Second {
		t.Fatalf("expected backoff to 8s, got %v", e.interval)
	}

	status = "RECEIVED"
	if drop := p.poll(context.Background(), e); drop {
		t.Fatal("RECEIVED is not terminal, order must stay enrolled")
	}
	if e.interval != p.cfg.Floor {
		t.Fatalf("observed change must reset interval to floor, got %v", e.interval)
	}
	if notifier.TransitionCount() != 1 {
		t.Fatalf("expected one transition notification, got %d", notifier.TransitionCount())
	}
}

func TestPollExpiredPendingTimesOutLocally(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	notifier := &testhelpers.NotifierStub{}
	provider := &testhelpers.ProviderStub{}
	p := newTestPoller(t, registry, provider, notifier, Config{})

	if err := registry.Insert(context.Background(), pendingOrder("1", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	e := &entry{orderID: "1", ownerID: 7, interval: p.cfg.Floor}

	if drop := p.poll(context.Background(), e); !drop {
		t.Fatal("expired order must leave the work set")
	}
	if got := provider.CheckCalls.Load(); got != 0 {
		t.Fatalf("expiry must be decided without a network call, got %d checks", got)
	}

	order, err := registry.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusTimeout {
		t.Fatalf("expected TIMEOUT, got %s", order.Status)
	}
	if notifier.TransitionCount() != 1 {
		t.Fatalf("expected one timeout notification, got %d", notifier.TransitionCount())
	}
}

func TestPollDropsVanishedOrder(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	p := newTestPoller(t, registry, &testhelpers.ProviderStub{}, &testhelpers.NotifierStub{}, Config{})

	e := &entry{orderID: "missing", interval: p.cfg.Floor}
	if drop := p.poll(context.Background(), e); !drop {
		t.Fatal("vanished order must leave the work set")
	}
}

func TestPollDegradedAfterRepeatedFailures(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	notifier := &testhelpers.NotifierStub{}
	provider := &testhelpers.ProviderStub{
		CheckFn: func(ctx context.Context, orderID string) (*fivesim.Order, error) {
			return nil, errors.New("connection refused")
		},
	}
	p := newTestPoller(t, registry, provider, notifier, Config{FailureLimit: 3})

	if err := registry.Insert(context.Background(), pendingOrder("1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	e := &entry{orderID: "1", ownerID: 7, interval: p.cfg.Floor}

	for i := 0; i < 5; i++ {
		if drop := p.poll(context.Background(), e); drop {
			t.Fatal("failing order must stay enrolled")
		}
	}
	if notifier.DegradedCount() != 1 {
		t.Fatalf("expected exactly one degraded notice, got %d", notifier.DegradedCount())
	}

	// Recovery clears the failure streak and the degraded mark.
	provider.CheckFn = func(ctx context.Context, orderID string) (*fivesim.Order, error) {
		return &fivesim.Order{Status: "PENDING"}, nil
	}
	if drop := p.poll(context.Background(), e); drop {
		t.Fatal("recovered order must stay enrolled")
	}
	if e.failures != 0 || e.degraded {
		t.Fatalf("expected failure state cleared, got failures=%d degraded=%v", e.failures, e.degraded)
	}
}

func TestPollCodeWhilePendingMovesToReceived(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	notifier := &testhelpers.NotifierStub{}
	provider := &testhelpers.ProviderStub{
		CheckFn: func(ctx context.Context, orderID string) (*fivesim.Order, error) {
			return &fivesim.Order{
				Status: "PENDING",
				SMS:    []fivesim.SMS{{ID: 101, Code: "415127", Text: "code 415127"}},
			}, nil
		},
	}
	p := newTestPoller(t, registry, provider, notifier, Config{})

	if err := registry.Insert(context.Background(), pendingOrder("11631253", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	e := &entry{orderID: "11631253", ownerID: 7, interval: p.cfg.Floor}

	if drop := p.poll(context.Background(), e); drop {
		t.Fatal("RECEIVED order must stay enrolled")
	}

	order, _ := registry.Get(context.Background(), "11631253")
	if order.Status != model.OrderStatusReceived {
		t.Fatalf("expected RECEIVED, got %s", order.Status)
	}
	if len(order.SMS) != 1 || order.SMS[0].Code != "415127" {
		t.Fatalf("expected stored code, got %+v", order.SMS)
	}
	if notifier.TransitionCount() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.TransitionCount())
	}
	rec := notifier.Transitions[0]
	if rec.To != model.OrderStatusReceived || len(rec.Codes) != 1 {
		t.Fatalf("unexpected notification %+v", rec)
	}

	// A second observation of the same message changes nothing.
	if drop := p.poll(context.Background(), e); drop {
		t.Fatal("order must stay enrolled")
	}
	if notifier.TransitionCount() != 1 {
		t.Fatalf("duplicate observation must not notify again, got %d", notifier.TransitionCount())
	}
}

func TestPollTerminalStatusLeavesWorkSet(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	provider := &testhelpers.ProviderStub{
		CheckFn: func(ctx context.Context, orderID string) (*fivesim.Order, error) {
			return &fivesim.Order{Status: "FINISHED"}, nil
		},
	}
	p := newTestPoller(t, registry, provider, &testhelpers.NotifierStub{}, Config{})

	if err := registry.Insert(context.Background(), pendingOrder("1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	e := &entry{orderID: "1", ownerID: 7, interval: p.cfg.Floor}

	if drop := p.poll(context.Background(), e); !drop {
		t.Fatal("terminal order must leave the work set")
	}
	order, _ := registry.Get(context.Background(), "1")
	if order.Status != model.OrderStatusFinished {
		t.Fatalf("expected FINISHED, got %s", order.Status)
	}
}

func TestPollerLoopProcessesEnrolledOrder(t *testing.T) {
	registry := memory.NewRegistry(testhelpers.NewLogger())
	notifier := &testhelpers.NotifierStub{}
	provider := &testhelpers.ProviderStub{
		CheckFn: func(ctx context.Context, orderID string) (*fivesim.Order, error) {
			return &fivesim.Order{Status: "FINISHED"}, nil
		},
	}
	cfg := Config{Floor: 10 * time.Millisecond, Ceiling: 40 * time.Millisecond, MinTick: 5 * time.Millisecond}
	p := newTestPoller(t, registry, provider, notifier, cfg)

	order := pendingOrder("1", time.Now().Add(time.Hour))
	if err := registry.Insert(context.Background(), order); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	p.Enroll(order)

	deadline := time.After(2 * time.Second)
	for p.Enrolled("1") {
		select {
		case <-deadline:
			t.Fatal("order was not processed in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	stored, _ := registry.Get(context.Background(), "1")
	if stored.Status != model.OrderStatusFinished {
		t.Fatalf("expected FINISHED, got %s", stored.Status)
	}
	if notifier.TransitionCount() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.TransitionCount())
	}
}
