package worker

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/usecase"
)

// OrderTracker exposes the registry operations the poller needs. All status
// writes go through the compare-and-set contract.
type OrderTracker interface {
	Lookup(ctx context.Context, orderID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error)
	AppendSMS(ctx context.Context, orderID string, sms model.SMS) (bool, error)
}

// CheckProvider issues the provider status check.
type CheckProvider interface {
	Check(ctx context.Context, orderID string) (*fivesim.Order, error)
}

// Notifier receives observed transitions; delivery is fire-and-forget.
type Notifier interface {
	NotifyTransition(order *model.Order, from, to model.OrderStatus, codes []model.SMS)
	NotifyDegraded(order *model.Order, failures int)
}

// Config tunes the polling schedule.
type Config struct {
	Floor        time.Duration
	Ceiling      time.Duration
	MinTick      time.Duration
	FailureLimit int
}

// Poller runs one scheduling loop over all enrolled, non-terminal orders.
// Each order carries its own next-due time; unchanged polls back off
// multiplicatively up to the ceiling, any observed change resets to the
// floor, and an order whose expiry has passed while still pending is timed
// out locally without a network call.
type Poller struct {
	tracker  OrderTracker
	checker  CheckProvider
	notifier Notifier
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	queue   entryQueue
	wake    chan struct{}

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type entry struct {
	orderID      string
	ownerID      int64
	interval     time.Duration
	nextPollAt   time.Time
	lastPolledAt time.Time
	attempts     int
	failures     int
	degraded     bool
	removed      bool
	index        int
}

// NewPoller constructs the status poller.
func NewPoller(tracker OrderTracker, checker CheckProvider, notifier Notifier, cfg Config, logger *slog.Logger) *Poller {
	if cfg.Floor <= 0 {
		cfg.Floor = 2 * time.Second
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = 30 * time.Second
	}
	if cfg.Ceiling < cfg.Floor {
		cfg.Ceiling = cfg.Floor
	}
	if cfg.MinTick <= 0 {
		cfg.MinTick = time.Second
	}
	if cfg.FailureLimit <= 0 {
		cfg.FailureLimit = 5
	}
	return &Poller{
		tracker:  tracker,
		checker:  checker,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[string]*entry),
		wake:     make(chan struct{}, 1),
	}
}

// Start launches the scheduling loop.
func (p *Poller) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.run(runCtx)
}

// Stop waits for the loop to finish.
func (p *Poller) Stop() {
	p.runMu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.runMu.Unlock()

	p.wg.Wait()
}

// Enroll adds an order to the work set. Terminal or already enrolled orders
// are ignored.
func (p *Poller) Enroll(order *model.Order) {
	if order.Status.Terminal() {
		return
	}

	p.mu.Lock()
	if _, ok := p.entries[order.ID]; ok {
		p.mu.Unlock()
		return
	}
	e := &entry{
		orderID:    order.ID,
		ownerID:    order.OwnerID,
		interval:   p.cfg.Floor,
		nextPollAt: p.now().Add(p.cfg.Floor),
	}
	p.entries[order.ID] = e
	heap.Push(&p.queue, e)
	p.mu.Unlock()

	p.signal()
}

// Deregister removes an order from the work set. Calling it for an unknown
// or already removed order is a no-op.
func (p *Poller) Deregister(orderID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[orderID]; ok {
		e.removed = true
		delete(p.entries, orderID)
	}
}

// Enrolled reports whether the order is currently in the work set.
func (p *Poller) Enrolled(orderID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[orderID]
	return ok
}

func (p *Poller) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	timer := time.NewTimer(p.cfg.MinTick)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.untilNextDue())

		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		case <-timer.C:
			p.processDue(ctx)
		}
	}
}

// untilNextDue returns the sleep until the earliest enrolled order is due,
// or the minimum tick when the work set is empty.
func (p *Poller) untilNextDue() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dropRemoved()
	if p.queue.Len() == 0 {
		return p.cfg.MinTick
	}

	wait := time.Until(p.queue[0].nextPollAt)
	if wait < 0 {
		return 0
	}
	if wait > p.cfg.MinTick {
		return p.cfg.MinTick
	}
	return wait
}

func (p *Poller) dropRemoved() {
	for p.queue.Len() > 0 && p.queue[0].removed {
		heap.Pop(&p.queue)
	}
}

func (p *Poller) processDue(ctx context.Context) {
	now := p.now()

	p.mu.Lock()
	var due []*entry
	p.dropRemoved()
	for p.queue.Len() > 0 && !p.queue[0].nextPollAt.After(now) {
		e := heap.Pop(&p.queue).(*entry)
		if e.removed {
			continue
		}
		due = append(due, e)
	}
	p.mu.Unlock()

	for _, e := range due {
		if ctx.Err() != nil {
			return
		}
		drop := p.poll(ctx, e)

		p.mu.Lock()
		if drop || e.removed {
			e.removed = true
			delete(p.entries, e.orderID)
		} else {
			e.nextPollAt = p.now().Add(e.interval)
			heap.Push(&p.queue, e)
		}
		p.mu.Unlock()
	}
}

// poll runs one check for the entry and reports whether the order leaves
// the work set.
func (p *Poller) poll(ctx context.Context, e *entry) bool {
	order, err := p.tracker.Lookup(ctx, e.orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return true
		}
		p.logger.Error("order lookup failed", slog.String("order", e.orderID), slog.String("error", err.Error()))
		e.interval = p.backoff(e.interval)
		return false
	}

	if order.Status.Terminal() {
		return true
	}

	now := p.now()
	e.lastPolledAt = now
	e.attempts++

	// Expiry is checked locally before any network call.
	if order.Status == model.OrderStatusPending && !order.ExpiresAt.IsZero() && !now.Before(order.ExpiresAt) {
		applied, err := p.tracker.UpdateStatus(ctx, e.orderID, model.OrderStatusTimeout)
		if err != nil {
			p.logger.Error("timeout transition failed", slog.String("order", e.orderID), slog.String("error", err.Error()))
			return false
		}
		if applied {
			p.notifier.NotifyTransition(order, model.OrderStatusPending, model.OrderStatusTimeout, nil)
		}
		return true
	}

	result, err := p.checker.Check(ctx, e.orderID)
	if err != nil {
		e.failures++
		e.interval = p.backoff(e.interval)
		p.logger.Warn("order check failed",
			slog.String("order", e.orderID),
			slog.Int("failures", e.failures),
			slog.String("error", err.Error()),
		)
		if e.failures >= p.cfg.FailureLimit && !e.degraded {
			e.degraded = true
			p.notifier.NotifyDegraded(order, e.failures)
		}
		return false
	}
	e.failures = 0
	e.degraded = false

	var newCodes []model.SMS
	for _, sms := range result.SMS {
		converted := usecase.SMSFromProvider(sms)
		applied, err := p.tracker.AppendSMS(ctx, e.orderID, converted)
		if err != nil {
			p.logger.Error("append sms failed", slog.String("order", e.orderID), slog.String("error", err.Error()))
			continue
		}
		if applied {
			newCodes = append(newCodes, converted)
		}
	}

	from := order.Status
	to := from

	if status, serr := usecase.StatusFromProvider(result.Status); serr == nil && status != from {
		applied, err := p.tracker.UpdateStatus(ctx, e.orderID, status)
		if err != nil {
			p.logger.Error("status update failed", slog.String("order", e.orderID), slog.String("error", err.Error()))
		} else if applied {
			to = status
		}
	} else if serr != nil {
		p.logger.Warn("provider returned unknown status",
			slog.String("order", e.orderID),
			slog.String("status", result.Status),
		)
	}

	// A code observed while the provider still reports PENDING moves the
	// order to RECEIVED locally.
	if to == model.OrderStatusPending && len(newCodes) > 0 {
		if applied, err := p.tracker.UpdateStatus(ctx, e.orderID, model.OrderStatusReceived); err == nil && applied {
			to = model.OrderStatusReceived
		}
	}

	changed := to != from || len(newCodes) > 0
	if changed {
		e.interval = p.cfg.Floor
		p.notifier.NotifyTransition(order, from, to, newCodes)
	} else {
		e.interval = p.backoff(e.interval)
	}

	return to.Terminal()
}

func (p *Poller) backoff(current time.Duration) time.Duration {
	next := current * 2
	if next > p.cfg.Ceiling {
		next = p.cfg.Ceiling
	}
	if next < p.cfg.Floor {
		next = p.cfg.Floor
	}
	return next
}

// entryQueue is a min-heap ordered by next due time.
type entryQueue []*entry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool { return q[i].nextPollAt.Before(q[j].nextPollAt) }

func (q entryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *entryQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *entryQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}
