package notify

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/B3hnamR/viranumpro/internal/domain/model"
)

// Dispatcher maps observed order transitions to outbound notifications and
// fans them out to subscribers. A transition is dispatched at most once per
// (order, resulting status) and each SMS code at most once per message id;
// delivery itself is at-least-once from the consumer's point of view.
type Dispatcher struct {
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	seen   map[string]struct{}
	subs   map[*subscriber]struct{}
	byOut  map[<-chan model.Notification]*subscriber
	closed bool
}

// NewDispatcher constructs the dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		now:    time.Now,
		seen:   make(map[string]struct{}),
		subs:   make(map[*subscriber]struct{}),
		byOut:  make(map[<-chan model.Notification]*subscriber),
	}
}

// NotifyTransition emits notifications for a status change and/or freshly
// received codes. Publishing never blocks the caller.
func (d *Dispatcher) NotifyTransition(order *model.Order, from, to model.OrderStatus, codes []model.SMS) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	fresh := codes[:0:0]
	for _, sms := range codes {
		key := order.ID + "|sms|" + sms.ID
		if _, ok := d.seen[key]; ok {
			continue
		}
		d.seen[key] = struct{}{}
		fresh = append(fresh, sms)
	}

	if len(fresh) > 0 {
		d.publish(model.Notification{
			ID:        uuid.NewString(),
			Kind:      model.NotificationCode,
			OwnerID:   order.OwnerID,
			OrderID:   order.ID,
			OldStatus: from,
			NewStatus: to,
			Codes:     fresh,
			Text:      codeText(fresh),
			Controls:  controlsFor(to),
			CreatedAt: d.now(),
		})
	}

	if to == from {
		return
	}
	statusKey := order.ID + "|status|" + string(to)
	if _, ok := d.seen[statusKey]; ok {
		d.logger.Debug("transition already dispatched",
			slog.String("order", order.ID),
			slog.String("status", string(to)),
		)
		return
	}
	d.seen[statusKey] = struct{}{}

	d.publish(model.Notification{
		ID:        uuid.NewString(),
		Kind:      model.NotificationStatus,
		OwnerID:   order.OwnerID,
		OrderID:   order.ID,
		OldStatus: from,
		NewStatus: to,
		Text:      fmt.Sprintf("Order %s status: %s", order.ID, to),
		Controls:  controlsFor(to),
		CreatedAt: d.now(),
	})
}

// NotifyDegraded emits a single notice when polling for an order keeps
// failing. Repeated degradation of the same order stays silent.
func (d *Dispatcher) NotifyDegraded(order *model.Order, failures int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	key := order.ID + "|degraded"
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}

	d.publish(model.Notification{
		ID:      uuid.NewString(),
		Kind:    model.NotificationDegraded,
		OwnerID: order.OwnerID,
		OrderID: order.ID,
		Text: fmt.Sprintf("Tracking for order %s is degraded after %d failed checks; it stays enrolled and will recover automatically.",
			order.ID, failures),
		Controls:  controlsFor(order.Status),
		CreatedAt: d.now(),
	})
}

// Subscribe returns a channel of future notifications. The subscription
// buffers without bound, so a slow consumer never blocks dispatch; closing
// happens when the dispatcher shuts down.
func (d *Dispatcher) Subscribe() <-chan model.Notification {
	sub := &subscriber{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan model.Notification),
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		close(sub.out)
		return sub.out
	}
	d.subs[sub] = struct{}{}
	d.byOut[sub.out] = sub
	d.mu.Unlock()

	go sub.pump()
	return sub.out
}

// Unsubscribe detaches a subscription returned by Subscribe and closes its
// channel once drained. Unknown channels are ignored.
func (d *Dispatcher) Unsubscribe(ch <-chan model.Notification) {
	d.mu.Lock()
	sub, ok := d.byOut[ch]
	if ok {
		delete(d.byOut, ch)
		delete(d.subs, sub)
	}
	d.mu.Unlock()

	if ok {
		sub.close()
	}
}

// Close stops fan-out and closes all subscriber channels.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for sub := range d.subs {
		sub.close()
	}
	d.subs = make(map[*subscriber]struct{})
	d.byOut = make(map[<-chan model.Notification]*subscriber)
}

func (d *Dispatcher) publish(n model.Notification) {
	for sub := range d.subs {
		sub.enqueue(n)
	}
}

type subscriber struct {
	mu        sync.Mutex
	queue     []model.Notification
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	out       chan model.Notification
}

func (s *subscriber) enqueue(n model.Notification) {
	s.mu.Lock()
	s.queue = append(s.queue, n)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// pump drains the queue into the outbound channel in order until closed.
func (s *subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-s.done:
			return
		}
	}
}

func controlsFor(status model.OrderStatus) []model.ControlAction {
	if status.Terminal() {
		return nil
	}
	return []model.ControlAction{model.ControlCheck, model.ControlFinish, model.ControlCancel, model.ControlBan}
}

func codeText(codes []model.SMS) string {
	values := make([]string, 0, len(codes))
	for _, sms := range codes {
		if sms.Code != "" {
			values = append(values, sms.Code)
		}
	}
	sort.Strings(values)
	if len(values) == 0 {
		return "New message received."
	}
	return "New code(s) received: " + strings.Join(values, ", ")
}
