package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
)

// Registry is the volatile order registry. It keeps the primary order table
// plus a secondary owner index, and enforces the status transition table on
// every mutation. All mutations are single critical sections.
type Registry struct {
	mu      sync.RWMutex
	orders  map[string]*model.Order
	byOwner map[int64]map[string]struct{}
	logger  *slog.Logger
}

// NewRegistry creates an empty in-memory registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		orders:  make(map[string]*model.Order),
		byOwner: make(map[int64]map[string]struct{}),
		logger:  logger,
	}
}

// Insert stores a new order. Duplicate identifiers are rejected.
func (r *Registry) Insert(ctx context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return domainErrors.ErrAlreadyExists
	}

	stored := cloneOrder(order)
	r.orders[order.ID] = stored
	owned, ok := r.byOwner[order.OwnerID]
	if !ok {
		owned = make(map[string]struct{})
		r.byOwner[order.OwnerID] = owned
	}
	owned[order.ID] = struct{}{}
	return nil
}

// Get returns a snapshot of the order.
func (r *Registry) Get(ctx context.Context, orderID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(order), nil
}

// ListByOwner returns snapshots of all orders held by owner, newest first.
func (r *Registry) ListByOwner(ctx context.Context, ownerID int64) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byOwner[ownerID]
	result := make([]model.Order, 0, len(ids))
	for id := range ids {
		if order, ok := r.orders[id]; ok {
			result = append(result, *cloneOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateStatus applies a compare-and-set status change. A move outside the
// transition table, including any mutation of a terminal order, is a no-op
// reported through the applied flag.
func (r *Registry) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}

	if !model.CanTransition(order.Status, status) {
		r.logger.Debug("stale status update skipped",
			slog.String("order", orderID),
			slog.String("current", string(order.Status)),
			slog.String("requested", string(status)),
		)
		return false, nil
	}

	order.Status = status
	return true, nil
}

// AppendSMS appends a received message, deduplicated by its stable identifier.
func (r *Registry) AppendSMS(ctx context.Context, orderID string, sms model.SMS) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}

	for _, existing := range order.SMS {
		if existing.ID == sms.ID {
			return false, nil
		}
	}

	order.SMS = append(order.SMS, sms)
	return true, nil
}

// Remove deletes the order from the table and the owner index.
func (r *Registry) Remove(ctx context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}

	delete(r.orders, orderID)
	if owned, ok := r.byOwner[order.OwnerID]; ok {
		delete(owned, orderID)
		if len(owned) == 0 {
			delete(r.byOwner, order.OwnerID)
		}
	}
	return nil
}

func cloneOrder(order *model.Order) *model.Order {
	clone := *order
	if order.SMS != nil {
		clone.SMS = make([]model.SMS, len(order.SMS))
		copy(clone.SMS, order.SMS)
	}
	return &clone
}
