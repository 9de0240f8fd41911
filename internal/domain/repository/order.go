package repository

import (
	"context"

	"github.com/B3hnamR/viranumpro/internal/domain/model"
)

// OrderRepository is the registry contract for purchased numbers. It must be
// implementable equally over a volatile map and a durable keyed store.
//
// UpdateStatus and AppendSMS are compare-and-set style: they report whether
// the mutation was applied, and a stale or duplicate request is a no-op,
// not an error. Status moves only along the model transition table.
type OrderRepository interface {
	Insert(ctx context.Context, order *model.Order) error
	Get(ctx context.Context, orderID string) (*model.Order, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error)
	AppendSMS(ctx context.Context, orderID string, sms model.SMS) (bool, error)
	Remove(ctx context.Context, orderID string) error
}
