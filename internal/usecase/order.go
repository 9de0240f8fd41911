package usecase

import (
	"context"
	"log/slog"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/domain/repository"
)

// ControlProvider covers the provider order operations user controls invoke.
type ControlProvider interface {
	Check(ctx context.Context, orderID string) (*fivesim.Order, error)
	Finish(ctx context.Context, orderID string) (*fivesim.Order, error)
	Cancel(ctx context.Context, orderID string) (*fivesim.Order, error)
	Ban(ctx context.Context, orderID string) (*fivesim.Order, error)
}

// OrderUseCase encapsulates registry access and user-invoked order controls.
type OrderUseCase struct {
	registry repository.OrderRepository
	provider ControlProvider
	logger   *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(registry repository.OrderRepository, provider ControlProvider, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{registry: registry, provider: provider, logger: logger}
}

// Get returns an owner's order snapshot.
func (u *OrderUseCase) Get(ctx context.Context, ownerID int64, orderID string) (*model.Order, error) {
	order, err := u.registry.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != ownerID {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// ListByOwner returns all orders held by owner, newest first.
func (u *OrderUseCase) ListByOwner(ctx context.Context, ownerID int64) ([]model.Order, error) {
	return u.registry.ListByOwner(ctx, ownerID)
}

// Control executes one user-invoked action and returns the updated view.
// Status application goes through the registry's compare-and-set, so a
// control racing the poller resolves to exactly one winner.
func (u *OrderUseCase) Control(ctx context.Context, ownerID int64, orderID string, action model.ControlAction) (*model.Order, error) {
	if _, err := u.Get(ctx, ownerID, orderID); err != nil {
		return nil, err
	}

	var result *fivesim.Order
	var err error
	switch action {
	case model.ControlCheck:
		result, err = u.provider.Check(ctx, orderID)
	case model.ControlFinish:
		result, err = u.provider.Finish(ctx, orderID)
	case model.ControlCancel:
		result, err = u.provider.Cancel(ctx, orderID)
	case model.ControlBan:
		result, err = u.provider.Ban(ctx, orderID)
	default:
		return nil, domainErrors.ErrUnknownAction
	}
	if err != nil {
		return nil, err
	}

	if err := u.ApplyProviderState(ctx, orderID, result); err != nil {
		return nil, err
	}

	order, err := u.registry.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ApplyProviderState folds a provider order payload into the registry:
// messages first, then a compare-and-set status move.
func (u *OrderUseCase) ApplyProviderState(ctx context.Context, orderID string, result *fivesim.Order) error {
	for _, sms := range result.SMS {
		if _, err := u.registry.AppendSMS(ctx, orderID, SMSFromProvider(sms)); err != nil {
			return err
		}
	}

	status, err := StatusFromProvider(result.Status)
	if err != nil {
		u.logger.Warn("provider returned unknown status",
			slog.String("order", orderID),
			slog.String("status", result.Status),
		)
		return nil
	}

	if _, err := u.registry.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	return nil
}

// UpdateStatus applies one compare-and-set status move.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error) {
	return u.registry.UpdateStatus(ctx, orderID, status)
}

// AppendSMS records one received message, deduplicated by its identifier.
func (u *OrderUseCase) AppendSMS(ctx context.Context, orderID string, sms model.SMS) (bool, error) {
	return u.registry.AppendSMS(ctx, orderID, sms)
}

// Lookup returns any order regardless of owner; used by the poller.
func (u *OrderUseCase) Lookup(ctx context.Context, orderID string) (*model.Order, error) {
	return u.registry.Get(ctx, orderID)
}
