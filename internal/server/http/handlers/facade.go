package handlers

import (
	"context"

	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/usecase"
)

// GatewayFacade covers token issuance for the trusted chat gateway.
type GatewayFacade interface {
	VerifyGatewaySecret(secret string) error
	IssueOwnerToken(ownerID int64) (string, error)
	ParseToken(token string) (int64, error)
}

// PurchaseFacade encapsulates the purchase wizard operations.
type PurchaseFacade interface {
	StartPurchase(ctx context.Context, ownerID int64, product, country, operator string) (*usecase.StepResult, error)
	Reply(ctx context.Context, ownerID int64, text string) (*usecase.StepResult, error)
	CancelPurchase(ctx context.Context, ownerID int64) (*usecase.StepResult, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Control(ctx context.Context, ownerID int64, orderID string, action model.ControlAction) (*model.Order, error)
	Order(ctx context.Context, ownerID int64, orderID string) (*model.Order, error)
	Orders(ctx context.Context, ownerID int64) ([]model.Order, error)
}

// CatalogFacade provides product and country lookups.
type CatalogFacade interface {
	Prices(ctx context.Context, product string) ([]model.PriceOption, error)
	Countries(ctx context.Context) ([]model.Country, error)
	Profile(ctx context.Context) (*model.Profile, error)
}

// NotifyFacade exposes the notification stream.
type NotifyFacade interface {
	Subscribe() <-chan model.Notification
	Unsubscribe(ch <-chan model.Notification)
}

// NumberFacade aggregates the full set of operations used across handlers.
type NumberFacade interface {
	GatewayFacade
	PurchaseFacade
	OrderFacade
	CatalogFacade
	NotifyFacade
	Health(ctx context.Context) error
}
