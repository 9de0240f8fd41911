package app

import (
	"context"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	"github.com/B3hnamR/viranumpro/internal/catalog"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/domain/repository"
	"github.com/B3hnamR/viranumpro/internal/notify"
	pkgAuth "github.com/B3hnamR/viranumpro/internal/pkg/auth"
	"github.com/B3hnamR/viranumpro/internal/usecase"
)

// NumberFacade aggregates the operations exposed to the transport layer.
type NumberFacade struct {
	wizard     *usecase.WizardUseCase
	orders     *usecase.OrderUseCase
	catalog    catalog.Provider
	provider   fivesim.Client
	dispatcher *notify.Dispatcher
	registry   repository.OrderRepository
	tokens     pkgAuth.Strategy
	gateway    pkgAuth.SecretVerifier
}

// NewNumberFacade constructs the facade.
func NewNumberFacade(
	wizard *usecase.WizardUseCase,
	orders *usecase.OrderUseCase,
	cat catalog.Provider,
	provider fivesim.Client,
	dispatcher *notify.Dispatcher,
	registry repository.OrderRepository,
	tokens pkgAuth.Strategy,
	gateway pkgAuth.SecretVerifier,
) *NumberFacade {
	return &NumberFacade{
		wizard:     wizard,
		orders:     orders,
		catalog:    cat,
		provider:   provider,
		dispatcher: dispatcher,
		registry:   registry,
		tokens:     tokens,
		gateway:    gateway,
	}
}

func (f *NumberFacade) VerifyGatewaySecret(secret string) error {
	return f.gateway.Verify(secret)
}

func (f *NumberFacade) IssueOwnerToken(ownerID int64) (string, error) {
	return f.tokens.IssueToken(ownerID)
}

func (f *NumberFacade) ParseToken(token string) (int64, error) {
	return f.tokens.ParseToken(token)
}

func (f *NumberFacade) StartPurchase(ctx context.Context, ownerID int64, product, country, operator string) (*usecase.StepResult, error) {
	return f.wizard.Start(ctx, ownerID, product, country, operator)
}

func (f *NumberFacade) Reply(ctx context.Context, ownerID int64, text string) (*usecase.StepResult, error) {
	return f.wizard.Reply(ctx, ownerID, text)
}

func (f *NumberFacade) CancelPurchase(ctx context.Context, ownerID int64) (*usecase.StepResult, error) {
	return f.wizard.Cancel(ctx, ownerID)
}

func (f *NumberFacade) Control(ctx context.Context, ownerID int64, orderID string, action model.ControlAction) (*model.Order, error) {
	return f.orders.Control(ctx, ownerID, orderID, action)
}

func (f *NumberFacade) Order(ctx context.Context, ownerID int64, orderID string) (*model.Order, error) {
	return f.orders.Get(ctx, ownerID, orderID)
}

func (f *NumberFacade) Orders(ctx context.Context, ownerID int64) ([]model.Order, error) {
	return f.orders.ListByOwner(ctx, ownerID)
}

func (f *NumberFacade) Prices(ctx context.Context, product string) ([]model.PriceOption, error) {
	return f.catalog.Prices(ctx, product)
}

func (f *NumberFacade) Countries(ctx context.Context) ([]model.Country, error) {
	return f.catalog.Countries(ctx)
}

func (f *NumberFacade) Profile(ctx context.Context) (*model.Profile, error) {
	info, err := f.provider.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Profile{
		Email:   info.Email,
		Vendor:  info.Vendor,
		Balance: info.Balance,
		Rating:  info.Rating,
	}, nil
}

func (f *NumberFacade) Subscribe() <-chan model.Notification {
	return f.dispatcher.Subscribe()
}

func (f *NumberFacade) Unsubscribe(ch <-chan model.Notification) {
	f.dispatcher.Unsubscribe(ch)
}

// Health pings the registry when the active implementation supports it.
func (f *NumberFacade) Health(ctx context.Context) error {
	if checker, ok := f.registry.(interface{ HealthCheck(context.Context) error }); ok {
		return checker.HealthCheck(ctx)
	}
	return nil
}
