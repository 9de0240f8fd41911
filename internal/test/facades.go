package test

import (
	"context"
	"errors"
	"sync"

	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/usecase"
)

// FacadeStub provides controllable behaviour for the HTTP handlers.
type FacadeStub struct {
	mu sync.Mutex

	GatewaySecret string
	Token         string
	OwnerID       int64
	TokenErr      error

	StartFn     func(context.Context, int64, string, string, string) (*usecase.StepResult, error)
	ReplyFn     func(context.Context, int64, string) (*usecase.StepResult, error)
	CancelFn    func(context.Context, int64) (*usecase.StepResult, error)
	ControlFn   func(context.Context, int64, string, model.ControlAction) (*model.Order, error)
	OrderFn     func(context.Context, int64, string) (*model.Order, error)
	OrdersFn    func(context.Context, int64) ([]model.Order, error)
	PricesFn    func(context.Context, string) ([]model.PriceOption, error)
	CountriesFn func(context.Context) ([]model.Country, error)
	ProfileFn   func(context.Context) (*model.Profile, error)
	HealthFn    func(context.Context) error

	Notifications chan model.Notification
	Unsubscribed  int
}

// VerifyGatewaySecret accepts the configured secret.
func (s *FacadeStub) VerifyGatewaySecret(secret string) error {
	if s.GatewaySecret == "" || secret == s.GatewaySecret {
		return nil
	}
	return errors.New("wrong secret")
}

// IssueOwnerToken returns the configured token.
func (s *FacadeStub) IssueOwnerToken(ownerID int64) (string, error) {
	if s.TokenErr != nil {
		return "", s.TokenErr
	}
	if s.Token != "" {
		return s.Token, nil
	}
	return "token", nil
}

// ParseToken returns the configured owner.
func (s *FacadeStub) ParseToken(token string) (int64, error) {
	if s.TokenErr != nil {
		return 0, s.TokenErr
	}
	if s.OwnerID != 0 {
		return s.OwnerID, nil
	}
	return 1, nil
}

// StartPurchase delegates to override.
func (s *FacadeStub) StartPurchase(ctx context.Context, ownerID int64, product, country, operator string) (*usecase.StepResult, error) {
	if s.StartFn != nil {
		return s.StartFn(ctx, ownerID, product, country, operator)
	}
	return &usecase.StepResult{State: model.WizardStateProduct, Prompt: "Enter product name (e.g., telegram):"}, nil
}

// Reply delegates to override.
func (s *FacadeStub) Reply(ctx context.Context, ownerID int64, text string) (*usecase.StepResult, error) {
	if s.ReplyFn != nil {
		return s.ReplyFn(ctx, ownerID, text)
	}
	return &usecase.StepResult{State: model.WizardStateCountry}, nil
}

// CancelPurchase delegates to override.
func (s *FacadeStub) CancelPurchase(ctx context.Context, ownerID int64) (*usecase.StepResult, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, ownerID)
	}
	return &usecase.StepResult{State: model.WizardStateCancelled}, nil
}

// Control delegates to override.
func (s *FacadeStub) Control(ctx context.Context, ownerID int64, orderID string, action model.ControlAction) (*model.Order, error) {
	if s.ControlFn != nil {
		return s.ControlFn(ctx, ownerID, orderID, action)
	}
	return &model.Order{ID: orderID, OwnerID: ownerID, Status: model.OrderStatusFinished}, nil
}

// Order delegates to override.
func (s *FacadeStub) Order(ctx context.Context, ownerID int64, orderID string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, ownerID, orderID)
	}
	return &model.Order{ID: orderID, OwnerID: ownerID, Status: model.OrderStatusPending}, nil
}

// Orders delegates to override.
func (s *FacadeStub) Orders(ctx context.Context, ownerID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, ownerID)
	}
	return []model.Order{{ID: "1", OwnerID: ownerID}}, nil
}

// Prices delegates to override.
func (s *FacadeStub) Prices(ctx context.Context, product string) ([]model.PriceOption, error) {
	if s.PricesFn != nil {
		return s.PricesFn(ctx, product)
	}
	return []model.PriceOption{{Country: "russia", Operator: "any", Cost: 10, Count: 5}}, nil
}

// Countries delegates to override.
func (s *FacadeStub) Countries(ctx context.Context) ([]model.Country, error) {
	if s.CountriesFn != nil {
		return s.CountriesFn(ctx)
	}
	return []model.Country{{Key: "russia", Name: "Russia", Operators: 2}}, nil
}

// Profile delegates to override.
func (s *FacadeStub) Profile(ctx context.Context) (*model.Profile, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx)
	}
	return &model.Profile{Email: "owner@example.com", Balance: 42}, nil
}

// Subscribe returns the configured notification channel.
func (s *FacadeStub) Subscribe() <-chan model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Notifications == nil {
		s.Notifications = make(chan model.Notification, 16)
	}
	return s.Notifications
}

// Unsubscribe counts detach calls and closes the channel.
func (s *FacadeStub) Unsubscribe(ch <-chan model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unsubscribed++
	if s.Notifications != nil {
		close(s.Notifications)
		s.Notifications = nil
	}
}

// Health delegates to override.
func (s *FacadeStub) Health(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
