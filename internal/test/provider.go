package test

import (
	"context"
	"sync/atomic"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
)

// ProviderStub implements the provider client with function overrides.
type ProviderStub struct {
	BuyActivationFn func(context.Context, string, string, string, fivesim.BuyOptions) (*fivesim.Order, error)
	BuyHostingFn    func(context.Context, string, string, string) (*fivesim.Order, error)
	ReuseFn         func(context.Context, string, string) error
	CheckFn         func(context.Context, string) (*fivesim.Order, error)
	FinishFn        func(context.Context, string) (*fivesim.Order, error)
	CancelFn        func(context.Context, string) (*fivesim.Order, error)
	BanFn           func(context.Context, string) (*fivesim.Order, error)
	GuestPricesFn   func(context.Context, string, string) (map[string]any, error)
	CountriesFn     func(context.Context) (map[string]any, error)
	ProfileFn       func(context.Context) (*fivesim.ProfileInfo, error)

	BuyCalls   atomic.Int64
	CheckCalls atomic.Int64
}

// BuyActivation delegates to override or returns a minimal pending order.
func (s *ProviderStub) BuyActivation(ctx context.Context, country, operator, product string, opts fivesim.BuyOptions) (*fivesim.Order, error) {
	s.BuyCalls.Add(1)
	if s.BuyActivationFn != nil {
		return s.BuyActivationFn(ctx, country, operator, product, opts)
	}
	return &fivesim.Order{ID: 1, Phone: "+79000000000", Status: "PENDING", Country: country, Operator: operator, Product: product}, nil
}

// BuyHosting delegates to override.
func (s *ProviderStub) BuyHosting(ctx context.Context, country, operator, product string) (*fivesim.Order, error) {
	if s.BuyHostingFn != nil {
		return s.BuyHostingFn(ctx, country, operator, product)
	}
	return &fivesim.Order{ID: 2, Status: "PENDING"}, nil
}

// Reuse delegates to override.
func (s *ProviderStub) Reuse(ctx context.Context, product, number string) error {
	if s.ReuseFn != nil {
		return s.ReuseFn(ctx, product, number)
	}
	return nil
}

// Check delegates to override or reports an unchanged pending order.
func (s *ProviderStub) Check(ctx context.Context, orderID string) (*fivesim.Order, error) {
	s.CheckCalls.Add(1)
	if s.CheckFn != nil {
		return s.CheckFn(ctx, orderID)
	}
	return &fivesim.Order{Status: "PENDING"}, nil
}

// Finish delegates to override.
func (s *ProviderStub) Finish(ctx context.Context, orderID string) (*fivesim.Order, error) {
	if s.FinishFn != nil {
		return s.FinishFn(ctx, orderID)
	}
	return &fivesim.Order{Status: "FINISHED"}, nil
}

// Cancel delegates to override.
func (s *ProviderStub) Cancel(ctx context.Context, orderID string) (*fivesim.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID)
	}
	return &fivesim.Order{Status: "CANCELED"}, nil
}

// Ban delegates to override.
func (s *ProviderStub) Ban(ctx context.Context, orderID string) (*fivesim.Order, error) {
	if s.BanFn != nil {
		return s.BanFn(ctx, orderID)
	}
	return &fivesim.Order{Status: "BANNED"}, nil
}

// GuestPrices delegates to override.
func (s *ProviderStub) GuestPrices(ctx context.Context, country, product string) (map[string]any, error) {
	if s.GuestPricesFn != nil {
		return s.GuestPricesFn(ctx, country, product)
	}
	return map[string]any{}, nil
}

// Countries delegates to override.
func (s *ProviderStub) Countries(ctx context.Context) (map[string]any, error) {
	if s.CountriesFn != nil {
		return s.CountriesFn(ctx)
	}
	return map[string]any{}, nil
}

// Profile delegates to override.
func (s *ProviderStub) Profile(ctx context.Context) (*fivesim.ProfileInfo, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx)
	}
	return &fivesim.ProfileInfo{Email: "test@example.com", Balance: 100}, nil
}
