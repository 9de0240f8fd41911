package test

import (
	"context"

	"github.com/B3hnamR/viranumpro/internal/domain/model"
)

// CatalogStub implements catalog lookups with function overrides. By default
// everything is valid, which keeps wizard tests focused on flow.
type CatalogStub struct {
	PricesFn        func(context.Context, string) ([]model.PriceOption, error)
	CountriesFn     func(context.Context) ([]model.Country, error)
	ValidProductFn  func(context.Context, string) (bool, error)
	ValidCountryFn  func(context.Context, string) (bool, error)
	ValidOperatorFn func(context.Context, string, string, string) (bool, error)
}

// Prices delegates to override.
func (s *CatalogStub) Prices(ctx context.Context, product string) ([]model.PriceOption, error) {
	if s.PricesFn != nil {
		return s.PricesFn(ctx, product)
	}
	return []model.PriceOption{{Country: "russia", Operator: "any", Cost: 10}}, nil
}

// Countries delegates to override.
func (s *CatalogStub) Countries(ctx context.Context) ([]model.Country, error) {
	if s.CountriesFn != nil {
		return s.CountriesFn(ctx)
	}
	return []model.Country{{Key: "russia"}}, nil
}

// ValidProduct delegates to override or accepts everything.
func (s *CatalogStub) ValidProduct(ctx context.Context, product string) (bool, error) {
	if s.ValidProductFn != nil {
		return s.ValidProductFn(ctx, product)
	}
	return true, nil
}

// ValidCountry delegates to override or accepts everything.
func (s *CatalogStub) ValidCountry(ctx context.Context, country string) (bool, error) {
	if s.ValidCountryFn != nil {
		return s.ValidCountryFn(ctx, country)
	}
	return true, nil
}

// ValidOperator delegates to override or accepts everything.
func (s *CatalogStub) ValidOperator(ctx context.Context, product, country, operator string) (bool, error) {
	if s.ValidOperatorFn != nil {
		return s.ValidOperatorFn(ctx, product, country, operator)
	}
	return true, nil
}
