package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	"github.com/B3hnamR/viranumpro/internal/catalog"
	"github.com/B3hnamR/viranumpro/internal/config"
	"github.com/B3hnamR/viranumpro/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(newWizardUseCase),
	fx.Provide(newOrderUseCase),
)

type wizardParams struct {
	fx.In

	Catalog  catalog.Provider
	Client   fivesim.Client
	Registry repository.OrderRepository
	Enroller Enroller
	Config   *config.Config
	Logger   *slog.Logger
}

func newWizardUseCase(p wizardParams) *WizardUseCase {
	return NewWizardUseCase(p.Catalog, p.Client, p.Registry, p.Enroller, p.Config.WizardIdleTimeout, p.Logger)
}

type orderParams struct {
	fx.In

	Registry repository.OrderRepository
	Client   fivesim.Client
	Logger   *slog.Logger
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Registry, p.Client, p.Logger)
}
