package catalog

import (
	"go.uber.org/fx"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	"github.com/B3hnamR/viranumpro/internal/config"
)

// Module wires the catalog cache and binds it as the wizard's catalog view.
var Module = fx.Options(
	fx.Provide(newCatalog),
	fx.Provide(func(c *Catalog) Provider { return c }),
)

type catalogParams struct {
	fx.In

	Client fivesim.Client
	Config *config.Config
}

func newCatalog(p catalogParams) *Catalog {
	return New(p.Client, p.Config.PricesTTL, p.Config.CountriesTTL)
}
