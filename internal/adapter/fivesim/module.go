package fivesim

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/B3hnamR/viranumpro/internal/config"
)

// Module exposes provider client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.ProviderAddress, p.Config.ProviderToken, p.Logger)
}
