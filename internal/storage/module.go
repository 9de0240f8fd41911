package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/B3hnamR/viranumpro/internal/config"
	"github.com/B3hnamR/viranumpro/internal/domain/repository"
	"github.com/B3hnamR/viranumpro/internal/storage/memory"
	"github.com/B3hnamR/viranumpro/internal/storage/postgres"
)

// Module wires the order registry: volatile by default, PostgreSQL-backed
// when a database URI is configured.
var Module = fx.Provide(newRegistry)

type registryParams struct {
	fx.In

	Ctx       context.Context
	Config    *config.Config
	Logger    *slog.Logger
	Lifecycle fx.Lifecycle
}

func newRegistry(p registryParams) (repository.OrderRepository, error) {
	if p.Config.DatabaseURI == "" {
		p.Logger.Info("order registry is volatile, orders will not survive restarts")
		return memory.NewRegistry(p.Logger), nil
	}

	durable, err := postgres.New(p.Ctx, p.Config.DatabaseURI, p.Logger)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			durable.Close()
			return nil
		},
	})

	return durable, nil
}
