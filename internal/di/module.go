package di

import (
	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	"github.com/B3hnamR/viranumpro/internal/app"
	"github.com/B3hnamR/viranumpro/internal/catalog"
	"github.com/B3hnamR/viranumpro/internal/config"
	"github.com/B3hnamR/viranumpro/internal/logger"
	"github.com/B3hnamR/viranumpro/internal/notify"
	"github.com/B3hnamR/viranumpro/internal/pkg/auth"
	"github.com/B3hnamR/viranumpro/internal/server/http/router"
	"github.com/B3hnamR/viranumpro/internal/storage"
	"github.com/B3hnamR/viranumpro/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		storage.Module,
		fivesim.Module,
		catalog.Module,
		usecase.Module,
		notify.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
