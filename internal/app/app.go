package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	"github.com/B3hnamR/viranumpro/internal/config"
	"github.com/B3hnamR/viranumpro/internal/notify"
	"github.com/B3hnamR/viranumpro/internal/server/http/handlers"
	"github.com/B3hnamR/viranumpro/internal/usecase"
	"github.com/B3hnamR/viranumpro/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewNumberFacade,
		newHTTPServer,
		newPoller,
		func(orders *usecase.OrderUseCase) worker.OrderTracker { return orders },
		func(client fivesim.Client) worker.CheckProvider { return client },
		func(dispatcher *notify.Dispatcher) worker.Notifier { return dispatcher },
		func(poller *worker.Poller) usecase.Enroller { return poller },
		func(facade *NumberFacade) handlers.NumberFacade { return facade },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type pollerParams struct {
	fx.In

	Tracker  worker.OrderTracker
	Checker  worker.CheckProvider
	Notifier worker.Notifier
	Config   *config.Config
	Logger   *slog.Logger
}

func newPoller(p pollerParams) *worker.Poller {
	return worker.NewPoller(p.Tracker, p.Checker, p.Notifier, worker.Config{
		Floor:        p.Config.PollFloor,
		Ceiling:      p.Config.PollCeiling,
		MinTick:      p.Config.PollMinTick,
		FailureLimit: p.Config.PollFailureLimit,
	}, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Ctx        context.Context
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Poller     *worker.Poller
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting viranumpro", slog.String("addr", p.Server.Addr))
			p.Poller.Start(p.Ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Poller.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("viranumpro stopped")
			return nil
		},
	})
}
