package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
)

// Module wires the notification dispatcher.
var Module = fx.Options(
	fx.Provide(newDispatcher),
	fx.Invoke(registerLifecycle),
)

func newDispatcher(logger *slog.Logger) *Dispatcher {
	return NewDispatcher(logger)
}

func registerLifecycle(lc fx.Lifecycle, dispatcher *Dispatcher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			dispatcher.Close()
			return nil
		},
	})
}
