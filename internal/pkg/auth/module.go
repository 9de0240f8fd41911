package auth

import (
	"go.uber.org/fx"

	"github.com/B3hnamR/viranumpro/internal/config"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newTokenStrategy),
	fx.Provide(newSecretVerifier),
)

type authParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p authParams) Strategy {
	return NewHMACStrategy(p.Config.TokenSecret, Options{TTL: p.Config.TokenTTL})
}

func newSecretVerifier(p authParams) SecretVerifier {
	return NewBcryptVerifier(p.Config.GatewaySecretHash)
}
