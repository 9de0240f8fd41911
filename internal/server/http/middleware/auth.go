package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/B3hnamR/viranumpro/internal/pkg/auth"
)

const (
	// OwnerIDContextKey is a gin context key for the authenticated owner identifier.
	OwnerIDContextKey = "ownerID"

	// GatewaySecretHeader carries the shared secret of the chat gateway.
	GatewaySecretHeader = "X-Gateway-Secret"
)

// TokenParser resolves a bearer token into an owner identifier.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// SecretChecker validates the gateway shared secret.
type SecretChecker interface {
	VerifyGatewaySecret(secret string) error
}

// AuthRequired ensures the request carries a valid owner token.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ownerID, err := parser.ParseToken(token)
		if err != nil {
			if err == pkgAuth.ErrInvalidToken {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(OwnerIDContextKey, ownerID)
		c.Next()
	}
}

// GatewayRequired ensures the request comes from the trusted chat gateway.
func GatewayRequired(checker SecretChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader(GatewaySecretHeader)
		if secret == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if err := checker.VerifyGatewaySecret(secret); err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
