package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/B3hnamR/viranumpro/internal/server/http/dto"
	"github.com/B3hnamR/viranumpro/internal/server/http/middleware"
)

// GatewayHandler issues owner tokens to the trusted chat gateway.
type GatewayHandler struct {
	facade GatewayFacade
}

// NewGatewayHandler constructs GatewayHandler.
func NewGatewayHandler(facade GatewayFacade) *GatewayHandler {
	return &GatewayHandler{facade: facade}
}

// Token handles POST /api/gateway/token.
func (h *GatewayHandler) Token(c *gin.Context) {
	secret := c.GetHeader(middleware.GatewaySecretHeader)
	if secret == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	if err := h.facade.VerifyGatewaySecret(secret); err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OwnerID <= 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.IssueOwnerToken(req.OwnerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
