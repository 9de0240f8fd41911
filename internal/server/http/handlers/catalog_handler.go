package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves product pricing and provider account endpoints.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// Prices handles GET /api/catalog/prices.
func (h *CatalogHandler) Prices(c *gin.Context) {
	product := strings.TrimSpace(c.Query("product"))
	if product == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	prices, err := h.facade.Prices(c.Request.Context(), product)
	if err != nil {
		c.Status(http.StatusBadGateway)
		return
	}
	if len(prices) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, prices)
}

// Countries handles GET /api/catalog/countries.
func (h *CatalogHandler) Countries(c *gin.Context) {
	countries, err := h.facade.Countries(c.Request.Context())
	if err != nil {
		c.Status(http.StatusBadGateway)
		return
	}

	c.JSON(http.StatusOK, countries)
}

// Profile handles GET /api/profile.
func (h *CatalogHandler) Profile(c *gin.Context) {
	profile, err := h.facade.Profile(c.Request.Context())
	if err != nil {
		c.Status(http.StatusBadGateway)
		return
	}

	c.JSON(http.StatusOK, profile)
}
