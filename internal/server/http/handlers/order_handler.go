package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	ownerID := CurrentOwnerID(c)
	orders, err := h.facade.Orders(c.Request.Context(), ownerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	ownerID := CurrentOwnerID(c)
	order, err := h.facade.Order(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Control handles POST /api/orders/:id/:action.
func (h *OrderHandler) Control(c *gin.Context) {
	ownerID := CurrentOwnerID(c)

	action, ok := model.ParseControlAction(c.Param("action"))
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Control(c.Request.Context(), ownerID, c.Param("id"), action)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusBadGateway)
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}
