package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/server/http/dto"
)

// PurchaseHandler manages purchase wizard endpoints.
type PurchaseHandler struct {
	facade PurchaseFacade
}

// NewPurchaseHandler constructs PurchaseHandler.
func NewPurchaseHandler(facade PurchaseFacade) *PurchaseHandler {
	return &PurchaseHandler{facade: facade}
}

// Start handles POST /api/purchase.
func (h *PurchaseHandler) Start(c *gin.Context) {
	ownerID := CurrentOwnerID(c)

	var req dto.StartPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	step, err := h.facade.StartPurchase(c.Request.Context(), ownerID, req.Product, req.Country, req.Operator)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toWizardResponse(step))
}

// Reply handles POST /api/purchase/reply.
func (h *PurchaseHandler) Reply(c *gin.Context) {
	ownerID := CurrentOwnerID(c)

	var req dto.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	step, err := h.facade.Reply(c.Request.Context(), ownerID, req.Text)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNoActiveSession) {
			c.Status(http.StatusConflict)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toWizardResponse(step))
}

// Cancel handles POST /api/purchase/cancel.
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	ownerID := CurrentOwnerID(c)

	step, err := h.facade.CancelPurchase(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNoActiveSession) {
			c.Status(http.StatusConflict)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toWizardResponse(step))
}
