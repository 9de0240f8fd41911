package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NotifyHandler streams order notifications to the chat gateway.
type NotifyHandler struct {
	facade NotifyFacade
}

// NewNotifyHandler constructs NotifyHandler.
func NewNotifyHandler(facade NotifyFacade) *NotifyHandler {
	return &NotifyHandler{facade: facade}
}

// Stream handles GET /api/notifications/stream as server-sent events.
func (h *NotifyHandler) Stream(c *gin.Context) {
	ch := h.facade.Subscribe()
	defer h.facade.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("notification", n)
			c.Writer.Flush()
		}
	}
}
