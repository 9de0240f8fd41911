package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/B3hnamR/viranumpro/internal/domain/model"
	"github.com/B3hnamR/viranumpro/internal/server/http/dto"
	"github.com/B3hnamR/viranumpro/internal/server/http/middleware"
	"github.com/B3hnamR/viranumpro/internal/usecase"
)

// CurrentOwnerID extracts the authenticated owner identifier from context.
func CurrentOwnerID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.OwnerIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:        order.ID,
		Phone:     order.Phone,
		Product:   order.Product,
		Country:   order.Country,
		Operator:  order.Operator,
		Price:     order.Price,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		ExpiresAt: order.ExpiresAt,
	}
	for _, s := range order.SMS {
		resp.SMS = append(resp.SMS, dto.SMSResponse{
			ID:         s.ID,
			Sender:     s.Sender,
			Text:       s.Text,
			Code:       s.Code,
			ReceivedAt: s.ReceivedAt,
		})
	}
	return resp
}

func toWizardResponse(step *usecase.StepResult) dto.WizardResponse {
	resp := dto.WizardResponse{
		State:   string(step.State),
		Prompt:  step.Prompt,
		Error:   step.ErrorHint,
		Warning: step.Warning,
	}
	if step.Order != nil {
		order := toOrderResponse(*step.Order)
		resp.Order = &order
	}
	return resp
}
