package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
)

// StatusFromProvider maps a raw provider status onto the lifecycle enumeration.
func StatusFromProvider(raw string) (model.OrderStatus, error) {
	status := model.OrderStatus(raw)
	if !status.Known() {
		return "", domainErrors.ErrUnknownStatus
	}
	return status, nil
}

// SMSFromProvider converts one provider inbox message. Messages without a
// provider identifier get a stable key derived from their content, so
// re-observing the same message stays idempotent.
func SMSFromProvider(sms fivesim.SMS) model.SMS {
	id := strconv.FormatInt(sms.ID, 10)
	if sms.ID == 0 {
		sum := sha256.Sum256([]byte(sms.Text + "|" + sms.Date.UTC().Format(time.RFC3339Nano)))
		id = hex.EncodeToString(sum[:8])
	}
	return model.SMS{
		ID:         id,
		Sender:     sms.Sender,
		Text:       sms.Text,
		Code:       sms.Code,
		ReceivedAt: sms.Date,
	}
}

// OrderFromProvider builds the domain order for a fresh purchase result.
func OrderFromProvider(ownerID int64, product, country string, po *fivesim.Order, now time.Time) *model.Order {
	status, err := StatusFromProvider(po.Status)
	if err != nil {
		status = model.OrderStatusPending
	}
	if country == "" || country == model.OperatorAny {
		if po.Country != "" {
			country = po.Country
		}
	}

	order := &model.Order{
		ID:        strconv.FormatInt(po.ID, 10),
		OwnerID:   ownerID,
		Product:   product,
		Country:   country,
		Operator:  po.Operator,
		Phone:     po.Phone,
		Price:     po.Price,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: po.Expires,
	}
	for _, sms := range po.SMS {
		order.SMS = append(order.SMS, SMSFromProvider(sms))
	}
	return order
}
