package model

import "time"

// NotificationKind distinguishes event classes emitted by the dispatcher.
type NotificationKind string

const (
	NotificationStatus   NotificationKind = "status"
	NotificationCode     NotificationKind = "code"
	NotificationDegraded NotificationKind = "degraded"
)

// Notification is an outbound event describing an observed order transition.
// Delivery is at-least-once; consumers may use ID for their own dedup.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	OwnerID   int64            `json:"owner_id"`
	OrderID   string           `json:"order_id"`
	OldStatus OrderStatus      `json:"old_status,omitempty"`
	NewStatus OrderStatus      `json:"new_status,omitempty"`
	Codes     []SMS            `json:"codes,omitempty"`
	Text      string           `json:"text"`
	Controls  []ControlAction  `json:"controls,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
