package model

import "time"

// OrderStatus describes number activation lifecycle as reported by the provider.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusReceived OrderStatus = "RECEIVED"
	OrderStatusCanceled OrderStatus = "CANCELED"
	OrderStatusTimeout  OrderStatus = "TIMEOUT"
	OrderStatusFinished OrderStatus = "FINISHED"
	OrderStatusBanned   OrderStatus = "BANNED"
)

// transitions lists allowed predecessors for every reachable status.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusReceived: {OrderStatusPending},
	OrderStatusCanceled: {OrderStatusPending},
	OrderStatusTimeout:  {OrderStatusPending},
	OrderStatusFinished: {OrderStatusPending, OrderStatusReceived},
	OrderStatusBanned:   {OrderStatusPending, OrderStatusReceived},
}

// Terminal reports whether no further transitions are accepted from status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCanceled, OrderStatusTimeout, OrderStatusFinished, OrderStatusBanned:
		return true
	}
	return false
}

// Known reports whether status is part of the lifecycle enumeration.
func (s OrderStatus) Known() bool {
	switch s {
	case OrderStatusPending, OrderStatusReceived, OrderStatusCanceled,
		OrderStatusTimeout, OrderStatusFinished, OrderStatusBanned:
		return true
	}
	return false
}

// CanTransition reports whether moving from one status to another is allowed.
// Same-status moves are not transitions and return false.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range transitions[to] {
		if allowed == from {
			return true
		}
	}
	return false
}

// Predecessors returns statuses from which a transition to the given status
// is allowed. Used by registries that express the compare-and-set in a query.
func Predecessors(to OrderStatus) []OrderStatus {
	allowed := transitions[to]
	result := make([]OrderStatus, len(allowed))
	copy(result, allowed)
	return result
}

// SMS describes a single received message on an activation number.
// ID is the stable per-message identifier used for deduplication.
type SMS struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender"`
	Text       string    `json:"text"`
	Code       string    `json:"code"`
	ReceivedAt time.Time `json:"received_at"`
}

// Order describes one purchased virtual number and its lifecycle state.
// ID, OwnerID, Phone and the purchase parameters are immutable once set;
// only Status and SMS mutate, and only through the registry.
type Order struct {
	ID        string      `json:"id"`
	OwnerID   int64       `json:"owner_id"`
	Product   string      `json:"product"`
	Country   string      `json:"country"`
	Operator  string      `json:"operator"`
	Phone     string      `json:"phone"`
	Price     float64     `json:"price"`
	Status    OrderStatus `json:"status"`
	SMS       []SMS       `json:"sms"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// ControlAction enumerates user-invoked order controls.
type ControlAction string

const (
	ControlCheck  ControlAction = "check"
	ControlFinish ControlAction = "finish"
	ControlCancel ControlAction = "cancel"
	ControlBan    ControlAction = "ban"
)

// ParseControlAction validates raw action name from transport.
func ParseControlAction(raw string) (ControlAction, bool) {
	switch ControlAction(raw) {
	case ControlCheck, ControlFinish, ControlCancel, ControlBan:
		return ControlAction(raw), true
	}
	return "", false
}
