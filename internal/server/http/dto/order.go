package dto

import "time"

// SMSResponse is one received message on an order.
type SMSResponse struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender,omitempty"`
	Text       string    `json:"text,omitempty"`
	Code       string    `json:"code,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// OrderResponse is the transport view of one order.
type OrderResponse struct {
	ID        string        `json:"id"`
	Phone     string        `json:"phone"`
	Product   string        `json:"product"`
	Country   string        `json:"country"`
	Operator  string        `json:"operator"`
	Price     float64       `json:"price"`
	Status    string        `json:"status"`
	SMS       []SMSResponse `json:"sms,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}
