package model

import "time"

// WizardState describes current purchase wizard step.
type WizardState string

const (
	WizardStateProduct    WizardState = "AWAITING_PRODUCT"
	WizardStateCountry    WizardState = "AWAITING_COUNTRY"
	WizardStateOperator   WizardState = "AWAITING_OPERATOR"
	WizardStateMaxPrice   WizardState = "AWAITING_MAX_PRICE"
	WizardStateConfirming WizardState = "CONFIRMING"
	WizardStateCompleted  WizardState = "COMPLETED"
	WizardStateCancelled  WizardState = "CANCELLED"
)

// WizardSession holds one in-progress purchase dialogue. One live session
// per owner; starting a new one discards the old.
type WizardSession struct {
	OwnerID   int64
	State     WizardState
	Product   string
	Country   string
	Operator  string
	MaxPrice  *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OperatorAny is the wildcard accepted for country and operator choices.
const OperatorAny = "any"
