package dto

// StartPurchaseRequest carries pre-supplied wizard parameters.
type StartPurchaseRequest struct {
	Product  string `json:"product"`
	Country  string `json:"country"`
	Operator string `json:"operator"`
}

// ReplyRequest carries one user message for the active wizard session.
type ReplyRequest struct {
	Text string `json:"text"`
}

// WizardResponse describes the wizard's answer to one interaction.
type WizardResponse struct {
	State   string         `json:"state"`
	Prompt  string         `json:"prompt,omitempty"`
	Error   string         `json:"error,omitempty"`
	Warning string         `json:"warning,omitempty"`
	Order   *OrderResponse `json:"order,omitempty"`
}
