package dto

// TokenRequest asks for an owner-scoped transport token.
type TokenRequest struct {
	OwnerID int64 `json:"owner_id"`
}

// TokenResponse carries the issued token.
type TokenResponse struct {
	Token string `json:"token"`
}
