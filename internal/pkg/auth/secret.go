package auth

import "golang.org/x/crypto/bcrypt"

// SecretVerifier checks the shared gateway secret presented by the transport.
type SecretVerifier interface {
	Verify(secret string) error
}

// BcryptVerifier compares secrets against a stored bcrypt hash, so the
// configuration never carries the secret in clear text.
type BcryptVerifier struct {
	hash []byte
}

// NewBcryptVerifier creates a verifier for the given bcrypt hash.
func NewBcryptVerifier(hash string) *BcryptVerifier {
	return &BcryptVerifier{hash: []byte(hash)}
}

// Verify checks the presented secret against the stored hash.
func (v *BcryptVerifier) Verify(secret string) error {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(secret))
}

// HashSecret produces a bcrypt hash suitable for GATEWAY_SECRET_HASH.
func HashSecret(secret string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
