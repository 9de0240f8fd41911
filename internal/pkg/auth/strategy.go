package auth

import "time"

// Strategy issues and verifies owner-scoped transport tokens.
type Strategy interface {
	IssueToken(ownerID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
