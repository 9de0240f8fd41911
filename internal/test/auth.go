package test

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	ID      int64
	Err     error
	ParseFn func(string) (int64, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	if s.ID != 0 {
		return s.ID, nil
	}
	return 1, nil
}

// SecretCheckerStub implements the gateway secret contract.
type SecretCheckerStub struct {
	Err error
}

// VerifyGatewaySecret returns the configured result.
func (s SecretCheckerStub) VerifyGatewaySecret(secret string) error {
	return s.Err
}
