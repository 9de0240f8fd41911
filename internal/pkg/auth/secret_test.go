package auth

import "testing"

func TestBcryptVerifier(t *testing.T) {
	hash, err := HashSecret("gateway-secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verifier := NewBcryptVerifier(hash)
	if err := verifier.Verify("gateway-secret"); err != nil {
		t.Fatalf("expected matching secret to verify: %v", err)
	}
	if err := verifier.Verify("wrong"); err == nil {
		t.Fatal("expected mismatch to fail")
	}
}
