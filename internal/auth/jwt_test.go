package auth

import (
	"testing"
	"time"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := NewManager("test-secret-key", time.Hour)

	raw, err := m.GenerateToken(42, "a@x.com", "client")

	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := m.VerifyToken(raw)

	if err != nil {
		t.Fatalf("VerifyToken rejected a fresh token: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("got uid %d, want 42", claims.UserID)
	}

	if claims.Email != "a@x.com" {
		t.Errorf("got email %q, want a@x.com", claims.Email)
	}

	if claims.Role != "client" {
		t.Errorf("got role %q, want client", claims.Role)
	}

	if claims.JTI == "" {
		t.Error("jti should not be empty")
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	m := NewManager("test-secret-key", -time.Minute)

	raw, err := m.GenerateToken(42, "a@x.com", "client")

	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	_, err = m.VerifyToken(raw)

	if err == nil {
		t.Fatal("expired token was accepted")
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	raw, err := issuer.GenerateToken(7, "b@x.com", "admin")

	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	_, err = verifier.VerifyToken(raw)

	if err == nil {
		t.Fatal("token signed with a different secret was accepted")
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret-key", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.VerifyToken(raw); err == nil {
			t.Fatalf("garbage token %q was accepted", raw)
		}
	}
}
