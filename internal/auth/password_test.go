package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret1" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash format: %q", hash)
	}
	if cost, err := bcrypt.Cost([]byte(hash)); err != nil || cost != PasswordCost {
		t.Fatalf("cost = %d, %v; want %d", cost, err, PasswordCost)
	}
	if !VerifyPassword("secret1", hash) {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword("secret2", hash) {
		t.Fatalf("expected wrong password to fail")
	}
	if VerifyPassword("secret1", "") {
		t.Fatalf("empty hash must never verify")
	}
}
