package main

import (
	"path/filepath"
	"testing"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	store, err := NewCSVCredentialStore(filepath.Join(t.TempDir(), "credentials.csv"))
	if err != nil {
		t.Fatalf("NewCSVCredentialStore failed: %v", err)
	}
	return NewAuthService(store)
}

func TestAuthenticateSeedUser(t *testing.T) {
	auth := newTestAuth(t)

	ok, err := auth.Authenticate(seedUsername, seedPassword)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if !ok {
		t.Fatal("seed credentials must authenticate")
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	auth := newTestAuth(t)

	ok, err := auth.Authenticate(seedUsername, "nope")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not authenticate")
	}

	ok, err = auth.Authenticate("ghost", seedPassword)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if ok {
		t.Fatal("unknown user must not authenticate")
	}
}

func TestAuthenticateBlankUsername(t *testing.T) {
	auth := newTestAuth(t)
	if _, err := auth.Authenticate("  ", "x"); !IsValidationError(err) {
		t.Fatalf("expected ValidationError for blank username, got %v", err)
	}
}

func TestRegisterThenAuthenticate(t *testing.T) {
	auth := newTestAuth(t)

	if err := auth.Register("carla", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	ok, err := auth.Authenticate("carla", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if !ok {
		t.Fatal("registered user must authenticate")
	}

	if err := auth.Register("carla", "other"); !IsValidationError(err) {
		t.Fatalf("expected ValidationError for duplicate register, got %v", err)
	}
	if err := auth.Register("dora", ""); !IsValidationError(err) {
		t.Fatalf("expected ValidationError for blank password, got %v", err)
	}
}
