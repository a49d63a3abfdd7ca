package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestLocalStrategyVerify_ByUsernameAndEmail(t *testing.T) {
	repo := newMockUserRepo()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	svc := NewUserService(zap.NewNop(), repo, hasher)
	strategy := NewLocalStrategy(zap.NewNop(), repo, hasher)

	if _, err := svc.Signup(context.Background(), testSignupInput()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	for _, identity := range []string{"joeoliver", "JoeOliver", " Joe.Oliver@example.com "} {
		user, err := strategy.Verify(context.Background(), identity, "TodayIsA@GoodDay")
		if err != nil {
			t.Fatalf("verify %q: %v", identity, err)
		}
		if user.Username != "joeoliver" {
			t.Fatalf("unexpected user: %q", user.Username)
		}
	}
	waitForLogins(t, repo, "joeoliver", 3)
}

func TestLocalStrategyVerify_UniformFailure(t *testing.T) {
	repo := newMockUserRepo()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	svc := NewUserService(zap.NewNop(), repo, hasher)
	strategy := NewLocalStrategy(zap.NewNop(), repo, hasher)

	if _, err := svc.Signup(context.Background(), testSignupInput()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Usuario inexistente y password incorrecto devuelven el mismo error.
	_, unknownErr := strategy.Verify(context.Background(), "nobody", "whatever1")
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", unknownErr)
	}
	_, wrongErr := strategy.Verify(context.Background(), "joeoliver", "wrong-password")
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure reasons differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLocalStrategyVerify_EmptyInput(t *testing.T) {
	repo := newMockUserRepo()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	strategy := NewLocalStrategy(zap.NewNop(), repo, hasher)

	if _, err := strategy.Verify(context.Background(), "", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := strategy.Verify(context.Background(), "joeoliver", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLocalStrategyVerify_NeverReturnsHash(t *testing.T) {
	repo := newMockUserRepo()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	svc := NewUserService(zap.NewNop(), repo, hasher)
	strategy := NewLocalStrategy(zap.NewNop(), repo, hasher)

	if _, err := svc.Signup(context.Background(), testSignupInput()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, err := strategy.Verify(context.Background(), "joeoliver", "TodayIsA@GoodDay")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID == "" || user.Firstname != "Joe" || user.Lastname != "Oliver" {
		t.Fatalf("expected resolved identity, got %+v", user)
	}
	if user.PasswordHash != "" {
		t.Fatalf("resolved identity carries the password hash")
	}
}
