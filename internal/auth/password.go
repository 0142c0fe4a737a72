package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrEmptySecret        = errors.New("admin password must not be empty")
)

// AdminSubject is the subject of every token issued by SecretAuthenticator.
const AdminSubject = "admin"

// SecretAuthenticator checks a single shared admin password.
// Only a bcrypt hash of the password is kept in memory.
type SecretAuthenticator struct {
	hash []byte
}

// NewSecretAuthenticator hashes secret with bcrypt.
func NewSecretAuthenticator(secret string) (*SecretAuthenticator, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &SecretAuthenticator{hash: hash}, nil
}

// Authenticate compares credential against the stored hash.
func (a *SecretAuthenticator) Authenticate(ctx context.Context, credential string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return "", ErrInvalidCredentials
	}
	return AdminSubject, nil
}
