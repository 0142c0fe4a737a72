package auth

import "context"

// Authenticator defines the interface for admin authentication implementations.
// This abstraction allows swapping the shared-secret check for another method
// without changing the service layer code.
type Authenticator interface {
	// Authenticate verifies the credential and returns the authenticated subject.
	// Returns ErrInvalidCredentials if authentication fails.
	Authenticate(ctx context.Context, credential string) (string, error)
}
