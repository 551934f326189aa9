// Package auth provides account registration, credential verification, and
// token-based session handling for the API.
package auth

import (
	"context"

	"github.com/budgetly/budgetly/internal/models"
)

// Authenticator abstracts the credential scheme so the API layer does not
// care whether accounts are backed by passwords or something else.
type Authenticator interface {
	// Register creates an account. The credential's meaning depends on the
	// implementation; for passwords it is the plaintext password.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the account.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the scheme's
	// requirements without touching storage.
	ValidateCredential(credential string) error
}
