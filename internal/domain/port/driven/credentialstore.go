// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/loginpanel/internal/domain/model"
)

// Sentinel errors returned by credential store implementations.
var (
	// ErrInvalidInput indicates an empty username or password.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateUsername indicates the username is already registered.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrUnsupported indicates the active backend lacks the requested operation.
	ErrUnsupported = errors.New("operation not supported by backend")
)

// Verifier checks a username/password pair. A mismatch is (false, nil), not an error.
type Verifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

// Registrar persists a new credential. Implementations decide whether a
// duplicate username is rejected (ErrDuplicateUsername) or appended.
type Registrar interface {
	Register(ctx context.Context, cred model.Credential) error
}

// Counter reports how many credentials a backend holds.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// CredentialStore is a backend that supports both verification and registration.
type CredentialStore interface {
	Verifier
	Registrar
	Counter
}
