package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/loginpanel/internal/domain/model"
	"github.com/ericfisherdev/loginpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/loginpanel/internal/telemetry"
)

// AccountService exposes sign-in and registration over whichever operations
// the active backend supports. It depends only on port interfaces.
type AccountService struct {
	backend   model.Backend
	verifier  driven.Verifier
	registrar driven.Registrar
	counter   driven.Counter
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// Backend bundles the capabilities of one credential store. Verifier or
// Registrar may be nil when the backend lacks that operation.
type Backend struct {
	Name      model.Backend
	Verifier  driven.Verifier
	Registrar driven.Registrar
	Counter   driven.Counter
}

// NewAccountService creates an AccountService. metrics may be nil.
func NewAccountService(b Backend, metrics *telemetry.Metrics, logger *slog.Logger) *AccountService {
	return &AccountService{
		backend:   b.Name,
		verifier:  b.Verifier,
		registrar: b.Registrar,
		counter:   b.Counter,
		metrics:   metrics,
		logger:    logger,
	}
}

// Backend returns the name of the active backend.
func (s *AccountService) Backend() model.Backend { return s.backend }

// CanSignIn reports whether the backend can verify credentials.
func (s *AccountService) CanSignIn() bool { return s.verifier != nil }

// CanRegister reports whether the backend can register credentials.
func (s *AccountService) CanRegister() bool { return s.registrar != nil }

// SignIn verifies a credential. A mismatch is (false, nil).
func (s *AccountService) SignIn(ctx context.Context, username, password string) (bool, error) {
	if s.verifier == nil {
		s.metrics.RecordSignIn(s.backend.String(), telemetry.ResultUnsupported)
		return false, driven.ErrUnsupported
	}

	ok, err := s.verifier.Verify(ctx, username, password)
	switch {
	case err != nil:
		s.metrics.RecordSignIn(s.backend.String(), telemetry.ResultError)
		return false, err
	case ok:
		s.metrics.RecordSignIn(s.backend.String(), telemetry.ResultSuccess)
		s.logger.Info("sign-in succeeded", "backend", s.backend, "username", username)
	default:
		s.metrics.RecordSignIn(s.backend.String(), telemetry.ResultFailure)
		s.logger.Info("sign-in rejected", "backend", s.backend, "username", username)
	}
	return ok, nil
}

// Register stores a new credential. Errors from the backend are returned
// unchanged so callers can match ErrInvalidInput and ErrDuplicateUsername.
func (s *AccountService) Register(ctx context.Context, username, password string) error {
	if s.registrar == nil {
		s.metrics.RecordRegistration(s.backend.String(), telemetry.ResultUnsupported)
		return driven.ErrUnsupported
	}

	err := s.registrar.Register(ctx, model.Credential{Username: username, Password: password})
	s.metrics.RecordRegistration(s.backend.String(), registrationResult(err))
	if err == nil {
		s.logger.Info("user registered", "backend", s.backend, "username", username)
	}
	return err
}

// CredentialCount returns how many credentials the backend holds, or
// ErrUnsupported when it cannot count.
func (s *AccountService) CredentialCount(ctx context.Context) (int, error) {
	if s.counter == nil {
		return 0, driven.ErrUnsupported
	}
	return s.counter.Count(ctx)
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return telemetry.ResultSuccess
	case errors.Is(err, driven.ErrInvalidInput):
		return telemetry.ResultInvalid
	case errors.Is(err, driven.ErrDuplicateUsername):
		return telemetry.ResultDuplicate
	default:
		return telemetry.ResultError
	}
}
