package application_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/loginpanel/internal/application"
	"github.com/ericfisherdev/loginpanel/internal/domain/model"
	"github.com/ericfisherdev/loginpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/loginpanel/internal/telemetry"
)

// --- Mock implementations ---

type mockVerifier struct {
	ok  bool
	err error
	got [2]string
}

func (m *mockVerifier) Verify(_ context.Context, username, password string) (bool, error) {
	m.got = [2]string{username, password}
	return m.ok, m.err
}

type mockRegistrar struct {
	err   error
	creds []model.Credential
}

func (m *mockRegistrar) Register(_ context.Context, cred model.Credential) error {
	if m.err != nil {
		return m.err
	}
	m.creds = append(m.creds, cred)
	return nil
}

type mockCounter struct{ n int }

func (m *mockCounter) Count(_ context.Context) (int, error) { return m.n, nil }

func newService(b application.Backend) *application.AccountService {
	return application.NewAccountService(b, telemetry.NewMetrics(), slog.Default())
}

func TestAccountService_Capabilities(t *testing.T) {
	memory := newService(application.Backend{Name: model.BackendMemory, Verifier: &mockVerifier{}})
	assert.True(t, memory.CanSignIn())
	assert.False(t, memory.CanRegister())

	file := newService(application.Backend{Name: model.BackendFile, Registrar: &mockRegistrar{}})
	assert.False(t, file.CanSignIn())
	assert.True(t, file.CanRegister())
	assert.Equal(t, model.BackendFile, file.Backend())
}

func TestAccountService_SignIn(t *testing.T) {
	v := &mockVerifier{ok: true}
	svc := newService(application.Backend{Name: model.BackendMemory, Verifier: v})

	ok, err := svc.SignIn(context.Background(), "user1", "password1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, [2]string{"user1", "password1"}, v.got)
}

func TestAccountService_SignInMismatch(t *testing.T) {
	svc := newService(application.Backend{Name: model.BackendMemory, Verifier: &mockVerifier{}})

	ok, err := svc.SignIn(context.Background(), "user1", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountService_SignInError(t *testing.T) {
	svc := newService(application.Backend{
		Name:     model.BackendDocument,
		Verifier: &mockVerifier{err: errors.New("connection refused")},
	})

	_, err := svc.SignIn(context.Background(), "bob", "pw")
	require.Error(t, err)
}

func TestAccountService_SignInUnsupported(t *testing.T) {
	svc := newService(application.Backend{Name: model.BackendFile, Registrar: &mockRegistrar{}})

	_, err := svc.SignIn(context.Background(), "bob", "pw")
	require.ErrorIs(t, err, driven.ErrUnsupported)
}

func TestAccountService_Register(t *testing.T) {
	r := &mockRegistrar{}
	svc := newService(application.Backend{Name: model.BackendFile, Registrar: r})

	require.NoError(t, svc.Register(context.Background(), "alice", "secret"))
	assert.Equal(t, []model.Credential{{Username: "alice", Password: "secret"}}, r.creds)
}

func TestAccountService_RegisterPassesSentinelsThrough(t *testing.T) {
	for _, sentinel := range []error{driven.ErrInvalidInput, driven.ErrDuplicateUsername} {
		svc := newService(application.Backend{
			Name:      model.BackendSQLite,
			Registrar: &mockRegistrar{err: sentinel},
		})

		err := svc.Register(context.Background(), "bob", "pw")
		assert.ErrorIs(t, err, sentinel)
	}
}

func TestAccountService_RegisterUnsupported(t *testing.T) {
	svc := newService(application.Backend{Name: model.BackendMemory, Verifier: &mockVerifier{}})

	err := svc.Register(context.Background(), "bob", "pw")
	require.ErrorIs(t, err, driven.ErrUnsupported)
}

func TestAccountService_CredentialCount(t *testing.T) {
	svc := newService(application.Backend{Name: model.BackendMemory, Counter: &mockCounter{n: 3}})

	n, err := svc.CredentialCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = newService(application.Backend{Name: model.BackendMemory}).CredentialCount(context.Background())
	assert.ErrorIs(t, err, driven.ErrUnsupported)
}

func TestAccountService_NilMetrics(t *testing.T) {
	svc := application.NewAccountService(
		application.Backend{Name: model.BackendMemory, Verifier: &mockVerifier{ok: true}},
		nil,
		slog.Default(),
	)

	assert.NotPanics(t, func() {
		_, _ = svc.SignIn(context.Background(), "a", "b")
		_ = svc.Register(context.Background(), "a", "b")
	})
}
