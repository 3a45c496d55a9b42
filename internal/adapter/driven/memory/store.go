// Package memory implements a read-only credential store over a fixed mapping
// supplied at startup.
package memory

import (
	"context"

	"github.com/ericfisherdev/loginpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.Verifier = (*Store)(nil)
	_ driven.Counter  = (*Store)(nil)
)

// DefaultUsers is the mapping used when no seed file is configured.
func DefaultUsers() map[string]string {
	return map[string]string{
		"user1": "password1",
		"user2": "password2",
		"user3": "password3",
	}
}

// Store verifies credentials against an immutable username -> password map.
// It has no register operation.
type Store struct {
	users map[string]string
}

// NewStore copies users so later changes to the caller's map are not observed.
func NewStore(users map[string]string) *Store {
	cp := make(map[string]string, len(users))
	for u, p := range users {
		cp[u] = p
	}
	return &Store{users: cp}
}

// Verify returns true iff username exists and its password matches exactly.
func (s *Store) Verify(_ context.Context, username, password string) (bool, error) {
	stored, ok := s.users[username]
	return ok && stored == password, nil
}

// Count returns the number of seeded credentials.
func (s *Store) Count(_ context.Context) (int, error) {
	return len(s.users), nil
}
