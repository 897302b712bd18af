package out

import (
	"context"
	"sync"

	authout "mindboost/internal/modules/auth/port/out"
	apperrors "mindboost/internal/platform/errors"
)

// MemoryCredentialStore lives as long as the process.
type MemoryCredentialStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{entries: map[string]string{}}
}

var _ authout.CredentialStore = (*MemoryCredentialStore)(nil)

func (s *MemoryCredentialStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if !ok || v == "" {
		return "", apperrors.ErrNoCredential
	}
	return v, nil
}

func (s *MemoryCredentialStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryCredentialStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
