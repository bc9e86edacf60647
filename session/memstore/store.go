package memstore

import (
	"fmt"
	"sync"

	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/session"
)

var _ session.Store = (*Store)(nil)

// Store is an in-memory session.Store. Nothing survives a restart.
type Store struct {
	mu     sync.RWMutex
	values map[session.Key]string
}

func New() *Store {
	return &Store{
		values: make(map[session.Key]string),
	}
}

func (s *Store) Get(key session.Key) (string, bool, error) {
	if !session.ValidKey(key) {
		return "", false, fmt.Errorf("%w: %q", apperrors.ErrInvalidKey, key)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *Store) Set(key session.Key, value string) error {
	if !session.ValidKey(key) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key session.Key) error {
	if !session.ValidKey(key) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
