package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/session"
)

var _ session.Store = (*Store)(nil)

// Store keeps the session in a single JSON file. The whole document is
// rewritten on each mutation through a temporary file and a rename, so a
// crash never leaves a half written session behind.
type Store struct {
	path   string
	mu     sync.RWMutex
	values map[session.Key]string
}

// Open loads the session file at path, creating its directory if needed.
// A missing file is an empty session. A file that cannot be decoded is
// logged and treated as empty.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	s := &Store{
		path:   path,
		values: make(map[session.Key]string),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var stored map[session.Key]string
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("discarding unreadable session file")
		return s, nil
	}
	for key, value := range stored {
		if session.ValidKey(key) {
			s.values[key] = value
		}
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
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

	previous, existed := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		if existed {
			s.values[key] = previous
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *Store) Remove(key session.Key) error {
	if !session.ValidKey(key) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.values[key]
	if !existed {
		return nil
	}
	delete(s.values, key)
	if err := s.flush(); err != nil {
		s.values[key] = previous
		return err
	}
	return nil
}

// flush must be called with mu held.
func (s *Store) flush() error {
	if len(s.values) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
