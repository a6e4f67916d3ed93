// Package store persists users and calculation history as flat JSON files
// keyed by username. Files that are missing or corrupted degrade to empty
// data so the application keeps running; write failures are surfaced.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"calc-service/internal/observability"

	"go.uber.org/zap"
)

// userRecord is the on-disk shape of one user entry.
type userRecord struct {
	PasswordHash string `json:"password_hash"`
}

// UserStore is a JSON-file credential store. All access goes through one
// instance, guarded by its mutex.
type UserStore struct {
	mu   sync.Mutex
	path string
}

// NewUserStore returns a store backed by the JSON file at path.
func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

// Exists reports whether username is already registered.
func (s *UserStore) Exists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	_, ok := users[username]
	return ok
}

// Save registers username with the given password hash.
func (s *UserStore) Save(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	users[username] = userRecord{PasswordHash: passwordHash}
	return writeJSON(s.path, users)
}

// Lookup returns the stored password hash for username, and whether the
// user exists.
func (s *UserStore) Lookup(username string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	rec, ok := users[username]
	return rec.PasswordHash, ok
}

func (s *UserStore) load() map[string]userRecord {
	users := make(map[string]userRecord)
	if err := readJSON(s.path, &users); err != nil {
		observability.Logger.Warn("could not load users, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return make(map[string]userRecord)
	}
	return users
}

// readJSON decodes the file at path into dst. A missing file is not an
// error: dst is left empty.
func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeJSON encodes v to the file at path, creating the parent directory
// when needed.
func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
