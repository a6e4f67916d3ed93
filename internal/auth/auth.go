// Package auth registers and authenticates users against the credential
// store, hashing passwords with bcrypt.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"calc-service/internal/store"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrUsernameTaken      = errors.New("username already exists, please choose a different username")
	ErrInvalidCredentials = errors.New("invalid credentials, please check your username and password")
)

// Manager validates and verifies user credentials.
type Manager struct {
	users *store.UserStore
}

func NewManager(users *store.UserStore) *Manager {
	return &Manager{users: users}
}

// Register creates a new account. The password is bcrypt-hashed before it
// reaches the store; the plaintext is never persisted.
func (m *Manager) Register(username, password string) error {
	if err := validate(username, password); err != nil {
		return err
	}
	if m.users.Exists(username) {
		return ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return m.users.Save(username, string(hash))
}

// Authenticate verifies username and password. Unknown users and wrong
// passwords fail identically with ErrInvalidCredentials.
func (m *Manager) Authenticate(username, password string) error {
	if err := validate(username, password); err != nil {
		return err
	}

	hash, ok := m.users.Lookup(username)
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func validate(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	return nil
}
