package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitsync/internal/constants"
)

var (
	// ErrNotFound is returned when no session token is stored
	ErrNotFound = errors.New("session token not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// TokenStore persists the session token under one well-known key. It is the
// only state kept across process restarts.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
	Delete() error
}

// OSStore keeps the token in the operating system keyring.
type OSStore struct {
	service string
	user    string
}

// NewOSStore returns a TokenStore backed by the OS keyring.
func NewOSStore() *OSStore {
	return &OSStore{service: constants.AppName, user: constants.DefaultKeyringUser}
}

// Get retrieves the token. Returns ErrNotFound if none is stored.
func (s *OSStore) Get() (string, error) {
	token, err := keyring.Get(s.service, s.user)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return token, nil
}

// Set stores the token, replacing any previous one.
func (s *OSStore) Set(token string) error {
	if token == "" {
		return errors.New("session token cannot be empty")
	}
	if err := keyring.Set(s.service, s.user, token); err != nil {
		return fmt.Errorf("failed to store session token in keyring: %w", err)
	}
	return nil
}

// Delete removes the token. Returns ErrNotFound if none is stored.
func (s *OSStore) Delete() error {
	err := keyring.Delete(s.service, s.user)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete session token from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || err == keyring.ErrNotFound
}
