package keyring

import (
	"errors"
	"fmt"
	"os"

	vault "github.com/99designs/keyring"

	"github.com/julianstephens/habitsync/internal/constants"
)

// FileVault keeps the token in an encrypted file, for hosts without an OS
// keyring (containers, CI, SSH sessions).
type FileVault struct {
	ring vault.Keyring
}

// NewFileVault opens (or creates) an encrypted keyring directory at dir.
func NewFileVault(dir, password string) (*FileVault, error) {
	if password == "" {
		password = constants.DefaultFilePassword
	}

	ring, err := vault.Open(vault.Config{
		ServiceName:      constants.AppName,
		AllowedBackends:  []vault.BackendType{vault.FileBackend},
		FileDir:          dir,
		FilePasswordFunc: vault.FixedStringPrompt(password),
	})
	if err != nil {
		return nil, fmt.Errorf("opening file vault %s: %w", dir, err)
	}
	return &FileVault{ring: ring}, nil
}

// Get retrieves the token. Returns ErrNotFound if none is stored.
func (v *FileVault) Get() (string, error) {
	item, err := v.ring.Get(constants.DefaultKeyringUser)
	if err != nil {
		if isMissing(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading session token from file vault: %w", err)
	}
	return string(item.Data), nil
}

// Set stores the token, replacing any previous one.
func (v *FileVault) Set(token string) error {
	if token == "" {
		return errors.New("session token cannot be empty")
	}
	err := v.ring.Set(vault.Item{
		Key:   constants.DefaultKeyringUser,
		Data:  []byte(token),
		Label: constants.AppName + " session token",
	})
	if err != nil {
		return fmt.Errorf("writing session token to file vault: %w", err)
	}
	return nil
}

// Delete removes the token. Returns ErrNotFound if none is stored.
func (v *FileVault) Delete() error {
	if err := v.ring.Remove(constants.DefaultKeyringUser); err != nil {
		if isMissing(err) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting session token from file vault: %w", err)
	}
	return nil
}

func isMissing(err error) bool {
	return errors.Is(err, vault.ErrKeyNotFound) || errors.Is(err, os.ErrNotExist)
}
