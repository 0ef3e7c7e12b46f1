// Package keyring caches vault passwords in the OS keyring. Entries are
// keyed by the vault's catalog ID, so renaming a vault file orphans them.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "passvault"

// ErrNotFound is returned when no password is stored for the vault
var ErrNotFound = errors.New("no password in keyring")

// SavePassword stores a password in the OS keyring
func SavePassword(vaultID string, password []byte) error {
	if err := keyring.Set(serviceName, vaultID, string(password)); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// GetPassword retrieves a password from the OS keyring. The returned slice
// belongs to the caller, who must wipe it.
func GetPassword(vaultID string) ([]byte, error) {
	pw, err := keyring.Get(serviceName, vaultID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	return []byte(pw), nil
}

// DeletePassword removes a password from the OS keyring
func DeletePassword(vaultID string) error {
	err := keyring.Delete(serviceName, vaultID)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(vaultID string) bool {
	_, err := keyring.Get(serviceName, vaultID)
	return err == nil
}
