package vault

import (
	"errors"
	"fmt"
)

// Error kinds returned by the Engine. Wrapped errors may carry a cause as
// well, so match with errors.Is.
var (
	ErrLocked          = errors.New("vault is locked")
	ErrAlreadyLocked   = errors.New("vault is already locked")
	ErrAlreadyUnlocked = errors.New("a vault is already unlocked")

	ErrVaultNotFound = errors.New("vault not found")
	ErrVaultExists   = errors.New("vault already exists")

	ErrEntryExists   = errors.New("entry already exists")
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalidEntry  = errors.New("invalid entry")

	// ErrInvalidPasswordOrCorrupted never wraps its cause: a wrong
	// password and damaged ciphertext must look the same to the caller.
	ErrInvalidPasswordOrCorrupted = errors.New("invalid password or corrupted vault")

	ErrSerialization = errors.New("serialization error")
	ErrStorage       = errors.New("storage error")
	ErrCrypto        = errors.New("crypto error")
)

// ErrCorrupt is returned by the decoders for malformed or truncated input
var ErrCorrupt = errors.New("corrupt data")

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func cryptoErr(err error) error {
	return fmt.Errorf("%w: %w", ErrCrypto, err)
}

func serializationErr(err error) error {
	return fmt.Errorf("%w: %w", ErrSerialization, err)
}
