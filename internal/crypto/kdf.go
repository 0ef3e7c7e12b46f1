package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 16 // Salt size in bytes
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size
)

// Argon2id cost parameters. Vaults store only the salt, so changing any of
// these makes every existing vault unreadable.
const (
	ArgonTime    = 2
	ArgonMemory  = 19 * 1024 // KiB
	ArgonThreads = 1
)

var ErrInvalidParams = errors.New("invalid key derivation parameters")

// KDF derives encryption keys from passwords with Argon2id
type KDF struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultKDF returns the frozen parameters used for every vault
func DefaultKDF() KDF {
	return KDF{
		Time:    ArgonTime,
		Memory:  ArgonMemory,
		Threads: ArgonThreads,
	}
}

// Validate reports whether the parameters can be passed to Argon2id
func (k KDF) Validate() error {
	if k.Time < 1 {
		return fmt.Errorf("%w: time must be at least 1", ErrInvalidParams)
	}
	if k.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1", ErrInvalidParams)
	}
	if k.Memory < 8*uint32(k.Threads) {
		return fmt.Errorf("%w: memory must be at least 8 KiB per thread", ErrInvalidParams)
	}
	return nil
}

// DeriveKey derives a KeySize key from password and salt.
// The returned Secret must be destroyed by the caller.
func (k KDF) DeriveKey(password, salt []byte) (*Secret, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidParams, SaltSize, len(salt))
	}

	key := argon2.IDKey(password, salt, k.Time, k.Memory, k.Threads, KeySize)
	return SecretFromBytes(key), nil
}

// GenerateSalt returns SaltSize random bytes
func GenerateSalt() ([]byte, error) {
	return GenerateRandom(SaltSize)
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
