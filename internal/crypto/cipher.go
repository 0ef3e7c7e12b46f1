package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

var (
	ErrInvalidKey = errors.New("invalid key")
	ErrAuthFailed = errors.New("authentication failed")
)

// AESGCM is the production cipher: Argon2id key derivation plus AES-256-GCM.
// It holds no key material; keys are passed in per call.
type AESGCM struct {
	KDF KDF
}

// NewAESGCM creates a cipher using the frozen KDF parameters
func NewAESGCM() *AESGCM {
	return &AESGCM{KDF: DefaultKDF()}
}

// GenerateSalt returns a fresh random salt for a new vault
func (c *AESGCM) GenerateSalt() ([]byte, error) {
	return GenerateSalt()
}

// DeriveKey derives the vault key from password and salt
func (c *AESGCM) DeriveKey(password, salt []byte) (*Secret, error) {
	return c.KDF.DeriveKey(password, salt)
}

// Encrypt seals plaintext under key with a freshly generated nonce.
func (c *AESGCM) Encrypt(key *Secret, plaintext []byte) (ciphertext, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = GenerateRandom(NonceSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Decrypt opens ciphertext sealed under key and nonce. Every failure to
// authenticate, whatever its cause, is reported as ErrAuthFailed.
func (c *AESGCM) Decrypt(key *Secret, ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceSize || len(ciphertext) < TagSize {
		return nil, ErrAuthFailed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func newGCM(key *Secret) (cipher.AEAD, error) {
	if key == nil || key.Len() != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
