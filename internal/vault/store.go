package vault

import "github.com/illarion/passvault/internal/crypto"

// Store persists encrypted vault bytes under a name. storage.FileStore is
// the production implementation.
type Store interface {
	SetTarget(name string) error
	Exists() (bool, error)
	Load() ([]byte, error)
	Save(data []byte) error
	ListAvailable() ([]string, error)
}

// Cipher derives keys and seals payloads. crypto.AESGCM is the production
// implementation. Decrypt must return crypto.ErrAuthFailed for every
// authentication failure.
type Cipher interface {
	GenerateSalt() ([]byte, error)
	DeriveKey(password, salt []byte) (*crypto.Secret, error)
	Encrypt(key *crypto.Secret, plaintext []byte) (ciphertext, nonce []byte, err error)
	Decrypt(key *crypto.Secret, ciphertext, nonce []byte) ([]byte, error)
}
