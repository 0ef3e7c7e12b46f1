package vault

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"maps"
	"slices"

	"github.com/illarion/passvault/internal/crypto"
)

// memStore keeps vaults in a map
type memStore struct {
	files   map[string][]byte
	target  string
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) SetTarget(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	m.target = name
	return nil
}

func (m *memStore) Exists() (bool, error) {
	_, ok := m.files[m.target]
	return ok, nil
}

func (m *memStore) Load() ([]byte, error) {
	data, ok := m.files[m.target]
	if !ok {
		return nil, errors.New("not found")
	}
	return bytes.Clone(data), nil
}

func (m *memStore) Save(data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.files[m.target] = bytes.Clone(data)
	return nil
}

func (m *memStore) ListAvailable() ([]string, error) {
	return slices.Sorted(maps.Keys(m.files)), nil
}

// xorCipher is a fast stand-in for AES-GCM: keystream XOR plus a hash tag
type xorCipher struct {
	counter uint64
}

func (c *xorCipher) GenerateSalt() ([]byte, error) {
	c.counter++
	salt := make([]byte, crypto.SaltSize)
	binary.BigEndian.PutUint64(salt, c.counter)
	return salt, nil
}

func (c *xorCipher) DeriveKey(password, salt []byte) (*crypto.Secret, error) {
	sum := sha256.Sum256(append(bytes.Clone(password), salt...))
	return crypto.SecretFromBytes(sum[:]), nil
}

func (c *xorCipher) Encrypt(key *crypto.Secret, plaintext []byte) ([]byte, []byte, error) {
	c.counter++
	nonce := make([]byte, crypto.NonceSize)
	binary.BigEndian.PutUint64(nonce, c.counter)
	out := xorStream(key.Bytes(), nonce, plaintext)
	return append(out, tag(key.Bytes(), nonce, plaintext)...), nonce, nil
}

func (c *xorCipher) Decrypt(key *crypto.Secret, ciphertext, nonce []byte) ([]byte, error) {
	if len(ciphertext) < crypto.TagSize {
		return nil, crypto.ErrAuthFailed
	}
	body := ciphertext[:len(ciphertext)-crypto.TagSize]
	plaintext := xorStream(key.Bytes(), nonce, body)
	if !bytes.Equal(tag(key.Bytes(), nonce, plaintext), ciphertext[len(body):]) {
		return nil, crypto.ErrAuthFailed
	}
	return plaintext, nil
}

func xorStream(key, nonce, in []byte) []byte {
	out := make([]byte, len(in))
	for i := range in {
		out[i] = in[i] ^ key[i%len(key)] ^ nonce[i%len(nonce)]
	}
	return out
}

func tag(key, nonce, plaintext []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(nonce)
	h.Write(plaintext)
	return h.Sum(nil)[:crypto.TagSize]
}
