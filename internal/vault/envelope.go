package vault

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/illarion/passvault/internal/crypto"
)

// Envelope file layout:
//
//	magic "PVLT" | version (1 byte) | salt[16] | nonce[12] | len (uint32 BE) | ciphertext
const (
	EnvelopeVersion = 1

	envelopeMagic = "PVLT"
	headerSize    = len(envelopeMagic) + 1 + crypto.SaltSize + crypto.NonceSize + 4
)

// Envelope is the on-disk container: KDF salt, AEAD nonce and ciphertext.
// The salt is fixed for the life of a vault; the nonce changes on every
// commit.
type Envelope struct {
	Salt       [crypto.SaltSize]byte
	Nonce      [crypto.NonceSize]byte
	Ciphertext []byte
}

// NewEnvelope creates an unsealed envelope for salt
func NewEnvelope(salt []byte) (*Envelope, error) {
	if len(salt) != crypto.SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrCorrupt, crypto.SaltSize, len(salt))
	}
	env := &Envelope{}
	copy(env.Salt[:], salt)
	return env, nil
}

// Sealed reports whether the envelope carries ciphertext
func (e *Envelope) Sealed() bool {
	return len(e.Ciphertext) > 0
}

// seal returns a copy of e holding ciphertext and nonce
func (e *Envelope) seal(ciphertext, nonce []byte) (*Envelope, error) {
	if len(nonce) != crypto.NonceSize {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", crypto.NonceSize, len(nonce))
	}
	sealed := &Envelope{Salt: e.Salt, Ciphertext: ciphertext}
	copy(sealed.Nonce[:], nonce)
	return sealed, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (e *Envelope) MarshalBinary() ([]byte, error) {
	if uint64(len(e.Ciphertext)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("ciphertext too large: %d bytes", len(e.Ciphertext))
	}
	buf := make([]byte, 0, headerSize+len(e.Ciphertext))
	buf = append(buf, envelopeMagic...)
	buf = append(buf, EnvelopeVersion)
	buf = append(buf, e.Salt[:]...)
	buf = append(buf, e.Nonce[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.Ciphertext)))
	buf = append(buf, e.Ciphertext...)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (e *Envelope) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("%w: envelope truncated (%d bytes)", ErrCorrupt, len(data))
	}
	if string(data[:len(envelopeMagic)]) != envelopeMagic {
		return fmt.Errorf("%w: not a vault file", ErrCorrupt)
	}
	off := len(envelopeMagic)
	if v := data[off]; v != EnvelopeVersion {
		return fmt.Errorf("%w: unsupported envelope version %d", ErrCorrupt, v)
	}
	off++

	var salt [crypto.SaltSize]byte
	off += copy(salt[:], data[off:])
	var nonce [crypto.NonceSize]byte
	off += copy(nonce[:], data[off:])

	n := binary.BigEndian.Uint32(data[off:])
	off += 4

	rest := data[off:]
	switch {
	case uint64(len(rest)) < uint64(n):
		return fmt.Errorf("%w: ciphertext truncated", ErrCorrupt)
	case uint64(len(rest)) > uint64(n):
		return fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, uint64(len(rest))-uint64(n))
	case n < crypto.TagSize:
		return fmt.Errorf("%w: ciphertext shorter than tag", ErrCorrupt)
	}

	e.Salt = salt
	e.Nonce = nonce
	e.Ciphertext = bytes.Clone(rest)
	return nil
}
