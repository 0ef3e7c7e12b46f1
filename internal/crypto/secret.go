package crypto

import (
	"crypto/subtle"
)

// Secret holds sensitive bytes (keys, passwords) that must be overwritten
// when their owner is done with them. Destroy zeroes the backing array and
// is safe to call more than once; defer it right after construction so the
// bytes are wiped on every exit path, panics included.
//
// Where the platform allows it the backing memory is also locked against
// swapping. Locking is best effort and its failure is not an error.
type Secret struct {
	b         []byte
	locked    bool
	destroyed bool
}

// NewSecret allocates a zero-filled secret of n bytes
func NewSecret(n int) *Secret {
	s := &Secret{b: make([]byte, n)}
	s.locked = lockMemory(s.b)
	return s
}

// SecretFromBytes copies src into a new Secret and zeroes src
func SecretFromBytes(src []byte) *Secret {
	s := NewSecret(len(src))
	copy(s.b, src)
	ClearBytes(src)
	return s
}

// Bytes returns the secret contents. The slice aliases the secret's memory
// and must not be retained past Destroy. Panics after Destroy.
func (s *Secret) Bytes() []byte {
	if s.destroyed {
		panic("crypto: use of destroyed secret")
	}
	return s.b
}

// Len returns the secret size, or 0 after Destroy
func (s *Secret) Len() int {
	if s == nil || s.destroyed {
		return 0
	}
	return len(s.b)
}

// Clone returns an independent copy of the secret
func (s *Secret) Clone() *Secret {
	c := NewSecret(len(s.Bytes()))
	copy(c.b, s.b)
	return c
}

// Equal compares two secrets in constant time
func (s *Secret) Equal(other *Secret) bool {
	return ConstantTimeCompare(s.Bytes(), other.Bytes())
}

// Destroy zeroes the secret and releases any memory lock
func (s *Secret) Destroy() {
	if s == nil || s.destroyed {
		return
	}
	ClearBytes(s.b)
	if s.locked {
		unlockMemory(s.b)
		s.locked = false
	}
	s.b = nil
	s.destroyed = true
}

// Destroyed reports whether Destroy has been called
func (s *Secret) Destroyed() bool {
	return s == nil || s.destroyed
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
