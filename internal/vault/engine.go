package vault

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/illarion/passvault/internal/crypto"
)

// Engine owns one vault session. A nil session is the Locked state.
type Engine struct {
	store  Store
	cipher Cipher
	log    zerolog.Logger
	now    func() time.Time

	sess *session
}

type session struct {
	name      string
	key       *crypto.Secret
	envelope  *Envelope
	entries   *Collection
	committed []Summary
	dirty     bool
}

func (s *session) wipe() {
	s.entries.Wipe()
	s.key.Destroy()
	s.committed = nil
	s.envelope = nil
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock overrides the time source used for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a locked engine over store and cipher
func New(store Store, cipher Cipher, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		cipher: cipher,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsLocked reports whether no vault is open
func (e *Engine) IsLocked() bool {
	return e.sess == nil
}

// IsDirty reports whether the open vault has uncommitted changes
func (e *Engine) IsDirty() bool {
	return e.sess != nil && e.sess.dirty
}

// CurrentVault returns the name of the open vault, or "" when locked
func (e *Engine) CurrentVault() string {
	if e.sess == nil {
		return ""
	}
	return e.sess.name
}

// EntryCount returns the number of entries in the open vault
func (e *Engine) EntryCount() int {
	if e.sess == nil {
		return 0
	}
	return e.sess.entries.Len()
}

// CreateVault starts a new, empty vault named name and leaves it unlocked.
// Nothing is written until Commit.
func (e *Engine) CreateVault(name string, password []byte) error {
	if e.sess != nil {
		return ErrAlreadyUnlocked
	}
	if err := e.store.SetTarget(name); err != nil {
		return storageErr(err)
	}
	exists, err := e.store.Exists()
	if err != nil {
		return storageErr(err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrVaultExists, name)
	}

	salt, err := e.cipher.GenerateSalt()
	if err != nil {
		return cryptoErr(err)
	}
	env, err := NewEnvelope(salt)
	if err != nil {
		return cryptoErr(err)
	}
	key, err := e.cipher.DeriveKey(password, salt)
	if err != nil {
		return cryptoErr(err)
	}

	e.sess = &session{
		name:     name,
		key:      key,
		envelope: env,
		entries:  NewCollection(),
	}
	e.log.Debug().Str("vault", name).Msg("vault created")
	return nil
}

// Unlock opens the named vault. A wrong password and a damaged file both
// return ErrInvalidPasswordOrCorrupted; the engine stays locked.
func (e *Engine) Unlock(name string, password []byte) (err error) {
	if e.sess != nil {
		return ErrAlreadyUnlocked
	}
	if err := e.store.SetTarget(name); err != nil {
		return storageErr(err)
	}
	exists, err := e.store.Exists()
	if err != nil {
		return storageErr(err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrVaultNotFound, name)
	}

	data, err := e.store.Load()
	if err != nil {
		return storageErr(err)
	}
	env := &Envelope{}
	if err := env.UnmarshalBinary(data); err != nil {
		e.log.Debug().Err(err).Str("vault", name).Msg("malformed envelope")
		return ErrInvalidPasswordOrCorrupted
	}

	key, err := e.cipher.DeriveKey(password, env.Salt[:])
	if err != nil {
		return cryptoErr(err)
	}
	defer func() {
		if err != nil {
			key.Destroy()
		}
	}()

	plaintext, err := e.cipher.Decrypt(key, env.Ciphertext, env.Nonce[:])
	if err != nil {
		if errors.Is(err, crypto.ErrAuthFailed) {
			return ErrInvalidPasswordOrCorrupted
		}
		return cryptoErr(err)
	}
	defer crypto.ClearBytes(plaintext)

	entries, err := DecodeCollection(plaintext)
	if err != nil {
		return ErrInvalidPasswordOrCorrupted
	}

	e.sess = &session{
		name:      name,
		key:       key,
		envelope:  env,
		entries:   entries,
		committed: entries.Summaries(),
	}
	e.log.Debug().Str("vault", name).Int("entries", entries.Len()).Msg("vault unlocked")
	return nil
}

// Lock wipes all entries and the key. Uncommitted changes are lost.
func (e *Engine) Lock() error {
	if e.sess == nil {
		return ErrAlreadyLocked
	}
	name := e.sess.name
	e.sess.wipe()
	e.sess = nil
	e.log.Debug().Str("vault", name).Msg("vault locked")
	return nil
}

// Close locks the engine if a vault is open
func (e *Engine) Close() {
	if e.sess != nil {
		_ = e.Lock()
	}
}

// Add inserts a new entry. password is copied.
func (e *Engine) Add(service, username string, password []byte) error {
	if e.sess == nil {
		return ErrLocked
	}
	if service == "" {
		return fmt.Errorf("%w: service must not be empty", ErrInvalidEntry)
	}
	entry := NewEntry(service, username, password, e.now())
	if err := e.sess.entries.Add(entry); err != nil {
		entry.Wipe()
		return err
	}
	e.sess.dirty = true
	return nil
}

// Get returns a copy of the entry for service. The caller wipes it.
func (e *Engine) Get(service string) (*Entry, error) {
	if e.sess == nil {
		return nil, ErrLocked
	}
	entry, ok := e.sess.entries.Get(service)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, service)
	}
	c := entry.Clone()
	return &c, nil
}

// Delete removes and returns the entry for service. The caller wipes it.
func (e *Engine) Delete(service string) (*Entry, error) {
	if e.sess == nil {
		return nil, ErrLocked
	}
	entry, ok := e.sess.entries.Remove(service)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, service)
	}
	e.sess.dirty = true
	return entry, nil
}

// ListEntries returns summaries of all entries in service order
func (e *Engine) ListEntries() ([]Summary, error) {
	if e.sess == nil {
		return nil, ErrLocked
	}
	return e.sess.entries.Summaries(), nil
}

// ListVaults returns the vault names known to the store. Only valid while
// locked.
func (e *Engine) ListVaults() ([]string, error) {
	if e.sess != nil {
		return nil, ErrAlreadyUnlocked
	}
	names, err := e.store.ListAvailable()
	if err != nil {
		return nil, storageErr(err)
	}
	return names, nil
}

// Pending returns the entry summaries as of the last commit (or unlock) and
// as they are now
func (e *Engine) Pending() (committed, current []Summary, err error) {
	if e.sess == nil {
		return nil, nil, ErrLocked
	}
	return e.sess.committed, e.sess.entries.Summaries(), nil
}

// Commit encrypts the entries under a fresh nonce and saves the envelope.
// On failure the session is unchanged and still dirty.
func (e *Engine) Commit() error {
	if e.sess == nil {
		return ErrLocked
	}
	s := e.sess

	plaintext, err := EncodeCollection(s.entries)
	if err != nil {
		return serializationErr(err)
	}
	ciphertext, nonce, err := e.cipher.Encrypt(s.key, plaintext)
	crypto.ClearBytes(plaintext)
	if err != nil {
		return cryptoErr(err)
	}

	sealed, err := s.envelope.seal(ciphertext, nonce)
	if err != nil {
		return cryptoErr(err)
	}
	data, err := sealed.MarshalBinary()
	if err != nil {
		return serializationErr(err)
	}

	if err := e.store.SetTarget(s.name); err != nil {
		return storageErr(err)
	}
	if err := e.store.Save(data); err != nil {
		return storageErr(err)
	}

	s.envelope = sealed
	s.dirty = false
	s.committed = s.entries.Summaries()
	e.log.Debug().Str("vault", s.name).Int("entries", s.entries.Len()).Int("bytes", len(data)).Msg("vault committed")
	return nil
}
