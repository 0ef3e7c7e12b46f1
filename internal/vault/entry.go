package vault

import (
	"fmt"
	"slices"
	"time"

	"github.com/illarion/passvault/internal/crypto"
)

// Entry is one credential. Password is secret and is wiped when the entry
// is removed from a locked or discarded collection.
type Entry struct {
	Service   string `cbor:"service"`
	Username  string `cbor:"username"`
	Password  []byte `cbor:"password"`
	CreatedAt int64  `cbor:"created_at"`
	UpdatedAt int64  `cbor:"updated_at"`
}

// NewEntry creates an entry stamped with now. The password is copied.
func NewEntry(service, username string, password []byte, now time.Time) *Entry {
	ts := now.Unix()
	return &Entry{
		Service:   service,
		Username:  username,
		Password:  slices.Clone(password),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Created returns the creation time
func (e *Entry) Created() time.Time {
	return time.Unix(e.CreatedAt, 0)
}

// Updated returns the last update time
func (e *Entry) Updated() time.Time {
	return time.Unix(e.UpdatedAt, 0)
}

// Clone returns a deep copy; the caller owns (and wipes) its password
func (e *Entry) Clone() Entry {
	c := *e
	c.Password = slices.Clone(e.Password)
	return c
}

// Wipe zeroes the password
func (e *Entry) Wipe() {
	crypto.ClearBytes(e.Password)
	e.Password = nil
}

// Summary returns the non-secret view of the entry
func (e *Entry) Summary() Summary {
	return Summary{
		Service:   e.Service,
		Username:  e.Username,
		CreatedAt: e.Created(),
		UpdatedAt: e.Updated(),
	}
}

// Summary describes an entry without its password
type Summary struct {
	Service   string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Collection maps service -> entry. Iteration is always in service order.
type Collection struct {
	entries map[string]*Entry
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{entries: make(map[string]*Entry)}
}

// Len returns the number of entries
func (c *Collection) Len() int {
	return len(c.entries)
}

// Add inserts e, failing if its service is already present
func (c *Collection) Add(e *Entry) error {
	if e.Service == "" {
		return fmt.Errorf("%w: service must not be empty", ErrInvalidEntry)
	}
	if _, ok := c.entries[e.Service]; ok {
		return fmt.Errorf("%w: %s", ErrEntryExists, e.Service)
	}
	c.entries[e.Service] = e
	return nil
}

// Get returns the entry for service
func (c *Collection) Get(service string) (*Entry, bool) {
	e, ok := c.entries[service]
	return e, ok
}

// Remove deletes and returns the entry for service
func (c *Collection) Remove(service string) (*Entry, bool) {
	e, ok := c.entries[service]
	if ok {
		delete(c.entries, service)
	}
	return e, ok
}

// Services returns all service names in order
func (c *Collection) Services() []string {
	services := make([]string, 0, len(c.entries))
	for s := range c.entries {
		services = append(services, s)
	}
	slices.Sort(services)
	return services
}

// Entries returns the entries in service order. The entries are shared,
// not copied.
func (c *Collection) Entries() []*Entry {
	entries := make([]*Entry, 0, len(c.entries))
	for _, s := range c.Services() {
		entries = append(entries, c.entries[s])
	}
	return entries
}

// Summaries returns the non-secret view of every entry in service order
func (c *Collection) Summaries() []Summary {
	summaries := make([]Summary, 0, len(c.entries))
	for _, e := range c.Entries() {
		summaries = append(summaries, e.Summary())
	}
	return summaries
}

// Wipe zeroes every password and empties the collection
func (c *Collection) Wipe() {
	for s, e := range c.entries {
		e.Wipe()
		delete(c.entries, s)
	}
}
