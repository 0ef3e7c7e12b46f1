package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	bolt "go.etcd.io/bbolt"
)

const CatalogFile = ".catalog.db"

// VaultsBucket maps vault name -> JSON Record
var VaultsBucket = []byte("vaults")

// Record is the public, unencrypted bookkeeping for one vault
type Record struct {
	ID        string    `json:"id"`
	Created   time.Time `json:"created"`
	Committed time.Time `json:"committed"`
	Size      int64     `json:"size"`
	Digest    string    `json:"digest"` // BLAKE3 of the last committed envelope
	Commits   uint64    `json:"commits"`
}

// Catalog stores vault records in a BBolt database inside the vault
// directory. The database is opened per call and closed afterwards, so
// it is never held open between commands.
type Catalog struct {
	path    string
	timeout time.Duration
	now     func() time.Time
}

// NewCatalog returns the catalog for vaults in dir
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		path:    filepath.Join(dir, CatalogFile),
		timeout: time.Second,
		now:     time.Now,
	}
}

// Path returns the database file path
func (c *Catalog) Path() string {
	return c.path
}

// Digest returns the hex BLAKE3 digest used in catalog records
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *Catalog) update(fn func(b *bolt.Bucket) error) error {
	db, err := bolt.Open(c.path, FilePermSecure, &bolt.Options{Timeout: c.timeout})
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(VaultsBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", VaultsBucket, err)
		}
		return fn(b)
	})
}

func (c *Catalog) view(fn func(b *bolt.Bucket) error) error {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return nil
	}

	db, err := bolt.Open(c.path, FilePermSecure, &bolt.Options{Timeout: c.timeout})
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(VaultsBucket)
		if b == nil {
			return nil
		}
		return fn(b)
	})
}

func getRecord(b *bolt.Bucket, name string) (*Record, error) {
	data := b.Get([]byte(name))
	if data == nil {
		return nil, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode catalog record %s: %w", name, err)
	}
	return &rec, nil
}

func putRecord(b *bolt.Bucket, name string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return b.Put([]byte(name), data)
}

func (c *Catalog) getOrNew(b *bolt.Bucket, name string) (*Record, error) {
	rec, err := getRecord(b, name)
	if err != nil || rec != nil {
		return rec, err
	}
	return &Record{
		ID:      uuid.NewString(),
		Created: c.now(),
	}, nil
}

// RecordCommit stores size and digest of a freshly saved envelope
func (c *Catalog) RecordCommit(name string, envelope []byte) error {
	return c.update(func(b *bolt.Bucket) error {
		rec, err := c.getOrNew(b, name)
		if err != nil {
			return err
		}
		rec.Committed = c.now()
		rec.Size = int64(len(envelope))
		rec.Digest = Digest(envelope)
		rec.Commits++
		return putRecord(b, name, rec)
	})
}

// Get returns the record for name, or nil if the vault is not cataloged
func (c *Catalog) Get(name string) (*Record, error) {
	var rec *Record
	err := c.view(func(b *bolt.Bucket) error {
		var err error
		rec, err = getRecord(b, name)
		return err
	})
	return rec, err
}

// All returns every record keyed by vault name
func (c *Catalog) All() (map[string]Record, error) {
	records := make(map[string]Record)
	err := c.view(func(b *bolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to decode catalog record %s: %w", k, err)
			}
			records[string(k)] = rec
			return nil
		})
	})
	return records, err
}

// VaultID returns the stable ID of a vault, creating the record if needed
func (c *Catalog) VaultID(name string) (string, error) {
	var id string
	err := c.update(func(b *bolt.Bucket) error {
		rec, err := c.getOrNew(b, name)
		if err != nil {
			return err
		}
		id = rec.ID
		return putRecord(b, name, rec)
	})
	return id, err
}

// Forget removes the record for name
func (c *Catalog) Forget(name string) error {
	return c.update(func(b *bolt.Bucket) error {
		return b.Delete([]byte(name))
	})
}
