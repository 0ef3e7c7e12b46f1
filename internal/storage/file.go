package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/illarion/passvault/internal/security"
)

const (
	Extension       = ".vault"
	BackupExtension = ".bkp"
	FilePermSecure  = 0600 // File: owner rw only
)

var (
	ErrNoTarget       = errors.New("no vault selected")
	ErrNotFound       = errors.New("vault file not found")
	ErrBackupMismatch = errors.New("backup integrity check failed")
)

// FileStore reads and writes vault envelopes in a single directory
type FileStore struct {
	dir     string
	name    string
	catalog *Catalog
	log     zerolog.Logger

	// Fault injection points; tests replace these.
	backup    func(d *security.Dir, src, dst string) error
	writeFile func(f *os.File, data []byte) error
	syncFile  func(f *os.File) error
}

// Option configures a FileStore
type Option func(*FileStore)

// WithCatalog records every successful save in c
func WithCatalog(c *Catalog) Option {
	return func(s *FileStore) {
		s.catalog = c
	}
}

// WithLogger sets the store logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *FileStore) {
		s.log = l
	}
}

// NewFileStore creates a store for vaults in dir. The directory is created
// on first save.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:       dir,
		log:       zerolog.Nop(),
		backup:    copyWithin,
		writeFile: writeAll,
		syncFile:  (*os.File).Sync,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the vault directory
func (s *FileStore) Dir() string {
	return s.dir
}

// SetTarget selects the vault that Exists, Load and Save operate on
func (s *FileStore) SetTarget(name string) error {
	if err := security.ValidateName(name); err != nil {
		return err
	}
	s.name = name
	return nil
}

// Target returns the selected vault name
func (s *FileStore) Target() string {
	return s.name
}

// Path returns the file path of the selected vault
func (s *FileStore) Path() string {
	if s.name == "" {
		return ""
	}
	return filepath.Join(s.dir, s.name+Extension)
}

// Exists reports whether the selected vault has a file on disk
func (s *FileStore) Exists() (bool, error) {
	if s.name == "" {
		return false, ErrNoTarget
	}
	if !s.dirExists() {
		return false, nil
	}

	d, err := security.OpenDir(s.dir)
	if err != nil {
		return false, err
	}
	defer d.Close()

	info, err := d.Stat(s.name + Extension)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat vault: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Load reads the selected vault file
func (s *FileStore) Load() ([]byte, error) {
	if s.name == "" {
		return nil, ErrNoTarget
	}
	if !s.dirExists() {
		return nil, ErrNotFound
	}

	d, err := security.OpenDir(s.dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	f, err := d.Open(s.name + Extension)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}
	return data, nil
}

// Save durably replaces the selected vault file with data. On failure the
// previous file content is left in place.
func (s *FileStore) Save(data []byte) error {
	if s.name == "" {
		return ErrNoTarget
	}

	d, err := security.OpenDir(s.dir)
	if err != nil {
		return err
	}
	defer d.Close()

	file := s.name + Extension
	backup := s.name + BackupExtension

	hadOriginal := false
	if _, err := d.Stat(file); err == nil {
		hadOriginal = true

		if err := s.backup(d, file, backup); err != nil {
			_ = d.Remove(backup)
			return fmt.Errorf("failed to back up vault: %w", err)
		}
		if err := verifyCopy(d, file, backup); err != nil {
			// Never overwrite an original whose backup is unverified
			_ = d.Remove(backup)
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat vault: %w", err)
	}

	if err := s.writeSynced(d, file, data); err != nil {
		if !hadOriginal {
			_ = d.Remove(file)
			return fmt.Errorf("failed to write vault: %w", err)
		}
		if rerr := copyWithin(d, backup, file); rerr != nil {
			s.log.Error().Err(rerr).Str("vault", s.name).Msg("restore from backup failed, backup kept")
			return fmt.Errorf("failed to write vault: %w (restore from %s failed: %v)", err, backup, rerr)
		}
		_ = d.Remove(backup)
		s.log.Warn().Err(err).Str("vault", s.name).Msg("write failed, original restored")
		return fmt.Errorf("failed to write vault: %w", err)
	}

	if hadOriginal {
		if err := d.Remove(backup); err != nil {
			s.log.Warn().Err(err).Str("vault", s.name).Msg("failed to remove backup")
		}
	}
	if err := d.Sync(); err != nil {
		s.log.Debug().Err(err).Msg("directory sync failed")
	}

	if s.catalog != nil {
		if err := s.catalog.RecordCommit(s.name, data); err != nil {
			s.log.Warn().Err(err).Str("vault", s.name).Msg("failed to update catalog")
		}
	}
	return nil
}

// ListAvailable returns the names of all vaults in the directory, sorted
func (s *FileStore) ListAvailable() ([]string, error) {
	if !s.dirExists() {
		return nil, nil
	}

	d, err := security.OpenDir(s.dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	entries, err := d.ReadDir()
	if err != nil {
		return nil, fmt.Errorf("failed to read vault directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), Extension)
		if !ok || security.ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// BackupExists reports whether a backup left by an interrupted save is
// present for the named vault
func (s *FileStore) BackupExists(name string) bool {
	if security.ValidateName(name) != nil || !s.dirExists() {
		return false
	}

	d, err := security.OpenDir(s.dir)
	if err != nil {
		return false
	}
	defer d.Close()

	_, err = d.Stat(name + BackupExtension)
	return err == nil
}

func (s *FileStore) dirExists() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

func (s *FileStore) writeSynced(d *security.Dir, name string, data []byte) error {
	f, err := d.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePermSecure)
	if err != nil {
		return err
	}

	if err := s.writeFile(f, data); err != nil {
		f.Close()
		return err
	}
	if err := s.syncFile(f); err != nil {
		f.Close()
		return fmt.Errorf("sync: %w", err)
	}
	return f.Close()
}

func writeAll(f *os.File, data []byte) error {
	_, err := f.Write(data)
	return err
}

// copyWithin copies src over dst inside d and syncs dst
func copyWithin(d *security.Dir, src, dst string) error {
	in, err := d.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := d.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePermSecure)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func verifyCopy(d *security.Dir, original, backup string) error {
	want, err := hashFile(d, original)
	if err != nil {
		return fmt.Errorf("failed to hash vault: %w", err)
	}
	got, err := hashFile(d, backup)
	if err != nil {
		return fmt.Errorf("failed to hash backup: %w", err)
	}
	if !bytes.Equal(want, got) {
		return ErrBackupMismatch
	}
	return nil
}

func hashFile(d *security.Dir, name string) ([]byte, error) {
	f, err := d.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
