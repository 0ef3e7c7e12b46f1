package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/passvault/internal/security"
)

func newTestStore(t *testing.T, name string) (*FileStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "vaults")
	s := NewFileStore(dir)
	require.NoError(t, s.SetTarget(name))
	return s, dir
}

func TestSaveAndLoad(t *testing.T) {
	s, dir := newTestStore(t, "personal")

	exists, err := s.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Save([]byte("first")))

	exists, err = s.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)

	info, err := os.Stat(filepath.Join(dir, "personal"+Extension))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermSecure), info.Mode().Perm())
}

func TestSaveOverwritesAndRemovesBackup(t *testing.T) {
	s, dir := newTestStore(t, "personal")

	require.NoError(t, s.Save([]byte("first version, longer")))
	require.NoError(t, s.Save([]byte("second")))

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	_, err = os.Stat(filepath.Join(dir, "personal"+BackupExtension))
	assert.True(t, os.IsNotExist(err), "backup should be removed after a successful save")
	assert.False(t, s.BackupExists("personal"))
}

func TestSaveSyncFailureRestoresOriginal(t *testing.T) {
	s, _ := newTestStore(t, "personal")
	require.NoError(t, s.Save([]byte("original bytes")))

	s.syncFile = func(*os.File) error { return errors.New("disk on fire") }

	err := s.Save([]byte("replacement that never lands"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("original bytes"), data)
	assert.False(t, s.BackupExists("personal"))
}

func TestSaveWriteFailureRestoresOriginal(t *testing.T) {
	s, _ := newTestStore(t, "personal")
	require.NoError(t, s.Save([]byte("original bytes")))

	s.writeFile = func(f *os.File, data []byte) error {
		// Leave a torn write behind before failing
		_, _ = f.Write(data[:3])
		return errors.New("short write")
	}

	require.Error(t, s.Save([]byte("replacement")))

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("original bytes"), data)
}

func TestFirstSaveFailureLeavesNoFile(t *testing.T) {
	s, _ := newTestStore(t, "personal")
	s.syncFile = func(*os.File) error { return errors.New("sync failed") }

	require.Error(t, s.Save([]byte("data")))

	exists, err := s.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveAbortsOnBackupMismatch(t *testing.T) {
	s, _ := newTestStore(t, "personal")
	require.NoError(t, s.Save([]byte("original bytes")))

	s.backup = func(d *security.Dir, src, dst string) error {
		f, err := d.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePermSecure)
		if err != nil {
			return err
		}
		_, err = f.Write([]byte("corrupted copy"))
		f.Close()
		return err
	}
	written := false
	s.writeFile = func(f *os.File, data []byte) error {
		written = true
		return writeAll(f, data)
	}

	err := s.Save([]byte("replacement"))
	assert.ErrorIs(t, err, ErrBackupMismatch)
	assert.False(t, written, "original must not be touched when the backup is unverified")

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("original bytes"), data)
}

func TestSaveBackupFailureLeavesNoBackup(t *testing.T) {
	s, _ := newTestStore(t, "personal")
	require.NoError(t, s.Save([]byte("original bytes")))

	s.backup = func(d *security.Dir, src, dst string) error {
		f, err := d.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePermSecure)
		if err != nil {
			return err
		}
		_, _ = f.Write([]byte("orig"))
		f.Close()
		return errors.New("disk full")
	}

	err := s.Save([]byte("replacement"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, s.BackupExists("personal"), "partial backup must be cleaned up")

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("original bytes"), data)
}

func TestLoadMissing(t *testing.T) {
	s, _ := newTestStore(t, "personal")

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoTarget(t *testing.T) {
	s := NewFileStore(t.TempDir())

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoTarget)
	assert.ErrorIs(t, s.Save([]byte("x")), ErrNoTarget)
	_, err = s.Exists()
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestSetTargetValidatesName(t *testing.T) {
	s := NewFileStore(t.TempDir())

	assert.ErrorIs(t, s.SetTarget("../escape"), security.ErrNameEscapes)
	assert.ErrorIs(t, s.SetTarget(""), security.ErrEmptyName)
	assert.Equal(t, "", s.Target())

	require.NoError(t, s.SetTarget("work"))
	assert.Equal(t, "work", s.Target())
}

func TestListAvailable(t *testing.T) {
	s, dir := newTestStore(t, "work")

	names, err := s.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Save([]byte("w")))
	require.NoError(t, s.SetTarget("personal"))
	require.NoError(t, s.Save([]byte("p")))

	// Noise that must not be listed
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old"+BackupExtension), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"+Extension), nil, 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir"+Extension), 0700))

	names, err = s.ListAvailable()
	require.NoError(t, err)
	assert.Equal(t, []string{"personal", "work"}, names)
}

func TestSaveRecordsCatalog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vaults")
	catalog := NewCatalog(dir)
	s := NewFileStore(dir, WithCatalog(catalog))
	require.NoError(t, s.SetTarget("personal"))

	require.NoError(t, s.Save([]byte("one")))
	require.NoError(t, s.Save([]byte("two!")))

	rec, err := catalog.Get("personal")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(2), rec.Commits)
	assert.Equal(t, int64(4), rec.Size)
	assert.Equal(t, Digest([]byte("two!")), rec.Digest)
}

func TestFailedSaveDoesNotTouchCatalog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vaults")
	catalog := NewCatalog(dir)
	s := NewFileStore(dir, WithCatalog(catalog))
	require.NoError(t, s.SetTarget("personal"))
	require.NoError(t, s.Save([]byte("one")))

	s.syncFile = func(*os.File) error { return errors.New("sync failed") }
	require.Error(t, s.Save([]byte("two")))

	rec, err := catalog.Get("personal")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(1), rec.Commits)
	assert.Equal(t, Digest([]byte("one")), rec.Digest)
}

func TestPath(t *testing.T) {
	s := NewFileStore("/srv/vaults")
	assert.Equal(t, "", s.Path())

	require.NoError(t, s.SetTarget("work"))
	assert.Equal(t, filepath.Join("/srv/vaults", "work"+Extension), s.Path())
}
