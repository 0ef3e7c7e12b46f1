package security

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const DirPermSecure = 0700 // Directory: owner rwx only

// Dir confines file operations to one directory using os.Root, so no
// name, symlink or ".." can reach a file outside of it.
type Dir struct {
	root *os.Root
	path string
}

// OpenDir creates path (owner-only permissions) if needed and opens it
// as a confined directory. Close must be called when done.
func OpenDir(path string) (*Dir, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, DirPermSecure); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory root: %w", err)
	}

	return &Dir{root: root, path: absPath}, nil
}

// Close releases the directory handle
func (d *Dir) Close() error {
	if d.root != nil {
		return d.root.Close()
	}
	return nil
}

// Path returns the absolute directory path
func (d *Dir) Path() string {
	return d.path
}

// Join returns the absolute path of a file in the directory
func (d *Dir) Join(name string) string {
	return filepath.Join(d.path, name)
}

// Open opens a file in the directory for reading
func (d *Dir) Open(name string) (*os.File, error) {
	if err := ValidateFileName(name); err != nil {
		return nil, err
	}
	return d.root.Open(name)
}

// OpenFile opens a file in the directory with the given flags
func (d *Dir) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	if err := ValidateFileName(name); err != nil {
		return nil, err
	}
	return d.root.OpenFile(name, flag, perm)
}

// Stat stats a file in the directory
func (d *Dir) Stat(name string) (os.FileInfo, error) {
	if err := ValidateFileName(name); err != nil {
		return nil, err
	}
	return d.root.Stat(name)
}

// Remove removes a file from the directory
func (d *Dir) Remove(name string) error {
	if err := ValidateFileName(name); err != nil {
		return err
	}
	return d.root.Remove(name)
}

// ReadDir lists the directory entries sorted by name
func (d *Dir) ReadDir() ([]os.DirEntry, error) {
	f, err := d.root.Open(".")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

// Sync flushes directory metadata (new or removed entries) to disk
func (d *Dir) Sync() error {
	f, err := d.root.Open(".")
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
