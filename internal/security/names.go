package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxNameLength bounds vault names so that name + extension stays a
// portable file name.
const MaxNameLength = 64

var (
	ErrEmptyName   = errors.New("empty vault name not allowed")
	ErrNameEscapes = errors.New("vault name escapes vault directory")
	ErrInvalidName = errors.New("invalid vault name")
)

// ValidateName checks a user-supplied vault name. A valid name is a single
// path element made of letters, digits, '.', '_' and '-', does not start
// with a dot and is at most MaxNameLength bytes long.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	if err := ValidateFileName(name); err != nil {
		return err
	}

	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q must not start with a dot", ErrInvalidName, name)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, r)
		}
	}
	return nil
}

// ValidateFileName checks that name refers to a file directly inside a
// directory: local, a single element, and not "." or "..".
func ValidateFileName(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	// filepath.IsLocal rejects absolute paths, ".." escapes and
	// reserved names on Windows
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %s", ErrNameEscapes, name)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name || name == "." {
		return fmt.Errorf("%w: %s", ErrNameEscapes, name)
	}
	return nil
}
