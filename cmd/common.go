package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/keyring"
	"github.com/illarion/passvault/internal/storage"
	"github.com/illarion/passvault/internal/vault"
)

// Env carries what every command needs: settings, logger and the vault
// directory's store and catalog
type Env struct {
	Config  *config.Config
	Log     zerolog.Logger
	Store   *storage.FileStore
	Catalog *storage.Catalog

	// stdin is shared by every line and password read so buffered input
	// is not lost between prompts
	stdin *bufio.Reader
}

// NewEnv wires the store and catalog for cfg
func NewEnv(cfg *config.Config, log zerolog.Logger) *Env {
	catalog := storage.NewCatalog(cfg.Dir)
	return &Env{
		Config:  cfg,
		Log:     log,
		Catalog: catalog,
		Store: storage.NewFileStore(cfg.Dir,
			storage.WithCatalog(catalog),
			storage.WithLogger(log),
		),
		stdin: bufio.NewReader(os.Stdin),
	}
}

// NewEngine returns a locked engine over the env's store
func (e *Env) NewEngine() *vault.Engine {
	return vault.New(e.Store, crypto.NewAESGCM(), vault.WithLogger(e.Log))
}

// ReadPassword reads a password from the terminal without echoing. When
// stdin is not a terminal, one line is read instead.
// The caller is responsible for calling crypto.ClearBytes on the result.
func (e *Env) ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := readLine(e.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		return []byte(line), nil
	}

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func (e *Env) ReadPasswordConfirm(prompt string) ([]byte, error) {
	password1, err := e.ReadPassword(prompt)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := e.ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, errors.New("passwords do not match")
	}

	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// Confirm asks a yes/no question, defaulting to no
func (e *Env) Confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	line, err := readLine(e.stdin)
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// GetPasswordForCreate reads VAULT_PASSWORD or prompts with confirmation
func (e *Env) GetPasswordForCreate() ([]byte, error) {
	if password := config.PasswordFromEnv(); password != nil {
		return password, nil
	}
	return e.ReadPasswordConfirm("New vault password: ")
}

// Unlock opens name on eng. It tries the OS keyring (when enabled), then
// VAULT_PASSWORD, then a prompt. A keyring password that no longer works
// falls through to the prompt.
func (e *Env) Unlock(eng *vault.Engine, name string) error {
	return e.UnlockWith(eng, name, e.ReadPassword)
}

// UnlockWith is Unlock with a custom prompt
func (e *Env) UnlockWith(eng *vault.Engine, name string, readPassword func(prompt string) ([]byte, error)) error {
	if password := e.keyringPassword(name); password != nil {
		err := eng.Unlock(name, password)
		crypto.ClearBytes(password)
		if !errors.Is(err, vault.ErrInvalidPasswordOrCorrupted) {
			return err
		}
		fmt.Fprintln(os.Stderr, "Keyring password did not work")
	}

	if password := config.PasswordFromEnv(); password != nil {
		defer crypto.ClearBytes(password)
		return eng.Unlock(name, password)
	}

	password, err := readPassword(fmt.Sprintf("Password for %s: ", name))
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)
	return eng.Unlock(name, password)
}

func (e *Env) keyringPassword(name string) []byte {
	if !e.Config.Keyring {
		return nil
	}
	rec, err := e.Catalog.Get(name)
	if err != nil || rec == nil {
		return nil
	}
	password, err := keyring.GetPassword(rec.ID)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			e.Log.Debug().Err(err).Str("vault", name).Msg("keyring lookup failed")
		}
		return nil
	}
	return password
}

// ErrorMessage renders an engine error for the user
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, vault.ErrInvalidPasswordOrCorrupted):
		return "invalid password or corrupted vault"
	case errors.Is(err, vault.ErrLocked):
		return "no vault is unlocked (use 'unlock <vault>' first)"
	case errors.Is(err, vault.ErrAlreadyUnlocked):
		return "a vault is already unlocked (use 'lock' first)"
	case errors.Is(err, vault.ErrAlreadyLocked):
		return "vault is already locked"
	case errors.Is(err, storage.ErrBackupMismatch):
		return "backup verification failed, vault file left unchanged"
	default:
		return err.Error()
	}
}

// HandleError prints err and exits
func HandleError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", ErrorMessage(err))
	switch {
	case errors.Is(err, vault.ErrVaultNotFound):
		fmt.Fprintf(os.Stderr, "Run 'passvault ls' to see available vaults\n")
	case errors.Is(err, vault.ErrVaultExists):
		fmt.Fprintf(os.Stderr, "Use 'passvault ls <vault>' to see its entries\n")
	}
	os.Exit(1)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// withVault unlocks name, runs fn and locks again
func (e *Env) withVault(name string, fn func(eng *vault.Engine) error) error {
	eng := e.NewEngine()
	defer eng.Close()

	if err := e.Unlock(eng, name); err != nil {
		return err
	}
	return fn(eng)
}
