package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/keyring"
)

// KeyringSave verifies the vault password and saves it to the OS keyring
func KeyringSave(env *Env, name string) {
	if err := keyringSave(env, os.Stdout, name); err != nil {
		HandleError(err)
	}
}

func keyringSave(env *Env, w io.Writer, name string) error {
	eng := env.NewEngine()
	defer eng.Close()

	password, err := env.ReadPassword(fmt.Sprintf("Password for %s: ", name))
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	if err := eng.Unlock(name, password); err != nil {
		return err
	}
	_ = eng.Lock()

	vaultID, err := env.Catalog.VaultID(name)
	if err != nil {
		return err
	}

	if err := keyring.SavePassword(vaultID, password); err != nil {
		return err
	}

	fmt.Fprintln(w, "Password saved to keyring")
	return nil
}

// KeyringDelete removes the vault password from the OS keyring
func KeyringDelete(env *Env, name string) {
	rec, err := env.Catalog.Get(name)
	if err != nil {
		HandleError(err)
	}
	if rec == nil {
		fmt.Println("No password stored in keyring")
		return
	}

	if err := keyring.DeletePassword(rec.ID); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("No password stored in keyring")
			return
		}
		HandleError(err)
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(env *Env, name string) {
	rec, err := env.Catalog.Get(name)
	if err != nil {
		HandleError(err)
	}

	if rec != nil && keyring.HasPassword(rec.ID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
