package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/keyring"
)

// Forget drops the catalog record and keyring password of a vault whose
// file no longer exists
func Forget(env *Env, name string) {
	if err := env.Store.SetTarget(name); err != nil {
		HandleError(err)
	}
	exists, err := env.Store.Exists()
	if err != nil {
		HandleError(err)
	}
	if exists {
		fmt.Fprintf(os.Stderr, "Error: vault %s still exists\n", name)
		fmt.Fprintf(os.Stderr, "Delete %s first\n", env.Store.Path())
		os.Exit(1)
	}

	rec, err := env.Catalog.Get(name)
	if err != nil {
		HandleError(err)
	}
	if rec == nil {
		fmt.Printf("%s is not in the catalog\n", name)
		return
	}

	if err := keyring.DeletePassword(rec.ID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
	}
	if err := env.Catalog.Forget(name); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Forgot %s\n", name)
}
