package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/illarion/passvault/internal/vault"
)

var errCancelled = errors.New("cancelled")

// Remove deletes an entry from a vault and commits the change
func Remove(env *Env, name, service string, force bool) {
	if err := remove(env, os.Stdout, name, service, force); err != nil {
		HandleError(err)
	}
}

func remove(env *Env, w io.Writer, name, service string, force bool) error {
	err := env.withVault(name, func(eng *vault.Engine) error {
		entry, err := eng.Get(service)
		if err != nil {
			return err
		}
		entry.Wipe()

		if !force && !env.Confirm(fmt.Sprintf("Remove %s from %s?", service, name)) {
			return errCancelled
		}

		removed, err := eng.Delete(service)
		if err != nil {
			return err
		}
		removed.Wipe()
		return eng.Commit()
	})
	if errors.Is(err, errCancelled) {
		fmt.Fprintln(w, "Cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "✓ Removed %s from %s\n", service, name)
	return nil
}
