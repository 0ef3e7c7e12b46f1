package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/illarion/passvault/internal/vault"
)

// Get prints one entry. With passwordOnly, only the password is written,
// followed by a newline, for use in scripts.
func Get(env *Env, name, service string, passwordOnly bool) {
	if err := get(env, os.Stdout, name, service, passwordOnly); err != nil {
		HandleError(err)
	}
}

func get(env *Env, w io.Writer, name, service string, passwordOnly bool) error {
	return env.withVault(name, func(eng *vault.Engine) error {
		entry, err := eng.Get(service)
		if err != nil {
			return err
		}
		defer entry.Wipe()

		if passwordOnly {
			if _, err := w.Write(entry.Password); err != nil {
				return err
			}
			_, err := fmt.Fprintln(w)
			return err
		}
		printEntry(w, entry)
		return nil
	})
}

func printEntry(w io.Writer, e *vault.Entry) {
	fmt.Fprintf(w, "service:  %s\n", e.Service)
	fmt.Fprintf(w, "username: %s\n", e.Username)
	fmt.Fprintf(w, "password: %s\n", e.Password)
	fmt.Fprintf(w, "created:  %s\n", e.Created().Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "updated:  %s\n", e.Updated().Local().Format("2006-01-02 15:04:05"))
}
