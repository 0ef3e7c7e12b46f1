package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/illarion/passvault/internal/crypto"
)

// Create makes a new, empty vault and writes it to disk
func Create(env *Env, name string) {
	if err := create(env, os.Stdout, name); err != nil {
		HandleError(err)
	}
}

func create(env *Env, w io.Writer, name string) error {
	eng := env.NewEngine()
	defer eng.Close()

	password, err := env.GetPasswordForCreate()
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	if err := eng.CreateVault(name, password); err != nil {
		return err
	}
	if err := eng.Commit(); err != nil {
		return err
	}

	fmt.Fprintf(w, "✓ Created vault %s\n", name)
	return nil
}
