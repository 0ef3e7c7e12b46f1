package cmd

import (
	"fmt"

	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/vault"
)

// Add stores a new entry in a vault and commits it
func Add(env *Env, name, service, username string) {
	err := env.withVault(name, func(eng *vault.Engine) error {
		password, err := env.ReadPasswordConfirm(fmt.Sprintf("Password for %s: ", service))
		if err != nil {
			return err
		}
		defer crypto.ClearBytes(password)

		if err := eng.Add(service, username, password); err != nil {
			return err
		}
		return eng.Commit()
	})
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Added %s to %s\n", service, name)
}
