package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/illarion/passvault/internal/vault"
)

// Ls lists vaults, or the entries of one vault when name is given
func Ls(env *Env, name string) {
	if name == "" {
		eng := env.NewEngine()
		names, err := eng.ListVaults()
		if err != nil {
			HandleError(err)
		}
		printVaults(os.Stdout, names)
		return
	}

	err := env.withVault(name, func(eng *vault.Engine) error {
		entries, err := eng.ListEntries()
		if err != nil {
			return err
		}
		printEntries(os.Stdout, entries)
		return nil
	})
	if err != nil {
		HandleError(err)
	}
}

func printVaults(w io.Writer, names []string) {
	if len(names) == 0 {
		fmt.Fprintln(w, "No vaults found")
		return
	}
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

func printEntries(w io.Writer, entries []vault.Summary) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "  (no entries)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  SERVICE\tUSERNAME\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Service, e.Username, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
