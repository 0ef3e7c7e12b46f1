package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/illarion/passvault/internal/git"
	"github.com/illarion/passvault/internal/keyring"
	"github.com/illarion/passvault/internal/storage"
)

// VaultState is the integrity status of one vault file
type VaultState string

const (
	StateOK          VaultState = "ok"
	StateModified    VaultState = "modified outside passvault"
	StateUncataloged VaultState = "not in catalog"
	StateMissing     VaultState = "file missing"
	StateUnreadable  VaultState = "unreadable"
)

// VaultStatus describes one vault as seen by status
type VaultStatus struct {
	Name      string
	State     VaultState
	Size      int64
	Record    *storage.Record
	Keyring   bool
	HasBackup bool
}

// Status shows every vault with catalog data, without a password
func Status(env *Env) {
	statuses, err := CollectStatus(env)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Vault directory: %s\n\n", env.Store.Dir())
	printStatus(os.Stdout, statuses)

	var files []string
	for _, s := range statuses {
		if s.State != StateMissing {
			files = append(files, s.Name+storage.Extension)
		}
	}
	if len(files) > 0 {
		fmt.Print(git.FormatExposure(git.CheckExposure(env.Store.Dir(), files)))
	}
}

// CollectStatus verifies each vault file against its catalog record
func CollectStatus(env *Env) ([]VaultStatus, error) {
	names, err := env.Store.ListAvailable()
	if err != nil {
		return nil, err
	}
	records, err := env.Catalog.All()
	if err != nil {
		return nil, err
	}

	all := slices.Clone(names)
	for name := range records {
		if !slices.Contains(all, name) {
			all = append(all, name)
		}
	}
	slices.Sort(all)

	statuses := make([]VaultStatus, 0, len(all))
	for _, name := range all {
		s := VaultStatus{Name: name, HasBackup: env.Store.BackupExists(name)}
		if rec, ok := records[name]; ok {
			s.Record = &rec
			if env.Config.Keyring {
				s.Keyring = keyring.HasPassword(rec.ID)
			}
		}

		switch {
		case !slices.Contains(names, name):
			s.State = StateMissing
		default:
			s.State, s.Size = verifyFile(env.Store, name, s.Record)
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func verifyFile(store *storage.FileStore, name string, rec *storage.Record) (VaultState, int64) {
	if err := store.SetTarget(name); err != nil {
		return StateUnreadable, 0
	}
	data, err := store.Load()
	if err != nil {
		return StateUnreadable, 0
	}
	size := int64(len(data))
	switch {
	case rec == nil:
		return StateUncataloged, size
	case storage.Digest(data) != rec.Digest:
		return StateModified, size
	default:
		return StateOK, size
	}
}

func printStatus(w io.Writer, statuses []VaultStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No vaults found")
		fmt.Fprintln(w, "Run 'passvault create <vault>' to create one")
		return
	}

	for _, s := range statuses {
		icon := "✓"
		if s.State != StateOK {
			icon = "!"
		}
		fmt.Fprintf(w, "%s %s (%s)\n", icon, s.Name, s.State)
		if s.State != StateMissing {
			fmt.Fprintf(w, "    size:      %d bytes\n", s.Size)
		}
		if s.Record != nil {
			fmt.Fprintf(w, "    id:        %s\n", s.Record.ID)
			fmt.Fprintf(w, "    committed: %s (%d commits)\n", s.Record.Committed.Local().Format(time.RFC3339), s.Record.Commits)
		}
		if s.Keyring {
			fmt.Fprintln(w, "    keyring:   password stored")
		}
		if s.HasBackup {
			fmt.Fprintln(w, "    warning:   leftover backup from an interrupted save")
		}
	}
}
