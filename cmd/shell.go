package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/vault"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

var shellCommands = []string{
	"add", "clear", "commit", "create", "diff", "exit", "get",
	"help", "list", "lock", "ls", "quit", "rm", "unlock",
}

// usageError carries the correct form of a mistyped command
type usageError string

func (e usageError) Error() string {
	return "usage: " + string(e)
}

// Shell is the interactive front end over one engine
type Shell struct {
	env *Env
	eng *vault.Engine
	con Console
}

// NewShell creates a shell. SetConsole must be called before Run.
func NewShell(env *Env, eng *vault.Engine) *Shell {
	return &Shell{env: env, eng: eng}
}

// SetConsole sets the line source and output
func (s *Shell) SetConsole(con Console) {
	s.con = con
}

// RunShell starts the interactive shell on the process terminal
func RunShell(env *Env) {
	eng := env.NewEngine()
	defer eng.Close()

	s := NewShell(env, eng)
	con, err := NewConsole(env, s.Complete)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	s.SetConsole(con)
	defer con.Close()

	s.Run()
}

// Run reads and executes commands until exit or end of input
func (s *Shell) Run() {
	fmt.Fprint(s.con, "--- passvault shell (type 'help') ---\n\n")

	for {
		line, err := s.con.ReadLine(s.Prompt())
		if err != nil {
			if errors.Is(err, io.EOF) && !s.confirmExit() {
				continue
			}
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(s.con, "Error: %s\n", err)
			}
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if name := fields[0]; name == "exit" || name == "quit" {
			if s.confirmExit() {
				return
			}
			continue
		}

		if err := s.Execute(fields[0], fields[1:]); err != nil {
			var ue usageError
			if errors.As(err, &ue) {
				fmt.Fprintf(s.con, "Usage: %s\n\n", string(ue))
				continue
			}
			fmt.Fprintf(s.con, "Error: %s\n\n", ErrorMessage(err))
		}
	}
}

// Prompt renders vault[locked]> or vault[name*|count]>
func (s *Shell) Prompt() string {
	if s.eng.IsLocked() {
		return fmt.Sprintf("%s[%s]> ", blue("vault"), red("locked"))
	}
	dirty := ""
	if s.eng.IsDirty() {
		dirty = yellow("*")
	}
	return fmt.Sprintf("%s[%s%s|%s]> ", blue("vault"), green(s.eng.CurrentVault()), dirty, cyan(s.eng.EntryCount()))
}

func usage(text string) error {
	return usageError(text)
}

// Execute runs one shell command
func (s *Shell) Execute(name string, args []string) error {
	switch name {
	case "create":
		if len(args) != 1 {
			return usage("create <vault>")
		}
		return s.create(args[0])
	case "unlock":
		if len(args) != 1 {
			return usage("unlock <vault>")
		}
		if !s.eng.IsLocked() {
			return vault.ErrAlreadyUnlocked
		}
		if err := s.env.UnlockWith(s.eng, args[0], s.con.ReadPassword); err != nil {
			return err
		}
		fmt.Fprintf(s.con, "Vault '%s' unlocked.\n\n", args[0])
	case "lock":
		if s.eng.IsLocked() {
			return vault.ErrAlreadyLocked
		}
		if !s.confirmDiscard("lock") {
			fmt.Fprint(s.con, "Cancelled.\n\n")
			return nil
		}
		name := s.eng.CurrentVault()
		if err := s.eng.Lock(); err != nil {
			return err
		}
		fmt.Fprintf(s.con, "Vault '%s' locked.\n\n", name)
	case "add":
		if len(args) != 2 {
			return usage("add <service> <username>")
		}
		return s.add(args[0], args[1])
	case "get":
		if len(args) != 1 {
			return usage("get <service>")
		}
		entry, err := s.eng.Get(args[0])
		if err != nil {
			return err
		}
		defer entry.Wipe()
		fmt.Fprintf(s.con, "%s\n  user: %s\n  pass: %s\n\n", entry.Service, entry.Username, entry.Password)
	case "rm":
		if len(args) != 1 {
			return usage("rm <service>")
		}
		return s.remove(args[0])
	case "commit":
		if err := s.eng.Commit(); err != nil {
			return err
		}
		fmt.Fprint(s.con, "Changes committed.\n\n")
	case "ls", "list":
		return s.list()
	case "diff":
		return s.diff()
	case "clear":
		fmt.Fprint(s.con, "\x1b[2J\x1b[H")
	case "help":
		fmt.Fprint(s.con, shellHelp)
	default:
		fmt.Fprintf(s.con, "Unknown command: %s (type 'help')\n\n", name)
	}
	return nil
}

func (s *Shell) create(name string) error {
	if !s.eng.IsLocked() {
		return vault.ErrAlreadyUnlocked
	}
	password, err := s.con.ReadPassword("New vault password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)
	confirm, err := s.con.ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(confirm)
	if !crypto.ConstantTimeCompare(password, confirm) {
		return errors.New("passwords do not match")
	}

	if err := s.eng.CreateVault(name, password); err != nil {
		return err
	}
	fmt.Fprintf(s.con, "Vault '%s' created. Use 'commit' to save it.\n\n", name)
	return nil
}

func (s *Shell) add(service, username string) error {
	if s.eng.IsLocked() {
		return vault.ErrLocked
	}
	password, err := s.con.ReadPassword("Service password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	if err := s.eng.Add(service, username, password); err != nil {
		return err
	}
	fmt.Fprintf(s.con, "Entry '%s' added.\n\n", service)
	return nil
}

func (s *Shell) remove(service string) error {
	entry, err := s.eng.Get(service)
	if err != nil {
		return err
	}
	entry.Wipe()

	if !s.confirm(fmt.Sprintf("Remove '%s'?", service)) {
		fmt.Fprint(s.con, "Aborted.\n\n")
		return nil
	}
	removed, err := s.eng.Delete(service)
	if err != nil {
		return err
	}
	removed.Wipe()
	fmt.Fprintf(s.con, "Entry '%s' removed.\n\n", service)
	return nil
}

func (s *Shell) list() error {
	if s.eng.IsLocked() {
		names, err := s.eng.ListVaults()
		if err != nil {
			return err
		}
		printVaults(s.con, names)
	} else {
		entries, err := s.eng.ListEntries()
		if err != nil {
			return err
		}
		printEntries(s.con, entries)
	}
	fmt.Fprintln(s.con)
	return nil
}

func (s *Shell) diff() error {
	committed, current, err := s.eng.Pending()
	if err != nil {
		return err
	}
	lines := vault.DiffSummaries(committed, current)
	if len(lines) == 0 {
		fmt.Fprint(s.con, "No uncommitted changes.\n\n")
		return nil
	}
	for _, l := range lines {
		if l.Op == vault.DiffAdded {
			fmt.Fprintln(s.con, green(l.String()))
		} else {
			fmt.Fprintln(s.con, red(l.String()))
		}
	}
	fmt.Fprintln(s.con)
	return nil
}

func (s *Shell) confirm(question string) bool {
	answer, err := s.con.ReadLine(question + " (y/N): ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// confirmExit returns true when the shell may exit. Unreadable input
// discards uncommitted changes.
func (s *Shell) confirmExit() bool {
	if !s.confirmDiscard("exit") {
		return false
	}
	if !s.eng.IsLocked() {
		_ = s.eng.Lock()
	}
	return true
}

// confirmDiscard asks what to do with uncommitted changes before action.
// It returns false when the user cancels or the commit fails.
func (s *Shell) confirmDiscard(action string) bool {
	if !s.eng.IsDirty() {
		return true
	}

	fmt.Fprint(s.con, "You have uncommitted changes.\n")
	fmt.Fprintf(s.con, "1) Commit and %s\n", action)
	fmt.Fprintf(s.con, "2) %s without committing\n", strings.ToUpper(action[:1])+action[1:])
	fmt.Fprint(s.con, "3) Cancel\n\n")

	choice, err := s.con.ReadLine("Choose an option [1-3]: ")
	if err != nil {
		fmt.Fprint(s.con, "\nUncommitted changes discarded.\n")
		return true
	}
	switch strings.TrimSpace(choice) {
	case "1":
		if err := s.eng.Commit(); err != nil {
			fmt.Fprintf(s.con, "Error: %s\n\n", ErrorMessage(err))
			return false
		}
		return true
	case "2":
		return true
	default:
		return false
	}
}

// Complete returns completion candidates for the last word of line
func (s *Shell) Complete(line string) []string {
	fields := strings.Fields(line)
	trailingSpace := strings.HasSuffix(line, " ")

	var prefix string
	var pool []string
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !trailingSpace):
		if len(fields) == 1 {
			prefix = fields[0]
		}
		pool = shellCommands
	case (len(fields) == 1 && trailingSpace) || (len(fields) == 2 && !trailingSpace):
		if len(fields) == 2 {
			prefix = fields[1]
		}
		switch fields[0] {
		case "unlock":
			pool, _ = s.eng.ListVaults()
		case "get", "rm":
			entries, _ := s.eng.ListEntries()
			for _, e := range entries {
				pool = append(pool, e.Service)
			}
		}
	}

	var out []string
	for _, c := range pool {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// completeLine replaces the last word of line with the longest common
// prefix of candidates, adding a space when there is a single candidate
func completeLine(line string, candidates []string) string {
	common := candidates[0]
	for _, c := range candidates[1:] {
		for !strings.HasPrefix(c, common) {
			common = common[:len(common)-1]
		}
	}
	if len(candidates) == 1 {
		common += " "
	}

	head := ""
	if i := strings.LastIndexByte(line, ' '); i >= 0 {
		head = line[:i+1]
	}
	return head + common
}

const shellHelp = `
create <vault>        Create vault
unlock <vault>        Unlock vault
lock                  Lock vault
add <svc> <user>      Add entry
get <svc>             Get entry
rm <svc>              Remove entry
commit                Save changes
diff                  Show uncommitted changes
ls, list              List vaults or entries
clear                 Clear terminal
help                  Show help
exit, quit            Exit

`
