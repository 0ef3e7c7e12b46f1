package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/illarion/passvault/cmd"
	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/logger"
)

func main() {
	command := "shell"
	var args []string
	if len(os.Args) >= 2 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	switch command {
	case "help", "-h", "--help":
		if len(args) == 0 {
			printUsage()
			return
		}
		printCommandHelp(args[0])
		return
	case "completion":
		runCompletion(args)
		return
	}

	env := setup()
	switch command {
	case "shell":
		runShell(env, args)
	case "create":
		runCreate(env, args)
	case "ls", "list":
		runLs(env, args)
	case "add":
		runAdd(env, args)
	case "get":
		runGet(env, args)
	case "rm":
		runRm(env, args)
	case "status":
		runStatus(env, args)
	case "keyring":
		runKeyring(env, args)
	case "forget":
		runForget(env, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup resolves configuration; failing to find the home directory is fatal
func setup() *cmd.Env {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	log.Debug().Str("dir", cfg.Dir).Bool("keyring", cfg.Keyring).Msg("configuration loaded")
	return cmd.NewEnv(cfg, log)
}

// parse parses args for a subcommand and checks the positional count
func parse(fs *pflag.FlagSet, args []string, minArgs, maxArgs int) []string {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	rest := fs.Args()
	if len(rest) < minArgs || len(rest) > maxArgs {
		fmt.Fprintf(os.Stderr, "Usage: passvault %s\n", fs.Name())
		printCommandHelp(fs.Name())
		os.Exit(1)
	}
	return rest
}

func runShell(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("shell", pflag.ExitOnError)
	parse(fs, args, 0, 0)

	cmd.RunShell(env)
}

func runCreate(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("create", pflag.ExitOnError)
	rest := parse(fs, args, 1, 1)

	cmd.Create(env, rest[0])
}

func runLs(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("ls", pflag.ExitOnError)
	rest := parse(fs, args, 0, 1)

	name := ""
	if len(rest) == 1 {
		name = rest[0]
	}
	cmd.Ls(env, name)
}

func runAdd(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("add", pflag.ExitOnError)
	rest := parse(fs, args, 3, 3)

	cmd.Add(env, rest[0], rest[1], rest[2])
}

func runGet(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("get", pflag.ExitOnError)
	passwordOnly := fs.BoolP("password", "p", false, "Print only the password")
	rest := parse(fs, args, 2, 2)

	cmd.Get(env, rest[0], rest[1], *passwordOnly)
}

func runRm(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("rm", pflag.ExitOnError)
	force := fs.BoolP("force", "f", false, "Remove without confirmation")
	rest := parse(fs, args, 2, 2)

	cmd.Remove(env, rest[0], rest[1], *force)
}

func runStatus(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("status", pflag.ExitOnError)
	parse(fs, args, 0, 0)

	cmd.Status(env)
}

func runKeyring(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("keyring", pflag.ExitOnError)
	rest := parse(fs, args, 2, 2)

	switch rest[0] {
	case "save":
		cmd.KeyringSave(env, rest[1])
	case "delete":
		cmd.KeyringDelete(env, rest[1])
	case "status":
		cmd.KeyringStatus(env, rest[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", rest[0])
		printCommandHelp("keyring")
		os.Exit(1)
	}
}

func runForget(env *cmd.Env, args []string) {
	fs := pflag.NewFlagSet("forget", pflag.ExitOnError)
	rest := parse(fs, args, 1, 1)

	cmd.Forget(env, rest[0])
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: passvault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("passvault - Local encrypted password vaults")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  passvault [command] [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  shell       Start the interactive shell (default)")
	fmt.Println("  create      Create a new vault")
	fmt.Println("  ls          List vaults, or the entries of a vault")
	fmt.Println("  add         Add an entry to a vault")
	fmt.Println("  get         Show an entry")
	fmt.Println("  rm          Remove an entry from a vault")
	fmt.Println("  status      Verify vault files against the catalog")
	fmt.Println("  keyring     Manage vault passwords in the OS keyring")
	fmt.Println("  forget      Drop catalog data of a deleted vault")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  VAULT_PATH       Vault directory (default ~/.vault)")
	fmt.Println("  VAULT_PASSWORD   Vault password for non-interactive use")
	fmt.Println("  VAULT_LOG_LEVEL  Diagnostic log level (default warn)")
	fmt.Println("  VAULT_KEYRING    Use the OS keyring (default true)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  passvault create personal             # Create new vault")
	fmt.Println("  passvault add personal github alice   # Add an entry")
	fmt.Println("  passvault get -p personal github      # Print a password")
	fmt.Println()
	fmt.Println("Use 'passvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "shell":
		fmt.Println("passvault shell")
		fmt.Println()
		fmt.Println("Starts the interactive shell. Changes stay in memory until 'commit'.")
		fmt.Println("Type 'help' inside the shell for its commands.")
	case "create":
		fmt.Println("passvault create <vault>")
		fmt.Println()
		fmt.Println("Creates an empty vault in the vault directory.")
		fmt.Println("Prompts for a password twice unless VAULT_PASSWORD is set.")
		fmt.Println("The password is not stored anywhere - you must remember it.")
	case "ls", "list":
		fmt.Println("passvault ls [vault]")
		fmt.Println()
		fmt.Println("Without arguments, lists vaults. With a vault name, unlocks it and")
		fmt.Println("lists its entries (passwords are not shown).")
	case "add":
		fmt.Println("passvault add <vault> <service> <username>")
		fmt.Println()
		fmt.Println("Adds an entry and commits the vault. Prompts for the entry password.")
	case "get":
		fmt.Println("passvault get [-p|--password] <vault> <service>")
		fmt.Println()
		fmt.Println("Shows an entry.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -p, --password  Print only the password")
	case "rm":
		fmt.Println("passvault rm [-f|--force] <vault> <service>")
		fmt.Println()
		fmt.Println("Removes an entry and commits the vault.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -f, --force  Remove without confirmation")
	case "status":
		fmt.Println("passvault status")
		fmt.Println()
		fmt.Println("Shows every vault with its catalog record and checks that each file")
		fmt.Println("still matches the digest of its last commit. Warns about leftover")
		fmt.Println("backups and vault files exposed to git.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "keyring":
		fmt.Println("passvault keyring <save|delete|status> <vault>")
		fmt.Println()
		fmt.Println("Manages the vault password in the OS keyring. When stored, commands")
		fmt.Println("use it instead of prompting. Disable with VAULT_KEYRING=false.")
	case "forget":
		fmt.Println("passvault forget <vault>")
		fmt.Println()
		fmt.Println("Removes the catalog record and keyring password of a vault whose")
		fmt.Println("file has been deleted.")
	case "completion":
		fmt.Println("passvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(passvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(passvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  passvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
