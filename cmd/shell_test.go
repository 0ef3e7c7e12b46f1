package cmd

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/storage"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	t.Setenv(config.PasswordEnv, "")
	cfg := &config.Config{Dir: t.TempDir(), LogLevel: "warn", Keyring: false}
	return NewEnv(cfg, zerolog.Nop())
}

// runShell feeds script to a shell over env and returns its output
func runShell(t *testing.T, env *Env, script string) string {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	eng := env.NewEngine()
	defer eng.Close()

	s := NewShell(env, eng)
	s.SetConsole(&plainConsole{r: bufio.NewReader(strings.NewReader(script)), w: &out})
	s.Run()
	return out.String()
}

func vaultFile(env *Env, name string) string {
	return filepath.Join(env.Config.Dir, name+storage.Extension)
}

func TestShellLifecycle(t *testing.T) {
	env := newTestEnv(t)

	out := runShell(t, env, strings.Join([]string{
		"create personal", "pw1", "pw1",
		"add github alice", "s3cret",
		"commit",
		"lock",
		"ls",
		"unlock personal", "wrongpw",
		"unlock personal", "pw1",
		"get github",
		"exit",
	}, "\n")+"\n")

	assert.Contains(t, out, "Vault 'personal' created.")
	assert.Contains(t, out, "Entry 'github' added.")
	assert.Contains(t, out, "Changes committed.")
	assert.Contains(t, out, "Vault 'personal' locked.")
	assert.Contains(t, out, "  personal\n")
	assert.Contains(t, out, "Error: invalid password or corrupted vault")
	assert.Contains(t, out, "Vault 'personal' unlocked.")
	assert.Contains(t, out, "github\n  user: alice\n  pass: s3cret\n")
	assert.FileExists(t, vaultFile(env, "personal"))
}

func TestShellPrompt(t *testing.T) {
	env := newTestEnv(t)
	out := runShell(t, env, "create work\npw\npw\nadd a b\nc\ncommit\nadd d e\nf\nexit\n2\n")

	assert.Contains(t, out, "vault[locked]> ")
	assert.Contains(t, out, "vault[work|0]> ")
	assert.Contains(t, out, "vault[work*|1]> ")
	assert.Contains(t, out, "vault[work|1]> ")
	assert.Contains(t, out, "vault[work*|2]> ")
}

func TestShellExitCancelThenDiscard(t *testing.T) {
	env := newTestEnv(t)
	out := runShell(t, env, "create work\npw\npw\nadd a b\nc\nexit\n3\nls\nexit\n2\n")

	assert.Contains(t, out, "You have uncommitted changes.")
	assert.Contains(t, out, "2) Exit without committing")
	// still unlocked after cancel
	assert.Contains(t, out, "SERVICE")
	assert.NoFileExists(t, vaultFile(env, "work"))
}

func TestShellExitCommit(t *testing.T) {
	env := newTestEnv(t)
	runShell(t, env, "create work\npw\npw\nadd a b\nc\nexit\n1\n")

	assert.FileExists(t, vaultFile(env, "work"))
}

func TestShellEOFDiscards(t *testing.T) {
	env := newTestEnv(t)
	out := runShell(t, env, "create work\npw\npw\nadd a b\nc\n")

	assert.Contains(t, out, "Uncommitted changes discarded.")
	assert.NoFileExists(t, vaultFile(env, "work"))
}

func TestShellLockDirty(t *testing.T) {
	env := newTestEnv(t)
	out := runShell(t, env, "create work\npw\npw\nadd a b\nc\nlock\n3\nlock\n1\nexit\n")

	assert.Contains(t, out, "1) Commit and lock")
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, out, "Vault 'work' locked.")
	assert.FileExists(t, vaultFile(env, "work"))
}

func TestShellRemoveConfirm(t *testing.T) {
	env := newTestEnv(t)
	out := runShell(t, env, "create work\npw\npw\nadd a b\nc\nrm a\nn\nrm a\ny\nrm a\nexit\n2\n")

	assert.Contains(t, out, "Aborted.")
	assert.Contains(t, out, "Entry 'a' removed.")
	assert.Contains(t, out, "Error: entry not found: a")
}

func TestShellDiff(t *testing.T) {
	env := newTestEnv(t)
	out := runShell(t, env, "create work\npw\npw\ndiff\nadd a b\nc\ndiff\nexit\n2\n")

	assert.Contains(t, out, "No uncommitted changes.")
	assert.Contains(t, out, "+ a\tb\t")
}

func TestShellErrors(t *testing.T) {
	env := newTestEnv(t)
	out := runShell(t, env, strings.Join([]string{
		"get github",
		"lock",
		"unlock",
		"unlock nope", "pw",
		"frobnicate",
		"create ../evil", "pw", "pw",
		"create work", "pw", "other",
		"create work", "pw", "pw",
		"create again",
		"add x",
		"exit",
	}, "\n")+"\n")

	assert.Contains(t, out, "Error: no vault is unlocked")
	assert.Contains(t, out, "Error: vault is already locked")
	assert.Contains(t, out, "Usage: unlock <vault>")
	assert.Contains(t, out, "Error: vault not found: nope")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Contains(t, out, "Error: storage error")
	assert.Contains(t, out, "Error: passwords do not match")
	assert.Contains(t, out, "Error: a vault is already unlocked")
	assert.Contains(t, out, "Usage: add <service> <username>")
}

func TestShellHelpAndClear(t *testing.T) {
	env := newTestEnv(t)
	out := runShell(t, env, "help\nclear\nexit\n")

	assert.Contains(t, out, "add <svc> <user>")
	assert.Contains(t, out, "\x1b[2J\x1b[H")
}

func TestShellComplete(t *testing.T) {
	env := newTestEnv(t)
	eng := env.NewEngine()
	defer eng.Close()
	s := NewShell(env, eng)

	assert.Equal(t, []string{"clear", "commit", "create"}, s.Complete("c"))
	assert.Equal(t, []string{"unlock"}, s.Complete("un"))
	assert.Len(t, s.Complete(""), len(shellCommands))

	require.NoError(t, eng.CreateVault("work", []byte("pw")))
	require.NoError(t, eng.Add("github", "alice", []byte("pw")))
	require.NoError(t, eng.Add("gitlab", "alice", []byte("pw")))

	assert.Equal(t, []string{"github", "gitlab"}, s.Complete("get "))
	assert.Equal(t, []string{"gitlab"}, s.Complete("rm gitl"))
	assert.Empty(t, s.Complete("commit x"))
}

func TestCompleteLine(t *testing.T) {
	assert.Equal(t, "unlock ", completeLine("un", []string{"unlock"}))
	assert.Equal(t, "c", completeLine("c", []string{"clear", "commit"}))
	assert.Equal(t, "get git", completeLine("get g", []string{"github", "gitlab"}))
	assert.Equal(t, "get github ", completeLine("get gith", []string{"github"}))
}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}
