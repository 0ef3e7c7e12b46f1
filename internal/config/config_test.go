package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VAULT_PATH", "")
	t.Setenv("VAULT_LOG_LEVEL", "")
	t.Setenv("VAULT_KEYRING", "")
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := setHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vault"), cfg.Dir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Keyring)
}

func TestLoadFromEnv(t *testing.T) {
	home := setHome(t)
	t.Setenv("VAULT_PATH", "secrets")
	t.Setenv("VAULT_LOG_LEVEL", "debug")
	t.Setenv("VAULT_KEYRING", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "secrets"), cfg.Dir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Keyring)
}

func TestLoadAbsolutePath(t *testing.T) {
	setHome(t)
	dir := t.TempDir()
	t.Setenv("VAULT_PATH", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
}

func TestLoadConfigFile(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ".vault")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("log_level: info\nkeyring: false\n"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Keyring)
	assert.Equal(t, dir, cfg.Dir)

	t.Setenv("VAULT_LOG_LEVEL", "error")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadBadConfigFile(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ".vault")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: [\n"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestResolveDir(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"", "/home/u/.vault"},
		{"vaults", "/home/u/vaults"},
		{"~/vaults", "/home/u/vaults"},
		{"/srv/vaults/", "/srv/vaults"},
		{"a/../b", "/home/u/b"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDir("/home/u", tt.dir))
		})
	}
}

func TestPasswordFromEnv(t *testing.T) {
	t.Setenv(PasswordEnv, "")
	assert.Nil(t, PasswordFromEnv())

	t.Setenv(PasswordEnv, "hunter2")
	assert.Equal(t, []byte("hunter2"), PasswordFromEnv())
}
