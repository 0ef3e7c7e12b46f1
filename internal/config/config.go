// Package config resolves passvault settings from defaults, an optional
// config.yaml in the vault directory and VAULT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "VAULT"
	PasswordEnv    = "VAULT_PASSWORD"
	ConfigFileName = "config"
	ConfigFileType = "yaml"

	defaultDir      = ".vault"
	defaultLogLevel = "warn"
)

// ErrNoHome is returned when the user's home directory cannot be resolved
var ErrNoHome = errors.New("cannot determine home directory")

// Config holds resolved settings
type Config struct {
	// Dir is the absolute vault directory
	Dir      string `mapstructure:"path"`
	LogLevel string `mapstructure:"log_level"`
	Keyring  bool   `mapstructure:"keyring"`
}

// Load resolves configuration. VAULT_PATH picks the directory; the other
// keys may also come from <dir>/config.yaml, with the environment winning.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil, fmt.Errorf("%w: %v", ErrNoHome, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("path", defaultDir)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("keyring", true)

	dir := ResolveDir(home, v.GetString("path"))

	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// The directory is fixed before the config file is read.
	cfg.Dir = dir
	return cfg, nil
}

// ResolveDir makes dir absolute, treating relative paths as relative to home
func ResolveDir(home, dir string) string {
	if dir == "" {
		dir = defaultDir
	}
	if len(dir) > 1 && dir[0] == '~' && (dir[1] == '/' || dir[1] == filepath.Separator) {
		dir = dir[2:]
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(home, dir)
	}
	return filepath.Clean(dir)
}

// PasswordFromEnv returns VAULT_PASSWORD as a fresh byte slice the caller
// must wipe, or nil if unset
func PasswordFromEnv() []byte {
	pw, ok := os.LookupEnv(PasswordEnv)
	if !ok || pw == "" {
		return nil
	}
	return []byte(pw)
}
