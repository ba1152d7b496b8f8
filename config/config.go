// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreBolt   = "bolt"
	StoreMemory = "memory"
)

// Recorder backends.
const (
	RecorderSQLite = "sqlite"
	RecorderNone   = "none"
)

// Config holds the vault node configuration.
type Config struct {
	DataDir      string `yaml:"data_dir" env:"POOLVAULT_DATA_DIR"`
	Store        string `yaml:"store" env:"POOLVAULT_STORE"`
	Recorder     string `yaml:"recorder" env:"POOLVAULT_RECORDER"`
	LogLevel     string `yaml:"log_level" env:"POOLVAULT_LOG_LEVEL"`
	LogFile      string `yaml:"log_file" env:"POOLVAULT_LOG_FILE"`
	MonitorCron  string `yaml:"monitor_cron" env:"POOLVAULT_MONITOR_CRON"`
	VaultAccount string `yaml:"vault_account" env:"POOLVAULT_VAULT_ACCOUNT"`

	Policy Policy `yaml:"policy" envPrefix:"POOLVAULT_POLICY_"`
}

// Policy selects the optional enforcement rules of the vault controller.
// All enforcement flags default to off, matching the permissive behavior.
type Policy struct {
	EnforceCap          bool `yaml:"enforce_cap" env:"ENFORCE_CAP"`
	EnforcePhaseOnRepay bool `yaml:"enforce_phase_on_repay" env:"ENFORCE_PHASE_ON_REPAY"`
	EnforcePhaseOnClaim bool `yaml:"enforce_phase_on_claim" env:"ENFORCE_PHASE_ON_CLAIM"`
	VerifyInvariants    bool `yaml:"verify_invariants" env:"VERIFY_INVARIANTS"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		Store:        StoreBolt,
		Recorder:     RecorderSQLite,
		LogLevel:     "info",
		MonitorCron:  "0 */10 * * * *",
		VaultAccount: "vault",
		Policy:       Policy{VerifyInvariants: true},
	}
}

// DefaultDataDir returns ~/.poolvault, falling back to the working
// directory when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".poolvault"
	}
	return filepath.Join(home, ".poolvault")
}

// ConfigPath returns the configuration file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig reads the YAML file at path over DefaultConfig and then applies
// POOLVAULT_* environment overrides. Keys absent from the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from POOLVAULT_* environment variables.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEnv, err)
	}
	return nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	data := append([]byte("# Pool Vault Configuration\n"), body...)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
