// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// cronParser accepts the six-field (with seconds) specs the monitor uses.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" && cfg.usesDisk() {
		return ErrEmptyDataDir
	}

	if cfg.Store != StoreBolt && cfg.Store != StoreMemory {
		return ErrInvalidStore
	}

	if cfg.Recorder != RecorderSQLite && cfg.Recorder != RecorderNone {
		return ErrInvalidRecorder
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.VaultAccount == "" {
		return ErrEmptyVaultAccount
	}

	if cfg.MonitorCron != "" {
		if _, err := cronParser.Parse(cfg.MonitorCron); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidMonitorCron, err)
		}
	}

	return nil
}

// usesDisk reports whether any configured backend writes under DataDir.
func (c Config) usesDisk() bool {
	return c.Store == StoreBolt || c.Recorder == RecorderSQLite
}
