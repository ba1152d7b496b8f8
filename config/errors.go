// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidStore indicates the store backend is not recognized.
	ErrInvalidStore = errors.New("config: invalid store (must be \"bolt\" or \"memory\")")

	// ErrInvalidRecorder indicates the recorder backend is not recognized.
	ErrInvalidRecorder = errors.New("config: invalid recorder (must be \"sqlite\" or \"none\")")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrEmptyVaultAccount indicates the vault's own ledger account is empty.
	ErrEmptyVaultAccount = errors.New("config: vault account must not be empty")

	// ErrInvalidMonitorCron indicates the monitor schedule is not a valid cron spec.
	ErrInvalidMonitorCron = errors.New("config: invalid monitor cron spec")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigFile indicates the configuration file is not valid YAML.
	ErrInvalidConfigFile = errors.New("config: invalid configuration file")

	// ErrInvalidEnv indicates an environment override could not be parsed.
	ErrInvalidEnv = errors.New("config: invalid environment override")
)
