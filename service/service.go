// Package service assembles a vault controller and the resources it owns
// from a config.Config: the accounting store, the event journal, the log
// sink and the cron monitor.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/bitfsorg/poolvault-go/accounting"
	"github.com/bitfsorg/poolvault-go/config"
	"github.com/bitfsorg/poolvault-go/monitor"
	"github.com/bitfsorg/poolvault-go/recorder"
	"github.com/bitfsorg/poolvault-go/vault"
)

// File names inside the data directory.
const (
	StoreFile   = "vault.db"
	JournalFile = "events.db"
)

// Service is a Controller together with the resources it owns.
type Service struct {
	Controller *vault.Controller
	Store      accounting.Store
	Recorder   recorder.Recorder
	Logger     *slog.Logger
	// Monitor is nil when cfg.MonitorCron is empty.
	Monitor *monitor.Monitor
	Config  config.Config

	logCloser io.Closer
}

// Open builds a Service from cfg. Options in opts are applied after the
// ones derived from cfg, so callers can add an asset mover or override the
// authorizer. ctx bounds the monitor's scheduled checks.
func Open(ctx context.Context, cfg config.Config, opts ...vault.Option) (*Service, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	logger, logCloser, err := config.OpenLogger(cfg)
	if err != nil {
		return nil, err
	}

	var store accounting.Store
	switch cfg.Store {
	case config.StoreBolt:
		bs, err := accounting.OpenBoltStore(filepath.Join(cfg.DataDir, StoreFile))
		if err != nil {
			_ = logCloser.Close()
			return nil, fmt.Errorf("service: open store: %w", err)
		}
		store = bs
	default:
		store = accounting.NewMemStore()
	}

	var rec recorder.Recorder
	switch cfg.Recorder {
	case config.RecorderSQLite:
		sr, err := recorder.NewSQLiteRecorder(filepath.Join(cfg.DataDir, JournalFile), logger)
		if err != nil {
			_ = store.Close()
			_ = logCloser.Close()
			return nil, fmt.Errorf("service: open journal: %w", err)
		}
		rec = sr
	default:
		rec = recorder.NewNoopRecorder()
	}

	base := []vault.Option{
		vault.WithLogger(logger),
		vault.WithRecorder(rec),
		vault.WithPolicy(vault.PolicyFromConfig(cfg.Policy)),
		vault.WithVaultAccount(accounting.Principal(cfg.VaultAccount)),
	}
	ctrl := vault.New(store, append(base, opts...)...)

	s := &Service{
		Controller: ctrl,
		Store:      store,
		Recorder:   rec,
		Logger:     logger,
		Config:     cfg,
		logCloser:  logCloser,
	}

	if cfg.MonitorCron != "" {
		mon := monitor.New(ctx, ctrl, rec, logger)
		if err := mon.Register(cfg.MonitorCron); err != nil {
			_ = s.closeResources()
			return nil, err
		}
		mon.Start()
		s.Monitor = mon
	}

	logger.Info("vault service opened",
		"store", cfg.Store, "recorder", cfg.Recorder, "data_dir", cfg.DataDir, "monitor", cfg.MonitorCron)
	return s, nil
}

// Close stops the monitor, then releases the journal, the store and the
// log file.
func (s *Service) Close() error {
	if s.Monitor != nil {
		s.Monitor.Stop()
	}
	return s.closeResources()
}

func (s *Service) closeResources() error {
	return errors.Join(s.Recorder.Close(), s.Store.Close(), s.logCloser.Close())
}
