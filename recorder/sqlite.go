package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists vault events to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// Compile-time interface check.
var _ Recorder = (*SQLiteRecorder)(nil)

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *slog.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("recorder: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("recorder: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL lets readers inspect the journal while the vault writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vault_events (
			seq       INTEGER PRIMARY KEY AUTOINCREMENT,
			id        TEXT NOT NULL UNIQUE,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			principal TEXT,
			amount    TEXT,
			state     TEXT,
			raised    TEXT,
			repaid    TEXT,
			note      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON vault_events(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_events_principal ON vault_events(principal)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record appends evt to the journal.
func (r *SQLiteRecorder) Record(ctx context.Context, evt *Event) error {
	if evt == nil {
		return fmt.Errorf("recorder: nil event")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO vault_events
		(id, timestamp, kind, principal, amount, state, raised, repaid, note)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		evt.ID, ts.UnixNano(), string(evt.Kind), evt.Principal, evt.Amount,
		evt.State, evt.Raised, evt.Repaid, evt.Note,
	)
	if err != nil {
		return fmt.Errorf("recorder: insert %s event: %w", evt.Kind, err)
	}
	return nil
}

// Events returns journaled events in insertion order. An empty kind
// returns every event.
func (r *SQLiteRecorder) Events(ctx context.Context, kind Kind) ([]*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `SELECT id, timestamp, kind, principal, amount, state, raised, repaid, note
		FROM vault_events`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recorder: query events: %w", err)
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		var (
			evt  Event
			ts   int64
			kind string
		)
		if err := rows.Scan(&evt.ID, &ts, &kind, &evt.Principal, &evt.Amount,
			&evt.State, &evt.Raised, &evt.Repaid, &evt.Note); err != nil {
			return nil, fmt.Errorf("recorder: scan event: %w", err)
		}
		evt.Kind = Kind(kind)
		evt.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, &evt)
	}
	return out, rows.Err()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
