package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/dayboard/internal/model"
)

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var v int
	if err := s.db.Get(&v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		currentVersion, err = s.SchemaVersion()
		if err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

type snapshotRow struct {
	Account   string `db:"account"`
	Payload   string `db:"payload"`
	FetchedAt int64  `db:"fetched_at"`
	SavedAt   int64  `db:"saved_at"`
}

// SaveSnapshot replaces the cached snapshot for account.
func (s *SQLiteStore) SaveSnapshot(
	ctx context.Context,
	account string,
	snap model.DashboardSnapshot,
) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot for %s: %w", account, err)
	}

	fetched := snap.FetchedAt
	if fetched.IsZero() {
		fetched = s.now()
	}

	row := snapshotRow{
		Account:   account,
		Payload:   string(payload),
		FetchedAt: fetched.Unix(),
		SavedAt:   s.now().Unix(),
	}

	const query = `
		INSERT INTO snapshots (account, payload, fetched_at, saved_at)
		VALUES (:account, :payload, :fetched_at, :saved_at)
		ON CONFLICT(account) DO UPDATE SET
			payload    = excluded.payload,
			fetched_at = excluded.fetched_at,
			saved_at   = excluded.saved_at`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("saving snapshot for %s: %w", account, err)
	}
	return nil
}

// LoadSnapshot returns the cached snapshot for account, marked Stale.
func (s *SQLiteStore) LoadSnapshot(
	ctx context.Context,
	account string,
) (*model.DashboardSnapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM snapshots WHERE account = ?", account)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot for %s: %w", account, err)
	}

	var snap model.DashboardSnapshot
	if err := json.Unmarshal([]byte(row.Payload), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot for %s: %w", account, err)
	}
	snap.Stale = true
	return &snap, nil
}

// DeleteSnapshot removes the cached snapshot for account.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, account string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE account = ?", account); err != nil {
		return fmt.Errorf("deleting snapshot for %s: %w", account, err)
	}
	return nil
}

// PruneSnapshots drops snapshots fetched before olderThanUnix and returns
// how many were removed.
func (s *SQLiteStore) PruneSnapshots(ctx context.Context, olderThanUnix int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE fetched_at < ?", olderThanUnix)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned snapshots: %w", err)
	}
	return n, nil
}
