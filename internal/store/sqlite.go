package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/safesignal/internal/model"
)

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to ":memory:" is a new database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
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

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
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

// GetFlag reports whether key is set.
func (s *SQLiteStore) GetFlag(ctx context.Context, key string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM flags WHERE key = ?", key)
	if err != nil {
		return false, fmt.Errorf("reading flag %s: %w", key, err)
	}
	return count > 0, nil
}

// SetFlag marks key as set. Setting an already set key refreshes its
// timestamp.
func (s *SQLiteStore) SetFlag(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO flags (key, updated_at) VALUES (?, ?)",
		key, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting flag %s: %w", key, err)
	}
	return nil
}

// ClearFlag removes key. Clearing an unset key is not an error.
func (s *SQLiteStore) ClearFlag(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM flags WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("clearing flag %s: %w", key, err)
	}
	return nil
}

// AppendNotification records a banner in the local history.
func (s *SQLiteStore) AppendNotification(
	ctx context.Context,
	n model.Notification,
) error {
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.UnixMilli(n.ID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, message, type, created_at)
		VALUES (?, ?, ?, ?)`,
		uuid.New().String(), n.Message, string(n.Type), createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}
	return nil
}

// RecentNotifications returns up to limit history entries, newest first.
func (s *SQLiteStore) RecentNotifications(
	ctx context.Context,
	limit int,
) ([]model.NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []model.NotificationRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, message, type, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	return records, nil
}
