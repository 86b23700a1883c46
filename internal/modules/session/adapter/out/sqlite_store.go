package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"invsync/internal/modules/session/domain"
	sessionout "invsync/internal/modules/session/port/out"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the active session so separate CLI invocations see
// the same inventory.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

var _ sessionout.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS active_session (
  slot INTEGER PRIMARY KEY CHECK (slot = 1),
  inventary_id INTEGER NOT NULL,
  observation TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS scanned_items (
  inventary_id INTEGER NOT NULL,
  item_id INTEGER NOT NULL,
  PRIMARY KEY (inventary_id, item_id)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (domain.Session, error) {
	session := domain.Session{}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT inventary_id, observation, updated_at FROM active_session WHERE slot = 1`).
		Scan(&session.ID, &session.Observation, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load active session: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		session.UpdatedAt = parsed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT item_id FROM scanned_items WHERE inventary_id = ?`, session.ID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load scanned items: %w", err)
	}
	defer rows.Close()
	session.Scanned = map[int64]struct{}{}
	for rows.Next() {
		var itemID int64
		if err := rows.Scan(&itemID); err != nil {
			return domain.Session{}, fmt.Errorf("scan item row: %w", err)
		}
		session.Scanned[itemID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return domain.Session{}, fmt.Errorf("iterate scanned items: %w", err)
	}
	return session, nil
}

// Save replaces the stored record and its scanned set in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, session domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
INSERT INTO active_session (slot, inventary_id, observation, updated_at)
VALUES (1, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
  inventary_id=excluded.inventary_id,
  observation=excluded.observation,
  updated_at=excluded.updated_at;
`
	if _, err := tx.ExecContext(ctx, upsert, session.ID, session.Observation, session.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert active session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scanned_items WHERE inventary_id <> ?`, session.ID); err != nil {
		return fmt.Errorf("prune scanned items: %w", err)
	}
	for _, itemID := range session.ScannedIDs() {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO scanned_items (inventary_id, item_id) VALUES (?, ?)`, session.ID, itemID); err != nil {
			return fmt.Errorf("insert scanned item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// AddScan inserts the scan only while sessionID is the stored session.
func (s *SQLiteStore) AddScan(ctx context.Context, sessionID, itemID int64, now time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin add scan: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insert = `
INSERT OR IGNORE INTO scanned_items (inventary_id, item_id)
SELECT ?, ?
WHERE EXISTS (SELECT 1 FROM active_session WHERE slot = 1 AND inventary_id = ?);
`
	res, err := tx.ExecContext(ctx, insert, sessionID, itemID, sessionID)
	if err != nil {
		return false, fmt.Errorf("insert scanned item: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert scanned item: %w", err)
	}
	if inserted == 0 {
		var active int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM active_session WHERE slot = 1 AND inventary_id = ?`, sessionID).Scan(&active); err != nil {
			return false, fmt.Errorf("check active session: %w", err)
		}
		if active == 0 {
			return false, domain.ErrSessionMismatch
		}
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE active_session SET updated_at = ? WHERE slot = 1 AND inventary_id = ?`, now.UTC().Format(time.RFC3339Nano), sessionID); err != nil {
		return false, fmt.Errorf("touch active session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit scan: %w", err)
	}
	return true, nil
}

// SetObservation rewrites the observation column of sessionID only.
func (s *SQLiteStore) SetObservation(ctx context.Context, sessionID int64, observation string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE active_session SET observation = ?, updated_at = ? WHERE slot = 1 AND inventary_id = ?`,
		observation, now.UTC().Format(time.RFC3339Nano), sessionID)
	if err != nil {
		return false, fmt.Errorf("update observation: %w", err)
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update observation: %w", err)
	}
	return updated > 0, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM scanned_items`); err != nil {
		return fmt.Errorf("clear scanned items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM active_session`); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
