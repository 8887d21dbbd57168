package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/markpad/markpad/pkg/api"
)

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// openSQLite connects using the modernc.org/sqlite driver and ensures the
// schema exists.
func openSQLite(ctx context.Context, dsn string) (Store, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS recent_files (
  path TEXT PRIMARY KEY,
  opened_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recent_opened ON recent_files(opened_at DESC);
CREATE TABLE IF NOT EXISTS sessions (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  payload BLOB NOT NULL,
  saved_at TIMESTAMP NOT NULL
);
`)
	return err
}

func (s *sqliteStore) AddRecent(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recent_files(path, opened_at) VALUES(?, ?)
		 ON CONFLICT(path) DO UPDATE SET opened_at = excluded.opened_at`,
		path, s.now().UTC()); err != nil {
		return err
	}
	// Trim beyond the cap.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recent_files WHERE path NOT IN (
		   SELECT path FROM recent_files ORDER BY opened_at DESC LIMIT ?)`,
		MaxRecents); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) Recents(ctx context.Context) ([]api.RecentFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, opened_at FROM recent_files ORDER BY opened_at DESC LIMIT ?`,
		MaxRecents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.RecentFile
	for rows.Next() {
		var rf api.RecentFile
		if err := rows.Scan(&rf.Path, &rf.OpenedAt); err != nil {
			return nil, err
		}
		out = append(out, rf)
	}
	return out, rows.Err()
}

func (s *sqliteStore) RemoveRecent(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recent_files WHERE path = ?`, path)
	return err
}

func (s *sqliteStore) SaveSession(ctx context.Context, sess api.Session) error {
	sess.SavedAt = s.now().UTC()
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, payload, saved_at) VALUES(1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		payload, sess.SavedAt)
	return err
}

func (s *sqliteStore) LoadSession(ctx context.Context) (api.Session, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM sessions WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return api.Session{}, ErrNotFound
	}
	if err != nil {
		return api.Session{}, err
	}
	var sess api.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return api.Session{}, err
	}
	return sess, nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }
