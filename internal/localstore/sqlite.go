package localstore

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jobboard/internal/errors"
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`
	selectSQL = `SELECT value FROM kv WHERE key = ?`
	upsertSQL = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// OpenSQLite opens the database at path with WAL journaling and a busy
// timeout. ":memory:" is accepted and pinned to a single connection.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "apply %q", pragma)
		}
	}
	return db, nil
}

// SQLiteKV stores values in a single kv table.
type SQLiteKV struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, errors.Wrap(err, "create kv table")
	}
	return &SQLiteKV{db: db, now: time.Now}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "select %s", key)
	}
	return []byte(value), nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	stamp := s.now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, upsertSQL, key, string(value), stamp); err != nil {
		return errors.Wrapf(err, "upsert %s", key)
	}
	return nil
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
