// Package storage persists the lifetime counter in an embedded SQLite file.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/rook-computer/bongocat/internal/counter"
)

const counterRowID = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS counter (
	id    INTEGER PRIMARY KEY,
	count TEXT NOT NULL
)`

// Store is a single SQLite connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the database at path, creating parent directories.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// EnsureSchema creates the counter table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "create counter table")
	}
	return nil
}

// ReadCounter returns the persisted count. found is false when no row exists.
func (s *Store) ReadCounter(ctx context.Context) (value *big.Int, found bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT count FROM counter WHERE id = ?`, counterRowID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return new(big.Int), false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read counter")
	}
	value, err = counter.Parse(raw)
	if err != nil {
		return nil, false, errors.Wrap(err, "decode counter")
	}
	return value, true, nil
}

// WriteCounter stores value in the single counter row: it updates the row and
// inserts it only when the update touched nothing.
func (s *Store) WriteCounter(ctx context.Context, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return errors.Errorf("invalid counter value %v", value)
	}
	encoded := counter.Format(value)

	res, err := s.db.ExecContext(ctx, `UPDATE counter SET count = ? WHERE id = ?`, encoded, counterRowID)
	if err != nil {
		return errors.Wrap(err, "update counter")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update counter rows")
	}
	if affected > 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO counter (id, count) VALUES (?, ?)`, counterRowID, encoded); err != nil {
		return errors.Wrap(err, "insert counter")
	}
	return nil
}

// DB exposes the underlying handle for tests and diagnostics.
func (s *Store) DB() *sql.DB { return s.db }
