// Package sqlitestore keeps the refresh token in a one-row key/value table.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-task-client/token/refresh"

	_ "modernc.org/sqlite"
)

const (
	FileName        = "tasks.sqlite"
	refreshTokenKey = "refresh_token"
	queryTimeout    = 5 * time.Second
)

var _ refresh.Repo = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) dir/tasks.sqlite.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[sqlitestore.Open] mkdir: %w", err)
	}
	return OpenPath(filepath.Join(dir, FileName))
}

// OpenPath opens the database at path. ":memory:" works for tests.
func OpenPath(path string) (*Store, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("[sqlitestore.Open] open: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	stmts := []string{
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("[sqlitestore.Open] migrate: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Upsert(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (k, v) VALUES (?, ?)
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		refreshTokenKey, token)
	if err != nil {
		return fmt.Errorf("[sqlitestore.Upsert]: %w", err)
	}
	return nil
}

func (s *Store) Get() (*string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, refreshTokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[sqlitestore.Get]: %w", err)
	}
	return &token, nil
}

func (s *Store) Delete() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM meta WHERE k = ?`, refreshTokenKey); err != nil {
		return fmt.Errorf("[sqlitestore.Delete]: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
