package chatstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type SQLiteStore struct {
	db           *sql.DB
	maxExchanges int
}

var _ Store = &SQLiteStore{}

func NewSQLiteStore(dsn string, maxExchanges int) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, errors.New("sqlite chat store: empty dsn")
	}
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db, maxExchanges: maxExchanges}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, sessionID string, ex Exchange) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite chat store: db is nil")
	}
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}
	ex = stamp(ex)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "sqlite chat store: begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO exchanges (session_id, human, ai, created_at_ms)
		VALUES (?, ?, ?, ?)
	`, id, ex.Human, ex.AI, ex.CreatedAtMs); err != nil {
		return errors.Wrap(err, "sqlite chat store: insert exchange")
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM exchanges
		WHERE session_id = ? AND id NOT IN (
			SELECT id FROM exchanges WHERE session_id = ? ORDER BY id DESC LIMIT ?
		)
	`, id, id, s.maxExchanges); err != nil {
		return errors.Wrap(err, "sqlite chat store: trim history")
	}
	return errors.Wrap(tx.Commit(), "sqlite chat store: commit")
}

func (s *SQLiteStore) History(ctx context.Context, sessionID string, limit int) ([]Exchange, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite chat store: db is nil")
	}
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT human, ai, created_at_ms FROM (
			SELECT id, human, ai, created_at_ms FROM exchanges
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, id, limit)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite chat store: query history")
	}
	defer func() { _ = rows.Close() }()

	out := []Exchange{}
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.Human, &ex.AI, &ex.CreatedAtMs); err != nil {
			return nil, errors.Wrap(err, "sqlite chat store: scan exchange")
		}
		out = append(out, ex)
	}
	return out, errors.Wrap(rows.Err(), "sqlite chat store: iterate history")
}

func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite chat store: db is nil")
	}
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exchanges WHERE session_id = ?`, id); err != nil {
		return errors.Wrap(err, "sqlite chat store: clear session")
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	if s == nil || s.db == nil {
		return errors.New("sqlite chat store: db is nil")
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  session_id TEXT NOT NULL,
		  human TEXT NOT NULL,
		  ai TEXT NOT NULL,
		  created_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS exchanges_by_session
		  ON exchanges(session_id, id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(err, "sqlite chat store: migrate")
		}
	}
	return nil
}

func SQLiteDSNForFile(path string) (string, error) {
	if path == "" {
		return "", errors.New("sqlite chat store: empty path")
	}
	// WAL for concurrent readers + writer. busy_timeout to avoid transient SQLITE_BUSY.
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path), nil
}
