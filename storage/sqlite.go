package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, err
}

func (s *SQLite) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, k, v, now); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Delete(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) SaveSnapshot(ctx context.Context, info SnapshotInfo, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, created_at, trades, doc)
		VALUES (?, ?, ?, ?)`,
		info.ID, info.Created.UTC(), info.Trades, string(doc),
	)
	return err
}

func (s *SQLite) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, trades FROM snapshots ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var si SnapshotInfo
		if err := rows.Scan(&si.ID, &si.Created, &si.Trades); err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

func (s *SQLite) GetSnapshot(ctx context.Context, id string) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM snapshots WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

func (s *SQLite) PruneSnapshots(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots
		WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
