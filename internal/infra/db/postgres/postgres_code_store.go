package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"realscan/internal/domain/model"
	"realscan/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeStore = (*codeStore)(nil)

type codeStore struct {
	pool *pgxpool.Pool
}

// NewCodeStore returns a CodeStore backed by the access_codes table. Unlike
// the file and redis backends, query errors surface to the caller: a down
// database is an outage, not a corrupt document to silently start over from.
func NewCodeStore(pool *pgxpool.Pool) repository.CodeStore {
	return &codeStore{pool: pool}
}

// EnsureSchema creates the access_codes table on first use. position keeps the
// creation order the document layout relies on.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
CREATE TABLE IF NOT EXISTS access_codes (
    position   INT PRIMARY KEY,
    code       TEXT NOT NULL,
    note       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    revoked    BOOLEAN NOT NULL DEFAULT FALSE
);`
	if _, err := pool.Exec(ctx, q); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("create access_codes table (sqlstate %s): %w", pgErr.Code, err)
		}
		return fmt.Errorf("create access_codes table: %w", err)
	}
	return nil
}

func (s *codeStore) Load(ctx context.Context) (model.CodeCollection, error) {
	const q = `
SELECT code, note, created_at, expires_at, revoked
  FROM access_codes
 ORDER BY position;`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return model.CodeCollection{}, fmt.Errorf("query codes: %w", err)
	}
	defer rows.Close()

	col := model.EmptyCollection()
	for rows.Next() {
		var rec model.CodeRecord
		if err := rows.Scan(&rec.Code, &rec.Note, &rec.CreatedAt, &rec.ExpiresAt, &rec.Revoked); err != nil {
			return model.CodeCollection{}, fmt.Errorf("scan code row: %w", err)
		}
		col.Codes = append(col.Codes, rec)
	}
	if err := rows.Err(); err != nil {
		return model.CodeCollection{}, fmt.Errorf("iterate code rows: %w", err)
	}
	return col, nil
}

// Save replaces the table contents with the given collection in one
// transaction, preserving slice order via position.
func (s *codeStore) Save(ctx context.Context, col model.CodeCollection) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM access_codes`); err != nil {
		return fmt.Errorf("clear codes: %w", err)
	}

	const q = `
INSERT INTO access_codes (position, code, note, created_at, expires_at, revoked)
VALUES ($1, $2, $3, $4, $5, $6);`
	for i, rec := range col.Codes {
		if _, err := tx.Exec(ctx, q, i, rec.Code, rec.Note, rec.CreatedAt, rec.ExpiresAt, rec.Revoked); err != nil {
			return fmt.Errorf("insert code %s: %w", rec.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
