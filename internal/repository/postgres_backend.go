package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS audit_logs (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	category   TEXT NOT NULL,
	details    JSONB NOT NULL DEFAULT '{}',
	ip         TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS audit_logs_user_id_idx ON audit_logs (user_id, created_at DESC);
`

// PostgresBackend документ в строке таблицы documents
type PostgresBackend struct {
	db *pgxpool.Pool
}

// создает бэкенд и таблицы, если их ещё нет
func NewPostgresBackend(ctx context.Context, db *pgxpool.Pool) (*PostgresBackend, error) {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresBackend{db: db}, nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := b.db.QueryRow(ctx, `SELECT body FROM documents WHERE key = $1`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", key, err)
	}
	return body, nil
}

func (b *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.db.Exec(ctx, `
		INSERT INTO documents (key, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", key, err)
	}
	return nil
}

// пул общий с аудитом, закрывается в main
func (b *PostgresBackend) Close() error { return nil }
