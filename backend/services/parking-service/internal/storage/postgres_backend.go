package storage

import (
	"context"
	"database/sql"
	"errors"
)

// JSON rather than JSONB: JSONB reorders object keys and the session order matters.
const createDocumentsTable = `
	CREATE TABLE IF NOT EXISTS parking_documents (
		doc_key    TEXT PRIMARY KEY,
		body       JSON NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresBackend stores each document as a row of parking_documents.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend returns backend over db.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the documents table when missing.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, createDocumentsTable)
	return err
}

// Read loads document body.
func (b *PostgresBackend) Read(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT body FROM parking_documents WHERE doc_key = $1`
	var body []byte
	if err := b.db.QueryRowContext(ctx, query, key).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return body, nil
}

// Write upserts document body.
func (b *PostgresBackend) Write(ctx context.Context, key string, data []byte) error {
	const query = `
		INSERT INTO parking_documents (doc_key, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (doc_key) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = NOW()
	`
	_, err := b.db.ExecContext(ctx, query, key, string(data))
	return err
}
