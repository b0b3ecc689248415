package configstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pipegraph_configs (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    body       TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PGStore keeps configurations in PostgreSQL.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore returns a store backed by the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// CreateSchema creates the pipegraph_configs table if it doesn't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the pipegraph_configs table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS pipegraph_configs;`)
	return err
}

// Save inserts or replaces the named configuration.
func (s *PGStore) Save(ctx context.Context, name string, body []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO pipegraph_configs (id, name, body) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		uuid.NewString(), name, string(body),
	)
	if err != nil {
		return fmt.Errorf("configstore: save %q: %w", name, err)
	}
	return nil
}

// Load fetches the named configuration.
func (s *PGStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var body string
	err := s.db.QueryRow(ctx,
		`SELECT body FROM pipegraph_configs WHERE name = $1`, name,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("configstore: load %q: %w", name, err)
	}
	return []byte(body), nil
}

// List returns all configuration names in lexical order.
func (s *PGStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM pipegraph_configs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("configstore: list: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("configstore: list: %w", err)
	}
	return names, nil
}

// Delete removes the named configuration.
func (s *PGStore) Delete(ctx context.Context, name string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM pipegraph_configs WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("configstore: delete %q: %w", name, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}
