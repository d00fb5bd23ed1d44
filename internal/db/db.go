package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the Postgres-backed ProfileStore.
type DB struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*DB, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Migrate creates the profile tables if they do not exist. Both tables hold a
// single row: the service tracks exactly one active patient.
func (d *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS patients (
			id         INT PRIMARY KEY,
			name       TEXT NOT NULL,
			age        INT NOT NULL,
			condition  TEXT NOT NULL DEFAULT '',
			caregiver  TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			id         INT PRIMARY KEY,
			theme      TEXT NOT NULL DEFAULT 'light',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

func (d *DB) Close() {
	d.Pool.Close()
}
