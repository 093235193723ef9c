package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for configurations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the configuration for key, creating it with defaults when
// absent. A missing configuration is never a hard failure.
func (r *Repository) Get(ctx context.Context, key string) (Configuration, error) {
	cfg, err := scanConfiguration(r.pool.QueryRow(ctx,
		`SELECT id, key, data, created_at, updated_at FROM configurations WHERE key = $1`, key))
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Configuration{}, fmt.Errorf("config: get %s: %w", key, err)
	}
	return scanConfiguration(r.pool.QueryRow(ctx,
		`INSERT INTO configurations (key, data, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (key) DO UPDATE SET updated_at = configurations.updated_at
		 RETURNING id, key, data, created_at, updated_at`, key, DefaultData(key)))
}

// GetForUpdate loads the configuration row under a row-level lock inside the
// supplied transaction, creating it first when absent. The lock serializes
// concurrent writers on the same key until the transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, key string) (Configuration, error) {
	_, err := tx.Exec(ctx,
		`INSERT INTO configurations (key, data, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW()) ON CONFLICT (key) DO NOTHING`, key, DefaultData(key))
	if err != nil {
		return Configuration{}, fmt.Errorf("config: ensure %s: %w", key, err)
	}
	cfg, err := scanConfiguration(tx.QueryRow(ctx,
		`SELECT id, key, data, created_at, updated_at FROM configurations WHERE key = $1 FOR UPDATE`, key))
	if err != nil {
		return Configuration{}, fmt.Errorf("config: lock %s: %w", key, err)
	}
	return cfg, nil
}

// Save persists mutated configuration data within the supplied transaction.
func (r *Repository) Save(ctx context.Context, tx pgx.Tx, cfg Configuration) error {
	_, err := tx.Exec(ctx,
		`UPDATE configurations SET data = $1, updated_at = NOW() WHERE id = $2`, cfg.Data, cfg.ID)
	if err != nil {
		return fmt.Errorf("config: save %s: %w", cfg.Key, err)
	}
	return nil
}

// Update persists configuration data outside any caller transaction.
func (r *Repository) Update(ctx context.Context, key string, data map[string]any) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO configurations (key, data, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`, key, data)
	if err != nil {
		return fmt.Errorf("config: update %s: %w", key, err)
	}
	return nil
}

func scanConfiguration(row pgx.Row) (Configuration, error) {
	var cfg Configuration
	if err := row.Scan(&cfg.ID, &cfg.Key, &cfg.Data, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return Configuration{}, err
	}
	if cfg.Data == nil {
		cfg.Data = map[string]any{}
	}
	return cfg, nil
}
