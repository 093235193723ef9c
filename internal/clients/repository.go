package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logistiga/logistiga/internal/shared"
)

var (
	// ErrNotFound indicates a missing client.
	ErrNotFound = fmt.Errorf("clients: %w", shared.ErrNotFound)
	// ErrDuplicateCode indicates a code collision.
	ErrDuplicateCode = errors.New("clients: code already exists")
)

// Repository persists clients in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectClient = `
	SELECT id, code, nom, nif, adresse, telephone, email, actif, created_at, updated_at, deleted_at
	FROM clients`

// Insert persists a client and returns its id.
func (r *Repository) Insert(ctx context.Context, req CreateClientRequest) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO clients (code, nom, nif, adresse, telephone, email, actif, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, NOW(), NOW())
		RETURNING id`,
		req.Code, req.Nom, req.NIF, req.Adresse, req.Telephone, req.Email,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateCode
		}
		return 0, fmt.Errorf("insert client: %w", err)
	}
	return id, nil
}

// Get returns one client by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Client, error) {
	row := r.pool.QueryRow(ctx, selectClient+` WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanClient(row)
}

// Update rewrites the mutable fields of a client.
func (r *Repository) Update(ctx context.Context, id int64, req UpdateClientRequest) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients
		SET nom=$1, nif=$2, adresse=$3, telephone=$4, email=$5, actif=$6, updated_at=NOW()
		WHERE id=$7 AND deleted_at IS NULL`,
		req.Nom, req.NIF, req.Adresse, req.Telephone, req.Email, req.Actif, id)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete archives a client.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns active clients, optionally filtered by a search term over
// code, nom and nif.
func (r *Repository) List(ctx context.Context, f shared.ListFilters) ([]Client, int, error) {
	f = f.Normalize()

	where := " WHERE deleted_at IS NULL"
	args := []any{}
	idx := 1
	if f.Search != "" {
		where += fmt.Sprintf(" AND (code ILIKE $%d OR nom ILIKE $%d OR nif ILIKE $%d)", idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	query := selectClient + where + fmt.Sprintf(" ORDER BY nom LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, f.Limit, f.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Code, &c.Nom, &c.NIF, &c.Adresse, &c.Telephone, &c.Email,
			&c.Actif, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Code, &c.Nom, &c.NIF, &c.Adresse, &c.Telephone, &c.Email,
		&c.Actif, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan client: %w", err)
	}
	return &c, nil
}
