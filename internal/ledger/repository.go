package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists ledger entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts an entry within the caller's transaction so the movement
// commits or aborts together with the business operation that caused it.
func (r *Repository) Record(ctx context.Context, tx pgx.Tx, e Entry) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO ledger_entries (reference, libelle, montant, sens, date, categorie, compte, source_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id`,
		e.Reference, e.Libelle, e.Montant, e.Sens, e.Date, e.Categorie, e.Compte, e.SourceRef,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}
	return id, nil
}

// ListFilters narrows a ledger listing.
type ListFilters struct {
	Compte    *Compte
	Sens      *Sens
	Categorie *string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// List returns entries matching the filters, newest first.
func (r *Repository) List(ctx context.Context, f ListFilters) ([]Entry, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	idx := 1
	if f.Compte != nil {
		where += fmt.Sprintf(" AND compte = $%d", idx)
		args = append(args, *f.Compte)
		idx++
	}
	if f.Sens != nil {
		where += fmt.Sprintf(" AND sens = $%d", idx)
		args = append(args, *f.Sens)
		idx++
	}
	if f.Categorie != nil {
		where += fmt.Sprintf(" AND categorie = $%d", idx)
		args = append(args, *f.Categorie)
		idx++
	}
	if f.DateFrom != nil {
		where += fmt.Sprintf(" AND date >= $%d", idx)
		args = append(args, *f.DateFrom)
		idx++
	}
	if f.DateTo != nil {
		where += fmt.Sprintf(" AND date <= $%d", idx)
		args = append(args, *f.DateTo)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ledger_entries"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	query := `
		SELECT id, reference, libelle, montant, sens, date, categorie, compte, source_ref, created_at
		FROM ledger_entries` + where + fmt.Sprintf(" ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Reference, &e.Libelle, &e.Montant, &e.Sens, &e.Date, &e.Categorie, &e.Compte, &e.SourceRef, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// Balances aggregates entrees and sorties per compte.
func (r *Repository) Balances(ctx context.Context) ([]Balance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT compte,
		       COALESCE(SUM(montant) FILTER (WHERE sens = 'entree'), 0),
		       COALESCE(SUM(montant) FILTER (WHERE sens = 'sortie'), 0)
		FROM ledger_entries
		GROUP BY compte
		ORDER BY compte`)
	if err != nil {
		return nil, fmt.Errorf("ledger balances: %w", err)
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.Compte, &b.Entrees, &b.Sorties); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		b.Solde = b.Entrees.Sub(b.Sorties)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
