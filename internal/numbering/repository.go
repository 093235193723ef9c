package numbering

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository implements DocumentScanner against the documents table.
// Queries deliberately ignore deleted_at: archived documents still occupy
// their number.
type Repository struct{}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{}
}

// MaxNumericSuffix returns the highest trailing sequence among numbers
// matching pattern for the document type, soft-deleted rows included.
func (r *Repository) MaxNumericSuffix(ctx context.Context, tx pgx.Tx, docType DocumentType, pattern string) (int64, error) {
	rows, err := tx.Query(ctx,
		`SELECT numero FROM documents WHERE doc_type = $1 AND numero LIKE $2`, docType, pattern)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var max int64
	for rows.Next() {
		var numero string
		if err := rows.Scan(&numero); err != nil {
			return 0, err
		}
		if suffix, ok := NumericSuffix(numero); ok && suffix > max {
			max = suffix
		}
	}
	return max, rows.Err()
}

// NumberExists reports whether any document of the type carries numero,
// soft-deleted rows included.
func (r *Repository) NumberExists(ctx context.Context, tx pgx.Tx, docType DocumentType, numero string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE doc_type = $1 AND numero = $2)`, docType, numero).Scan(&exists)
	return exists, err
}
