package taxes

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/logistiga/logistiga/internal/platform/db"
)

// Repository persists monthly tax buckets in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

const selectBucket = `
	SELECT id, annee, mois, type_taxe, montant_ht_total, montant_taxe_total,
	       montant_exonere, nombre_documents, cloture, created_at, updated_at
	FROM taxes_mensuelles`

// GetForUpdate row-locks the bucket for (annee, mois, typeTaxe), creating
// an empty one first if the period has never been touched.
func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, annee, mois int, typeTaxe string) (*TaxeMensuelle, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO taxes_mensuelles
			(annee, mois, type_taxe, montant_ht_total, montant_taxe_total, montant_exonere,
			 nombre_documents, cloture, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, 0, false, NOW(), NOW())
		ON CONFLICT (annee, mois, type_taxe) DO NOTHING`,
		annee, mois, typeTaxe)
	if err != nil {
		return nil, fmt.Errorf("ensure tax bucket: %w", err)
	}

	row := tx.QueryRow(ctx, selectBucket+` WHERE annee=$1 AND mois=$2 AND type_taxe=$3 FOR UPDATE`,
		annee, mois, typeTaxe)
	return scanBucket(row)
}

// Save writes back a bucket's totals.
func (r *Repository) Save(ctx context.Context, tx pgx.Tx, b TaxeMensuelle) error {
	_, err := tx.Exec(ctx, `
		UPDATE taxes_mensuelles
		SET montant_ht_total=$1, montant_taxe_total=$2, montant_exonere=$3,
		    nombre_documents=$4, updated_at=NOW()
		WHERE id=$5`,
		b.MontantHTTotal, b.MontantTaxeTotal, b.MontantExonere, b.NombreDocuments, b.ID)
	if err != nil {
		return fmt.Errorf("save tax bucket: %w", err)
	}
	return nil
}

// DeleteOpen drops the period's open buckets ahead of a rebuild. Closed
// buckets are untouchable.
func (r *Repository) DeleteOpen(ctx context.Context, tx pgx.Tx, annee, mois int) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM taxes_mensuelles WHERE annee=$1 AND mois=$2 AND cloture=false`, annee, mois)
	if err != nil {
		return fmt.Errorf("delete open tax buckets: %w", err)
	}
	return nil
}

// CloseMonth freezes every bucket of the period. One-way.
func (r *Repository) CloseMonth(ctx context.Context, annee, mois int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE taxes_mensuelles SET cloture=true, updated_at=NOW() WHERE annee=$1 AND mois=$2 AND cloture=false`,
		annee, mois)
	if err != nil {
		return 0, fmt.Errorf("close tax month: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListMonth returns the period's buckets.
func (r *Repository) ListMonth(ctx context.Context, annee, mois int) ([]TaxeMensuelle, error) {
	rows, err := r.pool.Query(ctx, selectBucket+` WHERE annee=$1 AND mois=$2 ORDER BY type_taxe`, annee, mois)
	if err != nil {
		return nil, fmt.Errorf("list tax month: %w", err)
	}
	return collectBuckets(rows)
}

// ListYear returns every bucket of a fiscal year ordered by period.
func (r *Repository) ListYear(ctx context.Context, annee int) ([]TaxeMensuelle, error) {
	rows, err := r.pool.Query(ctx, selectBucket+` WHERE annee=$1 ORDER BY mois, type_taxe`, annee)
	if err != nil {
		return nil, fmt.Errorf("list tax year: %w", err)
	}
	return collectBuckets(rows)
}

// InvoiceAmounts is one validated facture's contribution to the aggregates.
type InvoiceAmounts struct {
	MontantHT  decimal.Decimal
	TVA        decimal.Decimal
	CSS        decimal.Decimal
	ExonereTVA bool
	ExonereCSS bool
}

// ScanInvoices reads the authoritative facture amounts for a period.
// Brouillon and annule documents do not contribute, nor do archived ones.
func (r *Repository) ScanInvoices(ctx context.Context, tx pgx.Tx, annee, mois int) ([]InvoiceAmounts, error) {
	rows, err := tx.Query(ctx, `
		SELECT montant_ht, tva, css, exonere_tva, exonere_css
		FROM documents
		WHERE doc_type = 'facture'
		  AND statut IN ('valide', 'accepte', 'paye')
		  AND deleted_at IS NULL
		  AND EXTRACT(YEAR FROM date) = $1
		  AND EXTRACT(MONTH FROM date) = $2`,
		annee, mois)
	if err != nil {
		return nil, fmt.Errorf("scan invoices: %w", err)
	}
	defer rows.Close()

	var out []InvoiceAmounts
	for rows.Next() {
		var inv InvoiceAmounts
		if err := rows.Scan(&inv.MontantHT, &inv.TVA, &inv.CSS, &inv.ExonereTVA, &inv.ExonereCSS); err != nil {
			return nil, fmt.Errorf("scan invoice amounts: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanBucket(row pgx.Row) (*TaxeMensuelle, error) {
	var b TaxeMensuelle
	err := row.Scan(&b.ID, &b.Annee, &b.Mois, &b.TypeTaxe, &b.MontantHTTotal, &b.MontantTaxeTotal,
		&b.MontantExonere, &b.NombreDocuments, &b.Cloture, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan tax bucket: %w", err)
	}
	return &b, nil
}

func collectBuckets(rows pgx.Rows) ([]TaxeMensuelle, error) {
	defer rows.Close()
	var buckets []TaxeMensuelle
	for rows.Next() {
		var b TaxeMensuelle
		if err := rows.Scan(&b.ID, &b.Annee, &b.Mois, &b.TypeTaxe, &b.MontantHTTotal, &b.MontantTaxeTotal,
			&b.MontantExonere, &b.NombreDocuments, &b.Cloture, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tax bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
