package credit

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/logistiga/logistiga/internal/platform/db"
	"github.com/logistiga/logistiga/internal/shared"
)

// ErrNotFound indicates a missing credit or installment.
var ErrNotFound = fmt.Errorf("credit: %w", shared.ErrNotFound)

// Repository persists credits and their schedules in PostgreSQL.
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

// Insert persists a credit header and returns its id.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, c CreditBancaire) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO credits_bancaires
			(banque, libelle, montant_principal, taux_annuel, duree_mois, date_debut,
			 mensualite_fixe, total_interets, montant_rembourse, statut, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, NOW(), NOW())
		RETURNING id`,
		c.Banque, c.Libelle, c.MontantPrincipal, c.TauxAnnuel, c.DureeMois, c.DateDebut,
		c.MensualiteFixe, c.TotalInterets, CreditActif,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert credit: %w", err)
	}
	return id, nil
}

// InsertEcheance persists one installment.
func (r *Repository) InsertEcheance(ctx context.Context, tx pgx.Tx, e Echeance) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO echeances_credit
			(credit_id, rang, date_echeance, montant_total, part_interets, part_capital,
			 capital_restant, montant_paye, statut, en_retard)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false)`,
		e.CreditID, e.Rang, e.DateEcheance, e.MontantTotal, e.PartInterets, e.PartCapital,
		e.CapitalRestant, e.MontantPaye, e.Statut,
	)
	if err != nil {
		return fmt.Errorf("insert echeance: %w", err)
	}
	return nil
}

// DeleteEcheances drops every installment of a credit. Regeneration is a
// full rebuild, never an incremental edit.
func (r *Repository) DeleteEcheances(ctx context.Context, tx pgx.Tx, creditID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM echeances_credit WHERE credit_id = $1`, creditID); err != nil {
		return fmt.Errorf("delete echeances: %w", err)
	}
	return nil
}

// UpdateTerms rewrites the amortization parameters of a credit.
func (r *Repository) UpdateTerms(ctx context.Context, tx pgx.Tx, c CreditBancaire) error {
	tag, err := tx.Exec(ctx, `
		UPDATE credits_bancaires
		SET banque=$1, libelle=$2, montant_principal=$3, taux_annuel=$4, duree_mois=$5,
		    date_debut=$6, mensualite_fixe=$7, total_interets=$8, updated_at=NOW()
		WHERE id=$9`,
		c.Banque, c.Libelle, c.MontantPrincipal, c.TauxAnnuel, c.DureeMois,
		c.DateDebut, c.MensualiteFixe, c.TotalInterets, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update credit terms: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns a credit with its installments ordered by rang.
func (r *Repository) Get(ctx context.Context, id int64) (*CreditBancaire, error) {
	var c CreditBancaire
	err := r.pool.QueryRow(ctx, `
		SELECT id, banque, libelle, montant_principal, taux_annuel, duree_mois, date_debut,
		       mensualite_fixe, total_interets, montant_rembourse, statut, created_at, updated_at
		FROM credits_bancaires WHERE id = $1`, id,
	).Scan(&c.ID, &c.Banque, &c.Libelle, &c.MontantPrincipal, &c.TauxAnnuel, &c.DureeMois,
		&c.DateDebut, &c.MensualiteFixe, &c.TotalInterets, &c.MontantRembourse, &c.Statut,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get credit: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, credit_id, rang, date_echeance, montant_total, part_interets, part_capital,
		       capital_restant, montant_paye, statut, en_retard
		FROM echeances_credit WHERE credit_id = $1 ORDER BY rang`, id)
	if err != nil {
		return nil, fmt.Errorf("load echeances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e Echeance
		if err := rows.Scan(&e.ID, &e.CreditID, &e.Rang, &e.DateEcheance, &e.MontantTotal,
			&e.PartInterets, &e.PartCapital, &e.CapitalRestant, &e.MontantPaye, &e.Statut, &e.EnRetard); err != nil {
			return nil, fmt.Errorf("scan echeance: %w", err)
		}
		c.Echeances = append(c.Echeances, e)
	}
	return &c, rows.Err()
}

// List returns credit headers, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]CreditBancaire, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM credits_bancaires`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count credits: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, banque, libelle, montant_principal, taux_annuel, duree_mois, date_debut,
		       mensualite_fixe, total_interets, montant_rembourse, statut, created_at, updated_at
		FROM credits_bancaires ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()

	var credits []CreditBancaire
	for rows.Next() {
		var c CreditBancaire
		if err := rows.Scan(&c.ID, &c.Banque, &c.Libelle, &c.MontantPrincipal, &c.TauxAnnuel,
			&c.DureeMois, &c.DateDebut, &c.MensualiteFixe, &c.TotalInterets, &c.MontantRembourse,
			&c.Statut, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan credit: %w", err)
		}
		credits = append(credits, c)
	}
	return credits, total, rows.Err()
}

// GetEcheanceForUpdate row-locks one installment inside the caller's tx.
func (r *Repository) GetEcheanceForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*Echeance, error) {
	var e Echeance
	err := tx.QueryRow(ctx, `
		SELECT id, credit_id, rang, date_echeance, montant_total, part_interets, part_capital,
		       capital_restant, montant_paye, statut, en_retard
		FROM echeances_credit WHERE id = $1 FOR UPDATE`, id,
	).Scan(&e.ID, &e.CreditID, &e.Rang, &e.DateEcheance, &e.MontantTotal, &e.PartInterets,
		&e.PartCapital, &e.CapitalRestant, &e.MontantPaye, &e.Statut, &e.EnRetard)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock echeance: %w", err)
	}
	return &e, nil
}

// SaveEcheancePayment writes back the payment state of an installment.
func (r *Repository) SaveEcheancePayment(ctx context.Context, tx pgx.Tx, e Echeance) error {
	_, err := tx.Exec(ctx, `
		UPDATE echeances_credit SET montant_paye=$1, statut=$2, en_retard=$3 WHERE id=$4`,
		e.MontantPaye, e.Statut, e.EnRetard, e.ID,
	)
	if err != nil {
		return fmt.Errorf("save echeance payment: %w", err)
	}
	return nil
}

// BubbleRepayment adds amount to the credit's montant_rembourse and flips
// statut to termine once the cumulative covers principal plus interest.
func (r *Repository) BubbleRepayment(ctx context.Context, tx pgx.Tx, creditID int64, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE credits_bancaires
		SET montant_rembourse = montant_rembourse + $1,
		    statut = CASE
		        WHEN montant_rembourse + $1 >= montant_principal + total_interets THEN 'termine'
		        ELSE statut
		    END,
		    updated_at = NOW()
		WHERE id = $2`, amount, creditID)
	if err != nil {
		return fmt.Errorf("bubble repayment: %w", err)
	}
	return nil
}

// MarkOverdue flags unpaid installments whose due date has passed. Returns
// the number of rows newly flagged.
func (r *Repository) MarkOverdue(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE echeances_credit
		SET en_retard = true
		WHERE statut = $1 AND en_retard = false AND date_echeance < CURRENT_DATE`, EcheanceAPayer)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}
