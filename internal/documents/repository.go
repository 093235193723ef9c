package documents

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

// ErrNotFound indicates a missing document.
var ErrNotFound = fmt.Errorf("documents: %w", shared.ErrNotFound)

// Repository provides PostgreSQL backed persistence for documents.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

// Insert creates the document header and returns its id.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, doc Document) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO documents (
			doc_type, numero, client_id, date, statut, categorie,
			montant_ht, remise, tva, css, montant_ttc,
			remise_type, remise_valeur, exonere_tva, exonere_css, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NOW(),NOW())
		RETURNING id`,
		doc.DocType, doc.Numero, doc.ClientID, doc.Date, doc.Statut, doc.Categorie,
		doc.MontantHT, doc.Remise, doc.TVA, doc.CSS, doc.MontantTTC,
		doc.RemiseType, doc.RemiseValeur, doc.ExonereTVA, doc.ExonereCSS, doc.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("documents: insert: %w", err)
	}
	return id, nil
}

// InsertLigne adds a flat line to the document.
func (r *Repository) InsertLigne(ctx context.Context, tx pgx.Tx, l Ligne) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_lignes (document_id, designation, quantite, prix_unitaire, montant_ht, ordre)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		l.DocumentID, l.Designation, l.Quantite, l.PrixUnitaire, l.MontantHT, l.Ordre).Scan(&id)
	return id, err
}

// InsertConteneur adds a container and its operations.
func (r *Repository) InsertConteneur(ctx context.Context, tx pgx.Tx, c Conteneur) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_conteneurs (document_id, numero, type_conteneur, prix_unitaire)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		c.DocumentID, c.Numero, c.TypeConteneur, c.PrixUnitaire).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, op := range c.Operations {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conteneur_operations (conteneur_id, designation, quantite, prix_unitaire)
			VALUES ($1,$2,$3,$4)`,
			id, op.Designation, op.Quantite, op.PrixUnitaire); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// InsertLot adds a lot line to the document.
func (r *Repository) InsertLot(ctx context.Context, tx pgx.Tx, l Lot) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_lots (document_id, designation, quantite, prix_unitaire, prix_total)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		l.DocumentID, l.Designation, l.Quantite, l.PrixUnitaire, l.PrixTotal).Scan(&id)
	return id, err
}

// DeleteLines removes every line-item collection of the document. Used by
// ReplaceLines before reinserting.
func (r *Repository) DeleteLines(ctx context.Context, tx pgx.Tx, documentID int64) error {
	if _, err := tx.Exec(ctx, `
		DELETE FROM conteneur_operations
		WHERE conteneur_id IN (SELECT id FROM document_conteneurs WHERE document_id = $1)`, documentID); err != nil {
		return err
	}
	for _, q := range []string{
		`DELETE FROM document_conteneurs WHERE document_id = $1`,
		`DELETE FROM document_lignes WHERE document_id = $1`,
		`DELETE FROM document_lots WHERE document_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, documentID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTotals persists the four computed monetary fields atomically.
func (r *Repository) UpdateTotals(ctx context.Context, tx pgx.Tx, id int64, t Totals) error {
	_, err := tx.Exec(ctx, `
		UPDATE documents SET montant_ht=$1, remise=$2, tva=$3, css=$4, montant_ttc=$5, updated_at=NOW()
		WHERE id=$6`,
		t.MontantHT, t.Remise, t.TVA, t.CSS, t.MontantTTC, id)
	return err
}

// UpdateStatus sets the document status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, statut DocumentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET statut=$1, updated_at=NOW() WHERE id=$2 AND deleted_at IS NULL`, statut, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks the document deleted. Its numero stays reserved.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get loads a document with the line collection matching its categorie.
func (r *Repository) Get(ctx context.Context, id int64) (*Document, error) {
	doc, err := r.scanDocument(r.pool.QueryRow(ctx, selectDocument+` WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLines(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

const selectDocument = `
	SELECT id, doc_type, numero, client_id, date, statut, categorie,
	       montant_ht, remise, tva, css, montant_ttc,
	       remise_type, remise_valeur, exonere_tva, exonere_css, notes,
	       created_at, updated_at, deleted_at
	FROM documents`

func (r *Repository) scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	err := row.Scan(
		&doc.ID, &doc.DocType, &doc.Numero, &doc.ClientID, &doc.Date, &doc.Statut, &doc.Categorie,
		&doc.MontantHT, &doc.Remise, &doc.TVA, &doc.CSS, &doc.MontantTTC,
		&doc.RemiseType, &doc.RemiseValeur, &doc.ExonereTVA, &doc.ExonereCSS, &doc.Notes,
		&doc.CreatedAt, &doc.UpdatedAt, &doc.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repository) loadLines(ctx context.Context, doc *Document) error {
	switch doc.Categorie {
	case CategorieOperations:
		rows, err := r.pool.Query(ctx, `
			SELECT id, document_id, designation, quantite, prix_unitaire, montant_ht, ordre
			FROM document_lignes WHERE document_id = $1 ORDER BY ordre, id`, doc.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var l Ligne
			if err := rows.Scan(&l.ID, &l.DocumentID, &l.Designation, &l.Quantite, &l.PrixUnitaire, &l.MontantHT, &l.Ordre); err != nil {
				return err
			}
			doc.Lignes = append(doc.Lignes, l)
		}
		return rows.Err()
	case CategorieConteneurs:
		rows, err := r.pool.Query(ctx, `
			SELECT id, document_id, numero, type_conteneur, prix_unitaire
			FROM document_conteneurs WHERE document_id = $1 ORDER BY id`, doc.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c Conteneur
			if err := rows.Scan(&c.ID, &c.DocumentID, &c.Numero, &c.TypeConteneur, &c.PrixUnitaire); err != nil {
				return err
			}
			doc.Conteneurs = append(doc.Conteneurs, c)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		for i := range doc.Conteneurs {
			opRows, err := r.pool.Query(ctx, `
				SELECT id, conteneur_id, designation, quantite, prix_unitaire
				FROM conteneur_operations WHERE conteneur_id = $1 ORDER BY id`, doc.Conteneurs[i].ID)
			if err != nil {
				return err
			}
			for opRows.Next() {
				var op Operation
				if err := opRows.Scan(&op.ID, &op.ConteneurID, &op.Designation, &op.Quantite, &op.PrixUnitaire); err != nil {
					opRows.Close()
					return err
				}
				doc.Conteneurs[i].Operations = append(doc.Conteneurs[i].Operations, op)
			}
			opRows.Close()
			if err := opRows.Err(); err != nil {
				return err
			}
		}
		return nil
	case CategorieLots:
		rows, err := r.pool.Query(ctx, `
			SELECT id, document_id, designation, quantite, prix_unitaire, prix_total
			FROM document_lots WHERE document_id = $1 ORDER BY id`, doc.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var l Lot
			if err := rows.Scan(&l.ID, &l.DocumentID, &l.Designation, &l.Quantite, &l.PrixUnitaire, &l.PrixTotal); err != nil {
				return err
			}
			doc.Lots = append(doc.Lots, l)
		}
		return rows.Err()
	default:
		return ErrUnknownCategory
	}
}

// List returns documents matching the request filters plus the total count.
// Soft-deleted documents are excluded.
func (r *Repository) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	where := "WHERE deleted_at IS NULL"
	var args []any
	argPos := 1

	addFilter := func(clause string, value any) {
		where += fmt.Sprintf(" AND "+clause, argPos)
		args = append(args, value)
		argPos++
	}
	if req.DocType != nil {
		addFilter("doc_type = $%d", *req.DocType)
	}
	if req.ClientID != nil {
		addFilter("client_id = $%d", *req.ClientID)
	}
	if req.Statut != nil {
		addFilter("statut = $%d", *req.Statut)
	}
	if req.DateFrom != nil {
		addFilter("date >= $%d", *req.DateFrom)
	}
	if req.DateTo != nil {
		addFilter("date <= $%d", *req.DateTo)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("%s %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d", selectDocument, where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := r.scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, *doc)
	}
	return docs, total, rows.Err()
}

// InsertPaiement records a payment row within the transaction.
func (r *Repository) InsertPaiement(ctx context.Context, tx pgx.Tx, p Paiement) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_paiements (document_id, montant, date_paiement, mode, reference, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING id`,
		p.DocumentID, p.Montant, p.DatePaiement, p.Mode, p.Reference).Scan(&id)
	return id, err
}

// SumPaiements returns the cumulative amount paid against the document.
func (r *Repository) SumPaiements(ctx context.Context, tx pgx.Tx, documentID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(montant), 0) FROM document_paiements WHERE document_id = $1`, documentID).Scan(&total)
	return total, err
}

// ListPaiements returns payments recorded against the document.
func (r *Repository) ListPaiements(ctx context.Context, documentID int64) ([]Paiement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, document_id, montant, date_paiement, mode, reference, created_at
		FROM document_paiements WHERE document_id = $1 ORDER BY date_paiement, id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var paiements []Paiement
	for rows.Next() {
		var p Paiement
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.Montant, &p.DatePaiement, &p.Mode, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		paiements = append(paiements, p)
	}
	return paiements, rows.Err()
}
