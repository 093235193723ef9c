package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/logistiga/logistiga/internal/config"
	"github.com/logistiga/logistiga/internal/ledger"
	"github.com/logistiga/logistiga/internal/numbering"
)

var (
	// ErrInvalidStatus indicates a forbidden status transition.
	ErrInvalidStatus = errors.New("documents: invalid status transition")
	// ErrCategoryMismatch indicates line items that do not match the categorie.
	ErrCategoryMismatch = errors.New("documents: line items do not match categorie")
	// ErrNotFacture indicates a payment against a non-invoice document.
	ErrNotFacture = errors.New("documents: payments apply to factures only")
)

// TaxFeed receives invoice amounts for monthly tax aggregation.
type TaxFeed interface {
	AddDocument(ctx context.Context, year, month int, taxType string, amountHT, amountTax decimal.Decimal, exempt bool) error
	RemoveDocument(ctx context.Context, year, month int, taxType string, amountHT, amountTax decimal.Decimal, exempt bool) error
}

// LedgerRecorder persists cash/bank ledger entries emitted by payments.
type LedgerRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, e ledger.Entry) (int64, error)
}

// Service handles document business logic.
type Service struct {
	repo      *Repository
	allocator *numbering.Allocator
	configs   *config.Service
	taxes     TaxFeed
	ledger    LedgerRecorder
	logger    *slog.Logger
}

// NewService builds Service instance.
func NewService(repo *Repository, allocator *numbering.Allocator, configs *config.Service, taxes TaxFeed, ledgerRec LedgerRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		allocator: allocator,
		configs:   configs,
		taxes:     taxes,
		ledger:    ledgerRec,
		logger:    logger,
	}
}

// Create allocates a number, persists the document with its line items and
// computed totals, all inside one transaction. If the transaction aborts the
// counter is untouched and the caller may retry the whole operation.
func (s *Service) Create(ctx context.Context, req CreateDocumentRequest) (*Document, error) {
	doc, err := buildDocument(req)
	if err != nil {
		return nil, err
	}

	rates, err := s.configs.TaxRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tax rates: %w", err)
	}
	totals, err := ComputeTotals(doc, rates)
	if err != nil {
		return nil, err
	}

	var documentID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		numero, err := s.allocator.Allocate(ctx, tx, doc.DocType, doc.Date.Year())
		if err != nil {
			return fmt.Errorf("allocate number: %w", err)
		}
		doc.Numero = numero
		doc.MontantHT = totals.MontantHT
		doc.Remise = totals.Remise
		doc.TVA = totals.TVA
		doc.CSS = totals.CSS
		doc.MontantTTC = totals.MontantTTC

		documentID, err = s.repo.Insert(ctx, tx, *doc)
		if err != nil {
			return err
		}
		return s.insertLines(ctx, tx, documentID, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, documentID)
}

// Get returns a document with its line items.
func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// List returns documents matching the filters.
func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	return s.repo.List(ctx, req)
}

// ReplaceLines swaps the document's line items wholesale and recomputes the
// totals. Totals are never adjusted incrementally.
func (s *Service) ReplaceLines(ctx context.Context, id int64, req ReplaceLinesRequest) (*Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Statut != StatutBrouillon {
		return nil, fmt.Errorf("%w: only brouillon documents can be edited", ErrInvalidStatus)
	}

	doc := &Document{Categorie: existing.Categorie}
	if err := attachLines(doc, req.Lignes, req.Conteneurs, req.Lots); err != nil {
		return nil, err
	}

	rates, err := s.configs.TaxRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tax rates: %w", err)
	}
	doc.RemiseType = existing.RemiseType
	doc.RemiseValeur = existing.RemiseValeur
	doc.ExonereTVA = existing.ExonereTVA
	doc.ExonereCSS = existing.ExonereCSS
	totals, err := ComputeTotals(doc, rates)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.DeleteLines(ctx, tx, id); err != nil {
			return err
		}
		if err := s.insertLines(ctx, tx, id, doc); err != nil {
			return err
		}
		return s.repo.UpdateTotals(ctx, tx, id, totals)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus applies a status transition. Validating a facture feeds the
// monthly tax aggregator; voiding a validated facture withdraws it.
func (s *Service) UpdateStatus(ctx context.Context, id int64, target DocumentStatus) (*Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(existing.Statut, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, existing.Statut, target)
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}

	if existing.DocType == numbering.DocFacture {
		switch {
		case target == StatutValide:
			s.feedTaxes(ctx, existing, false)
		case withdrawsFromTaxes(existing.Statut, target):
			s.feedTaxes(ctx, existing, true)
		}
	}
	return s.repo.Get(ctx, id)
}

// SoftDelete archives the document. Its numero remains reserved so the
// allocator never reissues it.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// RecordPayment registers a payment against a facture, emits the matching
// cash-ledger entry and marks the facture paid once fully settled.
func (s *Service) RecordPayment(ctx context.Context, documentID int64, req RecordPaymentRequest) (*Paiement, error) {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.DocType != numbering.DocFacture {
		return nil, ErrNotFacture
	}
	if doc.Statut != StatutValide && doc.Statut != StatutPaye {
		return nil, fmt.Errorf("%w: facture must be validated before payment", ErrInvalidStatus)
	}
	if req.Montant.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("documents: payment amount must be positive")
	}

	paiement := Paiement{
		DocumentID:   documentID,
		Montant:      req.Montant.Round(2),
		DatePaiement: req.DatePaiement,
		Mode:         req.Mode,
		Reference:    req.Reference,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.repo.InsertPaiement(ctx, tx, paiement)
		if err != nil {
			return err
		}
		paiement.ID = id

		compte := ledger.CompteBanque
		if req.Mode == "especes" {
			compte = ledger.CompteCaisse
		}
		if _, err := s.ledger.Record(ctx, tx, ledger.Entry{
			Reference: uuid.NewString(),
			Libelle:   fmt.Sprintf("Reglement facture %s", doc.Numero),
			Montant:   paiement.Montant,
			Sens:      ledger.SensEntree,
			Date:      req.DatePaiement,
			Categorie: "reglement_facture",
			Compte:    compte,
			SourceRef: doc.Numero,
		}); err != nil {
			return fmt.Errorf("record ledger entry: %w", err)
		}

		total, err := s.repo.SumPaiements(ctx, tx, documentID)
		if err != nil {
			return err
		}
		if total.GreaterThanOrEqual(doc.MontantTTC) && doc.Statut != StatutPaye {
			_, err = tx.Exec(ctx,
				`UPDATE documents SET statut=$1, updated_at=NOW() WHERE id=$2`, StatutPaye, documentID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &paiement, nil
}

// ListPaiements returns payments recorded against a document.
func (s *Service) ListPaiements(ctx context.Context, documentID int64) ([]Paiement, error) {
	return s.repo.ListPaiements(ctx, documentID)
}

// feedTaxes pushes a facture's amounts into the monthly aggregator. Failures
// are logged, not propagated: the aggregate is reconcilable via recompute.
func (s *Service) feedTaxes(ctx context.Context, doc *Document, remove bool) {
	if s.taxes == nil {
		return
	}
	year, month := doc.Date.Year(), int(doc.Date.Month())
	apply := s.taxes.AddDocument
	if remove {
		apply = s.taxes.RemoveDocument
	}
	if err := apply(ctx, year, month, "tva", doc.MontantHT, doc.TVA, doc.ExonereTVA); err != nil {
		s.logger.Warn("feed tax aggregate", slog.String("numero", doc.Numero), slog.Any("error", err))
	}
	if err := apply(ctx, year, month, "css", doc.MontantHT, doc.CSS, doc.ExonereCSS); err != nil {
		s.logger.Warn("feed tax aggregate", slog.String("numero", doc.Numero), slog.Any("error", err))
	}
}

func (s *Service) insertLines(ctx context.Context, tx pgx.Tx, documentID int64, doc *Document) error {
	for _, l := range doc.Lignes {
		l.DocumentID = documentID
		if _, err := s.repo.InsertLigne(ctx, tx, l); err != nil {
			return fmt.Errorf("insert ligne: %w", err)
		}
	}
	for _, c := range doc.Conteneurs {
		c.DocumentID = documentID
		if _, err := s.repo.InsertConteneur(ctx, tx, c); err != nil {
			return fmt.Errorf("insert conteneur: %w", err)
		}
	}
	for _, l := range doc.Lots {
		l.DocumentID = documentID
		if _, err := s.repo.InsertLot(ctx, tx, l); err != nil {
			return fmt.Errorf("insert lot: %w", err)
		}
	}
	return nil
}

func buildDocument(req CreateDocumentRequest) (*Document, error) {
	doc := &Document{
		DocType:      numbering.DocumentType(req.DocType),
		ClientID:     req.ClientID,
		Date:         req.Date,
		Statut:       StatutBrouillon,
		Categorie:    Categorie(req.Categorie),
		RemiseValeur: req.RemiseValeur,
		ExonereTVA:   req.ExonereTVA,
		ExonereCSS:   req.ExonereCSS,
		Notes:        req.Notes,
	}
	if req.Date.IsZero() {
		doc.Date = time.Now()
	}
	if req.RemiseType != nil {
		rt := RemiseType(*req.RemiseType)
		doc.RemiseType = &rt
	}
	if err := attachLines(doc, req.Lignes, req.Conteneurs, req.Lots); err != nil {
		return nil, err
	}
	return doc, nil
}

// attachLines materializes request line items onto the document, enforcing
// that only the collection matching the categorie is supplied.
func attachLines(doc *Document, lignes []LigneRequest, conteneurs []ConteneurRequest, lots []LotRequest) error {
	switch doc.Categorie {
	case CategorieOperations:
		if len(conteneurs) > 0 || len(lots) > 0 {
			return ErrCategoryMismatch
		}
		for i, lr := range lignes {
			ordre := lr.Ordre
			if ordre == 0 {
				ordre = i + 1
			}
			doc.Lignes = append(doc.Lignes, Ligne{
				Designation:  lr.Designation,
				Quantite:     lr.Quantite,
				PrixUnitaire: lr.PrixUnitaire,
				MontantHT:    lr.Quantite.Mul(lr.PrixUnitaire).Round(2),
				Ordre:        ordre,
			})
		}
	case CategorieConteneurs:
		if len(lignes) > 0 || len(lots) > 0 {
			return ErrCategoryMismatch
		}
		for _, cr := range conteneurs {
			c := Conteneur{
				Numero:        cr.Numero,
				TypeConteneur: cr.TypeConteneur,
				PrixUnitaire:  cr.PrixUnitaire,
			}
			for _, opr := range cr.Operations {
				c.Operations = append(c.Operations, Operation{
					Designation:  opr.Designation,
					Quantite:     opr.Quantite,
					PrixUnitaire: opr.PrixUnitaire,
				})
			}
			doc.Conteneurs = append(doc.Conteneurs, c)
		}
	case CategorieLots:
		if len(lignes) > 0 || len(conteneurs) > 0 {
			return ErrCategoryMismatch
		}
		for _, lr := range lots {
			doc.Lots = append(doc.Lots, Lot{
				Designation:  lr.Designation,
				Quantite:     lr.Quantite,
				PrixUnitaire: lr.PrixUnitaire,
				PrixTotal:    lr.Quantite.Mul(lr.PrixUnitaire).Round(2),
			})
		}
	default:
		return ErrUnknownCategory
	}
	return nil
}

// withdrawsFromTaxes reports whether the transition takes a previously
// validated facture out of the monthly aggregates. Both annule and refuse
// leave the statuses the recompute scan counts, so the incremental path
// must drop the facture too or the two would diverge until the next rebuild.
func withdrawsFromTaxes(current, target DocumentStatus) bool {
	if current == StatutBrouillon {
		return false
	}
	return target == StatutAnnule || target == StatutRefuse
}

func transitionAllowed(current, target DocumentStatus) bool {
	if current == target {
		return false
	}
	switch current {
	case StatutBrouillon:
		return target == StatutValide || target == StatutAnnule
	case StatutValide:
		return target == StatutAccepte || target == StatutRefuse || target == StatutPaye || target == StatutAnnule
	case StatutAccepte:
		return target == StatutPaye || target == StatutAnnule
	default:
		return false
	}
}
