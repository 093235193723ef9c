package credit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/logistiga/logistiga/internal/ledger"
)

// ErrAlreadyPaid indicates a repayment against a settled installment.
var ErrAlreadyPaid = errors.New("credit: installment already paid")

// LedgerRecorder persists cash-ledger entries emitted by repayments.
type LedgerRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, e ledger.Entry) (int64, error)
}

// Service handles bank credit business logic.
type Service struct {
	repo   *Repository
	ledger LedgerRecorder
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo *Repository, ledgerRec LedgerRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, ledger: ledgerRec, logger: logger}
}

// Create validates the terms, generates the amortization schedule and
// persists the credit with every installment in one transaction.
func (s *Service) Create(ctx context.Context, req CreateCreditRequest) (*CreditBancaire, error) {
	plan, err := GenerateSchedule(req.MontantPrincipal, req.TauxAnnuel, req.DureeMois, req.DateDebut)
	if err != nil {
		return nil, err
	}

	var creditID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		creditID, err = s.repo.Insert(ctx, tx, CreditBancaire{
			Banque:           req.Banque,
			Libelle:          req.Libelle,
			MontantPrincipal: req.MontantPrincipal,
			TauxAnnuel:       req.TauxAnnuel,
			DureeMois:        req.DureeMois,
			DateDebut:        req.DateDebut,
			MensualiteFixe:   plan.Mensualite,
			TotalInterets:    plan.TotalInterets,
		})
		if err != nil {
			return err
		}
		return s.insertSchedule(ctx, tx, creditID, plan)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, creditID)
}

// Get returns a credit with its schedule.
func (s *Service) Get(ctx context.Context, id int64) (*CreditBancaire, error) {
	return s.repo.Get(ctx, id)
}

// List returns credit headers.
func (s *Service) List(ctx context.Context, limit, offset int) ([]CreditBancaire, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateTerms rewrites the loan parameters and regenerates the whole
// schedule. Prior installments are dropped, not adjusted.
func (s *Service) UpdateTerms(ctx context.Context, id int64, req UpdateTermsRequest) (*CreditBancaire, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Statut == CreditTermine {
		return nil, fmt.Errorf("credit: cannot rework a settled credit")
	}

	plan, err := GenerateSchedule(req.MontantPrincipal, req.TauxAnnuel, req.DureeMois, req.DateDebut)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.UpdateTerms(ctx, tx, CreditBancaire{
			ID:               id,
			Banque:           req.Banque,
			Libelle:          req.Libelle,
			MontantPrincipal: req.MontantPrincipal,
			TauxAnnuel:       req.TauxAnnuel,
			DureeMois:        req.DureeMois,
			DateDebut:        req.DateDebut,
			MensualiteFixe:   plan.Mensualite,
			TotalInterets:    plan.TotalInterets,
		}); err != nil {
			return err
		}
		if err := s.repo.DeleteEcheances(ctx, tx, id); err != nil {
			return err
		}
		return s.insertSchedule(ctx, tx, id, plan)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// RecordRepayment applies a payment to one installment, bubbles the amount
// up to the credit and emits the matching cash-ledger outflow.
func (s *Service) RecordRepayment(ctx context.Context, echeanceID int64, req RecordRepaymentRequest) (*Echeance, error) {
	if req.Montant.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTerms)
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	var updated *Echeance
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		e, err := s.repo.GetEcheanceForUpdate(ctx, tx, echeanceID)
		if err != nil {
			return err
		}
		if e.Statut == EcheancePayee {
			return ErrAlreadyPaid
		}

		e.MontantPaye = e.MontantPaye.Add(req.Montant.Round(2))
		if e.MontantPaye.GreaterThanOrEqual(e.MontantTotal) {
			e.Statut = EcheancePayee
			e.EnRetard = false
		}
		if err := s.repo.SaveEcheancePayment(ctx, tx, *e); err != nil {
			return err
		}
		if err := s.repo.BubbleRepayment(ctx, tx, e.CreditID, req.Montant.Round(2)); err != nil {
			return err
		}

		if _, err := s.ledger.Record(ctx, tx, ledger.Entry{
			Reference: uuid.NewString(),
			Libelle:   fmt.Sprintf("Remboursement credit %d echeance %d", e.CreditID, e.Rang),
			Montant:   req.Montant.Round(2),
			Sens:      ledger.SensSortie,
			Date:      date,
			Categorie: "remboursement_credit",
			Compte:    ledger.CompteBanque,
		}); err != nil {
			return fmt.Errorf("record ledger entry: %w", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkOverdue flags past-due unpaid installments. Invoked by the nightly
// scan job.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	flagged, err := s.repo.MarkOverdue(ctx)
	if err != nil {
		return 0, err
	}
	if flagged > 0 {
		s.logger.Info("flagged overdue installments", slog.Int64("count", flagged))
	}
	return flagged, nil
}

func (s *Service) insertSchedule(ctx context.Context, tx pgx.Tx, creditID int64, plan SchedulePlan) error {
	for _, e := range plan.Echeances {
		e.CreditID = creditID
		if err := s.repo.InsertEcheance(ctx, tx, e); err != nil {
			return err
		}
	}
	return nil
}
