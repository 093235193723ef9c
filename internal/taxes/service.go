package taxes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrInvalidPeriod indicates an out-of-range year or month.
var ErrInvalidPeriod = errors.New("taxes: invalid period")

// BucketStore is the persistence surface the aggregator drives.
type BucketStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, annee, mois int, typeTaxe string) (*TaxeMensuelle, error)
	Save(ctx context.Context, tx pgx.Tx, b TaxeMensuelle) error
	DeleteOpen(ctx context.Context, tx pgx.Tx, annee, mois int) error
	CloseMonth(ctx context.Context, annee, mois int) (int64, error)
	ListMonth(ctx context.Context, annee, mois int) ([]TaxeMensuelle, error)
	ListYear(ctx context.Context, annee int) ([]TaxeMensuelle, error)
	ScanInvoices(ctx context.Context, tx pgx.Tx, annee, mois int) ([]InvoiceAmounts, error)
}

// Service maintains the monthly tax aggregates.
type Service struct {
	store  BucketStore
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(store BucketStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// AddDocument accumulates one validated facture into the period bucket.
// A closed bucket absorbs the call silently; the aggregate is declared and
// callers upstream must not fail because of it.
func (s *Service) AddDocument(ctx context.Context, annee, mois int, typeTaxe string, montantHT, montantTaxe decimal.Decimal, exonere bool) error {
	return s.apply(ctx, annee, mois, typeTaxe, func(b *TaxeMensuelle) {
		if exonere {
			b.MontantExonere = b.MontantExonere.Add(montantHT)
		} else {
			b.MontantHTTotal = b.MontantHTTotal.Add(montantHT)
			b.MontantTaxeTotal = b.MontantTaxeTotal.Add(montantTaxe)
		}
		b.NombreDocuments++
	})
}

// RemoveDocument withdraws a facture's contribution, the inverse of
// AddDocument. The document count clamps at zero.
func (s *Service) RemoveDocument(ctx context.Context, annee, mois int, typeTaxe string, montantHT, montantTaxe decimal.Decimal, exonere bool) error {
	return s.apply(ctx, annee, mois, typeTaxe, func(b *TaxeMensuelle) {
		if exonere {
			b.MontantExonere = b.MontantExonere.Sub(montantHT)
		} else {
			b.MontantHTTotal = b.MontantHTTotal.Sub(montantHT)
			b.MontantTaxeTotal = b.MontantTaxeTotal.Sub(montantTaxe)
		}
		if b.NombreDocuments > 0 {
			b.NombreDocuments--
		}
	})
}

func (s *Service) apply(ctx context.Context, annee, mois int, typeTaxe string, mutate func(*TaxeMensuelle)) error {
	if err := validPeriod(annee, mois); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		bucket, err := s.store.GetForUpdate(ctx, tx, annee, mois, typeTaxe)
		if err != nil {
			return err
		}
		if bucket.Cloture {
			s.logger.Warn("tax bucket closed, mutation ignored",
				slog.Int("annee", annee), slog.Int("mois", mois), slog.String("type_taxe", typeTaxe))
			return nil
		}
		mutate(bucket)
		return s.store.Save(ctx, tx, *bucket)
	})
}

// RecomputeMonth discards the period's open buckets and rebuilds them from
// the validated factures of the month. Running it twice yields the same
// aggregates.
func (s *Service) RecomputeMonth(ctx context.Context, annee, mois int) error {
	if err := validPeriod(annee, mois); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.store.DeleteOpen(ctx, tx, annee, mois); err != nil {
			return err
		}
		invoices, err := s.store.ScanInvoices(ctx, tx, annee, mois)
		if err != nil {
			return err
		}

		for _, typeTaxe := range []string{TypeTVA, TypeCSS} {
			bucket, err := s.store.GetForUpdate(ctx, tx, annee, mois, typeTaxe)
			if err != nil {
				return err
			}
			if bucket.Cloture {
				s.logger.Warn("tax bucket closed, recompute skipped",
					slog.Int("annee", annee), slog.Int("mois", mois), slog.String("type_taxe", typeTaxe))
				continue
			}
			rebuilt := rebuildBucket(*bucket, typeTaxe, invoices)
			if err := s.store.Save(ctx, tx, rebuilt); err != nil {
				return err
			}
		}
		return nil
	})
}

// CloseMonth freezes the period's buckets for declaration.
func (s *Service) CloseMonth(ctx context.Context, annee, mois int) error {
	if err := validPeriod(annee, mois); err != nil {
		return err
	}
	closed, err := s.store.CloseMonth(ctx, annee, mois)
	if err != nil {
		return err
	}
	s.logger.Info("tax month closed",
		slog.Int("annee", annee), slog.Int("mois", mois), slog.Int64("buckets", closed))
	return nil
}

// ListMonth returns the period's buckets.
func (s *Service) ListMonth(ctx context.Context, annee, mois int) ([]TaxeMensuelle, error) {
	if err := validPeriod(annee, mois); err != nil {
		return nil, err
	}
	return s.store.ListMonth(ctx, annee, mois)
}

// ListYear returns every bucket of a fiscal year.
func (s *Service) ListYear(ctx context.Context, annee int) ([]TaxeMensuelle, error) {
	return s.store.ListYear(ctx, annee)
}

func rebuildBucket(b TaxeMensuelle, typeTaxe string, invoices []InvoiceAmounts) TaxeMensuelle {
	b.MontantHTTotal = decimal.Zero
	b.MontantTaxeTotal = decimal.Zero
	b.MontantExonere = decimal.Zero
	b.NombreDocuments = 0

	for _, inv := range invoices {
		exempt, tax := inv.ExonereTVA, inv.TVA
		if typeTaxe == TypeCSS {
			exempt, tax = inv.ExonereCSS, inv.CSS
		}
		if exempt {
			b.MontantExonere = b.MontantExonere.Add(inv.MontantHT)
		} else {
			b.MontantHTTotal = b.MontantHTTotal.Add(inv.MontantHT)
			b.MontantTaxeTotal = b.MontantTaxeTotal.Add(tax)
		}
		b.NombreDocuments++
	}
	return b
}

func validPeriod(annee, mois int) error {
	if annee < 2000 || annee > 2100 || mois < 1 || mois > 12 {
		return fmt.Errorf("%w: %04d-%02d", ErrInvalidPeriod, annee, mois)
	}
	return nil
}
