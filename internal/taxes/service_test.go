package taxes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryBucketStore struct {
	buckets  map[string]*TaxeMensuelle
	invoices []InvoiceAmounts
	nextID   int64
}

func newMemoryBucketStore() *memoryBucketStore {
	return &memoryBucketStore{buckets: make(map[string]*TaxeMensuelle)}
}

func bucketKey(annee, mois int, typeTaxe string) string {
	return fmt.Sprintf("%04d-%02d-%s", annee, mois, typeTaxe)
}

func (m *memoryBucketStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (m *memoryBucketStore) GetForUpdate(_ context.Context, _ pgx.Tx, annee, mois int, typeTaxe string) (*TaxeMensuelle, error) {
	key := bucketKey(annee, mois, typeTaxe)
	if b, ok := m.buckets[key]; ok {
		copied := *b
		return &copied, nil
	}
	m.nextID++
	b := &TaxeMensuelle{ID: m.nextID, Annee: annee, Mois: mois, TypeTaxe: typeTaxe}
	m.buckets[key] = b
	copied := *b
	return &copied, nil
}

func (m *memoryBucketStore) Save(_ context.Context, _ pgx.Tx, b TaxeMensuelle) error {
	m.buckets[bucketKey(b.Annee, b.Mois, b.TypeTaxe)] = &b
	return nil
}

func (m *memoryBucketStore) DeleteOpen(_ context.Context, _ pgx.Tx, annee, mois int) error {
	for key, b := range m.buckets {
		if b.Annee == annee && b.Mois == mois && !b.Cloture {
			delete(m.buckets, key)
		}
	}
	return nil
}

func (m *memoryBucketStore) CloseMonth(_ context.Context, annee, mois int) (int64, error) {
	var n int64
	for _, b := range m.buckets {
		if b.Annee == annee && b.Mois == mois && !b.Cloture {
			b.Cloture = true
			n++
		}
	}
	return n, nil
}

func (m *memoryBucketStore) ListMonth(_ context.Context, annee, mois int) ([]TaxeMensuelle, error) {
	var out []TaxeMensuelle
	for _, b := range m.buckets {
		if b.Annee == annee && b.Mois == mois {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memoryBucketStore) ListYear(_ context.Context, annee int) ([]TaxeMensuelle, error) {
	var out []TaxeMensuelle
	for _, b := range m.buckets {
		if b.Annee == annee {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memoryBucketStore) ScanInvoices(_ context.Context, _ pgx.Tx, _, _ int) ([]InvoiceAmounts, error) {
	return m.invoices, nil
}

func newTestService(store *memoryBucketStore) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAddDocumentAccumulates(t *testing.T) {
	store := newMemoryBucketStore()
	svc := newTestService(store)
	ctx := context.Background()

	err := svc.AddDocument(ctx, 2024, 3, TypeTVA, decimal.NewFromInt(1000), decimal.NewFromInt(180), false)
	require.NoError(t, err)
	err = svc.AddDocument(ctx, 2024, 3, TypeTVA, decimal.NewFromInt(500), decimal.NewFromInt(90), false)
	require.NoError(t, err)

	b := store.buckets[bucketKey(2024, 3, TypeTVA)]
	require.Equal(t, "1500", b.MontantHTTotal.String())
	require.Equal(t, "270", b.MontantTaxeTotal.String())
	require.Equal(t, 2, b.NombreDocuments)
	require.True(t, b.MontantExonere.IsZero())
}

func TestAddDocumentExemptGoesToExonere(t *testing.T) {
	store := newMemoryBucketStore()
	svc := newTestService(store)

	err := svc.AddDocument(context.Background(), 2024, 3, TypeTVA, decimal.NewFromInt(1000), decimal.Zero, true)
	require.NoError(t, err)

	b := store.buckets[bucketKey(2024, 3, TypeTVA)]
	require.Equal(t, "1000", b.MontantExonere.String())
	require.True(t, b.MontantHTTotal.IsZero())
	require.True(t, b.MontantTaxeTotal.IsZero())
	require.Equal(t, 1, b.NombreDocuments)
}

func TestRemoveDocumentIsInverse(t *testing.T) {
	store := newMemoryBucketStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddDocument(ctx, 2024, 3, TypeCSS, decimal.NewFromInt(1000), decimal.NewFromInt(10), false))
	require.NoError(t, svc.RemoveDocument(ctx, 2024, 3, TypeCSS, decimal.NewFromInt(1000), decimal.NewFromInt(10), false))

	b := store.buckets[bucketKey(2024, 3, TypeCSS)]
	require.True(t, b.MontantHTTotal.IsZero())
	require.True(t, b.MontantTaxeTotal.IsZero())
	require.Equal(t, 0, b.NombreDocuments)
}

func TestRemoveDocumentClampsCountAtZero(t *testing.T) {
	store := newMemoryBucketStore()
	svc := newTestService(store)

	err := svc.RemoveDocument(context.Background(), 2024, 3, TypeTVA, decimal.NewFromInt(100), decimal.NewFromInt(18), false)
	require.NoError(t, err)

	b := store.buckets[bucketKey(2024, 3, TypeTVA)]
	require.Equal(t, 0, b.NombreDocuments)
}

func TestClosedBucketIgnoresMutations(t *testing.T) {
	store := newMemoryBucketStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddDocument(ctx, 2024, 3, TypeTVA, decimal.NewFromInt(1000), decimal.NewFromInt(180), false))
	require.NoError(t, svc.CloseMonth(ctx, 2024, 3))

	// Mutation after close succeeds but changes nothing.
	require.NoError(t, svc.AddDocument(ctx, 2024, 3, TypeTVA, decimal.NewFromInt(999), decimal.NewFromInt(99), false))

	b := store.buckets[bucketKey(2024, 3, TypeTVA)]
	require.True(t, b.Cloture)
	require.Equal(t, "1000", b.MontantHTTotal.String())
	require.Equal(t, 1, b.NombreDocuments)
}

func TestRecomputeMonthRebuildsFromInvoices(t *testing.T) {
	store := newMemoryBucketStore()
	svc := newTestService(store)
	ctx := context.Background()

	// Drifted bucket that the rebuild must discard.
	require.NoError(t, svc.AddDocument(ctx, 2024, 3, TypeTVA, decimal.NewFromInt(99999), decimal.NewFromInt(9999), false))

	store.invoices = []InvoiceAmounts{
		{MontantHT: decimal.NewFromInt(1000), TVA: decimal.NewFromInt(180), CSS: decimal.NewFromInt(10)},
		{MontantHT: decimal.NewFromInt(500), TVA: decimal.NewFromInt(90), CSS: decimal.NewFromInt(5)},
		{MontantHT: decimal.NewFromInt(300), ExonereTVA: true, CSS: decimal.NewFromInt(3)},
	}

	require.NoError(t, svc.RecomputeMonth(ctx, 2024, 3))

	tva := store.buckets[bucketKey(2024, 3, TypeTVA)]
	require.Equal(t, "1500", tva.MontantHTTotal.String())
	require.Equal(t, "270", tva.MontantTaxeTotal.String())
	require.Equal(t, "300", tva.MontantExonere.String())
	require.Equal(t, 3, tva.NombreDocuments)

	css := store.buckets[bucketKey(2024, 3, TypeCSS)]
	require.Equal(t, "1800", css.MontantHTTotal.String())
	require.Equal(t, "18", css.MontantTaxeTotal.String())
	require.True(t, css.MontantExonere.IsZero())
}

func TestRecomputeMonthIdempotent(t *testing.T) {
	store := newMemoryBucketStore()
	svc := newTestService(store)
	ctx := context.Background()

	store.invoices = []InvoiceAmounts{
		{MontantHT: decimal.NewFromInt(1000), TVA: decimal.NewFromInt(180), CSS: decimal.NewFromInt(10)},
	}

	require.NoError(t, svc.RecomputeMonth(ctx, 2024, 3))
	require.NoError(t, svc.RecomputeMonth(ctx, 2024, 3))

	b := store.buckets[bucketKey(2024, 3, TypeTVA)]
	require.Equal(t, "1000", b.MontantHTTotal.String())
	require.Equal(t, 1, b.NombreDocuments)
}

func TestInvalidPeriodRejected(t *testing.T) {
	svc := newTestService(newMemoryBucketStore())
	ctx := context.Background()

	err := svc.AddDocument(ctx, 2024, 13, TypeTVA, decimal.Zero, decimal.Zero, false)
	require.ErrorIs(t, err, ErrInvalidPeriod)

	err = svc.RecomputeMonth(ctx, 1999, 1)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}
