package numbering

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/logistiga/logistiga/internal/config"
)

type fakeConfigStore struct {
	cfg   config.Configuration
	saved *config.Configuration
}

func (f *fakeConfigStore) GetForUpdate(ctx context.Context, tx pgx.Tx, key string) (config.Configuration, error) {
	return f.cfg, nil
}

func (f *fakeConfigStore) Save(ctx context.Context, tx pgx.Tx, cfg config.Configuration) error {
	f.saved = &cfg
	return nil
}

type fakeScanner struct {
	maxSuffix int64
	existing  map[string]bool
}

func (f *fakeScanner) MaxNumericSuffix(ctx context.Context, tx pgx.Tx, docType DocumentType, pattern string) (int64, error) {
	return f.maxSuffix, nil
}

func (f *fakeScanner) NumberExists(ctx context.Context, tx pgx.Tx, docType DocumentType, numero string) (bool, error) {
	return f.existing[numero], nil
}

func newTestAllocator(next int64, maxSuffix int64, existing map[string]bool) (*Allocator, *fakeConfigStore) {
	data := config.DefaultData(config.KeyNumbering)
	config.SetNumberingEntry(data, string(DocDevis), config.NumberingEntry{Prefix: "DEV", Next: next})
	store := &fakeConfigStore{cfg: config.Configuration{ID: 1, Key: config.KeyNumbering, Data: data}}
	scanner := &fakeScanner{maxSuffix: maxSuffix, existing: existing}
	return NewAllocator(store, scanner, slog.Default()), store
}

func TestAllocateUsesStoredCounter(t *testing.T) {
	alloc, store := newTestAllocator(17, 5, nil)

	numero, err := alloc.Allocate(context.Background(), nil, DocDevis, 2024)
	require.NoError(t, err)
	require.Equal(t, "DEV-2024-0017", numero)

	require.NotNil(t, store.saved)
	entry := config.ParseNumberingEntry(store.saved.Data, string(DocDevis))
	require.Equal(t, int64(18), entry.Next)
}

func TestAllocateSelfHealsFromScan(t *testing.T) {
	// Counter manually reset below the real maximum: the scan wins.
	alloc, store := newTestAllocator(2, 41, nil)

	numero, err := alloc.Allocate(context.Background(), nil, DocDevis, 2024)
	require.NoError(t, err)
	require.Equal(t, "DEV-2024-0042", numero)

	entry := config.ParseNumberingEntry(store.saved.Data, string(DocDevis))
	require.Equal(t, int64(43), entry.Next)
}

func TestAllocateSkipsResidualDuplicates(t *testing.T) {
	alloc, _ := newTestAllocator(7, 0, map[string]bool{
		"DEV-2024-0007": true,
		"DEV-2024-0008": true,
	})

	numero, err := alloc.Allocate(context.Background(), nil, DocDevis, 2024)
	require.NoError(t, err)
	require.Equal(t, "DEV-2024-0009", numero)
}

func TestAllocateBoundedCollisionLoop(t *testing.T) {
	existing := make(map[string]bool)
	for seq := int64(1); seq < 300; seq++ {
		existing[Format("DEV", 2024, seq)] = true
	}
	alloc, _ := newTestAllocator(1, 0, existing)

	_, err := alloc.Allocate(context.Background(), nil, DocDevis, 2024)
	require.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestFormatWidensPastFourDigits(t *testing.T) {
	require.Equal(t, "FAC-2024-0001", Format("FAC", 2024, 1))
	require.Equal(t, "FAC-2024-12345", Format("FAC", 2024, 12345))
}

func TestNumericSuffix(t *testing.T) {
	cases := []struct {
		numero string
		want   int64
		ok     bool
	}{
		{"DEV-2024-0017", 17, true},
		{"OT-2023-9999", 9999, true},
		{"FAC-2024-", 0, false},
		{"FAC-2024-ABC", 0, false},
		{"nodash", 0, false},
	}
	for _, tc := range cases {
		got, ok := NumericSuffix(tc.numero)
		require.Equal(t, tc.ok, ok, tc.numero)
		require.Equal(t, tc.want, got, tc.numero)
	}
}
