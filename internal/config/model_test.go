package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseTaxRatesDefaults(t *testing.T) {
	rates := ParseTaxRates(map[string]any{})
	require.True(t, rates.TVATaux.Equal(decimal.NewFromInt(18)))
	require.True(t, rates.CSSTaux.Equal(decimal.NewFromInt(1)))
	require.True(t, rates.TVAActif)
	require.True(t, rates.CSSActif)
}

func TestParseTaxRatesOverrides(t *testing.T) {
	rates := ParseTaxRates(map[string]any{
		"tva_taux":  19.25,
		"css_taux":  "0.5",
		"tva_actif": false,
	})
	require.True(t, rates.TVATaux.Equal(decimal.NewFromFloat(19.25)))
	require.True(t, rates.CSSTaux.Equal(decimal.NewFromFloat(0.5)))
	require.False(t, rates.TVAActif)
	require.True(t, rates.CSSActif)
}

func TestParseNumberingEntryFallsBackToDefaults(t *testing.T) {
	entry := ParseNumberingEntry(map[string]any{}, "facture")
	require.Equal(t, "FAC", entry.Prefix)
	require.Equal(t, int64(1), entry.Next)
}

func TestNumberingEntryRoundTrip(t *testing.T) {
	data := DefaultData(KeyNumbering)
	SetNumberingEntry(data, "devis", NumberingEntry{Prefix: "DEV", Next: 42})
	entry := ParseNumberingEntry(data, "devis")
	require.Equal(t, "DEV", entry.Prefix)
	require.Equal(t, int64(42), entry.Next)
}

func TestParseNumberingEntryIgnoresCorruptNext(t *testing.T) {
	data := map[string]any{
		"devis": map[string]any{"prefix": "DEV", "next": "not-a-number"},
	}
	entry := ParseNumberingEntry(data, "devis")
	require.Equal(t, int64(1), entry.Next)
}
