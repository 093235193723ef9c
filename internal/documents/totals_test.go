package documents

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/logistiga/logistiga/internal/config"
)

func defaultRates() config.TaxRates {
	return config.TaxRates{
		TVATaux:  decimal.NewFromInt(18),
		CSSTaux:  decimal.NewFromInt(1),
		TVAActif: true,
		CSSActif: true,
	}
}

func flatDocument(quantite, prix int64) *Document {
	return &Document{
		Categorie: CategorieOperations,
		Lignes: []Ligne{
			{Quantite: decimal.NewFromInt(quantite), PrixUnitaire: decimal.NewFromInt(prix)},
		},
	}
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Equal(t, want, got.StringFixed(2))
}

func TestComputeTotalsFlatLines(t *testing.T) {
	totals, err := ComputeTotals(flatDocument(1, 1000), defaultRates())
	require.NoError(t, err)

	requireAmount(t, "1000.00", totals.MontantHT)
	requireAmount(t, "180.00", totals.TVA)
	requireAmount(t, "10.00", totals.CSS)
	requireAmount(t, "1190.00", totals.MontantTTC)
}

func TestComputeTotalsPercentageDiscount(t *testing.T) {
	doc := flatDocument(1, 1000)
	remiseType := RemisePourcentage
	doc.RemiseType = &remiseType
	doc.RemiseValeur = decimal.NewFromInt(10)

	totals, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	requireAmount(t, "100.00", totals.Remise)
	requireAmount(t, "900.00", totals.MontantHT)
	requireAmount(t, "162.00", totals.TVA)
	requireAmount(t, "9.00", totals.CSS)
	requireAmount(t, "1071.00", totals.MontantTTC)
}

func TestComputeTotalsFixedDiscount(t *testing.T) {
	doc := flatDocument(1, 1000)
	remiseType := RemiseMontant
	doc.RemiseType = &remiseType
	doc.RemiseValeur = decimal.NewFromInt(250)

	totals, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	requireAmount(t, "750.00", totals.MontantHT)
	requireAmount(t, "135.00", totals.TVA)
	requireAmount(t, "7.50", totals.CSS)
	requireAmount(t, "892.50", totals.MontantTTC)
}

func TestComputeTotalsTVAExemption(t *testing.T) {
	doc := flatDocument(1, 1000)
	doc.ExonereTVA = true

	totals, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	requireAmount(t, "0.00", totals.TVA)
	requireAmount(t, "10.00", totals.CSS)
	requireAmount(t, "1010.00", totals.MontantTTC)
}

func TestComputeTotalsInactiveRateBehavesAsZero(t *testing.T) {
	rates := defaultRates()
	rates.CSSActif = false

	totals, err := ComputeTotals(flatDocument(1, 1000), rates)
	require.NoError(t, err)

	requireAmount(t, "0.00", totals.CSS)
	requireAmount(t, "1180.00", totals.MontantTTC)
}

func TestComputeTotalsConteneurs(t *testing.T) {
	doc := &Document{
		Categorie: CategorieConteneurs,
		Conteneurs: []Conteneur{
			{
				PrixUnitaire: decimal.NewFromInt(500),
				Operations: []Operation{
					{Quantite: decimal.NewFromInt(2), PrixUnitaire: decimal.NewFromInt(100)},
					{Quantite: decimal.NewFromInt(1), PrixUnitaire: decimal.NewFromInt(50)},
				},
			},
			{PrixUnitaire: decimal.NewFromInt(250)},
		},
	}

	totals, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	// 500 + 2×100 + 1×50 + 250 = 1000
	requireAmount(t, "1000.00", totals.MontantHT)
	requireAmount(t, "1190.00", totals.MontantTTC)
}

func TestComputeTotalsLots(t *testing.T) {
	doc := &Document{
		Categorie: CategorieLots,
		Lots: []Lot{
			{Quantite: decimal.NewFromInt(4), PrixUnitaire: decimal.NewFromFloat(125.50)},
		},
	}

	totals, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	requireAmount(t, "502.00", totals.MontantHT)
	requireAmount(t, "90.36", totals.TVA)
	requireAmount(t, "5.02", totals.CSS)
	requireAmount(t, "597.38", totals.MontantTTC)
}

func TestComputeTotalsEmptyDocument(t *testing.T) {
	doc := &Document{Categorie: CategorieOperations}

	totals, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	requireAmount(t, "0.00", totals.MontantHT)
	requireAmount(t, "0.00", totals.TVA)
	requireAmount(t, "0.00", totals.CSS)
	requireAmount(t, "0.00", totals.MontantTTC)
}

func TestComputeTotalsNegativeCorrectiveLine(t *testing.T) {
	doc := &Document{
		Categorie: CategorieOperations,
		Lignes: []Ligne{
			{Quantite: decimal.NewFromInt(1), PrixUnitaire: decimal.NewFromInt(1000)},
			{Quantite: decimal.NewFromInt(1), PrixUnitaire: decimal.NewFromInt(-200)},
		},
	}

	totals, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	requireAmount(t, "800.00", totals.MontantHT)
	requireAmount(t, "144.00", totals.TVA)
}

func TestComputeTotalsUnknownCategory(t *testing.T) {
	doc := &Document{Categorie: Categorie("transit")}

	_, err := ComputeTotals(doc, defaultRates())
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestComputeTotalsIdempotent(t *testing.T) {
	doc := flatDocument(3, 333)

	first, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)
	second, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	require.True(t, first.MontantTTC.Equal(second.MontantTTC))
	require.True(t, first.TVA.Equal(second.TVA))
	require.True(t, first.CSS.Equal(second.CSS))
}

func TestComputeTotalsRoundsPerTaxLine(t *testing.T) {
	// HT 33.33 at 18% gives 5.9994: the per-line rounding stores 6.00 and
	// the TTC sums the rounded components.
	doc := &Document{
		Categorie: CategorieOperations,
		Lignes: []Ligne{
			{Quantite: decimal.NewFromInt(1), PrixUnitaire: decimal.NewFromFloat(33.33)},
		},
	}

	totals, err := ComputeTotals(doc, defaultRates())
	require.NoError(t, err)

	requireAmount(t, "6.00", totals.TVA)
	requireAmount(t, "0.33", totals.CSS)
	requireAmount(t, "39.66", totals.MontantTTC)
}
