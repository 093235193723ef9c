package documents

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentComputesLineAmounts(t *testing.T) {
	req := CreateDocumentRequest{
		DocType:   "facture",
		ClientID:  7,
		Date:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Categorie: "operations",
		Lignes: []LigneRequest{
			{Designation: "Manutention", Quantite: decimal.NewFromInt(3), PrixUnitaire: decimal.NewFromFloat(125.50)},
		},
	}

	doc, err := buildDocument(req)
	require.NoError(t, err)
	require.Equal(t, StatutBrouillon, doc.Statut)
	require.Len(t, doc.Lignes, 1)
	require.Equal(t, "376.50", doc.Lignes[0].MontantHT.StringFixed(2))
	require.Equal(t, 1, doc.Lignes[0].Ordre)
}

func TestBuildDocumentRejectsMixedCollections(t *testing.T) {
	req := CreateDocumentRequest{
		DocType:   "facture",
		ClientID:  7,
		Date:      time.Now(),
		Categorie: "operations",
		Conteneurs: []ConteneurRequest{
			{Numero: "TCLU1234567"},
		},
	}

	_, err := buildDocument(req)
	require.ErrorIs(t, err, ErrCategoryMismatch)
}

func TestBuildDocumentUnknownCategory(t *testing.T) {
	req := CreateDocumentRequest{
		DocType:   "facture",
		ClientID:  7,
		Date:      time.Now(),
		Categorie: "transit",
	}

	_, err := buildDocument(req)
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestAttachLinesConteneursWithOperations(t *testing.T) {
	doc := &Document{Categorie: CategorieConteneurs}
	err := attachLines(doc, nil, []ConteneurRequest{
		{
			Numero:       "MSKU7654321",
			PrixUnitaire: decimal.NewFromInt(500),
			Operations: []OperationRequest{
				{Designation: "Depotage", Quantite: decimal.NewFromInt(2), PrixUnitaire: decimal.NewFromInt(100)},
			},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, doc.Conteneurs, 1)
	require.Len(t, doc.Conteneurs[0].Operations, 1)
}

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{StatutBrouillon, StatutValide, true},
		{StatutBrouillon, StatutAnnule, true},
		{StatutBrouillon, StatutPaye, false},
		{StatutValide, StatutPaye, true},
		{StatutValide, StatutAccepte, true},
		{StatutAccepte, StatutPaye, true},
		{StatutPaye, StatutAnnule, false},
		{StatutAnnule, StatutValide, false},
		{StatutValide, StatutValide, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, transitionAllowed(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestWithdrawsFromTaxes(t *testing.T) {
	cases := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{StatutValide, StatutRefuse, true},
		{StatutValide, StatutAnnule, true},
		{StatutAccepte, StatutAnnule, true},
		{StatutBrouillon, StatutAnnule, false},
		{StatutValide, StatutAccepte, false},
		{StatutValide, StatutPaye, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, withdrawsFromTaxes(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
