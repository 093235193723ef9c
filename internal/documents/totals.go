package documents

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/logistiga/logistiga/internal/config"
)

// ErrUnknownCategory is returned when a document carries a categorie outside
// the closed set. The engine refuses to compute rather than silently
// producing HT=0.
var ErrUnknownCategory = errors.New("documents: unknown categorie")

var hundred = decimal.NewFromInt(100)

// Totals carries the computed monetary fields of a document.
type Totals struct {
	MontantHT  decimal.Decimal
	Remise     decimal.Decimal
	TVA        decimal.Decimal
	CSS        decimal.Decimal
	MontantTTC decimal.Decimal
}

// ComputeTotals derives HT/TVA/CSS/TTC from the document's loaded line items
// and the current tax rates. Pure: same inputs, same outputs.
//
// Each tax line is rounded to 2 decimals at computation time, not only the
// final sum. Audit reproducibility depends on this: summing pre-rounded
// components can differ by a cent from rounding the sum.
func ComputeTotals(doc *Document, rates config.TaxRates) (Totals, error) {
	ht, err := computeHT(doc)
	if err != nil {
		return Totals{}, err
	}
	ht = ht.Round(2)

	remise := decimal.Zero
	if doc.RemiseType != nil {
		switch *doc.RemiseType {
		case RemisePourcentage:
			remise = ht.Mul(doc.RemiseValeur).Div(hundred).Round(2)
		case RemiseMontant:
			remise = doc.RemiseValeur.Round(2)
		}
	}
	net := ht.Sub(remise)

	tva := decimal.Zero
	if !doc.ExonereTVA && rates.TVAActif {
		tva = net.Mul(rates.TVATaux).Div(hundred).Round(2)
	}
	css := decimal.Zero
	if !doc.ExonereCSS && rates.CSSActif {
		css = net.Mul(rates.CSSTaux).Div(hundred).Round(2)
	}

	return Totals{
		MontantHT:  net,
		Remise:     remise,
		TVA:        tva,
		CSS:        css,
		MontantTTC: net.Add(tva).Add(css).Round(2),
	}, nil
}

// computeHT selects the HT strategy from the document's categorie. A
// document with no line items yields zero, not an error.
func computeHT(doc *Document) (decimal.Decimal, error) {
	switch doc.Categorie {
	case CategorieOperations:
		total := decimal.Zero
		for _, l := range doc.Lignes {
			total = total.Add(l.Quantite.Mul(l.PrixUnitaire))
		}
		return total, nil
	case CategorieConteneurs:
		total := decimal.Zero
		for _, c := range doc.Conteneurs {
			total = total.Add(c.PrixUnitaire)
			for _, op := range c.Operations {
				total = total.Add(op.Quantite.Mul(op.PrixUnitaire))
			}
		}
		return total, nil
	case CategorieLots:
		total := decimal.Zero
		for _, l := range doc.Lots {
			total = total.Add(l.Quantite.Mul(l.PrixUnitaire))
		}
		return total, nil
	default:
		return decimal.Zero, ErrUnknownCategory
	}
}
