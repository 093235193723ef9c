package taxes

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tax type identifiers aggregated per month.
const (
	TypeTVA = "tva"
	TypeCSS = "css"
)

// TaxeMensuelle is a monthly aggregate bucket keyed by (annee, mois,
// type_taxe). Amounts accumulate as invoices are validated; a closed bucket
// is frozen for declaration.
type TaxeMensuelle struct {
	ID               int64           `json:"id"`
	Annee            int             `json:"annee"`
	Mois             int             `json:"mois"`
	TypeTaxe         string          `json:"type_taxe"`
	MontantHTTotal   decimal.Decimal `json:"montant_ht_total"`
	MontantTaxeTotal decimal.Decimal `json:"montant_taxe_total"`
	MontantExonere   decimal.Decimal `json:"montant_exonere"`
	NombreDocuments  int             `json:"nombre_documents"`
	Cloture          bool            `json:"cloture"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
