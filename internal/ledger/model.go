package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sens is the direction of a cash movement.
type Sens string

const (
	SensEntree Sens = "entree"
	SensSortie Sens = "sortie"
)

// Compte identifies the cash account an entry hits.
type Compte string

const (
	CompteCaisse Compte = "caisse"
	CompteBanque Compte = "banque"
)

// Entry is a single cash-ledger movement. Entries are append-only: a
// correction is a new entry in the opposite sens, never an update.
type Entry struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Libelle   string          `json:"libelle"`
	Montant   decimal.Decimal `json:"montant"`
	Sens      Sens            `json:"sens"`
	Date      time.Time       `json:"date"`
	Categorie string          `json:"categorie"`
	Compte    Compte          `json:"compte"`
	SourceRef string          `json:"source_ref,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Balance aggregates entries per compte.
type Balance struct {
	Compte  Compte          `json:"compte"`
	Entrees decimal.Decimal `json:"entrees"`
	Sorties decimal.Decimal `json:"sorties"`
	Solde   decimal.Decimal `json:"solde"`
}
