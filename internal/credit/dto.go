package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateCreditRequest struct {
	Banque           string          `json:"banque" validate:"required"`
	Libelle          string          `json:"libelle" validate:"required"`
	MontantPrincipal decimal.Decimal `json:"montant_principal"`
	TauxAnnuel       decimal.Decimal `json:"taux_annuel"`
	DureeMois        int             `json:"duree_mois" validate:"required,gte=1,lte=600"`
	DateDebut        time.Time       `json:"date_debut" validate:"required"`
}

type UpdateTermsRequest struct {
	Banque           string          `json:"banque" validate:"required"`
	Libelle          string          `json:"libelle" validate:"required"`
	MontantPrincipal decimal.Decimal `json:"montant_principal"`
	TauxAnnuel       decimal.Decimal `json:"taux_annuel"`
	DureeMois        int             `json:"duree_mois" validate:"required,gte=1,lte=600"`
	DateDebut        time.Time       `json:"date_debut" validate:"required"`
}

type RecordRepaymentRequest struct {
	Montant decimal.Decimal `json:"montant"`
	Date    time.Time       `json:"date" validate:"required"`
}
