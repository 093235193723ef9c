package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditStatus is the lifecycle state of a bank credit.
type CreditStatus string

const (
	CreditActif   CreditStatus = "actif"
	CreditTermine CreditStatus = "termine"
)

// EcheanceStatus is the payment state of one installment.
type EcheanceStatus string

const (
	EcheanceAPayer EcheanceStatus = "a_payer"
	EcheancePayee  EcheanceStatus = "payee"
)

// CreditBancaire is a bank loan amortized with fixed monthly installments.
type CreditBancaire struct {
	ID               int64           `json:"id"`
	Banque           string          `json:"banque"`
	Libelle          string          `json:"libelle"`
	MontantPrincipal decimal.Decimal `json:"montant_principal"`
	TauxAnnuel       decimal.Decimal `json:"taux_annuel"`
	DureeMois        int             `json:"duree_mois"`
	DateDebut        time.Time       `json:"date_debut"`
	MensualiteFixe   decimal.Decimal `json:"mensualite_fixe"`
	TotalInterets    decimal.Decimal `json:"total_interets"`
	MontantRembourse decimal.Decimal `json:"montant_rembourse"`
	Statut           CreditStatus    `json:"statut"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Echeances []Echeance `json:"echeances,omitempty"`
}

// Echeance is one installment of a credit's amortization schedule.
type Echeance struct {
	ID             int64           `json:"id"`
	CreditID       int64           `json:"credit_id"`
	Rang           int             `json:"rang"`
	DateEcheance   time.Time       `json:"date_echeance"`
	MontantTotal   decimal.Decimal `json:"montant_total"`
	PartInterets   decimal.Decimal `json:"part_interets"`
	PartCapital    decimal.Decimal `json:"part_capital"`
	CapitalRestant decimal.Decimal `json:"capital_restant"`
	MontantPaye    decimal.Decimal `json:"montant_paye"`
	Statut         EcheanceStatus  `json:"statut"`
	EnRetard       bool            `json:"en_retard"`
}

// SchedulePlan is the output of the amortization computation.
type SchedulePlan struct {
	Mensualite    decimal.Decimal
	TotalInterets decimal.Decimal
	Echeances     []Echeance
}
