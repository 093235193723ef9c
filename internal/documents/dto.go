package documents

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateDocumentRequest struct {
	DocType   string    `json:"doc_type" validate:"required,oneof=devis ordre_travail facture avoir note_debit note_operation note_remise note_remise_lot"`
	ClientID  int64     `json:"client_id" validate:"required,gt=0"`
	Date      time.Time `json:"date" validate:"required"`
	Categorie string    `json:"categorie" validate:"required,oneof=operations conteneurs lots"`

	RemiseType   *string         `json:"remise_type,omitempty" validate:"omitempty,oneof=pourcentage montant"`
	RemiseValeur decimal.Decimal `json:"remise_valeur"`
	ExonereTVA   bool            `json:"exonere_tva"`
	ExonereCSS   bool            `json:"exonere_css"`
	Notes        *string         `json:"notes,omitempty"`

	Lignes     []LigneRequest     `json:"lignes,omitempty" validate:"omitempty,dive"`
	Conteneurs []ConteneurRequest `json:"conteneurs,omitempty" validate:"omitempty,dive"`
	Lots       []LotRequest       `json:"lots,omitempty" validate:"omitempty,dive"`
}

type LigneRequest struct {
	Designation  string          `json:"designation" validate:"required"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
	Ordre        int             `json:"ordre" validate:"gte=0"`
}

type ConteneurRequest struct {
	Numero        string             `json:"numero" validate:"required"`
	TypeConteneur string             `json:"type_conteneur"`
	PrixUnitaire  decimal.Decimal    `json:"prix_unitaire"`
	Operations    []OperationRequest `json:"operations,omitempty" validate:"omitempty,dive"`
}

type OperationRequest struct {
	Designation  string          `json:"designation" validate:"required"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
}

type LotRequest struct {
	Designation  string          `json:"designation" validate:"required"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
}

type ReplaceLinesRequest struct {
	Lignes     []LigneRequest     `json:"lignes,omitempty" validate:"omitempty,dive"`
	Conteneurs []ConteneurRequest `json:"conteneurs,omitempty" validate:"omitempty,dive"`
	Lots       []LotRequest       `json:"lots,omitempty" validate:"omitempty,dive"`
}

type UpdateStatusRequest struct {
	Statut string `json:"statut" validate:"required,oneof=brouillon valide accepte refuse paye annule"`
}

type RecordPaymentRequest struct {
	Montant      decimal.Decimal `json:"montant"`
	DatePaiement time.Time       `json:"date_paiement" validate:"required"`
	Mode         string          `json:"mode" validate:"required,oneof=especes cheque virement"`
	Reference    string          `json:"reference,omitempty"`
}

type ListDocumentsRequest struct {
	DocType  *string    `json:"doc_type,omitempty"`
	ClientID *int64     `json:"client_id,omitempty"`
	Statut   *string    `json:"statut,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	Limit    int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int        `json:"offset" validate:"gte=0"`
}
