package documents

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/logistiga/logistiga/internal/numbering"
)

// DocumentStatus enumerates document lifecycle states.
type DocumentStatus string

const (
	StatutBrouillon DocumentStatus = "brouillon"
	StatutValide    DocumentStatus = "valide"
	StatutAccepte   DocumentStatus = "accepte"
	StatutRefuse    DocumentStatus = "refuse"
	StatutPaye      DocumentStatus = "paye"
	StatutAnnule    DocumentStatus = "annule"
)

// Categorie selects which line-item shape a document carries. The three
// shapes are mutually exclusive and never mixed on one document.
type Categorie string

const (
	CategorieOperations Categorie = "operations"
	CategorieConteneurs Categorie = "conteneurs"
	CategorieLots       Categorie = "lots"
)

// RemiseType distinguishes percentage from fixed-amount discounts.
type RemiseType string

const (
	RemisePourcentage RemiseType = "pourcentage"
	RemiseMontant     RemiseType = "montant"
)

// Document is the shape shared by devis, ordres de travail and factures.
// Exactly one of Lignes/Conteneurs/Lots is populated, per Categorie.
type Document struct {
	ID           int64                  `json:"id"`
	DocType      numbering.DocumentType `json:"doc_type"`
	Numero       string                 `json:"numero"`
	ClientID     int64                  `json:"client_id"`
	Date         time.Time              `json:"date"`
	Statut       DocumentStatus         `json:"statut"`
	Categorie    Categorie              `json:"categorie"`
	MontantHT    decimal.Decimal        `json:"montant_ht"`
	Remise       decimal.Decimal        `json:"remise"`
	TVA          decimal.Decimal        `json:"tva"`
	CSS          decimal.Decimal        `json:"css"`
	MontantTTC   decimal.Decimal        `json:"montant_ttc"`
	RemiseType   *RemiseType            `json:"remise_type,omitempty"`
	RemiseValeur decimal.Decimal        `json:"remise_valeur"`
	ExonereTVA   bool                   `json:"exonere_tva"`
	ExonereCSS   bool                   `json:"exonere_css"`
	Notes        *string                `json:"notes,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	DeletedAt    *time.Time             `json:"deleted_at,omitempty"`

	Lignes     []Ligne     `json:"lignes,omitempty"`
	Conteneurs []Conteneur `json:"conteneurs,omitempty"`
	Lots       []Lot       `json:"lots,omitempty"`
}

// Ligne is a flat line item: quantite × prix_unitaire.
type Ligne struct {
	ID           int64           `json:"id"`
	DocumentID   int64           `json:"document_id"`
	Designation  string          `json:"designation"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
	MontantHT    decimal.Decimal `json:"montant_ht"`
	Ordre        int             `json:"ordre"`
}

// Conteneur is a container line: its own prix_unitaire plus owned operations.
type Conteneur struct {
	ID            int64           `json:"id"`
	DocumentID    int64           `json:"document_id"`
	Numero        string          `json:"numero"`
	TypeConteneur string          `json:"type_conteneur"`
	PrixUnitaire  decimal.Decimal `json:"prix_unitaire"`
	Operations    []Operation     `json:"operations,omitempty"`
}

// Operation is a billed operation attached to a container.
type Operation struct {
	ID           int64           `json:"id"`
	ConteneurID  int64           `json:"conteneur_id"`
	Designation  string          `json:"designation"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
}

// Lot is a lot-based line: quantite × prix_unitaire = prix_total.
type Lot struct {
	ID           int64           `json:"id"`
	DocumentID   int64           `json:"document_id"`
	Designation  string          `json:"designation"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
	PrixTotal    decimal.Decimal `json:"prix_total"`
}

// Paiement records a payment received against a facture.
type Paiement struct {
	ID           int64           `json:"id"`
	DocumentID   int64           `json:"document_id"`
	Montant      decimal.Decimal `json:"montant"`
	DatePaiement time.Time       `json:"date_paiement"`
	Mode         string          `json:"mode"`
	Reference    string          `json:"reference,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
