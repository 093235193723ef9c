package clients

import "time"

// Client is a freight customer the documents bill to.
type Client struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Nom       string     `json:"nom"`
	NIF       string     `json:"nif,omitempty"`
	Adresse   string     `json:"adresse,omitempty"`
	Telephone string     `json:"telephone,omitempty"`
	Email     string     `json:"email,omitempty"`
	Actif     bool       `json:"actif"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
