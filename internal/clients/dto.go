package clients

type CreateClientRequest struct {
	Code      string `json:"code" validate:"required,max=32"`
	Nom       string `json:"nom" validate:"required,max=255"`
	NIF       string `json:"nif" validate:"max=64"`
	Adresse   string `json:"adresse" validate:"max=500"`
	Telephone string `json:"telephone" validate:"max=32"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type UpdateClientRequest struct {
	Nom       string `json:"nom" validate:"required,max=255"`
	NIF       string `json:"nif" validate:"max=64"`
	Adresse   string `json:"adresse" validate:"max=500"`
	Telephone string `json:"telephone" validate:"max=32"`
	Email     string `json:"email" validate:"omitempty,email"`
	Actif     bool   `json:"actif"`
}
