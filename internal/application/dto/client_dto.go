package dto

// CreateClientRequest pre-registro de cliente hecho por un admin.
type CreateClientRequest struct {
	Name   string `json:"name"`
	CPF    string `json:"cpf"`
	Phone  string `json:"phone"`
	CEP    string `json:"cep"`
	Estado string `json:"estado"`
	Cidade string `json:"cidade"`
	Bairro string `json:"bairro"`
}

// CheckCPFResponse resultado de check-cpf.
type CheckCPFResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

// CreateClientResponse salida de alta de pre-registro.
type CreateClientResponse struct {
	Message string       `json:"message"`
	Client  UserResponse `json:"client"`
}
